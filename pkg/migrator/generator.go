package migrator

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/pkg/errors"
	"github.com/pseudomuto/roadwork/pkg/utils"
)

// DefaultColumn is used when a create table migration is generated without columns.
const DefaultColumn = "id SERIAL PRIMARY KEY"

var (
	addColumnsName = regexp.MustCompile(`^add_(.+)_to_(.+)$`)

	// typeAliases maps the short column types accepted on the command line to SQL.
	// Unknown types are upper-cased and used as-is.
	typeAliases = map[string]string{
		"string":     "VARCHAR(255)",
		"text":       "VARCHAR(255)",
		"integer":    "INTEGER",
		"int":        "INTEGER",
		"biginteger": "BIGINT",
		"bigint":     "BIGINT",
		"boolean":    "BOOLEAN",
		"bool":       "BOOLEAN",
		"float":      "FLOAT",
		"double":     "DECIMAL",
		"decimal":    "DECIMAL",
		"datetime":   "TIMESTAMP",
		"timestamp":  "TIMESTAMP",
		"date":       "DATE",
		"time":       "TIME",
		"binary":     "BYTEA",
		"blob":       "BYTEA",
		"json":       "JSONB",
		"uuid":       "UUID",
		"serial":     "SERIAL",
		"bigserial":  "BIGSERIAL",
	}
)

type (
	// GeneratedSQL is the up/down pair produced by Generate.
	GeneratedSQL struct {
		Up   string
		Down string
	}

	// Column is a parsed "name:type[:constraints]" column spec.
	Column struct {
		Name        string
		Type        string
		Constraints []string
	}
)

// Generate builds the SQL for a new migration from its name and optional
// column specs.
//
// Names of the form add_<columns>_to_<table> produce an ALTER TABLE adding the
// given columns (or the column named in the migration as INTEGER when none are
// given). Columns ending in _id also get a foreign key to the pluralized table.
// Every other name produces a CREATE TABLE named after the migration, with
// DefaultColumn when no columns are given.
//
// Column specs are "name:type[:constraints]" where constraints is a comma
// separated list of primary_key, not_null, unique and default=<value>. Invalid
// specs are skipped with a warning.
//
// Example:
//
//	sql, _ := migrator.Generate("posts", []string{"title:string:not_null", "views:integer:default=0"})
//	fmt.Println(sql.Up)
//	// CREATE TABLE IF NOT EXISTS posts (
//	//     title VARCHAR(255) NOT NULL,
//	//     views INTEGER DEFAULT 0
//	// );
//
//	sql, _ = migrator.Generate("add_user_id_to_posts", nil)
//	fmt.Println(sql.Up)
//	// ALTER TABLE posts
//	// ADD COLUMN user_id INTEGER,
//	// ADD CONSTRAINT fk_user FOREIGN KEY (user_id) REFERENCES users(id);
func Generate(name string, columns []string) (GeneratedSQL, error) {
	if err := ValidateName(name); err != nil {
		return GeneratedSQL{}, err
	}

	if m := addColumnsName.FindStringSubmatch(name); m != nil {
		return generateAddColumns(m[2], m[1], columns)
	}

	return generateCreateTable(name, columns), nil
}

// ParseColumn parses a "name:type[:constraints]" column spec.
func ParseColumn(spec string) (Column, error) {
	parts := strings.SplitN(spec, ":", 3)
	if len(parts) < 2 || strings.TrimSpace(parts[0]) == "" || strings.TrimSpace(parts[1]) == "" {
		return Column{}, errors.Errorf("invalid column definition %q, format is name:type[:constraints]", spec)
	}

	col := Column{
		Name: strings.TrimSpace(parts[0]),
		Type: SQLType(strings.TrimSpace(parts[1])),
	}

	if len(parts) < 3 {
		return col, nil
	}

	for _, c := range strings.Split(parts[2], ",") {
		c = strings.TrimSpace(c)
		switch lower := strings.ToLower(c); {
		case lower == "":
			continue
		case lower == "primary_key":
			col.Constraints = append(col.Constraints, "PRIMARY KEY")
		case lower == "not_null":
			col.Constraints = append(col.Constraints, "NOT NULL")
		case lower == "unique":
			col.Constraints = append(col.Constraints, "UNIQUE")
		case strings.HasPrefix(lower, "default="):
			col.Constraints = append(col.Constraints, "DEFAULT "+utils.SQLLiteral(c[len("default="):]))
		default:
			slog.Warn("Unsupported column constraint", "constraint", c, "column", col.Name)
		}
	}

	return col, nil
}

// SQL renders the column definition.
func (c Column) SQL() string {
	return strings.Join(append([]string{c.Name, c.Type}, c.Constraints...), " ")
}

// SQLType maps a short type alias such as "string" or "uuid" to its SQL type.
func SQLType(alias string) string {
	if t, ok := typeAliases[strings.ToLower(alias)]; ok {
		return t
	}

	return strings.ToUpper(alias)
}

// ForeignKey returns the constraint name and referenced table for a column
// ending in "_id", e.g. "user_id" -> ("fk_user", "users").
func ForeignKey(column string) (constraint, table string, ok bool) {
	base, ok := strings.CutSuffix(column, "_id")
	if !ok || base == "" {
		return "", "", false
	}

	table = base
	if !strings.HasSuffix(table, "s") {
		table += "s"
	}

	return "fk_" + base, table, true
}

func generateCreateTable(table string, specs []string) GeneratedSQL {
	var defs []string
	for _, spec := range specs {
		col, err := ParseColumn(spec)
		if err != nil {
			slog.Warn("Skipping invalid column", "error", err)
			continue
		}

		defs = append(defs, col.SQL())
	}

	if len(defs) == 0 {
		defs = []string{DefaultColumn}
	}

	return GeneratedSQL{
		Up:   fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n    %s\n);", table, strings.Join(defs, ",\n    ")),
		Down: fmt.Sprintf("DROP TABLE IF EXISTS %s;", table),
	}
}

func generateAddColumns(table, derived string, specs []string) (GeneratedSQL, error) {
	cols := make([]Column, 0, len(specs))
	for _, spec := range specs {
		col, err := ParseColumn(spec)
		if err != nil {
			slog.Warn("Skipping invalid column", "error", err)
			continue
		}

		cols = append(cols, col)
	}

	if len(specs) == 0 {
		cols = append(cols, Column{Name: derived, Type: "INTEGER"})
	}

	if len(cols) == 0 {
		return GeneratedSQL{}, errors.Errorf("no valid columns to add to %s", table)
	}

	var (
		adds  []string
		fks   []string
		drops []string
	)

	for _, col := range cols {
		adds = append(adds, "ADD COLUMN "+col.SQL())
		drops = append(drops, "DROP COLUMN "+col.Name)

		if constraint, ref, ok := ForeignKey(col.Name); ok {
			fks = append(fks, fmt.Sprintf("ADD CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s(id)", constraint, col.Name, ref))
		}
	}

	return GeneratedSQL{
		Up:   fmt.Sprintf("ALTER TABLE %s\n%s;", table, strings.Join(append(adds, fks...), ",\n")),
		Down: fmt.Sprintf("ALTER TABLE %s\n%s;", table, strings.Join(drops, ",\n")),
	}, nil
}
