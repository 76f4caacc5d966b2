package parser

import (
	"regexp"
	"strings"

	"github.com/pseudomuto/roadwork/pkg/utils"
)

// identPattern matches an optionally qualified, optionally quoted identifier.
const identPattern = "((?:[`\"\\[]?\\w+[`\"\\]]?\\.)?[`\"\\[]?\\w+[`\"\\]]?)"

var (
	createTablePattern = regexp.MustCompile(`(?i)^CREATE\s+TABLE\s+(?:IF\s+NOT\s+EXISTS\s+)?` + identPattern + `\s*\(`)
	dropTablePattern   = regexp.MustCompile(`(?i)^DROP\s+TABLE\s+(?:IF\s+EXISTS\s+)?` + identPattern + `(?:\s+(?:CASCADE|RESTRICT))?\s*$`)
	alterTablePattern  = regexp.MustCompile(`(?i)^ALTER\s+TABLE\s+(?:IF\s+EXISTS\s+)?(?:ONLY\s+)?` + identPattern + `\s+(.+)$`)
	addColumnPattern   = regexp.MustCompile(`(?i)\bADD\s+(?:COLUMN\s+)?(?:IF\s+NOT\s+EXISTS\s+)?` + identPattern)
	dropColumnPattern  = regexp.MustCompile(`(?i)\bDROP\s+(?:COLUMN\s+)?(?:IF\s+EXISTS\s+)?` + identPattern)
	createIndexPattern = regexp.MustCompile(`(?i)^CREATE\s+(?:UNIQUE\s+)?INDEX\s+(?:CONCURRENTLY\s+)?(?:IF\s+NOT\s+EXISTS\s+)?` +
		identPattern + `\s+ON\s+(?:ONLY\s+)?` + identPattern)
	dropIndexPattern = regexp.MustCompile(`(?i)^DROP\s+INDEX\s+(?:CONCURRENTLY\s+)?(?:IF\s+EXISTS\s+)?` + identPattern)

	stringLiteralPattern = regexp.MustCompile(`'(?:[^']|'')*'`)

	// Words that can follow ADD/DROP in an ALTER TABLE without naming a column.
	alterKeywords = map[string]bool{
		"CONSTRAINT": true,
		"PRIMARY":    true,
		"FOREIGN":    true,
		"UNIQUE":     true,
		"CHECK":      true,
		"INDEX":      true,
		"KEY":        true,
		"NOT":        true,
		"DEFAULT":    true,
		"GENERATED":  true,
		"IDENTITY":   true,
		"EXPRESSION": true,
		"PARTITION":  true,
	}
)

// Parse splits SQL text into statements and classifies each one.
//
// Classification is pattern based rather than a full SQL grammar: common DDL
// shapes (CREATE/DROP TABLE, ALTER TABLE ADD/DROP COLUMN, CREATE/DROP INDEX)
// are recognized and everything else becomes a *RawSQL. Parse never fails and
// always returns exactly one Operation per statement returned by Split.
//
// Example:
//
//	ops := parser.Parse(`
//		CREATE TABLE users (id SERIAL PRIMARY KEY, email TEXT);
//		CREATE INDEX idx_users_email ON users (email);
//	`)
//	for _, op := range ops {
//		fmt.Println(op.Kind())
//	}
//	// create_table
//	// create_index
func Parse(sql string) []Operation {
	stmts := Split(sql)
	ops := make([]Operation, 0, len(stmts))
	for _, stmt := range stmts {
		ops = append(ops, ParseStatement(stmt))
	}

	return ops
}

// ParseStatement classifies a single statement that has already been split and
// normalized. Unrecognized statements are returned as *RawSQL.
func ParseStatement(stmt string) Operation {
	upper := strings.ToUpper(stmt)

	var op Operation
	switch {
	case strings.HasPrefix(upper, "CREATE TABLE"):
		op = parseCreateTable(stmt)
	case strings.HasPrefix(upper, "DROP TABLE"):
		op = parseDropTable(stmt)
	case strings.HasPrefix(upper, "ALTER TABLE"):
		op = parseAlterTable(stmt)
	case strings.HasPrefix(upper, "CREATE INDEX"), strings.HasPrefix(upper, "CREATE UNIQUE INDEX"):
		op = parseCreateIndex(stmt)
	case strings.HasPrefix(upper, "DROP INDEX"):
		op = parseDropIndex(stmt)
	}

	if op == nil {
		return &RawSQL{SQL: stmt}
	}

	return op
}

func parseCreateTable(stmt string) Operation {
	m := createTablePattern.FindStringSubmatch(stmt)
	if m == nil {
		return nil
	}

	return &CreateTable{
		Table:   identifier(m[1]),
		Columns: columnDefinitions(stmt),
		SQL:     stmt,
	}
}

func parseDropTable(stmt string) Operation {
	m := dropTablePattern.FindStringSubmatch(stmt)
	if m == nil {
		return nil
	}

	return &DropTable{Table: identifier(m[1]), SQL: stmt}
}

func parseAlterTable(stmt string) Operation {
	m := alterTablePattern.FindStringSubmatch(maskStrings(stmt))
	if m == nil {
		return nil
	}

	table, body := identifier(m[1]), m[2]

	if cols := alterColumns(addColumnPattern, body); len(cols) > 0 {
		return &AlterTableAddColumn{Table: table, Columns: cols, SQL: stmt}
	}

	if cols := alterColumns(dropColumnPattern, body); len(cols) > 0 {
		return &AlterTableDropColumn{Table: table, Columns: cols, SQL: stmt}
	}

	return nil
}

func parseCreateIndex(stmt string) Operation {
	m := createIndexPattern.FindStringSubmatch(stmt)
	if m == nil {
		return nil
	}

	return &CreateIndex{Index: identifier(m[1]), Table: identifier(m[2]), SQL: stmt}
}

func parseDropIndex(stmt string) Operation {
	m := dropIndexPattern.FindStringSubmatch(stmt)
	if m == nil {
		return nil
	}

	return &DropIndex{Index: identifier(m[1]), SQL: stmt}
}

func alterColumns(pattern *regexp.Regexp, body string) []string {
	var cols []string
	for _, m := range pattern.FindAllStringSubmatch(body, -1) {
		if !utils.IsQuoted(m[1]) && alterKeywords[strings.ToUpper(m[1])] {
			continue
		}

		cols = append(cols, identifier(m[1]))
	}

	return cols
}

// columnDefinitions returns the comma separated entries between the first "("
// and the last ")" of a CREATE TABLE statement. Commas nested in parentheses or
// quoted text do not split.
func columnDefinitions(stmt string) []string {
	start := strings.Index(stmt, "(")
	end := strings.LastIndex(stmt, ")")
	if start < 0 || end <= start {
		return nil
	}

	return splitTopLevel(stmt[start+1 : end])
}

func splitTopLevel(s string) []string {
	var (
		parts []string
		depth int
		quote rune
		last  int
	)

	add := func(part string) {
		if part = strings.TrimSpace(part); part != "" {
			parts = append(parts, part)
		}
	}

	for i, r := range s {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '\'' || r == '"' || r == '`':
			quote = r
		case r == '(':
			depth++
		case r == ')':
			if depth > 0 {
				depth--
			}
		case r == ',' && depth == 0:
			add(s[last:i])
			last = i + 1
		}
	}

	add(s[last:])
	return parts
}

// maskStrings blanks out single-quoted literals so keywords inside them can't
// be mistaken for clauses.
func maskStrings(stmt string) string {
	return stringLiteralPattern.ReplaceAllString(stmt, "''")
}

// identifier removes quoting from each part of a possibly qualified name.
func identifier(name string) string {
	parts := strings.Split(name, ".")
	for i, part := range parts {
		parts[i] = utils.StripQuotes(part)
	}

	return strings.Join(parts, ".")
}
