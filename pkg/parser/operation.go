package parser

// Operation kinds returned by Operation.Kind.
const (
	KindCreateTable          = "create_table"
	KindDropTable            = "drop_table"
	KindAlterTableAddColumn  = "alter_table_add_column"
	KindAlterTableDropColumn = "alter_table_drop_column"
	KindCreateIndex          = "create_index"
	KindDropIndex            = "drop_index"
	KindRawSQL               = "raw_sql"
)

type (
	// Operation is a single classified SQL statement. Every non-empty statement
	// maps to exactly one Operation, with RawSQL as the fallback for anything
	// that isn't recognized.
	Operation interface {
		// Kind returns a stable tag identifying the operation type.
		Kind() string
		// Statement returns the normalized SQL the operation was parsed from.
		Statement() string
	}

	// CreateTable is a CREATE TABLE [IF NOT EXISTS] statement.
	CreateTable struct {
		Table   string
		Columns []string
		SQL     string
	}

	// DropTable is a DROP TABLE [IF EXISTS] statement.
	DropTable struct {
		Table string
		SQL   string
	}

	// AlterTableAddColumn is an ALTER TABLE statement adding one or more columns.
	AlterTableAddColumn struct {
		Table   string
		Columns []string
		SQL     string
	}

	// AlterTableDropColumn is an ALTER TABLE statement dropping one or more columns.
	AlterTableDropColumn struct {
		Table   string
		Columns []string
		SQL     string
	}

	// CreateIndex is a CREATE [UNIQUE] INDEX statement.
	CreateIndex struct {
		Index string
		Table string
		SQL   string
	}

	// DropIndex is a DROP INDEX [IF EXISTS] statement.
	DropIndex struct {
		Index string
		SQL   string
	}

	// RawSQL is any statement that could not be classified.
	RawSQL struct {
		SQL string
	}
)

func (*CreateTable) Kind() string          { return KindCreateTable }
func (*DropTable) Kind() string            { return KindDropTable }
func (*AlterTableAddColumn) Kind() string  { return KindAlterTableAddColumn }
func (*AlterTableDropColumn) Kind() string { return KindAlterTableDropColumn }
func (*CreateIndex) Kind() string          { return KindCreateIndex }
func (*DropIndex) Kind() string            { return KindDropIndex }
func (*RawSQL) Kind() string               { return KindRawSQL }

func (o *CreateTable) Statement() string          { return o.SQL }
func (o *DropTable) Statement() string            { return o.SQL }
func (o *AlterTableAddColumn) Statement() string  { return o.SQL }
func (o *AlterTableDropColumn) Statement() string { return o.SQL }
func (o *CreateIndex) Statement() string          { return o.SQL }
func (o *DropIndex) Statement() string            { return o.SQL }
func (o *RawSQL) Statement() string               { return o.SQL }
