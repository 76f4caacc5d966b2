package format

import (
	"strings"

	"github.com/pseudomuto/roadwork/pkg/parser"
)

// Describe renders a one line summary of op, e.g. "CREATE TABLE users" or
// "ALTER TABLE users ADD COLUMN email, name".
func Describe(op parser.Operation) string {
	switch op := op.(type) {
	case *parser.CreateTable:
		return "CREATE TABLE " + op.Table
	case *parser.DropTable:
		return "DROP TABLE " + op.Table
	case *parser.AlterTableAddColumn:
		return "ALTER TABLE " + op.Table + " ADD COLUMN " + strings.Join(op.Columns, ", ")
	case *parser.AlterTableDropColumn:
		return "ALTER TABLE " + op.Table + " DROP COLUMN " + strings.Join(op.Columns, ", ")
	case *parser.CreateIndex:
		return "CREATE INDEX " + op.Index + " ON " + op.Table
	case *parser.DropIndex:
		return "DROP INDEX " + op.Index
	default:
		return "[Raw SQL statement]"
	}
}
