package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/pseudomuto/roadwork/pkg/parser"
)

// NoReversibleOperations is the down SQL produced for an empty operation list.
const NoReversibleOperations = "-- No reversible operations found\n"

// Down synthesizes the reverse of the given operations.
//
// Each operation contributes one or more entries, visited from last to first,
// and the entries are separated by a blank line:
//
//   - CreateTable: DROP TABLE IF EXISTS {table};
//   - AlterTableAddColumn: ALTER TABLE {table} DROP COLUMN IF EXISTS {col}; for each column
//   - CreateIndex: DROP INDEX IF EXISTS {index};
//   - DropTable, AlterTableDropColumn, DropIndex and RawSQL: a WARNING comment
//
// Example:
//
//	down := format.Down(parser.Parse("ALTER TABLE users ADD COLUMN email TEXT;"))
//	// down == "ALTER TABLE users DROP COLUMN IF EXISTS email;"
func Down(ops []parser.Operation) string {
	var entries []string
	for i := len(ops) - 1; i >= 0; i-- {
		entries = append(entries, reverse(ops[i])...)
	}

	if len(entries) == 0 {
		return NoReversibleOperations
	}

	return strings.Join(entries, "\n\n")
}

// WriteDown writes the down SQL for ops to w, terminated by a newline.
func WriteDown(w io.Writer, ops []parser.Operation) error {
	down := Down(ops)
	if !strings.HasSuffix(down, "\n") {
		down += "\n"
	}

	if _, err := io.WriteString(w, down); err != nil {
		return errors.Wrap(err, "failed to write down SQL")
	}

	return nil
}

// IsLossy reports whether op cannot be reversed automatically.
func IsLossy(op parser.Operation) bool {
	switch op.(type) {
	case *parser.CreateTable, *parser.AlterTableAddColumn, *parser.CreateIndex:
		return false
	default:
		return true
	}
}

func reverse(op parser.Operation) []string {
	switch op := op.(type) {
	case *parser.CreateTable:
		return []string{fmt.Sprintf("DROP TABLE IF EXISTS %s;", op.Table)}
	case *parser.DropTable:
		return []string{manual("DROP TABLE %s", op.Table)}
	case *parser.AlterTableAddColumn:
		out := make([]string, 0, len(op.Columns))
		for _, col := range op.Columns {
			out = append(out, fmt.Sprintf("ALTER TABLE %s DROP COLUMN IF EXISTS %s;", op.Table, col))
		}
		return out
	case *parser.AlterTableDropColumn:
		out := make([]string, 0, len(op.Columns))
		for _, col := range op.Columns {
			out = append(out, manual("DROP COLUMN %s on %s", col, op.Table))
		}
		return out
	case *parser.CreateIndex:
		return []string{fmt.Sprintf("DROP INDEX IF EXISTS %s;", op.Index)}
	case *parser.DropIndex:
		return []string{manual("DROP INDEX %s", op.Index)}
	case nil:
		return nil
	default:
		return []string{
			"-- WARNING: Cannot automatically generate reverse for:\n-- " +
				strings.ReplaceAll(op.Statement(), "\n", "\n-- "),
		}
	}
}

func manual(format string, args ...any) string {
	return "-- WARNING: Cannot automatically reverse " + fmt.Sprintf(format, args...) + ". Manual intervention required."
}
