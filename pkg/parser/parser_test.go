package parser_test

import (
	"testing"

	. "github.com/pseudomuto/roadwork/pkg/parser"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		sql      string
		expected []Operation
	}{
		{
			name: "create table",
			sql:  "CREATE TABLE users (id SERIAL PRIMARY KEY, name VARCHAR(255) NOT NULL);",
			expected: []Operation{
				&CreateTable{
					Table:   "users",
					Columns: []string{"id SERIAL PRIMARY KEY", "name VARCHAR(255) NOT NULL"},
					SQL:     "CREATE TABLE users (id SERIAL PRIMARY KEY, name VARCHAR(255) NOT NULL)",
				},
			},
		},
		{
			name: "create table if not exists with quoted name",
			sql:  `create table if not exists "posts" (id INT);`,
			expected: []Operation{
				&CreateTable{Table: "posts", Columns: []string{"id INT"}, SQL: `create table if not exists "posts" (id INT)`},
			},
		},
		{
			name: "create table with nested parens",
			sql:  "CREATE TABLE t (a INT, b VARCHAR(255) CHECK (b <> ','))",
			expected: []Operation{
				&CreateTable{
					Table:   "t",
					Columns: []string{"a INT", "b VARCHAR(255) CHECK (b <> ',')"},
					SQL:     "CREATE TABLE t (a INT, b VARCHAR(255) CHECK (b <> ','))",
				},
			},
		},
		{
			name: "create table with qualified backticked name",
			sql:  "CREATE TABLE `app`.`users` (id INT, flag CHAR(1) DEFAULT ',')",
			expected: []Operation{
				&CreateTable{
					Table:   "app.users",
					Columns: []string{"id INT", "flag CHAR(1) DEFAULT ','"},
					SQL:     "CREATE TABLE `app`.`users` (id INT, flag CHAR(1) DEFAULT ',')",
				},
			},
		},
		{
			name:     "drop table",
			sql:      "DROP TABLE IF EXISTS users;",
			expected: []Operation{&DropTable{Table: "users", SQL: "DROP TABLE IF EXISTS users"}},
		},
		{
			name:     "drop multiple tables is raw",
			sql:      "DROP TABLE a, b;",
			expected: []Operation{&RawSQL{SQL: "DROP TABLE a, b"}},
		},
		{
			name: "add column",
			sql:  "ALTER TABLE users ADD COLUMN email VARCHAR(255);",
			expected: []Operation{
				&AlterTableAddColumn{Table: "users", Columns: []string{"email"}, SQL: "ALTER TABLE users ADD COLUMN email VARCHAR(255)"},
			},
		},
		{
			name: "add multiple columns",
			sql:  "ALTER TABLE users ADD COLUMN IF NOT EXISTS a INT, ADD b TEXT DEFAULT 'add c'",
			expected: []Operation{
				&AlterTableAddColumn{
					Table:   "users",
					Columns: []string{"a", "b"},
					SQL:     "ALTER TABLE users ADD COLUMN IF NOT EXISTS a INT, ADD b TEXT DEFAULT 'add c'",
				},
			},
		},
		{
			name: "drop column",
			sql:  "ALTER TABLE users DROP COLUMN IF EXISTS email, DROP COLUMN `age`",
			expected: []Operation{
				&AlterTableDropColumn{
					Table:   "users",
					Columns: []string{"email", "age"},
					SQL:     "ALTER TABLE users DROP COLUMN IF EXISTS email, DROP COLUMN `age`",
				},
			},
		},
		{
			name: "add constraint is raw",
			sql:  "ALTER TABLE posts ADD CONSTRAINT fk_user FOREIGN KEY (user_id) REFERENCES users(id)",
			expected: []Operation{
				&RawSQL{SQL: "ALTER TABLE posts ADD CONSTRAINT fk_user FOREIGN KEY (user_id) REFERENCES users(id)"},
			},
		},
		{
			name:     "drop not null is raw",
			sql:      "ALTER TABLE posts ALTER COLUMN title DROP NOT NULL",
			expected: []Operation{&RawSQL{SQL: "ALTER TABLE posts ALTER COLUMN title DROP NOT NULL"}},
		},
		{
			name:     "rename is raw",
			sql:      "ALTER TABLE posts RENAME TO articles",
			expected: []Operation{&RawSQL{SQL: "ALTER TABLE posts RENAME TO articles"}},
		},
		{
			name: "create index",
			sql:  "CREATE INDEX idx_users_email ON users (email);",
			expected: []Operation{
				&CreateIndex{Index: "idx_users_email", Table: "users", SQL: "CREATE INDEX idx_users_email ON users (email)"},
			},
		},
		{
			name: "create unique index if not exists",
			sql:  "CREATE UNIQUE INDEX IF NOT EXISTS idx_email ON users(email)",
			expected: []Operation{
				&CreateIndex{Index: "idx_email", Table: "users", SQL: "CREATE UNIQUE INDEX IF NOT EXISTS idx_email ON users(email)"},
			},
		},
		{
			name:     "drop index",
			sql:      "DROP INDEX IF EXISTS idx_users_email;",
			expected: []Operation{&DropIndex{Index: "idx_users_email", SQL: "DROP INDEX IF EXISTS idx_users_email"}},
		},
		{
			name:     "insert is raw",
			sql:      "INSERT INTO users (name) VALUES ('bob');",
			expected: []Operation{&RawSQL{SQL: "INSERT INTO users (name) VALUES ('bob')"}},
		},
		{
			name:     "create table as select is raw",
			sql:      "CREATE TABLE archive AS SELECT * FROM users",
			expected: []Operation{&RawSQL{SQL: "CREATE TABLE archive AS SELECT * FROM users"}},
		},
		{
			name:     "empty input",
			sql:      "  \n-- nothing here\n;;",
			expected: []Operation{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, Parse(tt.sql))
		})
	}
}

func TestParse_StatementCount(t *testing.T) {
	sql := `
		-- create the tables
		CREATE TABLE users (id INT);
		/* a block
		   comment; with a semicolon */
		CREATE TABLE posts (id INT, body TEXT DEFAULT 'a;b');
		INSERT INTO posts (body) VALUES ('-- not a comment');
		;
		UPDATE posts SET body = 'x'
	`

	ops := Parse(sql)
	require.Len(t, ops, 4)
	require.Equal(t, KindCreateTable, ops[0].Kind())
	require.Equal(t, KindCreateTable, ops[1].Kind())
	require.Equal(t, KindRawSQL, ops[2].Kind())
	require.Equal(t, KindRawSQL, ops[3].Kind())
	require.Equal(t, "INSERT INTO posts (body) VALUES ('-- not a comment')", ops[2].Statement())
}

func TestParse_BackslashEscapedQuotes(t *testing.T) {
	sql := "INSERT INTO notes (body) VALUES ('it\\'s');\nCREATE TABLE tags (id INT);\nINSERT INTO tags (name) VALUES ('go');\n"

	ops := Parse(sql)
	require.Len(t, ops, 3)
	require.Equal(t, KindRawSQL, ops[0].Kind())
	require.Equal(t, &CreateTable{Table: "tags", Columns: []string{"id INT"}, SQL: "CREATE TABLE tags (id INT)"}, ops[1])
	require.Equal(t, KindRawSQL, ops[2].Kind())
}

func TestParse_Idempotent(t *testing.T) {
	sql := "CREATE TABLE users (id INT);\nALTER TABLE users ADD COLUMN email TEXT;\nDROP INDEX idx;"

	first := Parse(sql)
	second := Parse(sql)
	require.Equal(t, first, second)
}

func TestParseStatement_CaseInsensitive(t *testing.T) {
	op := ParseStatement("alter table Users add column Email text")
	require.Equal(t, &AlterTableAddColumn{
		Table:   "Users",
		Columns: []string{"Email"},
		SQL:     "alter table Users add column Email text",
	}, op)
}
