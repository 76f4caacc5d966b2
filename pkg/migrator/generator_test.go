package migrator_test

import (
	"testing"

	. "github.com/pseudomuto/roadwork/pkg/migrator"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	tests := []struct {
		name     string
		columns  []string
		expected GeneratedSQL
	}{
		{
			name: "users",
			expected: GeneratedSQL{
				Up:   "CREATE TABLE IF NOT EXISTS users (\n    id SERIAL PRIMARY KEY\n);",
				Down: "DROP TABLE IF EXISTS users;",
			},
		},
		{
			name:    "posts",
			columns: []string{"id:serial:primary_key", "title:string:not_null,unique", "views:integer:default=0", "status:text:default=draft", "bad"},
			expected: GeneratedSQL{
				Up: "CREATE TABLE IF NOT EXISTS posts (\n" +
					"    id SERIAL PRIMARY KEY,\n" +
					"    title VARCHAR(255) NOT NULL UNIQUE,\n" +
					"    views INTEGER DEFAULT 0,\n" +
					"    status VARCHAR(255) DEFAULT 'draft'\n" +
					");",
				Down: "DROP TABLE IF EXISTS posts;",
			},
		},
		{
			name: "add_page_id_to_funnel_steps",
			expected: GeneratedSQL{
				Up:   "ALTER TABLE funnel_steps\nADD COLUMN page_id INTEGER,\nADD CONSTRAINT fk_page FOREIGN KEY (page_id) REFERENCES pages(id);",
				Down: "ALTER TABLE funnel_steps\nDROP COLUMN page_id;",
			},
		},
		{
			name:    "add_details_to_users",
			columns: []string{"email:string", "age:int"},
			expected: GeneratedSQL{
				Up:   "ALTER TABLE users\nADD COLUMN email VARCHAR(255),\nADD COLUMN age INTEGER;",
				Down: "ALTER TABLE users\nDROP COLUMN email,\nDROP COLUMN age;",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, err := Generate(tt.name, tt.columns)
			require.NoError(t, err)
			require.Equal(t, tt.expected, sql)
		})
	}
}

func TestGenerate_Errors(t *testing.T) {
	_, err := Generate("", nil)
	require.ErrorIs(t, err, ErrInvalidName)

	_, err = Generate("add_x_to_users", []string{"nope"})
	require.Error(t, err)
}

func TestSQLType(t *testing.T) {
	tests := map[string]string{
		"string":    "VARCHAR(255)",
		"TEXT":      "VARCHAR(255)",
		"int":       "INTEGER",
		"bigint":    "BIGINT",
		"bool":      "BOOLEAN",
		"float":     "FLOAT",
		"double":    "DECIMAL",
		"datetime":  "TIMESTAMP",
		"date":      "DATE",
		"time":      "TIME",
		"blob":      "BYTEA",
		"json":      "JSONB",
		"uuid":      "UUID",
		"serial":    "SERIAL",
		"bigserial": "BIGSERIAL",
		"citext":    "CITEXT",
	}

	for alias, expected := range tests {
		require.Equal(t, expected, SQLType(alias), alias)
	}
}

func TestForeignKey(t *testing.T) {
	constraint, table, ok := ForeignKey("user_id")
	require.True(t, ok)
	require.Equal(t, "fk_user", constraint)
	require.Equal(t, "users", table)

	constraint, table, ok = ForeignKey("status_id")
	require.True(t, ok)
	require.Equal(t, "fk_status", constraint)
	require.Equal(t, "status", table)

	_, _, ok = ForeignKey("email")
	require.False(t, ok)

	_, _, ok = ForeignKey("_id")
	require.False(t, ok)
}

func TestParseColumn(t *testing.T) {
	col, err := ParseColumn("price:decimal:not_null,default=9.99,bogus")
	require.NoError(t, err)
	require.Equal(t, Column{Name: "price", Type: "DECIMAL", Constraints: []string{"NOT NULL", "DEFAULT 9.99"}}, col)
	require.Equal(t, "price DECIMAL NOT NULL DEFAULT 9.99", col.SQL())

	col, err = ParseColumn("starts_at:time:default=12:00")
	require.NoError(t, err)
	require.Equal(t, "starts_at TIME DEFAULT '12:00'", col.SQL())

	_, err = ParseColumn("name")
	require.Error(t, err)

	_, err = ParseColumn(":string")
	require.Error(t, err)
}
