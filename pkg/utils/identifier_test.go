package utils_test

import (
	"testing"

	"github.com/pseudomuto/roadwork/pkg/utils"
	"github.com/stretchr/testify/require"
)

func TestIsQuoted(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{input: "`users`", expected: true},
		{input: `"users"`, expected: true},
		{input: "[users]", expected: true},
		{input: "users", expected: false},
		{input: "`users\"", expected: false},
		{input: "`", expected: false},
		{input: "", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			require.Equal(t, tt.expected, utils.IsQuoted(tt.input))
		})
	}
}

func TestStripQuotes(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "backticks", input: "`users`", expected: "users"},
		{name: "double quotes", input: `"users"`, expected: "users"},
		{name: "brackets", input: "[users]", expected: "users"},
		{name: "bare", input: "users", expected: "users"},
		{name: "surrounding space", input: "  `users` ", expected: "users"},
		{name: "empty", input: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, utils.StripQuotes(tt.input))
		})
	}
}

func TestBacktickIdentifier(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "simple identifier", input: "table", expected: "`table`"},
		{name: "qualified identifier", input: "database.table", expected: "`database`.`table`"},
		{name: "already backticked", input: "`table`", expected: "`table`"},
		{name: "double quoted", input: `"table"`, expected: "`table`"},
		{name: "empty", input: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, utils.BacktickIdentifier(tt.input))
		})
	}
}

func TestDoubleQuoteIdentifier(t *testing.T) {
	require.Equal(t, `"users"`, utils.DoubleQuoteIdentifier("users"))
	require.Equal(t, `"public"."users"`, utils.DoubleQuoteIdentifier("public.users"))
	require.Equal(t, `"users"`, utils.DoubleQuoteIdentifier("`users`"))
	require.Empty(t, utils.DoubleQuoteIdentifier(""))
}
