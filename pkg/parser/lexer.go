package parser

import (
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

var (
	// sqlLexer tokenizes just enough SQL to find statement boundaries and
	// comments without being fooled by quoted text.
	sqlLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "DollarString", Pattern: `\$([A-Za-z_]\w*)?\$(?s:.*?)\$([A-Za-z_]\w*)?\$`},
		{Name: "LineComment", Pattern: `--[^\n]*`},
		{Name: "BlockComment", Pattern: `/\*(?s:.*?)\*/`},
		// Both '' and MySQL's \' escape a quote inside a string.
		{Name: "String", Pattern: `'(?:[^'\\]|\\(?s:.)|'')*'`},
		{Name: "QuotedIdent", Pattern: `"(?:[^"]|"")*"`},
		{Name: "BacktickIdent", Pattern: "`[^`]*`"},
		{Name: "Semicolon", Pattern: `;`},
		{Name: "Whitespace", Pattern: `\s+`},
		{Name: "Word", Pattern: "[^;'\"`\\s\\-/$]+"},
		{Name: "Char", Pattern: `(?s:.)`},
	})

	tokenTypes = sqlLexer.Symbols()
)

// Split normalizes SQL text and splits it into individual statements.
//
// Comments are removed, runs of whitespace outside quoted text collapse to a
// single space, and the text is split on semicolons. Empty statements are
// dropped and the terminating semicolon is not included.
//
// Quoted strings, quoted identifiers and dollar-quoted bodies are kept verbatim,
// so a semicolon or "--" inside them never splits a statement or starts a
// comment.
//
// Example:
//
//	stmts := parser.Split(`
//		-- users
//		CREATE TABLE users (id INT);
//		INSERT INTO notes (body) VALUES ('a; b');
//	`)
//	// stmts[0] == "CREATE TABLE users (id INT)"
//	// stmts[1] == "INSERT INTO notes (body) VALUES ('a; b')"
func Split(sql string) []string {
	tokens, err := tokenize(sql)
	if err != nil {
		return splitNaive(sql)
	}

	var (
		stmts   []string
		current strings.Builder
		space   bool
	)

	flush := func() {
		if stmt := strings.TrimSpace(current.String()); stmt != "" {
			stmts = append(stmts, stmt)
		}

		current.Reset()
		space = false
	}

	for _, tok := range tokens {
		switch tok.Type {
		case lexer.EOF:
			continue
		case tokenTypes["Semicolon"]:
			flush()
		case tokenTypes["Whitespace"], tokenTypes["LineComment"], tokenTypes["BlockComment"]:
			space = true
		default:
			if space && current.Len() > 0 {
				current.WriteByte(' ')
			}

			space = false
			current.WriteString(tok.Value)
		}
	}

	flush()
	return stmts
}

func tokenize(sql string) ([]lexer.Token, error) {
	lex, err := sqlLexer.LexString("", sql)
	if err != nil {
		return nil, err
	}

	return lexer.ConsumeAll(lex)
}

// splitNaive is the fallback used if the lexer ever rejects its input. It
// drops line comments and splits on every semicolon.
func splitNaive(sql string) []string {
	var kept []string
	for _, line := range strings.Split(sql, "\n") {
		if idx := strings.Index(line, "--"); idx >= 0 {
			line = line[:idx]
		}

		kept = append(kept, line)
	}

	var stmts []string
	for _, frag := range strings.Split(strings.Join(kept, " "), ";") {
		if stmt := strings.Join(strings.Fields(frag), " "); stmt != "" {
			stmts = append(stmts, stmt)
		}
	}

	return stmts
}
