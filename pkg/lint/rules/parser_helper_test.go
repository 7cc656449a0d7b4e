package rules

import "github.com/scop/mdlint/pkg/tokenizer"

// newTestParser builds a parser for the given flavor string ("commonmark"
// or "gfm"), matching the construction internal/cli wires up from
// configuration. Front matter recognition is always on, same as the CLI.
func newTestParser(flavor string) *tokenizer.Parser {
	return tokenizer.NewParser(flavor == "gfm", true)
}
