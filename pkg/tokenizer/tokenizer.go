// Package tokenizer implements a from-scratch GFM/CommonMark Markdown
// parser: a line-oriented block tokenizer, an inline scanner, an
// emphasis/link delimiter resolver, and a coalescer that assembles the
// finished token stream into an mdast.Node tree. Parser, the package's
// entry point, implements the lint.Parser interface.
package tokenizer

import (
	"context"
	"fmt"

	"github.com/scop/mdlint/pkg/mdast"
)

// Parser implements lint.Parser using the from-scratch GFM/CommonMark
// tokenizer in this package. A Parser holds only immutable configuration
// and is safe for concurrent use; each Parse call builds its own
// blockTokenizer, containerStack, and linkRefRegistry.
type Parser struct {
	cfg *ParserConfig
}

// NewParser builds a Parser. gfm enables GitHub Flavored Markdown
// extensions (strikethrough, tables); frontMatter enables leading YAML
// front matter recognition.
func NewParser(gfm, frontMatter bool) *Parser {
	cfg := NewParserConfig(gfm)
	cfg.FrontMatter = frontMatter
	return &Parser{cfg: cfg}
}

// Parse implements lint.Parser.
func (p *Parser) Parse(ctx context.Context, path string, content []byte) (*mdast.FileSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("tokenizer: parse %s: %w", path, err)
	}

	snap := mdast.NewFileSnapshot(path, content)
	tokens, _ := Tokenize(content, p.cfg)
	snap.Tokens = tokens

	if !mdast.ValidateTokens(snap.Tokens, len(content)) {
		return nil, fmt.Errorf("tokenizer: parse %s: token stream does not cover content losslessly", path)
	}

	coalesce(snap)
	return snap, nil
}
