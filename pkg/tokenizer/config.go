// Package tokenizer implements a from-scratch GFM/CommonMark block
// tokenizer, container stack, link-reference registry, inline scanner, and
// emphasis/link resolver. It produces a mdast.FileSnapshot (flat token
// stream plus a coalesced Node tree) without delegating to any third-party
// Markdown parser.
//
// Inline constructs are dispatched by trigger byte through a per-ParserConfig
// table rather than a package-level registry, so a ParserConfig is threaded
// explicitly through the scan and two documents never share mutable parser
// state.
package tokenizer

// InlineHandler scans one inline construct starting at content[pos] and
// reports how far it consumed plus the tokens it produced. Returning ok=false
// means the handler declined the match; the scanner falls back to literal
// text for the trigger byte.
type InlineHandler func(s *inlineScanner, pos int) (consumed int, ok bool)

// ParserConfig owns all per-document parser configuration: which GFM
// extensions are active, the tab width for indent-sensitive contexts, and
// the trigger-character dispatch table for the inline scanner.
//
// A ParserConfig has no mutable state of its own once constructed and may be
// shared across concurrent Parse calls; each call still gets an independent
// blockTokenizer/containerStack/linkRefRegistry.
type ParserConfig struct {
	// GFM enables GitHub Flavored Markdown extensions: strikethrough,
	// tables, and autolink-without-angle-brackets recognition.
	GFM bool

	// FrontMatter enables YAML front matter recognition at document start.
	FrontMatter bool

	// TabWidth is the tab stop used only in indent-sensitive contexts
	// (code-block indent, list continuation indent).
	TabWidth int

	triggers map[byte]InlineHandler
}

// DefaultTabWidth is CommonMark's tab stop.
const DefaultTabWidth = 4

// NewParserConfig builds the default configuration and wires the built-in
// inline trigger handlers.
func NewParserConfig(gfm bool) *ParserConfig {
	cfg := &ParserConfig{
		GFM:         gfm,
		FrontMatter: true,
		TabWidth:    DefaultTabWidth,
	}
	cfg.triggers = map[byte]InlineHandler{
		'\\': handleBackslashEscape,
		'`':  handleCodeSpan,
		'&':  handleCharEntity,
		'<':  handleAngleConstruct,
		'*':  handleDelimiterRun,
		'_':  handleDelimiterRun,
		'[':  handleLinkOpener,
		']':  handleLinkCloser,
		'!':  handleImageOpener,
	}
	if gfm {
		cfg.triggers['~'] = handleDelimiterRun
	}
	return cfg
}

// IsTrigger reports whether b begins a registered inline handler.
func (c *ParserConfig) IsTrigger(b byte) bool {
	_, ok := c.triggers[b]
	return ok
}

// Handler returns the registered handler for trigger byte b, if any.
func (c *ParserConfig) Handler(b byte) (InlineHandler, bool) {
	h, ok := c.triggers[b]
	return h, ok
}
