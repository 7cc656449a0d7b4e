package mdast

//go:generate stringer -type=TokenKind -trimprefix=Tok

// TokenKind classifies the type of a token in the Markdown source.
//
// Go has no tagged-union/sum type, so each token variant is realized here as
// a TokenKind enum plus an opaque Meta payload (see meta.go) that callers
// type-assert based on Kind. Block and inline constructs that span multiple
// tokens are bracketed
// by a *Start and matching *End kind, satisfying the "every opener has
// exactly one matching ender" invariant at the token-stream level; the
// mdast.Node tree (built by the coalescer, see pkg/tokenizer/coalesce.go)
// gives the same information as a navigable, balanced-parenthesis tree.
type TokenKind uint16

const (
	// Lexical leaf tokens. Every byte of the source is covered by some
	// token; these are the ones that carry literal source text.
	TokText TokenKind = iota
	TokWhitespace
	TokNewline
	TokBlank // a line containing only whitespace

	// Block openers.
	TokParagraphStart
	TokAtxHeadingStart
	TokSetextHeadingStart
	TokFencedCodeStart
	TokIndentedCodeStart
	TokHTMLBlockStart
	TokBlockQuoteStart
	TokUnorderedListStart
	TokOrderedListStart
	TokNewListItem
	TokTableStart
	TokTableRowStart
	TokFrontMatterStart

	// Block enders, one per opener above.
	TokParagraphEnd
	TokAtxHeadingEnd
	TokSetextHeadingEnd
	TokFencedCodeEnd
	TokIndentedCodeEnd
	TokHTMLBlockEnd
	TokBlockQuoteEnd
	TokUnorderedListEnd
	TokOrderedListEnd
	TokTableEnd
	TokTableRowEnd
	TokFrontMatterEnd

	// Leaf content.
	TokThematicBreak
	TokLinkRefDef

	// Inline tokens.
	TokSpecialText // a delimiter run: '*', '_', or '~'
	TokInlineCode
	TokAngleAutolink
	TokRawHTML
	TokHardBreak
	TokSoftBreak
	TokCharEntity
	TokInlineLinkStart
	TokInlineImageStart
	TokEndLink

	// Lexical markers kept from the raw scan for rules that want byte-exact
	// spans of syntax markers without re-deriving them from Meta.
	TokHeadingMarker
	TokSetextUnderline
	TokListBullet
	TokListNumber
	TokBlockquoteMarker
	TokCodeFence
	TokCodeFenceInfo
	TokEmphasisMarker
	TokLinkOpen
	TokLinkClose
	TokParenOpen
	TokParenClose
	TokImageMarker
	TokBacktick
	TokEscapedChar
	TokHTML

	TokOther
)

// Token represents a classified span of bytes in the Markdown source.
// Tokens are contiguous and non-overlapping, covering [0, len(Content)).
type Token struct {
	// Kind classifies what this token represents.
	Kind TokenKind

	// StartOffset is the byte index where this token begins (inclusive).
	StartOffset int

	// EndOffset is the byte index where this token ends (exclusive).
	EndOffset int

	// Meta holds optional parser-specific metadata (e.g., parsed list index, tag name).
	// Must be treated as opaque by generic logic.
	Meta any
}

// Text returns the source text of this token from the given content.
func (t Token) Text(content []byte) []byte {
	if t.StartOffset < 0 || t.EndOffset > len(content) || t.StartOffset > t.EndOffset {
		return nil
	}
	return content[t.StartOffset:t.EndOffset]
}

// Len returns the length of this token in bytes.
func (t Token) Len() int {
	return t.EndOffset - t.StartOffset
}

// IsEmpty returns true if this token has zero length.
func (t Token) IsEmpty() bool {
	return t.StartOffset == t.EndOffset
}

// ValidateTokens checks that a token slice is valid:
// - Tokens are contiguous and non-overlapping.
// - Tokens cover the full content range [0, contentLen).
// Returns true if valid, false otherwise.
func ValidateTokens(tokens []Token, contentLen int) bool {
	if len(tokens) == 0 {
		return contentLen == 0
	}

	// First token must start at 0.
	if tokens[0].StartOffset != 0 {
		return false
	}

	// Last token must end at contentLen.
	if tokens[len(tokens)-1].EndOffset != contentLen {
		return false
	}

	// Check contiguity.
	for i := 1; i < len(tokens); i++ {
		if tokens[i].StartOffset != tokens[i-1].EndOffset {
			return false
		}
	}

	return true
}
