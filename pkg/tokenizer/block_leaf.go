package tokenizer

import (
	"strings"

	"github.com/scop/mdlint/pkg/mdast"
)

// closeLeaf finalizes whatever leaf is currently open, if any. eof is true
// only when called at end-of-document, so an unterminated fenced code block
// can be force-closed.
func (t *blockTokenizer) closeLeaf(eof bool) {
	switch t.leaf {
	case leafParagraph:
		pending := t.leafPendingBreak
		t.leafPendingBreak = nil
		t.finalizeLeaf(mdast.TokParagraphStart, mdast.TokParagraphEnd, nil)
		if pending != nil {
			t.tokens = append(t.tokens, mdast.Token{Kind: mdast.TokNewline, StartOffset: pending.StartOffset, EndOffset: pending.EndOffset})
		}
	case leafIndentedCode:
		pos := t.lastTokenEnd()
		t.tokens = append(t.tokens, mdast.Token{Kind: mdast.TokIndentedCodeEnd, StartOffset: pos, EndOffset: pos})
		t.leaf = leafNone
	case leafFencedCode:
		if eof {
			pos := t.lastTokenEnd()
			t.tokens = append(t.tokens, mdast.Token{Kind: mdast.TokFencedCodeEnd, StartOffset: pos, EndOffset: pos,
				Meta: &mdast.EndMeta{ForceClosed: true}})
			t.leaf = leafNone
		}
	case leafHTMLBlock:
		pos := t.lastTokenEnd()
		t.tokens = append(t.tokens, mdast.Token{Kind: mdast.TokHTMLBlockEnd, StartOffset: pos, EndOffset: pos})
		t.leaf = leafNone
	}
}

func (t *blockTokenizer) lastTokenEnd() int {
	if len(t.tokens) == 0 {
		return 0
	}
	return t.tokens[len(t.tokens)-1].EndOffset
}

func isRawPlaceholder(tok mdast.Token) bool {
	if tok.Kind != mdast.TokText {
		return false
	}
	_, ok := tok.Meta.(*rawLineMarker)
	return ok
}

// appendParagraphLine buffers one line of paragraph/setext-candidate text.
// Inline scanning and LRD detection are deferred to leaf close, since both
// need to see the whole run of lines at once.
func (t *blockTokenizer) appendParagraphLine(line lineSpan, start int) {
	if t.leaf != leafParagraph {
		t.leaf = leafParagraph
		t.leafBuf = nil
		t.leafPendingBreak = nil
	}
	if t.leafPendingBreak != nil {
		t.leafBuf = append(t.leafBuf, *t.leafPendingBreak)
		t.leafPendingBreak = nil
	}
	end := line.newlineStart
	trim := end
	spaces := 0
	for trim > start && t.content[trim-1] == ' ' {
		trim--
		spaces++
	}
	hard := spaces >= 2
	t.leafBuf = append(t.leafBuf, mdast.Token{Kind: mdast.TokText, StartOffset: start, EndOffset: end, Meta: &rawLineMarker{}})
	if line.newlineStart < line.end {
		kind := mdast.TokSoftBreak
		if hard {
			kind = mdast.TokHardBreak
		}
		tok := mdast.Token{Kind: kind, StartOffset: line.newlineStart, EndOffset: line.end}
		t.leafPendingBreak = &tok
	}
}

// finalizeLeaf closes the buffered paragraph/setext leaf: strips any
// leading link reference definitions, runs the inline scanner over each
// remaining raw content line, resolves emphasis/links over the combined
// sequence, and wraps the result in startKind/endKind.
func (t *blockTokenizer) finalizeLeaf(startKind, endKind mdast.TokenKind, meta any) {
	buf := t.leafBuf
	t.leafBuf = nil
	t.leaf = leafNone
	if len(buf) == 0 {
		return
	}

	if startKind == mdast.TokParagraphStart && t.tryFinalizeTable(buf) {
		return
	}

	startIdx := 0
	if startKind == mdast.TokParagraphStart {
		startIdx = t.stripLeadingLRDs(buf)
	}
	remainder := buf[startIdx:]
	if len(remainder) == 0 {
		return
	}

	var expanded []mdast.Token
	for _, tok := range remainder {
		if isRawPlaceholder(tok) {
			seg := lineSpan{start: tok.StartOffset, newlineStart: tok.EndOffset, end: tok.EndOffset}
			expanded = append(expanded, scanInlineSegments(t.content, []lineSpan{seg}, t.cfg)...)
			continue
		}
		expanded = append(expanded, tok)
	}
	resolved := resolveInline(expanded, t.refs, t.content)
	if len(resolved) == 0 {
		return
	}
	start := resolved[0].StartOffset
	end := resolved[len(resolved)-1].EndOffset
	t.tokens = append(t.tokens, mdast.Token{Kind: startKind, StartOffset: start, EndOffset: start, Meta: meta})
	t.tokens = append(t.tokens, resolved...)
	t.tokens = append(t.tokens, mdast.Token{Kind: endKind, StartOffset: end, EndOffset: end})
}

// stripLeadingLRDs consumes leading link reference definition lines from
// buf, registering each with the document's linkRefRegistry and emitting a
// TokLinkRefDef token (plus any lexical tokens that preceded it, e.g. block
// quote markers) straight to the mainstream. It returns the index into buf
// where ordinary paragraph content resumes.
//
// Only single-line "[label]: dest" and "[label]: dest \"title\"" forms are
// recognized; a title continuing on a line by itself immediately after is
// also supported, but a title spanning a blank line is not (see DESIGN.md).
func (t *blockTokenizer) stripLeadingLRDs(buf []mdast.Token) int {
	i := 0
	for i < len(buf) {
		j := i
		for j < len(buf) && !isRawPlaceholder(buf[j]) {
			j++
		}
		if j >= len(buf) {
			break
		}
		raw := buf[j]
		text := string(t.content[raw.StartOffset:raw.EndOffset])
		label, dest, title, ok := parseLRDLine(text)
		if !ok {
			return i
		}
		t.tokens = append(t.tokens, buf[i:j]...)
		norm := NormalizeLabel(label)
		dup := !t.refs.define(label, dest, title)
		t.tokens = append(t.tokens, mdast.Token{Kind: mdast.TokLinkRefDef, StartOffset: raw.StartOffset, EndOffset: raw.EndOffset,
			Meta: &mdast.LinkRefDefMeta{Label: label, NormalizedLabel: norm, Destination: dest, Title: title, Duplicate: dup}})
		i = j + 1
		if i < len(buf) && (buf[i].Kind == mdast.TokSoftBreak || buf[i].Kind == mdast.TokHardBreak) {
			t.tokens = append(t.tokens, mdast.Token{Kind: mdast.TokNewline, StartOffset: buf[i].StartOffset, EndOffset: buf[i].EndOffset})
			i++
		}
	}
	return i
}

// parseLRDLine recognizes "[label]: destination" with an optional trailing
// quoted/parenthesized title, all on one physical line.
func parseLRDLine(line string) (label, dest, title string, ok bool) {
	s := strings.TrimSpace(line)
	if len(s) == 0 || s[0] != '[' {
		return "", "", "", false
	}
	depth := 0
	closeIdx := -1
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				closeIdx = i
			}
		}
		if closeIdx >= 0 {
			break
		}
	}
	if closeIdx < 0 || closeIdx+1 >= len(s) || s[closeIdx+1] != ':' {
		return "", "", "", false
	}
	label = s[1:closeIdx]
	if strings.TrimSpace(label) == "" {
		return "", "", "", false
	}
	rest := strings.TrimSpace(s[closeIdx+2:])
	if rest == "" {
		return "", "", "", false
	}
	destEnd := len(rest)
	for i := range rest {
		if rest[i] == ' ' || rest[i] == '\t' {
			destEnd = i
			break
		}
	}
	dest = rest[:destEnd]
	if strings.HasPrefix(dest, "<") && strings.HasSuffix(dest, ">") && len(dest) >= 2 {
		dest = dest[1 : len(dest)-1]
	}
	titlePart := strings.TrimSpace(rest[destEnd:])
	if titlePart != "" {
		if len(titlePart) >= 2 {
			open, close := titlePart[0], titlePart[len(titlePart)-1]
			if (open == '"' && close == '"') || (open == '\'' && close == '\'') || (open == '(' && close == ')') {
				title = titlePart[1 : len(titlePart)-1]
			} else {
				return "", "", "", false
			}
		} else {
			return "", "", "", false
		}
	}
	return label, dest, title, true
}

// tryFrontMatter recognizes a leading "---\n...\n---\n" YAML front matter
// block and returns the logical line index to resume block tokenization
// from.
func (t *blockTokenizer) tryFrontMatter() int {
	if t.sc.lineCount() == 0 {
		return 0
	}
	first := t.sc.line(0)
	if string(t.content[first.start:first.newlineStart]) != "---" {
		return 0
	}
	for i := 1; i < t.sc.lineCount(); i++ {
		l := t.sc.line(i)
		if string(t.content[l.start:l.newlineStart]) == "---" {
			t.tokens = append(t.tokens, mdast.Token{Kind: mdast.TokFrontMatterStart, StartOffset: first.start, EndOffset: first.start})
			t.tokens = append(t.tokens, mdast.Token{Kind: mdast.TokText, StartOffset: first.start, EndOffset: l.end})
			t.tokens = append(t.tokens, mdast.Token{Kind: mdast.TokFrontMatterEnd, StartOffset: l.end, EndOffset: l.end})
			return i + 1
		}
	}
	return 0
}

// tryHTMLBlockOpen recognizes the start of an HTML block, covering kinds
// 1-7 from the CommonMark HTML block grammar.
func (t *blockTokenizer) tryHTMLBlockOpen(line lineSpan, start int) bool {
	end := line.newlineStart
	rest := strings.ToLower(string(t.content[start:end]))
	kind := 0
	switch {
	case strings.HasPrefix(rest, "<script") || strings.HasPrefix(rest, "<pre") || strings.HasPrefix(rest, "<style"):
		kind = 1
	case strings.HasPrefix(rest, "<!--"):
		kind = 2
	case strings.HasPrefix(rest, "<?"):
		kind = 3
	case strings.HasPrefix(rest, "<!"):
		kind = 4
	case strings.HasPrefix(rest, "<![cdata["):
		kind = 5
	case isHTMLBlockKind6Tag(rest):
		kind = 6
	case isHTMLBlockKind7Line(rest):
		kind = 7
	default:
		return false
	}
	t.closeLeaf(false)
	t.leaf = leafHTMLBlock
	t.htmlKind = kind
	t.tokens = append(t.tokens, mdast.Token{Kind: mdast.TokHTMLBlockStart, StartOffset: start, EndOffset: start,
		Meta: &mdast.HTMLBlockMeta{Kind: kind}})
	t.tokens = append(t.tokens, mdast.Token{Kind: mdast.TokHTML, StartOffset: start, EndOffset: end})
	if line.newlineStart < line.end {
		t.tokens = append(t.tokens, mdast.Token{Kind: mdast.TokNewline, StartOffset: line.newlineStart, EndOffset: line.end})
	}
	if kind == 1 && strings.Contains(rest, "</script>") || kind == 1 && strings.Contains(rest, "</style>") || kind == 1 && strings.Contains(rest, "</pre>") {
		t.closeLeaf(false)
	}
	if kind == 2 && strings.Contains(rest, "-->") {
		t.closeLeaf(false)
	}
	if kind == 7 {
		// Kind 7 closes on the next blank line; handled by handleBlankLine.
	}
	return true
}

var htmlBlockTags6 = map[string]bool{
	"address": true, "article": true, "aside": true, "base": true, "basefont": true,
	"blockquote": true, "body": true, "caption": true, "center": true, "col": true,
	"colgroup": true, "dd": true, "details": true, "dialog": true, "dir": true,
	"div": true, "dl": true, "dt": true, "fieldset": true, "figcaption": true,
	"figure": true, "footer": true, "form": true, "frame": true, "frameset": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"head": true, "header": true, "hr": true, "html": true, "iframe": true,
	"legend": true, "li": true, "link": true, "main": true, "menu": true,
	"menuitem": true, "nav": true, "noframes": true, "ol": true, "optgroup": true,
	"option": true, "p": true, "param": true, "section": true, "summary": true,
	"table": true, "tbody": true, "td": true, "tfoot": true, "th": true,
	"thead": true, "title": true, "tr": true, "track": true, "ul": true,
}

func isHTMLBlockKind6Tag(lowerLine string) bool {
	s := strings.TrimPrefix(lowerLine, "<")
	s = strings.TrimPrefix(s, "/")
	end := 0
	for end < len(s) && (s[end] == '-' || (s[end] >= 'a' && s[end] <= 'z') || (s[end] >= '0' && s[end] <= '9')) {
		end++
	}
	return htmlBlockTags6[s[:end]]
}

func isHTMLBlockKind7Line(lowerLine string) bool {
	return strings.HasPrefix(lowerLine, "<") && !strings.HasPrefix(lowerLine, "<!") && !strings.HasPrefix(lowerLine, "<?")
}

// continueHTMLBlock appends one line of an open HTML block's raw content,
// returning false if the block's terminating condition means the line
// should instead be reclassified from scratch.
func (t *blockTokenizer) continueHTMLBlock(line lineSpan, pos int) bool {
	end := line.newlineStart
	lower := strings.ToLower(string(t.content[pos:end]))
	t.tokens = append(t.tokens, mdast.Token{Kind: mdast.TokHTML, StartOffset: pos, EndOffset: end})
	if line.newlineStart < line.end {
		t.tokens = append(t.tokens, mdast.Token{Kind: mdast.TokNewline, StartOffset: line.newlineStart, EndOffset: line.end})
	}
	switch t.htmlKind {
	case 1:
		if strings.Contains(lower, "</script>") || strings.Contains(lower, "</style>") || strings.Contains(lower, "</pre>") {
			t.closeLeaf(false)
		}
	case 2:
		if strings.Contains(lower, "-->") {
			t.closeLeaf(false)
		}
	case 3:
		if strings.Contains(lower, "?>") {
			t.closeLeaf(false)
		}
	case 4:
		if strings.Contains(lower, ">") {
			t.closeLeaf(false)
		}
	case 5:
		if strings.Contains(lower, "]]>") {
			t.closeLeaf(false)
		}
	}
	return true
}

func (t *blockTokenizer) maybeCloseHTMLBlockOnBlank() {
	if t.htmlKind == 6 || t.htmlKind == 7 {
		t.closeLeaf(false)
	}
}
