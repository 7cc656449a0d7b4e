package tokenizer

import (
	"strings"

	"github.com/scop/mdlint/pkg/mdast"
)

// cellSpan is a byte range identifying one table cell's trimmed content
// within a row, alongside the raw (untrimmed, pipe-to-pipe) span used to
// keep token coverage contiguous.
type cellSpan struct {
	rawStart, rawEnd   int
	trimStart, trimEnd int
}

// splitTableRowSpans splits content[start:end] on unescaped '|' into cell
// spans, mirroring splitTableRow's text-only cousin but preserving offsets
// so the tokenizer can emit contiguous, byte-exact tokens.
func splitTableRowSpans(content []byte, start, end int) []cellSpan {
	var spans []cellSpan
	cellStart := start
	i := start
	for i < end {
		if content[i] == '\\' && i+1 < end {
			i += 2
			continue
		}
		if content[i] == '|' {
			spans = append(spans, trimSpan(content, cellStart, i))
			cellStart = i + 1
		}
		i++
	}
	spans = append(spans, trimSpan(content, cellStart, end))
	if len(spans) > 0 && spans[0].trimStart == spans[0].trimEnd {
		spans = spans[1:]
	}
	if len(spans) > 0 && spans[len(spans)-1].trimStart == spans[len(spans)-1].trimEnd {
		spans = spans[:len(spans)-1]
	}
	return spans
}

func trimSpan(content []byte, start, end int) cellSpan {
	ts, te := start, end
	for ts < te && isSpaceOrTab(content[ts]) {
		ts++
	}
	for te > ts && isSpaceOrTab(content[te-1]) {
		te--
	}
	return cellSpan{rawStart: start, rawEnd: end, trimStart: ts, trimEnd: te}
}

func cellText(content []byte, spans []cellSpan) []string {
	out := make([]string, len(spans))
	for i, s := range spans {
		out[i] = string(content[s.trimStart:s.trimEnd])
	}
	return out
}

// isDelimiterRow reports whether text is a GFM table delimiter row: a
// pipe-separated sequence of cells each matching ":?-+:?", e.g.
// "| --- | :---: | ---: |".
func isDelimiterRow(cells []string) bool {
	if len(cells) == 0 {
		return false
	}
	for _, c := range cells {
		body := c
		if strings.HasPrefix(body, ":") {
			body = body[1:]
		}
		if strings.HasSuffix(body, ":") {
			body = body[:len(body)-1]
		}
		if body == "" || strings.Trim(body, "-") != "" {
			return false
		}
	}
	return true
}

func alignmentsFor(cells []string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		left := strings.HasPrefix(c, ":")
		right := strings.HasSuffix(c, ":")
		switch {
		case left && right:
			out[i] = "center"
		case right:
			out[i] = "right"
		case left:
			out[i] = "left"
		default:
			out[i] = ""
		}
	}
	return out
}

// tryFinalizeTable recognizes a GFM table in a buffered paragraph candidate:
// the first raw line is a header row, the second is a delimiter row with the
// same column count. It
// emits the table's tokens directly to the mainstream and returns true, or
// returns false (emitting nothing) so the caller falls back to an ordinary
// paragraph.
func (t *blockTokenizer) tryFinalizeTable(buf []mdast.Token) bool {
	if !t.cfg.GFM {
		return false
	}
	var rawLines []mdast.Token
	for _, tok := range buf {
		if isRawPlaceholder(tok) {
			rawLines = append(rawLines, tok)
		}
	}
	if len(rawLines) < 2 {
		return false
	}
	headerSpans := splitTableRowSpans(t.content, rawLines[0].StartOffset, rawLines[0].EndOffset)
	delimSpans := splitTableRowSpans(t.content, rawLines[1].StartOffset, rawLines[1].EndOffset)
	delimCells := cellText(t.content, delimSpans)
	if len(headerSpans) == 0 || len(headerSpans) != len(delimCells) || !isDelimiterRow(delimCells) {
		return false
	}
	aligns := alignmentsFor(delimCells)

	start := rawLines[0].StartOffset
	end := rawLines[len(rawLines)-1].EndOffset
	t.tokens = append(t.tokens, mdast.Token{Kind: mdast.TokTableStart, StartOffset: start, EndOffset: start,
		Meta: &mdast.TableAttrs{Alignments: aligns}})

	t.emitTableRow(rawLines[0], headerSpans, aligns, true)
	t.emitTableRow(rawLines[1], delimSpans, aligns, false) // delimiter row kept for byte coverage, not a rendered row
	for _, row := range rawLines[2:] {
		spans := splitTableRowSpans(t.content, row.StartOffset, row.EndOffset)
		t.emitTableRow(row, spans, aligns, false)
	}

	t.tokens = append(t.tokens, mdast.Token{Kind: mdast.TokTableEnd, StartOffset: end, EndOffset: end})
	return true
}

// emitTableRow emits a contiguous token run for one table row: raw
// separator/whitespace bytes around each cell as TokOther, and the trimmed
// cell content (inline-scanned and emphasis-resolved) as its own span.
func (t *blockTokenizer) emitTableRow(line mdast.Token, spans []cellSpan, aligns []string, header bool) {
	t.tokens = append(t.tokens, mdast.Token{Kind: mdast.TokTableRowStart, StartOffset: line.StartOffset, EndOffset: line.StartOffset,
		Meta: &mdast.TableAttrs{IsHeader: header}})
	pos := line.StartOffset
	for i, s := range spans {
		if s.rawStart > pos {
			t.tokens = append(t.tokens, mdast.Token{Kind: mdast.TokOther, StartOffset: pos, EndOffset: s.rawStart})
		}
		if s.trimStart > s.rawStart {
			t.tokens = append(t.tokens, mdast.Token{Kind: mdast.TokWhitespace, StartOffset: s.rawStart, EndOffset: s.trimStart})
		}
		align := ""
		if i < len(aligns) {
			align = aligns[i]
		}
		if s.trimEnd > s.trimStart {
			seg := lineSpan{start: s.trimStart, newlineStart: s.trimEnd, end: s.trimEnd}
			scanned := resolveInline(scanInlineSegments(t.content, []lineSpan{seg}, t.cfg), t.refs, t.content)
			t.tokens = append(t.tokens, mdast.Token{Kind: mdast.TokOther, StartOffset: s.trimStart, EndOffset: s.trimStart,
				Meta: &mdast.TableAttrs{ColumnIndex: i, Alignments: aligns, IsHeader: header}})
			t.tokens = append(t.tokens, scanned...)
		}
		if s.trimEnd < s.rawEnd {
			t.tokens = append(t.tokens, mdast.Token{Kind: mdast.TokWhitespace, StartOffset: s.trimEnd, EndOffset: s.rawEnd})
		}
		pos = s.rawEnd
		if pos < line.EndOffset && (i < len(spans)-1 || pos < line.EndOffset) {
			next := line.EndOffset
			if i < len(spans)-1 {
				next = spans[i+1].rawStart - 1
			}
			if next > pos {
				t.tokens = append(t.tokens, mdast.Token{Kind: mdast.TokOther, StartOffset: pos, EndOffset: next})
			}
			pos = next
		}
	}
	if line.EndOffset > pos {
		t.tokens = append(t.tokens, mdast.Token{Kind: mdast.TokOther, StartOffset: pos, EndOffset: line.EndOffset})
	}
	t.tokens = append(t.tokens, mdast.Token{Kind: mdast.TokTableRowEnd, StartOffset: line.EndOffset, EndOffset: line.EndOffset})
}
