package tokenizer

// lineSpan is a half-open byte range identifying one logical line of the
// source, split the way mdast.BuildLines does: StartOffset..NewlineStart is
// the line's content, NewlineStart..EndOffset is its line-ending bytes
// (possibly empty for a final unterminated line).
type lineSpan struct {
	start        int // first content byte
	newlineStart int // first byte of \n or \r\n
	end          int // byte after the line ending (== newlineStart at EOF)
}

// len returns the content length of the line, excluding the line ending.
func (l lineSpan) len(content []byte) int {
	return l.newlineStart - l.start
}

// scanner is a byte→line iterator with position bookkeeping. It does not
// itself expand tabs — tab expansion only happens where CommonMark requires
// indent-sensitive columns, computed on demand by indentWidth.
type scanner struct {
	content []byte
	lines   []lineSpan
}

// newScanner splits content into logical lines, treating \r\n and \n
// identically.
func newScanner(content []byte) *scanner {
	s := &scanner{content: content}
	start := 0
	for i := 0; i < len(content); i++ {
		if content[i] != '\n' {
			continue
		}
		newlineStart := i
		if i > 0 && content[i-1] == '\r' {
			newlineStart = i - 1
		}
		s.lines = append(s.lines, lineSpan{start: start, newlineStart: newlineStart, end: i + 1})
		start = i + 1
	}
	if start <= len(content) {
		s.lines = append(s.lines, lineSpan{start: start, newlineStart: len(content), end: len(content)})
	}
	return s
}

// lineCount returns the number of logical lines.
func (s *scanner) lineCount() int { return len(s.lines) }

// line returns the lineSpan for the given zero-based logical line index.
func (s *scanner) line(i int) lineSpan { return s.lines[i] }

// tabWidth expansion: given a byte column (0-based, counted from the start
// of the physical line) and the current indent-sensitive column, returns the
// column after consuming one tab character per CommonMark's "advance to the
// next multiple of 4" rule.
func advanceTabColumn(col, tabWidth int) int {
	if tabWidth <= 0 {
		tabWidth = DefaultTabWidth
	}
	return col + (tabWidth - col%tabWidth)
}

// indentWidth measures the indent-sensitive column width of the run of
// leading spaces/tabs in content[start:end], expanding tabs to the next
// multiple of tabWidth. Returns the width and the offset of the first
// non-space/tab byte (or end, if the whole range is blank).
func indentWidth(content []byte, start, end, tabWidth int) (width, consumedTo int) {
	col := 0
	i := start
	for i < end {
		switch content[i] {
		case ' ':
			col++
		case '\t':
			col = advanceTabColumn(col, tabWidth)
		default:
			return col, i
		}
		i++
	}
	return col, i
}
