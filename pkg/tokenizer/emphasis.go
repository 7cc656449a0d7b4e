package tokenizer

import "github.com/scop/mdlint/pkg/mdast"

// delimEntry tracks one TokSpecialText run on the emphasis delimiter stack.
type delimEntry struct {
	tokenIdx  int // index into the working slice
	delimiter byte
	length    int // remaining (unconsumed) length
	canOpen   bool
	canClose  bool
	active    bool

	// consumedFromStart and consumedFromEnd count, respectively, how many
	// bytes have been carved off the run's left (start) edge by its use as
	// a closer and off its right (end) edge by its use as an opener. A run
	// can be consumed by more than one matched pair (the common
	// "***word***" case forms a strong pair from two of its three
	// characters, then an emphasis pair from the one left over), and each
	// consumption always eats into the edge nearest the content it
	// brackets, so these two counters are enough to reconstruct both the
	// exact bytes each match owns and, if any remain, the unconsumed
	// leftover's span regardless of how many matches occurred.
	consumedFromStart int
	consumedFromEnd   int
}

// linkOpenerEntry tracks one unmatched '[' or '![' on the link-opener stack.
type linkOpenerEntry struct {
	tokenIdx int
	isImage  bool
	active   bool // deactivated once a link is formed to its left (nested-link rule)
}

// resolveInline runs the two-stack emphasis and link resolution pass over a
// flat sequence of raw inline tokens produced by the scanner, returning the
// final resolved token sequence. content is the full document buffer the
// tokens' offsets index into, needed to recover shortcut/collapsed
// reference labels from their bracketed text.
func resolveInline(tokens []mdast.Token, refs *linkRefRegistry, content []byte) []mdast.Token {
	r := &resolver{tokens: tokens, refs: refs, buf: content}
	r.run()
	return r.finalize()
}

type resolver struct {
	tokens  []mdast.Token
	refs    *linkRefRegistry
	buf     []byte // source content, for recovering reference labels
	delims  []delimEntry
	openers []linkOpenerEntry
	// dropped marks indices of tokens consumed into a larger construct
	// (e.g. a matched '[' / ']' pair) that should not appear standalone in
	// the final output.
	dropped map[int]bool
	// replaced holds the replacement pieces for a token at a given index,
	// in final left-to-right byte order. A delimiter run consumed by more
	// than one matched pair accumulates more than one piece here.
	replaced map[int][]mdast.Token
	// matchedClose marks TokEndLink indices that successfully paired with
	// an opener, so finalize leaves them as structural closers instead of
	// falling back to literal text.
	matchedClose map[int]bool
}

func (r *resolver) run() {
	r.dropped = make(map[int]bool)
	r.replaced = make(map[int][]mdast.Token)
	r.matchedClose = make(map[int]bool)
	for i, tok := range r.tokens {
		switch tok.Kind {
		case mdast.TokSpecialText:
			meta, _ := tok.Meta.(*mdast.SpecialTextMeta)
			if meta == nil {
				continue
			}
			r.delims = append(r.delims, delimEntry{tokenIdx: i, delimiter: meta.Delimiter, length: meta.RunLength,
				canOpen: meta.CanOpen, canClose: meta.CanClose, active: true})
		case mdast.TokLinkOpen:
			isImage := i > 0 && r.tokens[i-1].Kind == mdast.TokImageMarker
			r.openers = append(r.openers, linkOpenerEntry{tokenIdx: i, isImage: isImage, active: true})
		case mdast.TokEndLink:
			r.resolveLinkClose(i, tok)
		}
	}
	r.resolveEmphasis(0, len(r.delims))
}

// resolveLinkClose resolves a ']' against the nearest active opener on the
// link-opener stack: try the nearest active opener; on success, deactivate
// earlier openers for a plain link (nested links disallowed) but leave
// image openers active (nested images inside link text allowed).
func (r *resolver) resolveLinkClose(closeIdx int, closeTok mdast.Token) {
	meta, _ := closeTok.Meta.(*mdast.LinkMeta)
	openerPos := -1
	for i := len(r.openers) - 1; i >= 0; i-- {
		if r.openers[i].active {
			openerPos = i
			break
		}
	}
	if openerPos < 0 {
		// No active opener: leave closeIdx as-is, finalize's literal-text
		// fallback for an unmatched TokEndLink covers it.
		return
	}
	opener := r.openers[openerPos]

	dest, title, label := "", "", ""
	labelType := mdast.RefStyleShortcut
	if meta != nil {
		labelType = meta.LabelType
		switch labelType {
		case mdast.RefStyleInline:
			dest, title = meta.Destination, meta.Title
		case mdast.RefStyleFull:
			label = meta.Destination
		case mdast.RefStyleCollapsed:
			// "[]": the label is the bracketed text itself, recovered below
			// the same way a shortcut reference's label is.
		}
	}
	if labelType == mdast.RefStyleFull || labelType == mdast.RefStyleCollapsed || labelType == mdast.RefStyleShortcut {
		if labelType == mdast.RefStyleShortcut || label == "" {
			label = r.labelTextBetween(opener.tokenIdx, closeIdx)
		}
		def, ok := r.refs.lookup(label)
		if !ok {
			// Unresolved reference: leave both the opener and closeIdx
			// unconsumed so they fall back to literal text in finalize,
			// same as an unmatched bracket.
			return
		}
		dest, title = def.Destination, def.Title
	}

	startKind := mdast.TokInlineLinkStart
	startOffset := r.tokens[opener.tokenIdx].StartOffset
	if opener.isImage {
		startKind = mdast.TokInlineImageStart
		if opener.tokenIdx > 0 {
			// Extend the replacement's span backward to also cover the
			// leading '!' marker token, which is dropped below; otherwise
			// its byte would vanish from the output entirely.
			startOffset = r.tokens[opener.tokenIdx-1].StartOffset
		}
	}
	endTok := r.tokens[opener.tokenIdx]
	r.replaced[opener.tokenIdx] = []mdast.Token{{Kind: startKind, StartOffset: startOffset, EndOffset: endTok.EndOffset,
		Meta: &mdast.LinkMeta{LabelType: labelType, Destination: dest, Title: title, AltText: r.labelTextBetween(opener.tokenIdx, closeIdx)}}}
	if opener.isImage && opener.tokenIdx > 0 {
		r.dropped[opener.tokenIdx-1] = true // the leading '!' marker folds into the image start's extended span
	}
	r.matchedClose[closeIdx] = true

	// Resolve emphasis within the bracketed text range before consuming the
	// delimiter stack entries, so emphasis nested in link text still works.
	r.resolveEmphasisInRange(opener.tokenIdx, closeIdx)

	if !opener.isImage {
		for i := 0; i < openerPos; i++ {
			r.openers[i].active = false
		}
	}
	r.openers = r.openers[:openerPos]
}

// labelTextBetween concatenates literal text tokens strictly between two
// token indices, used to recover a shortcut/collapsed reference label.
func (r *resolver) labelTextBetween(start, end int) string {
	var out []byte
	for i := start + 1; i < end; i++ {
		if r.tokens[i].Kind == mdast.TokText {
			out = append(out, r.tokens[i].Text(r.content())...)
		}
	}
	return string(out)
}

// content returns the source buffer backing the tokens' byte offsets, used
// to recover a shortcut/collapsed reference's label from its bracketed text.
func (r *resolver) content() []byte { return r.buf }

// resolveEmphasis implements CommonMark §6.2's delimiter-stack walk, applied
// to the whole document-level delimiter slice.
func (r *resolver) resolveEmphasis(lo, hi int) {
	r.walkDelimiters(lo, hi)
}

// resolveEmphasisInRange restricts the walk to delimiters whose token index
// falls within (openIdx, closeIdx); used to resolve emphasis nested inside a
// link or image's text before that text's surrounding brackets are consumed.
func (r *resolver) resolveEmphasisInRange(openIdx, closeIdx int) {
	lo, hi := -1, -1
	for i, d := range r.delims {
		if d.tokenIdx > openIdx && d.tokenIdx < closeIdx {
			if lo < 0 {
				lo = i
			}
			hi = i + 1
		}
	}
	if lo < 0 {
		return
	}
	r.walkDelimiters(lo, hi)
}

// walkDelimiters implements CommonMark §6.2's process_emphasis: for each
// potential closer in turn, keep matching it against openers (nearest
// first) until the closer's delimiter run is fully consumed or no opener
// remains. A single delimiter run commonly takes more than one match to
// exhaust — "***word***" forms a strong pair from its innermost two
// characters, then an emphasis pair from the one character left on each
// side — so the closer is retried in place rather than advancing past it
// after only a partial match.
func (r *resolver) walkDelimiters(lo, hi int) {
	for closeI := lo; closeI < hi; closeI++ {
		close := &r.delims[closeI]
		if !close.active || !close.canClose || close.length <= 0 {
			continue
		}
		if close.delimiter == '~' {
			r.matchStrikethrough(closeI, lo)
			continue
		}
		for close.length > 0 {
			openI := -1
			for i := closeI - 1; i >= lo; i-- {
				open := &r.delims[i]
				if !open.active || open.delimiter != close.delimiter || !open.canOpen || open.length <= 0 {
					continue
				}
				if (open.canClose || close.canOpen) && (open.length+close.length)%3 == 0 &&
					!(open.length%3 == 0 && close.length%3 == 0) {
					continue
				}
				openI = i
				break
			}
			if openI < 0 {
				break
			}
			open := &r.delims[openI]
			strong := open.length >= 2 && close.length >= 2
			r.emitEmphasisPair(open, close, strong)
			if open.length == 0 {
				open.active = false
			}
		}
		if close.length == 0 {
			close.active = false
		}
	}
}

// matchStrikethrough mirrors walkDelimiters' retry-until-exhausted loop for
// '~' runs, which GFM always pairs as a double-tilde (strong-style, two
// characters per side) rather than CommonMark's open-ended emphasis rules.
func (r *resolver) matchStrikethrough(closeI, lo int) {
	close := &r.delims[closeI]
	for close.length > 0 {
		openI := -1
		for i := closeI - 1; i >= lo; i-- {
			open := &r.delims[i]
			if !open.active || open.delimiter != '~' || !open.canOpen || open.length <= 0 {
				continue
			}
			openI = i
			break
		}
		if openI < 0 {
			break
		}
		open := &r.delims[openI]
		double := open.length >= 2 && close.length >= 2
		r.emitEmphasisPair(open, close, double)
		if open.length == 0 {
			open.active = false
		}
	}
	if close.length == 0 {
		close.active = false
	}
}

// emitEmphasisPair consumes consume characters (2 if strong, else 1) from
// both delimiters and records Start/End token replacements bracketing the
// opened span. An opener's matched characters always come from its current
// right (content-facing) edge and a closer's from its current left
// (content-facing) edge, so repeated calls against the same run (the
// "***word***" case) correctly carve progressively further from each edge
// rather than overlapping or re-deriving the same bytes.
func (r *resolver) emitEmphasisPair(open, close *delimEntry, strong bool) {
	consume := 1
	if strong {
		consume = 2
	}

	openTok := r.tokens[open.tokenIdx]
	closeTok := r.tokens[close.tokenIdx]
	openEnd := openTok.EndOffset - open.consumedFromEnd
	openStart := openEnd - consume
	closeStart := closeTok.StartOffset + close.consumedFromStart
	closeEnd := closeStart + consume

	open.length -= consume
	close.length -= consume
	open.consumedFromEnd += consume
	close.consumedFromStart += consume

	level := 1
	if strong {
		level = 2
	}
	r.markEmphasisMarker(open.tokenIdx, openStart, openEnd, level, true, open.delimiter)
	r.markEmphasisMarker(close.tokenIdx, closeStart, closeEnd, level, false, close.delimiter)
}

// markEmphasisMarker records a narrowed emphasis-marker span for one
// consumption of an opener/closer delimiter token. A run consumed by more
// than one matched pair accumulates more than one piece per token index: an
// opener's pieces are added nearest-first, so each new one sits to the left
// of the previous ones in byte order (prepend); a closer's pieces are added
// nearest-first too, but that means each new one sits to the right (append).
func (r *resolver) markEmphasisMarker(idx, start, end, level int, isOpen bool, delimiter byte) {
	tok := mdast.Token{Kind: mdast.TokEmphasisMarker, StartOffset: start, EndOffset: end,
		Meta: &mdast.EmphasisMarkerMeta{Level: level, IsOpen: isOpen, Delimiter: delimiter}}
	if isOpen {
		r.replaced[idx] = append([]mdast.Token{tok}, r.replaced[idx]...)
	} else {
		r.replaced[idx] = append(r.replaced[idx], tok)
	}
}

// insertLeftovers fills in the unconsumed remainder of any delimiter run
// that was matched at least once but not fully consumed (e.g. a length-5
// run used for one strong pair and one emphasis pair still has one
// character left over). The leftover's span is derived from the run's
// consumedFromStart/consumedFromEnd counters, which stay accurate
// regardless of how many matches contributed to them, and is spliced in
// between whatever closer-side pieces (nearest-first, so appended in byte
// order) and opener-side pieces (nearest-first, so prepended in reverse
// byte order) already occupy that index, preserving left-to-right order.
// A run that matched zero times is left alone: finalize's existing
// unmatched-TokSpecialText fallback already turns it into literal text.
func (r *resolver) insertLeftovers() {
	for _, d := range r.delims {
		if d.length <= 0 {
			continue
		}
		pieces, ok := r.replaced[d.tokenIdx]
		if !ok {
			continue
		}
		tok := r.tokens[d.tokenIdx]
		leftover := mdast.Token{Kind: mdast.TokText,
			StartOffset: tok.StartOffset + d.consumedFromStart,
			EndOffset:   tok.EndOffset - d.consumedFromEnd}
		closeCount := 0
		for _, p := range pieces {
			if m, ok := p.Meta.(*mdast.EmphasisMarkerMeta); ok && !m.IsOpen {
				closeCount++
			}
		}
		merged := make([]mdast.Token, 0, len(pieces)+1)
		merged = append(merged, pieces[:closeCount]...)
		merged = append(merged, leftover)
		merged = append(merged, pieces[closeCount:]...)
		r.replaced[d.tokenIdx] = merged
	}
}

// finalize rebuilds the final token slice: dropped indices are skipped,
// replaced indices are expanded in place, everything else passes through
// unchanged. Any TokSpecialText left entirely unmatched becomes literal
// TokText.
func (r *resolver) finalize() []mdast.Token {
	r.insertLeftovers()
	out := make([]mdast.Token, 0, len(r.tokens))
	for i, tok := range r.tokens {
		if r.dropped[i] {
			continue
		}
		if reps, ok := r.replaced[i]; ok {
			out = append(out, reps...)
			continue
		}
		if tok.Kind == mdast.TokSpecialText {
			out = append(out, mdast.Token{Kind: mdast.TokText, StartOffset: tok.StartOffset, EndOffset: tok.EndOffset})
			continue
		}
		if tok.Kind == mdast.TokLinkOpen || tok.Kind == mdast.TokImageMarker {
			out = append(out, mdast.Token{Kind: mdast.TokText, StartOffset: tok.StartOffset, EndOffset: tok.EndOffset})
			continue
		}
		if tok.Kind == mdast.TokEndLink && !r.matchedClose[i] {
			out = append(out, mdast.Token{Kind: mdast.TokText, StartOffset: tok.StartOffset, EndOffset: tok.EndOffset})
			continue
		}
		out = append(out, tok)
	}
	return mergeAdjacentText(out)
}

// mergeAdjacentText coalesces consecutive TokText tokens, a cheap first
// step of the coalescing pass that is worth doing inline here.
func mergeAdjacentText(tokens []mdast.Token) []mdast.Token {
	if len(tokens) == 0 {
		return tokens
	}
	out := make([]mdast.Token, 0, len(tokens))
	out = append(out, tokens[0])
	for _, tok := range tokens[1:] {
		last := &out[len(out)-1]
		if last.Kind == mdast.TokText && tok.Kind == mdast.TokText && last.EndOffset == tok.StartOffset {
			last.EndOffset = tok.EndOffset
			continue
		}
		out = append(out, tok)
	}
	return out
}
