package tokenizer

import "github.com/scop/mdlint/pkg/mdast"

// coalesce builds the mdast.Node tree from the finished, flat token stream
// by walking it once with an explicit stack, opening a Node on every
// block/inline *Start token (and certain leaf tokens that map directly to a
// one-token Node) and closing the innermost matching Node on the
// corresponding *End token.
func coalesce(snap *mdast.FileSnapshot) {
	root := mdast.NewDocument()
	root.FirstToken, root.LastToken = 0, len(snap.Tokens)-1
	root.File = snap

	c := &coalescer{snap: snap, stack: []*mdast.Node{root}}
	for i, tok := range snap.Tokens {
		c.step(i, tok)
	}
	snap.Root = root
}

type coalescer struct {
	snap  *mdast.FileSnapshot
	stack []*mdast.Node
}

func (c *coalescer) top() *mdast.Node { return c.stack[len(c.stack)-1] }

func (c *coalescer) push(n *mdast.Node) {
	n.File = c.snap
	mdast.AppendChild(c.top(), n)
	c.stack = append(c.stack, n)
}

func (c *coalescer) pop(tokenIdx int) *mdast.Node {
	n := c.stack[len(c.stack)-1]
	c.stack = c.stack[:len(c.stack)-1]
	n.LastToken = tokenIdx
	return n
}

func (c *coalescer) leaf(kind mdast.NodeKind, tokenIdx int, block *mdast.BlockAttrs, inline *mdast.InlineAttrs) {
	n := mdast.NewNode(kind)
	n.FirstToken, n.LastToken = tokenIdx, tokenIdx
	n.Block = block
	n.Inline = inline
	n.File = c.snap
	mdast.AppendChild(c.top(), n)
}

func (c *coalescer) open(kind mdast.NodeKind, tokenIdx int, block *mdast.BlockAttrs, inline *mdast.InlineAttrs) {
	n := mdast.NewNode(kind)
	n.FirstToken = tokenIdx
	n.Block = block
	n.Inline = inline
	c.push(n)
}

func (c *coalescer) step(i int, tok mdast.Token) {
	switch tok.Kind {
	case mdast.TokParagraphStart:
		c.open(mdast.NodeParagraph, i, mdast.NewBlockAttrs(), nil)
	case mdast.TokParagraphEnd, mdast.TokAtxHeadingEnd, mdast.TokSetextHeadingEnd, mdast.TokFencedCodeEnd,
		mdast.TokIndentedCodeEnd, mdast.TokHTMLBlockEnd:
		c.pop(i)

	case mdast.TokAtxHeadingStart:
		m, _ := tok.Meta.(*mdast.HeadingMeta)
		attrs := mdast.NewBlockAttrs()
		if m != nil {
			attrs.WithHeadingLevel(m.Level)
			attrs.HeadingHashCount = m.HashCount
		}
		c.open(mdast.NodeHeading, i, attrs, nil)
	case mdast.TokSetextHeadingStart:
		m, _ := tok.Meta.(*mdast.HeadingMeta)
		attrs := mdast.NewBlockAttrs()
		if m != nil {
			attrs.WithHeadingLevel(m.Level)
			attrs.HeadingSetextChar = m.SetextChar
		}
		c.open(mdast.NodeHeading, i, attrs, nil)

	case mdast.TokFencedCodeStart:
		m, _ := tok.Meta.(*mdast.FenceMeta)
		attrs := mdast.NewBlockAttrs()
		cb := &mdast.CodeBlockAttrs{}
		if m != nil {
			cb.FenceChar, cb.FenceLength, cb.Info = m.Char, m.Len, m.Info
		}
		attrs.WithCodeBlock(cb)
		c.open(mdast.NodeCodeBlock, i, attrs, nil)
	case mdast.TokIndentedCodeStart:
		attrs := mdast.NewBlockAttrs()
		attrs.WithCodeBlock(&mdast.CodeBlockAttrs{Indented: true})
		c.open(mdast.NodeCodeBlock, i, attrs, nil)

	case mdast.TokHTMLBlockStart:
		m, _ := tok.Meta.(*mdast.HTMLBlockMeta)
		attrs := mdast.NewBlockAttrs()
		if m != nil {
			attrs.HTMLBlockKind = m.Kind
		}
		c.open(mdast.NodeHTMLBlock, i, attrs, nil)

	case mdast.TokBlockQuoteStart:
		c.open(mdast.NodeBlockquote, i, mdast.NewBlockAttrs(), nil)
	case mdast.TokBlockQuoteEnd:
		c.pop(i)

	case mdast.TokUnorderedListStart, mdast.TokOrderedListStart:
		m, _ := tok.Meta.(*mdast.ListMeta)
		attrs := mdast.NewBlockAttrs()
		la := &mdast.ListAttrs{}
		if m != nil {
			la.Ordered = m.Ordered
			la.StartNumber = m.StartNumber
			la.BulletMarker = string(m.Marker)
			if m.Ordered {
				la.Delimiter = string(m.Marker)
				la.BulletMarker = ""
			}
		}
		attrs.WithList(la)
		c.open(mdast.NodeList, i, attrs, nil)
		c.open(mdast.NodeListItem, i, mdast.NewBlockAttrs(), nil)
	case mdast.TokNewListItem:
		if c.top().Kind == mdast.NodeListItem {
			c.pop(i)
		}
		c.open(mdast.NodeListItem, i, mdast.NewBlockAttrs(), nil)
	case mdast.TokUnorderedListEnd, mdast.TokOrderedListEnd:
		if c.top().Kind == mdast.NodeListItem {
			c.pop(i)
		}
		c.pop(i)

	case mdast.TokFrontMatterStart:
		c.open(mdast.NodeFrontMatter, i, mdast.NewBlockAttrs(), nil)
	case mdast.TokFrontMatterEnd:
		c.pop(i)

	case mdast.TokThematicBreak:
		m, _ := tok.Meta.(*mdast.ThematicBreakMeta)
		attrs := mdast.NewBlockAttrs()
		if m != nil {
			attrs.ThematicBreakChar = m.Char
		}
		c.leaf(mdast.NodeThematicBreak, i, attrs, nil)

	case mdast.TokText, mdast.TokEscapedChar, mdast.TokCharEntity:
		c.leaf(mdast.NodeText, i, nil, mdast.NewInlineAttrs().WithText(tok.Text(c.snap.Content)))
	case mdast.TokSoftBreak:
		c.leaf(mdast.NodeSoftBreak, i, nil, nil)
	case mdast.TokHardBreak:
		c.leaf(mdast.NodeHardBreak, i, nil, nil)
	case mdast.TokInlineCode:
		m, _ := tok.Meta.(*mdast.InlineCodeMeta)
		ia := mdast.NewInlineAttrs()
		if m != nil {
			ia.WithText([]byte(m.Code))
			ia.BacktickCount = m.BacktickCount
		}
		c.leaf(mdast.NodeCodeSpan, i, nil, ia)
	case mdast.TokAngleAutolink:
		m, _ := tok.Meta.(*mdast.AutolinkMeta)
		ia := mdast.NewInlineAttrs()
		if m != nil {
			ia.WithLink(&mdast.LinkAttrs{Destination: m.URI, ReferenceStyle: mdast.RefStyleAutolink})
			ia.AutolinkIsEmail = m.IsEmail
		}
		c.leaf(mdast.NodeAutolink, i, nil, ia)
	case mdast.TokRawHTML:
		c.leaf(mdast.NodeHTMLInline, i, nil, mdast.NewInlineAttrs().WithText(tok.Text(c.snap.Content)))

	case mdast.TokEmphasisMarker:
		m, _ := tok.Meta.(*mdast.EmphasisMarkerMeta)
		level, isOpen := 1, true
		var delim byte = '*'
		if m != nil {
			level, isOpen, delim = m.Level, m.IsOpen, m.Delimiter
		}
		kind := mdast.NodeEmphasis
		switch {
		case delim == '~':
			kind = mdast.NodeStrikethrough
		case level >= 2:
			kind = mdast.NodeStrong
		}
		ia := mdast.NewInlineAttrs().WithEmphasisLevel(level)
		ia.DelimiterChar = delim
		if isOpen {
			c.open(kind, i, nil, ia)
		} else if c.findOpen(kind) {
			c.pop(i)
		}

	case mdast.TokInlineLinkStart:
		m, _ := tok.Meta.(*mdast.LinkMeta)
		ia := mdast.NewInlineAttrs()
		if m != nil {
			ia.WithLink(&mdast.LinkAttrs{Destination: m.Destination, Title: m.Title, ReferenceStyle: m.LabelType})
		}
		c.open(mdast.NodeLink, i, nil, ia)
	case mdast.TokInlineImageStart:
		m, _ := tok.Meta.(*mdast.LinkMeta)
		ia := mdast.NewInlineAttrs()
		if m != nil {
			ia.WithLink(&mdast.LinkAttrs{Destination: m.Destination, Title: m.Title, ReferenceStyle: m.LabelType})
			ia.Text = []byte(m.AltText)
		}
		c.open(mdast.NodeImage, i, nil, ia)
	case mdast.TokEndLink:
		if c.top().Kind == mdast.NodeLink || c.top().Kind == mdast.NodeImage {
			c.pop(i)
		}

	case mdast.TokTableStart:
		m, _ := tok.Meta.(*mdast.TableAttrs)
		attrs := mdast.NewBlockAttrs()
		attrs.Table = m
		c.open(mdast.NodeTable, i, attrs, nil)
	case mdast.TokTableEnd:
		c.pop(i)
	case mdast.TokTableRowStart:
		m, _ := tok.Meta.(*mdast.TableAttrs)
		attrs := mdast.NewBlockAttrs()
		attrs.Table = m
		c.open(mdast.NodeTableRow, i, attrs, nil)
	case mdast.TokTableRowEnd:
		if c.top().Kind == mdast.NodeTableCell {
			c.pop(i)
		}
		c.pop(i)
	case mdast.TokOther:
		if m, ok := tok.Meta.(*mdast.TableAttrs); ok {
			if c.top().Kind == mdast.NodeTableCell {
				c.pop(i)
			}
			attrs := mdast.NewBlockAttrs()
			attrs.Table = m
			c.open(mdast.NodeTableCell, i, attrs, nil)
		}

	case mdast.TokLinkRefDef:
		// Link reference definitions are document-level bookkeeping with no
		// rendered content; they contribute no node.

	default:
		// Whitespace, newlines, blanks, and lexical marker tokens (fence
		// markers, list bullets, block quote markers, etc.) are structural
		// byte coverage only and do not produce nodes.
	}
}

// findOpen reports whether the innermost node of the given kind is
// currently open on the stack, walking outward no further than the nearest
// block boundary (emphasis never crosses a block).
func (c *coalescer) findOpen(kind mdast.NodeKind) bool {
	for i := len(c.stack) - 1; i >= 0; i-- {
		if c.stack[i].Kind == kind {
			return true
		}
		if c.stack[i].IsBlock() {
			return false
		}
	}
	return false
}
