package docs

import (
	"fmt"
	"io"
	"log"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// RenderHTML writes doc as an HTML fragment. References to unknown labels
// are logged and rendered as plain text.
func RenderHTML(doc *Document, w io.Writer) error {
	r := &renderer{doc: doc}
	root := element("div", "class", "document")
	for _, n := range doc.Children {
		r.block(root, n)
	}
	if err := html.Render(w, root); err != nil {
		return fmt.Errorf("rendering %s: %w", doc.Source, err)
	}
	_, err := io.WriteString(w, "\n")
	return err
}

type renderer struct {
	doc *Document
}

func element(tag string, attrs ...string) *html.Node {
	n := &html.Node{Type: html.ElementNode, Data: tag, DataAtom: atom.Lookup([]byte(tag))}
	for i := 0; i+1 < len(attrs); i += 2 {
		n.Attr = append(n.Attr, html.Attribute{Key: attrs[i], Val: attrs[i+1]})
	}
	return n
}

func textNode(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

func (r *renderer) block(parent *html.Node, n Node) {
	switch v := n.(type) {
	case *Section:
		sec := element("section", "id", v.ID)
		h := element(fmt.Sprintf("h%d", min(v.Level, 6)))
		r.inline(h, v.Title)
		sec.AppendChild(h)
		for _, c := range v.Children {
			r.block(sec, c)
		}
		parent.AppendChild(sec)
	case *Paragraph:
		p := element("p")
		r.inline(p, v.Text)
		parent.AppendChild(p)
	case *LiteralBlock:
		pre := element("pre")
		pre.AppendChild(textNode(v.Text))
		parent.AppendChild(pre)
	case *BulletList:
		ul := element("ul")
		for _, item := range v.Items {
			li := element("li")
			r.inline(li, item)
			ul.AppendChild(li)
		}
		parent.AppendChild(ul)
	}
}

func (r *renderer) inline(parent *html.Node, text string) {
	for _, span := range parseInline(text) {
		switch span.kind {
		case inlineText:
			parent.AppendChild(textNode(span.text))
		case inlineLiteral:
			code := element("code")
			code.AppendChild(textNode(span.text))
			parent.AppendChild(code)
		case inlineRef:
			sec, ok := r.doc.Labels[span.target]
			if !ok {
				log.Printf("warning: %s: undefined label %q", r.doc.Source, span.target)
				label := span.text
				if label == "" {
					label = span.target
				}
				parent.AppendChild(textNode(label))
				continue
			}
			label := span.text
			if label == "" {
				label = sec.Title
			}
			a := element("a", "href", "#"+sec.ID)
			a.AppendChild(textNode(label))
			parent.AppendChild(a)
		}
	}
}
