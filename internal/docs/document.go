// Package docs is a small reStructuredText-flavoured documentation engine.
// It understands section titles, paragraphs, bullet lists, literal blocks,
// label targets, :ref: cross-references and directives; directives are
// looked up in a Registry and may feed generated markup back into the parse.
package docs

// Node is a block-level element of a parsed document.
type Node interface {
	node()
}

// Document is the root of a parsed source file.
type Document struct {
	Source   string
	Children []Node
	// Labels maps `.. _label:` targets to the section they precede.
	Labels map[string]*Section
}

type Section struct {
	ID       string
	Title    string
	Level    int
	Children []Node
}

type Paragraph struct {
	Text string
}

type LiteralBlock struct {
	Text string
}

type BulletList struct {
	Items []string
}

func (*Section) node()      {}
func (*Paragraph) node()    {}
func (*LiteralBlock) node() {}
func (*BulletList) node()   {}
