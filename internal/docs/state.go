package docs

import (
	"bytes"
	"context"
	"fmt"
	"strings"
)

// State is the parse state of one document. Directives receive it so they
// can add nodes or feed generated markup back into the parse at the current
// position.
type State struct {
	parser        *Parser
	doc           *Document
	sections      []*Section // open sections, outermost first
	styles        []byte     // underline character of each section level
	pendingLabels []string
	ids           map[string]int
	line          int // line offset of the chunk being parsed
}

func (s *State) Source() string { return s.doc.Source }

func (s *State) TabWidth() int { return s.parser.opts.TabWidth }

// Depth is the number of currently open sections.
func (s *State) Depth() int { return len(s.sections) }

// Append adds n to the innermost open section, or to the document root.
func (s *State) Append(n Node) {
	if len(s.sections) == 0 {
		s.doc.Children = append(s.doc.Children, n)
		return
	}
	top := s.sections[len(s.sections)-1]
	top.Children = append(top.Children, n)
}

// InsertLines parses lines as markup at the current position. Section
// titles continue the document's title hierarchy and labels join the
// document's label table.
func (s *State) InsertLines(ctx context.Context, lines []string) error {
	base := s.line
	defer func() { s.line = base }()

	for i := 0; i < len(lines); {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := lines[i]
		switch {
		case isBlank(line):
			i++
		case line == ".." || strings.HasPrefix(line, ".. "):
			next, err := s.explicit(ctx, lines, i, base)
			if err != nil {
				return err
			}
			i = next
		case i+1 < len(lines) && isTitle(line, lines[i+1]):
			if err := s.openSection(strings.TrimSpace(line), lines[i+1][0], base+i+1); err != nil {
				return err
			}
			i += 2
		case isBullet(line):
			i = s.bulletList(lines, i)
		case indentOf(line) > 0:
			end := blockEnd(lines, i)
			s.Append(&LiteralBlock{Text: strings.Join(dedent(lines[i:end]), "\n")})
			i = end
		default:
			i = s.paragraph(lines, i)
		}
	}
	return nil
}

func (s *State) explicit(ctx context.Context, lines []string, i, base int) (int, error) {
	line := lines[i]
	end := blockEnd(lines, i+1)

	if m := labelRe.FindStringSubmatch(line); m != nil {
		s.pendingLabels = append(s.pendingLabels, strings.ToLower(strings.TrimSpace(m[1])))
		return end, nil
	}
	m := directiveRe.FindStringSubmatch(line)
	if m == nil {
		// comment
		return end, nil
	}

	lineNo := base + i + 1
	d, ok := s.parser.directives.Get(m[1])
	if !ok {
		return 0, fmt.Errorf("%s:%d: %w %q", s.Source(), lineNo, ErrUnknownDirective, m[1])
	}

	inv := &Invocation{
		Name:    m[1],
		Args:    strings.TrimSpace(m[2]),
		Options: make(map[string]string),
		Line:    lineNo,
	}
	body := dedent(lines[i+1 : end])
	k := 0
	for ; k < len(body); k++ {
		om := optionRe.FindStringSubmatch(body[k])
		if om == nil {
			break
		}
		inv.Options[om[1]] = strings.TrimSpace(om[2])
	}
	for k < len(body) && isBlank(body[k]) {
		k++
	}
	inv.Content = body[k:]

	s.line = lineNo
	err := d.Run(ctx, s, inv)
	s.line = base
	if err != nil {
		return 0, err
	}
	return end, nil
}

func (s *State) openSection(title string, style byte, lineNo int) error {
	level := bytes.IndexByte(s.styles, style) + 1
	if level == 0 {
		level = len(s.styles) + 1
		if level > len(s.sections)+1 {
			return fmt.Errorf("%s:%d: title level inconsistent: %q", s.Source(), lineNo, title)
		}
		s.styles = append(s.styles, style)
	}
	if level > len(s.sections)+1 {
		return fmt.Errorf("%s:%d: title level inconsistent: %q", s.Source(), lineNo, title)
	}

	s.sections = s.sections[:level-1]
	sec := &Section{ID: s.uniqueID(title), Title: title, Level: level}
	s.Append(sec)
	s.sections = append(s.sections, sec)

	for _, label := range s.pendingLabels {
		s.doc.Labels[label] = sec
	}
	s.pendingLabels = nil
	return nil
}

func (s *State) paragraph(lines []string, i int) int {
	j := i
	for j < len(lines) && !isBlank(lines[j]) && indentOf(lines[j]) == 0 {
		j++
	}
	text := strings.Join(lines[i:j], "\n")

	if strings.HasSuffix(text, "::") {
		k := j
		for k < len(lines) && isBlank(lines[k]) {
			k++
		}
		if k < len(lines) && indentOf(lines[k]) > 0 {
			end := blockEnd(lines, k)
			switch {
			case strings.TrimSpace(text) == "::":
				text = ""
			case strings.HasSuffix(text, " ::"):
				text = strings.TrimSuffix(text, " ::")
			default:
				text = strings.TrimSuffix(text, ":")
			}
			if text != "" {
				s.Append(&Paragraph{Text: text})
			}
			s.Append(&LiteralBlock{Text: strings.Join(dedent(lines[k:end]), "\n")})
			return end
		}
	}

	s.Append(&Paragraph{Text: text})
	return j
}

func (s *State) bulletList(lines []string, i int) int {
	list := &BulletList{}
	j := i
	for j < len(lines) {
		line := lines[j]
		switch {
		case isBullet(line):
			list.Items = append(list.Items, strings.TrimSpace(line[2:]))
		case len(list.Items) > 0 && !isBlank(line) && indentOf(line) >= 2:
			last := len(list.Items) - 1
			list.Items[last] += " " + strings.TrimSpace(line)
		case isBlank(line) && j+1 < len(lines) && isBullet(lines[j+1]):
		default:
			s.Append(list)
			return j
		}
		j++
	}
	s.Append(list)
	return j
}

func (s *State) uniqueID(title string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(title) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	id := strings.TrimSuffix(b.String(), "-")
	if id == "" {
		id = "section"
	}
	n := s.ids[id]
	s.ids[id] = n + 1
	if n > 0 {
		id = fmt.Sprintf("%s-%d", id, n)
	}
	return id
}
