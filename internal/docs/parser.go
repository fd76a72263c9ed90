package docs

import (
	"context"
	"log"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const adornmentChars = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

var (
	labelRe     = regexp.MustCompile(`^\.\.\s+_([^:]+):\s*$`)
	directiveRe = regexp.MustCompile(`^\.\.\s+([A-Za-z0-9][\w.+-]*)::\s*(.*)$`)
	optionRe    = regexp.MustCompile(`^:([\w-]+):\s*(.*)$`)
)

type Options struct {
	// TabWidth is used when expanding tabs in source lines. Defaults to 8.
	TabWidth int
}

// Parser turns source text into a Document, dispatching directives through
// its Registry.
type Parser struct {
	directives *Registry
	opts       Options
}

func NewParser(reg *Registry, opts Options) *Parser {
	if reg == nil {
		reg = NewRegistry()
	}
	if opts.TabWidth <= 0 {
		opts.TabWidth = 8
	}
	return &Parser{directives: reg, opts: opts}
}

// Parse parses text read from source. Directive errors abort the parse.
func (p *Parser) Parse(ctx context.Context, source, text string) (*Document, error) {
	st := &State{
		parser: p,
		doc:    &Document{Source: source, Labels: make(map[string]*Section)},
		ids:    make(map[string]int),
	}
	if err := st.InsertLines(ctx, SplitLines(text, p.opts.TabWidth)); err != nil {
		return nil, err
	}
	for _, label := range st.pendingLabels {
		log.Printf("warning: %s: label %q is not followed by a section", source, label)
	}
	return st.doc, nil
}

// SplitLines splits text into lines the way the parser reads its input:
// line breaks are \n, \r\n or \r, a trailing line break does not start a new
// line, tabs are expanded and trailing whitespace is removed.
func SplitLines(text string, tabWidth int) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for i, line := range lines {
		line = strings.Map(func(r rune) rune {
			if r == '\v' || r == '\f' {
				return ' '
			}
			return r
		}, line)
		lines[i] = strings.TrimRightFunc(expandTabs(line, tabWidth), unicode.IsSpace)
	}
	return lines
}

func expandTabs(s string, width int) string {
	if !strings.ContainsRune(s, '\t') {
		return s
	}
	var b strings.Builder
	col := 0
	for _, r := range s {
		if r == '\t' {
			n := width - col%width
			b.WriteString(strings.Repeat(" ", n))
			col += n
			continue
		}
		b.WriteRune(r)
		col++
	}
	return b.String()
}

func isBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}

func indentOf(line string) int {
	return len(line) - len(strings.TrimLeft(line, " "))
}

func isAdornment(line string) bool {
	if line == "" || !strings.ContainsRune(adornmentChars, rune(line[0])) {
		return false
	}
	return strings.Count(line, line[:1]) == len(line)
}

func isTitle(text, underline string) bool {
	if isBlank(text) || indentOf(text) > 0 || isAdornment(text) {
		return false
	}
	if !isAdornment(underline) {
		return false
	}
	return len(underline) >= utf8.RuneCountInString(text)
}

func isBullet(line string) bool {
	return strings.HasPrefix(line, "- ") || strings.HasPrefix(line, "* ")
}

// blockEnd returns the index just past the indented block starting at
// start, with trailing blank lines excluded.
func blockEnd(lines []string, start int) int {
	j := start
	for j < len(lines) && (isBlank(lines[j]) || indentOf(lines[j]) > 0) {
		j++
	}
	for j > start && isBlank(lines[j-1]) {
		j--
	}
	return j
}

func dedent(lines []string) []string {
	min := -1
	for _, line := range lines {
		if isBlank(line) {
			continue
		}
		if n := indentOf(line); min < 0 || n < min {
			min = n
		}
	}
	out := make([]string, len(lines))
	for i, line := range lines {
		if isBlank(line) {
			continue
		}
		out[i] = line[min:]
	}
	return out
}
