package docs

import "strings"

type inlineKind int

const (
	inlineText inlineKind = iota
	inlineLiteral
	inlineRef
)

type inline struct {
	kind   inlineKind
	text   string
	target string // label, for inlineRef
}

// parseInline splits paragraph text into plain text, ``literal`` spans and
// :ref:`label` / :ref:`Text <label>` references. Unterminated markup is kept
// as plain text.
func parseInline(s string) []inline {
	var out []inline
	for s != "" {
		lit := strings.Index(s, "``")
		ref := strings.Index(s, ":ref:`")
		if lit < 0 && ref < 0 {
			out = append(out, inline{kind: inlineText, text: s})
			break
		}

		if lit >= 0 && (ref < 0 || lit < ref) {
			end := strings.Index(s[lit+2:], "``")
			if end < 0 {
				out = append(out, inline{kind: inlineText, text: s})
				break
			}
			if lit > 0 {
				out = append(out, inline{kind: inlineText, text: s[:lit]})
			}
			out = append(out, inline{kind: inlineLiteral, text: s[lit+2 : lit+2+end]})
			s = s[lit+2+end+2:]
			continue
		}

		body := s[ref+len(":ref:`"):]
		end := strings.IndexByte(body, '`')
		if end < 0 {
			out = append(out, inline{kind: inlineText, text: s})
			break
		}
		if ref > 0 {
			out = append(out, inline{kind: inlineText, text: s[:ref]})
		}
		out = append(out, parseRef(body[:end]))
		s = body[end+1:]
	}
	return out
}

func parseRef(content string) inline {
	content = strings.TrimSpace(content)
	if strings.HasSuffix(content, ">") {
		if open := strings.LastIndexByte(content, '<'); open > 0 {
			return inline{
				kind:   inlineRef,
				text:   strings.TrimSpace(content[:open]),
				target: strings.ToLower(strings.TrimSpace(content[open+1 : len(content)-1])),
			}
		}
	}
	return inline{kind: inlineRef, target: strings.ToLower(content)}
}
