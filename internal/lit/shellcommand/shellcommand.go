// Package shellcommand parses single shell command lines of the form used in
// test scripts into their parts and serializes them back.
//
//	[cd DIR &&] [VAR=value ...] executable [args ...] [redirections]
//
// Recognized redirections are <, >, 1>, >>, 1>>, 2>, 2>>, &>, &>> (with the
// target attached or as the next word) and 2>&1.
package shellcommand

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/alessio/shellescape"
	"github.com/google/shlex"
)

var assignmentRe = regexp.MustCompile(`^([A-Za-z_][A-Za-z_0-9]*)=(.*)$`)

// ErrUnsupportedRedirect is returned for redirections Command cannot
// represent, such as here-documents or descriptor duplication other than
// 2>&1.
var ErrUnsupportedRedirect = errors.New("unsupported redirection")

// EnvVar is an environment assignment prefixed to a command.
type EnvVar struct {
	Name  string
	Value string
}

// Command is a parsed command line. Empty Workdir, Stdin, Stdout and Stderr
// mean "not set". StderrToStdout (2>&1) is applied after the stdout
// redirection and excludes Stderr.
type Command struct {
	Workdir        string
	Env            []EnvVar
	Executable     string
	Arguments      []string
	Stdin          string
	Stdout         string
	AppendStdout   bool
	Stderr         string
	AppendStderr   bool
	StderrToStdout bool
}

type redirectKind int

const (
	redirectIn redirectKind = iota
	redirectOut
	redirectErr
	redirectBoth
)

type redirect struct {
	op     string
	kind   redirectKind
	append bool
}

// Longest operators first so that ">>" is not read as ">" plus a target.
var redirectOps = []redirect{
	{"&>>", redirectBoth, true},
	{"1>>", redirectOut, true},
	{"2>>", redirectErr, true},
	{"&>", redirectBoth, false},
	{">>", redirectOut, true},
	{"1>", redirectOut, false},
	{"2>", redirectErr, false},
	{">", redirectOut, false},
	{"<", redirectIn, false},
}

// Parse splits line with shell quoting rules and picks out redirections,
// leading environment assignments and a leading `cd DIR &&`. Quoting is
// gone after splitting, so a word starting with a redirection operator is
// always read as a redirection.
func Parse(line string) (*Command, error) {
	tokens, err := shlex.Split(line)
	if err != nil {
		return nil, fmt.Errorf("parsing command line %q: %w", line, err)
	}

	cmd := &Command{}
	if len(tokens) >= 3 && tokens[0] == "cd" && tokens[2] == "&&" {
		cmd.Workdir = tokens[1]
		tokens = tokens[3:]
	}

	firstWord := true
	dupSeen := false
	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		if tok == "2>&1" {
			cmd.StderrToStdout = true
			cmd.Stderr, cmd.AppendStderr = "", false
			dupSeen = true
			continue
		}
		if r, target, ok := splitRedirect(tok); ok {
			if target == "" {
				if i+1 == len(tokens) {
					return nil, fmt.Errorf("parsing command line %q: %s without target", line, tok)
				}
				i++
				target = tokens[i]
			}
			if target == "" {
				return nil, fmt.Errorf("parsing command line %q: %s without target", line, r.op)
			}
			if strings.ContainsAny(target[:1], "&|<>") {
				return nil, fmt.Errorf("parsing command line %q: %w %s%s", line, ErrUnsupportedRedirect, r.op, target)
			}
			switch r.kind {
			case redirectIn:
				cmd.Stdin = target
			case redirectOut, redirectBoth:
				if dupSeen {
					// 2>&1 before a stdout redirection keeps stderr on the old stdout.
					return nil, fmt.Errorf("parsing command line %q: %w: 2>&1 before %s", line, ErrUnsupportedRedirect, r.op)
				}
				cmd.Stdout, cmd.AppendStdout = target, r.append
				if r.kind == redirectBoth {
					cmd.StderrToStdout = true
					cmd.Stderr, cmd.AppendStderr = "", false
				}
			case redirectErr:
				cmd.Stderr, cmd.AppendStderr = target, r.append
				cmd.StderrToStdout = false
			}
			continue
		}
		if firstWord {
			if m := assignmentRe.FindStringSubmatch(tok); m != nil {
				cmd.setEnv(m[1], m[2])
				continue
			}
			firstWord = false
			cmd.Executable = tok
			continue
		}
		cmd.Arguments = append(cmd.Arguments, tok)
	}
	if cmd.Executable == "" {
		return nil, fmt.Errorf("parsing command line %q: no executable", line)
	}
	return cmd, nil
}

func splitRedirect(tok string) (redirect, string, bool) {
	for _, r := range redirectOps {
		if strings.HasPrefix(tok, r.op) {
			return r, tok[len(r.op):], true
		}
	}
	return redirect{}, "", false
}

// Wrap makes the command run under executable: the current executable and
// arguments move behind args. Environment, working directory and
// redirections are kept.
func (c *Command) Wrap(executable string, args ...string) {
	inner := append([]string{c.Executable}, c.Arguments...)
	c.Executable = executable
	c.Arguments = append(append([]string{}, args...), inner...)
}

func (c *Command) setEnv(name, value string) {
	for i := range c.Env {
		if c.Env[i].Name == name {
			c.Env[i].Value = value
			return
		}
	}
	c.Env = append(c.Env, EnvVar{Name: name, Value: value})
}

// String serializes the command back into a shell command line. Parsing the
// result yields an equal Command.
func (c *Command) String() string {
	var b strings.Builder
	if c.Workdir != "" {
		fmt.Fprintf(&b, "cd %s && ", Quote(c.Workdir))
	}
	for _, e := range c.Env {
		fmt.Fprintf(&b, "%s=%s ", e.Name, Quote(e.Value))
	}
	words := make([]string, 0, len(c.Arguments)+1)
	words = append(words, Quote(c.Executable))
	for _, arg := range c.Arguments {
		words = append(words, Quote(arg))
	}
	b.WriteString(strings.Join(words, " "))
	if c.Stdin != "" {
		fmt.Fprintf(&b, " < %s", Quote(c.Stdin))
	}
	if c.Stdout != "" {
		fmt.Fprintf(&b, " %s %s", redirectOp(">", c.AppendStdout), Quote(c.Stdout))
	}
	switch {
	case c.StderrToStdout:
		b.WriteString(" 2>&1")
	case c.Stderr != "":
		fmt.Fprintf(&b, " %s %s", redirectOp("2>", c.AppendStderr), Quote(c.Stderr))
	}
	return b.String()
}

func redirectOp(op string, appending bool) string {
	if appending {
		return op + ">"
	}
	return op
}

// Quote returns s quoted for a POSIX shell, leaving words that need no
// quoting unchanged.
func Quote(s string) string {
	return shellescape.Quote(s)
}
