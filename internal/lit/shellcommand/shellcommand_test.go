package shellcommand_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/signalnine/benchlit/internal/lit/shellcommand"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		line string
		want shellcommand.Command
	}{
		{
			name: "plain",
			line: "./rsbench sample.nef --benchmark_repetitions=3",
			want: shellcommand.Command{
				Executable: "./rsbench",
				Arguments:  []string{"sample.nef", "--benchmark_repetitions=3"},
			},
		},
		{
			name: "redirections",
			line: "prog a < in.txt > out.txt 2> err.txt",
			want: shellcommand.Command{
				Executable: "prog",
				Arguments:  []string{"a"},
				Stdin:      "in.txt",
				Stdout:     "out.txt",
				Stderr:     "err.txt",
			},
		},
		{
			name: "env and workdir",
			line: "cd /data && OMP_NUM_THREADS=1 LANG=C prog 'two words'",
			want: shellcommand.Command{
				Workdir:    "/data",
				Env:        []shellcommand.EnvVar{{"OMP_NUM_THREADS", "1"}, {"LANG", "C"}},
				Executable: "prog",
				Arguments:  []string{"two words"},
			},
		},
		{
			name: "assignment after executable is an argument",
			line: "prog X=1",
			want: shellcommand.Command{
				Executable: "prog",
				Arguments:  []string{"X=1"},
			},
		},
		{
			name: "attached targets",
			line: "prog a <in.txt >out.txt 2>err.txt",
			want: shellcommand.Command{
				Executable: "prog",
				Arguments:  []string{"a"},
				Stdin:      "in.txt",
				Stdout:     "out.txt",
				Stderr:     "err.txt",
			},
		},
		{
			name: "explicit stdout descriptor",
			line: "prog 1> out.txt",
			want: shellcommand.Command{Executable: "prog", Stdout: "out.txt"},
		},
		{
			name: "append",
			line: "prog >> out.txt 2>>err.txt",
			want: shellcommand.Command{
				Executable:   "prog",
				Stdout:       "out.txt",
				AppendStdout: true,
				Stderr:       "err.txt",
				AppendStderr: true,
			},
		},
		{
			name: "append with descriptor",
			line: "prog 1>>out.txt",
			want: shellcommand.Command{Executable: "prog", Stdout: "out.txt", AppendStdout: true},
		},
		{
			name: "both streams",
			line: "prog &> all.log",
			want: shellcommand.Command{Executable: "prog", Stdout: "all.log", StderrToStdout: true},
		},
		{
			name: "both streams appended",
			line: "prog &>>all.log",
			want: shellcommand.Command{Executable: "prog", Stdout: "all.log", AppendStdout: true, StderrToStdout: true},
		},
		{
			name: "stderr to stdout",
			line: "prog > all.log 2>&1",
			want: shellcommand.Command{Executable: "prog", Stdout: "all.log", StderrToStdout: true},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := shellcommand.Parse(tt.line)
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if !reflect.DeepEqual(*got, tt.want) {
				t.Errorf("got %+v, want %+v", *got, tt.want)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	for _, line := range []string{"", "FOO=bar", "prog 'unterminated", "prog >", "prog 2>>", "prog > ''"} {
		if _, err := shellcommand.Parse(line); err == nil {
			t.Errorf("Parse(%q): expected error", line)
		}
	}
}

func TestParseUnsupportedRedirect(t *testing.T) {
	for _, line := range []string{
		"prog >&2",
		"prog 1>&2",
		"prog >| out.txt",
		"prog <<EOF",
		"prog <> file",
		"prog 2>&1 > out.txt",
	} {
		_, err := shellcommand.Parse(line)
		if !errors.Is(err, shellcommand.ErrUnsupportedRedirect) {
			t.Errorf("Parse(%q): expected ErrUnsupportedRedirect, got %v", line, err)
		}
	}
}

func TestStringRedirections(t *testing.T) {
	tests := []struct{ line, want string }{
		{"prog >>out.txt 2>>err.txt", "prog >> out.txt 2>> err.txt"},
		{"prog &>all.log", "prog > all.log 2>&1"},
		{"prog &>> all.log", "prog >> all.log 2>&1"},
		{"prog 2>err.txt 2>&1", "prog 2>&1"},
	}
	for _, tt := range tests {
		cmd, err := shellcommand.Parse(tt.line)
		if err != nil {
			t.Fatalf("Parse(%q): %v", tt.line, err)
		}
		if got := cmd.String(); got != tt.want {
			t.Errorf("String() of %q = %q, want %q", tt.line, got, tt.want)
		}
		back, err := shellcommand.Parse(cmd.String())
		if err != nil {
			t.Fatalf("Parse(%q): %v", cmd.String(), err)
		}
		if !reflect.DeepEqual(back, cmd) {
			t.Errorf("reparsed %+v, want %+v", back, cmd)
		}
	}
}

func TestString(t *testing.T) {
	cmd := &shellcommand.Command{
		Workdir:    "/tmp/my dir",
		Env:        []shellcommand.EnvVar{{"A", "x y"}},
		Executable: "./rsbench",
		Arguments:  []string{"it's.nef", "--benchmark_format=json"},
		Stdout:     "/tmp/out.bench.json",
	}
	want := `cd '/tmp/my dir' && A='x y' ./rsbench 'it'"'"'s.nef' --benchmark_format=json > /tmp/out.bench.json`
	if got := cmd.String(); got != want {
		t.Errorf("got  %s\nwant %s", got, want)
	}

	back, err := shellcommand.Parse(cmd.String())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !reflect.DeepEqual(back, cmd) {
		t.Errorf("reparsed %+v, want %+v", back, cmd)
	}
}

func TestQuote(t *testing.T) {
	tests := []struct{ in, want string }{
		{"", "''"},
		{"plain-word_1.txt", "plain-word_1.txt"},
		{"a=b:c,d@e%f+g", "a=b:c,d@e%f+g"},
		{"with space", "'with space'"},
		{"$HOME", "'$HOME'"},
		{"it's", `'it'"'"'s'`},
	}
	for _, tt := range tests {
		if got := shellcommand.Quote(tt.in); got != tt.want {
			t.Errorf("Quote(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestWrap(t *testing.T) {
	cmd, err := shellcommand.Parse("N=1 ./rsbench a.nef > out.json")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	cmd.Wrap("perf", "record", "--")
	want := "N=1 perf record -- ./rsbench a.nef > out.json"
	if got := cmd.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
