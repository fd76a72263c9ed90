package snippet

import (
	"context"
	"io"
	"os"

	"github.com/feather-lang/feather"
)

// TclEvaluator runs snippets in a fresh embedded TCL interpreter. The
// interpreter gets a `puts` command writing to the process streams.
type TclEvaluator struct{}

func (e *TclEvaluator) Language() string { return "tcl" }

func (e *TclEvaluator) Eval(ctx context.Context, src string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	interp := feather.New()
	defer interp.Close()
	interp.RegisterCommand("puts", cmdPuts)

	if _, err := interp.Eval(src); err != nil {
		return &EvalError{Language: e.Language(), Message: err.Error(), Err: err}
	}
	return nil
}

// cmdPuts implements `puts ?-nonewline? ?channelId? string`.
func cmdPuts(i *feather.Interp, cmd *feather.Obj, args []*feather.Obj) feather.Result {
	newline := true
	if len(args) > 0 && args[0].String() == "-nonewline" {
		newline = false
		args = args[1:]
	}

	var w io.Writer = os.Stdout
	switch len(args) {
	case 1:
	case 2:
		switch ch := args[0].String(); ch {
		case "stdout":
		case "stderr":
			w = os.Stderr
		default:
			return feather.Errorf("can not find channel named \"%s\"", ch)
		}
		args = args[1:]
	default:
		return feather.Errorf("wrong # args: should be \"%s ?-nonewline? ?channelId? string\"", cmd.String())
	}

	text := args[0].String()
	if newline {
		text += "\n"
	}
	if _, err := io.WriteString(w, text); err != nil {
		return feather.Error(err.Error())
	}
	return feather.OK("")
}
