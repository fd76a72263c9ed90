// Package capture temporarily redirects the process-wide standard output and
// standard error streams into memory.
package capture

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
)

// Output holds what was written to each stream during a capture.
type Output struct {
	Stdout string
	Stderr string
}

// Combined returns stdout followed by stderr.
func (o Output) Combined() string {
	return o.Stdout + o.Stderr
}

// mu serializes captures. A capture is not re-entrant: calling Run from
// inside fn deadlocks.
var mu sync.Mutex

// Run calls fn with os.Stdout and os.Stderr replaced by pipes drained into
// buffers. The original *os.File values are restored before Run returns,
// whether fn returns normally, returns an error, or panics. fn's error is
// returned unchanged alongside whatever was captured up to that point.
func Run(fn func() error) (out Output, err error) {
	mu.Lock()
	defer mu.Unlock()

	outR, outW, err := os.Pipe()
	if err != nil {
		return Output{}, fmt.Errorf("creating stdout pipe: %w", err)
	}
	errR, errW, err := os.Pipe()
	if err != nil {
		outR.Close()
		outW.Close()
		return Output{}, fmt.Errorf("creating stderr pipe: %w", err)
	}

	var (
		wg             sync.WaitGroup
		stdout, stderr bytes.Buffer
		outErr, errErr error
	)
	wg.Add(2)
	go drain(&wg, &stdout, outR, &outErr)
	go drain(&wg, &stderr, errR, &errErr)

	origOut, origErr := os.Stdout, os.Stderr
	os.Stdout, os.Stderr = outW, errW

	defer func() {
		os.Stdout, os.Stderr = origOut, origErr
		outW.Close()
		errW.Close()
		wg.Wait()
		outR.Close()
		errR.Close()
		out = Output{Stdout: stdout.String(), Stderr: stderr.String()}
		if err == nil {
			if readErr := errors.Join(outErr, errErr); readErr != nil {
				err = fmt.Errorf("reading captured output: %w", readErr)
			}
		}
	}()

	return Output{}, fn()
}

func drain(wg *sync.WaitGroup, dst *bytes.Buffer, src io.Reader, errp *error) {
	defer wg.Done()
	_, *errp = io.Copy(dst, src)
}
