// Package bench drives external benchmarking tools.
package bench

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

// Output is the captured result of one shell command.
type Output struct {
	Cmd      string
	ExitCode int // -1 when the command could not be started
	Stdout   []byte
	Stderr   []byte
	Err      error
}

func (o Output) Failed() bool { return o.Err != nil }

// Run executes cmd through sh and waits for it. Stdout and stderr are
// captured separately. ctx is only honoured to kill the process; no timeout
// is applied here.
func Run(ctx context.Context, cmd string) Output {
	var stdout, stderr bytes.Buffer
	c := exec.CommandContext(ctx, "sh", "-c", cmd)
	c.Stdout = &stdout
	c.Stderr = &stderr

	err := c.Run()
	out := Output{Cmd: cmd, ExitCode: -1, Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	if c.ProcessState != nil {
		out.ExitCode = c.ProcessState.ExitCode()
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			err = fmt.Errorf("%q exited with %d", cmd, out.ExitCode)
		} else {
			err = fmt.Errorf("%q: %w", cmd, err)
		}
		out.Err = err
	}
	return out
}

// RunAll starts every command at once and waits for all of them. Outputs are
// returned in input order; the error combines every failed command.
func RunAll(ctx context.Context, cmds ...string) ([]Output, error) {
	outs := make([]Output, len(cmds))
	var g errgroup.Group
	for i, cmd := range cmds {
		g.Go(func() error {
			outs[i] = Run(ctx, cmd)
			return nil
		})
	}
	_ = g.Wait()

	var err error
	for _, o := range outs {
		err = multierr.Append(err, o.Err)
	}
	return outs, err
}

// Print writes the exit banner followed by the non-empty streams.
func (o Output) Print(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "['%s' exited with %d]\n", o.Cmd, o.ExitCode); err != nil {
		return err
	}
	if len(o.Stdout) > 0 {
		if _, err := fmt.Fprintf(w, "[stdout]\n%s\n", o.Stdout); err != nil {
			return err
		}
	}
	if len(o.Stderr) > 0 {
		if _, err := fmt.Fprintf(w, "[stderr]\n%s\n", o.Stderr); err != nil {
			return err
		}
	}
	return nil
}
