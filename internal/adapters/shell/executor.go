// Package shell provides a shell-based executor for running task commands.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/creack/pty"
	"github.com/vestige-research/eeg-alpha/internal/core/domain"
	"go.trai.ch/zerr"
	"golang.org/x/term"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// killTimeout is how long a command gets to exit after an interrupt before it is killed.
const killTimeout = 2 * time.Second

// eot is the terminal end-of-file character (Ctrl-D).
const eot = 0x04

// Executor implements ports.Executor with an embedded POSIX shell interpreter.
type Executor struct {
	stdin  io.Reader
	usePTY bool
	echo   bool
}

// NewExecutor creates a new Executor reading from the process stdin.
func NewExecutor() *Executor {
	return &Executor{
		stdin: os.Stdin,
		echo:  true,
	}
}

// WithPTY makes external programs run on a pseudo-terminal.
func (e *Executor) WithPTY(enabled bool) *Executor {
	e.usePTY = enabled
	return e
}

// WithStdin replaces the reader commands get as standard input.
func (e *Executor) WithStdin(r io.Reader) *Executor {
	e.stdin = r
	return e
}

// WithEcho controls whether each command line is printed before it runs.
func (e *Executor) WithEcho(enabled bool) *Executor {
	e.echo = enabled
	return e
}

// Execute parses command as a POSIX shell line and interprets it.
//
// The environment is built from env, or the process environment when env is
// empty, with task.Environment applied on top.
func (e *Executor) Execute(
	ctx context.Context,
	task *domain.Task,
	command string,
	env []string,
	stdout, stderr io.Writer,
) error {
	file, err := syntax.NewParser().Parse(strings.NewReader(command), task.Name)
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrCommandParseFailed.Error()), "command", command)
	}

	if e.echo {
		_, _ = fmt.Fprintf(stderr, "$ %s\n", command)
	}

	opts := []interp.RunnerOption{
		interp.Env(expand.ListEnviron(resolveEnvironment(os.Environ(), env, task.Environment)...)),
		interp.StdIO(e.stdin, stdout, stderr),
		interp.Params("-e"),
	}
	if task.WorkingDir != "" {
		opts = append(opts, interp.Dir(task.WorkingDir))
	}
	// Interactive tasks talk to the user directly and never get a PTY.
	if e.usePTY && !task.Interactive {
		opts = append(opts, interp.ExecHandlers(ptyMiddleware))
	}

	runner, err := interp.New(opts...)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create shell runner"), "task", task.Name)
	}

	if err := runner.Run(ctx, file); err != nil {
		var status interp.ExitStatus
		if errors.As(err, &status) {
			return &domain.CommandError{Command: command, ExitCode: int(status), Err: err}
		}
		return zerr.With(zerr.Wrap(err, "command failed"), "command", command)
	}
	return nil
}

// ptyMiddleware runs external programs on a pseudo-terminal, so tools that
// check isatty keep their colors. Standard input is forwarded to the terminal;
// when it is itself a terminal it is switched to raw mode for the duration.
func ptyMiddleware(next interp.ExecHandlerFunc) interp.ExecHandlerFunc {
	return func(ctx context.Context, args []string) error {
		hc := interp.HandlerCtx(ctx)

		path, err := interp.LookPathDir(hc.Dir, hc.Env, args[0])
		if err != nil {
			// Let the default handler report the lookup failure.
			return next(ctx, args)
		}

		cmd := exec.CommandContext(ctx, path, args[1:]...) //nolint:gosec // user provided command
		cmd.Args[0] = args[0]
		cmd.Dir = hc.Dir
		cmd.Env = environ(hc.Env)
		cmd.Cancel = func() error { return cmd.Process.Signal(os.Interrupt) }
		cmd.WaitDelay = killTimeout

		ptmx, err := pty.StartWithSize(cmd, windowSize(hc.Stdin))
		if err != nil {
			return next(ctx, args)
		}

		if hc.Stdin != nil {
			restore := makeRaw(hc.Stdin)
			defer restore()

			go func() {
				_, _ = io.Copy(ptmx, hc.Stdin)
				// Closed input reaches the child as end-of-file.
				_, _ = ptmx.Write([]byte{eot})
			}()
		}

		ioDone := make(chan struct{})
		go func() {
			defer close(ioDone)
			// The master returns EIO once the child side closes.
			_, _ = io.Copy(hc.Stdout, ptmx)
		}()

		waitErr := cmd.Wait()
		<-ioDone
		_ = ptmx.Close()

		var exitErr *exec.ExitError
		switch {
		case waitErr == nil:
			return nil
		case errors.As(waitErr, &exitErr):
			code := exitErr.ExitCode()
			if code < 0 || code > math.MaxUint8 {
				code = 1
			}
			return interp.ExitStatus(uint8(code)) //nolint:gosec // bounded above
		default:
			return waitErr
		}
	}
}

// terminalFd returns the descriptor of r when r is a terminal.
func terminalFd(r io.Reader) (int, bool) {
	f, ok := r.(*os.File)
	if !ok || f == nil {
		return 0, false
	}
	fd := int(f.Fd()) //nolint:gosec // descriptors fit in int
	return fd, term.IsTerminal(fd)
}

// windowSize mirrors the size of the host terminal, or 120x40 without one.
func windowSize(stdin io.Reader) *pty.Winsize {
	if fd, ok := terminalFd(stdin); ok {
		if cols, rows, err := term.GetSize(fd); err == nil && cols > 0 && rows > 0 {
			return &pty.Winsize{Rows: uint16(rows), Cols: uint16(cols)} //nolint:gosec // terminal sizes fit
		}
	}
	return &pty.Winsize{Rows: 40, Cols: 120}
}

// makeRaw puts a terminal stdin into raw mode so keystrokes reach the child
// unprocessed. The returned func restores the previous state.
func makeRaw(stdin io.Reader) func() {
	fd, ok := terminalFd(stdin)
	if !ok {
		return func() {}
	}
	state, err := term.MakeRaw(fd)
	if err != nil {
		return func() {}
	}
	return func() { _ = term.Restore(fd, state) }
}

// environ flattens the exported variables of env into KEY=VALUE entries.
func environ(env expand.Environ) []string {
	list := make([]string, 0, 64)
	for name, vr := range env.Each {
		if vr.Exported && vr.Kind == expand.String && vr.IsSet() {
			list = append(list, name+"="+vr.String())
		}
	}
	return list
}

// resolveEnvironment merges environment variables with the defined priority.
// A non-empty activated environment replaces the system one entirely.
func resolveEnvironment(sysEnv, activated []string, taskEnv map[string]string) []string {
	base := sysEnv
	if len(activated) > 0 {
		base = activated
	}

	envMap := make(map[string]string, len(base)+len(taskEnv))
	order := make([]string, 0, len(base)+len(taskEnv))
	for _, entry := range base {
		k, v, ok := strings.Cut(entry, "=")
		if !ok || k == "" {
			continue
		}
		if _, seen := envMap[k]; !seen {
			order = append(order, k)
		}
		envMap[k] = v
	}

	for k, v := range taskEnv {
		if _, seen := envMap[k]; !seen {
			order = append(order, k)
		}
		envMap[k] = v
	}

	result := make([]string, 0, len(order))
	for _, k := range order {
		result = append(result, k+"="+envMap[k])
	}
	return result
}
