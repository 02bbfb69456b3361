// Package linear provides a synchronous, line-based renderer for task status.
package linear

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/muesli/termenv"
	"github.com/vestige-research/eeg-alpha/internal/ui/output"
	"github.com/vestige-research/eeg-alpha/internal/ui/style"
)

// Renderer implements ports.Renderer by printing one status line when a task
// starts and one when it completes. Task output goes to stdout, each line
// prefixed with the task name.
type Renderer struct {
	stdout io.Writer
	stderr io.Writer
	output *termenv.Output
	quiet  bool

	mu      sync.Mutex
	tasks   map[string]*taskState // spanID -> task state
	buffers map[string]*bytes.Buffer
}

type taskState struct {
	name      string
	startTime time.Time
	// held keeps complete lines back in quiet mode until the task fails.
	held [][]byte
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithProfile selects the color profile. The default is output.ColorProfileANSI.
func WithProfile(profileFn func() termenv.Profile) Option {
	return func(r *Renderer) {
		r.output = output.NewWithProfile(r.stderr, profileFn)
	}
}

// Quiet hides start lines and the output of tasks that succeed.
func Quiet() Option {
	return func(r *Renderer) {
		r.quiet = true
	}
}

// NewRenderer creates a new Renderer. Nil writers mean os.Stdout and os.Stderr.
func NewRenderer(stdout, stderr io.Writer, opts ...Option) *Renderer {
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}

	r := &Renderer{
		stdout:  stdout,
		stderr:  stderr,
		output:  output.NewWithProfile(stderr, output.ColorProfileANSI),
		tasks:   make(map[string]*taskState),
		buffers: make(map[string]*bytes.Buffer),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Start is a no-op; the renderer prints synchronously.
func (r *Renderer) Start(_ context.Context) error {
	return nil
}

// Stop flushes all remaining buffers.
func (r *Renderer) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for spanID := range r.buffers {
		r.flushBufferLocked(spanID)
	}
	return nil
}

// Wait is a no-op; the renderer prints synchronously.
func (r *Renderer) Wait() error {
	return nil
}

// OnPlanEmit prints the execution order when more than one task will run.
func (r *Renderer) OnPlanEmit(tasks []string, _ map[string][]string, _ []string) {
	if len(tasks) < 2 || r.quiet {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	line := fmt.Sprintf("Running %d tasks: %s", len(tasks), strings.Join(tasks, ", "))
	_, _ = fmt.Fprintln(r.stderr, r.output.String(line).Faint())
}

// OnTaskStart prints "[name] Starting...".
func (r *Renderer) OnTaskStart(spanID, _, name string, startTime time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.tasks[spanID] = &taskState{name: name, startTime: startTime}
	r.buffers[spanID] = new(bytes.Buffer)

	if r.quiet {
		return
	}
	_, _ = fmt.Fprintf(r.stderr, "%s Starting...\n", r.prefix(name))
}

// OnTaskLog buffers data and prints complete lines with the task prefix.
func (r *Renderer) OnTaskLog(spanID string, data []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()

	task, ok := r.tasks[spanID]
	if !ok {
		return
	}

	buf := r.buffers[spanID]
	buf.Write(data)

	for {
		idx := bytes.IndexByte(buf.Bytes(), '\n')
		if idx < 0 {
			break
		}
		line := bytes.Clone(buf.Next(idx + 1))
		r.emitLineLocked(task, line)
	}
}

// OnTaskComplete flushes the task's remaining output and prints its result.
func (r *Renderer) OnTaskComplete(spanID string, endTime time.Time, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	task, ok := r.tasks[spanID]
	if !ok {
		return
	}

	r.flushBufferLocked(spanID)
	duration := formatDuration(endTime.Sub(task.startTime))

	if err != nil {
		for _, line := range task.held {
			r.printLineLocked(task.name, line)
		}
		symbol := r.output.String(style.Cross).Foreground(termenv.RGBColor(string(style.Red)))
		_, _ = fmt.Fprintf(r.stderr, "%s %s Failed after %s: %v\n", r.prefix(task.name), symbol, duration, err)
	} else {
		symbol := r.output.String(style.Check).Foreground(termenv.RGBColor(string(style.Green)))
		_, _ = fmt.Fprintf(r.stderr, "%s %s Completed in %s\n", r.prefix(task.name), symbol, duration)
	}

	delete(r.tasks, spanID)
	delete(r.buffers, spanID)
}

func (r *Renderer) prefix(name string) string {
	return r.output.String("[" + name + "]").Faint().String()
}

// flushBufferLocked emits a trailing partial line. Must be called with r.mu held.
func (r *Renderer) flushBufferLocked(spanID string) {
	task, ok := r.tasks[spanID]
	if !ok {
		return
	}

	buf := r.buffers[spanID]
	if buf.Len() > 0 {
		r.emitLineLocked(task, bytes.Clone(buf.Bytes()))
		buf.Reset()
	}
}

func (r *Renderer) emitLineLocked(task *taskState, line []byte) {
	if r.quiet {
		task.held = append(task.held, line)
		return
	}
	r.printLineLocked(task.name, line)
}

// printLineLocked prints a line with the task prefix. Must be called with r.mu held.
func (r *Renderer) printLineLocked(name string, line []byte) {
	line = bytes.TrimSuffix(line, []byte("\n"))
	line = bytes.TrimSuffix(line, []byte("\r"))
	if len(line) == 0 {
		return
	}
	_, _ = fmt.Fprintf(r.stdout, "%s %s\n", r.prefix(name), line)
}

func formatDuration(d time.Duration) string {
	switch {
	case d >= time.Second:
		return d.Round(100 * time.Millisecond).String()
	case d >= time.Millisecond:
		return d.Round(time.Millisecond).String()
	default:
		return d.String()
	}
}
