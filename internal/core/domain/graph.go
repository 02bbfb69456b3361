// Package domain contains the core domain models of the task runner.
package domain

import (
	"iter"
	"slices"
	"strings"

	"go.trai.ch/zerr"
)

// Graph holds the task table and its prerequisite edges.
type Graph struct {
	tasks map[string]Task
	// declared keeps tasks in the order they were added.
	declared []string
	root     string
}

// NewGraph creates a new empty Graph.
func NewGraph() *Graph {
	return &Graph{
		tasks: make(map[string]Task),
	}
}

// SetRoot sets the project root directory.
func (g *Graph) SetRoot(root string) {
	g.root = root
}

// Root returns the project root directory.
func (g *Graph) Root() string {
	return g.root
}

// AddTask adds a task to the graph.
// It returns an error if a task with the same name already exists.
func (g *Graph) AddTask(t *Task) error {
	if _, exists := g.tasks[t.Name]; exists {
		return zerr.With(zerr.Wrap(ErrTaskAlreadyExists, t.Name), "task_name", t.Name)
	}
	g.tasks[t.Name] = *t
	g.declared = append(g.declared, t.Name)
	return nil
}

// GetTask returns the task with the given name.
func (g *Graph) GetTask(name string) (Task, bool) {
	t, ok := g.tasks[name]
	return t, ok
}

// TaskCount returns the number of tasks in the graph.
func (g *Graph) TaskCount() int {
	return len(g.tasks)
}

// Tasks yields every task in declaration order.
func (g *Graph) Tasks() iter.Seq[Task] {
	return func(yield func(Task) bool) {
		for _, name := range g.declared {
			if !yield(g.tasks[name]) {
				return
			}
		}
	}
}

// Names returns the task names sorted alphabetically.
func (g *Graph) Names() []string {
	names := slices.Clone(g.declared)
	slices.Sort(names)
	return names
}

// Validate checks that every prerequisite exists and that the graph is acyclic.
func (g *Graph) Validate() error {
	visited := make(map[string]int, len(g.tasks)) // 0: unvisited, 1: visiting, 2: visited
	for _, name := range g.declared {
		if visited[name] == 0 {
			if err := g.visit(name, visited, nil, nil); err != nil {
				return err
			}
		}
	}
	return nil
}

// Plan returns the tasks needed to run targets, in execution order.
// Prerequisites run before the task that needs them, in the order they are
// declared, and every task appears at most once.
func (g *Graph) Plan(targets []string) ([]Task, error) {
	if len(targets) == 0 {
		return nil, ErrNoTargetsSpecified
	}

	for _, name := range targets {
		if _, ok := g.tasks[name]; !ok {
			return nil, zerr.With(zerr.Wrap(ErrTaskNotFound, name), "task", name)
		}
	}

	visited := make(map[string]int, len(g.tasks))
	order := make([]Task, 0, len(g.tasks))
	emit := func(name string) {
		order = append(order, g.tasks[name])
	}

	for _, name := range targets {
		if visited[name] == 0 {
			if err := g.visit(name, visited, nil, emit); err != nil {
				return nil, err
			}
		}
	}
	return order, nil
}

// visit performs a depth-first post-order traversal from name.
func (g *Graph) visit(name string, visited map[string]int, path []string, emit func(string)) error {
	task, exists := g.tasks[name]
	if !exists {
		return zerr.With(zerr.Wrap(ErrMissingDependency, name), "dependency", name)
	}

	visited[name] = 1
	path = append(path, name)

	for _, dep := range task.Dependencies {
		switch visited[dep] {
		case 1:
			return buildCycleError(path, dep)
		case 0:
			if _, ok := g.tasks[dep]; !ok {
				err := zerr.With(zerr.Wrap(ErrMissingDependency, name+" -> "+dep), "dependency", dep)
				return zerr.With(err, "task", name)
			}
			if err := g.visit(dep, visited, path, emit); err != nil {
				return err
			}
		}
	}

	visited[name] = 2
	if emit != nil {
		emit(name)
	}
	return nil
}

// buildCycleError constructs an error with cycle path metadata.
func buildCycleError(path []string, dep string) error {
	start := slices.Index(path, dep)
	cycle := append(slices.Clone(path[start:]), dep)
	joined := strings.Join(cycle, " -> ")
	return zerr.With(zerr.Wrap(ErrCycleDetected, joined), "cycle", joined)
}
