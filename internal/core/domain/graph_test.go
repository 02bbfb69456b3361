package domain_test

import (
	"errors"
	"slices"
	"testing"

	"github.com/vestige-research/eeg-alpha/internal/core/domain"
	"go.trai.ch/zerr"
)

func names(tasks []domain.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.Name)
	}
	return out
}

func mustAdd(t *testing.T, g *domain.Graph, tasks ...domain.Task) {
	t.Helper()
	for i := range tasks {
		if err := g.AddTask(&tasks[i]); err != nil {
			t.Fatalf("failed to add task %s: %v", tasks[i].Name, err)
		}
	}
}

func TestGraph_AddTask(t *testing.T) {
	g := domain.NewGraph()
	task := domain.Task{Name: "task1"}

	if err := g.AddTask(&task); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := g.AddTask(&task)
	if err == nil {
		t.Fatal("expected error when adding duplicate task, got nil")
	}
	if !errors.Is(err, domain.ErrTaskAlreadyExists) {
		t.Errorf("expected ErrTaskAlreadyExists, got %v", err)
	}

	var zErr *zerr.Error
	if !errors.As(err, &zErr) {
		t.Fatalf("expected *zerr.Error, got %T", err)
	}
	if taskName, ok := zErr.Metadata()["task_name"].(string); !ok || taskName != "task1" {
		t.Errorf("expected metadata task_name=task1, got %v", zErr.Metadata()["task_name"])
	}
}

func TestGraph_Validate_Cycle(t *testing.T) {
	g := domain.NewGraph()
	mustAdd(t, g,
		domain.Task{Name: "A", Dependencies: []string{"B"}},
		domain.Task{Name: "B", Dependencies: []string{"A"}},
	)

	err := g.Validate()
	if err == nil {
		t.Fatal("expected error for cycle, got nil")
	}
	if !errors.Is(err, domain.ErrCycleDetected) {
		t.Fatalf("expected ErrCycleDetected, got %v", err)
	}

	var zErr *zerr.Error
	if !errors.As(err, &zErr) {
		t.Fatalf("expected *zerr.Error, got %T", err)
	}
	if cycle, ok := zErr.Metadata()["cycle"].(string); !ok || cycle != "A -> B -> A" {
		t.Errorf("expected cycle metadata A -> B -> A, got %v", zErr.Metadata()["cycle"])
	}
}

func TestGraph_Validate_MissingDependency(t *testing.T) {
	g := domain.NewGraph()
	mustAdd(t, g, domain.Task{Name: "A", Dependencies: []string{"ghost"}})

	err := g.Validate()
	if !errors.Is(err, domain.ErrMissingDependency) {
		t.Fatalf("expected ErrMissingDependency, got %v", err)
	}
}

func TestGraph_Plan_Chain(t *testing.T) {
	g := domain.NewGraph()
	// A -> B -> C, execution order: C, B, A
	mustAdd(t, g,
		domain.Task{Name: "A", Dependencies: []string{"B"}},
		domain.Task{Name: "B", Dependencies: []string{"C"}},
		domain.Task{Name: "C"},
	)

	plan, err := g.Plan([]string{"A"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, want := names(plan), []string{"C", "B", "A"}; !slices.Equal(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestGraph_Plan_DeclaredPrerequisiteOrder(t *testing.T) {
	g := domain.NewGraph()
	mustAdd(t, g,
		domain.Task{Name: "format"},
		domain.Task{Name: "lint"},
		domain.Task{Name: "test"},
		domain.Task{Name: "check", Dependencies: []string{"format", "lint", "test"}},
	)

	plan, err := g.Plan([]string{"check"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, want := names(plan), []string{"format", "lint", "test", "check"}; !slices.Equal(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestGraph_Plan_Deduplicates(t *testing.T) {
	g := domain.NewGraph()
	// Diamond: top needs left and right, both need base.
	mustAdd(t, g,
		domain.Task{Name: "base"},
		domain.Task{Name: "left", Dependencies: []string{"base"}},
		domain.Task{Name: "right", Dependencies: []string{"base"}},
		domain.Task{Name: "top", Dependencies: []string{"left", "right"}},
	)

	plan, err := g.Plan([]string{"top", "base"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, want := names(plan), []string{"base", "left", "right", "top"}; !slices.Equal(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestGraph_Plan_MultipleTargetsKeepOrder(t *testing.T) {
	g := domain.NewGraph()
	mustAdd(t, g, domain.Task{Name: "lint"}, domain.Task{Name: "format"})

	plan, err := g.Plan([]string{"format", "lint"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, want := names(plan), []string{"format", "lint"}; !slices.Equal(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestGraph_Plan_Errors(t *testing.T) {
	g := domain.NewGraph()
	mustAdd(t, g, domain.Task{Name: "A"})

	if _, err := g.Plan(nil); !errors.Is(err, domain.ErrNoTargetsSpecified) {
		t.Errorf("expected ErrNoTargetsSpecified, got %v", err)
	}

	_, err := g.Plan([]string{"nope"})
	if !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
	var zErr *zerr.Error
	if !errors.As(err, &zErr) || zErr.Metadata()["task"] != "nope" {
		t.Errorf("expected task metadata, got %v", err)
	}
}

func TestGraph_TasksDeclarationOrder(t *testing.T) {
	g := domain.NewGraph()
	mustAdd(t, g, domain.Task{Name: "zeta"}, domain.Task{Name: "alpha"}, domain.Task{Name: "mid"})

	var got []string
	for task := range g.Tasks() {
		got = append(got, task.Name)
	}
	if want := []string{"zeta", "alpha", "mid"}; !slices.Equal(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
	if want := []string{"alpha", "mid", "zeta"}; !slices.Equal(g.Names(), want) {
		t.Errorf("expected sorted names %v, got %v", want, g.Names())
	}
	if g.TaskCount() != 3 {
		t.Errorf("expected 3 tasks, got %d", g.TaskCount())
	}
}

func TestGraph_Root(t *testing.T) {
	g := domain.NewGraph()
	g.SetRoot("/work/eeg-alpha")
	p := domain.Project{Graph: g}
	if p.Root() != "/work/eeg-alpha" {
		t.Errorf("expected root /work/eeg-alpha, got %s", p.Root())
	}
}
