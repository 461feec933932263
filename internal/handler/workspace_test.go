package handler

import (
	"errors"
	"path/filepath"
	"testing"

	"pdf-toolbox/internal/domain"
	apperrors "pdf-toolbox/pkg/errors"
)

func newTestWorkspace(t *testing.T) *Workspace {
	t.Helper()
	ws, err := NewWorkspace(filepath.Join(t.TempDir(), "ws"))
	if err != nil {
		t.Fatalf("NewWorkspace: %v", err)
	}
	return ws
}

func TestWorkspace_Resolve(t *testing.T) {
	ws := newTestWorkspace(t)

	got, err := ws.Resolve("in/a.pdf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := filepath.Join(ws.Root(), "in", "a.pdf"); got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
	if rel := ws.Rel(got); rel != "in/a.pdf" {
		t.Fatalf("expected in/a.pdf, got %s", rel)
	}
}

func TestWorkspace_ResolveRejectsEscapes(t *testing.T) {
	ws := newTestWorkspace(t)

	for _, rel := range []string{"../a.pdf", "/etc/passwd", "in/../../a.pdf", ""} {
		_, err := ws.Resolve(rel)
		if err == nil {
			t.Fatalf("expected %q to be rejected", rel)
		}
		if !apperrors.IsType(err, apperrors.ErrorTypeInvalidArgument) {
			t.Fatalf("expected invalid argument for %q, got %v", rel, err)
		}
		if rel != "" && !errors.Is(err, domain.ErrPathOutsideRoot) {
			t.Fatalf("expected ErrPathOutsideRoot for %q, got %v", rel, err)
		}
	}
}

func TestWorkspace_ResolveAll(t *testing.T) {
	ws := newTestWorkspace(t)

	if _, err := ws.ResolveAll([]string{"a.pdf", "../b.pdf"}); err == nil {
		t.Fatalf("expected an escaping path to fail the batch")
	}
	paths, err := ws.ResolveAll([]string{"a.pdf", "b.pdf"})
	if err != nil || len(paths) != 2 {
		t.Fatalf("unexpected result %v, %v", paths, err)
	}
}

func TestWorkspace_RelJob(t *testing.T) {
	ws := newTestWorkspace(t)
	res := domain.Succeeded("ok", filepath.Join(ws.Root(), "out", "a.pdf"))
	job := &domain.Job{ID: "job-1", Result: &res}

	rel := ws.RelJob(job)

	if rel.Result.Outputs[0] != "out/a.pdf" {
		t.Fatalf("expected relative output, got %s", rel.Result.Outputs[0])
	}
	if job.Result.Outputs[0] == "out/a.pdf" {
		t.Fatalf("expected original job to be left untouched")
	}
}
