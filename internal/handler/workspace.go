package handler

import (
	"fmt"
	"os"
	"path/filepath"

	"pdf-toolbox/internal/domain"
	apperrors "pdf-toolbox/pkg/errors"
)

// Workspace confines request paths to one directory tree.
type Workspace struct {
	root string
}

// NewWorkspace creates root if needed.
func NewWorkspace(root string) (*Workspace, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve workspace: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create workspace: %w", err)
	}
	return &Workspace{root: abs}, nil
}

// Root returns the absolute workspace directory.
func (ws *Workspace) Root() string {
	return ws.root
}

// Resolve maps a slash-separated relative path to an absolute path inside the
// workspace. Absolute paths and paths climbing out of it are rejected.
func (ws *Workspace) Resolve(rel string) (string, error) {
	if rel == "" {
		return "", apperrors.NewInvalidArgumentError("path is required")
	}
	local := filepath.FromSlash(rel)
	if filepath.IsAbs(local) || !filepath.IsLocal(local) {
		return "", &apperrors.AppError{
			Type:       apperrors.ErrorTypeInvalidArgument,
			Message:    domain.ErrPathOutsideRoot.Error(),
			Details:    rel,
			StatusCode: apperrors.StatusForType(apperrors.ErrorTypeInvalidArgument),
			Cause:      domain.ErrPathOutsideRoot,
		}
	}
	return filepath.Join(ws.root, local), nil
}

// ResolveAll resolves every path or fails on the first bad one.
func (ws *Workspace) ResolveAll(rels []string) ([]string, error) {
	paths := make([]string, len(rels))
	for i, rel := range rels {
		p, err := ws.Resolve(rel)
		if err != nil {
			return nil, err
		}
		paths[i] = p
	}
	return paths, nil
}

// Rel turns an absolute workspace path back into the slash-separated form
// clients use.
func (ws *Workspace) Rel(path string) string {
	rel, err := filepath.Rel(ws.root, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}

// RelResult rewrites the outputs of res as workspace-relative paths.
func (ws *Workspace) RelResult(res domain.OperationResult) domain.OperationResult {
	if len(res.Outputs) == 0 {
		return res
	}
	outputs := make([]string, len(res.Outputs))
	for i, p := range res.Outputs {
		outputs[i] = ws.Rel(p)
	}
	res.Outputs = outputs
	return res
}

// RelJob returns a copy of job with workspace-relative outputs.
func (ws *Workspace) RelJob(job *domain.Job) *domain.Job {
	c := *job
	if job.Result != nil {
		res := ws.RelResult(*job.Result)
		c.Result = &res
	}
	return &c
}
