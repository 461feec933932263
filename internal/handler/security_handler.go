package handler

import (
	"context"
	"net/http"

	"pdf-toolbox/internal/domain"
)

// SecurityHandler exposes password protection and document inspection.
type SecurityHandler struct {
	security  SecurityEngine
	info      InfoEngine
	jobs      JobRunner
	workspace *Workspace
	logger    domain.Logger
}

// NewSecurityHandler creates a new security handler
func NewSecurityHandler(security SecurityEngine, info InfoEngine, jobs JobRunner, workspace *Workspace, logger domain.Logger) *SecurityHandler {
	return &SecurityHandler{
		security:  security,
		info:      info,
		jobs:      jobs,
		workspace: workspace,
		logger:    logger,
	}
}

type encryptRequest struct {
	Input         string `json:"input"`
	Output        string `json:"output"`
	OwnerPassword string `json:"owner_password"`
	UserPassword  string `json:"user_password"`
}

type unlockRequest struct {
	Input    string `json:"input"`
	Output   string `json:"output"`
	Password string `json:"password"`
}

type statusResponse struct {
	Path      string `json:"path"`
	Encrypted bool   `json:"encrypted"`
}

func (h *SecurityHandler) Encrypt(w http.ResponseWriter, r *http.Request) {
	var req encryptRequest
	if err := decodeJSON(r, &req); err != nil {
		writeAppError(w, err)
		return
	}
	input, output, err := h.resolvePair(req.Input, req.Output)
	if err != nil {
		writeAppError(w, err)
		return
	}

	run(w, r, h.jobs, h.workspace, "encrypt", func(ctx context.Context) domain.OperationResult {
		return h.security.Encrypt(ctx, input, output, req.OwnerPassword, req.UserPassword)
	})
}

func (h *SecurityHandler) Decrypt(w http.ResponseWriter, r *http.Request) {
	h.unlock(w, r, "decrypt", h.security.Decrypt)
}

func (h *SecurityHandler) RemovePassword(w http.ResponseWriter, r *http.Request) {
	h.unlock(w, r, "remove_password", h.security.RemovePassword)
}

func (h *SecurityHandler) unlock(
	w http.ResponseWriter,
	r *http.Request,
	operation string,
	fn func(ctx context.Context, inputPath, outputPath, password string) domain.OperationResult,
) {
	var req unlockRequest
	if err := decodeJSON(r, &req); err != nil {
		writeAppError(w, err)
		return
	}
	input, output, err := h.resolvePair(req.Input, req.Output)
	if err != nil {
		writeAppError(w, err)
		return
	}

	run(w, r, h.jobs, h.workspace, operation, func(ctx context.Context) domain.OperationResult {
		return fn(ctx, input, output, req.Password)
	})
}

// Status answers whether a document is encrypted. Missing files report false.
func (h *SecurityHandler) Status(w http.ResponseWriter, r *http.Request) {
	rel := r.URL.Query().Get("path")
	path, err := h.workspace.Resolve(rel)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Path: rel, Encrypted: h.security.IsEncrypted(r.Context(), path)})
}

func (h *SecurityHandler) EncryptionInfo(w http.ResponseWriter, r *http.Request) {
	path, err := h.workspace.Resolve(r.URL.Query().Get("path"))
	if err != nil {
		writeAppError(w, err)
		return
	}
	info, err := h.security.EncryptionInfo(r.Context(), path)
	if err != nil {
		h.logger.Error("Failed to read encryption info", err, "path", path)
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// DocumentInfo reports page count, size, metadata and page geometry. The
// password query parameter opens encrypted documents.
func (h *SecurityHandler) DocumentInfo(w http.ResponseWriter, r *http.Request) {
	rel := r.URL.Query().Get("path")
	path, err := h.workspace.Resolve(rel)
	if err != nil {
		writeAppError(w, err)
		return
	}
	info, err := h.info.Info(r.Context(), path, r.URL.Query().Get("password"))
	if err != nil {
		writeAppError(w, err)
		return
	}
	info.Path = rel
	writeJSON(w, http.StatusOK, info)
}

func (h *SecurityHandler) resolvePair(a, b string) (string, string, error) {
	pa, err := h.workspace.Resolve(a)
	if err != nil {
		return "", "", err
	}
	pb, err := h.workspace.Resolve(b)
	if err != nil {
		return "", "", err
	}
	return pa, pb, nil
}
