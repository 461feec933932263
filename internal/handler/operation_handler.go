package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"pdf-toolbox/internal/domain"
	"pdf-toolbox/internal/service"
	apperrors "pdf-toolbox/pkg/errors"
)

// OperationDefaults fill in optional request fields.
type OperationDefaults struct {
	DPI         int
	ImageFormat string
}

// OperationHandler exposes the merge, split and conversion engines.
type OperationHandler struct {
	merge     MergeEngine
	split     SplitEngine
	convert   ConversionEngine
	jobs      JobRunner
	workspace *Workspace
	defaults  OperationDefaults
	logger    domain.Logger
}

// NewOperationHandler creates a new operation handler
func NewOperationHandler(
	merge MergeEngine,
	split SplitEngine,
	convert ConversionEngine,
	jobs JobRunner,
	workspace *Workspace,
	defaults OperationDefaults,
	logger domain.Logger,
) *OperationHandler {
	return &OperationHandler{
		merge:     merge,
		split:     split,
		convert:   convert,
		jobs:      jobs,
		workspace: workspace,
		defaults:  defaults,
		logger:    logger,
	}
}

type mergeRequest struct {
	Inputs []string `json:"inputs"`
	Output string   `json:"output"`
}

type orderedMergeRequest struct {
	Items  []service.FileRange `json:"items"`
	Output string              `json:"output"`
}

type splitCountRequest struct {
	Input        string      `json:"input"`
	OutputDir    string      `json:"output_dir"`
	PagesPerFile json.Number `json:"pages_per_file"`
}

type splitRangesRequest struct {
	Input     string   `json:"input"`
	OutputDir string   `json:"output_dir"`
	Ranges    []string `json:"ranges"`
}

type extractRequest struct {
	Input  string `json:"input"`
	Output string `json:"output"`
	Pages  []int  `json:"pages"`
}

type imagesRequest struct {
	Input     string  `json:"input"`
	OutputDir string  `json:"output_dir"`
	Format    string  `json:"format"`
	DPI       float64 `json:"dpi"`
	Range     string  `json:"range"`
	Password  string  `json:"password"`
}

type imagesToPDFRequest struct {
	Images []string `json:"images"`
	Output string   `json:"output"`
}

type textRequest struct {
	Input    string `json:"input"`
	Output   string `json:"output"`
	Range    string `json:"range"`
	Password string `json:"password"`
}

type compressRequest struct {
	Input        string `json:"input"`
	Output       string `json:"output"`
	Quality      int    `json:"quality"`
	ImageQuality int    `json:"image_quality"`
}

func (h *OperationHandler) Merge(w http.ResponseWriter, r *http.Request) {
	var req mergeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeAppError(w, err)
		return
	}
	inputs, err := h.workspace.ResolveAll(req.Inputs)
	if err != nil {
		writeAppError(w, err)
		return
	}
	output, err := h.workspace.Resolve(req.Output)
	if err != nil {
		writeAppError(w, err)
		return
	}

	run(w, r, h.jobs, h.workspace, "merge", func(ctx context.Context) domain.OperationResult {
		return h.merge.MergeAll(ctx, inputs, output)
	})
}

func (h *OperationHandler) MergeOrdered(w http.ResponseWriter, r *http.Request) {
	var req orderedMergeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeAppError(w, err)
		return
	}
	items := make([]service.FileRange, len(req.Items))
	for i, item := range req.Items {
		p, err := h.workspace.Resolve(item.Path)
		if err != nil {
			writeAppError(w, err)
			return
		}
		items[i] = service.FileRange{Path: p, Range: item.Range}
	}
	output, err := h.workspace.Resolve(req.Output)
	if err != nil {
		writeAppError(w, err)
		return
	}

	run(w, r, h.jobs, h.workspace, "merge_ordered", func(ctx context.Context) domain.OperationResult {
		return h.merge.MergeOrdered(ctx, items, output)
	})
}

func (h *OperationHandler) SplitByCount(w http.ResponseWriter, r *http.Request) {
	var req splitCountRequest
	if err := decodeJSON(r, &req); err != nil {
		writeAppError(w, err)
		return
	}
	pagesPerFile, err := strconv.Atoi(req.PagesPerFile.String())
	if err != nil {
		writeAppError(w, apperrors.NewInvalidArgumentError("pages_per_file must be an integer", req.PagesPerFile.String()))
		return
	}
	input, outputDir, err := h.resolvePair(req.Input, req.OutputDir)
	if err != nil {
		writeAppError(w, err)
		return
	}

	run(w, r, h.jobs, h.workspace, "split_count", func(ctx context.Context) domain.OperationResult {
		return h.split.SplitByPageCount(ctx, input, outputDir, pagesPerFile)
	})
}

func (h *OperationHandler) SplitByRanges(w http.ResponseWriter, r *http.Request) {
	var req splitRangesRequest
	if err := decodeJSON(r, &req); err != nil {
		writeAppError(w, err)
		return
	}
	input, outputDir, err := h.resolvePair(req.Input, req.OutputDir)
	if err != nil {
		writeAppError(w, err)
		return
	}

	run(w, r, h.jobs, h.workspace, "split_ranges", func(ctx context.Context) domain.OperationResult {
		return h.split.SplitByRanges(ctx, input, outputDir, req.Ranges)
	})
}

func (h *OperationHandler) Extract(w http.ResponseWriter, r *http.Request) {
	var req extractRequest
	if err := decodeJSON(r, &req); err != nil {
		writeAppError(w, err)
		return
	}
	input, output, err := h.resolvePair(req.Input, req.Output)
	if err != nil {
		writeAppError(w, err)
		return
	}

	run(w, r, h.jobs, h.workspace, "extract", func(ctx context.Context) domain.OperationResult {
		return h.split.ExtractPages(ctx, input, output, req.Pages)
	})
}

func (h *OperationHandler) ToImages(w http.ResponseWriter, r *http.Request) {
	var req imagesRequest
	if err := decodeJSON(r, &req); err != nil {
		writeAppError(w, err)
		return
	}
	input, outputDir, err := h.resolvePair(req.Input, req.OutputDir)
	if err != nil {
		writeAppError(w, err)
		return
	}
	if req.Format == "" {
		req.Format = h.defaults.ImageFormat
	}
	if req.DPI == 0 {
		req.DPI = float64(h.defaults.DPI)
	}

	exportReq := service.ImageExportRequest{
		InputPath: input,
		OutputDir: outputDir,
		Format:    req.Format,
		DPI:       req.DPI,
		PageRange: req.Range,
		Password:  req.Password,
	}
	run(w, r, h.jobs, h.workspace, "to_images", func(ctx context.Context) domain.OperationResult {
		return h.convert.DocumentToImages(ctx, exportReq)
	})
}

func (h *OperationHandler) ToPDF(w http.ResponseWriter, r *http.Request) {
	var req imagesToPDFRequest
	if err := decodeJSON(r, &req); err != nil {
		writeAppError(w, err)
		return
	}
	images, err := h.workspace.ResolveAll(req.Images)
	if err != nil {
		writeAppError(w, err)
		return
	}
	output, err := h.workspace.Resolve(req.Output)
	if err != nil {
		writeAppError(w, err)
		return
	}

	run(w, r, h.jobs, h.workspace, "to_pdf", func(ctx context.Context) domain.OperationResult {
		return h.convert.ImagesToDocument(ctx, images, output)
	})
}

func (h *OperationHandler) ToText(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if err := decodeJSON(r, &req); err != nil {
		writeAppError(w, err)
		return
	}
	input, output, err := h.resolvePair(req.Input, req.Output)
	if err != nil {
		writeAppError(w, err)
		return
	}

	run(w, r, h.jobs, h.workspace, "to_text", func(ctx context.Context) domain.OperationResult {
		return h.convert.DocumentToText(ctx, input, output, req.Range, req.Password)
	})
}

func (h *OperationHandler) Compress(w http.ResponseWriter, r *http.Request) {
	var req compressRequest
	if err := decodeJSON(r, &req); err != nil {
		writeAppError(w, err)
		return
	}
	input, output, err := h.resolvePair(req.Input, req.Output)
	if err != nil {
		writeAppError(w, err)
		return
	}

	opts := service.CompressOptions{Quality: req.Quality, ImageQuality: req.ImageQuality}
	run(w, r, h.jobs, h.workspace, "compress", func(ctx context.Context) domain.OperationResult {
		return h.convert.CompressDocument(ctx, input, output, opts)
	})
}

func (h *OperationHandler) resolvePair(a, b string) (string, string, error) {
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

// run executes fn inline, or as a background job when the request carries
// async=true.
func run(w http.ResponseWriter, r *http.Request, jobs JobRunner, ws *Workspace, operation string, fn func(context.Context) domain.OperationResult) {
	if async, _ := strconv.ParseBool(r.URL.Query().Get("async")); async {
		job, err := jobs.Submit(operation, fn)
		if err != nil {
			if errors.Is(err, service.ErrShuttingDown) {
				writeError(w, http.StatusServiceUnavailable, err.Error())
				return
			}
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusAccepted, ws.RelJob(job))
		return
	}

	res := ws.RelResult(fn(r.Context()))
	status := http.StatusOK
	if !res.Success {
		status = apperrors.StatusForType(res.Kind)
	}
	writeJSON(w, status, res)
}
