package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"pdf-toolbox/internal/domain"
	"pdf-toolbox/internal/service"
	apperrors "pdf-toolbox/pkg/errors"
)

type operationFixture struct {
	ws      *Workspace
	merge   *fakeMerge
	split   *fakeSplit
	convert *fakeConvert
	jobs    *fakeJobs
	handler *OperationHandler
}

func newOperationFixture(t *testing.T) *operationFixture {
	t.Helper()
	f := &operationFixture{
		ws:      newTestWorkspace(t),
		merge:   &fakeMerge{},
		split:   &fakeSplit{},
		convert: &fakeConvert{},
		jobs:    newFakeJobs(),
	}
	f.handler = NewOperationHandler(f.merge, f.split, f.convert, f.jobs, f.ws,
		OperationDefaults{DPI: 150, ImageFormat: "png"}, NewMockHandlerLogger())
	return f
}

func post(h http.HandlerFunc, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h(rr, req)
	return rr
}

func decodeResult(t *testing.T, rr *httptest.ResponseRecorder) domain.OperationResult {
	t.Helper()
	var res domain.OperationResult
	if err := json.Unmarshal(rr.Body.Bytes(), &res); err != nil {
		t.Fatalf("cannot decode result %q: %v", rr.Body.String(), err)
	}
	return res
}

func TestOperationHandler_MergeSync(t *testing.T) {
	f := newOperationFixture(t)
	f.merge.result = domain.Succeeded("merged", filepath.Join(f.ws.Root(), "out.pdf"))

	rr := post(f.handler.Merge, "/api/v1/merge", `{"inputs":["a.pdf","b.pdf"],"output":"out.pdf"}`)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rr.Code, rr.Body.String())
	}
	res := decodeResult(t, rr)
	if len(res.Outputs) != 1 || res.Outputs[0] != "out.pdf" {
		t.Fatalf("expected workspace-relative output, got %v", res.Outputs)
	}
	if f.merge.paths[1] != filepath.Join(f.ws.Root(), "b.pdf") {
		t.Fatalf("expected resolved input path, got %s", f.merge.paths[1])
	}
}

func TestOperationHandler_FailureStatus(t *testing.T) {
	cases := []struct {
		kind apperrors.ErrorType
		want int
	}{
		{apperrors.ErrorTypeFileNotFound, http.StatusNotFound},
		{apperrors.ErrorTypeInvalidRangeSyntax, http.StatusBadRequest},
		{apperrors.ErrorTypeWrongPassword, http.StatusForbidden},
		{apperrors.ErrorTypeCodec, http.StatusUnprocessableEntity},
		{apperrors.ErrorTypeWrite, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		f := newOperationFixture(t)
		f.merge.result = domain.OperationResult{Kind: tc.kind, Message: "failed"}

		rr := post(f.handler.Merge, "/api/v1/merge", `{"inputs":["a.pdf"],"output":"out.pdf"}`)

		if rr.Code != tc.want {
			t.Fatalf("%s: expected status %d, got %d", tc.kind, tc.want, rr.Code)
		}
		if res := decodeResult(t, rr); res.Kind != tc.kind {
			t.Fatalf("expected kind %s, got %s", tc.kind, res.Kind)
		}
	}
}

func TestOperationHandler_Async(t *testing.T) {
	f := newOperationFixture(t)
	f.merge.result = domain.Succeeded("merged", filepath.Join(f.ws.Root(), "out.pdf"))

	rr := post(f.handler.Merge, "/api/v1/merge?async=true", `{"inputs":["a.pdf"],"output":"out.pdf"}`)

	if rr.Code != http.StatusAccepted {
		t.Fatalf("expected status %d, got %d", http.StatusAccepted, rr.Code)
	}
	var job domain.Job
	if err := json.Unmarshal(rr.Body.Bytes(), &job); err != nil {
		t.Fatalf("cannot decode job: %v", err)
	}
	if job.ID != "job-1" || job.Operation != "merge" {
		t.Fatalf("unexpected job %+v", job)
	}
	if job.Result == nil || job.Result.Outputs[0] != "out.pdf" {
		t.Fatalf("expected relative job outputs, got %+v", job.Result)
	}
}

func TestOperationHandler_AsyncShuttingDown(t *testing.T) {
	f := newOperationFixture(t)
	f.jobs.submitErr = service.ErrShuttingDown

	rr := post(f.handler.Merge, "/api/v1/merge?async=1", `{"inputs":["a.pdf"],"output":"out.pdf"}`)

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status %d, got %d", http.StatusServiceUnavailable, rr.Code)
	}
}

func TestOperationHandler_RejectsBadRequests(t *testing.T) {
	f := newOperationFixture(t)

	cases := map[string]string{
		"unknown field": `{"inputs":["a.pdf"],"output":"out.pdf","extra":1}`,
		"escape":        `{"inputs":["../a.pdf"],"output":"out.pdf"}`,
		"no output":     `{"inputs":["a.pdf"]}`,
		"malformed":     `{"inputs":`,
	}
	for name, body := range cases {
		rr := post(f.handler.Merge, "/api/v1/merge", body)
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected status %d, got %d", name, http.StatusBadRequest, rr.Code)
		}
	}
	if f.merge.output != "" {
		t.Fatalf("expected engine not to be called")
	}
}

func TestOperationHandler_MergeOrdered(t *testing.T) {
	f := newOperationFixture(t)
	f.merge.result = domain.Succeeded("merged")

	rr := post(f.handler.MergeOrdered, "/api/v1/merge/ordered",
		`{"items":[{"path":"a.pdf","range":"2-3"},{"path":"b.pdf"}],"output":"out.pdf"}`)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rr.Code, rr.Body.String())
	}
	if len(f.merge.items) != 2 || f.merge.items[0].Range != "2-3" || f.merge.items[1].Range != "" {
		t.Fatalf("unexpected items %+v", f.merge.items)
	}
	if f.merge.items[0].Path != filepath.Join(f.ws.Root(), "a.pdf") {
		t.Fatalf("expected resolved path, got %s", f.merge.items[0].Path)
	}
}

func TestOperationHandler_SplitByCount(t *testing.T) {
	f := newOperationFixture(t)
	f.split.result = domain.Succeeded("split")

	rr := post(f.handler.SplitByCount, "/api/v1/split/count", `{"input":"a.pdf","output_dir":"parts","pages_per_file":3}`)
	if rr.Code != http.StatusOK || f.split.pagesPerFile != 3 {
		t.Fatalf("unexpected status %d with pages per file %d", rr.Code, f.split.pagesPerFile)
	}

	rr = post(f.handler.SplitByCount, "/api/v1/split/count", `{"input":"a.pdf","output_dir":"parts","pages_per_file":1.5}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rr.Code)
	}
}

func TestOperationHandler_ToImagesDefaults(t *testing.T) {
	f := newOperationFixture(t)
	f.convert.result = domain.Succeeded("exported")

	rr := post(f.handler.ToImages, "/api/v1/convert/images", `{"input":"a.pdf","output_dir":"img","range":"1-2"}`)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	req := f.convert.imageReq
	if req.Format != "png" || req.DPI != 150 || req.PageRange != "1-2" {
		t.Fatalf("expected defaults to be applied, got %+v", req)
	}
}

func TestOperationHandler_Compress(t *testing.T) {
	f := newOperationFixture(t)
	f.convert.result = domain.Succeeded("compressed")

	rr := post(f.handler.Compress, "/api/v1/compress", `{"input":"a.pdf","output":"b.pdf","quality":60}`)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if f.convert.compress.Quality != 60 || f.convert.compress.ImageQuality != 0 {
		t.Fatalf("unexpected options %+v", f.convert.compress)
	}
}
