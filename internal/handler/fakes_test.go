package handler

import (
	"context"
	"sync"

	"pdf-toolbox/internal/domain"
	"pdf-toolbox/internal/service"
)

type fakeMerge struct {
	paths  []string
	items  []service.FileRange
	output string
	result domain.OperationResult
}

func (f *fakeMerge) MergeAll(ctx context.Context, paths []string, outputPath string) domain.OperationResult {
	f.paths, f.output = paths, outputPath
	return f.result
}

func (f *fakeMerge) MergeOrdered(ctx context.Context, items []service.FileRange, outputPath string) domain.OperationResult {
	f.items, f.output = items, outputPath
	return f.result
}

type fakeSplit struct {
	pagesPerFile int
	ranges       []string
	pages        []int
	result       domain.OperationResult
}

func (f *fakeSplit) SplitByPageCount(ctx context.Context, inputPath, outputDir string, pagesPerFile int) domain.OperationResult {
	f.pagesPerFile = pagesPerFile
	return f.result
}

func (f *fakeSplit) SplitByRanges(ctx context.Context, inputPath, outputDir string, exprs []string) domain.OperationResult {
	f.ranges = exprs
	return f.result
}

func (f *fakeSplit) ExtractPages(ctx context.Context, inputPath, outputPath string, pages []int) domain.OperationResult {
	f.pages = pages
	return f.result
}

type fakeConvert struct {
	imageReq service.ImageExportRequest
	compress service.CompressOptions
	result   domain.OperationResult
}

func (f *fakeConvert) DocumentToImages(ctx context.Context, req service.ImageExportRequest) domain.OperationResult {
	f.imageReq = req
	return f.result
}

func (f *fakeConvert) ImagesToDocument(ctx context.Context, imagePaths []string, outputPath string) domain.OperationResult {
	return f.result
}

func (f *fakeConvert) DocumentToText(ctx context.Context, inputPath, outputPath, pageRange, password string) domain.OperationResult {
	return f.result
}

func (f *fakeConvert) CompressDocument(ctx context.Context, inputPath, outputPath string, opts service.CompressOptions) domain.OperationResult {
	f.compress = opts
	return f.result
}

type fakeSecurity struct {
	owner, user, password string
	encrypted             bool
	info                  *domain.EncryptionInfo
	infoErr               error
	result                domain.OperationResult
}

func (f *fakeSecurity) Encrypt(ctx context.Context, inputPath, outputPath, ownerPassword, userPassword string) domain.OperationResult {
	f.owner, f.user = ownerPassword, userPassword
	return f.result
}

func (f *fakeSecurity) Decrypt(ctx context.Context, inputPath, outputPath, password string) domain.OperationResult {
	f.password = password
	return f.result
}

func (f *fakeSecurity) RemovePassword(ctx context.Context, inputPath, outputPath, password string) domain.OperationResult {
	f.password = password
	return f.result
}

func (f *fakeSecurity) IsEncrypted(ctx context.Context, inputPath string) bool {
	return f.encrypted
}

func (f *fakeSecurity) EncryptionInfo(ctx context.Context, inputPath string) (*domain.EncryptionInfo, error) {
	return f.info, f.infoErr
}

type fakeInfo struct {
	info     *domain.DocumentInfo
	err      error
	password string
}

func (f *fakeInfo) Info(ctx context.Context, inputPath, password string) (*domain.DocumentInfo, error) {
	f.password = password
	if f.err != nil {
		return nil, f.err
	}
	c := *f.info
	return &c, nil
}

// fakeJobs runs submitted work inline and records the finished job.
type fakeJobs struct {
	mu        sync.Mutex
	jobs      map[string]*domain.Job
	submitErr error
	listErr   error
}

func newFakeJobs() *fakeJobs {
	return &fakeJobs{jobs: make(map[string]*domain.Job)}
}

func (f *fakeJobs) Submit(operation string, fn func(context.Context) domain.OperationResult) (*domain.Job, error) {
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	res := fn(context.Background())
	status := domain.JobSucceeded
	if !res.Success {
		status = domain.JobFailed
	}
	job := &domain.Job{ID: "job-1", Operation: operation, Status: status, Result: &res}
	f.jobs[job.ID] = job
	return job, nil
}

func (f *fakeJobs) Get(ctx context.Context, id string) (*domain.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	job, ok := f.jobs[id]
	if !ok {
		return nil, domain.ErrJobNotFound
	}
	return job, nil
}

func (f *fakeJobs) List(ctx context.Context, limit int) ([]*domain.Job, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var jobs []*domain.Job
	for _, job := range f.jobs {
		jobs = append(jobs, job)
	}
	if len(jobs) > limit {
		jobs = jobs[:limit]
	}
	return jobs, nil
}
