package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/oklog/ulid/v2"

	"github.com/docgate/docgate/internal/model"
)

// RenderOptions controls how a rendition is produced.
type RenderOptions struct {
	Format string // "pdf" (default) or "png"
}

// Processor performs the actual document work after the gate has
// cleared the request. Implementations return the object path the
// result was written under.
type Processor interface {
	Merge(ctx context.Context, uid string, sources []string) (string, error)
	Render(ctx context.Context, uid, source string, opts RenderOptions) (string, error)
}

// PipelineProcessor assigns output paths under the caller's ownership
// prefix and forwards the work to the processing backend. The backend
// writes the result object; this side only names it.
type PipelineProcessor struct {
	submit func(ctx context.Context, job Job) error
}

// Job describes one unit of processing work.
type Job struct {
	UID        string   `json:"uid"`
	Kind       string   `json:"kind"` // "merge" or "render"
	Sources    []string `json:"sources"`
	OutputPath string   `json:"output_path"`
	Format     string   `json:"format,omitempty"`
}

// NewPipelineProcessor creates a processor that submits jobs through
// the given function. A nil submit function accepts every job without
// side effects, which is what local development uses.
func NewPipelineProcessor(submit func(ctx context.Context, job Job) error) *PipelineProcessor {
	return &PipelineProcessor{submit: submit}
}

// Merge names a merged output and submits the job.
func (p *PipelineProcessor) Merge(ctx context.Context, uid string, sources []string) (string, error) {
	outputPath := fmt.Sprintf("%s%s.pdf", model.OwnedPrefix(model.ClassMerged, uid), newObjectID())
	job := Job{UID: uid, Kind: "merge", Sources: sources, OutputPath: outputPath}
	if err := p.dispatch(ctx, job); err != nil {
		return "", err
	}
	return outputPath, nil
}

// Render names a rendition output and submits the job.
func (p *PipelineProcessor) Render(ctx context.Context, uid, source string, opts RenderOptions) (string, error) {
	format := strings.ToLower(opts.Format)
	if format == "" {
		format = "pdf"
	}
	outputPath := fmt.Sprintf("%s%s.%s", model.OwnedPrefix(model.ClassRendered, uid), newObjectID(), format)
	job := Job{UID: uid, Kind: "render", Sources: []string{source}, OutputPath: outputPath, Format: format}
	if err := p.dispatch(ctx, job); err != nil {
		return "", err
	}
	return outputPath, nil
}

func (p *PipelineProcessor) dispatch(ctx context.Context, job Job) error {
	if p.submit == nil {
		return nil
	}
	return p.submit(ctx, job)
}

// newObjectID returns a sortable unique object name.
func newObjectID() string {
	return strings.ToLower(ulid.Make().String())
}
