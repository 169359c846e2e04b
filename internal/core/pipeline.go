package core

import (
	"context"
	"strings"
	"time"

	"github.com/kataras/golog"

	"github.com/agenthands/papergraph/internal/config"
	"github.com/agenthands/papergraph/internal/core/chunk"
	"github.com/agenthands/papergraph/internal/core/extraction"
	"github.com/agenthands/papergraph/internal/core/ingest"
	"github.com/agenthands/papergraph/internal/core/model"
	"github.com/agenthands/papergraph/internal/driver"
	"github.com/agenthands/papergraph/internal/llm"
)

// Pipeline wires the document flow together: chunking, per-chunk triple
// extraction, and the batched graph write. Chunks are processed
// sequentially with a fixed inter-request delay; the store connection
// is held for the duration of the run.
type Pipeline struct {
	Driver    driver.GraphDriver
	LLM       llm.Client
	Chunker   *chunk.Chunker
	Extractor *extraction.Extractor
	Writer    *ingest.Writer

	cfg config.PipelineConfig
}

func NewPipeline(d driver.GraphDriver, client llm.Client, cfg *config.Config) *Pipeline {
	return &Pipeline{
		Driver: d,
		LLM:    client,
		Chunker: chunk.New(chunk.Config{
			MaxChars: cfg.Pipeline.ChunkSize,
			Overlap:  cfg.Pipeline.ChunkOverlap,
		}),
		Extractor: extraction.NewExtractor(client, cfg.Pipeline, cfg.Prompts),
		Writer:    ingest.NewWriter(d, cfg.Pipeline.BatchSize),
		cfg:       cfg.Pipeline,
	}
}

func (p *Pipeline) BuildIndices(ctx context.Context) error {
	return p.Driver.BuildIndices(ctx)
}

// ProgressFunc receives a snapshot after every processed chunk.
type ProgressFunc func(model.Progress)

// ProcessDocument runs the full pipeline for one document. The returned
// Summary always reflects whatever was actually done; an error is only
// returned for failures that abort the run (store connectivity,
// cancellation), never for individual failed chunks.
func (p *Pipeline) ProcessDocument(ctx context.Context, sessionID, document, text string, onProgress ProgressFunc) (model.Summary, error) {
	summary := model.Summary{Document: document, Status: model.StatusEmpty}

	if len(strings.TrimSpace(text)) < p.cfg.MinDocChars {
		golog.Warnf("%s: empty or very short text, possibly a scanned PDF", document)
		return summary, nil
	}

	summary.Domain = p.Extractor.DetectDomain(ctx, text)
	golog.Infof("%s: detected domain %q", document, summary.Domain)

	chunks := p.Chunker.Split(document, text)
	summary.ChunksTotal = len(chunks)
	if len(chunks) == 0 {
		return summary, nil
	}
	golog.Infof("%s: split into %d chunks", document, len(chunks))

	var triples []model.Triple
	for i, c := range chunks {
		if err := ctx.Err(); err != nil {
			summary.FatalError = err.Error()
			summary.Status = model.StatusFailed
			return summary, err
		}

		ext := p.Extractor.ExtractChunk(ctx, c, summary.Domain)
		if ext.Unparsed {
			summary.ChunksFailed++
			golog.Warnf("%s: chunk %d failed: %s", document, c.Index, ext.Reason)
		} else {
			triples = append(triples, ext.Triples...)
			summary.TriplesRejected += ext.Rejected
		}

		if onProgress != nil {
			onProgress(model.Progress{
				ChunksProcessed: i + 1,
				ChunksTotal:     len(chunks),
				TriplesFound:    len(triples),
				ChunksFailed:    summary.ChunksFailed,
			})
		}

		if i < len(chunks)-1 {
			if err := p.pause(ctx); err != nil {
				summary.FatalError = err.Error()
				summary.Status = model.StatusFailed
				return summary, err
			}
		}
	}
	summary.TriplesExtracted = len(triples)

	result, err := p.Writer.WriteTriples(ctx, sessionID, triples)
	summary.TriplesWritten = result.TriplesWritten
	summary.NodesCreated = result.NodesCreated
	summary.NodesMatched = result.NodesMatched
	summary.EdgesCreated = result.EdgesCreated
	summary.EdgesMatched = result.EdgesMatched
	summary.BatchesCommitted = result.BatchesCommitted
	if err != nil {
		summary.Status = model.StatusFailed
		summary.FatalError = err.Error()
		return summary, err
	}

	switch {
	case summary.TriplesWritten == 0:
		summary.Status = model.StatusEmpty
	case summary.ChunksFailed > 0:
		summary.Status = model.StatusPartial
	default:
		summary.Status = model.StatusComplete
	}

	golog.Infof("%s: %s (%d triples written, %d chunks failed)",
		document, summary.Status, summary.TriplesWritten, summary.ChunksFailed)
	return summary, nil
}

// pause waits out the inter-request delay, honoring cancellation.
func (p *Pipeline) pause(ctx context.Context) error {
	delay := p.cfg.RequestDelay()
	if delay <= 0 {
		return nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
