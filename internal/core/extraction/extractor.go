package extraction

import (
	"context"
	"fmt"
	"strings"

	"github.com/cenkalti/backoff/v4"
	"github.com/kataras/golog"

	"github.com/agenthands/papergraph/internal/config"
	"github.com/agenthands/papergraph/internal/core/model"
	"github.com/agenthands/papergraph/internal/llm"
)

// rawKeepChars bounds how much of an unparsable response is kept for
// the run report.
const rawKeepChars = 2000

// Extractor turns chunks into validated triples through the LLM.
type Extractor struct {
	llm     llm.Client
	cfg     config.PipelineConfig
	prompts Prompts
}

func NewExtractor(client llm.Client, cfg config.PipelineConfig, overrides config.PromptOverrides) *Extractor {
	prompts := Prompts{
		Extraction: overrides.Extraction,
		Domain:     overrides.Domain,
	}
	if prompts.Extraction == "" {
		prompts.Extraction = defaultExtractionPrompt
	}
	if prompts.Domain == "" {
		prompts.Domain = defaultDomainPrompt
	}
	return &Extractor{
		llm:     client,
		cfg:     cfg,
		prompts: prompts,
	}
}

// DetectDomain asks the model for the document's field of study based
// on a preview of its text. Detection is best-effort: any failure falls
// back to UnknownDomain rather than blocking the run.
func (e *Extractor) DetectDomain(ctx context.Context, preview string) string {
	preview = strings.TrimSpace(preview)
	if preview == "" {
		return UnknownDomain
	}
	preview = truncate(preview, 1000)

	response, err := e.generate(ctx, fmt.Sprintf(e.prompts.Domain, preview))
	if err != nil {
		golog.Warnf("domain detection failed: %v", err)
		return UnknownDomain
	}

	domain := strings.Trim(strings.TrimSpace(response), `"'`)
	if domain == "" || strings.Contains(domain, "\n") {
		return UnknownDomain
	}
	return domain
}

// ExtractChunk extracts triples from a single chunk. It never returns
// an error: failures are recorded in the ChunkExtraction so one bad
// chunk cannot abort a run.
func (e *Extractor) ExtractChunk(ctx context.Context, c model.Chunk, domain string) model.ChunkExtraction {
	out := model.ChunkExtraction{ChunkIndex: c.Index}

	if len(strings.TrimSpace(c.Text)) < e.cfg.MinChunkChars {
		return out
	}

	response, err := e.generate(ctx, fmt.Sprintf(e.prompts.Extraction, domain, c.Text))
	if err != nil {
		out.Unparsed = true
		out.Reason = fmt.Sprintf("generation failed: %v", err)
		return out
	}

	candidates, strategy, err := Parse(response)
	if err != nil {
		out.Unparsed = true
		out.Reason = "no parse strategy succeeded"
		out.Raw = truncate(response, rawKeepChars)
		return out
	}

	for _, cand := range candidates {
		cand = cand.Normalize()
		if !cand.Valid() {
			out.Rejected++
			continue
		}
		cand.ChunkIndex = c.Index
		cand.Source = c.Document
		out.Triples = append(out.Triples, cand)
	}

	golog.Debugf("chunk %d: %d triples via %s strategy (%d rejected)",
		c.Index, len(out.Triples), strategy, out.Rejected)
	return out
}

// generate calls the model with bounded exponential-backoff retries on
// transient errors. Permanent errors (bad request, auth) abort at once.
func (e *Extractor) generate(ctx context.Context, prompt string) (string, error) {
	bo := backoff.NewExponentialBackOff()
	if base := e.cfg.BackoffBase(); base > 0 {
		bo.InitialInterval = base
	}
	bo.MaxElapsedTime = 0

	retries := e.cfg.MaxRetries
	if retries < 0 {
		retries = 0
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(bo, uint64(retries)), ctx)

	var out string
	op := func() error {
		response, err := e.llm.Generate(ctx, prompt)
		if err != nil {
			if llm.IsTransient(err) {
				return err
			}
			return backoff.Permanent(err)
		}
		out = response
		return nil
	}

	if err := backoff.Retry(op, policy); err != nil {
		return "", err
	}
	return out, nil
}

// truncate cuts on rune boundaries so multibyte text is never left with
// a broken trailing sequence.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
