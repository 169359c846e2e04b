package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/kataras/golog"

	"github.com/agenthands/papergraph/internal/config"
	"github.com/agenthands/papergraph/internal/core"
	"github.com/agenthands/papergraph/internal/core/model"
	"github.com/agenthands/papergraph/internal/driver"
	"github.com/agenthands/papergraph/internal/llm"
	"github.com/agenthands/papergraph/internal/pdf"
)

// extract walks a folder of PDFs, extracts triples from each, and
// writes them to a JSON file. With -ingest it also pushes the triples
// into Neo4j under one session.
func main() {
	var (
		dir     = flag.String("dir", "pdfs", "folder of PDF files to process")
		out     = flag.String("out", "triples.json", "output JSON file for extracted triples")
		cfgPath = flag.String("config", "config/config.toml", "configuration file")
		session = flag.String("session", "", "session id for graph writes (default: random)")
		ingest  = flag.Bool("ingest", false, "write extracted triples to Neo4j")
		check   = flag.Bool("check", false, "verify LLM and Neo4j connectivity, then exit")
	)
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		golog.Debugf("no .env file found")
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		golog.Warnf("could not load %s: %v, using defaults", *cfgPath, err)
		cfg = config.Default()
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		golog.Fatalf("invalid configuration: %v", err)
	}

	ctx := context.Background()

	if *check {
		os.Exit(runCheck(ctx, cfg))
	}

	client, err := llm.NewClient(ctx, cfg.LLM)
	if err != nil {
		golog.Fatalf("failed to initialize LLM client: %v", err)
	}

	var d driver.GraphDriver
	if *ingest {
		d, err = driver.NewNeo4jDriver(ctx, cfg.Neo4j.URI, cfg.Neo4j.User, cfg.Neo4j.Password)
		if err != nil {
			golog.Fatalf("failed to connect to Neo4j: %v", err)
		}
		defer d.Close(ctx)
	}

	pipeline := core.NewPipeline(d, client, cfg)

	paths, err := listPDFs(*dir)
	if err != nil {
		golog.Fatalf("%v", err)
	}
	if len(paths) == 0 {
		golog.Fatalf("no PDF files found in %s", *dir)
	}
	golog.Infof("processing %d PDFs from %s", len(paths), *dir)

	sessionID := *session
	if sessionID == "" {
		sessionID = uuid.New().String()
	}

	var all []model.Triple
	for _, path := range paths {
		document := filepath.Base(path)

		text, err := pdf.ExtractText(path)
		if err != nil {
			golog.Errorf("%s: %v", document, err)
			continue
		}
		if pdf.LooksScanned(text) {
			golog.Warnf("%s: no extractable text, skipping (scanned PDF?)", document)
			continue
		}

		if *ingest {
			summary, err := pipeline.ProcessDocument(ctx, sessionID, document, text, printProgress(document))
			if err != nil {
				golog.Errorf("%s: %v", document, err)
			}
			golog.Infof("%s: %s, %d triples written", document, summary.Status, summary.TriplesWritten)
			continue
		}

		all = append(all, extractOnly(ctx, pipeline, document, text)...)
	}

	if *ingest {
		golog.Infof("done, session id: %s", sessionID)
		return
	}

	if err := writeJSON(*out, all); err != nil {
		golog.Fatalf("failed to write %s: %v", *out, err)
	}
	golog.Infof("wrote %d triples to %s", len(all), *out)
}

// extractOnly runs chunking and extraction without touching the store.
func extractOnly(ctx context.Context, p *core.Pipeline, document, text string) []model.Triple {
	domain := p.Extractor.DetectDomain(ctx, text)
	golog.Infof("%s: detected domain %q", document, domain)

	var triples []model.Triple
	chunks := p.Chunker.Split(document, text)
	for _, c := range chunks {
		ext := p.Extractor.ExtractChunk(ctx, c, domain)
		if ext.Unparsed {
			golog.Warnf("%s: chunk %d failed: %s", document, c.Index, ext.Reason)
			continue
		}
		triples = append(triples, ext.Triples...)
		golog.Infof("%s: chunk %d/%d, %d triples", document, c.Index+1, len(chunks), len(ext.Triples))
	}
	return triples
}

func printProgress(document string) core.ProgressFunc {
	return func(p model.Progress) {
		golog.Infof("%s: %d/%d chunks, %d triples so far", document, p.ChunksProcessed, p.ChunksTotal, p.TriplesFound)
	}
}

func listPDFs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(strings.ToLower(e.Name()), ".pdf") {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

func writeJSON(path string, triples []model.Triple) error {
	// A run with no triples still writes a valid JSON array, not "null".
	if triples == nil {
		triples = []model.Triple{}
	}
	data, err := json.MarshalIndent(triples, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// runCheck verifies the LLM responds and Neo4j accepts connections,
// mirroring what the server needs at startup.
func runCheck(ctx context.Context, cfg *config.Config) int {
	failed := 0

	client, err := llm.NewClient(ctx, cfg.LLM)
	if err != nil {
		golog.Errorf("LLM client: %v", err)
		failed++
	} else if _, err := client.Generate(ctx, "Reply with the single word: ok"); err != nil {
		golog.Errorf("LLM generate (%s/%s): %v", cfg.LLM.Provider, cfg.LLM.Model, err)
		failed++
	} else {
		golog.Infof("LLM ok (%s/%s)", cfg.LLM.Provider, cfg.LLM.Model)
	}

	d, err := driver.NewNeo4jDriver(ctx, cfg.Neo4j.URI, cfg.Neo4j.User, cfg.Neo4j.Password)
	if err != nil {
		golog.Errorf("Neo4j: %v", err)
		failed++
	} else {
		golog.Infof("Neo4j ok (%s)", cfg.Neo4j.URI)
		d.Close(ctx)
	}

	if failed > 0 {
		return 1
	}
	return 0
}
