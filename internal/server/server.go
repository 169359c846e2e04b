package server

import (
	"context"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kataras/golog"

	"github.com/agenthands/papergraph/internal/config"
	"github.com/agenthands/papergraph/internal/core"
	"github.com/agenthands/papergraph/internal/core/qa"
	"github.com/agenthands/papergraph/internal/core/topic"
	"github.com/agenthands/papergraph/internal/driver"
	"github.com/agenthands/papergraph/internal/llm"
)

// staleSessionAge is how long an abandoned session's data survives
// before startup cleanup removes it.
const staleSessionAge = 24 * time.Hour

type Server struct {
	Pipeline *core.Pipeline
	QA       *qa.Chain
	Topics   *topic.Suggester
}

func NewServer(ctx context.Context) *Server {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config/config.toml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		golog.Warnf("could not load %s: %v, using defaults", cfgPath, err)
		cfg = config.Default()
	}
	cfg.ApplyEnv()

	if err := cfg.Validate(); err != nil {
		golog.Fatalf("invalid configuration: %v", err)
	}

	d, err := driver.NewNeo4jDriver(ctx, cfg.Neo4j.URI, cfg.Neo4j.User, cfg.Neo4j.Password)
	if err != nil {
		golog.Fatalf("failed to connect to Neo4j: %v", err)
	}

	llmClient, err := llm.NewClient(ctx, cfg.LLM)
	if err != nil {
		golog.Fatalf("failed to initialize LLM client: %v", err)
	}

	pipeline := core.NewPipeline(d, llmClient, cfg)
	if err := pipeline.BuildIndices(ctx); err != nil {
		golog.Warnf("failed to build indices: %v", err)
	}

	if deleted, err := pipeline.CleanupOlderThan(ctx, staleSessionAge); err != nil {
		golog.Warnf("startup cleanup failed: %v", err)
	} else if deleted > 0 {
		golog.Infof("startup cleanup removed %d stale nodes", deleted)
	}

	return &Server{
		Pipeline: pipeline,
		QA:       qa.NewChain(d, llmClient),
		Topics:   topic.NewSuggester(pipeline, llmClient),
	}
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.Default()

	r.POST("/documents", s.UploadDocument)
	r.GET("/stats", s.Stats)
	r.GET("/sample", s.Sample)
	r.GET("/entities", s.TopEntities)
	r.GET("/entities/:name/connections", s.Connections)
	r.POST("/query", s.Query)
	r.POST("/hypotheses", s.Hypothesis)
	r.GET("/topics", s.TopicSuggestions)
	r.GET("/visualization", s.Visualization)
	r.DELETE("/session", s.ClearSession)

	return r
}
