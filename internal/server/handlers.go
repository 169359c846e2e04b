package server

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/kataras/golog"

	"github.com/agenthands/papergraph/internal/core/crew"
	"github.com/agenthands/papergraph/internal/core/model"
	"github.com/agenthands/papergraph/internal/core/viz"
	"github.com/agenthands/papergraph/internal/pdf"
)

// maxUploadBytes caps uploaded PDF size at 50 MB.
const maxUploadBytes = 50 << 20

// sessionID resolves the caller's session from the X-Session-ID header,
// minting a fresh one when absent. The resolved id is echoed back so
// clients can persist it.
func sessionID(c *gin.Context) string {
	id := strings.TrimSpace(c.GetHeader("X-Session-ID"))
	if id == "" {
		id = uuid.New().String()
	}
	c.Header("X-Session-ID", id)
	return id
}

// UploadDocument accepts a PDF upload, extracts its text, and runs the
// extraction pipeline for the caller's session.
func (s *Server) UploadDocument(c *gin.Context) {
	session := sessionID(c)

	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing file upload"})
		return
	}
	if header.Size > maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file exceeds 50MB limit"})
		return
	}
	if !strings.HasSuffix(strings.ToLower(header.Filename), ".pdf") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "only PDF files are supported"})
		return
	}

	f, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("failed to open upload: %v", err)})
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("failed to read upload: %v", err)})
		return
	}

	text, err := pdf.ExtractTextFromBytes(data)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": fmt.Sprintf("failed to parse PDF: %v", err)})
		return
	}
	if pdf.LooksScanned(text) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": "no extractable text; the PDF appears to be scanned images",
		})
		return
	}

	summary, err := s.Pipeline.ProcessDocument(c.Request.Context(), session, header.Filename, text,
		func(p model.Progress) {
			golog.Debugf("%s: %d/%d chunks, %d triples", header.Filename, p.ChunksProcessed, p.ChunksTotal, p.TriplesFound)
		})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "summary": summary, "session_id": session})
		return
	}

	c.JSON(http.StatusOK, gin.H{"summary": summary, "session_id": session})
}

func (s *Server) Stats(c *gin.Context) {
	stats, err := s.Pipeline.Stats(c.Request.Context(), sessionID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (s *Server) Sample(c *gin.Context) {
	limit := intQuery(c, "limit", 100)
	triples, err := s.Pipeline.Sample(c.Request.Context(), sessionID(c), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"triples": triples, "count": len(triples)})
}

func (s *Server) TopEntities(c *gin.Context) {
	limit := intQuery(c, "limit", 10)
	entities, err := s.Pipeline.TopEntities(c.Request.Context(), sessionID(c), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"entities": entities})
}

func (s *Server) Connections(c *gin.Context) {
	entity := c.Param("name")
	depth := intQuery(c, "depth", 2)
	limit := intQuery(c, "limit", 50)

	connections, err := s.Pipeline.Connections(c.Request.Context(), sessionID(c), entity, depth, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"entity": entity, "connections": connections})
}

type queryRequest struct {
	Question string `json:"question" binding:"required"`
}

func (s *Server) Query(c *gin.Context) {
	var req queryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "question is required"})
		return
	}

	answer, err := s.QA.Ask(c.Request.Context(), sessionID(c), req.Question)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, answer)
}

type hypothesisRequest struct {
	Topic  string `json:"topic" binding:"required"`
	Domain string `json:"domain"`
}

// Hypothesis runs the multi-agent research crew against the session's
// graph. This is the slow endpoint: several LLM round trips per task.
func (s *Server) Hypothesis(c *gin.Context) {
	var req hypothesisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "topic is required"})
		return
	}
	if req.Domain == "" {
		req.Domain = "Scientific Research"
	}

	session := sessionID(c)
	tool := crew.NewGraphQueryTool(s.QA, session)
	researchCrew := crew.NewHypothesisCrew(s.Pipeline.LLM, tool, req.Topic, req.Domain)

	hypothesis, err := researchCrew.Kickoff(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"topic": req.Topic, "domain": req.Domain, "hypothesis": hypothesis})
}

func (s *Server) TopicSuggestions(c *gin.Context) {
	max := intQuery(c, "max", 5)
	topics, err := s.Topics.Suggest(c.Request.Context(), sessionID(c), max)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"topics": topics})
}

func (s *Server) Visualization(c *gin.Context) {
	limit := intQuery(c, "limit", 200)
	triples, err := s.Pipeline.Sample(c.Request.Context(), sessionID(c), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	page, err := viz.RenderHTML(triples, "Knowledge Graph")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(page))
}

func (s *Server) ClearSession(c *gin.Context) {
	session := sessionID(c)
	if err := s.Pipeline.ClearSession(c.Request.Context(), session); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"session_id": session, "cleared": true})
}

func intQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
