package ui

import (
	"fmt"
	"html/template"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"gokinetics/app"
	"gokinetics/internal"
	"gokinetics/internal/config"
	"gokinetics/internal/report"
	"gokinetics/ports"

	"github.com/gin-gonic/gin"
)

// Server is the web dashboard: upload traces, inspect per-run fits and the
// Arrhenius summary, download the report.
type Server struct {
	router *gin.Engine
	reader ports.RunReaderPort
	batch  *app.BatchService
	report *report.Generator
	exp    config.ExperimentConfig
	logger *internal.Logger

	// Last analyzed batch, for the results and report pages
	mu          sync.RWMutex
	lastOutcome *app.BatchOutcome
}

// NewServer creates the dashboard server
func NewServer(reader ports.RunReaderPort, batch *app.BatchService, exp config.ExperimentConfig, logger *internal.Logger) *Server {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	s := &Server{
		reader: reader,
		batch:  batch,
		report: report.NewGenerator(),
		exp:    exp,
		logger: logger,
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.SetHTMLTemplate(template.Must(template.New("index").Parse(indexTemplate)))

	router.GET("/", s.handleIndex)
	router.POST("/upload", s.handleUpload)
	router.GET("/results", s.handleResults)
	router.GET("/report.md", s.handleReportDownload)

	s.router = router
	return s
}

// Run starts the dashboard on the given port
func (s *Server) Run(port string) error {
	s.logger.Info("dashboard listening on :%s", port)
	return s.router.Run(":" + port)
}

// Handler exposes the router for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleIndex(c *gin.Context) {
	factor, _ := s.exp.SaltTable().Factor(s.exp.Reagents.AcidAnion)
	c.HTML(http.StatusOK, "index", gin.H{
		"Anion":      s.exp.Reagents.AcidAnion,
		"SaltFactor": factor,
		"Epsilon":    s.exp.Parameters.ExtinctionCoefficient,
		"PathLength": s.exp.Parameters.PathLengthCm,
	})
}

// handleUpload stores the posted trace files in a temp directory, runs the
// batch pipeline over them, and redirects to the results page
func (s *Server) handleUpload(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.String(http.StatusBadRequest, "invalid upload: %v", err)
		return
	}
	files := form.File["traces"]
	if len(files) == 0 {
		c.String(http.StatusBadRequest, "no trace files uploaded")
		return
	}

	tmpDir, err := os.MkdirTemp("", "gokinetics-upload-")
	if err != nil {
		c.String(http.StatusInternalServerError, "upload staging failed: %v", err)
		return
	}
	defer os.RemoveAll(tmpDir)

	for _, file := range files {
		dst := filepath.Join(tmpDir, filepath.Base(file.Filename))
		if err := c.SaveUploadedFile(file, dst); err != nil {
			c.String(http.StatusInternalServerError, "failed to stage %s: %v", file.Filename, err)
			return
		}
	}

	runs, skipped, err := s.reader.ScanDirectory(c.Request.Context(), tmpDir)
	if err != nil {
		c.String(http.StatusInternalServerError, "trace scan failed: %v", err)
		return
	}
	for _, name := range skipped {
		s.logger.Warn("upload: skipped %s", name)
	}
	if len(runs) == 0 {
		c.String(http.StatusBadRequest, "no readable traces in upload (filenames must contain the temperature, e.g. run_298K.csv)")
		return
	}

	outcome, err := s.batch.Process(c.Request.Context(), runs, s.exp)
	if err != nil {
		c.String(http.StatusUnprocessableEntity, "analysis failed: %v", err)
		return
	}

	s.mu.Lock()
	s.lastOutcome = &outcome
	s.mu.Unlock()

	c.Redirect(http.StatusSeeOther, "/results")
}

func (s *Server) handleResults(c *gin.Context) {
	s.mu.RLock()
	outcome := s.lastOutcome
	s.mu.RUnlock()
	if outcome == nil {
		c.Redirect(http.StatusSeeOther, "/")
		return
	}

	factor, _ := s.exp.SaltTable().Factor(s.exp.Reagents.AcidAnion)
	body := s.report.HTML(*outcome, s.exp.Reagents.AcidAnion, factor)
	page := fmt.Sprintf(resultsShell, body)
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(page))
}

func (s *Server) handleReportDownload(c *gin.Context) {
	s.mu.RLock()
	outcome := s.lastOutcome
	s.mu.RUnlock()
	if outcome == nil {
		c.String(http.StatusNotFound, "no analysis has been run yet")
		return
	}

	factor, _ := s.exp.SaltTable().Factor(s.exp.Reagents.AcidAnion)
	md := s.report.Markdown(*outcome, s.exp.Reagents.AcidAnion, factor)
	c.Header("Content-Disposition", `attachment; filename="final_report.md"`)
	c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(md))
}

const indexTemplate = `<!DOCTYPE html>
<html>
<head><title>Kinetic Engine</title></head>
<body>
<h1>Kinetic Engine: Iodination of Acetone</h1>
<p>Acid anion: <strong>{{.Anion}}</strong> (salt factor {{.SaltFactor}}),
&epsilon; = {{.Epsilon}} M&#8315;&sup1;cm&#8315;&sup1;, path = {{.PathLength}} cm</p>
<form action="/upload" method="post" enctype="multipart/form-data">
  <p>Upload trace CSVs (filename must contain the temperature, e.g. <code>run_298K.csv</code>):</p>
  <input type="file" name="traces" multiple accept=".csv,.xlsx">
  <button type="submit">Analyze</button>
</form>
</body>
</html>`

const resultsShell = `<!DOCTYPE html>
<html>
<head><title>Kinetic Engine — Results</title></head>
<body>
%s
<p><a href="/report.md">Download report</a> · <a href="/">New analysis</a></p>
</body>
</html>`
