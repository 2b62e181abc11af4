package ui

import (
	"bytes"
	"html/template"
	"net/http"

	"datadash/internal/dashboard"
	"datadash/internal/errors"
	"datadash/internal/session"
	"datadash/ui/middleware"

	"github.com/gin-gonic/gin"
)

// Banner texts
const (
	msgUploaded    = "File Uploaded Successfully!"
	msgUploadFirst = "Please upload a file to begin."
)

// pageData is the root object of index.html
type pageData struct {
	Title    string
	Accept   string
	MaxMB    int64
	FileName string

	Error   string
	Success string
	Info    string
	Help    template.HTML

	View     *dashboard.View
	ChartSVG template.HTML
	ChartURL string
}

func (s *Server) newPage() *pageData {
	return &pageData{
		Title:  "Data Dashboard",
		Accept: acceptAttr(),
		MaxMB:  s.config.MaxBytes / (1024 * 1024),
	}
}

// currentSession returns the caller's session when it holds a table
func (s *Server) currentSession(c *gin.Context) (*session.Session, bool) {
	sess, ok := s.sessions.Get(middleware.SessionID(c))
	if !ok || sess.Table == nil {
		return nil, false
	}
	return sess, true
}

// handleIndex re-runs the whole dashboard for the session's table and the
// widget state in the query string
func (s *Server) handleIndex(c *gin.Context) {
	page := s.newPage()

	sess, ok := s.currentSession(c)
	if !ok {
		page.Info = msgUploadFirst
		page.Help = s.help
		s.renderTemplate(c, http.StatusOK, "index.html", page)
		return
	}

	view, err := s.controller.Build(c.Request.Context(), sess.Table, dashboard.ParseSelection(c.Request.URL.Query()))
	if err != nil {
		s.log.Error("Dashboard build failed for %s: %v", sess.FileName, err)
		page.Error = err.Error()
		s.renderTemplate(c, http.StatusInternalServerError, "index.html", page)
		return
	}

	page.FileName = sess.FileName
	page.Success = msgUploaded
	page.View = view
	page.ChartSVG = template.HTML(view.ChartSVG)
	page.ChartURL = "/chart.svg?" + view.Selection.Query().Encode()
	s.renderTemplate(c, http.StatusOK, "index.html", page)
}

// handleChartSVG serves the current chart alone as an SVG document
func (s *Server) handleChartSVG(c *gin.Context) {
	sess, ok := s.currentSession(c)
	if !ok {
		err := errors.NotFound("uploaded file")
		c.JSON(http.StatusNotFound, gin.H{"error": err.Message, "code": err.Code})
		return
	}

	var buf bytes.Buffer
	sel := dashboard.ParseSelection(c.Request.URL.Query())
	if err := s.controller.RenderChart(&buf, sess.Table, sel); err != nil {
		s.log.Warn("Chart request failed: %v", err)
		c.AbortWithStatusJSON(statusFor(err), gin.H{"error": err.Error(), "code": errors.GetCode(err)})
		return
	}
	c.Data(http.StatusOK, "image/svg+xml", buf.Bytes())
}

// handleHealth reports liveness
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "sessions": s.sessions.Len()})
}

func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.CodeInvalidInput:
		return http.StatusBadRequest
	case errors.CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// redirectHome sends the browser back to a fresh page render
func redirectHome(c *gin.Context) {
	c.Redirect(http.StatusSeeOther, "/")
}
