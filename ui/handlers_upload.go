package ui

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"datadash/adapters/excel"
	"datadash/internal/metrics"
	"datadash/internal/session"
	"datadash/ui/middleware"

	"github.com/gin-gonic/gin"
)

const (
	// uploadField is the multipart field carrying the file
	uploadField = "file"
	// formatUnknown labels rejected uploads with a disallowed extension
	formatUnknown = "unknown"
)

// handleUpload parses an uploaded file into the session's table. Any
// failure drops the previous table too, so nothing stale renders below the
// error banner.
func (s *Server) handleUpload(c *gin.Context) {
	id := middleware.SessionID(c)
	limit := s.config.MaxBytes + multipartOverhead
	if c.Request.ContentLength > limit {
		s.rejectUpload(c, id, "", http.StatusRequestEntityTooLarge, s.sizeLimitMessage())
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)

	header, err := c.FormFile(uploadField)
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		s.rejectUpload(c, id, "", http.StatusRequestEntityTooLarge, s.sizeLimitMessage())
		return
	}
	if err != nil {
		s.log.Warn("Upload without a file: %v", err)
		s.rejectUpload(c, id, "", http.StatusBadRequest, "No file uploaded")
		return
	}

	filename := header.Filename
	if !excel.HasAllowedExtension(filename) {
		s.rejectUpload(c, id, formatUnknown, http.StatusBadRequest,
			fmt.Sprintf("%s: only CSV (.csv) and Excel (.xlsx) files are allowed", filename))
		return
	}
	format := string(excel.DetectFormat(filename))
	if header.Size > s.config.MaxBytes {
		s.rejectUpload(c, id, format, http.StatusRequestEntityTooLarge, s.sizeLimitMessage())
		return
	}

	file, err := header.Open()
	if err != nil {
		s.log.Error("Failed to open upload %s: %v", filename, err)
		s.rejectUpload(c, id, format, http.StatusInternalServerError, "Could not read the uploaded file")
		return
	}
	defer file.Close()

	tbl, err := s.reader.Read(filename, file)
	if err != nil {
		s.rejectUpload(c, id, format, statusFor(err), err.Error())
		return
	}

	s.sessions.Put(&session.Session{
		ID:         id,
		FileName:   filename,
		Table:      tbl,
		UploadedAt: time.Now(),
	})
	if s.metrics != nil {
		s.metrics.ObserveUpload(format, metrics.OutcomeAccepted, tbl.NumRows())
	}
	s.log.Info("Session %s loaded %s (%d rows, %d columns)", id, filename, tbl.NumRows(), tbl.NumColumns())

	redirectHome(c)
}

func (s *Server) rejectUpload(c *gin.Context, id, format string, status int, message string) {
	s.sessions.Delete(id)
	if s.metrics != nil && format != "" {
		s.metrics.ObserveUpload(format, metrics.OutcomeRejected, 0)
	}

	page := s.newPage()
	page.Error = message
	s.renderTemplate(c, status, "index.html", page)
}

func (s *Server) sizeLimitMessage() string {
	return fmt.Sprintf("File exceeds the %d MB upload limit", s.config.MaxBytes/(1024*1024))
}

// handleReset forgets the session's file
func (s *Server) handleReset(c *gin.Context) {
	s.sessions.Delete(middleware.SessionID(c))
	redirectHome(c)
}
