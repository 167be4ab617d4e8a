package api

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	pinerrors "github.com/fabiodalez-dev/Pinakes-sub009/internal/errors"
	"github.com/fabiodalez-dev/Pinakes-sub009/internal/exporter"
	"github.com/fabiodalez-dev/Pinakes-sub009/internal/importer"
	"github.com/fabiodalez-dev/Pinakes-sub009/internal/librarything"
	"github.com/fabiodalez-dev/Pinakes-sub009/internal/progress"
)

// ImportResponse is the body of a finished import.
type ImportResponse struct {
	importer.Summary
	Session string `json:"session"`
}

func (s *Server) handleHealthCheck(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"}, s.logger)
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	session := r.Header.Get(SessionHeader)
	if session == "" {
		session = uuid.NewString()
	}
	w.Header().Set(SessionHeader, session)

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing upload field \"file\"", Session: session}, s.logger)
		return
	}
	defer func() { _ = file.Close() }()

	opts := s.importOpts
	if v := r.FormValue("enrich"); v == "1" || v == "true" {
		opts.Enrich = true
	}
	opts.Reporter = progress.Multi(s.tracker.Reporter(session), progress.NewLog(s.logger, 10))

	s.logger.Info("Starting LibraryThing import", "file", header.Filename, "size", header.Size, "session", session)

	res, err := importer.New(s.gw, opts).Import(r.Context(), file)
	if err != nil {
		status := http.StatusInternalServerError
		if pinerrors.IsFormatError(err) {
			status = http.StatusBadRequest
		}
		s.logger.Warn("Import failed", "session", session, "error", err)
		writeJSON(w, status, errorResponse{Error: err.Error(), Session: session}, s.logger)
		return
	}

	writeJSON(w, http.StatusOK, ImportResponse{
		Summary: res.Summary(MaxErrorsInSummary),
		Session: session,
	}, s.logger)
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	session := r.URL.Query().Get("session")
	if session == "" {
		session = r.Header.Get(SessionHeader)
	}
	if session == "" {
		writeError(w, http.StatusBadRequest, "missing session", s.logger)
		return
	}

	snap, ok := s.tracker.Get(session)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown session", s.logger)
		return
	}
	writeJSON(w, http.StatusOK, snap, s.logger)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	// Buffered so a failure can still be reported as a proper error
	var buf bytes.Buffer
	count, err := exporter.New(s.gw).Export(r.Context(), &buf)
	if err != nil {
		s.logger.Error("Export failed", "error", err)
		writeError(w, http.StatusInternalServerError, "export failed", s.logger)
		return
	}

	filename := librarything.ExportFilename(s.now())
	w.Header().Set("Content-Type", "text/tab-separated-values; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		s.logger.Warn("Failed to send export", "error", err)
		return
	}
	s.logger.Info("Served LibraryThing export", "books", count, "filename", filename)
}
