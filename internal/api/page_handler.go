package api

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"

	domainerrors "github.com/omsapp/tag-server/internal/errors"
	"github.com/omsapp/tag-server/internal/view"
)

// handleTagPage renders the single-tag HTML page. It needs no token.
func (s *Server) handleTagPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := strconv.ParseInt(r.URL.Query().Get("id"), 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "invalid tag id", http.StatusBadRequest)
		return
	}

	t, err := s.tags.Get(ctx, id)
	if err != nil {
		s.pageError(w, r, err)
		return
	}
	l11n, err := s.tags.ListL11n(ctx, id)
	if err != nil {
		s.pageError(w, r, err)
		return
	}

	lang := s.requestLanguage(ctx)
	var labels map[string]string
	if s.catalog != nil {
		labels = s.catalog.Labels(lang)
	}

	var buf bytes.Buffer
	if err := view.Render(&buf, view.NewTagView(t, l11n, lang, labels)); err != nil {
		s.pageError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		s.logger.Debug("failed to write tag page", "tag_id", id, "error", err)
	}
}

func (s *Server) pageError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, domainerrors.ErrNotFound) {
		http.Error(w, "tag not found", http.StatusNotFound)
		return
	}
	s.logger.Error("failed to render tag page", "path", r.URL.Path, "error", err)
	http.Error(w, "internal server error", http.StatusInternalServerError)
}
