package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/dgallion1/docblocks/internal/convert"
	"github.com/dgallion1/docblocks/internal/frontmatter"
	"github.com/dgallion1/docblocks/internal/importer"
	"github.com/dgallion1/docblocks/internal/source"
	"github.com/dgallion1/docblocks/internal/transform"
	"github.com/go-chi/chi/v5"
)

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	var in convert.Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			jsonError(w, fmt.Sprintf("body exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
			return
		}
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if in.Lang == "" {
		jsonError(w, "lang is required", http.StatusBadRequest)
		return
	}
	pageType, err := transform.ParsePageType(string(in.PageType))
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	in.PageType = pageType

	s.convertAndRespond(w, r, in)
}

func (s *Server) handleArticle(w http.ResponseWriter, r *http.Request) {
	if s.source == nil {
		jsonError(w, "article source unavailable", http.StatusServiceUnavailable)
		return
	}
	lang := chi.URLParam(r, "lang")
	pagePath := source.NormalizePath(chi.URLParam(r, "*"))
	pageType, err := transform.ParsePageType(r.URL.Query().Get("page_type"))
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	article, err := s.source.GetArticle(r.Context(), lang, pagePath)
	if err != nil {
		s.conversionError(w, pagePath, err)
		return
	}
	s.convertAndRespond(w, r, convert.FromArticle(article, lang, pagePath, pageType))
}

// handleImport converts an uploaded legacy document (DOCX, PDF, HTML, ...).
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	// Extra 1MB for form overhead.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	lang := r.FormValue("lang")
	if lang == "" {
		jsonError(w, "lang is required", http.StatusBadRequest)
		return
	}
	pageType, err := transform.ParsePageType(r.FormValue("page_type"))
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	imp, err := importer.ForFile(filename)
	if err != nil {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return
	}

	md, err := imp.Import(bytes.NewReader(data), filename)
	if err != nil {
		jsonError(w, "import failed: "+err.Error(), http.StatusUnprocessableEntity)
		return
	}
	front, body, err := frontmatter.Split(md)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	pagePath := r.FormValue("page_path")
	if pagePath == "" {
		pagePath = strings.TrimSuffix(filename, filepath.Ext(filename))
	}
	s.convertAndRespond(w, r, convert.Input{
		Markdown:    body,
		FrontMatter: front,
		Lang:        lang,
		PageType:    pageType,
		PagePath:    pagePath,
	})
}

func (s *Server) convertAndRespond(w http.ResponseWriter, r *http.Request, in convert.Input) {
	out, err := s.converter.Convert(r.Context(), in)
	if err != nil {
		s.conversionError(w, in.PagePath, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}

// conversionError maps lookup and conversion failures to HTTP statuses.
func (s *Server) conversionError(w http.ResponseWriter, pagePath string, err error) {
	switch {
	case errors.Is(err, source.ErrNotFound):
		jsonError(w, "article not found: "+pagePath, http.StatusNotFound)
	case errors.Is(err, convert.ErrFrontMatter):
		jsonError(w, err.Error(), http.StatusBadRequest)
	default:
		s.log.Error("content not available", "page_path", pagePath, "error", err)
		jsonError(w, "content not available", http.StatusBadGateway)
	}
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Keep only the base name.
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
