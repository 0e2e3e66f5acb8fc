package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/dgallion1/docblocks/internal/pipeline"
	"github.com/dgallion1/docblocks/internal/transform"
	"github.com/go-chi/chi/v5"
)

type batchRequest struct {
	Lang     string   `json:"lang"`
	PageType string   `json:"page_type"`
	Paths    []string `json:"paths"`
}

func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	if s.orchestrator == nil {
		jsonError(w, "batch conversion unavailable", http.StatusServiceUnavailable)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Lang == "" {
		jsonError(w, "lang is required", http.StatusBadRequest)
		return
	}
	if len(req.Paths) == 0 {
		jsonError(w, "at least one path is required", http.StatusBadRequest)
		return
	}
	pageType, err := transform.ParsePageType(req.PageType)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	job := pipeline.NewJob(req.Lang, pageType, req.Paths)
	if err := s.orchestrator.Submit(job); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	snap := job.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]any{
		"job_id":   snap.ID,
		"status":   snap.Status,
		"pages":    len(req.Paths),
		"poll_url": fmt.Sprintf("/api/batch/%s/status", snap.ID),
	})
}

func (s *Server) handleBatchStatus(w http.ResponseWriter, r *http.Request) {
	if s.orchestrator == nil {
		jsonError(w, "batch conversion unavailable", http.StatusServiceUnavailable)
		return
	}
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(job.Snapshot())
}
