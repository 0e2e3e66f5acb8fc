package pipeline

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dgallion1/docblocks/internal/transform"
)

// JobStatus represents the state of a batch conversion job.
type JobStatus string

const (
	StatusQueued     JobStatus = "queued"
	StatusConverting JobStatus = "converting"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
	StatusPartial    JobStatus = "partial"
)

// Job tracks the conversion of a set of pages of one language.
type Job struct {
	mu sync.Mutex

	ID       string             `json:"job_id"`
	Lang     string             `json:"lang"`
	PageType transform.PageType `json:"page_type"`
	Paths    []string           `json:"paths"`

	Status JobStatus `json:"status"`
	Phase  string    `json:"phase"`

	Progress Progress `json:"progress"`
	Pages    []Page   `json:"pages"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	errors []string
}

// Progress tracks processing progress.
type Progress struct {
	TotalPages     int      `json:"total_pages"`
	PagesConverted int      `json:"pages_converted"`
	PagesFailed    int      `json:"pages_failed"`
	Fragments      int      `json:"fragments"`
	Errors         []string `json:"errors"`
}

// Page is the result of one converted page.
type Page struct {
	PagePath    string `json:"page_path"`
	URL         string `json:"url"`
	ContentHash string `json:"content_hash"`
	Fragments   int    `json:"fragments"`
}

// NewJob returns a queued job with a fresh id.
func NewJob(lang string, pageType transform.PageType, paths []string) *Job {
	now := time.Now()
	return &Job{
		ID:        uuid.NewString(),
		Lang:      lang,
		PageType:  pageType,
		Paths:     paths,
		Status:    StatusQueued,
		Phase:     "queued",
		Progress:  Progress{TotalPages: len(paths)},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Len returns the number of tracked jobs.
func (s *JobStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		job.mu.Lock()
		updated := job.UpdatedAt
		job.mu.Unlock()
		if now.Sub(updated) > s.ttl {
			delete(s.jobs, id)
		}
	}
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records a page failure.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.Progress.Errors = j.errors
	j.Progress.PagesFailed++
	j.UpdatedAt = time.Now()
}

// AddPage records a converted page.
func (j *Job) AddPage(p Page) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Pages = append(j.Pages, p)
	j.Progress.PagesConverted++
	j.Progress.Fragments += p.Fragments
	j.UpdatedAt = time.Now()
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID       string             `json:"job_id"`
	Lang     string             `json:"lang"`
	PageType transform.PageType `json:"page_type"`
	Status   JobStatus          `json:"status"`
	Phase    string             `json:"phase"`
	Progress Progress           `json:"progress"`
	Pages    []Page             `json:"pages"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := append([]string{}, j.Progress.Errors...)
	pages := append([]Page{}, j.Pages...)
	progress := j.Progress
	progress.Errors = errs
	return JobSnapshot{
		ID:       j.ID,
		Lang:     j.Lang,
		PageType: j.PageType,
		Status:   j.Status,
		Phase:    j.Phase,
		Progress: progress,
		Pages:    pages,
	}
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
