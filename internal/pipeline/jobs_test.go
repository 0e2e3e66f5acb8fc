package pipeline

import (
	"testing"
	"time"

	"github.com/dgallion1/docblocks/internal/transform"
)

func TestContentHashHex_Consistency(t *testing.T) {
	data := []byte("hello world")
	h1 := ContentHashHex(data)
	h2 := ContentHashHex(data)
	if h1 != h2 {
		t.Errorf("expected identical hashes, got %q and %q", h1, h2)
	}
	// SHA-256 of "hello world" is well-known.
	want := "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"
	if h1 != want {
		t.Errorf("expected hash %q, got %q", want, h1)
	}
}

func TestNewJob(t *testing.T) {
	job := NewJob("en", transform.Article, []string{"/a", "/b"})
	if job.ID == "" {
		t.Fatal("expected a job id")
	}
	if other := NewJob("en", transform.Article, nil); other.ID == job.ID {
		t.Errorf("expected unique ids, got %q twice", job.ID)
	}
	if job.Status != StatusQueued {
		t.Errorf("expected status %q, got %q", StatusQueued, job.Status)
	}
	if job.Progress.TotalPages != 2 {
		t.Errorf("expected 2 total pages, got %d", job.Progress.TotalPages)
	}
}

func TestJob_StateTransitions(t *testing.T) {
	job := &Job{
		ID:        "test-1",
		Status:    StatusQueued,
		Phase:     "queued",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	transitions := []struct {
		status JobStatus
		phase  string
	}{
		{StatusConverting, "converting"},
		{StatusCompleted, "done"},
	}

	for _, tr := range transitions {
		before := job.UpdatedAt
		// Small sleep to ensure time difference is detectable.
		time.Sleep(time.Millisecond)
		job.SetStatus(tr.status, tr.phase)

		if job.Status != tr.status {
			t.Errorf("expected status %q, got %q", tr.status, job.Status)
		}
		if job.Phase != tr.phase {
			t.Errorf("expected phase %q, got %q", tr.phase, job.Phase)
		}
		if !job.UpdatedAt.After(before) {
			t.Errorf("expected UpdatedAt to advance after SetStatus(%q)", tr.status)
		}
	}
}

func TestJob_AddErrorAndPage(t *testing.T) {
	job := &Job{ID: "err-test", UpdatedAt: time.Now()}
	job.AddError("/a: not found")
	job.AddPage(Page{PagePath: "/b", Fragments: 2})
	job.AddPage(Page{PagePath: "/c", Fragments: 1})

	snap := job.Snapshot()
	if len(snap.Progress.Errors) != 1 || snap.Progress.Errors[0] != "/a: not found" {
		t.Fatalf("unexpected errors %v", snap.Progress.Errors)
	}
	if snap.Progress.PagesFailed != 1 || snap.Progress.PagesConverted != 2 {
		t.Errorf("expected 1 failed and 2 converted, got %+v", snap.Progress)
	}
	if snap.Progress.Fragments != 3 {
		t.Errorf("expected 3 fragments, got %d", snap.Progress.Fragments)
	}
	if len(snap.Pages) != 2 {
		t.Errorf("expected 2 pages, got %d", len(snap.Pages))
	}
}

func TestJob_SnapshotEmptyErrors(t *testing.T) {
	job := &Job{ID: "snap-test", Status: StatusQueued, UpdatedAt: time.Now()}
	snap := job.Snapshot()
	if snap.Progress.Errors == nil {
		t.Error("expected non-nil errors slice in snapshot")
	}
	if snap.Pages == nil {
		t.Error("expected non-nil pages slice in snapshot")
	}
}

func TestJobStore_PutGet(t *testing.T) {
	store := NewJobStore(time.Hour)
	job := &Job{ID: "store-1", UpdatedAt: time.Now()}
	store.Put(job)

	if got := store.Get("store-1"); got != job {
		t.Errorf("expected stored job, got %v", got)
	}
	if got := store.Get("missing"); got != nil {
		t.Errorf("expected nil for missing job, got %v", got)
	}
}

func TestJobStore_Cleanup(t *testing.T) {
	store := NewJobStore(time.Minute)
	store.Put(&Job{ID: "old", UpdatedAt: time.Now().Add(-2 * time.Minute)})
	store.Put(&Job{ID: "new", UpdatedAt: time.Now()})

	store.Cleanup()

	if store.Get("old") != nil {
		t.Error("expected expired job to be removed")
	}
	if store.Get("new") == nil {
		t.Error("expected fresh job to survive")
	}
	if store.Len() != 1 {
		t.Errorf("expected 1 job, got %d", store.Len())
	}
}

func TestBackoff_Bounds(t *testing.T) {
	for attempt := range 8 {
		d := Backoff(attempt)
		base := time.Duration(1<<uint(attempt)) * time.Second
		if base > 30*time.Second {
			base = 30 * time.Second
		}
		if d < base || d >= base+base/2 {
			t.Errorf("attempt %d: backoff %v outside [%v, %v)", attempt, d, base, base+base/2)
		}
	}
}

func TestPagePath(t *testing.T) {
	cases := map[string]string{
		"/docs/guide": "/pages/docs/guide.html",
		"docs/guide/": "/pages/docs/guide.html",
		"/":           "/pages/index.html",
	}
	for in, want := range cases {
		if got := PagePath(in); got != want {
			t.Errorf("PagePath(%q) = %q, want %q", in, got, want)
		}
	}
}
