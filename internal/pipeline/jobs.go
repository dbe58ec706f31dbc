package pipeline

import (
	"crypto/sha256"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/dgallion1/lexgest/internal/extract"
	"github.com/dgallion1/lexgest/internal/lexicon"
)

// JobStatus represents the state of an extraction job.
type JobStatus string

const (
	StatusQueued     JobStatus = "queued"
	StatusReading    JobStatus = "reading"
	StatusExtracting JobStatus = "extracting"
	StatusStoring    JobStatus = "storing"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
	StatusPartial    JobStatus = "partial"
)

// Dump container formats.
const (
	FormatEntry = "entry" // filtered dictionary file
	FormatPage  = "page"  // raw MediaWiki export
)

// Job tracks the state of a single dump extraction.
type Job struct {
	mu sync.Mutex

	ID       string    `json:"job_id"`
	Status   JobStatus `json:"status"`
	Phase    string    `json:"phase"`
	Filename string    `json:"filename"`
	Format   string    `json:"format"`

	Progress Progress `json:"progress"`

	ContentHash string    `json:"content_hash,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Internal: not serialized.
	fileData   []byte
	entries    []lexicon.Entry
	duplicates map[string][]string
	skipped    []extract.Skipped
	errors     []string
}

// Progress tracks processing progress.
type Progress struct {
	RecordsRead     int      `json:"records_read"`
	RecordsFiltered int      `json:"records_filtered"`
	RecordsSkipped  int      `json:"records_skipped"`
	EntriesProduced int      `json:"entries_produced"`
	EntriesStored   int      `json:"entries_stored"`
	Duplicates      int      `json:"duplicates"`
	Errors          []string `json:"errors"`
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

func (s *JobStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// Cleanup removes jobs not updated within the TTL.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		if now.Sub(job.updatedAt()) > s.ttl {
			delete(s.jobs, id)
		}
	}
}

func (j *Job) updatedAt() time.Time {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.UpdatedAt
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.Progress.Errors = j.errors
	j.UpdatedAt = time.Now()
}

// IncrEntriesProduced counts one assembled entry while the run is in progress.
func (j *Job) IncrEntriesProduced() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.EntriesProduced++
	j.UpdatedAt = time.Now()
}

// SetResult records the outcome of the extraction run. Entries are kept for
// retrieval until the job expires.
func (j *Job) SetResult(res *extract.Result) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = res.Entries
	j.duplicates = res.Duplicates
	j.skipped = res.Skipped
	j.Progress.RecordsRead = res.Read
	j.Progress.RecordsFiltered = res.Filtered
	j.Progress.RecordsSkipped = len(res.Skipped)
	j.Progress.EntriesProduced = len(res.Entries)
	j.Progress.Duplicates = len(res.Duplicates)
	j.UpdatedAt = time.Now()
}

// SetEntriesStored records how many entries were written to the store.
func (j *Job) SetEntriesStored(n int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.EntriesStored = n
	j.UpdatedAt = time.Now()
}

// SetFileData sets the raw dump bytes for processing.
func (j *Job) SetFileData(data []byte) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.fileData = data
}

// FileData returns the raw dump bytes.
func (j *Job) FileData() []byte {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.fileData
}

// Entries returns a copy of the produced entries, ordered by rank.
func (j *Job) Entries() []lexicon.Entry {
	j.mu.Lock()
	defer j.mu.Unlock()
	return slices.Clone(j.entries)
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID         string              `json:"job_id"`
	Status     JobStatus           `json:"status"`
	Phase      string              `json:"phase"`
	Filename   string              `json:"filename"`
	Format     string              `json:"format"`
	Progress   Progress            `json:"progress"`
	Duplicates map[string][]string `json:"duplicates"`
	Skipped    []extract.Skipped   `json:"skipped"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	progress := j.Progress
	progress.Errors = slices.Clone(j.Progress.Errors)
	if progress.Errors == nil {
		progress.Errors = []string{}
	}
	dups := maps.Clone(j.duplicates)
	if dups == nil {
		dups = map[string][]string{}
	}
	skipped := slices.Clone(j.skipped)
	if skipped == nil {
		skipped = []extract.Skipped{}
	}
	return JobSnapshot{
		ID:         j.ID,
		Status:     j.Status,
		Phase:      j.Phase,
		Filename:   j.Filename,
		Format:     j.Format,
		Progress:   progress,
		Duplicates: dups,
		Skipped:    skipped,
	}
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
