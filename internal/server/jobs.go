package server

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/FocuswithJustin/Ouroboros/core/book"
)

// JobStatus represents the current state of a generation job.
type JobStatus string

const (
	JobStatusPending  JobStatus = "pending"
	JobStatusRunning  JobStatus = "running"
	JobStatusComplete JobStatus = "complete"
	JobStatusFailed   JobStatus = "failed"
)

// JobResult summarizes a finished book.
type JobResult struct {
	BookID    string `json:"book_id"`
	WordCount int    `json:"word_count"`
	Sections  int    `json:"sections"`
}

// Job represents one asynchronous book generation.
type Job struct {
	ID          string     `json:"id"`
	Status      JobStatus  `json:"status"`
	WordTarget  int        `json:"word_target"`
	Seed        int64      `json:"seed,omitempty"`
	TotalWords  int        `json:"total_words"`
	Result      *JobResult `json:"result,omitempty"`
	Error       string     `json:"error,omitempty"`
	CreatedAt   string     `json:"created_at"`
	UpdatedAt   string     `json:"updated_at"`
	CompletedAt string     `json:"completed_at,omitempty"`

	book *book.Book
}

// JobStore manages generation jobs in memory.
type JobStore struct {
	jobs map[string]*Job
	mu   sync.RWMutex
}

// NewJobStore creates a new job store.
func NewJobStore() *JobStore {
	return &JobStore{jobs: make(map[string]*Job)}
}

// Create registers a new pending job and returns it.
func (s *JobStore) Create(wordTarget int, seed int64) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC().Format(time.RFC3339)
	job := &Job{
		ID:         uuid.New().String(),
		Status:     JobStatusPending,
		WordTarget: wordTarget,
		Seed:       seed,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	s.jobs[job.ID] = job
	return job
}

// Get retrieves a snapshot of a job by ID.
func (s *JobStore) Get(id string) (Job, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, exists := s.jobs[id]
	if !exists {
		return Job{}, false
	}
	return *job, true
}

// Text returns the finished book text of a completed job.
func (s *JobStore) Text(id string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, exists := s.jobs[id]
	if !exists || job.book == nil {
		return "", false
	}
	return job.book.Text(), true
}

// SetRunning marks a job as running.
func (s *JobStore) SetRunning(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if job, ok := s.jobs[id]; ok {
		job.Status = JobStatusRunning
		job.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	}
}

// SetProgress records the running word total of a job.
func (s *JobStore) SetProgress(id string, totalWords int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if job, ok := s.jobs[id]; ok {
		job.TotalWords = totalWords
		job.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	}
}

// SetComplete records a finished book on a job.
func (s *JobStore) SetComplete(id string, b *book.Book) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return
	}
	now := time.Now().UTC().Format(time.RFC3339)
	job.Status = JobStatusComplete
	job.TotalWords = b.WordCount
	job.Result = &JobResult{
		BookID:    b.ID,
		WordCount: b.WordCount,
		Sections:  len(b.Sections),
	}
	job.book = b
	job.UpdatedAt = now
	job.CompletedAt = now
}

// SetFailed marks a job as failed with an error message.
func (s *JobStore) SetFailed(id string, errMsg string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return
	}
	now := time.Now().UTC().Format(time.RFC3339)
	job.Status = JobStatusFailed
	job.Error = errMsg
	job.UpdatedAt = now
	job.CompletedAt = now
}

// List returns snapshots of all jobs.
func (s *JobStore) List() []Job {
	s.mu.RLock()
	defer s.mu.RUnlock()

	jobs := make([]Job, 0, len(s.jobs))
	for _, job := range s.jobs {
		jobs = append(jobs, *job)
	}
	return jobs
}
