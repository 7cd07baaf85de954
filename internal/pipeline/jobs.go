package pipeline

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dgallion1/wikidoc/internal/doctree"
	"github.com/dgallion1/wikidoc/internal/translate"
)

// JobStatus represents the state of a translation job.
type JobStatus string

const (
	StatusQueued      JobStatus = "queued"
	StatusFetching    JobStatus = "fetching"
	StatusParsing     JobStatus = "parsing"
	StatusTranslating JobStatus = "translating"
	StatusRendering   JobStatus = "rendering"
	StatusCompleted   JobStatus = "completed"
	StatusPartial     JobStatus = "partial"
	StatusFailed      JobStatus = "failed"
)

// Done reports whether the job has reached a terminal state.
func (s JobStatus) Done() bool {
	return s == StatusCompleted || s == StatusPartial || s == StatusFailed
}

// JobKind selects what a job translates.
type JobKind string

const (
	KindArticle  JobKind = "article"
	KindDocument JobKind = "document"
)

// Job tracks the state of a single article or document translation.
type Job struct {
	mu sync.Mutex

	ID   string  `json:"job_id"`
	Kind JobKind `json:"kind"`

	Status JobStatus `json:"status"`
	Phase  string    `json:"phase"`

	// Article jobs: Title in SourceLang. Document jobs: Filename, with
	// SourceLang optional.
	Title      string `json:"title"`
	Filename   string `json:"filename,omitempty"`
	SourceLang string `json:"source_lang"`
	TargetLang string `json:"target_lang"`

	Progress Progress `json:"progress"`

	ContentHash string    `json:"content_hash,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Internal: not serialized.
	fileData []byte
	result   *Result
	docx     []byte
	errors   []string
}

// Progress tracks processing progress.
type Progress struct {
	TotalSections int      `json:"total_sections"`
	SectionsDone  int      `json:"sections_done"`
	ChunksTotal   int      `json:"chunks_total"`
	ChunksFailed  int      `json:"chunks_failed"`
	Errors        []string `json:"errors"`
}

// Result is the translated output of a finished job.
type Result struct {
	Title      string            `json:"title"`
	Lang       string            `json:"lang"`
	SourceLang string            `json:"source_lang"`
	URL        string            `json:"url,omitempty"`
	Summary    string            `json:"summary,omitempty"`
	Sections   []doctree.Section `json:"sections"`
	Report     translate.Report  `json:"report"`
}

// NewArticleJob creates a queued job that fetches and translates an
// encyclopedia article.
func NewArticleJob(title, sourceLang, targetLang string) *Job {
	return newJob(KindArticle, func(j *Job) {
		j.Title = title
		j.SourceLang = sourceLang
		j.TargetLang = targetLang
	})
}

// NewDocumentJob creates a queued job for an uploaded file.
func NewDocumentJob(filename string, data []byte, sourceLang, targetLang string) *Job {
	return newJob(KindDocument, func(j *Job) {
		j.Filename = filename
		j.SourceLang = sourceLang
		j.TargetLang = targetLang
		j.fileData = data
		j.ContentHash = ContentHashHex(data)
	})
}

func newJob(kind JobKind, fill func(*Job)) *Job {
	now := time.Now()
	j := &Job{
		ID:        uuid.New().String(),
		Kind:      kind,
		Status:    StatusQueued,
		Phase:     "queued",
		CreatedAt: now,
		UpdatedAt: now,
	}
	fill(j)
	return j
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

// SetTitle records the document title once it is known.
func (j *Job) SetTitle(title string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Title = title
	j.UpdatedAt = time.Now()
}

// SetTotalSections records how many sections will be translated.
func (j *Job) SetTotalSections(n int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.TotalSections = n
	j.UpdatedAt = time.Now()
}

// SectionDone counts one translated section and its chunk outcome.
func (j *Job) SectionDone(rep translate.Report) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.SectionsDone++
	j.addReport(rep)
}

// AddReport folds chunk counts from a translation outside the section
// loop, such as the title or summary.
func (j *Job) AddReport(rep translate.Report) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.addReport(rep)
}

func (j *Job) addReport(rep translate.Report) {
	j.Progress.ChunksTotal += rep.Chunks
	j.Progress.ChunksFailed += rep.Failed
	j.UpdatedAt = time.Now()
}

// FileData returns the raw file bytes.
func (j *Job) FileData() []byte {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.fileData
}

// SetResult stores the translated output and its rendered file, and
// releases the upload.
func (j *Job) SetResult(res *Result, docx []byte) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.result = res
	j.docx = docx
	j.fileData = nil
	j.UpdatedAt = time.Now()
}

// Result returns the translated output, or nil while the job is running.
func (j *Job) Result() (*Result, []byte) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.result, j.docx
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID          string    `json:"job_id"`
	Kind        JobKind   `json:"kind"`
	Status      JobStatus `json:"status"`
	Phase       string    `json:"phase"`
	Title       string    `json:"title"`
	Filename    string    `json:"filename,omitempty"`
	SourceLang  string    `json:"source_lang"`
	TargetLang  string    `json:"target_lang"`
	Progress    Progress  `json:"progress"`
	ContentHash string    `json:"content_hash,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := append([]string{}, j.Progress.Errors...)
	p := j.Progress
	p.Errors = errs
	return JobSnapshot{
		ID:          j.ID,
		Kind:        j.Kind,
		Status:      j.Status,
		Phase:       j.Phase,
		Title:       j.Title,
		Filename:    j.Filename,
		SourceLang:  j.SourceLang,
		TargetLang:  j.TargetLang,
		Progress:    p,
		ContentHash: j.ContentHash,
		CreatedAt:   j.CreatedAt,
		UpdatedAt:   j.UpdatedAt,
	}
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
