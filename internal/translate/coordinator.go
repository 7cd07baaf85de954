package translate

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/dgallion1/wikidoc/internal/chunker"
	"github.com/dgallion1/wikidoc/internal/doctree"
)

// Options tunes the coordinator. Zero values fall back to the defaults.
type Options struct {
	MaxWorkers     int           // cap on concurrent chunk translations
	ShortTextLimit int           // texts shorter than this (in characters) skip chunking
	ChunkSize      int           // chunk ceiling in characters
	ChunkTimeout   time.Duration // per-chunk deadline; 0 disables
	BatchTimeout   time.Duration // deadline for a whole fan-out; 0 disables
}

func DefaultOptions() Options {
	return Options{
		MaxWorkers:     12,
		ShortTextLimit: 200,
		ChunkSize:      chunker.DefaultMaxSize,
		ChunkTimeout:   30 * time.Second,
		BatchTimeout:   2 * time.Minute,
	}
}

// Report counts how a translation went. Failed chunks kept their original
// text, so a non-zero Failed means the output is partly untranslated.
type Report struct {
	Chunks int `json:"chunks"`
	Failed int `json:"failed_chunks"`
}

// Add accumulates another report into r.
func (r *Report) Add(o Report) {
	r.Chunks += o.Chunks
	r.Failed += o.Failed
}

// Partial reports whether any chunk fell back to its original text.
func (r Report) Partial() bool { return r.Failed > 0 }

// Coordinator translates long text by chunking it and fanning the chunks
// out to a bounded worker pool. It never fails: any chunk that cannot be
// translated keeps its original text.
type Coordinator struct {
	tr   Translator
	opts Options
	log  *slog.Logger
}

func NewCoordinator(tr Translator, opts Options, log *slog.Logger) *Coordinator {
	def := DefaultOptions()
	if opts.MaxWorkers <= 0 {
		opts.MaxWorkers = def.MaxWorkers
	}
	if opts.ShortTextLimit <= 0 {
		opts.ShortTextLimit = def.ShortTextLimit
	}
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = def.ChunkSize
	}
	return &Coordinator{tr: tr, opts: opts, log: log}
}

// TranslateText returns text rendered in targetLang. An empty sourceLang
// asks the backend to detect it. On total failure the input comes back
// unchanged.
func (c *Coordinator) TranslateText(ctx context.Context, text, targetLang, sourceLang string) string {
	out, _ := c.TranslateDetailed(ctx, text, targetLang, sourceLang)
	return out
}

// TranslateDetailed is TranslateText plus a count of chunks that fell back.
func (c *Coordinator) TranslateDetailed(ctx context.Context, text, targetLang, sourceLang string) (string, Report) {
	if text == "" {
		return "", Report{}
	}

	if utf8.RuneCountInString(text) < c.opts.ShortTextLimit {
		res := c.translateChunk(ctx, doctree.Chunk{Index: 0, Text: text}, targetLang, sourceLang)
		rep := Report{Chunks: 1}
		if !res.OK {
			rep.Failed = 1
		}
		return res.Text, rep
	}

	chunks := chunker.Chunks(text, c.opts.ChunkSize)
	if len(chunks) == 0 {
		return "", Report{}
	}

	results := c.TranslateChunks(ctx, chunks, targetLang, sourceLang)
	parts := make([]string, len(results))
	rep := Report{Chunks: len(results)}
	for i, r := range results {
		parts[i] = r.Text
		if !r.OK {
			rep.Failed++
		}
	}
	return strings.Join(parts, " "), rep
}

type indexedResult struct {
	pos int
	res doctree.ChunkResult
}

// TranslateChunks translates every chunk and returns one result per chunk,
// ordered by chunk index regardless of completion order. Chunks still
// outstanding when the batch deadline passes keep their original text.
func (c *Coordinator) TranslateChunks(ctx context.Context, chunks []doctree.Chunk, targetLang, sourceLang string) []doctree.ChunkResult {
	n := len(chunks)
	if n == 0 {
		return nil
	}

	batchCtx, cancel := ctx, context.CancelFunc(func() {})
	if c.opts.BatchTimeout > 0 {
		batchCtx, cancel = context.WithTimeout(ctx, c.opts.BatchTimeout)
	}
	defer cancel()

	type job struct {
		pos   int
		chunk doctree.Chunk
	}
	jobs := make(chan job)
	results := make(chan indexedResult, n)

	workers := min(c.opts.MaxWorkers, n)
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				results <- indexedResult{pos: j.pos, res: c.translateChunk(batchCtx, j.chunk, targetLang, sourceLang)}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i, ch := range chunks {
			select {
			case jobs <- job{pos: i, chunk: ch}:
			case <-batchCtx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	// Single aggregator: the only writer of out.
	out := make([]doctree.ChunkResult, n)
	done := make([]bool, n)
	for r := range results {
		out[r.pos] = r.res
		done[r.pos] = true
	}

	for i, ch := range chunks {
		if !done[i] {
			c.log.Warn("chunk not translated before batch deadline, keeping original", "chunk", ch.Index)
			out[i] = doctree.ChunkResult{Index: ch.Index, Text: ch.Text, OK: false}
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}

type callOutcome struct {
	text string
	err  error
}

// translateChunk runs one backend call. Errors, panics, empty answers and
// deadlines all turn into a fallback result carrying the original text.
func (c *Coordinator) translateChunk(ctx context.Context, chunk doctree.Chunk, targetLang, sourceLang string) doctree.ChunkResult {
	fallback := doctree.ChunkResult{Index: chunk.Index, Text: chunk.Text, OK: false}

	callCtx, cancel := ctx, context.CancelFunc(func() {})
	if c.opts.ChunkTimeout > 0 {
		callCtx, cancel = context.WithTimeout(ctx, c.opts.ChunkTimeout)
	}
	defer cancel()

	// Buffered so the call goroutine can always finish, even after we stop waiting.
	done := make(chan callOutcome, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				done <- callOutcome{err: fmt.Errorf("translator panic: %v", p)}
			}
		}()
		out, err := c.tr.Translate(callCtx, chunk.Text, targetLang, sourceLang)
		done <- callOutcome{text: out, err: err}
	}()

	var o callOutcome
	select {
	case o = <-done:
	case <-callCtx.Done():
		o = callOutcome{err: callCtx.Err()}
	}

	if o.err == nil && strings.TrimSpace(o.text) == "" && strings.TrimSpace(chunk.Text) != "" {
		o.err = fmt.Errorf("%w: empty translation", ErrMalformedResponse)
	}
	if o.err != nil {
		c.log.Warn("chunk translation failed, keeping original", "chunk", chunk.Index, "error", o.err)
		return fallback
	}
	return doctree.ChunkResult{Index: chunk.Index, Text: o.text, OK: true}
}
