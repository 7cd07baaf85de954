package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgallion1/wikidoc/internal/parser"
	"github.com/dgallion1/wikidoc/internal/render"
	"github.com/dgallion1/wikidoc/internal/translate"
)

// Worker processes a single translation job.
type Worker struct {
	tr      TextTranslator
	wiki    ArticleFetcher
	parsers parser.Options
	log     *slog.Logger
}

func NewWorker(tr TextTranslator, wc ArticleFetcher, parsers parser.Options, log *slog.Logger) *Worker {
	return &Worker{tr: tr, wiki: wc, parsers: parsers, log: log}
}

// Process runs a job to a terminal status.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "kind", job.Kind, "target_lang", job.TargetLang)

	var (
		res *Result
		err error
	)
	switch job.Kind {
	case KindArticle:
		res, err = w.article(ctx, job, log)
	case KindDocument:
		res, err = w.document(ctx, job, log)
	default:
		err = fmt.Errorf("unknown job kind %q", job.Kind)
	}
	if err != nil {
		log.Error("job failed", "phase", job.Snapshot().Phase, "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, job.Snapshot().Phase)
		return
	}

	// Phase 3: Render
	job.SetStatus(StatusRendering, "rendering")
	var buf bytes.Buffer
	err = render.DOCX(&buf, render.Document{
		Title:    res.Title,
		Lang:     res.Lang,
		Source:   sourceName(job.Kind),
		URL:      res.URL,
		Summary:  res.Summary,
		Sections: res.Sections,
	})
	if err != nil {
		log.Error("render failed", "error", err)
		job.AddError(fmt.Sprintf("render: %s", err))
		job.SetStatus(StatusFailed, "rendering")
		return
	}
	job.SetResult(res, buf.Bytes())

	if res.Report.Partial() {
		log.Warn("job finished with untranslated chunks", "failed_chunks", res.Report.Failed, "chunks", res.Report.Chunks)
		job.AddError(fmt.Sprintf("%d of %d chunks kept their original text", res.Report.Failed, res.Report.Chunks))
		job.SetStatus(StatusPartial, "done")
		return
	}
	log.Info("job completed", "chunks", res.Report.Chunks, "docx_bytes", buf.Len())
	job.SetStatus(StatusCompleted, "done")
}

func (w *Worker) article(ctx context.Context, job *Job, log *slog.Logger) (*Result, error) {
	// Phase 1: Fetch
	job.SetStatus(StatusFetching, "fetching")
	art, err := w.wiki.Article(ctx, job.Title, job.SourceLang)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	job.SetTotalSections(len(art.Sections))
	log.Info("fetched article", "title", art.Title, "sections", len(art.Sections))

	// Phase 2: Translate
	job.SetStatus(StatusTranslating, "translating")
	var sections translate.Report
	out, rep := TranslateArticle(ctx, w.tr, art, job.TargetLang, func(r translate.Report) {
		sections.Add(r)
		job.SectionDone(r)
	})
	if job.TargetLang == art.Lang {
		for range art.Sections {
			job.SectionDone(translate.Report{})
		}
	}
	// Title and summary.
	job.AddReport(translate.Report{Chunks: rep.Chunks - sections.Chunks, Failed: rep.Failed - sections.Failed})
	return &Result{
		Title:      out.Title,
		Lang:       out.Lang,
		SourceLang: art.Lang,
		URL:        art.URL,
		Summary:    out.Summary,
		Sections:   out.Sections,
		Report:     rep,
	}, nil
}

func (w *Worker) document(ctx context.Context, job *Job, log *slog.Logger) (*Result, error) {
	// Phase 1: Parse
	job.SetStatus(StatusParsing, "parsing")
	p, err := parser.ForFile(job.Filename, w.parsers)
	if err != nil {
		return nil, err
	}
	doc, err := p.Parse(bytes.NewReader(job.FileData()), job.Filename)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	if len(doc.Sections) == 0 {
		return nil, errors.New("no translatable content")
	}
	job.SetTitle(doc.Title)
	job.SetTotalSections(len(doc.Sections))
	log.Info("parsed document", "title", doc.Title, "sections", len(doc.Sections))

	// Phase 2: Translate
	job.SetStatus(StatusTranslating, "translating")
	title, rep := w.tr.TranslateDetailed(ctx, doc.Title, job.TargetLang, job.SourceLang)
	job.AddReport(rep)
	sections, secRep := TranslateSections(ctx, w.tr, doc.Sections, job.TargetLang, job.SourceLang, job.SectionDone)
	rep.Add(secRep)

	return &Result{
		Title:      title,
		Lang:       job.TargetLang,
		SourceLang: job.SourceLang,
		Sections:   sections,
		Report:     rep,
	}, nil
}

func sourceName(kind JobKind) string {
	if kind == KindArticle {
		return "Wikipedia"
	}
	return ""
}
