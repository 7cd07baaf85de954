package pipeline

import (
	"context"

	"github.com/dgallion1/wikidoc/internal/doctree"
	"github.com/dgallion1/wikidoc/internal/translate"
	"github.com/dgallion1/wikidoc/internal/wiki"
)

// TextTranslator is the slice of the coordinator the pipeline needs.
type TextTranslator interface {
	TranslateDetailed(ctx context.Context, text, targetLang, sourceLang string) (string, translate.Report)
}

// SectionHook is called after each section is translated.
type SectionHook func(rep translate.Report)

// TranslateSections translates each section's title and content in order.
// Chunks within a section fan out through tr; sections themselves run one
// after another. The input is not modified.
func TranslateSections(ctx context.Context, tr TextTranslator, sections []doctree.Section, targetLang, sourceLang string, hook SectionHook) ([]doctree.Section, translate.Report) {
	out := make([]doctree.Section, len(sections))
	var total translate.Report
	for i, s := range sections {
		var rep translate.Report
		ts := doctree.Section{Level: s.Level}
		if s.HasTitle() {
			title, r := tr.TranslateDetailed(ctx, s.TitleText(), targetLang, sourceLang)
			rep.Add(r)
			ts.Title = &title
		}
		content, r := tr.TranslateDetailed(ctx, s.Content, targetLang, sourceLang)
		rep.Add(r)
		ts.Content = content

		out[i] = ts
		total.Add(rep)
		if hook != nil {
			hook(rep)
		}
	}
	return out, total
}

// TranslateArticle returns a copy of art rendered in targetLang: title,
// summary and every section. When the article is already in targetLang
// it comes back unchanged with an empty report.
func TranslateArticle(ctx context.Context, tr TextTranslator, art *wiki.Article, targetLang string, hook SectionHook) (*wiki.Article, translate.Report) {
	out := *art
	if targetLang == "" || targetLang == art.Lang {
		out.Sections = append([]doctree.Section(nil), art.Sections...)
		return &out, translate.Report{}
	}

	var total translate.Report
	title, rep := tr.TranslateDetailed(ctx, art.Title, targetLang, art.Lang)
	total.Add(rep)
	summary, rep := tr.TranslateDetailed(ctx, art.Summary, targetLang, art.Lang)
	total.Add(rep)

	sections, rep := TranslateSections(ctx, tr, art.Sections, targetLang, art.Lang, hook)
	total.Add(rep)

	out.Title = title
	out.Summary = summary
	out.Lang = targetLang
	out.Sections = sections
	out.Content = doctree.Wikitext(sections)
	return &out, total
}
