package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dgallion1/wikidoc/internal/doctree"
	"github.com/dgallion1/wikidoc/internal/langs"
	"github.com/dgallion1/wikidoc/internal/parser"
	"github.com/dgallion1/wikidoc/internal/pipeline"
	"github.com/dgallion1/wikidoc/internal/render"
	"github.com/dgallion1/wikidoc/internal/translate"
	"github.com/dgallion1/wikidoc/internal/wiki"
)

func newSectionsCommand(flags *Flags, app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sections FILE",
		Short: "Split wikitext into heading-delimited sections",
		Long:  `Reads wikitext from FILE (or stdin when FILE is "-") and lists its sections.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			sections := parser.SplitSections(content)
			if flags.JSON {
				return writeJSON(app.Out, sections)
			}
			for _, s := range sections {
				title := "(lead)"
				if s.HasTitle() {
					title = s.TitleText()
				}
				fmt.Fprintf(app.Out, "%d\t%s\t%d chars\n", s.Level, title, utf8.RuneCountInString(s.Content))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&flags.JSON, "json", false, "Print sections as JSON")
	return cmd
}

func newTranslateCommand(flags *Flags, app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "translate FILE",
		Short: "Translate a text file",
		Long:  `Translates FILE (or stdin when FILE is "-") and prints the result.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.To == "" {
				return errors.New("--to is required")
			}
			text, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}

			log := app.logger(flags.Verbose)
			tr, release, err := app.Translator(cmd.Context(), loadConfig(), log)
			if err != nil {
				return fmt.Errorf("translator: %w", err)
			}
			defer release()

			out, rep := tr.TranslateDetailed(cmd.Context(), text, strings.ToLower(flags.To), strings.ToLower(flags.From))
			fmt.Fprintln(app.Out, out)
			if rep.Partial() {
				fmt.Fprintf(app.Err, "warning: %d of %d chunks were left untranslated\n", rep.Failed, rep.Chunks)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&flags.To, "to", "t", "", "Target language code")
	cmd.Flags().StringVarP(&flags.From, "from", "f", "", "Source language code (detected when empty)")
	return cmd
}

func newSearchCommand(flags *Flags, app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search QUERY",
		Short: "Search Wikipedia",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lang := viper.GetString("lang")
			results, err := app.Wiki(loadConfig()).Search(cmd.Context(), strings.Join(args, " "), lang)
			if err != nil {
				return err
			}
			if flags.JSON {
				return writeJSON(app.Out, results)
			}
			if len(results) == 0 {
				fmt.Fprintln(app.Err, "no results")
				return nil
			}
			for _, r := range results {
				fmt.Fprintf(app.Out, "%s\t%s\n", r.Title, r.Snippet)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&flags.JSON, "json", false, "Print results as JSON")
	return cmd
}

func newArticleCommand(flags *Flags, app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "article TITLE",
		Short: "Fetch an article, optionally translated and exported to DOCX",
		Long: `Fetches TITLE from the --lang edition. With --to the article is
translated; with --out it is written as a Word document instead of printed.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := loadConfig()
			lang := viper.GetString("lang")
			to := strings.ToLower(flags.To)

			title := strings.Join(args, " ")
			wc := app.Wiki(cfg)

			if flags.Native && to != "" {
				art, err := wc.ArticleIn(ctx, title, lang, to)
				if err != nil {
					return err
				}
				return emitArticle(flags, app, art)
			}

			art, err := wc.Article(ctx, title, lang)
			if err != nil {
				return err
			}

			if to != "" && to != art.Lang {
				log := app.logger(flags.Verbose)
				tr, release, err := app.Translator(ctx, cfg, log)
				if err != nil {
					return fmt.Errorf("translator: %w", err)
				}
				defer release()

				var rep translate.Report
				art, rep = pipeline.TranslateArticle(ctx, tr, art, to, nil)
				if rep.Partial() {
					fmt.Fprintf(app.Err, "warning: %d of %d chunks were left untranslated\n", rep.Failed, rep.Chunks)
				}
			}
			return emitArticle(flags, app, art)
		},
	}
	cmd.Flags().StringVarP(&flags.To, "to", "t", "", "Translate into this language")
	cmd.Flags().BoolVar(&flags.Native, "native", false, "With --to, fetch that edition's own article instead of translating")
	cmd.Flags().StringVarP(&flags.Out, "out", "o", "", "Write a .docx file instead of printing")
	cmd.Flags().BoolVar(&flags.JSON, "json", false, "Print the article as JSON")
	return cmd
}

func emitArticle(flags *Flags, app *App, art *wiki.Article) error {
	if flags.Out != "" {
		return writeArticleDOCX(flags.Out, art, app.Err)
	}
	if flags.JSON {
		return writeJSON(app.Out, art)
	}
	printArticle(app.Out, art)
	return nil
}

func printArticle(w io.Writer, art *wiki.Article) {
	fmt.Fprintf(w, "%s (%s)\n%s\n\n", art.Title, langs.Name(art.Lang), art.URL)
	fmt.Fprintln(w, doctree.Wikitext(art.Sections))
}

func writeArticleDOCX(path string, art *wiki.Article, status io.Writer) error {
	if path == "-" {
		return errors.New("--out needs a file name")
	}
	if strings.HasSuffix(path, "/") {
		path += render.Filename(art.Title, art.Lang)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	err = render.DOCX(f, render.Document{
		Title:    art.Title,
		Lang:     art.Lang,
		Source:   "Wikipedia",
		URL:      art.URL,
		Summary:  art.Summary,
		Sections: art.Sections,
		Content:  art.Content,
	})
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(status, "Wrote", path)
	return nil
}

func readInput(cmd *cobra.Command, name string) (string, error) {
	var (
		data []byte
		err  error
	)
	if name == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(name)
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", name, err)
	}
	return string(data), nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
