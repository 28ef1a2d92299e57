package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"quiz-review-service/internal/config"
	"quiz-review-service/internal/domain"
)

type extractOptions struct {
	output       string
	pretty       bool
	nullMissing  bool
	save         bool
	verbose      bool
}

// NewExtractCmd converts a saved review page into JSON.
func NewExtractCmd(configPath *string) *cobra.Command {
	opts := &extractOptions{}
	cmd := &cobra.Command{
		Use:   "extract [file|-]",
		Short: "Extract a question paper from a review page",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadOptional(*configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("null-missing") {
				cfg.Extract.MissingMarksAsNil = opts.nullMissing
			}

			in := cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("open review page: %w", err)
				}
				defer f.Close()
				in = f
			}

			out := cmd.OutOrStdout()
			if opts.output != "" {
				f, err := os.Create(opts.output)
				if err != nil {
					return fmt.Errorf("create output: %w", err)
				}
				defer f.Close()
				out = f
			}
			return runExtract(cmd.Context(), cfg, *opts, in, out, cmd.ErrOrStderr())
		},
	}
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write JSON to this file instead of stdout")
	cmd.Flags().BoolVar(&opts.pretty, "pretty", false, "indent JSON output")
	cmd.Flags().BoolVar(&opts.nullMissing, "null-missing", false, "report unparseable marks as null instead of 0")
	cmd.Flags().BoolVar(&opts.save, "save", false, "also store the paper in the configured store")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "print statistics to stderr")
	return cmd
}

func runExtract(ctx context.Context, cfg config.Config, opts extractOptions, in io.Reader, out, errOut io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	raw, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("read review page: %w", err)
	}

	var paper domain.QuestionPaper
	if opts.save {
		service, cleanup, err := buildService(ctx, cfg)
		defer cleanup()
		if err != nil {
			return err
		}
		stored, err := service.Ingest(ctx, string(raw))
		if err != nil {
			return err
		}
		fmt.Fprintf(errOut, "stored paper %s\n", stored.ID)
		paper = stored.Paper
	} else {
		paper, err = newExtractor(cfg).String(string(raw))
		if err != nil {
			return err
		}
	}

	enc := json.NewEncoder(out)
	if opts.pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(paper); err != nil {
		return fmt.Errorf("write paper: %w", err)
	}

	if opts.verbose {
		printStatistics(errOut, paper)
	}
	return nil
}

func printStatistics(w io.Writer, paper domain.QuestionPaper) {
	tally := paper.Tally()
	title := "(untitled)"
	if paper.Title != nil {
		title = *paper.Title
	}
	fmt.Fprintf(w, "\nStatistics:\n")
	fmt.Fprintf(w, "  Title: %s\n", title)
	fmt.Fprintf(w, "  Questions: %d (correct %d, partial %d, incorrect %d, unknown %d)\n",
		tally.Questions, tally.Correct, tally.PartiallyCorrect, tally.Incorrect, tally.Unknown)
	fmt.Fprintf(w, "  Answers: %d (%d marked correct)\n", tally.Answers, tally.CorrectAnswers)
	if s := paper.Summary; s.GradeScore != nil && s.GradeTotal != nil {
		fmt.Fprintf(w, "  Grade: %.2f / %.2f\n", *s.GradeScore, *s.GradeTotal)
	}

	if len(paper.Questions) > 0 {
		q := paper.Questions[0]
		fmt.Fprintf(w, "\n--- Sample Question ---\n")
		fmt.Fprintf(w, "%s [%s]\n", q.Content.QuestionTextHTML, q.State)
		for _, a := range q.Content.UserAnswers {
			marker := ""
			if a.IsCorrect {
				marker = " [CORRECT]"
			}
			fmt.Fprintf(w, "  - %s%s\n", a.AnswerHTML, marker)
		}
	}
}
