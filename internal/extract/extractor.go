// Package extract turns a rendered quiz review page into a domain.QuestionPaper.
//
// Extraction never fails on page structure: anything the page does not contain
// comes back as a nil field, an empty string or an empty slice.
package extract

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"quiz-review-service/internal/domain"
)

const (
	breadcrumbSelector   = ".breadcrumbs-container .breadcrumb .breadcrumb-item"
	titleSelector        = ".rui-title-container"
	summaryTableSelector = ".rui-summary-table"
	questionSelector     = ".que"

	completedOnSelector = ".rui-infobox--completedon .rui-infobox-content--small"
	timeTakenSelector   = ".rui-infobox--timetaken .rui-infobox-content--small"
	gradeSelector       = ".rui-infobox--grade .rui-infobox-content--small"
)

// titleHeadings are tried in order; the first non-empty heading wins.
var titleHeadings = []string{"h1", "h2", "h3", "h4"}

// Options controls how unparseable numbers are reported.
type Options struct {
	// MissingMarksAsNil reports unmatched grades and marks as nil instead of 0,
	// so a question without a parseable grade line classifies as Unknown.
	// By default such a question reads 0 out of 0 and classifies as Correct.
	MissingMarksAsNil bool
}

// Extractor is stateless apart from its options and safe for concurrent use.
type Extractor struct {
	opts Options
}

func New(opts Options) *Extractor {
	return &Extractor{opts: opts}
}

var defaultExtractor = New(Options{})

// Extract runs the default extractor over a parsed document.
func Extract(doc *goquery.Document) domain.QuestionPaper {
	return defaultExtractor.Document(doc)
}

// ExtractString parses markup and runs the default extractor over it.
func ExtractString(markup string) (domain.QuestionPaper, error) {
	return defaultExtractor.String(markup)
}

// Document extracts from an already parsed document. The document is not modified.
func (e *Extractor) Document(doc *goquery.Document) domain.QuestionPaper {
	if doc == nil {
		doc = goquery.NewDocumentFromNode(&html.Node{Type: html.DocumentNode})
	}
	return e.paper(doc.Selection)
}

// Node extracts from an x/net/html tree.
func (e *Extractor) Node(root *html.Node) domain.QuestionPaper {
	if root == nil {
		return e.Document(nil)
	}
	return e.Document(goquery.NewDocumentFromNode(root))
}

// Reader parses page markup from r and extracts from it.
func (e *Extractor) Reader(r io.Reader) (domain.QuestionPaper, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return domain.QuestionPaper{}, fmt.Errorf("parse review page: %w", err)
	}
	return e.Document(doc), nil
}

// String is Reader over an in-memory page.
func (e *Extractor) String(markup string) (domain.QuestionPaper, error) {
	return e.Reader(strings.NewReader(markup))
}

func (e *Extractor) paper(root *goquery.Selection) domain.QuestionPaper {
	queNodes := root.Find(questionSelector)
	questions := make([]domain.Question, 0, queNodes.Length())
	queNodes.Each(func(_ int, que *goquery.Selection) {
		questions = append(questions, e.question(que))
	})

	return domain.QuestionPaper{
		Breadcrumbs: breadcrumbs(root),
		Title:       title(root),
		Summary:     e.summary(root.Find(summaryTableSelector).First()),
		Questions:   questions,
	}
}

func breadcrumbs(root *goquery.Selection) []string {
	items := root.Find(breadcrumbSelector)
	crumbs := make([]string, 0, items.Length())
	items.Each(func(_ int, item *goquery.Selection) {
		crumbs = append(crumbs, strings.TrimSpace(item.Text()))
	})
	return crumbs
}

func title(root *goquery.Selection) *string {
	container := root.Find(titleSelector)
	for _, heading := range titleHeadings {
		if t := textAt(container, heading); t != nil {
			return t
		}
	}
	return nil
}

func (e *Extractor) summary(table *goquery.Selection) domain.Summary {
	completedOn := textAt(table, completedOnSelector)
	timeTaken := textAt(table, timeTakenSelector)
	gradeMarkup := markupAt(table, gradeSelector)
	grade := ParseSummaryGrade(gradeMarkup)

	return domain.Summary{
		CompletedOnText:  completedOn,
		CompletedOn:      ParseCompletedOn(completedOn),
		TimeTakenText:    timeTaken,
		TimeTakenSeconds: ParseTimeTaken(timeTaken),
		GradeText:        gradeMarkup,
		GradeScore:       e.mark(grade.Score, grade.HasScore),
		GradeTotal:       e.mark(grade.Total, grade.HasTotal),
		GradePercentage:  e.mark(grade.Percentage, grade.HasPercentage),
	}
}

// mark applies the absence policy to a parsed value.
func (e *Extractor) mark(v float64, ok bool) *float64 {
	if !ok && e.opts.MissingMarksAsNil {
		return nil
	}
	return &v
}
