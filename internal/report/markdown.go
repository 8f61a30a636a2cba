// Package report renders stored interview sessions for people: a Markdown
// or HTML report for one session and an Excel workbook for a history.
package report

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"github.com/abhisek/mockprep/internal/feedback"
	"github.com/abhisek/mockprep/internal/store"
)

const dateLayout = "2006-01-02 15:04"

// Overall decodes the stored overall summary. It returns nil when the
// session has none or it cannot be decoded.
func Overall(s *store.Session) *feedback.Overall {
	if len(s.Overall) == 0 || string(s.Overall) == "null" {
		return nil
	}
	var o feedback.Overall
	if err := json.Unmarshal(s.Overall, &o); err != nil {
		return nil
	}
	return &o
}

// Markdown renders a session as a Markdown document.
func Markdown(s *store.Session) []byte {
	var b strings.Builder

	fmt.Fprintf(&b, "# Mock interview: %s\n\n", s.JobRole)
	fmt.Fprintf(&b, "*%s*\n\n", s.CreatedAt.Local().Format(dateLayout))
	fmt.Fprintf(&b, "**Overall score: %.1f / 10** (%s)\n\n", s.TotalScore, feedback.BandFor(s.TotalScore))

	if o := Overall(s); o != nil {
		if o.GeneralFeedback != "" {
			fmt.Fprintf(&b, "%s\n\n", o.GeneralFeedback)
		}
		writeList(&b, "Key strengths", o.KeyStrengths)
		writeList(&b, "Development areas", o.DevelopmentAreas)
	}

	for i, r := range s.Responses {
		fmt.Fprintf(&b, "## Question %d\n\n", i+1)
		fmt.Fprintf(&b, "> %s\n\n", r.Question)
		fmt.Fprintf(&b, "**Your answer:** %s\n\n", r.Answer)
		if r.Score != nil {
			fmt.Fprintf(&b, "**Score:** %.1f / 10 (%s)\n\n", *r.Score, feedback.BandFor(*r.Score))
		} else {
			b.WriteString("**Score:** not scored\n\n")
		}
		if r.Feedback != nil && *r.Feedback != "" {
			fmt.Fprintf(&b, "%s\n\n", *r.Feedback)
		}
		writeList(&b, "Strengths", r.Strengths)
		writeList(&b, "Areas to improve", r.AreasToImprove)
	}

	return []byte(b.String())
}

func writeList(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "### %s\n\n", title)
	for _, item := range items {
		fmt.Fprintf(b, "- %s\n", item)
	}
	b.WriteString("\n")
}

// HTML renders a session as a standalone HTML page. Raw HTML in answers
// or feedback is dropped.
func HTML(s *store.Session) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := html.NewRenderer(html.RendererOptions{
		Title: "Mock interview: " + s.JobRole,
		Flags: html.CommonFlags | html.CompletePage | html.SkipHTML | html.HrefTargetBlank,
	})
	return markdown.ToHTML(Markdown(s), p, renderer)
}
