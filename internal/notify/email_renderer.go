package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"
)

// HTMLEmailRenderer renders run summaries as HTML emails with a plain text fallback.
type HTMLEmailRenderer struct {
	tmpl *template.Template
}

func NewHTMLEmailRenderer() *HTMLEmailRenderer {
	t := template.Must(template.New("email").Funcs(template.FuncMap{
		"duration": func(d time.Duration) string { return d.Round(time.Second).String() },
	}).Parse(emailHTMLTemplate))
	return &HTMLEmailRenderer{tmpl: t}
}

func (r *HTMLEmailRenderer) Render(report RunReport) (*RenderedMessage, error) {
	subject := fmt.Sprintf("kabuscraper: %d extracted, %d skipped (%s)",
		report.Extracted, report.Skipped, report.StartedAt.Format("2006-01-02"))

	var htmlBuf bytes.Buffer
	if err := r.tmpl.Execute(&htmlBuf, report); err != nil {
		return nil, fmt.Errorf("failed to render HTML template: %w", err)
	}

	return &RenderedMessage{
		Subject: subject,
		Text:    renderPlainText(report),
		HTML:    htmlBuf.String(),
	}, nil
}

// renderPlainText is the body for clients without HTML support.
func renderPlainText(r RunReport) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Scrape run %s\n", r.RunID))
	sb.WriteString(strings.Repeat("=", 50) + "\n\n")

	sb.WriteString(fmt.Sprintf("Started:   %s\n", r.StartedAt.Format("02 Jan 2006 15:04")))
	sb.WriteString(fmt.Sprintf("Duration:  %s\n", r.Duration.Round(time.Second)))
	sb.WriteString(fmt.Sprintf("Requested: %d\n", r.Requested))
	sb.WriteString(fmt.Sprintf("Extracted: %d\n", r.Extracted))
	sb.WriteString(fmt.Sprintf("Skipped:   %d\n", r.Skipped))
	sb.WriteString(fmt.Sprintf("History:   %d rows\n\n", r.HistoryRows))

	if len(r.SkipKinds) > 0 {
		sb.WriteString("SKIPS BY KIND\n")
		sb.WriteString(strings.Repeat("-", 20) + "\n")
		for _, k := range r.SkipKinds {
			sb.WriteString(fmt.Sprintf("• %s: %d\n", k.Kind, k.Count))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("FILES\n")
	sb.WriteString(strings.Repeat("-", 20) + "\n")
	sb.WriteString(r.ProfilePath + "\n")
	sb.WriteString(r.HistoryPath + "\n")
	sb.WriteString(r.LedgerPath + "\n")

	return sb.String()
}
