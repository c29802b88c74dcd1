package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"devtriage/internal/domain"
)

// TextCodec renders a report for terminals
type TextCodec struct{}

// NewTextCodec creates a new text codec
func NewTextCodec() *TextCodec {
	return &TextCodec{}
}

// Format returns the codec format identifier
func (c *TextCodec) Format() string {
	return "text"
}

// Export writes a human-readable report: header, per-level counts, then
// findings from most to least severe
func (c *TextCodec) Export(report *Report, w io.Writer) error {
	var b strings.Builder

	fmt.Fprintf(&b, "Report %s\n", report.ID)
	if report.Target != "" {
		fmt.Fprintf(&b, "Target:    %s\n", report.Target)
	}
	if !report.CollectedAt.IsZero() {
		fmt.Fprintf(&b, "Collected: %s\n", report.CollectedAt.Format("2006-01-02 15:04:05 MST"))
	}
	for _, ns := range domain.Namespaces() {
		if settings, ok := report.Snapshot[ns]; ok {
			fmt.Fprintf(&b, "  %-7s %d settings\n", ns, len(settings))
		}
	}

	counts := report.Summary()
	var parts []string
	for _, level := range domain.Levels() {
		if n := counts[level]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, level))
		}
	}
	if len(parts) == 0 {
		b.WriteString("\nNo findings.\n")
		_, err := io.WriteString(w, b.String())
		return err
	}
	fmt.Fprintf(&b, "\nFindings: %s\n\n", strings.Join(parts, ", "))

	if _, err := io.WriteString(w, b.String()); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "LEVEL\tNAMESPACE\tSETTING\tDESCRIPTION")
	for _, f := range report.Prioritized() {
		fmt.Fprintf(tw, "%s\t%s\t%s=%s\t%s\n",
			strings.ToUpper(f.Level.String()), f.Namespace, f.Key, f.Value, f.Description)
	}
	return tw.Flush()
}
