package output

import (
	"fmt"
	"io"

	"github.com/mizrahidaniel/code-sentiment-heatmap/internal/burnout"
	"github.com/mizrahidaniel/code-sentiment-heatmap/internal/pipeline"
)

// QuietFormatter outputs a one-line summary (for hooks and scripts)
type QuietFormatter struct{}

func (f *QuietFormatter) Format(result *pipeline.Result, w io.Writer) error {
	report := result.Report
	signal := report.Signal

	if report.Severity == burnout.SeverityLow && len(report.Zones) == 0 {
		_, err := fmt.Fprintf(w, "✅ %s burnout risk (%d/100) across %d commits\n",
			report.Severity, signal.BurnoutRisk, signal.TotalCommits)
		return err
	}

	_, err := fmt.Fprintf(w, "⚠️  %s burnout risk (%d/100): %d zones, %d triggers across %d commits\n",
		report.Severity, signal.BurnoutRisk, len(report.Zones), len(report.Triggers.Fired()), signal.TotalCommits)
	return err
}
