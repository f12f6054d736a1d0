// Package report renders an engine run for humans and machines: a plain-text
// verification report and a JSON export of the result table plus diagnostics.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"furnacecheck/verify"
)

const timeLayout = "2006-01-02 15:04"

// ExpandTemplate substitutes {DATE} in an output path template.
func ExpandTemplate(tmpl string, dt time.Time) string {
	return strings.ReplaceAll(tmpl, "{DATE}", dt.Format("2006-01-02"))
}

// Text renders the full verification report.
func Text(rep verify.Report) string {
	var b strings.Builder

	b.WriteString("Furnace gas unit-cost verification\n")
	fmt.Fprintf(&b, "Production days: %d, sensor days: %d, matched: %d\n",
		rep.ProductionDays, rep.SensorDays, rep.MatchedDays)
	if rep.DuplicateSamples > 0 {
		fmt.Fprintf(&b, "Duplicate sensor rows suppressed: %s\n", humanize.Comma(int64(rep.DuplicateSamples)))
	}
	b.WriteString("\n")

	if len(rep.Results) == 0 {
		b.WriteString("No verifiable cycles.\n")
	} else {
		fmt.Fprintf(&b, "%-12s %-17s %-17s %12s %13s %10s %8s\n",
			"date", "cycle start", "cycle end", "gas (Nm3)", "charge (kg)", "unit cost", "verdict")
		for _, r := range rep.Results {
			fmt.Fprintf(&b, "%-12s %-17s %-17s %12s %13s %10.2f %8s\n",
				r.Date.String(),
				r.CycleStart.Format(timeLayout),
				r.CycleEnd.Format(timeLayout),
				humanize.Comma(int64(r.GasUsed)),
				humanize.Comma(int64(r.ChargeKG)),
				r.UnitCost,
				r.Verdict)
		}
		fmt.Fprintf(&b, "\nTarget unit cost: %.2f Nm3/ton\n", rep.Results[0].Target)
	}

	if len(rep.Rejections) > 0 {
		fmt.Fprintf(&b, "\nRejected dates (%d):\n", len(rep.Rejections))
		for _, rj := range rep.Rejections {
			fmt.Fprintf(&b, "  %s: %s\n", rj.Date, rj.Reason)
		}
	}
	return b.String()
}

// WriteText writes the text report, creating the target directory if needed.
func WriteText(path string, rep verify.Report) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("report: mkdir: %w", err)
	}
	if err := os.WriteFile(path, []byte(Text(rep)), 0o644); err != nil {
		return fmt.Errorf("report: write: %w", err)
	}
	return nil
}
