// Package ui renders the verification result table interactively. It is an
// optional front end over verify.Report; the engine never depends on it.
package ui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"furnacecheck/verify"
)

const timeLayout = "2006-01-02 15:04"

// BuildTable constructs the result table without running an application, so
// tests can inspect the rendered cells.
func BuildTable(rep verify.Report) *tview.Table {
	table := tview.NewTable().SetBorders(false).SetSelectable(true, false)
	table.SetFixed(1, 0)

	headers := []string{"Date", "Cycle start", "Cycle end", "Gas (Nm3)", "Charge (kg)", "Unit cost", "Verdict"}
	for col, h := range headers {
		cell := tview.NewTableCell(h).
			SetTextColor(tcell.ColorYellow).
			SetSelectable(false).
			SetAttributes(tcell.AttrBold)
		table.SetCell(0, col, cell)
	}

	for i, r := range rep.Results {
		row := i + 1
		verdictColor := tcell.ColorGreen
		if r.Verdict == verify.VerdictFail {
			verdictColor = tcell.ColorRed
		}
		cells := []string{
			r.Date.String(),
			r.CycleStart.Format(timeLayout),
			r.CycleEnd.Format(timeLayout),
			fmt.Sprintf("%.1f", r.GasUsed),
			fmt.Sprintf("%.0f", r.ChargeKG),
			fmt.Sprintf("%.2f", r.UnitCost),
			string(r.Verdict),
		}
		for col, text := range cells {
			cell := tview.NewTableCell(text)
			if col == len(cells)-1 {
				cell.SetTextColor(verdictColor)
			}
			table.SetCell(row, col, cell)
		}
	}
	return table
}

// ShowResults runs the interactive table until the user quits with q or Esc.
func ShowResults(rep verify.Report) error {
	app := tview.NewApplication()
	table := BuildTable(rep)
	table.SetBorder(true).SetTitle(fmt.Sprintf(" Verification results (%d cycles) ", len(rep.Results)))

	app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyEscape || event.Rune() == 'q' {
			app.Stop()
			return nil
		}
		return event
	})
	return app.SetRoot(table, true).Run()
}
