package views

import (
	"time"

	"github.com/orchestrated-app/hub/internal/tui/client"
	"github.com/rivo/tview"
)

// CalendarView lists upcoming calendar events.
type CalendarView struct {
	*tview.Table
}

// NewCalendarView creates the calendar table.
func NewCalendarView() *CalendarView {
	table := tview.NewTable().
		SetSelectable(true, false).
		SetBorders(false)
	table.SetBorder(true).SetTitle(" Calendar ")

	return &CalendarView{Table: table}
}

// Update refreshes the table with new events.
func (cv *CalendarView) Update(events []client.Event) {
	cv.Clear()

	cv.SetCell(0, 0, tview.NewTableCell(" When").SetSelectable(false).SetTextColor(tview.Styles.SecondaryTextColor))
	cv.SetCell(0, 1, tview.NewTableCell(" Summary").SetSelectable(false).SetTextColor(tview.Styles.SecondaryTextColor))
	cv.SetCell(0, 2, tview.NewTableCell(" Location").SetSelectable(false).SetTextColor(tview.Styles.SecondaryTextColor))
	cv.SetCell(0, 3, tview.NewTableCell(" Status").SetSelectable(false).SetTextColor(tview.Styles.SecondaryTextColor))

	for i, e := range events {
		row := i + 1
		cv.SetCell(row, 0, tview.NewTableCell(" "+formatEventTime(e.StartTime)).SetMaxWidth(18))
		cv.SetCell(row, 1, tview.NewTableCell(" "+e.Summary).SetMaxWidth(40).SetExpansion(2))
		cv.SetCell(row, 2, tview.NewTableCell(" "+e.Location).SetMaxWidth(25).SetExpansion(1))
		cv.SetCell(row, 3, tview.NewTableCell(" "+e.Status).SetMaxWidth(12))
	}
}

func formatEventTime(raw string) string {
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return raw
	}
	return t.Local().Format("Mon 02 Jan 15:04")
}
