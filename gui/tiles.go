package gui

import (
	"context"
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"rollcall-attendance-go/attendance"
	"rollcall-attendance-go/models"
)

// statusImportance colours a student tile: green when present, red when absent
func statusImportance(present bool) widget.Importance {
	if present {
		return widget.SuccessImportance
	}
	return widget.DangerImportance
}

// classImportance alternates the class list tiles
func classImportance(index int) widget.Importance {
	if index%2 == 0 {
		return widget.MediumImportance
	}
	return widget.HighImportance
}

func tileLabel(st models.Student) string {
	if st.Name == "" {
		return st.ID
	}
	return fmt.Sprintf("%s\n%s", st.ID, st.Name)
}

// newStudentTile builds a tappable tile that toggles the student's flag
func newStudentTile(session *attendance.Session, className string, st models.StudentStatus, parent fyne.Window) *widget.Button {
	var tile *widget.Button
	tile = widget.NewButton(tileLabel(st.Student), func() {
		present, err := session.Toggle(context.Background(), className, st.ID)
		if err != nil {
			dialog.ShowError(err, parent)
			return
		}
		setTileStatus(tile, present)
	})
	setTileStatus(tile, st.Present)
	return tile
}

func setTileStatus(tile *widget.Button, present bool) {
	tile.Importance = statusImportance(present)
	tile.Refresh()
}
