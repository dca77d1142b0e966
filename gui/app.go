package gui

import (
	"context"
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	"rollcall-attendance-go/attendance"
	"rollcall-attendance-go/config"
	"rollcall-attendance-go/logger"
	"rollcall-attendance-go/models"
	"rollcall-attendance-go/sheet"
)

const (
	AppTitle  = "Class Attendance"
	component = "gui"
)

// Registry lists classes imported in earlier runs and forgets stale ones
type Registry interface {
	GetAllClasses(ctx context.Context) ([]models.Clazz, error)
	UnregisterClass(ctx context.Context, className string) error
}

// App is the single-window attendance front end
type App struct {
	fyneApp fyne.App
	window  fyne.Window
	session *attendance.Session
	log     logger.Logger
	size    fyne.Size

	classList *fyne.Container
	tiles     map[string]*widget.Button
}

func New(fyneApp fyne.App, session *attendance.Session, cfg config.WindowConfig, log logger.Logger) *App {
	a := &App{
		fyneApp: fyneApp,
		session: session,
		log:     log,
		size:    fyne.NewSize(cfg.Width, cfg.Height),
		tiles:   make(map[string]*widget.Button),
	}
	a.window = fyneApp.NewWindow(AppTitle)
	a.window.Resize(a.size)
	a.window.SetContent(a.buildMainScreen())
	return a
}

func (a *App) buildMainScreen() fyne.CanvasObject {
	a.classList = container.NewVBox()

	addBtn := widget.NewButton("+ Add Class", a.handleAddClass)
	addBtn.Importance = widget.SuccessImportance

	return container.NewBorder(nil, container.NewPadded(addBtn), nil, nil,
		container.NewVScroll(a.classList))
}

// Window exposes the main window, mostly for tests
func (a *App) Window() fyne.Window {
	return a.window
}

// Run shows the main window and blocks until the app quits
func (a *App) Run() {
	a.window.ShowAndRun()
}

// Restore reloads classes imported in an earlier run. Entries whose file
// can no longer be loaded are removed from the registry.
func (a *App) Restore(ctx context.Context, registry Registry) error {
	classes, err := registry.GetAllClasses(ctx)
	if err != nil {
		return fmt.Errorf("failed to list previous classes: %w", err)
	}

	for _, clazz := range classes {
		if _, err := a.session.Load(ctx, clazz.Name, clazz.Path); err != nil {
			a.log.Warning(component, "dropping class from previous session", map[string]interface{}{
				"class": clazz.Name,
				"error": err.Error(),
			})
			if err := registry.UnregisterClass(ctx, clazz.Name); err != nil {
				a.log.Error(component, err, map[string]interface{}{"class": clazz.Name})
			}
			continue
		}
		a.addClassTile(clazz.Name)
	}
	return nil
}

func (a *App) handleAddClass() {
	picker := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			a.showError("File Open Error", err)
			return
		}
		if reader == nil {
			return
		}
		path := reader.URI().Path()
		reader.Close()

		a.LoadClass(path)
	}, a.window)
	picker.SetFilter(storage.NewExtensionFileFilter(sheet.Extensions))
	picker.Show()
}

// LoadClass imports a spreadsheet and adds its tile to the class list
func (a *App) LoadClass(path string) {
	roster, err := a.session.Load(context.Background(), "", path)
	if err != nil {
		a.showError("Failed to load class", err)
		return
	}
	a.addClassTile(roster.Name)
}

func (a *App) addClassTile(className string) {
	if _, exists := a.tiles[className]; exists {
		return
	}
	tile := widget.NewButton(className, func() { a.openAttendance(className) })
	tile.Importance = classImportance(len(a.tiles))
	a.tiles[className] = tile
	a.classList.Add(tile)
}

func (a *App) openAttendance(className string) {
	statuses, err := a.session.Statuses(className)
	if err != nil {
		a.showError("Class Error", err)
		return
	}

	w := a.fyneApp.NewWindow(className)
	w.Resize(a.size)

	tiles := make([]fyne.CanvasObject, 0, len(statuses))
	for _, st := range statuses {
		tiles = append(tiles, newStudentTile(a.session, className, st, w))
	}
	grid := container.NewGridWithColumns(2, tiles...)

	saveBtn := widget.NewButton("SAVE", func() { a.saveAttendance(className, w) })
	saveBtn.Importance = widget.SuccessImportance

	w.SetContent(container.NewBorder(nil, container.NewPadded(saveBtn), nil, nil,
		container.NewVScroll(grid)))
	w.Show()
}

func (a *App) saveAttendance(className string, w fyne.Window) {
	res, err := a.session.Save(context.Background(), className)
	if err != nil {
		dialog.ShowError(fmt.Errorf("failed to save attendance: %w", err), w)
		return
	}
	dialog.ShowInformation("Success", "Attendance saved!", a.window)
	a.log.Debug(component, "attendance window closed after save", map[string]interface{}{
		"class":  className,
		"column": res.Column,
	})
	w.Close()
}

func (a *App) showError(title string, err error) {
	a.log.Error(component, err, map[string]interface{}{"title": title})
	dialog.ShowError(fmt.Errorf("%s: %w", title, err), a.window)
}
