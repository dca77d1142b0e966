package attendance

import (
	"context"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"rollcall-attendance-go/logger"
	"rollcall-attendance-go/models"
	"rollcall-attendance-go/sheet"
)

const (
	component = "attendance"

	// TotalColumn holds the per-student count of present marks when totals are tracked
	TotalColumn = "Total"

	storeDateLayout = "2006-01-02"
)

// StatusStore persists unsaved marks between runs. Implementations must be
// safe to call while the session lock is held.
type StatusStore interface {
	RegisterClass(ctx context.Context, clazz models.Clazz) error
	LoadStatuses(ctx context.Context, className, date string) (map[string]bool, error)
	SetStatus(ctx context.Context, className, date, studentID string, present bool) error
}

// Options configures a Session. Zero values fall back to the defaults.
type Options struct {
	DateLayout   string
	PresentLabel string
	AbsentLabel  string
	TrackTotal   bool

	Store  StatusStore      // Optional
	Logger logger.Logger    // Optional
	Now    func() time.Time // Optional, for tests
}

// SaveResult describes what Save wrote
type SaveResult struct {
	Path    string `json:"path"`
	Column  string `json:"column"`
	Present int    `json:"present"`
	Absent  int    `json:"absent"`
}

type classState struct {
	roster *models.ClassRoster
	flags  map[string]bool
}

// Session owns every loaded roster and its attendance flags
type Session struct {
	mu      sync.Mutex
	opts    Options
	classes map[string]*classState
	order   []string
}

// NewSession creates an empty session
func NewSession(opts Options) *Session {
	if opts.DateLayout == "" {
		opts.DateLayout = storeDateLayout
	}
	if opts.PresentLabel == "" {
		opts.PresentLabel = "Present"
	}
	if opts.AbsentLabel == "" {
		opts.AbsentLabel = "Absent"
	}
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Session{
		opts:    opts,
		classes: make(map[string]*classState),
	}
}

// ClassNameFromPath derives a class name from a file name: the base name up to
// its first dot.
func ClassNameFromPath(path string) string {
	base := filepath.Base(path)
	if i := strings.Index(base, "."); i > 0 {
		return base[:i]
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Load imports the spreadsheet at path as className, replacing any class
// already loaded under that name. An empty className is derived from the
// file name. Every student starts absent unless a mark for today can be
// recovered from the file or the status store.
func (s *Session) Load(ctx context.Context, className, path string) (*models.ClassRoster, error) {
	if className == "" {
		className = ClassNameFromPath(path)
	}

	table, err := sheet.ReadTable(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	cols := sheet.DetectColumns(table.Headers)
	roster := buildRoster(className, path, table, cols)
	if len(roster.Students) == 0 {
		return nil, &LoadError{Path: path, Err: ErrEmptyRoster}
	}

	flags := make(map[string]bool, len(roster.Students))
	for _, st := range roster.Students {
		flags[st.ID] = false
	}

	now := s.opts.Now()
	recovered := s.recoverFromTable(table, roster, flags, now)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.opts.Store != nil {
		recovered += s.recoverFromStore(ctx, className, flags, now)
		if err := s.opts.Store.RegisterClass(ctx, roster.Clazz()); err != nil {
			s.opts.Logger.Error(component, err, map[string]interface{}{"class": className})
		}
	}

	if _, exists := s.classes[className]; !exists {
		s.order = append(s.order, className)
	}
	s.classes[className] = &classState{roster: roster, flags: flags}

	s.opts.Logger.Info(component, "class loaded", map[string]interface{}{
		"class":      className,
		"path":       path,
		"students":   len(roster.Students),
		"idColumn":   roster.IdentifierColumn,
		"nameColumn": roster.NameColumn,
		"recovered":  recovered,
	})
	return roster, nil
}

// buildRoster turns the untyped table into typed students. Rows without an
// identifier stay in the table but are not part of the roster.
func buildRoster(className, path string, table *sheet.Table, cols sheet.Columns) *models.ClassRoster {
	students := make([]models.Student, 0, len(table.Rows))
	rowIDs := make([]string, len(table.Rows))
	for i := range table.Rows {
		id := strings.TrimSpace(table.Cell(i, cols.IdentifierIndex))
		if id == "" {
			continue
		}
		rowIDs[i] = id
		students = append(students, models.Student{
			ID:   id,
			Name: strings.TrimSpace(table.Cell(i, cols.NameIndex)),
			Row:  i,
		})
	}
	return models.NewClassRoster(className, path, cols.Identifier, cols.Name, students, rowIDs)
}

// recoverFromTable reads marks from a column already saved today
func (s *Session) recoverFromTable(table *sheet.Table, roster *models.ClassRoster, flags map[string]bool, now time.Time) int {
	col := table.Column(now.Format(s.opts.DateLayout))
	if col < 0 {
		return 0
	}
	n := 0
	for _, st := range roster.Students {
		if table.Cell(st.Row, col) == s.opts.PresentLabel {
			flags[st.ID] = true
			n++
		}
	}
	return n
}

func (s *Session) recoverFromStore(ctx context.Context, className string, flags map[string]bool, now time.Time) int {
	stored, err := s.opts.Store.LoadStatuses(ctx, className, now.Format(storeDateLayout))
	if err != nil {
		s.opts.Logger.Warning(component, "could not recover stored marks", map[string]interface{}{
			"class": className,
			"error": err.Error(),
		})
		return 0
	}
	n := 0
	for id, present := range stored {
		if _, ok := flags[id]; ok {
			flags[id] = present
			n++
		}
	}
	return n
}

// Toggle flips one student's flag and returns the new value
func (s *Session) Toggle(ctx context.Context, className, studentID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cs, err := s.lookupStudent(className, studentID)
	if err != nil {
		return false, err
	}
	current := cs.flags[studentID]
	cs.flags[studentID] = !current

	if s.opts.Store != nil {
		date := s.opts.Now().Format(storeDateLayout)
		if err := s.opts.Store.SetStatus(ctx, className, date, studentID, !current); err != nil {
			s.opts.Logger.Error(component, err, map[string]interface{}{"class": className, "student": studentID})
		}
	}
	return !current, nil
}

// Save writes today's column into the class spreadsheet. A column already
// labelled with today's date is overwritten rather than duplicated.
func (s *Session) Save(ctx context.Context, className string) (SaveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cs, err := s.lookup(className)
	if err != nil {
		return SaveResult{}, err
	}
	roster := cs.roster

	res := SaveResult{
		Path:   roster.Path,
		Column: s.opts.Now().Format(s.opts.DateLayout),
	}
	values := make([]string, len(roster.RowIDs))
	for i, id := range roster.RowIDs {
		if id != "" {
			values[i] = s.Label(cs.flags[id])
		}
	}
	for _, st := range roster.Students {
		if cs.flags[st.ID] {
			res.Present++
		} else {
			res.Absent++
		}
	}

	if err := sheet.UpsertColumn(roster.Path, res.Column, values); err != nil {
		return SaveResult{}, &WriteError{Path: roster.Path, Err: err}
	}
	if s.opts.TrackTotal {
		if err := s.writeTotals(roster.Path); err != nil {
			return SaveResult{}, &WriteError{Path: roster.Path, Err: err}
		}
	}

	s.opts.Logger.Info(component, "attendance saved", map[string]interface{}{
		"class":   className,
		"path":    roster.Path,
		"column":  res.Column,
		"present": res.Present,
		"absent":  res.Absent,
	})
	return res, nil
}

// writeTotals recounts present marks across every date-labelled column
func (s *Session) writeTotals(path string) error {
	table, err := sheet.ReadTable(path)
	if err != nil {
		return err
	}

	var dateCols []int
	for i, h := range table.Headers {
		if _, err := time.Parse(s.opts.DateLayout, h); err == nil {
			dateCols = append(dateCols, i)
		}
	}

	totals := make([]string, len(table.Rows))
	for r := range table.Rows {
		n := 0
		for _, c := range dateCols {
			if table.Cell(r, c) == s.opts.PresentLabel {
				n++
			}
		}
		totals[r] = strconv.Itoa(n)
	}
	return sheet.UpsertColumn(path, TotalColumn, totals)
}

func (s *Session) lookup(className string) (*classState, error) {
	cs, ok := s.classes[className]
	if !ok {
		return nil, &LookupError{Class: className, Err: ErrClassNotFound}
	}
	return cs, nil
}

func (s *Session) lookupStudent(className, studentID string) (*classState, error) {
	cs, err := s.lookup(className)
	if err != nil {
		return nil, err
	}
	if _, ok := cs.roster.Lookup(studentID); !ok {
		return nil, &LookupError{Class: className, Student: studentID, Err: ErrStudentNotFound}
	}
	return cs, nil
}

// Classes lists loaded classes in import order
func (s *Session) Classes() []models.Clazz {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Clazz, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.classes[name].roster.Clazz())
	}
	return out
}

// Roster returns the roster loaded under className
func (s *Session) Roster(className string) (*models.ClassRoster, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cs, err := s.lookup(className)
	if err != nil {
		return nil, err
	}
	return cs.roster, nil
}

// Status returns one student's current flag
func (s *Session) Status(className, studentID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cs, err := s.lookupStudent(className, studentID)
	if err != nil {
		return false, err
	}
	return cs.flags[studentID], nil
}

// Statuses returns every student of a class with its flag, in row order
func (s *Session) Statuses(className string) ([]models.StudentStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cs, err := s.lookup(className)
	if err != nil {
		return nil, err
	}
	out := make([]models.StudentStatus, len(cs.roster.Students))
	for i, st := range cs.roster.Students {
		out[i] = models.StudentStatus{Student: st, Present: cs.flags[st.ID]}
	}
	return out, nil
}

// Label renders a flag with the configured tokens
func (s *Session) Label(present bool) string {
	if present {
		return s.opts.PresentLabel
	}
	return s.opts.AbsentLabel
}
