package models

// Clazz represents a class registered in the session
type Clazz struct {
	Name string `json:"name"` // Class name, unique within a session
	Path string `json:"path"` // Spreadsheet the roster was imported from
}

// Student represents one roster row
type Student struct {
	ID   string `json:"id"`   // Value of the identifier column (e.g., roll number)
	Name string `json:"name"` // Value of the display-name column
	Row  int    `json:"row"`  // Zero-based data row index in the source table
}

// StudentStatus is a student together with the current attendance flag
type StudentStatus struct {
	Student
	Present bool `json:"present"`
}

// ClassRoster is the typed roster built from an imported table.
// It is not modified after import; attendance flags live in the session.
type ClassRoster struct {
	Name             string    `json:"name"`
	Path             string    `json:"path"`
	IdentifierColumn string    `json:"identifierColumn"`
	NameColumn       string    `json:"nameColumn"`
	Students         []Student `json:"students"`
	RowIDs           []string  `json:"-"` // Identifier per data row, "" where the row carries none

	index map[string]int
}

// NewClassRoster builds a roster and its identifier index. Duplicate
// identifiers keep the first row; later rows share its flag through RowIDs.
func NewClassRoster(name, path, idCol, nameCol string, students []Student, rowIDs []string) *ClassRoster {
	r := &ClassRoster{
		Name:             name,
		Path:             path,
		IdentifierColumn: idCol,
		NameColumn:       nameCol,
		RowIDs:           rowIDs,
		index:            make(map[string]int, len(students)),
	}
	for _, s := range students {
		if _, dup := r.index[s.ID]; dup {
			continue
		}
		r.index[s.ID] = len(r.Students)
		r.Students = append(r.Students, s)
	}
	return r
}

// Lookup returns the student with the given identifier
func (r *ClassRoster) Lookup(id string) (Student, bool) {
	i, ok := r.index[id]
	if !ok {
		return Student{}, false
	}
	return r.Students[i], true
}

// StudentIDs returns identifiers in row order
func (r *ClassRoster) StudentIDs() []string {
	ids := make([]string, len(r.Students))
	for i, s := range r.Students {
		ids[i] = s.ID
	}
	return ids
}

// Clazz returns the registry entry for this roster
func (r *ClassRoster) Clazz() Clazz {
	return Clazz{Name: r.Name, Path: r.Path}
}
