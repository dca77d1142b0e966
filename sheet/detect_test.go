package sheet

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectColumns(t *testing.T) {
	tests := []struct {
		name     string
		headers  []string
		wantID   string
		wantName string
	}{
		{
			name:     "keywords in order",
			headers:  []string{"ID", "Full Name"},
			wantID:   "ID",
			wantName: "Full Name",
		},
		{
			name:     "keywords in any position",
			headers:  []string{"Phone", "Student Name", "Section", "Roll No"},
			wantID:   "Roll No",
			wantName: "Student Name",
		},
		{
			name:     "case insensitive",
			headers:  []string{"ENROLLMENT", "NAME"},
			wantID:   "ENROLLMENT",
			wantName: "NAME",
		},
		{
			name:     "first identifier match wins",
			headers:  []string{"Name", "Roll", "Number"},
			wantID:   "Roll",
			wantName: "Name",
		},
		{
			name:     "identifier header is not reused for name",
			headers:  []string{"Student ID", "Student"},
			wantID:   "Student ID",
			wantName: "Student",
		},
		{
			name:     "no keywords falls back to position",
			headers:  []string{"A", "B", "C"},
			wantID:   "A",
			wantName: "B",
		},
		{
			name:     "only identifier matches",
			headers:  []string{"Pupil", "Roll"},
			wantID:   "Roll",
			wantName: "Roll",
		},
		{
			name:     "single column serves both roles",
			headers:  []string{"Pupils"},
			wantID:   "Pupils",
			wantName: "Pupils",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DetectColumns(tt.headers)
			assert.Equal(t, tt.wantID, got.Identifier)
			assert.Equal(t, tt.wantName, got.Name)
			assert.Equal(t, tt.wantID, tt.headers[got.IdentifierIndex])
			assert.Equal(t, tt.wantName, tt.headers[got.NameIndex])
		})
	}
}

func TestDetectColumnsEmptyHeaders(t *testing.T) {
	assert.NotPanics(t, func() {
		got := DetectColumns(nil)
		assert.Equal(t, -1, got.IdentifierIndex)
		assert.Equal(t, -1, got.NameIndex)
		assert.Empty(t, got.Identifier)
	})
}
