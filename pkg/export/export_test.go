package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var roster = Dataset{
	Title:   "Waitlist CPSC449-1",
	Headers: []string{"position", "student_id", "student_name"},
	Rows: [][]string{
		{"1", "889012345", "Ada Lovelace"},
		{"2", "889012346", "Grace, Hopper"},
	},
}

func TestCSVExporterRender(t *testing.T) {
	out, err := NewCSVExporter().Render(roster)
	require.NoError(t, err)
	assert.Equal(t, "position,student_id,student_name\n1,889012345,Ada Lovelace\n2,889012346,\"Grace, Hopper\"\n", string(out))
}

func TestCSVExporterRejectsRaggedRows(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{Headers: []string{"a", "b"}, Rows: [][]string{{"1"}}})
	assert.ErrorContains(t, err, "row 0 has 1 cells")

	_, err = NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	out, err := NewPDFExporter().Render(roster)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	f, err = ParseFormat(" PDF ")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", f.ContentType())

	_, err = ParseFormat("xlsx")
	assert.Error(t, err)
}

func TestColumnWidthsFillPage(t *testing.T) {
	widths := columnWidths(roster)
	sum := 0.0
	for _, w := range widths {
		sum += w
	}
	assert.InDelta(t, pageWidth, sum, 0.001)
	assert.Greater(t, widths[2], widths[0])
}
