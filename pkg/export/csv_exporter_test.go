package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVRenderPreservesColumnOrder(t *testing.T) {
	remarks := "excused, medical"
	sheet := Sheet{
		Columns: []string{"Student", "Status", "Remarks"},
		Rows: []map[string]string{
			{"Student": "Ana Reyes", "Status": "present", "Remarks": ""},
			{"Student": "Ben Cruz", "Status": "absent", "Remarks": remarks},
		},
	}

	data, err := NewCSVExporter().Render(sheet)
	require.NoError(t, err)
	assert.Equal(t, "Student,Status,Remarks\nAna Reyes,present,\nBen Cruz,absent,\"excused, medical\"\n", string(data))
}

func TestCSVRenderFillsMissingColumnsWithEmptyCells(t *testing.T) {
	sheet := Sheet{
		Columns: []string{"Student", "Status"},
		Rows:    []map[string]string{{"Student": "Ana Reyes"}},
	}

	data, err := NewCSVExporter().Render(sheet)
	require.NoError(t, err)
	assert.Equal(t, "Student,Status\nAna Reyes,\n", string(data))
}

func TestCSVRenderRequiresColumns(t *testing.T) {
	_, err := NewCSVExporter().Render(Sheet{})
	require.Error(t, err)
}
