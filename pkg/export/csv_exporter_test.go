package export

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVExporterRoundTrip(t *testing.T) {
	exporter := NewCSVExporter()
	dataset := Dataset{
		Headers: []string{"Name", "Email", "University"},
		Rows: []map[string]string{
			{"Name": "Hassan, Ahmed", "Email": "a@b.com", "University": `Cairo "City" University`},
			{"Name": "Nour Ibrahim", "Email": "nour@example.com", "University": "Ain Shams University"},
		},
	}

	payload, err := exporter.Render(dataset)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(payload, utf8BOM))

	records, err := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(payload, utf8BOM))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"Name", "Email", "University"}, records[0])
	assert.Equal(t, "Hassan, Ahmed", records[1][0])
	assert.Equal(t, `Cairo "City" University`, records[1][2])
	assert.Equal(t, "nour@example.com", records[2][1])
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	exporter := NewCSVExporter()
	_, err := exporter.Render(Dataset{})
	assert.Error(t, err)
}

func TestPDFExporterRendersDocument(t *testing.T) {
	exporter := NewPDFExporter()
	payload, err := exporter.Render(Dataset{
		Headers: []string{"Name", "Ticket ID"},
		Rows:    []map[string]string{{"Name": "Ahmed Hassan", "Ticket ID": "123456"}},
	}, "registrations")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(payload, []byte("%PDF")))
}
