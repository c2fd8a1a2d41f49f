package export

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleWeek() Week {
	start := time.Date(2024, time.January, 3, 9, 0, 0, 0, time.UTC)
	return Week{
		Owner:  "Ada Lovelace",
		WeekOf: "2024-01-01",
		Items: []Item{
			{
				Date: "2024-01-03", Start: "09:00", End: "10:00",
				Title: "Biology", Kind: "session", Subject: "Biology", Type: "revision",
				StartAt: start, EndAt: start.Add(time.Hour),
			},
			{
				Date: "2024-01-05", Start: "14:00", End: "16:00",
				Title: "Mock exam", Kind: "event",
				StartAt: start.AddDate(0, 0, 2).Add(5 * time.Hour), EndAt: start.AddDate(0, 0, 2).Add(7 * time.Hour),
			},
		},
	}
}

func TestCSVExporterRender(t *testing.T) {
	data, err := NewCSVExporter().Render(sampleWeek())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "date,start,end,title,kind,subject,type", lines[0])
	assert.Contains(t, lines[1], "2024-01-03,09:00,10:00,Biology,session")
	assert.Contains(t, lines[2], "Mock exam,event")
}

func TestCSVExporterRenderEmptyWeek(t *testing.T) {
	data, err := NewCSVExporter().Render(Week{WeekOf: "2024-01-01"})
	require.NoError(t, err)
	assert.Equal(t, "date,start,end,title,kind,subject,type", strings.TrimSpace(string(data)))
}

func TestPDFExporterRender(t *testing.T) {
	data, err := NewPDFExporter().Render(sampleWeek())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "%PDF"))
}

func TestICSExporterRender(t *testing.T) {
	data, err := NewICSExporter().Render(sampleWeek())
	require.NoError(t, err)

	doc := string(data)
	assert.Contains(t, doc, "BEGIN:VCALENDAR")
	assert.Contains(t, doc, "SUMMARY:Biology")
	assert.Contains(t, doc, "SUMMARY:Mock exam")
	assert.Equal(t, 2, strings.Count(doc, "BEGIN:VEVENT"))
}

func TestICSExporterSkipsUnresolvedItems(t *testing.T) {
	week := sampleWeek()
	week.Items[1].StartAt = time.Time{}

	data, err := NewICSExporter().Render(week)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(data), "BEGIN:VEVENT"))
}
