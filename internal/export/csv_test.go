package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"

	"newsbag/internal/model"
)

func TestWriteArticle(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	err := w.WriteArticle(model.Article{
		Title:             "AAPL earnings beat",
		Body:              "Strong quarter, with a comma",
		PublishedAt:       time.Date(2026, 2, 2, 10, 30, 0, 0, time.UTC),
		Source:            "Example Business",
		NewsType:          "corporate",
		Region:            "US",
		Topics:            []string{"earnings", "guidance"},
		RelatedMarkets:    []string{"AAPL", "QQQ"},
		MacroSensitive:    false,
		LikelyToInfluence: true,
		InfluenceReason:   "Beat consensus.",
	})
	assert.Equal(t, nil, err)
	assert.Equal(t, nil, w.Flush())

	records, err := csv.NewReader(&buf).ReadAll()
	assert.Equal(t, nil, err)
	assert.Equal(t, 2, len(records))

	assert.Equal(t, Header, records[0])

	row := records[1]
	assert.Equal(t, "AAPL earnings beat", row[0])
	assert.Equal(t, "Strong quarter, with a comma", row[1])
	assert.Equal(t, "2026-02-02T10:30:00Z", row[2])
	assert.Equal(t, "earnings;guidance", row[6])
	assert.Equal(t, "AAPL;QQQ", row[7])
	assert.Equal(t, "false", row[8])
	assert.Equal(t, "true", row[9])
}

func TestNewWriter_EmptyExportKeepsHeader(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	assert.Equal(t, nil, w.Flush())

	records, err := csv.NewReader(&buf).ReadAll()
	assert.Equal(t, nil, err)
	assert.Equal(t, 1, len(records))
	assert.Equal(t, Header, records[0])
}

func TestWriteArticle_HeaderOnce(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	a := model.Article{Title: "one", PublishedAt: time.Now()}
	assert.Equal(t, nil, w.WriteArticle(a))
	a.Title = "two"
	assert.Equal(t, nil, w.WriteArticle(a))
	assert.Equal(t, nil, w.Flush())

	records, err := csv.NewReader(&buf).ReadAll()
	assert.Equal(t, nil, err)
	assert.Equal(t, 3, len(records))
}
