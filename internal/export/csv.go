package export

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"
	"time"

	"newsbag/internal/model"
)

// Header is the fixed column order of the analytical export. Consumers bulk
// load this file, so order and names must not change.
var Header = []string{
	"title", "body", "published_at", "source", "news_type", "region",
	"topics", "related_markets", "macro_sensitive", "likely_to_influence",
	"influence_reason",
}

// setSeparator joins set-valued columns; ';' keeps them out of the way of
// the CSV comma.
const setSeparator = ";"

type Writer struct {
	cw *csv.Writer
}

// NewWriter emits the header row up front, so an export of an empty table is
// still a valid header-only file. Write errors surface from Flush.
func NewWriter(w io.Writer) *Writer {
	cw := csv.NewWriter(w)
	cw.Write(Header)
	return &Writer{cw: cw}
}

// WriteArticle appends one record.
func (w *Writer) WriteArticle(a model.Article) error {
	return w.cw.Write([]string{
		a.Title,
		a.Body,
		a.PublishedAt.UTC().Format(time.RFC3339),
		a.Source,
		a.NewsType,
		a.Region,
		strings.Join(a.Topics, setSeparator),
		strings.Join(a.RelatedMarkets, setSeparator),
		strconv.FormatBool(a.MacroSensitive),
		strconv.FormatBool(a.LikelyToInfluence),
		a.InfluenceReason,
	})
}

func (w *Writer) Flush() error {
	w.cw.Flush()
	return w.cw.Error()
}
