package report

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"
)

// PublishedLayout is the layout of VideoRecord.Published.
const PublishedLayout = "2006-01-02 15:04:05"

// VideoRecord is the per-video entry of a report.
type VideoRecord struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Published string `json:"published"`
	Comments  int64  `json:"comments"`
}

// Report is the document written once per run.
type Report struct {
	ChannelID string        `json:"channelId"`
	Total     int64         `json:"total"`
	Max       int64         `json:"max"`
	Average   float64       `json:"average"`
	Stdev     float64       `json:"stdev"`
	Results   []VideoRecord `json:"results"`
}

// Writer persists reports as timestamped JSON files under Dir.
type Writer struct {
	Dir string
	Now func() time.Time
}

// NewWriter returns a Writer using the local wall clock.
func NewWriter(dir string) *Writer {
	return &Writer{Dir: dir, Now: time.Now}
}

// Write encodes r and writes it to a new file in w.Dir, returning its path.
func (w *Writer) Write(r Report) (string, error) {
	if err := os.MkdirAll(w.Dir, 0755); err != nil {
		return "", fmt.Errorf("error creating results directory: %w", err)
	}

	data, err := Encode(r)
	if err != nil {
		return "", err
	}

	now := time.Now
	if w.Now != nil {
		now = w.Now
	}
	path := filepath.Join(w.Dir, FileName(now()))

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("error writing report: %w", err)
	}
	return path, nil
}

// Encode renders r as two-space indented JSON.
func Encode(r Report) ([]byte, error) {
	if r.Results == nil {
		r.Results = []VideoRecord{}
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("error encoding report: %w", err)
	}
	return data, nil
}

// FileName returns the report file name for t, e.g.
// "Result - 20240131_142501_042.json".
func FileName(t time.Time) string {
	ms := t.Nanosecond() / int(time.Millisecond)
	return fmt.Sprintf("Result - %s_%03d.json", t.Format("20060102_150405"), ms)
}
