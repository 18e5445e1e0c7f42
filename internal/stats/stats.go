// Package stats computes comment-count statistics over a channel's videos.
package stats

import (
	"errors"
	"math"

	"github.com/n2p5/ytcc/internal/report"
)

// ErrNoVideos is returned when there is nothing to aggregate.
var ErrNoVideos = errors.New("no videos to aggregate")

// Summary holds the aggregate comment statistics of a run.
type Summary struct {
	Total   int64
	Max     int64
	Average float64
	Stdev   float64
}

// Aggregate computes the total, maximum, mean and population standard
// deviation of the comment counts in records.
func Aggregate(records []report.VideoRecord) (Summary, error) {
	if len(records) == 0 {
		return Summary{}, ErrNoVideos
	}

	s := Summary{Max: records[0].Comments}
	for _, r := range records {
		s.Total += r.Comments
		if r.Comments > s.Max {
			s.Max = r.Comments
		}
	}

	n := float64(len(records))
	s.Average = float64(s.Total) / n

	var sq float64
	for _, r := range records {
		d := float64(r.Comments) - s.Average
		sq += d * d
	}
	s.Stdev = math.Sqrt(sq / n)

	return s, nil
}

// Apply copies s into the statistics fields of r.
func (s Summary) Apply(r *report.Report) {
	r.Total = s.Total
	r.Max = s.Max
	r.Average = s.Average
	r.Stdev = s.Stdev
}
