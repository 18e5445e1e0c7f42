// Package pipeline runs one channel report from channel lookup to the
// written file.
package pipeline

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/n2p5/ytcc/internal/report"
	"github.com/n2p5/ytcc/internal/stats"
)

// Source is the platform the pipeline reads from.
type Source interface {
	ResolveUploadsPlaylist(ctx context.Context, channelID string) (string, error)
	ListVideoIDs(ctx context.Context, playlistID string) ([]string, error)
	FetchVideo(ctx context.Context, videoID string) (report.VideoRecord, error)
}

// Sink persists a finished report and returns where it went.
type Sink interface {
	Write(r report.Report) (string, error)
}

// Pipeline wires a Source to a Sink.
type Pipeline struct {
	Source Source
	Sink   Sink
	// Out receives the progress lines.
	Out io.Writer
	Log zerolog.Logger
}

// Run builds and writes the report for channelID. Each stage consumes the
// complete output of the previous one; nothing is written unless every
// stage succeeds.
func (p *Pipeline) Run(ctx context.Context, channelID string) (string, error) {
	uploads, err := p.Source.ResolveUploadsPlaylist(ctx, channelID)
	if err != nil {
		return "", err
	}

	fmt.Fprintf(p.Out, "Requesting videos for channel %s\n", channelID)

	videoIDs, err := p.Source.ListVideoIDs(ctx, uploads)
	if err != nil {
		return "", err
	}

	fmt.Fprintf(p.Out, "Videos to request : %d\n", len(videoIDs))

	results := make([]report.VideoRecord, 0, len(videoIDs))
	for _, id := range videoIDs {
		fmt.Fprintf(p.Out, "Requesting data for %s\n", id)

		rec, err := p.Source.FetchVideo(ctx, id)
		if err != nil {
			return "", err
		}
		p.Log.Debug().Str("video", id).Int64("comments", rec.Comments).Msg("fetched video")
		results = append(results, rec)
	}

	summary, err := stats.Aggregate(results)
	if err != nil {
		return "", fmt.Errorf("channel %s: %w", channelID, err)
	}

	r := report.Report{ChannelID: channelID, Results: results}
	summary.Apply(&r)

	path, err := p.Sink.Write(r)
	if err != nil {
		return "", err
	}

	fmt.Fprintf(p.Out, "Finished, results written in : %s\n", path)
	return path, nil
}
