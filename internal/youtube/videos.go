package youtube

import (
	"context"
	"fmt"
	"time"

	"github.com/n2p5/ytcc/internal/report"
)

// ResolveUploadsPlaylist returns the id of the playlist holding every upload
// of channelID.
func (c *Client) ResolveUploadsPlaylist(ctx context.Context, channelID string) (string, error) {
	channelCall := c.Service.Channels.List([]string{"contentDetails"}).
		Id(channelID).
		Context(ctx)
	channelResponse, err := channelCall.Do()
	if err != nil {
		return "", fmt.Errorf("error retrieving channel details: %w", err)
	}
	if len(channelResponse.Items) == 0 {
		return "", fmt.Errorf("channel %s: %w", channelID, ErrNotFound)
	}

	details := channelResponse.Items[0].ContentDetails
	if details == nil || details.RelatedPlaylists == nil || details.RelatedPlaylists.Uploads == "" {
		return "", fmt.Errorf("uploads playlist of channel %s: %w", channelID, ErrNotFound)
	}

	uploads := details.RelatedPlaylists.Uploads
	c.log.Debug().Str("channel", channelID).Str("playlist", uploads).Msg("resolved uploads playlist")
	return uploads, nil
}

// ListVideoIDs walks every page of playlistID and returns the referenced
// video ids in server order.
func (c *Client) ListVideoIDs(ctx context.Context, playlistID string) ([]string, error) {
	videoIDs := []string{}
	nextPageToken := ""

	for {
		playlistCall := c.Service.PlaylistItems.List([]string{"snippet"}).
			PlaylistId(playlistID).
			MaxResults(c.pageSize).
			Context(ctx)
		if nextPageToken != "" {
			playlistCall = playlistCall.PageToken(nextPageToken)
		}

		playlistResponse, err := playlistCall.Do()
		if err != nil {
			return nil, fmt.Errorf("error retrieving playlist items: %w", err)
		}

		for _, item := range playlistResponse.Items {
			if item.Snippet == nil || item.Snippet.ResourceId == nil {
				return nil, fmt.Errorf("video of playlist item %s: %w", item.Id, ErrNotFound)
			}
			videoIDs = append(videoIDs, item.Snippet.ResourceId.VideoId)
		}
		c.log.Debug().
			Int("items", len(playlistResponse.Items)).
			Str("next_page", playlistResponse.NextPageToken).
			Msg("playlist page")

		nextPageToken = playlistResponse.NextPageToken
		if nextPageToken == "" {
			break
		}
	}

	return videoIDs, nil
}

// FetchVideo retrieves the title, publish time and comment count of videoID.
func (c *Client) FetchVideo(ctx context.Context, videoID string) (report.VideoRecord, error) {
	call := c.Service.Videos.List([]string{"snippet", "statistics"}).
		Id(videoID).
		Context(ctx)
	response, err := call.Do()
	if err != nil {
		return report.VideoRecord{}, fmt.Errorf("error retrieving video details: %w", err)
	}

	if len(response.Items) == 0 {
		return report.VideoRecord{}, fmt.Errorf("video %s: %w", videoID, ErrNotFound)
	}

	video := response.Items[0]
	if video.Snippet == nil {
		return report.VideoRecord{}, fmt.Errorf("snippet of video %s: %w", videoID, ErrNotFound)
	}
	if video.Statistics == nil {
		return report.VideoRecord{}, fmt.Errorf("video %s: %w", videoID, ErrMissingStatistics)
	}

	published, err := c.formatPublished(video.Snippet.PublishedAt)
	if err != nil {
		return report.VideoRecord{}, fmt.Errorf("video %s: %w", videoID, err)
	}

	return report.VideoRecord{
		ID:        videoID,
		Name:      video.Snippet.Title,
		Published: published,
		Comments:  int64(video.Statistics.CommentCount),
	}, nil
}

func (c *Client) formatPublished(publishedAt string) (string, error) {
	t, err := time.Parse(time.RFC3339, publishedAt)
	if err != nil {
		return "", fmt.Errorf("invalid publish time %q: %w", publishedAt, err)
	}
	return t.In(c.location).Format(report.PublishedLayout), nil
}
