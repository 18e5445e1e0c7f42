package youtube

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"

	"github.com/n2p5/ytcc/internal/report"
	"github.com/n2p5/ytcc/internal/youtube/youtubetest"
)

func newTestClient(t *testing.T, srv *youtubetest.Server, opts ...Option) *Client {
	t.Helper()
	opts = append([]Option{WithEndpoint(srv.Endpoint()), WithLocation(time.UTC)}, opts...)
	c, err := NewClient(context.Background(), "test-key", opts...)
	require.NoError(t, err)
	return c
}

func TestResolveUploadsPlaylist(t *testing.T) {
	srv := youtubetest.NewServer(t)
	srv.AddChannel(youtubetest.Channel{ID: "UC1", Uploads: "UU1"})
	c := newTestClient(t, srv)

	got, err := c.ResolveUploadsPlaylist(context.Background(), "UC1")
	require.NoError(t, err)
	assert.Equal(t, "UU1", got)

	reqs := srv.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "/youtube/v3/channels", reqs[0].Path)
	assert.Equal(t, "UC1", reqs[0].ID)
	assert.Equal(t, "test-key", reqs[0].Key)
}

func TestResolveUploadsPlaylistNotFound(t *testing.T) {
	tests := []struct {
		name    string
		channel *youtubetest.Channel
	}{
		{"unknown channel", nil},
		{"no uploads playlist", &youtubetest.Channel{ID: "UC1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := youtubetest.NewServer(t)
			if tt.channel != nil {
				srv.AddChannel(*tt.channel)
			}
			c := newTestClient(t, srv)

			_, err := c.ResolveUploadsPlaylist(context.Background(), "UC1")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestListVideoIDs(t *testing.T) {
	tests := []struct {
		name  string
		pages [][]string
		want  []string
	}{
		{"single page", [][]string{{"a", "b"}}, []string{"a", "b"}},
		{"three pages", [][]string{{"a", "b"}, {"c"}, {"d", "e"}}, []string{"a", "b", "c", "d", "e"}},
		{"empty playlist", nil, []string{}},
		{"empty last page", [][]string{{"a"}, {}}, []string{"a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := youtubetest.NewServer(t)
			srv.AddChannel(youtubetest.Channel{ID: "UC1", Uploads: "UU1", Pages: tt.pages})
			c := newTestClient(t, srv)

			got, err := c.ListVideoIDs(context.Background(), "UU1")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestListVideoIDsFollowsTokens(t *testing.T) {
	srv := youtubetest.NewServer(t)
	srv.AddChannel(youtubetest.Channel{ID: "UC1", Uploads: "UU1", Pages: [][]string{{"a"}, {"b"}, {"c"}}})
	c := newTestClient(t, srv)

	_, err := c.ListVideoIDs(context.Background(), "UU1")
	require.NoError(t, err)

	reqs := srv.Requests()
	require.Len(t, reqs, 3)
	for i, want := range []string{"", "page-1", "page-2"} {
		assert.Equal(t, "/youtube/v3/playlistItems", reqs[i].Path)
		assert.Equal(t, "UU1", reqs[i].PlaylistID)
		assert.Equal(t, want, reqs[i].PageToken)
		assert.Equal(t, MaxPageSize, reqs[i].MaxResults)
	}
}

func TestListVideoIDsPageSize(t *testing.T) {
	srv := youtubetest.NewServer(t)
	srv.AddChannel(youtubetest.Channel{ID: "UC1", Uploads: "UU1", Pages: [][]string{{"a"}}})
	c := newTestClient(t, srv, WithPageSize(10000))

	_, err := c.ListVideoIDs(context.Background(), "UU1")
	require.NoError(t, err)
	assert.Equal(t, MaxPageSize, srv.Requests()[0].MaxResults)
}

func TestListVideoIDsAPIError(t *testing.T) {
	srv := youtubetest.NewServer(t)
	c := newTestClient(t, srv)

	_, err := c.ListVideoIDs(context.Background(), "missing")
	require.Error(t, err)

	var apiErr *googleapi.Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 404, apiErr.Code)
}

func TestFetchVideo(t *testing.T) {
	srv := youtubetest.NewServer(t)
	srv.AddVideos(youtubetest.Video{
		ID:          "v1",
		Title:       "First upload",
		PublishedAt: "2021-03-04T17:08:09Z",
		Comments:    youtubetest.Count(42),
	})
	c := newTestClient(t, srv)

	got, err := c.FetchVideo(context.Background(), "v1")
	require.NoError(t, err)
	assert.Equal(t, report.VideoRecord{
		ID:        "v1",
		Name:      "First upload",
		Published: "2021-03-04 17:08:09",
		Comments:  42,
	}, got)
}

func TestFetchVideoLocation(t *testing.T) {
	srv := youtubetest.NewServer(t)
	srv.AddVideos(youtubetest.Video{ID: "v1", PublishedAt: "2021-03-04T23:30:00Z", Comments: youtubetest.Count(1)})
	c := newTestClient(t, srv, WithLocation(time.FixedZone("UTC+2", 2*60*60)))

	got, err := c.FetchVideo(context.Background(), "v1")
	require.NoError(t, err)
	assert.Equal(t, "2021-03-05 01:30:00", got.Published)
}

func TestFetchVideoErrors(t *testing.T) {
	tests := []struct {
		name    string
		video   *youtubetest.Video
		wantErr error
	}{
		{"not found", nil, ErrNotFound},
		{"no statistics", &youtubetest.Video{ID: "v1", PublishedAt: "2021-03-04T17:08:09Z", NoStatistics: true}, ErrMissingStatistics},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := youtubetest.NewServer(t)
			if tt.video != nil {
				srv.AddVideos(*tt.video)
			}
			c := newTestClient(t, srv)

			_, err := c.FetchVideo(context.Background(), "v1")
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestFetchVideoBadTimestamp(t *testing.T) {
	srv := youtubetest.NewServer(t)
	srv.AddVideos(youtubetest.Video{ID: "v1", PublishedAt: "yesterday", Comments: youtubetest.Count(1)})
	c := newTestClient(t, srv)

	_, err := c.FetchVideo(context.Background(), "v1")
	assert.ErrorContains(t, err, "invalid publish time")
}

func TestRejectedKey(t *testing.T) {
	srv := youtubetest.NewServer(t)
	srv.Key = "good-key"
	srv.AddChannel(youtubetest.Channel{ID: "UC1", Uploads: "UU1"})
	c := newTestClient(t, srv)

	_, err := c.ResolveUploadsPlaylist(context.Background(), "UC1")
	require.Error(t, err)

	var apiErr *googleapi.Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 400, apiErr.Code)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestClampPageSize(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{-1, 1},
		{0, 1},
		{1, 1},
		{50, 50},
		{51, 50},
		{10000, 50},
	}

	for _, tt := range tests {
		if got := ClampPageSize(tt.in); got != tt.want {
			t.Errorf("ClampPageSize(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
