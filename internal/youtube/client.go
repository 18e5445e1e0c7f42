package youtube

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/api/googleapi/transport"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// MaxPageSize is the largest page the playlistItems endpoint will return.
const MaxPageSize = 50

var (
	// ErrNotFound reports a channel, playlist or video the API did not return.
	ErrNotFound = errors.New("not found")
	// ErrMissingStatistics reports a video returned without its statistics.
	ErrMissingStatistics = errors.New("missing statistics")
)

// Client wraps the YouTube API service.
type Client struct {
	Service *youtube.Service

	pageSize int64
	location *time.Location
	log      zerolog.Logger
}

type settings struct {
	endpoint  string
	transport http.RoundTripper
	pageSize  int
	location  *time.Location
	log       zerolog.Logger
}

// Option configures a Client.
type Option func(*settings)

// WithEndpoint points the client at another API root, e.g. a test server.
func WithEndpoint(url string) Option {
	return func(s *settings) { s.endpoint = url }
}

// WithTransport sets the round tripper the API key transport wraps.
func WithTransport(rt http.RoundTripper) Option {
	return func(s *settings) { s.transport = rt }
}

// WithPageSize sets the playlist page size, clamped to 1..MaxPageSize.
func WithPageSize(n int) Option {
	return func(s *settings) { s.pageSize = n }
}

// WithLocation sets the zone publish timestamps are rendered in.
func WithLocation(loc *time.Location) Option {
	return func(s *settings) {
		if loc != nil {
			s.location = loc
		}
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *settings) { s.log = l }
}

// NewClient creates a YouTube API client authenticated with a static API key.
func NewClient(ctx context.Context, apiKey string, opts ...Option) (*Client, error) {
	s := settings{
		pageSize: MaxPageSize,
		location: time.Local,
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&s)
	}

	httpClient := &http.Client{
		Transport: &transport.APIKey{Key: apiKey, Transport: s.transport},
	}
	clientOpts := []option.ClientOption{option.WithHTTPClient(httpClient)}
	if s.endpoint != "" {
		clientOpts = append(clientOpts, option.WithEndpoint(s.endpoint))
	}

	service, err := youtube.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create YouTube service: %w", err)
	}

	return &Client{
		Service:  service,
		pageSize: int64(ClampPageSize(s.pageSize)),
		location: s.location,
		log:      s.log,
	}, nil
}

// ClampPageSize forces n into 1..MaxPageSize.
func ClampPageSize(n int) int {
	switch {
	case n < 1:
		return 1
	case n > MaxPageSize:
		return MaxPageSize
	}
	return n
}
