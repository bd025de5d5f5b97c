// Package watcher ties the pipeline together: it keeps each user's playlist
// list and daily snapshots in a content store, scrapes the configured
// playlists, diffs today against yesterday and delivers the report.
package watcher

import (
	"context"
	"fmt"
	"time"

	"playlistwatch/lib/blobstore"
	"playlistwatch/lib/page"
	"playlistwatch/lib/telemetry"
)

var tracer = telemetry.Tracer("services/watcher")

// PlaylistUrlPrefix is the only accepted origin for watched playlists.
const PlaylistUrlPrefix = "https://app.artist.tools/playlist/"

// MaxMessageLength bounds one delivered chunk; Telegram rejects longer
// messages.
const MaxMessageLength = 4000

// Transport delivers one bounded chunk of report text to a user.
type Transport interface {
	Send(ctx context.Context, target string, text string) error
}

type Options struct {
	// pause between consecutive chunk deliveries, to respect the
	// transport's burst limits
	ChunkPause time.Duration
	// overrides time.Now in tests
	Now func() time.Time
}

type Service struct {
	store     blobstore.Store
	browser   page.Browser
	transport Transport
	opts      Options
}

func NewService(store blobstore.Store, browser page.Browser, transport Transport, opts Options) *Service {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.ChunkPause == 0 {
		opts.ChunkPause = time.Second
	}
	return &Service{
		store:     store,
		browser:   browser,
		transport: transport,
		opts:      opts,
	}
}

func playlistsKey(userId string) string {
	return fmt.Sprintf("playlists/%s.txt", userId)
}

func dayKey(userId, date string) string {
	return fmt.Sprintf("data/%s/%s.json", userId, date)
}

func scheduleKey(userId string) string {
	return fmt.Sprintf("schedule/%s.json", userId)
}

func (s *Service) today() string {
	return s.opts.Now().UTC().Format("2006-01-02")
}

func (s *Service) yesterday() string {
	return s.opts.Now().UTC().AddDate(0, 0, -1).Format("2006-01-02")
}
