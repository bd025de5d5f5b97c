package watcher

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"playlistwatch/lib/blobstore"
	"playlistwatch/lib/page"
	"playlistwatch/lib/scrapers/artisttools"
	"playlistwatch/lib/testutil"

	"github.com/stretchr/testify/require"
)

const (
	testUserId = "12345"
	urlOne     = "https://app.artist.tools/playlist/abc123"
	urlTwo     = "https://app.artist.tools/playlist/def456"
)

type captureTransport struct {
	targets []string
	sent    []string
	fail    error
}

func (c *captureTransport) Send(ctx context.Context, target, text string) error {
	if c.fail != nil {
		return c.fail
	}
	c.targets = append(c.targets, target)
	c.sent = append(c.sent, text)
	return nil
}

const trackPage = `<html><body><h1>Test Playlist</h1>
	<div data-entity-card><h3>X</h3><p>Artists: Y Streams:1,000 Position:1</p></div>
</body></html>`

func newTestService(t *testing.T, store blobstore.Store, pages map[string]string, transport Transport) *Service {
	testutil.SetupService(t, testutil.ServiceParams{Name: "services/watcher"})

	return NewService(
		store,
		&page.FixtureBrowser{Pages: pages},
		transport,
		Options{
			ChunkPause: time.Millisecond,
			Now: func() time.Time {
				return time.Date(2026, 2, 3, 10, 0, 0, 0, time.UTC)
			},
		},
	)
}

func TestRunFirstEver(t *testing.T) {
	store := blobstore.NewMemory()
	transport := &captureTransport{}
	service := newTestService(t, store, map[string]string{urlOne: trackPage}, transport)

	ctx := context.Background()
	err := store.Put(ctx, "playlists/"+testUserId+".txt", []byte(urlOne+"\n"), "")
	require.NoError(t, err)

	err = service.Run(ctx, testUserId)
	require.NoError(t, err)

	require.Equal(t, []string{testUserId}, transport.targets)
	require.Len(t, transport.sent, 1)
	require.Contains(t, transport.sent[0], "X by Y: 1,000 streams (nueva)")
	require.Contains(t, transport.sent[0], "Resumen General")

	obj, err := store.Get(ctx, "data/"+testUserId+"/2026-02-03.json")
	require.NoError(t, err)

	var record DayRecord
	require.NoError(t, json.Unmarshal(obj.Data, &record))
	require.Equal(t, "2026-02-03", record.Date)
	require.Len(t, record.Playlists, 1)
	require.Len(t, record.Playlists[0].Tracks, 1)
	require.Equal(t, "X", record.Playlists[0].Tracks[0].Name)
}

func TestRunDiffsAgainstYesterday(t *testing.T) {
	store := blobstore.NewMemory()
	transport := &captureTransport{}
	service := newTestService(t, store, map[string]string{urlOne: trackPage}, transport)

	ctx := context.Background()
	err := store.Put(ctx, "playlists/"+testUserId+".txt", []byte(urlOne), "")
	require.NoError(t, err)

	yesterday := DayRecord{
		Date: "2026-02-02",
		Playlists: []artisttools.Snapshot{{
			URL:    urlOne,
			Tracks: []artisttools.Track{{Name: "X", Artist: "Y", Streams: "900", Position: 1}},
		}},
	}
	data, err := json.Marshal(yesterday)
	require.NoError(t, err)
	err = store.Put(ctx, "data/"+testUserId+"/2026-02-02.json", data, "")
	require.NoError(t, err)

	err = service.Run(ctx, testUserId)
	require.NoError(t, err)

	require.Contains(t, transport.sent[0], "X by Y: 1,000 streams (+100 streams)")
}

func TestRunExtractionFaultKeepsGoing(t *testing.T) {
	store := blobstore.NewMemory()
	transport := &captureTransport{}
	// urlTwo is unreachable: navigation fails for it
	service := newTestService(t, store, map[string]string{urlOne: trackPage}, transport)

	ctx := context.Background()
	err := store.Put(ctx, "playlists/"+testUserId+".txt", []byte(urlTwo+"\n"+urlOne), "")
	require.NoError(t, err)

	err = service.Run(ctx, testUserId)
	require.NoError(t, err)

	full := transport.sent[0]
	require.Contains(t, full, "Playlist: def456")
	require.Contains(t, full, "Error:")
	require.Contains(t, full, "X by Y: 1,000 streams (nueva)")

	// the error snapshot is persisted alongside the good one
	obj, err := store.Get(ctx, "data/"+testUserId+"/2026-02-03.json")
	require.NoError(t, err)
	var record DayRecord
	require.NoError(t, json.Unmarshal(obj.Data, &record))
	require.Len(t, record.Playlists, 2)
	require.NotEmpty(t, record.Playlists[0].Error)
	require.Empty(t, record.Playlists[1].Error)
}

func TestRunEmptyList(t *testing.T) {
	transport := &captureTransport{}
	service := newTestService(t, blobstore.NewMemory(), nil, transport)

	err := service.Run(context.Background(), testUserId)
	require.NoError(t, err)

	require.Len(t, transport.sent, 1)
	require.Contains(t, transport.sent[0], "Tu lista está vacía")
}

type faultyStore struct {
	blobstore.Store
	getErr error
	putErr error
}

func (f *faultyStore) Get(ctx context.Context, key string) (blobstore.Object, error) {
	if f.getErr != nil {
		return blobstore.Object{}, f.getErr
	}
	return f.Store.Get(ctx, key)
}

func (f *faultyStore) Put(ctx context.Context, key string, data []byte, rev string) error {
	if f.putErr != nil {
		return f.putErr
	}
	return f.Store.Put(ctx, key, data, rev)
}

func TestRunListLoadFailureIsFatal(t *testing.T) {
	store := &faultyStore{Store: blobstore.NewMemory(), getErr: errors.New("store down")}
	transport := &captureTransport{}
	service := newTestService(t, store, nil, transport)

	err := service.Run(context.Background(), testUserId)
	require.Error(t, err)
	require.Empty(t, transport.sent)
}

func TestRunPersistFailureStillDelivers(t *testing.T) {
	memory := blobstore.NewMemory()
	ctx := context.Background()
	err := memory.Put(ctx, "playlists/"+testUserId+".txt", []byte(urlOne), "")
	require.NoError(t, err)

	store := &faultyStore{Store: memory, putErr: errors.New("store down")}
	transport := &captureTransport{}
	service := newTestService(t, store, map[string]string{urlOne: trackPage}, transport)

	err = service.Run(ctx, testUserId)
	require.NoError(t, err)
	require.Len(t, transport.sent, 1)
}

func TestRunDeliveryFailureIsTheRunsFailure(t *testing.T) {
	store := blobstore.NewMemory()
	ctx := context.Background()
	err := store.Put(ctx, "playlists/"+testUserId+".txt", []byte(urlOne), "")
	require.NoError(t, err)

	transport := &captureTransport{fail: errors.New("blocked by transport")}
	service := newTestService(t, store, map[string]string{urlOne: trackPage}, transport)

	err = service.Run(ctx, testUserId)
	require.Error(t, err)

	// the day record was still persisted before delivery
	_, err = store.Get(ctx, "data/"+testUserId+"/2026-02-03.json")
	require.NoError(t, err)
}
