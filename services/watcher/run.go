package watcher

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"playlistwatch/lib/blobstore"
	"playlistwatch/lib/scrapers/artisttools"

	"github.com/mazen160/go-random"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// DayRecord aggregates every playlist snapshot taken for one user on one
// date. Written once at the end of a run; a re-run on the same date
// overwrites the whole record.
type DayRecord struct {
	Date      string                 `json:"date"`
	Playlists []artisttools.Snapshot `json:"playlists"`
}

// Run scrapes every playlist of userId sequentially on one shared page,
// diffs against yesterday's record, persists today's record and delivers
// the chunked report. The user's identity is always an explicit parameter;
// nothing about the active user lives in package state.
//
// Per-playlist extraction faults become error sections of the report; a
// failed persist is logged but the report is still delivered; a delivery
// failure is the run's failure.
func (s *Service) Run(ctx context.Context, userId string) error {
	ctx, span := tracer.Start(ctx, "Run")
	defer span.End()

	runId, _ := random.String(8)
	span.SetAttributes(
		attribute.String("user", userId),
		attribute.String("run_id", runId),
	)
	log := slog.With("user", userId, "run_id", runId)

	urls, _, err := s.loadUrls(ctx, userId)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to load playlist list")
		return fmt.Errorf("load playlist list: %w", err)
	}
	if len(urls) == 0 {
		return s.transport.Send(ctx, userId,
			"Tu lista está vacía. Usa /add <url> para agregar.")
	}

	yesterday := s.loadDayRecord(ctx, userId, s.yesterday())
	if yesterday == nil {
		log.InfoContext(ctx, "no prior snapshot, everything will be new")
	}

	p, err := s.browser.NewPage()
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("acquire page: %w", err)
	}
	defer p.Close()

	today := DayRecord{Date: s.today()}
	var reports []string
	var summary []SummaryEntry

	for _, url := range urls {
		log.InfoContext(ctx, "scraping playlist", "url", url)

		snapshot := artisttools.ScrapePlaylist(ctx, p, url)
		today.Playlists = append(today.Playlists, snapshot)

		changes := DiffSnapshots(snapshot, previousSnapshot(yesterday, url))
		reports = append(reports, RenderPlaylistReport(snapshot, changes))
		summary = append(summary, SummaryEntry{
			Id:      artisttools.PlaylistId(snapshot.URL),
			Tracks:  snapshot.TotalTracks,
			Streams: snapshot.TotalStreams,
		})
	}

	err = s.saveDayRecord(ctx, userId, today)
	if err != nil {
		// the report is still worth delivering
		log.ErrorContext(ctx, "failed to persist today's record", "err", err)
		span.RecordError(err)
	}

	chunks := ChunkForDelivery(reports, RenderSummary(summary), MaxMessageLength)
	for i, chunk := range chunks {
		if i > 0 {
			select {
			case <-time.After(s.opts.ChunkPause):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		err := s.transport.Send(ctx, userId, chunk)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "delivery failed")
			return fmt.Errorf("deliver chunk %d/%d: %w", i+1, len(chunks), err)
		}
	}

	log.InfoContext(ctx, "run finished",
		"playlists", len(urls), "chunks", len(chunks))
	return nil
}

// Day returns the stored record for a "2006-01-02" date, or today's when
// date is empty. Unlike the run path this surfaces faults, so inspection
// tooling can tell "no record" apart from "store is down".
func (s *Service) Day(ctx context.Context, userId, date string) (DayRecord, error) {
	if date == "" {
		date = s.today()
	}

	obj, err := s.store.Get(ctx, dayKey(userId, date))
	if err != nil {
		return DayRecord{}, err
	}

	var record DayRecord
	err = json.Unmarshal(obj.Data, &record)
	if err != nil {
		return DayRecord{}, fmt.Errorf("record for %s is corrupt: %w", date, err)
	}
	return record, nil
}

// previousSnapshot finds yesterday's snapshot of the same playlist url.
func previousSnapshot(record *DayRecord, url string) *artisttools.Snapshot {
	if record == nil {
		return nil
	}
	for i := range record.Playlists {
		if record.Playlists[i].URL == url {
			return &record.Playlists[i]
		}
	}
	return nil
}

// loadDayRecord treats every failure as "no prior data": a corrupt or
// unreachable yesterday only makes today's tracks all new.
func (s *Service) loadDayRecord(ctx context.Context, userId, date string) *DayRecord {
	obj, err := s.store.Get(ctx, dayKey(userId, date))
	if err != nil {
		if err != blobstore.ErrNotFound {
			slog.WarnContext(ctx, "failed to read prior snapshot",
				"user", userId, "date", date, "err", err)
		}
		return nil
	}

	var record DayRecord
	err = json.Unmarshal(obj.Data, &record)
	if err != nil {
		slog.WarnContext(ctx, "prior snapshot is corrupt",
			"user", userId, "date", date, "err", err)
		return nil
	}
	return &record
}

func (s *Service) saveDayRecord(ctx context.Context, userId string, record DayRecord) error {
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return err
	}
	return s.store.Put(ctx, dayKey(userId, record.Date), data, "")
}
