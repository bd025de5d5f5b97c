package watcher

import (
	"playlistwatch/lib/scrapers/artisttools"
	"playlistwatch/lib/streamfmt"
	"playlistwatch/lib/textutil"
)

type ChangeKind int

const (
	ChangeNew ChangeKind = iota
	ChangeIncrease
	ChangeDecrease
	ChangeUnchanged
)

// Change classifies one of today's tracks against yesterday's snapshot.
// Computed fresh every run; only the rendered text is ever persisted or
// delivered.
type Change struct {
	Kind  ChangeKind
	Track artisttools.Track
	// today - yesterday; 0 for new and unchanged tracks
	Delta int64
}

// DiffSnapshots classifies every track of today against yesterday, in
// today's order. A nil or empty yesterday means everything is new. Tracks
// that dropped out since yesterday produce no record.
func DiffSnapshots(today artisttools.Snapshot, yesterday *artisttools.Snapshot) []Change {
	changes := make([]Change, 0, len(today.Tracks))

	if yesterday == nil || len(yesterday.Tracks) == 0 {
		for _, track := range today.Tracks {
			changes = append(changes, Change{Kind: ChangeNew, Track: track})
		}
		return changes
	}

	// last-write-wins on duplicate identities, matching how the page
	// itself resolves duplicates
	previous := make(map[string]artisttools.Track, len(yesterday.Tracks))
	for _, track := range yesterday.Tracks {
		previous[textutil.TrackKey(track.Name, track.Artist)] = track
	}

	for _, track := range today.Tracks {
		before, ok := previous[textutil.TrackKey(track.Name, track.Artist)]
		if !ok {
			changes = append(changes, Change{Kind: ChangeNew, Track: track})
			continue
		}

		delta := streamfmt.ParseCount(track.Streams) - streamfmt.ParseCount(before.Streams)
		kind := ChangeUnchanged
		if delta > 0 {
			kind = ChangeIncrease
		} else if delta < 0 {
			kind = ChangeDecrease
		}
		changes = append(changes, Change{Kind: kind, Track: track, Delta: delta})
	}
	return changes
}
