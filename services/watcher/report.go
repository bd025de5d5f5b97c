package watcher

import (
	"fmt"
	"strings"

	"playlistwatch/lib/scrapers/artisttools"
	"playlistwatch/lib/streamfmt"
)

// SummaryEntry is one playlist's line in the aggregate summary block.
type SummaryEntry struct {
	Id      string
	Tracks  int
	Streams string
}

// RenderPlaylistReport renders one playlist's section of the report. Error
// snapshots get a short error section instead of change lines.
func RenderPlaylistReport(snapshot artisttools.Snapshot, changes []Change) string {
	var lines []string

	lines = append(lines, "Reporte de artist.tools")
	lines = append(lines, fmt.Sprintf("Playlist: %s", artisttools.PlaylistId(snapshot.URL)))

	totalTracks := snapshot.TotalTracks
	if totalTracks == 0 {
		totalTracks = len(snapshot.Tracks)
	}
	totalStreams := snapshot.TotalStreams
	if totalStreams == "" {
		totalStreams = "N/A"
	}
	lines = append(lines, fmt.Sprintf("%d tracks | %s total streams", totalTracks, totalStreams))
	lines = append(lines, "")

	if snapshot.Error != "" {
		lines = append(lines, fmt.Sprintf("Error: %s", snapshot.Error))
		lines = append(lines, "")
		return strings.Join(lines, "\n")
	}

	lines = append(lines, "Cambios desde ayer:")
	for _, change := range changes {
		streams := streamfmt.FormatGrouped(streamfmt.ParseCount(change.Track.Streams))

		var annotation string
		switch change.Kind {
		case ChangeNew:
			annotation = "nueva"
		case ChangeUnchanged:
			annotation = "sin cambios"
		case ChangeIncrease:
			annotation = fmt.Sprintf("+%s streams", streamfmt.FormatGrouped(change.Delta))
		case ChangeDecrease:
			annotation = fmt.Sprintf("%s streams", streamfmt.FormatGrouped(change.Delta))
		}

		lines = append(lines, fmt.Sprintf(
			"%s by %s: %s streams (%s)",
			change.Track.Name, change.Track.Artist, streams, annotation,
		))
	}

	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

// RenderSummary renders the aggregate block appended after every per-
// playlist section.
func RenderSummary(entries []SummaryEntry) string {
	summary := "\nResumen General\n"
	for _, entry := range entries {
		summary += fmt.Sprintf("Playlist: %s\n", entry.Id)
		summary += fmt.Sprintf("%d tracks | %s total streams\n\n", entry.Tracks, entry.Streams)
	}
	return summary
}

// ChunkForDelivery splits the run's output into messages of at most
// maxLength characters. Report blocks are packed greedily and never split;
// the summary rides on the last chunk when it fits, otherwise it becomes
// its own chunk. When everything fits in one message, chunking is skipped
// entirely.
func ChunkForDelivery(reports []string, summary string, maxLength int) []string {
	combined := strings.Join(reports, "\n\n") + summary
	if len(combined) <= maxLength {
		return []string{combined}
	}

	var chunks []string
	current := ""
	for _, report := range reports {
		candidate := report
		if current != "" {
			candidate = current + "\n\n" + report
		}
		if len(candidate) > maxLength {
			if current != "" {
				chunks = append(chunks, current)
			}
			current = report
			continue
		}
		current = candidate
	}
	if current != "" {
		chunks = append(chunks, current)
	}

	if len(chunks) > 0 && len(chunks[len(chunks)-1])+len(summary) <= maxLength {
		chunks[len(chunks)-1] += summary
	} else {
		chunks = append(chunks, summary)
	}
	return chunks
}
