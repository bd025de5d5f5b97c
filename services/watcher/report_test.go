package watcher

import (
	"strings"
	"testing"

	"playlistwatch/lib/scrapers/artisttools"

	"github.com/stretchr/testify/require"
)

func TestRenderPlaylistReport(t *testing.T) {
	snapshot := artisttools.Snapshot{
		URL:          "https://app.artist.tools/playlist/abc123",
		TotalTracks:  25,
		TotalStreams: "3.5K",
	}
	changes := []Change{
		{Kind: ChangeNew, Track: track("X", "Y", "1,000", 1)},
		{Kind: ChangeIncrease, Track: track("Up", "A", "5,000", 2), Delta: 1000},
		{Kind: ChangeDecrease, Track: track("Down", "B", "3,000", 3), Delta: -1000},
		{Kind: ChangeUnchanged, Track: track("Flat", "C", "4,000", 4)},
	}

	report := RenderPlaylistReport(snapshot, changes)

	require.Contains(t, report, "Playlist: abc123")
	require.Contains(t, report, "25 tracks | 3.5K total streams")
	require.Contains(t, report, "X by Y: 1,000 streams (nueva)")
	require.Contains(t, report, "Up by A: 5,000 streams (+1,000 streams)")
	require.Contains(t, report, "Down by B: 3,000 streams (-1,000 streams)")
	require.Contains(t, report, "Flat by C: 4,000 streams (sin cambios)")
}

func TestRenderPlaylistReportError(t *testing.T) {
	snapshot := artisttools.Snapshot{
		URL:          "https://app.artist.tools/playlist/abc123",
		TotalStreams: "N/A",
		Error:        "page reported a server error",
	}

	report := RenderPlaylistReport(snapshot, nil)

	require.Contains(t, report, "Error: page reported a server error")
	require.NotContains(t, report, "Cambios desde ayer")
}

func TestRenderSummary(t *testing.T) {
	summary := RenderSummary([]SummaryEntry{
		{Id: "abc", Tracks: 10, Streams: "1.2M"},
		{Id: "def", Tracks: 5, Streams: "900"},
	})

	require.Contains(t, summary, "Resumen General")
	require.Contains(t, summary, "Playlist: abc")
	require.Contains(t, summary, "10 tracks | 1.2M total streams")
	require.Contains(t, summary, "Playlist: def")
}

func TestChunkForDeliverySingleMessage(t *testing.T) {
	reports := []string{"report one", "report two"}
	summary := "\nsummary"

	chunks := ChunkForDelivery(reports, summary, 4000)

	require.Equal(t, []string{"report one\n\nreport two\nsummary"}, chunks)
}

func TestChunkForDeliverySplits(t *testing.T) {
	a := strings.Repeat("a", 60)
	b := strings.Repeat("b", 60)
	c := strings.Repeat("c", 60)
	summary := "\n" + strings.Repeat("s", 30)

	chunks := ChunkForDelivery([]string{a, b, c}, summary, 100)

	for _, chunk := range chunks {
		require.LessOrEqual(t, len(chunk), 100)
	}
	// blocks are never split across chunks
	joined := strings.Join(chunks, "\x00")
	require.Contains(t, joined, a)
	require.Contains(t, joined, b)
	require.Contains(t, joined, c)
	// summary fits alongside the last report block
	require.Equal(t, c+summary, chunks[len(chunks)-1])
}

func TestChunkForDeliverySummaryOverflowsToOwnChunk(t *testing.T) {
	a := strings.Repeat("a", 90)
	b := strings.Repeat("b", 90)
	summary := "\n" + strings.Repeat("s", 50)

	chunks := ChunkForDelivery([]string{a, b}, summary, 100)

	require.Equal(t, []string{a, b, summary}, chunks)
}
