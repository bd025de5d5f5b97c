package artisttools

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"playlistwatch/lib/page"
	"playlistwatch/lib/streamfmt"
	"playlistwatch/lib/telemetry"

	"github.com/PuerkitoBio/goquery"
)

var tracer = telemetry.Tracer("scrapers/artisttools")

// MaxTracks caps a snapshot to the page's top entries.
const MaxTracks = 10

const navigateTimeout = time.Second * 30

var (
	totalStreamsRegex = regexp.MustCompile(`(\d+(?:\.\d+)?[KMB]?)\s*Total Streams`)
	trackCountRegex   = regexp.MustCompile(`(\d+)\s*Track Count`)
	artistsRegex      = regexp.MustCompile(`Artists:([^S]+?)Streams:`)
	streamsRegex      = regexp.MustCompile(`Streams:([\d,]+)`)
	positionRegex     = regexp.MustCompile(`Position:(\d+)`)
)

// ScrapePlaylist navigates p to url and extracts a Snapshot. It never
// returns an error: navigation timeouts, broken markup and panics all
// become error snapshots so one bad playlist cannot abort a run.
func ScrapePlaylist(ctx context.Context, p page.Page, url string) (snapshot Snapshot) {
	ctx, span := tracer.Start(ctx, "ScrapePlaylist")
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "scrape panicked", "url", url, "panic", r)
			snapshot = errorSnapshot(url, fmt.Sprintf("%v", r))
		}
	}()

	err := p.Navigate(ctx, url, navigateTimeout)
	if err != nil {
		span.RecordError(err)
		return errorSnapshot(url, err.Error())
	}

	doc := p.Document()
	if pageReportsError(doc) {
		slog.WarnContext(ctx, "page reported a server error", "url", url)
		return errorSnapshot(url, "page reported a server error")
	}

	revealTracksView(ctx, p)
	if err := p.ClickLabel(ctx, "Grid view"); err != nil && !errors.Is(err, page.ErrNoSuchControl) {
		slog.DebugContext(ctx, "grid view not available", "url", url, "err", err)
	}
	// the document may have changed after activations
	doc = p.Document()

	pageStreams := findLabeledValue(doc, "Total Streams", totalStreamsRegex)
	pageCount := 0
	if raw := findLabeledValue(doc, "Track Count", trackCountRegex); raw != "" {
		pageCount, _ = strconv.Atoi(raw)
	}

	tracks := extractTracks(doc)
	sort.SliceStable(tracks, func(i, j int) bool {
		return tracks[i].Position < tracks[j].Position
	})
	if len(tracks) > MaxTracks {
		tracks = tracks[:MaxTracks]
	}

	totalTracks := pageCount
	if totalTracks <= 0 {
		totalTracks = len(tracks)
	}
	totalStreams := pageStreams
	if totalStreams == "" {
		var sum int64
		for _, t := range tracks {
			sum += streamfmt.ParseCount(t.Streams)
		}
		totalStreams = streamfmt.FormatCount(sum)
	}

	return Snapshot{
		PlaylistName: playlistName(doc),
		Tracks:       tracks,
		TotalTracks:  totalTracks,
		TotalStreams: totalStreams,
		URL:          url,
	}
}

func errorSnapshot(url, message string) Snapshot {
	return Snapshot{
		PlaylistName: "Error",
		TotalStreams: "N/A",
		URL:          url,
		Error:        message,
	}
}

func pageReportsError(doc *goquery.Document) bool {
	return doc != nil && strings.Contains(doc.Text(), "Something went wrong")
}

// revealTracksView tries to switch the page to its tracks listing: first
// the anchor whose destination names it, then a scan for a clickable node
// reading exactly "Tracks". Neither existing is fine; some page variants
// open on the listing already.
func revealTracksView(ctx context.Context, p page.Page) {
	err := p.ClickAnchor(ctx, "tracks")
	if err == nil {
		return
	}
	if !errors.Is(err, page.ErrNoSuchControl) {
		slog.DebugContext(ctx, "tracks anchor failed", "err", err)
		return
	}
	if err := p.ClickText(ctx, "Tracks"); err != nil && !errors.Is(err, page.ErrNoSuchControl) {
		slog.DebugContext(ctx, "tracks control failed", "err", err)
	}
}

// findLabeledValue locates an element containing the label text and matches
// the pattern against its parent's text, where the page puts the value.
func findLabeledValue(doc *goquery.Document, label string, pattern *regexp.Regexp) string {
	if doc == nil {
		return ""
	}

	value := ""
	doc.Find("*").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if !strings.Contains(sel.Text(), label) {
			return true
		}
		parent := sel.Parent()
		if parent.Length() == 0 {
			return true
		}
		groups := pattern.FindStringSubmatch(parent.Text())
		if len(groups) < 2 {
			return true
		}
		value = groups[1]
		return false
	})
	return value
}

// extractTracks pulls one Track per card element, skipping cards that are
// missing any of name, artist or stream count.
func extractTracks(doc *goquery.Document) []Track {
	if doc == nil {
		return nil
	}

	var tracks []Track
	doc.Find("div[data-entity-card]").Each(func(i int, card *goquery.Selection) {
		name := strings.TrimSpace(card.Find("h3").First().Text())
		cardText := card.Text()

		artist := ""
		if groups := artistsRegex.FindStringSubmatch(cardText); len(groups) > 1 {
			artist = strings.TrimSpace(groups[1])
		}
		streams := ""
		if groups := streamsRegex.FindStringSubmatch(cardText); len(groups) > 1 {
			streams = groups[1]
		}
		position := i + 1
		if groups := positionRegex.FindStringSubmatch(cardText); len(groups) > 1 {
			position, _ = strconv.Atoi(groups[1])
		}

		if name == "" || artist == "" || streams == "" {
			return
		}
		tracks = append(tracks, Track{
			Name:     name,
			Artist:   artist,
			Streams:  streams,
			Position: position,
		})
	})
	return tracks
}

// playlistName resolution, first strategy that yields a value wins.
var nameStrategies = []func(doc *goquery.Document) string{
	func(doc *goquery.Document) string {
		return strings.TrimSpace(doc.Find("h1").First().Text())
	},
	func(doc *goquery.Document) string {
		title, _, _ := strings.Cut(doc.Find("title").Text(), "|")
		return strings.TrimSpace(title)
	},
}

func playlistName(doc *goquery.Document) string {
	if doc == nil {
		return "Unknown Playlist"
	}
	for _, strategy := range nameStrategies {
		if name := strategy(doc); name != "" {
			return name
		}
	}
	return "Unknown Playlist"
}
