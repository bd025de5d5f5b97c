// Package artisttools extracts the top-ranked tracks from an artist.tools
// playlist page. The page markup is not a stable API: every step is a
// best-effort heuristic, and a scrape degrades (fewer tracks, fallback
// aggregates, an error snapshot) rather than failing.
package artisttools

import "regexp"

// Track is one ranked entry of a playlist at scrape time. Streams keeps the
// page's raw text ("4,238", "3.5K"); parsing happens where arithmetic does.
type Track struct {
	Name     string `json:"name"`
	Artist   string `json:"artist"`
	Streams  string `json:"streams"`
	Position int    `json:"position"`
}

// Snapshot is the state of one playlist at one run. When Error is set the
// snapshot is a failure marker: Tracks is empty and the other fields carry
// placeholders.
type Snapshot struct {
	PlaylistName string  `json:"playlistName"`
	Tracks       []Track `json:"tracks"`
	TotalTracks  int     `json:"totalTracks"`
	TotalStreams string  `json:"totalStreams"`
	URL          string  `json:"url"`
	Error        string  `json:"error,omitempty"`
}

var playlistIdRegex = regexp.MustCompile(`playlist/([a-zA-Z0-9]+)`)

// PlaylistId derives the short display id from a playlist URL.
func PlaylistId(url string) string {
	groups := playlistIdRegex.FindStringSubmatch(url)
	if len(groups) < 2 {
		return "Unknown"
	}
	return groups[1]
}
