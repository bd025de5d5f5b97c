package textutil

import "strings"

// NormalizeName lowercases and trims display text so cosmetic differences
// between runs ("Song " vs "song") don't break matching.
func NormalizeName(name string) string {
	return strings.ToLower(strings.Trim(name, " \n\t"))
}

// TrackKey is the identity of a track across runs: normalized name and
// artist. Position is deliberately not part of identity.
func TrackKey(name, artist string) string {
	return NormalizeName(name) + "|" + NormalizeName(artist)
}
