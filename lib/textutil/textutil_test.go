package textutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTrackKey(t *testing.T) {
	require.Equal(t, TrackKey("Song ", "Artist"), TrackKey("song", "ARTIST "))
	require.NotEqual(t, TrackKey("song", "a"), TrackKey("song", "b"))
	require.Equal(t, "song|artist", TrackKey("\tSong\n", " Artist "))
}
