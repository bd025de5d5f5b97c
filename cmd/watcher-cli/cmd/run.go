package cmd

import (
	"log"
	"os"

	"playlistwatch/lib/scrapers/artisttools"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var dayDate string

func init() {
	rootCmd.AddCommand(runCmd)

	dayCmd.Flags().StringVarP(&dayDate, "date", "d", "", "the date to inspect (YYYY-MM-DD, defaults to today)")
	rootCmd.AddCommand(dayCmd)
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Scrapes the user's playlists now and prints the report.",
	Run: func(cmd *cobra.Command, args []string) {
		err := service.Run(cmd.Context(), userId)
		if err != nil {
			log.Fatal(err)
		}
	},
}

var dayCmd = &cobra.Command{
	Use:   "day",
	Short: "Prints the stored snapshot tables for one date.",
	Run: func(cmd *cobra.Command, args []string) {
		record, err := service.Day(cmd.Context(), userId, dayDate)
		if err != nil {
			log.Fatal(err)
		}

		for _, snapshot := range record.Playlists {
			t := table.NewWriter()
			t.SetOutputMirror(os.Stdout)
			t.SetTitle("%s (%s)", artisttools.PlaylistId(snapshot.URL), record.Date)

			if snapshot.Error != "" {
				t.AppendHeader(table.Row{"Error"})
				t.AppendRow(table.Row{snapshot.Error})
				t.SetStyle(table.StyleRounded)
				t.Render()
				continue
			}

			t.AppendHeader(table.Row{"#", "Track", "Artist", "Streams"})
			for _, track := range snapshot.Tracks {
				t.AppendRow(table.Row{track.Position, track.Name, track.Artist, track.Streams})
			}
			t.AppendFooter(table.Row{
				"", "", "Total", snapshot.TotalStreams,
			})
			t.SetStyle(table.StyleRounded)
			t.Render()
		}
	},
}
