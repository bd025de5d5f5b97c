package cmd

import (
	"fmt"
	"log"
	"os"

	"playlistwatch/lib/scrapers/artisttools"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(removeCmd)
	rootCmd.AddCommand(listCmd)
}

var addCmd = &cobra.Command{
	Use:   "add [url]",
	Short: "Adds a playlist url to the user's watch list.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		reply, err := service.Add(cmd.Context(), userId, args[0])
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(reply)
	},
}

var removeCmd = &cobra.Command{
	Use:   "remove [url]",
	Short: "Removes a playlist url from the user's watch list.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		reply, err := service.Remove(cmd.Context(), userId, args[0])
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(reply)
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Prints the user's watch list.",
	Run: func(cmd *cobra.Command, args []string) {
		urls, err := service.Urls(cmd.Context(), userId)
		if err != nil {
			log.Fatal(err)
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"#", "Playlist", "Url"})
		for i, url := range urls {
			t.AppendRow(table.Row{i + 1, artisttools.PlaylistId(url), url})
		}
		t.SetStyle(table.StyleRounded)
		t.Render()
	},
}
