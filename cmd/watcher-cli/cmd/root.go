package cmd

import (
	"context"
	"fmt"
	"os"

	"playlistwatch/lib/blobstore"
	"playlistwatch/lib/configutil"
	"playlistwatch/lib/page"
	"playlistwatch/services/watcher"

	"github.com/spf13/cobra"
)

type StoreConfig struct {
	// "github" or "sqlite"
	Kind   string                  `json:"kind"`
	Github blobstore.GitHubOptions `json:"github"`
	Sqlite blobstore.SqliteOptions `json:"sqlite"`
}

type Config struct {
	Store StoreConfig        `json:"store"`
	Page  page.StaticOptions `json:"page"`
}

var userId string

var service *watcher.Service

var rootCmd = &cobra.Command{
	Use:   "watcher-cli",
	Short: "watcher-cli manages playlist watch lists and runs reports from the terminal.",
}

// stdoutTransport prints report chunks instead of messaging anyone.
type stdoutTransport struct{}

func (stdoutTransport) Send(ctx context.Context, target string, text string) error {
	fmt.Println(text)
	return nil
}

func Execute() {
	rootCmd.PersistentFlags().StringVarP(&userId, "user", "u", "", "the user whose data to operate on")
	rootCmd.MarkPersistentFlagRequired("user")

	config, err := configutil.ReadRecursively[Config]("config.json5")
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to read config:", err)
		os.Exit(1)
	}

	var store blobstore.Store
	if config.Store.Kind == "github" {
		store = blobstore.NewGitHub(config.Store.Github)
	} else {
		store, err = blobstore.NewSqlite(config.Store.Sqlite)
		if err != nil {
			fmt.Fprintln(os.Stderr, "failed to open store:", err)
			os.Exit(1)
		}
	}

	service = watcher.NewService(
		store,
		page.NewStaticBrowser(config.Page),
		stdoutTransport{},
		watcher.Options{ChunkPause: 0},
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
