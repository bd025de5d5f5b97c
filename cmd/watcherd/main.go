package main

import (
	"time"

	"playlistwatch/lib/blobstore"
	"playlistwatch/lib/configutil"
	"playlistwatch/lib/mailer"
	"playlistwatch/lib/page"
	"playlistwatch/lib/serviceutil"
	"playlistwatch/lib/telegram"
	"playlistwatch/lib/telemetry"
	"playlistwatch/services/bot"
	"playlistwatch/services/watcher"
)

type StoreConfig struct {
	// "github" or "sqlite"
	Kind   string                  `json:"kind"`
	Github blobstore.GitHubOptions `json:"github"`
	Sqlite blobstore.SqliteOptions `json:"sqlite"`
}

type Config struct {
	Store    StoreConfig        `json:"store"`
	Telegram telegram.Options   `json:"telegram"`
	Smtp     mailer.Config      `json:"smtp"`
	Page     page.StaticOptions `json:"page"`

	// seconds between consecutive report chunks
	ChunkPauseSeconds int `json:"chunk_pause_seconds"`
}

func openStore(config StoreConfig) (blobstore.Store, error) {
	if config.Kind == "github" {
		return blobstore.NewGitHub(config.Github), nil
	}
	return blobstore.NewSqlite(config.Sqlite)
}

func main() {
	ctx := serviceutil.SignalContext()

	telemetry.SetupFromEnv(ctx, "watcherd")
	telemetry.InstrumentPerfStats(ctx)
	defer telemetry.Shutdown(ctx)

	config, err := configutil.ReadConfig[Config]("config.json5")
	if err != nil {
		serviceutil.Fatal("failed to read config", err)
	}

	store, err := openStore(config.Store)
	if err != nil {
		serviceutil.Fatal("failed to open store", err)
	}

	client := telegram.NewClient(config.Telegram)

	var transport watcher.Transport = client
	if config.Smtp.Server != "" {
		transport = mailer.NewMailer(config.Smtp)
	}

	service := watcher.NewService(
		store,
		page.NewStaticBrowser(config.Page),
		transport,
		watcher.Options{
			ChunkPause: time.Duration(config.ChunkPauseSeconds) * time.Second,
		},
	)

	go service.RunScheduler(ctx)

	front := bot.NewService(service, client)
	go front.Loop(ctx)

	<-ctx.Done()
}
