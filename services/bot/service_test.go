package bot

import (
	"context"
	"testing"
	"time"

	"playlistwatch/lib/blobstore"
	"playlistwatch/lib/page"
	"playlistwatch/lib/telemetry"
	"playlistwatch/services/watcher"

	"github.com/stretchr/testify/require"
)

type captureTransport struct {
	sent []string
}

func (t *captureTransport) Send(ctx context.Context, target string, text string) error {
	t.sent = append(t.sent, text)
	return nil
}

func setupBot(t *testing.T) (*Service, *captureTransport) {
	telemetry.SetupForTesting(t, "services/bot")

	transport := &captureTransport{}
	w := watcher.NewService(
		blobstore.NewMemory(),
		&page.FixtureBrowser{},
		transport,
		watcher.Options{ChunkPause: time.Millisecond},
	)
	return NewService(w, nil), transport
}

func TestHandleDispatch(t *testing.T) {
	service, _ := setupBot(t)
	ctx := context.Background()

	reply, err := service.Handle(ctx, "12345", "/add https://app.artist.tools/playlist/abc123")
	require.NoError(t, err)
	require.Equal(t, "URL añadida. Total en tu lista: 1", reply)

	reply, err = service.Handle(ctx, "12345", "/list")
	require.NoError(t, err)
	require.Equal(t, "https://app.artist.tools/playlist/abc123", reply)

	reply, err = service.Handle(ctx, "12345", "/remove https://app.artist.tools/playlist/abc123")
	require.NoError(t, err)
	require.Equal(t, "URL eliminada. Quedan: 0", reply)
}

func TestHandleUnknownCommand(t *testing.T) {
	service, _ := setupBot(t)

	reply, err := service.Handle(context.Background(), "12345", "/frobnicate")
	require.NoError(t, err)
	require.Contains(t, reply, "Comando no reconocido")
}

func TestHandleHelpAndStart(t *testing.T) {
	service, _ := setupBot(t)
	ctx := context.Background()

	reply, err := service.Handle(ctx, "12345", "/help")
	require.NoError(t, err)
	require.Contains(t, reply, "/add [URL]")

	reply, err = service.Handle(ctx, "12345", "/start")
	require.NoError(t, err)
	require.Contains(t, reply, "¡Hola!")
	require.Contains(t, reply, "/scrape_now")
}

func TestHandleScrapeNowDeliversThroughTransport(t *testing.T) {
	service, transport := setupBot(t)

	reply, err := service.Handle(context.Background(), "12345", "/scrape_now")
	require.NoError(t, err)
	require.Empty(t, reply)
	require.Equal(t,
		[]string{"Tu lista está vacía. Usa /add <url> para agregar."},
		transport.sent)
}

func TestHandleScheduleCommands(t *testing.T) {
	service, _ := setupBot(t)
	ctx := context.Background()

	reply, err := service.Handle(ctx, "12345", "/show_schedule")
	require.NoError(t, err)
	require.Equal(t, "El scraping diario está desactivado (hora configurada: 09:00).", reply)

	reply, err = service.Handle(ctx, "12345", "/set_schedule 08:15")
	require.NoError(t, err)
	require.Equal(t, "Scraping diario programado a las 08:15.", reply)

	reply, err = service.Handle(ctx, "12345", "/show_schedule")
	require.NoError(t, err)
	require.Equal(t, "Scraping diario programado a las 08:15.", reply)

	reply, err = service.Handle(ctx, "12345", "/disable_schedule")
	require.NoError(t, err)
	require.Equal(t, "Scraping diario desactivado.", reply)
}

func TestSplitCommand(t *testing.T) {
	for _, test := range []struct {
		input   string
		command string
		arg     string
	}{
		{"/list", "/list", ""},
		{"/add  https://x ", "/add", "https://x"},
		{"/list@PlaylistWatchBot", "/list", ""},
		{"  /check  ", "/check", ""},
	} {
		command, arg := splitCommand(test.input)
		require.Equal(t, test.command, command, test.input)
		require.Equal(t, test.arg, arg, test.input)
	}
}
