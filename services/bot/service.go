// Package bot is the Telegram front end: it long-polls for incoming
// commands and dispatches them to the watcher service.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"playlistwatch/lib/telegram"
	"playlistwatch/lib/telemetry"
	"playlistwatch/services/watcher"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = telemetry.Tracer("services/bot")

const helpText = `Comandos disponibles:
/add [URL] - Agrega una playlist de app.artist.tools a tu lista
/remove [URL] - Elimina una playlist de tu lista
/list - Muestra tu lista de playlists
/scrape_now - Genera el reporte de hoy ahora mismo
/set_schedule HH:MM - Programa el reporte diario a esa hora
/show_schedule - Muestra tu horario configurado
/disable_schedule - Desactiva el reporte diario
/help - Muestra este mensaje`

const welcomeText = `¡Hola! Soy el bot de monitoreo de playlists de artist.tools.

` + helpText

type Service struct {
	watcher *watcher.Service
	client  *telegram.Client
}

func NewService(w *watcher.Service, client *telegram.Client) *Service {
	return &Service{watcher: w, client: client}
}

// Loop polls for updates until ctx is cancelled. Each command is handled
// to completion before the next one is read, so a long /scrape_now run
// delays later commands instead of racing them.
func (s *Service) Loop(ctx context.Context) {
	var offset int64
	for ctx.Err() == nil {
		updates, err := s.client.GetUpdates(ctx, offset)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			slog.ErrorContext(ctx, "failed to poll for updates", "err", err)
			continue
		}

		for _, update := range updates {
			offset = update.UpdateId + 1
			if update.Message.Text == "" {
				continue
			}
			userId := fmt.Sprintf("%d", update.Message.Chat.Id)

			reply, err := s.Handle(ctx, userId, update.Message.Text)
			if err != nil {
				slog.ErrorContext(ctx, "command failed", "user", userId, "err", err)
				reply = "Algo salió mal. Intenta de nuevo más tarde."
			}
			if reply == "" {
				continue
			}
			err = s.client.Send(ctx, userId, reply)
			if err != nil {
				slog.ErrorContext(ctx, "failed to reply", "user", userId, "err", err)
			}
		}
	}
}

// Handle runs one command and returns the reply text. An empty reply
// means the command already delivered its output through the watcher's
// transport.
func (s *Service) Handle(ctx context.Context, userId, text string) (string, error) {
	ctx, span := tracer.Start(ctx, "Handle")
	defer span.End()

	command, arg := splitCommand(text)
	span.SetAttributes(attribute.String("user", userId), attribute.String("command", command))

	var reply string
	var err error
	switch command {
	case "/start":
		reply = welcomeText
	case "/help":
		reply = helpText
	case "/add":
		reply, err = s.watcher.Add(ctx, userId, arg)
	case "/remove":
		reply, err = s.watcher.Remove(ctx, userId, arg)
	case "/list":
		reply, err = s.watcher.List(ctx, userId)
	case "/scrape_now", "/check":
		// the run delivers the report itself
		err = s.watcher.Run(ctx, userId)
	case "/set_schedule":
		reply, err = s.watcher.SetSchedule(ctx, userId, arg)
	case "/show_schedule":
		reply, err = s.showSchedule(ctx, userId)
	case "/disable_schedule":
		reply, err = s.watcher.DisableSchedule(ctx, userId)
	default:
		reply = "Comando no reconocido. Usa /help para ver los comandos."
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	return reply, nil
}

func (s *Service) showSchedule(ctx context.Context, userId string) (string, error) {
	schedule, err := s.watcher.GetSchedule(ctx, userId)
	if err != nil {
		return "", err
	}
	if !schedule.Enabled {
		return fmt.Sprintf("El scraping diario está desactivado (hora configurada: %s).", schedule.Time), nil
	}
	return fmt.Sprintf("Scraping diario programado a las %s.", schedule.Time), nil
}

// splitCommand separates "/add https://... " into the command and its
// argument, dropping a "@BotName" mention suffix on the command.
func splitCommand(text string) (string, string) {
	text = strings.TrimSpace(text)
	command, arg, _ := strings.Cut(text, " ")
	command, _, _ = strings.Cut(command, "@")
	return command, strings.TrimSpace(arg)
}
