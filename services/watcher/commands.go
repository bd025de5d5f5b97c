package watcher

import (
	"context"
	"fmt"
	"strings"

	"playlistwatch/lib/blobstore"

	"github.com/antzucaro/matchr"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Command entry points for the chat front end and the CLI. Validation
// problems come back as the reply string, not as errors: only store
// failures are errors.

func (s *Service) loadUrls(ctx context.Context, userId string) ([]string, string, error) {
	obj, err := s.store.Get(ctx, playlistsKey(userId))
	if err == blobstore.ErrNotFound {
		// never having added a playlist is not a fault
		return nil, "", nil
	}
	if err != nil {
		return nil, "", err
	}

	var urls []string
	for _, line := range strings.Split(string(obj.Data), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			urls = append(urls, line)
		}
	}
	return urls, obj.Revision, nil
}

func (s *Service) saveUrls(ctx context.Context, userId string, urls []string, revision string) error {
	return s.store.Put(ctx, playlistsKey(userId), []byte(strings.Join(urls, "\n")), revision)
}

// Add appends a playlist url to the user's list.
func (s *Service) Add(ctx context.Context, userId, url string) (string, error) {
	ctx, span := tracer.Start(ctx, "Add")
	defer span.End()
	span.SetAttributes(attribute.String("user", userId), attribute.String("url", url))

	url = strings.TrimSpace(url)
	if url == "" {
		return "Uso: /add [URL]", nil
	}
	if !strings.HasPrefix(url, PlaylistUrlPrefix) {
		return "Debe ser una URL válida de app.artist.tools", nil
	}

	urls, revision, err := s.loadUrls(ctx, userId)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	for _, existing := range urls {
		if existing == url {
			return "Esa URL ya está en la lista.", nil
		}
	}

	urls = append(urls, url)
	err = s.saveUrls(ctx, userId, urls, revision)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	return fmt.Sprintf("URL añadida. Total en tu lista: %d", len(urls)), nil
}

// Remove deletes a playlist url from the user's list. When the url isn't
// there, the reply suggests the closest stored one.
func (s *Service) Remove(ctx context.Context, userId, url string) (string, error) {
	ctx, span := tracer.Start(ctx, "Remove")
	defer span.End()
	span.SetAttributes(attribute.String("user", userId), attribute.String("url", url))

	url = strings.TrimSpace(url)
	if url == "" {
		return "Uso: /remove [URL]", nil
	}

	urls, revision, err := s.loadUrls(ctx, userId)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	var kept []string
	for _, existing := range urls {
		if existing != url {
			kept = append(kept, existing)
		}
	}
	if len(kept) == len(urls) {
		reply := "Esa URL no está en tu lista."
		if suggestion := closestUrl(url, urls); suggestion != "" {
			reply += fmt.Sprintf(" ¿Quisiste decir %s?", suggestion)
		}
		return reply, nil
	}

	err = s.saveUrls(ctx, userId, kept, revision)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	return fmt.Sprintf("URL eliminada. Quedan: %d", len(kept)), nil
}

// List returns the user's raw url list, or an empty-list marker.
func (s *Service) List(ctx context.Context, userId string) (string, error) {
	ctx, span := tracer.Start(ctx, "List")
	defer span.End()
	span.SetAttributes(attribute.String("user", userId))

	urls, _, err := s.loadUrls(ctx, userId)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	if len(urls) == 0 {
		return "Tu lista está vacía.", nil
	}
	return strings.Join(urls, "\n"), nil
}

// Urls exposes the raw list for the CLI.
func (s *Service) Urls(ctx context.Context, userId string) ([]string, error) {
	urls, _, err := s.loadUrls(ctx, userId)
	return urls, err
}

const suggestionThreshold = 0.8

func closestUrl(input string, urls []string) string {
	best := ""
	bestSimilarity := suggestionThreshold
	for _, candidate := range urls {
		similarity := matchr.JaroWinkler(input, candidate, false)
		if similarity > bestSimilarity {
			bestSimilarity = similarity
			best = candidate
		}
	}
	return best
}
