package blobstore

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	"playlistwatch/lib/telemetry"

	"github.com/go-resty/resty/v2"
)

// GitHub stores every object as a file in a repository via the contents
// API. The file's blob sha doubles as the revision token.
type GitHub struct {
	client *resty.Client
}

type GitHubOptions struct {
	Owner string `json:"owner"`
	Repo  string `json:"repo"`
	Token string `json:"token"`
	// overrides https://api.github.com, for tests
	BaseUrl string `json:"base_url"`
}

func NewGitHub(opts GitHubOptions) *GitHub {
	base := opts.BaseUrl
	if base == "" {
		base = "https://api.github.com"
	}

	client := resty.New()
	client.SetBaseURL(fmt.Sprintf(
		"%s/repos/%s/%s/contents",
		base, opts.Owner, opts.Repo,
	))
	client.SetHeader("Authorization", fmt.Sprintf("token %s", opts.Token))
	client.SetHeader("Accept", "application/vnd.github+json")
	client.SetTimeout(time.Second * 30)

	telemetry.InstrumentResty(client, "blobstore/github")

	return &GitHub{client: client}
}

type githubContent struct {
	Type    string `json:"type"`
	Name    string `json:"name"`
	Sha     string `json:"sha"`
	Content string `json:"content"`
}

func (s *GitHub) Get(ctx context.Context, key string) (Object, error) {
	var content githubContent
	res, err := s.client.R().
		SetContext(ctx).
		SetResult(&content).
		Get("/" + key)
	if err != nil {
		return Object{}, err
	}
	if res.StatusCode() == http.StatusNotFound {
		return Object{}, ErrNotFound
	}
	if res.IsError() {
		return Object{}, fmt.Errorf("get %q: %s", key, res.Status())
	}

	data, err := base64.StdEncoding.DecodeString(content.Content)
	if err != nil {
		// the API pads its base64 with newlines
		data, err = base64.StdEncoding.DecodeString(stripNewlines(content.Content))
		if err != nil {
			return Object{}, fmt.Errorf("decode %q: %w", key, err)
		}
	}

	return Object{Data: data, Revision: content.Sha}, nil
}

func (s *GitHub) Put(ctx context.Context, key string, data []byte, expectedRevision string) error {
	if expectedRevision == "" {
		// overwrite semantics still need the current sha, if any
		current, err := s.Get(ctx, key)
		if err == nil {
			expectedRevision = current.Revision
		} else if err != ErrNotFound {
			return err
		}
	}

	body := map[string]string{
		"message": fmt.Sprintf("update %s", key),
		"content": base64.StdEncoding.EncodeToString(data),
	}
	if expectedRevision != "" {
		body["sha"] = expectedRevision
	}

	res, err := s.client.R().
		SetContext(ctx).
		SetBody(body).
		Put("/" + key)
	if err != nil {
		return err
	}
	if res.StatusCode() == http.StatusConflict {
		return ErrRevisionMismatch
	}
	if res.IsError() {
		return fmt.Errorf("put %q: %s", key, res.Status())
	}
	return nil
}

func (s *GitHub) List(ctx context.Context, prefix string) ([]string, error) {
	var entries []githubContent
	res, err := s.client.R().
		SetContext(ctx).
		SetResult(&entries).
		Get("/" + prefix)
	if err != nil {
		return nil, err
	}
	if res.StatusCode() == http.StatusNotFound {
		return nil, nil
	}
	if res.IsError() {
		return nil, fmt.Errorf("list %q: %s", prefix, res.Status())
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name)
	}
	return names, nil
}

func stripNewlines(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '\n' && s[i] != '\r' {
			out = append(out, s[i])
		}
	}
	return string(out)
}
