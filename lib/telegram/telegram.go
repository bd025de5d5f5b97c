// Package telegram is a minimal Bot API client: send a message, long-poll
// for updates. Nothing else of the API surface is needed.
package telegram

import (
	"context"
	"fmt"
	"time"

	"playlistwatch/lib/telemetry"

	"github.com/go-resty/resty/v2"
)

type Client struct {
	client *resty.Client
}

type Options struct {
	Token string `json:"token"`
	// overrides https://api.telegram.org, for tests
	BaseUrl string `json:"base_url"`
}

func NewClient(opts Options) *Client {
	base := opts.BaseUrl
	if base == "" {
		base = "https://api.telegram.org"
	}

	client := resty.New()
	client.SetBaseURL(fmt.Sprintf("%s/bot%s", base, opts.Token))
	// long-poll requests hold the connection open for up to 30s
	client.SetTimeout(time.Second * 50)

	telemetry.InstrumentResty(client, "telegram")

	return &Client{client: client}
}

type apiResponse[T any] struct {
	Ok          bool   `json:"ok"`
	Description string `json:"description"`
	Result      T      `json:"result"`
}

// Send delivers one message to a chat. The text must already be within
// Telegram's per-message limit; chunking is the caller's job.
func (c *Client) Send(ctx context.Context, chatId string, text string) error {
	var out apiResponse[struct{}]
	res, err := c.client.R().
		SetContext(ctx).
		SetBody(map[string]string{
			"chat_id": chatId,
			"text":    text,
		}).
		SetResult(&out).
		Post("/sendMessage")
	if err != nil {
		return err
	}
	if res.IsError() || !out.Ok {
		return fmt.Errorf("sendMessage to %s: %s %s", chatId, res.Status(), out.Description)
	}
	return nil
}

type Update struct {
	UpdateId int64 `json:"update_id"`
	Message  struct {
		Text string `json:"text"`
		Chat struct {
			Id int64 `json:"id"`
		} `json:"chat"`
	} `json:"message"`
}

// GetUpdates long-polls for incoming messages after offset.
func (c *Client) GetUpdates(ctx context.Context, offset int64) ([]Update, error) {
	var out apiResponse[[]Update]
	res, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("offset", fmt.Sprintf("%d", offset)).
		SetQueryParam("timeout", "30").
		SetResult(&out).
		Get("/getUpdates")
	if err != nil {
		return nil, err
	}
	if res.IsError() || !out.Ok {
		return nil, fmt.Errorf("getUpdates: %s %s", res.Status(), out.Description)
	}
	return out.Result, nil
}
