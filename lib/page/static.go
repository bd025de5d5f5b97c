package page

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"playlistwatch/lib/htmlutil"
	"playlistwatch/lib/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
)

// StaticBrowser renders pages by plain HTTP fetch: one resty client with a
// cloudflare-bypass transport, shared by every page it opens. "Clicking" an
// anchor re-fetches its destination; script-only controls are no-ops, which
// the scrapers tolerate by contract.
type StaticBrowser struct {
	client *resty.Client
	// pause after each navigation to mimic the settle wait a rendering
	// engine would need; also spaces out requests against the site
	settleDelay time.Duration
}

type StaticOptions struct {
	SettleDelaySeconds int `json:"settle_delay_seconds"`
}

func NewStaticBrowser(opts StaticOptions) *StaticBrowser {
	client := resty.New()
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	client.SetHeader("user-agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36")

	telemetry.InstrumentResty(client, "page/static")

	return &StaticBrowser{
		client:      client,
		settleDelay: time.Duration(opts.SettleDelaySeconds) * time.Second,
	}
}

func (b *StaticBrowser) NewPage() (Page, error) {
	return &staticPage{browser: b}, nil
}

type staticPage struct {
	browser *StaticBrowser
	doc     *goquery.Document
	url     *url.URL
}

func (p *staticPage) Navigate(ctx context.Context, target string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	res, err := p.browser.client.R().
		SetContext(ctx).
		Get(target)
	if err != nil {
		return fmt.Errorf("navigate %q: %w", target, err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		return fmt.Errorf("parse %q: %w", target, err)
	}

	loaded, err := url.Parse(target)
	if err != nil {
		return err
	}
	p.doc = doc
	p.url = loaded

	if p.browser.settleDelay > 0 {
		select {
		case <-time.After(p.browser.settleDelay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (p *staticPage) Document() *goquery.Document {
	return p.doc
}

func (p *staticPage) URL() string {
	if p.url == nil {
		return ""
	}
	return p.url.String()
}

func (p *staticPage) ClickAnchor(ctx context.Context, suffix string) error {
	if p.doc == nil {
		return ErrNoSuchControl
	}

	anchor := p.doc.Find(fmt.Sprintf(`a[href$=%q]`, suffix)).First()
	href, ok := anchor.Attr("href")
	if !ok {
		return ErrNoSuchControl
	}
	return p.follow(ctx, href)
}

func (p *staticPage) ClickText(ctx context.Context, text string) error {
	if p.doc == nil {
		return ErrNoSuchControl
	}

	for _, node := range p.doc.Find("*").Nodes {
		if !htmlutil.IsClickable(node) {
			continue
		}
		if strings.TrimSpace(htmlutil.GetText(node)) != text {
			continue
		}

		href := htmlutil.Attr(node, "href")
		if href == "" {
			// a script-driven control; a static page cannot run it
			slog.DebugContext(ctx, "ignored scripted control", "text", text)
			return nil
		}
		return p.follow(ctx, href)
	}
	return ErrNoSuchControl
}

func (p *staticPage) ClickLabel(ctx context.Context, label string) error {
	if p.doc == nil {
		return ErrNoSuchControl
	}

	control := p.doc.Find(fmt.Sprintf(`[aria-label=%q]`, label)).First()
	if control.Length() == 0 {
		return ErrNoSuchControl
	}
	if href, ok := control.Attr("href"); ok {
		return p.follow(ctx, href)
	}
	slog.DebugContext(ctx, "ignored scripted control", "label", label)
	return nil
}

func (p *staticPage) follow(ctx context.Context, href string) error {
	ref, err := url.Parse(href)
	if err != nil {
		return err
	}
	target := ref
	if p.url != nil {
		target = p.url.ResolveReference(ref)
	}
	return p.Navigate(ctx, target.String(), time.Second*30)
}

func (p *staticPage) Close() error {
	p.doc = nil
	p.url = nil
	return nil
}
