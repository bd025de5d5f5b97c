package page

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// FixtureBrowser serves canned HTML keyed by url. Activations are recorded
// but never change the document, which matches how scrapers must behave
// when controls do nothing.
type FixtureBrowser struct {
	// url -> html
	Pages map[string]string
}

func (b *FixtureBrowser) NewPage() (Page, error) {
	return &fixturePage{browser: b}, nil
}

type fixturePage struct {
	browser *FixtureBrowser
	doc     *goquery.Document
	url     string

	// activations recorded for assertions
	Clicked []string
}

func (p *fixturePage) Navigate(ctx context.Context, url string, timeout time.Duration) error {
	html, ok := p.browser.Pages[url]
	if !ok {
		return fmt.Errorf("navigate %q: connection refused", url)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return err
	}
	p.doc = doc
	p.url = url
	return nil
}

func (p *fixturePage) Document() *goquery.Document { return p.doc }
func (p *fixturePage) URL() string                 { return p.url }

func (p *fixturePage) ClickAnchor(ctx context.Context, suffix string) error {
	if p.doc == nil || p.doc.Find(fmt.Sprintf(`a[href$=%q]`, suffix)).Length() == 0 {
		return ErrNoSuchControl
	}
	p.Clicked = append(p.Clicked, "anchor:"+suffix)
	return nil
}

func (p *fixturePage) ClickText(ctx context.Context, text string) error {
	p.Clicked = append(p.Clicked, "text:"+text)
	return nil
}

func (p *fixturePage) ClickLabel(ctx context.Context, label string) error {
	if p.doc == nil || p.doc.Find(fmt.Sprintf(`[aria-label=%q]`, label)).Length() == 0 {
		return ErrNoSuchControl
	}
	p.Clicked = append(p.Clicked, "label:"+label)
	return nil
}

func (p *fixturePage) Close() error { return nil }
