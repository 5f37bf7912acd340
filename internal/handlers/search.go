package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"friday/internal/nlu"
	"friday/internal/session"
)

const searchSummaryLimit = 500

// SearchClient scrapes the DuckDuckGo HTML endpoint for the top result
// and then reads that page's leading paragraphs.
type SearchClient struct {
	baseURL string
	client  *http.Client
	openURL func(string) error
}

// NewSearchClient returns a scraper against the public DuckDuckGo HTML
// frontend. openURL, when non-nil, is called with the top result so a
// desktop browser can show it; pass nil in headless setups.
func NewSearchClient(openURL func(string) error) *SearchClient {
	return &SearchClient{
		baseURL: "https://html.duckduckgo.com",
		client:  &http.Client{Timeout: 10 * time.Second},
		openURL: openURL,
	}
}

// NewSearchClientWithBaseURL is for tests.
func NewSearchClientWithBaseURL(baseURL string, openURL func(string) error) *SearchClient {
	c := NewSearchClient(openURL)
	c.baseURL = baseURL
	return c
}

// TopResult returns the first organic result's title and target URL.
func (c *SearchClient) TopResult(ctx context.Context, query string) (title, href string, err error) {
	u := c.baseURL + "/html/?q=" + url.QueryEscape(query)
	doc, err := c.fetch(ctx, u)
	if err != nil {
		return "", "", err
	}
	link := doc.Find(".result__a").First()
	if link.Length() == 0 {
		return "", "", errors.New("no results")
	}
	href, _ = link.Attr("href")
	return strings.TrimSpace(link.Text()), resolveRedirect(href), nil
}

// PageSummary fetches pageURL and joins its first paragraphs into a
// short speakable blurb.
func (c *SearchClient) PageSummary(ctx context.Context, pageURL string) (string, error) {
	doc, err := c.fetch(ctx, pageURL)
	if err != nil {
		return "", err
	}
	var parts []string
	doc.Find("p").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := strings.Join(strings.Fields(s.Text()), " ")
		if text != "" {
			parts = append(parts, text)
		}
		return len(parts) < 3
	})
	summary := strings.Join(parts, " ")
	if summary == "" {
		return "", errors.New("no readable text")
	}
	if len(summary) > searchSummaryLimit {
		summary = summary[:searchSummaryLimit] + "..."
	}
	return summary, nil
}

func (c *SearchClient) fetch(ctx context.Context, rawURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64)")
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", rawURL, resp.StatusCode)
	}
	return goquery.NewDocumentFromReader(resp.Body)
}

// resolveRedirect unwraps DuckDuckGo's /l/?uddg= indirection so the
// real target is opened and summarized.
func resolveRedirect(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	if u.Scheme == "" {
		return "https:" + href
	}
	return href
}

var searchStripWords = nlu.DefaultTable().Keywords(nlu.Search)

func newSearchHandler(svc Services) Handler {
	return func(ctx context.Context, _ *session.Session, utterance string) string {
		if svc.Search == nil {
			return "Web search isn't configured."
		}
		query := stripKeywords(utterance, searchStripWords)
		query = strings.TrimPrefix(query, "for ")
		query = strings.TrimSpace(query)
		if query == "" {
			return "What should I search for?"
		}

		title, href, err := svc.Search.TopResult(ctx, query)
		if err != nil {
			return "The search for " + query + " failed."
		}
		if svc.Dialog != nil {
			svc.Dialog.Say("I found results for " + query + ". Reading the top one: " + title + ".")
		}
		if svc.Search.openURL != nil {
			if err := svc.Search.openURL(href); err != nil && svc.Dialog != nil {
				svc.Dialog.Say("I couldn't open the browser.")
			}
		}

		summary, err := svc.Search.PageSummary(ctx, href)
		if err != nil {
			return "The top result for " + query + " had no readable text."
		}
		return summary
	}
}
