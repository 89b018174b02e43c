package source

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/antchfx/htmlquery"
	"github.com/antchfx/xpath"

	"github.com/FocuswithJustin/ChronoVerse/core/errors"
	"github.com/FocuswithJustin/ChronoVerse/core/ref"
)

// passageExpr selects the passage container on the scraped page.
// Compiled once; the query runs on every fetch.
var passageExpr = xpath.MustCompile(`//div[contains(@class,"passage-text")]`)

// ScrapeName is the adapter name of the web scraper.
const ScrapeName = "scrape"

// ScrapeConfig configures the public-site scrape adapter.
type ScrapeConfig struct {
	// BaseURL is the passage page endpoint, queried with
	// ?search=<reference>&version=<code>.
	BaseURL string

	// Versions maps translation codes to the site's version codes.
	// Unmapped codes are uppercased.
	Versions map[string]string

	// Client is the HTTP client to use. Defaults to http.DefaultClient;
	// per-attempt timeouts come from the fetch context.
	Client *http.Client
}

type scrapeSource struct {
	cfg ScrapeConfig
}

// NewScrape creates the web scrape adapter.
func NewScrape(cfg ScrapeConfig) Source {
	if cfg.Client == nil {
		cfg.Client = http.DefaultClient
	}
	return &scrapeSource{cfg: cfg}
}

func (s *scrapeSource) Name() string { return ScrapeName }

func (s *scrapeSource) Fetch(ctx context.Context, r ref.Reference, translation string) (Result, error) {
	version, ok := s.cfg.Versions[translation]
	if !ok {
		version = strings.ToUpper(translation)
	}

	q := url.Values{}
	q.Set("search", r.String())
	q.Set("version", version)
	endpoint := s.cfg.BaseURL + "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Result{}, errors.NewAdapter(ScrapeName, translation, r.Key(), err)
	}
	resp, err := s.cfg.Client.Do(req)
	if err != nil {
		return Result{}, errors.NewAdapter(ScrapeName, translation, r.Key(), err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Result{}, errors.NewAdapter(ScrapeName, translation, r.Key(),
			fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	doc, err := htmlquery.Parse(resp.Body)
	if err != nil {
		return Result{}, errors.NewAdapter(ScrapeName, translation, r.Key(), err)
	}

	node := htmlquery.QuerySelector(doc, passageExpr)
	if node == nil {
		return Result{}, errors.NewNotFound("passage", r.Key())
	}

	text := cleanPassage(htmlquery.InnerText(node))
	if text == "" {
		return Result{}, errors.NewNotFound("passage", r.Key())
	}
	return Result{Text: text, Translation: translation}, nil
}

var (
	footnoteRe = regexp.MustCompile(`\[[a-z]\]`)
	leadingNum = regexp.MustCompile(`^\d+\s*`)
	spacesRe   = regexp.MustCompile(`\s+`)
)

// cleanPassage strips footnote markers and the leading verse number the
// passage markup carries, and collapses whitespace.
func cleanPassage(s string) string {
	s = footnoteRe.ReplaceAllString(s, "")
	s = spacesRe.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)
	s = leadingNum.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}
