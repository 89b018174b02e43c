package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/FocuswithJustin/ChronoVerse/core/errors"
	"github.com/FocuswithJustin/ChronoVerse/core/ref"
)

// GenericName is the adapter name of the generic multi-translation API.
const GenericName = "web-api"

// GenericConfig configures the generic multi-translation JSON REST API.
type GenericConfig struct {
	// BaseURL is the API root; the reference is appended as a path
	// segment and the translation passed as ?translation=<code>.
	BaseURL string

	// Client is the HTTP client to use. Defaults to http.DefaultClient.
	Client *http.Client
}

type genericSource struct {
	cfg GenericConfig
}

// NewGeneric creates the generic JSON API adapter.
func NewGeneric(cfg GenericConfig) Source {
	if cfg.Client == nil {
		cfg.Client = http.DefaultClient
	}
	return &genericSource{cfg: cfg}
}

func (g *genericSource) Name() string { return GenericName }

// genericResponse is the wire shape of the API answer. Either the
// flattened text or the per-verse list may be populated.
type genericResponse struct {
	Text          string `json:"text"`
	TranslationID string `json:"translation_id"`
	Verses        []struct {
		Text string `json:"text"`
	} `json:"verses"`
}

func (g *genericSource) Fetch(ctx context.Context, r ref.Reference, translation string) (Result, error) {
	endpoint := fmt.Sprintf("%s/%s?translation=%s",
		strings.TrimRight(g.cfg.BaseURL, "/"),
		url.PathEscape(r.String()),
		url.QueryEscape(translation),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Result{}, errors.NewAdapter(GenericName, translation, r.Key(), err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := g.cfg.Client.Do(req)
	if err != nil {
		return Result{}, errors.NewAdapter(GenericName, translation, r.Key(), err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Result{}, errors.NewAdapter(GenericName, translation, r.Key(),
			fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var body genericResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Result{}, errors.NewAdapter(GenericName, translation, r.Key(), err)
	}

	text := strings.TrimSpace(body.Text)
	if text == "" {
		var parts []string
		for _, v := range body.Verses {
			if t := strings.TrimSpace(v.Text); t != "" {
				parts = append(parts, t)
			}
		}
		text = strings.Join(parts, " ")
	}
	if text == "" {
		return Result{}, errors.NewNotFound("verse", r.Key())
	}

	produced := translation
	if body.TranslationID != "" {
		produced = strings.ToLower(body.TranslationID)
	}
	return Result{Text: text, Translation: produced}, nil
}
