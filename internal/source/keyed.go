package source

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/antchfx/xmlquery"

	"github.com/FocuswithJustin/ChronoVerse/core/errors"
	"github.com/FocuswithJustin/ChronoVerse/core/ref"
)

// KeyedName is the adapter name of the credentialed translation API.
const KeyedName = "keyed-api"

// KeyedConfig configures a translation-specific REST API that requires
// an API token and answers in XML.
type KeyedConfig struct {
	// BaseURL is the passage endpoint, queried with ?q=<reference>.
	BaseURL string

	// TokenEnv names the environment variable holding the API token.
	// When the variable is unset the adapter is a no-op: it reports the
	// verse as not found rather than failing.
	TokenEnv string

	// Client is the HTTP client to use. Defaults to http.DefaultClient.
	Client *http.Client
}

type keyedSource struct {
	cfg KeyedConfig
}

// NewKeyed creates the credentialed XML API adapter.
func NewKeyed(cfg KeyedConfig) Source {
	if cfg.Client == nil {
		cfg.Client = http.DefaultClient
	}
	return &keyedSource{cfg: cfg}
}

func (k *keyedSource) Name() string { return KeyedName }

func (k *keyedSource) Fetch(ctx context.Context, r ref.Reference, translation string) (Result, error) {
	token := os.Getenv(k.cfg.TokenEnv)
	if token == "" {
		return Result{}, errors.NewAdapter(KeyedName, translation, r.Key(), errors.ErrMissingCredentials)
	}

	q := url.Values{}
	q.Set("q", r.String())
	endpoint := k.cfg.BaseURL + "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Result{}, errors.NewAdapter(KeyedName, translation, r.Key(), err)
	}
	req.Header.Set("Authorization", "Token "+token)

	resp, err := k.cfg.Client.Do(req)
	if err != nil {
		return Result{}, errors.NewAdapter(KeyedName, translation, r.Key(), err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Result{}, errors.NewAdapter(KeyedName, translation, r.Key(),
			fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	doc, err := xmlquery.Parse(resp.Body)
	if err != nil {
		return Result{}, errors.NewAdapter(KeyedName, translation, r.Key(), err)
	}

	node := xmlquery.FindOne(doc, "//passage")
	if node == nil {
		return Result{}, errors.NewNotFound("passage", r.Key())
	}
	text := strings.TrimSpace(node.InnerText())
	if text == "" {
		return Result{}, errors.NewNotFound("passage", r.Key())
	}
	return Result{Text: text, Translation: translation}, nil
}
