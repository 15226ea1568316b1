package websearch

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/danielpatrickdp/entry-scout/go-controller/internal/state"
)

// #region types

// Searcher is the evidence collector. Failures are logged by the
// implementation and surface as an empty result, never as an error.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) []state.Page
}

// Config selects and configures an HTTP search provider.
type Config struct {
	Provider       string // tavily, duckduckgo, disabled
	TavilyAPIKey   string
	TavilyEndpoint string
	DDGEndpoint    string
	Timeout        time.Duration
}

// #endregion types

// #region open

// Open returns the HTTP-backed searcher named by cfg.Provider. client may
// be nil, in which case one with cfg.Timeout is created.
func Open(cfg Config, client *http.Client, logger *zap.Logger) (Searcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	switch cfg.Provider {
	case "tavily":
		return NewTavily(cfg.TavilyAPIKey, cfg.TavilyEndpoint, client, logger), nil
	case "duckduckgo", "":
		return NewDuckDuckGo(cfg.DDGEndpoint, client, logger), nil
	case "disabled":
		return Disabled{}, nil
	default:
		return nil, fmt.Errorf("websearch: unknown provider %q", cfg.Provider)
	}
}

// #endregion open

// #region disabled

// Disabled never returns results.
type Disabled struct{}

func (Disabled) Search(context.Context, string, int) []state.Page { return nil }

// #endregion disabled
