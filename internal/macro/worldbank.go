package macro

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/danielpatrickdp/entry-scout/go-controller/internal/state"
)

// #region types

// Provider returns macro indicators for a country. Unknown values are 0.
type Provider interface {
	Macro(ctx context.Context, country string) state.MacroIndicators
}

// DefaultEndpoint is the World Bank v2 API root.
const DefaultEndpoint = "https://api.worldbank.org/v2"

// Indicator codes.
const (
	IndicatorGDP        = "NY.GDP.MKTP.CD"
	IndicatorPopulation = "SP.POP.TOTL"
	IndicatorInternet   = "IT.NET.USER.ZS"
)

// #endregion types

// #region country-codes

var countryAliases = map[string]string{
	"united states":            "USA",
	"united states of america": "USA",
	"south korea":              "KOR",
	"korea, republic of":       "KOR",
	"mongolia":                 "MNG",
}

// ResolveCountryCode maps a country name or code to a three-letter code:
// known aliases first, otherwise the first three letters upper-cased and
// padded with X.
func ResolveCountryCode(country string) string {
	key := strings.ToLower(strings.TrimSpace(country))
	if code, ok := countryAliases[key]; ok {
		return code
	}
	letters := make([]rune, 0, 3)
	for _, r := range strings.ToUpper(key) {
		if unicode.IsLetter(r) {
			letters = append(letters, r)
			if len(letters) == 3 {
				break
			}
		}
	}
	for len(letters) < 3 {
		letters = append(letters, 'X')
	}
	return string(letters)
}

// #endregion country-codes

// #region worldbank

// WorldBank fetches indicators from the World Bank API. It does not cache;
// wrap it in a Cache.
type WorldBank struct {
	endpoint string
	client   *http.Client
	logger   *zap.Logger
}

// NewWorldBank creates a client. An empty endpoint uses DefaultEndpoint.
func NewWorldBank(endpoint string, client *http.Client, logger *zap.Logger) *WorldBank {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WorldBank{
		endpoint: strings.TrimRight(endpoint, "/"),
		client:   client,
		logger:   logger.Named("worldbank"),
	}
}

// Macro fetches GDP (USD billions), population (millions) and internet
// users (% of population), each rounded to 4 decimals. A failed indicator
// is logged and reported as 0.
func (w *WorldBank) Macro(ctx context.Context, country string) state.MacroIndicators {
	code := ResolveCountryCode(country)
	return state.MacroIndicators{
		GDPUSDBil:        round4(w.indicator(ctx, code, IndicatorGDP) / 1e9),
		PopulationM:      round4(w.indicator(ctx, code, IndicatorPopulation) / 1e6),
		InternetUsersPct: round4(w.indicator(ctx, code, IndicatorInternet)),
	}
}

func (w *WorldBank) indicator(ctx context.Context, code, indicator string) float64 {
	v, err := w.fetch(ctx, code, indicator)
	if err != nil {
		w.logger.Warn("indicator unavailable",
			zap.String("country", code),
			zap.String("indicator", indicator),
			zap.Error(err),
		)
		return 0
	}
	return v
}

func (w *WorldBank) fetch(ctx context.Context, code, indicator string) (float64, error) {
	q := url.Values{"format": {"json"}, "per_page": {"5"}, "MRV": {"1"}}
	u := fmt.Sprintf("%s/country/%s/indicator/%s?%s", w.endpoint, url.PathEscape(code), indicator, q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, err
	}
	resp, err := w.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, fmt.Errorf("status %d", resp.StatusCode)
	}

	// The body is [paging, [rows...]]; a missing row or null value reads as 0.
	var body []json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("decode: %w", err)
	}
	if len(body) < 2 {
		return 0, nil
	}
	var rows []struct {
		Value *float64 `json:"value"`
	}
	if err := json.Unmarshal(body[1], &rows); err != nil {
		return 0, nil
	}
	if len(rows) == 0 || rows[0].Value == nil {
		return 0, nil
	}
	return *rows[0].Value, nil
}

func round4(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}

// #endregion worldbank
