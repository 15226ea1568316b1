package company

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/danielpatrickdp/entry-scout/go-controller/internal/state"
)

// #region constants

const (
	// MaxChars caps the text extracted from a company page.
	MaxChars = 4000
	// DefaultName is used when neither the company nor the firm is named.
	DefaultName = "Target Company"

	excerptChars     = 1000
	descriptionChars = 400
	fallbackHeadline = "N/A"
	fallbackSummary  = "Additional qualitative analysis required."
	maxBodyBytes     = 4 << 20
)

// #endregion constants

// #region types

// Summarizer turns extracted page text into a structured profile.
type Summarizer interface {
	Summarize(ctx context.Context, name, notes, text string) (state.CompanyProfile, error)
}

// Builder fetches a company page and builds its profile.
type Builder struct {
	client     *http.Client
	summarizer Summarizer
	logger     *zap.Logger
}

// NewBuilder creates a Builder. summarizer may be nil, in which case
// every profile is the fallback profile.
func NewBuilder(client *http.Client, summarizer Summarizer, logger *zap.Logger) *Builder {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{client: client, summarizer: summarizer, logger: logger.Named("company")}
}

// #endregion types

// #region build

// Build fetches url (when set), summarizes the extracted text and fills
// the identity fields. Fetch and summarizer failures fall back silently.
func (b *Builder) Build(ctx context.Context, name, url, notes string) state.CompanyProfile {
	var raw string
	if url != "" {
		page, err := b.fetch(ctx, url)
		if err != nil {
			b.logger.Warn("company page fetch failed", zap.String("url", url), zap.Error(err))
		}
		raw = ExtractText(page)
	}

	profile, ok := b.summarize(ctx, name, notes, raw)
	if !ok {
		profile = Fallback(name, notes, raw)
	}

	if profile.Name == "" {
		profile.Name = name
	}
	if url != "" {
		profile.URL = url
	}
	if notes != "" {
		profile.Notes = notes
	}
	profile.RawExcerpt = state.Clip(raw, excerptChars)
	return profile
}

func (b *Builder) summarize(ctx context.Context, name, notes, raw string) (state.CompanyProfile, bool) {
	if b.summarizer == nil {
		return state.CompanyProfile{}, false
	}
	p, err := b.summarizer.Summarize(ctx, name, notes, raw)
	if err != nil {
		b.logger.Warn("company summary unavailable", zap.String("company", name), zap.Error(err))
		return state.CompanyProfile{}, false
	}
	return p, true
}

func (b *Builder) fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := b.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// Fallback is the profile used when no summary is available.
func Fallback(name, notes, raw string) state.CompanyProfile {
	desc := state.Clip(raw, descriptionChars)
	if desc == "" {
		desc = fallbackSummary
	}
	return state.CompanyProfile{
		Name:            name,
		Headline:        fallbackHeadline,
		Description:     desc,
		Offerings:       []string{},
		Differentiators: []string{},
		TargetSegments:  []string{},
		ExpansionRisks:  []string{},
		Notes:           notes,
	}
}

// #endregion build

// #region extract

// ExtractText returns the visible text of an HTML document: every
// non-blank text node trimmed and joined by single spaces, skipping
// script, style and noscript. The result is capped at MaxChars runes.
func ExtractText(doc string) string {
	if strings.TrimSpace(doc) == "" {
		return ""
	}
	root, err := html.Parse(strings.NewReader(doc))
	if err != nil {
		return ""
	}
	var parts []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript":
				return
			}
		}
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				parts = append(parts, t)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return state.Clip(strings.Join(parts, " "), MaxChars)
}

// #endregion extract

// #region seed

// Identity picks the name, url and notes the profile is built from:
// company fields first, then firm fields, then DefaultName.
func Identity(c state.CompanyProfile, f state.FirmProfile) (name, url, notes string) {
	name = firstNonEmpty(c.Name, f.Name, DefaultName)
	url = firstNonEmpty(c.URL, f.URL)
	notes = firstNonEmpty(c.Notes, f.Notes)
	return name, url, notes
}

// MergeInto overlays profile on the existing company record. Fields the
// profile leaves empty keep their existing value.
func MergeInto(existing, profile state.CompanyProfile) state.CompanyProfile {
	out := profile
	out.Name = firstNonEmpty(out.Name, existing.Name)
	out.URL = firstNonEmpty(out.URL, existing.URL)
	out.Notes = firstNonEmpty(out.Notes, existing.Notes)
	out.Headline = firstNonEmpty(out.Headline, existing.Headline)
	out.Description = firstNonEmpty(out.Description, existing.Description)
	if out.Offerings == nil {
		out.Offerings = existing.Offerings
	}
	if out.Differentiators == nil {
		out.Differentiators = existing.Differentiators
	}
	if out.TargetSegments == nil {
		out.TargetSegments = existing.TargetSegments
	}
	if out.ExpansionRisks == nil {
		out.ExpansionRisks = existing.ExpansionRisks
	}
	return out
}

// InheritFirm fills the firm's empty identity fields from the profile.
// Preferences are never touched.
func InheritFirm(f state.FirmProfile, p state.CompanyProfile) state.FirmProfile {
	f.Name = firstNonEmpty(f.Name, p.Name)
	f.Headline = firstNonEmpty(f.Headline, p.Headline)
	f.URL = firstNonEmpty(f.URL, p.URL)
	f.Notes = firstNonEmpty(f.Notes, p.Notes)
	return f
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// #endregion seed
