package report

import (
	"fmt"
	"strings"

	"github.com/danielpatrickdp/entry-scout/go-controller/internal/state"
)

// Markdown renders rep as a plain structural dump. Countries are written
// in the given order.
func Markdown(rep state.Report, countries []string, c state.CompanyProfile) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s Market Entry Report\n\n", rep.Company)

	b.WriteString("## Company Snapshot\n\n")
	fmt.Fprintf(&b, "- Company: %s\n", rep.Company)
	if h := firstNonEmpty(c.Headline, c.Description); h != "" {
		fmt.Fprintf(&b, "- Positioning: %s\n", h)
	}
	if c.URL != "" {
		fmt.Fprintf(&b, "- Website: %s\n", c.URL)
	}
	if len(c.Offerings) > 0 {
		fmt.Fprintf(&b, "- Core Offerings: %s\n", strings.Join(c.Offerings, "; "))
	}
	if len(c.Differentiators) > 0 {
		fmt.Fprintf(&b, "- Differentiators: %s\n", strings.Join(c.Differentiators, "; "))
	}
	if len(c.TargetSegments) > 0 {
		fmt.Fprintf(&b, "- Target Segments: %s\n", strings.Join(c.TargetSegments, "; "))
	}
	fmt.Fprintf(&b, "- Segment: %s\n", rep.Segment)

	for _, country := range countries {
		cr, ok := rep.Countries[country]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "\n## %s\n\n", country)
		fmt.Fprintf(&b, "- Recommended: %s (%s, score %g)\n", cr.Decision.RecommendedLabel, cr.Decision.Recommended, cr.Decision.Score)
		fmt.Fprintf(&b, "- Attractiveness: %g\n", cr.Scores.Attractiveness)
		fmt.Fprintf(&b, "- Risk: %g\n", cr.Scores.Risk)
		fmt.Fprintf(&b, "- FDI restriction: %s\n", orUnknown(string(cr.Barriers.FDIRestriction)))
		fmt.Fprintf(&b, "- Data localization: %s\n", orUnknown(string(cr.Barriers.DataLocalization)))
		fmt.Fprintf(&b, "- Market size (USD): %s\n", number(cr.Market.MarketSizeUSD))
		fmt.Fprintf(&b, "- CAGR (%%): %s\n", number(cr.Market.CAGRPct))
		if cr.Market.Period != "" {
			fmt.Fprintf(&b, "- Period: %s\n", cr.Market.Period)
		}
		if cr.Market.ProxyNote != "" {
			fmt.Fprintf(&b, "- Proxy: %s\n", cr.Market.ProxyNote)
		}
		fmt.Fprintf(&b, "- Competitors found: %d\n", len(cr.Competition))

		if len(cr.Decision.Rationale) > 0 {
			b.WriteString("\n### Rationale\n\n")
			for _, line := range cr.Decision.Rationale {
				fmt.Fprintf(&b, "- %s\n", line)
			}
		}
		if len(cr.Evidence) > 0 {
			b.WriteString("\n### Evidence\n\n")
			for _, ev := range cr.Evidence {
				if ev.SourceURL != "" {
					fmt.Fprintf(&b, "- %s (%s)\n", ev.Fact, ev.SourceURL)
				} else {
					fmt.Fprintf(&b, "- %s\n", ev.Fact)
				}
			}
		}
	}
	return b.String()
}

func number(v *float64) string {
	if v == nil {
		return "unknown"
	}
	return fmt.Sprintf("%g", *v)
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
