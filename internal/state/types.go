package state

// #region evidence

// Evidence is a (fact snippet, source URL) pair grounding a derived claim.
type Evidence struct {
	Fact      string `json:"fact"`
	SourceURL string `json:"source_url"`
}

// Page is one record returned by the evidence search collaborator.
// Every field is optional; URL and Source are alternative spellings
// of the same thing depending on the provider.
type Page struct {
	Title   string `json:"title,omitempty"`
	URL     string `json:"url,omitempty"`
	Source  string `json:"source,omitempty"`
	Snippet string `json:"snippet,omitempty"`
	Content string `json:"content,omitempty"`
	Summary string `json:"summary,omitempty"`
	Query   string `json:"query,omitempty"`
}

// Link returns URL, falling back to Source.
func (p Page) Link() string {
	if p.URL != "" {
		return p.URL
	}
	return p.Source
}

// #endregion evidence

// #region barrier

// FDILevel is the foreign-direct-investment restriction severity.
type FDILevel string

const (
	FDIUnset  FDILevel = ""
	FDILow    FDILevel = "low"
	FDIMedium FDILevel = "medium"
	FDIHigh   FDILevel = "high"
)

// DataLocalization is the data residency / transfer restriction category.
type DataLocalization string

const (
	DataLocUnset       DataLocalization = ""
	DataLocBroad       DataLocalization = "broad"
	DataLocSectoral    DataLocalization = "sectoral"
	DataLocCrossBorder DataLocalization = "cross-border restrictions"
)

// Barrier is the structured regulatory-constraint record for one country.
type Barrier struct {
	FDIRestriction   FDILevel         `json:"fdi_restriction,omitempty"`
	DataLocalization DataLocalization `json:"data_localization,omitempty"`
	TaxRegime        map[string]any   `json:"tax_regime"`
	LaborRegulation  map[string]any   `json:"labor_regulation"`
	Other            []string         `json:"other"`
	Evidence         []Evidence       `json:"evidence,omitempty"`
}

// #endregion barrier

// #region market

// MacroIndicators is the macro collaborator's answer for one country.
type MacroIndicators struct {
	GDPUSDBil        float64 `json:"gdp_usd_bil"`
	PopulationM      float64 `json:"population_m"`
	InternetUsersPct float64 `json:"internet_users_pct"`
}

// MarketFacts holds sizing and growth figures for a segment in one country.
type MarketFacts struct {
	Segment       string          `json:"segment"`
	MarketSizeUSD *float64        `json:"market_size_usd"`
	CAGRPct       *float64        `json:"cagr_pct"`
	Period        string          `json:"period,omitempty"`
	AuxIndicators MacroIndicators `json:"aux_indicators"`
	ProxyNote     string          `json:"proxy_note,omitempty"`
}

// Competitor is a market player found by the competition stages.
type Competitor struct {
	Name      string   `json:"name"`
	SharePct  *float64 `json:"share_pct"`
	Notes     string   `json:"notes,omitempty"`
	SourceURL string   `json:"source_url,omitempty"`
}

// #endregion market

// #region entry-modes

// EntryMode identifies one of the canonical market-entry paths.
type EntryMode string

const (
	ModeDirectInvestment   EntryMode = "direct_investment"
	ModeJointVenture       EntryMode = "joint_venture"
	ModeLicensing          EntryMode = "licensing"
	ModeMnA                EntryMode = "mna"
	ModeAdditionalResearch EntryMode = "additional_research"
)

// EntryModeCandidate is one scored entry path.
type EntryModeCandidate struct {
	Mode EntryMode `json:"mode"`
	Fit  float64   `json:"fit"`
	Pros []string  `json:"pros"`
	Cons []string  `json:"cons"`
}

// Decision is the final recommendation for one country.
type Decision struct {
	Recommended      EntryMode `json:"recommended"`
	RecommendedLabel string    `json:"recommended_label"`
	Score            float64   `json:"score"`
	Rationale        []string  `json:"rationale"`
}

// Scores are the country attractiveness and risk figures (0-100).
type Scores struct {
	Attractiveness float64 `json:"attractiveness"`
	Risk           float64 `json:"risk"`
}

// #endregion entry-modes

// #region seed

// CompanyProfile describes the company evaluating expansion.
type CompanyProfile struct {
	Name            string   `json:"name,omitempty"`
	URL             string   `json:"url,omitempty"`
	Notes           string   `json:"notes,omitempty"`
	Headline        string   `json:"headline,omitempty"`
	Description     string   `json:"description,omitempty"`
	Offerings       []string `json:"offerings,omitempty"`
	Differentiators []string `json:"differentiators,omitempty"`
	TargetSegments  []string `json:"target_segments,omitempty"`
	ExpansionRisks  []string `json:"expansion_risks,omitempty"`
	RawExcerpt      string   `json:"raw_excerpt,omitempty"`
}

// FirmProfile carries the firm's strategic preferences.
// ControlPref and RiskAppetite are "low" | "medium" | "high".
type FirmProfile struct {
	Name         string `json:"name,omitempty"`
	URL          string `json:"url,omitempty"`
	Notes        string `json:"notes,omitempty"`
	Headline     string `json:"headline,omitempty"`
	ControlPref  string `json:"control_pref,omitempty"`
	RiskAppetite string `json:"risk_appetite,omitempty"`
}

// DefaultGoodGrowth is the CAGR threshold used when rules leave it unset.
const DefaultGoodGrowth = 8.0

// Rules are the run thresholds.
type Rules struct {
	MinEvidence int      `json:"min_evidence,omitempty" yaml:"min_evidence"`
	CAGRGood    *float64 `json:"cagr_good,omitempty" yaml:"cagr_good"`
}

// GoodGrowth returns the configured cagr_good or DefaultGoodGrowth.
func (r Rules) GoodGrowth() float64 {
	if r.CAGRGood == nil {
		return DefaultGoodGrowth
	}
	return *r.CAGRGood
}

// #endregion seed

// #region insight-namespaces

// LawFindings is the raw regulatory payload for one country. Barriers is
// the partially filled base the barrier classifier respects.
type LawFindings struct {
	Barriers Barrier    `json:"barriers"`
	Evidence []Evidence `json:"evidence"`
	Pages    []Page     `json:"pages,omitempty"`
	Notes    string     `json:"notes,omitempty"`
	LawText  string     `json:"law_text,omitempty"`
	Raw      string     `json:"raw,omitempty"`
}

// MarketFindings is the insight-chain market payload for one country.
type MarketFindings struct {
	Market   MarketFacts `json:"market"`
	Evidence []Evidence  `json:"evidence"`
}

// CompetitionFindings lists competitors and supporting evidence.
type CompetitionFindings struct {
	Players     []Competitor `json:"players,omitempty"`
	Competitors []Competitor `json:"competitors"`
	Structure   string       `json:"structure,omitempty"`
	Evidence    []Evidence   `json:"evidence"`
}

// Interim holds the insight chain's per-country artifacts.
type Interim struct {
	Law         map[string]LawFindings         `json:"law,omitempty"`
	Market      map[string]MarketFindings      `json:"market,omitempty"`
	Competition map[string]CompetitionFindings `json:"competition,omitempty"`
	Barriers    map[string]Barrier             `json:"barriers,omitempty"`
}

// Insight is the integrated per-country result.
type Insight struct {
	Country     string       `json:"country"`
	Barriers    Barrier      `json:"barriers"`
	Market      MarketFacts  `json:"market"`
	Competition []Competitor `json:"competition"`
	Scores      Scores       `json:"scores"`
	Evidence    []Evidence   `json:"evidence"`
	Decision    *Decision    `json:"decision,omitempty"`
}

// #endregion insight-namespaces

// #region report-namespaces

// CountryMarket is the report-chain market payload for one country.
type CountryMarket struct {
	Overview MarketFacts `json:"market_overview"`
	Barriers Barrier     `json:"barriers"`
	Evidence []Evidence  `json:"evidence"`
}

// StrategyContext is the context the candidates were scored against.
type StrategyContext struct {
	Players []Competitor `json:"players"`
	Market  MarketFacts  `json:"market"`
}

// CountryStrategy holds the scored entry-mode candidates.
type CountryStrategy struct {
	Candidates []EntryModeCandidate `json:"candidates"`
	Context    StrategyContext      `json:"context"`
}

// PartnerLeads holds partner-sourcing results for one country.
type PartnerLeads struct {
	LocalFirms  []string   `json:"local_firms"`
	Investors   []string   `json:"investors"`
	Consultants []string   `json:"consultants"`
	Evidence    []Evidence `json:"evidence"`
}

// CountryReport is the hand-off payload for one country.
type CountryReport struct {
	Barriers    Barrier      `json:"barriers"`
	Market      MarketFacts  `json:"market"`
	Competition []Competitor `json:"competition"`
	Scores      Scores       `json:"scores"`
	Evidence    []Evidence   `json:"evidence"`
	Decision    Decision     `json:"decision"`
}

// Report is the report chain's final structured result.
type Report struct {
	Company   string                   `json:"company"`
	Segment   string                   `json:"segment"`
	Countries map[string]CountryReport `json:"countries"`
	Insights  []Insight                `json:"insights"`
	Evidence  []Evidence               `json:"evidence"`
	Markdown  string                   `json:"markdown,omitempty"`
}

// #endregion report-namespaces

// #region retry-signal

// RetrySignal is emitted by the decision stage when evidence is short.
type RetrySignal struct {
	Trigger   bool     `json:"trigger_retry,omitempty"`
	Countries []string `json:"retry_countries,omitempty"`
}

// #endregion retry-signal

// #region state

// State is the record threaded through the pipeline. Fields grow
// additively; stages return an Update and never mutate State directly.
type State struct {
	Countries []string       `json:"countries"`
	Segment   string         `json:"segment"`
	Language  string         `json:"language,omitempty"`
	Company   CompanyProfile `json:"company"`
	Firm      FirmProfile    `json:"firm"`
	Rules     Rules          `json:"rules"`

	References  map[string]string              `json:"references,omitempty"`
	Interim     Interim                        `json:"interim"`
	Market      map[string]CountryMarket       `json:"market,omitempty"`
	Competition map[string]CompetitionFindings `json:"competition,omitempty"`
	Strategies  map[string]CountryStrategy     `json:"strategies,omitempty"`
	Partners    map[string]PartnerLeads        `json:"partners,omitempty"`
	Decision    map[string]Decision            `json:"decision,omitempty"`
	Insights    []Insight                      `json:"insights,omitempty"`
	Report      *Report                        `json:"report,omitempty"`

	Retry          RetrySignal `json:"retry"`
	RetryPerformed bool        `json:"_retry_performed"`
}

// Update is a stage's partial result. A nil field means the stage did not
// touch that key.
type Update struct {
	Company     *CompanyProfile
	Firm        *FirmProfile
	References  map[string]string
	Interim     *Interim
	Market      map[string]CountryMarket
	Competition map[string]CompetitionFindings
	Strategies  map[string]CountryStrategy
	Partners    map[string]PartnerLeads
	Decision    map[string]Decision
	Insights    []Insight
	Report      *Report
	Retry       *RetrySignal
}

// #endregion state

// #region clip

// FactLimit is the maximum rune length of an evidence fact.
const FactLimit = 220

// Clip truncates s to at most n runes.
func Clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// #endregion clip
