package decision

// #region imports
import (
	"golang.org/x/text/language"

	"github.com/danielpatrickdp/entry-scout/go-controller/internal/state"
)

// #endregion

// #region catalog

// catalog holds the localized strings one language needs.
type catalog struct {
	modes     map[state.EntryMode]string
	country   string
	evidence  string
	cagr      string
	fdi       string
	dataLoc   string
	fillerTip string
}

var english = catalog{
	modes: map[state.EntryMode]string{
		state.ModeDirectInvestment:   "Direct Investment",
		state.ModeJointVenture:       "Joint Venture",
		state.ModeLicensing:          "Licensing",
		state.ModeMnA:                "M&A",
		state.ModeAdditionalResearch: "Additional Research Needed",
	},
	country:   "country reviewed: %s",
	evidence:  "evidence collected: %d items",
	cagr:      "reported CAGR: %s%%",
	fdi:       "FDI restriction level: %s",
	dataLoc:   "data localization level: %s",
	fillerTip: "Additional research is recommended to validate the partner environment.",
}

var korean = catalog{
	modes: map[state.EntryMode]string{
		state.ModeDirectInvestment:   "직접 투자",
		state.ModeJointVenture:       "조인트 벤처",
		state.ModeLicensing:          "라이선스",
		state.ModeMnA:                "인수합병",
		state.ModeAdditionalResearch: "추가 조사 필요",
	},
	country:   "검토 국가: %s",
	evidence:  "수집된 근거: %d건",
	cagr:      "보고된 CAGR: %s%%",
	fdi:       "FDI 제한 수준: %s",
	dataLoc:   "데이터 현지화 요구 수준: %s",
	fillerTip: "파트너 환경 검증을 위한 추가 조사가 권장됩니다.",
}

// English first: the matcher falls back to the first supported tag.
var (
	supported = []language.Tag{language.English, language.Korean}
	catalogs  = []catalog{english, korean}
	matcher   = language.NewMatcher(supported)
)

// #endregion catalog

// #region lookup

// catalogFor picks the catalog for a BCP 47 tag such as "ko" or "en-US".
// Empty or unparseable tags use English.
func catalogFor(lang string) catalog {
	if lang == "" {
		return english
	}
	tag, err := language.Parse(lang)
	if err != nil {
		return english
	}
	_, idx, conf := matcher.Match(tag)
	if conf == language.No || idx >= len(catalogs) {
		return english
	}
	return catalogs[idx]
}

// Label returns the localized display name of mode. Unknown modes are
// returned verbatim.
func Label(mode state.EntryMode, lang string) string {
	if l, ok := catalogFor(lang).modes[mode]; ok {
		return l
	}
	return string(mode)
}

// #endregion lookup
