package barrier

import "github.com/danielpatrickdp/entry-scout/go-controller/internal/state"

// #region merge-strategies

var severity = map[state.FDILevel]int{
	state.FDILow:    1,
	state.FDIMedium: 2,
	state.FDIHigh:   3,
}

// MergeSeverityMax keeps the more severe of two FDI levels
// (high > medium > low > unset). Used for FDI restriction only.
func MergeSeverityMax(current, next state.FDILevel) state.FDILevel {
	if severity[next] > severity[current] {
		return next
	}
	return current
}

// MergeFirstWins keeps current once it is set. Used for data localization.
func MergeFirstWins[T ~string](current, next T) T {
	if current != "" {
		return current
	}
	return next
}

// MergeSetOnce sets each flag to FlagPresent unless the key already exists.
// A nil dst is allocated.
func MergeSetOnce(dst map[string]any, flags []string) map[string]any {
	if dst == nil {
		dst = make(map[string]any, len(flags))
	}
	for _, f := range flags {
		if _, ok := dst[f]; !ok {
			dst[f] = FlagPresent
		}
	}
	return dst
}

// AppendEvidence appends text, clipped to state.FactLimit, with its source.
// Duplicates are kept.
func AppendEvidence(dst []state.Evidence, text, sourceURL string) []state.Evidence {
	return append(dst, state.Evidence{Fact: state.Clip(text, state.FactLimit), SourceURL: sourceURL})
}

// #endregion merge-strategies
