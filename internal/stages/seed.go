package stages

import (
	"context"

	"go.uber.org/zap"

	"github.com/danielpatrickdp/entry-scout/go-controller/internal/company"
	"github.com/danielpatrickdp/entry-scout/go-controller/internal/reference"
	"github.com/danielpatrickdp/entry-scout/go-controller/internal/state"
)

// #region company-loader

// companyLoader builds the company profile and lets the firm inherit the
// identity fields it is missing.
func (r *runner) companyLoader(ctx context.Context, st state.State) (state.Update, error) {
	name, url, notes := company.Identity(st.Company, st.Firm)
	profile := r.Company.Build(ctx, name, url, notes)

	merged := company.MergeInto(st.Company, profile)
	firm := company.InheritFirm(st.Firm, merged)
	return state.Update{Company: &merged, Firm: &firm}, nil
}

// #endregion company-loader

// #region reference-loader

func (r *runner) referenceLoader(_ context.Context, st state.State) (state.Update, error) {
	text, err := reference.LoadGlossary(r.ReferenceDir, reference.DefaultMaxChars)
	if err != nil {
		r.Logger.Warn("reference glossary unavailable", zap.String("dir", r.ReferenceDir), zap.Error(err))
		text = ""
	}
	return state.Update{References: reference.Apply(st.References, text, st.Language)}, nil
}

// #endregion reference-loader
