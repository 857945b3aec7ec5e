package actions

import (
	"github.com/yungbote/kgcontent-backend/internal/contenttypes/errs"
	"github.com/yungbote/kgcontent-backend/internal/domain/graph"
)

// ValidateExtractionMethod accepts the empty method, which means unset.
func ValidateExtractionMethod(m graph.ExtractionMethod) error {
	if m != "" && !m.Valid() {
		return errs.Invalid("unknown extraction method %q", m)
	}
	return nil
}

// ValidateOptionalExtractionMethod checks an update field; nil leaves it alone.
func ValidateOptionalExtractionMethod(m *graph.ExtractionMethod) error {
	if m == nil {
		return nil
	}
	if !m.Valid() {
		return errs.Invalid("unknown extraction method %q", *m)
	}
	return nil
}

func ValidateOptionalVisibility(v *graph.Visibility) error {
	if v != nil && !v.Valid() {
		return errs.Invalid("unknown visibility %q", *v)
	}
	return nil
}
