package template

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/yungbote/kgcontent-backend/internal/contenttypes/errs"
	"github.com/yungbote/kgcontent-backend/internal/contenttypes/ports"
	"github.com/yungbote/kgcontent-backend/internal/domain/graph"
)

type propertyValidator struct {
	predicates ports.PredicateStore
	classes    ports.ClassStore
}

// validate normalizes p and checks its references exist. Blank optional
// strings are dropped.
func (v propertyValidator) validate(ctx context.Context, p Property) (Property, error) {
	label, err := graph.NormalizeLabel(p.Label)
	if err != nil {
		return p, &errs.InvalidLabelError{Label: p.Label, Cause: err}
	}
	p.Label = label
	p.Placeholder = trimmed(p.Placeholder)
	p.Description = trimmed(p.Description)
	p.Pattern = trimmed(p.Pattern)
	p.MinInclusive = trimmed(p.MinInclusive)
	p.MaxInclusive = trimmed(p.MaxInclusive)

	if pred, err := v.predicates.FindPredicate(ctx, p.Path); err != nil {
		return p, fmt.Errorf("find predicate %s: %w", p.Path, err)
	} else if pred == nil {
		return p, errs.NotFound("predicate", p.Path)
	}
	if p.Datatype != nil && p.Class != nil {
		return p, errs.Invalid("property %q sets both datatype and class", p.Label)
	}
	for _, c := range []*graph.ThingID{p.Datatype, p.Class} {
		if c == nil {
			continue
		}
		class, err := v.classes.FindClass(ctx, *c)
		if err != nil {
			return p, fmt.Errorf("find class %s: %w", *c, err)
		}
		if class == nil {
			return p, errs.NotFound("class", *c)
		}
	}

	if p.MinCount != nil && *p.MinCount < 0 || p.MaxCount != nil && *p.MaxCount < 0 {
		return p, errs.Invalid("property %q has a negative cardinality", p.Label)
	}
	if p.MinCount != nil && p.MaxCount != nil && *p.MaxCount != 0 && *p.MinCount > *p.MaxCount {
		return p, errs.Invalid("property %q min count exceeds max count", p.Label)
	}

	if p.Pattern != nil {
		if p.Datatype == nil {
			return p, errs.Invalid("property %q: pattern requires a datatype", p.Label)
		}
		if _, err := regexp.Compile(*p.Pattern); err != nil {
			return p, errs.Invalid("property %q: invalid pattern: %v", p.Label, err)
		}
	}
	if p.MinInclusive != nil || p.MaxInclusive != nil {
		if p.Datatype == nil || !numeric(*p.Datatype) {
			return p, errs.Invalid("property %q: bounds require a numeric datatype", p.Label)
		}
		lo, err := bound(p.MinInclusive)
		if err != nil {
			return p, &errs.InvalidLiteralError{Value: *p.MinInclusive, Datatype: graph.DatatypeDecimal, Cause: err}
		}
		hi, err := bound(p.MaxInclusive)
		if err != nil {
			return p, &errs.InvalidLiteralError{Value: *p.MaxInclusive, Datatype: graph.DatatypeDecimal, Cause: err}
		}
		if lo != nil && hi != nil && *lo > *hi {
			return p, errs.Invalid("property %q min inclusive exceeds max inclusive", p.Label)
		}
	}
	return p, nil
}

func (v propertyValidator) validateAll(ctx context.Context, ps []Property) ([]Property, error) {
	if ps == nil {
		return nil, nil
	}
	out := make([]Property, 0, len(ps))
	for _, p := range ps {
		np, err := v.validate(ctx, p)
		if err != nil {
			return nil, err
		}
		out = append(out, np)
	}
	return out, nil
}

func numeric(datatype graph.ThingID) bool {
	switch datatype {
	case graph.DatatypeInteger, graph.DatatypeDecimal, graph.DatatypeFloat:
		return true
	}
	return false
}

func bound(s *string) (*float64, error) {
	if s == nil {
		return nil, nil
	}
	f, err := strconv.ParseFloat(*s, 64)
	if err != nil {
		return nil, graph.ErrInvalidValue
	}
	return &f, nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}
