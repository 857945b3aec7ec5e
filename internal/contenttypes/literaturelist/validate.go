package literaturelist

import (
	"context"
	"fmt"
	"strings"

	"github.com/yungbote/kgcontent-backend/internal/contenttypes/errs"
	"github.com/yungbote/kgcontent-backend/internal/contenttypes/ports"
	"github.com/yungbote/kgcontent-backend/internal/domain/graph"
)

const (
	minHeadingLevel = 1
	maxHeadingLevel = 6
)

type sectionValidator struct {
	resources ports.ResourceStore
}

// validate normalizes a section and checks that every entry points at an
// existing resource.
func (v sectionValidator) validate(ctx context.Context, sec Section) (Section, error) {
	if (sec.List == nil) == (sec.Text == nil) {
		return sec, errs.Invalid("section must be exactly one of list or text")
	}
	if sec.Text != nil {
		t := *sec.Text
		heading, err := graph.NormalizeLabel(t.Heading)
		if err != nil {
			return sec, &errs.InvalidLabelError{Label: t.Heading, Cause: err}
		}
		t.Heading = heading
		if t.HeadingLevel < minHeadingLevel || t.HeadingLevel > maxHeadingLevel {
			return sec, errs.Invalid("heading level %d out of range %d-%d", t.HeadingLevel, minHeadingLevel, maxHeadingLevel)
		}
		if strings.TrimSpace(t.Text) == "" {
			return sec, errs.Invalid("text section %q has no text", heading)
		}
		if err := graph.ValidateLiteral(t.Text, graph.DatatypeString); err != nil {
			return sec, &errs.InvalidLiteralError{Value: t.Text, Datatype: graph.DatatypeString, Cause: err}
		}
		return Section{Text: &t}, nil
	}

	l := ListSection{Entries: make([]Entry, 0, len(sec.List.Entries))}
	heading, err := graph.NormalizeLabel(sec.List.Heading)
	if err != nil {
		return sec, &errs.InvalidLabelError{Label: sec.List.Heading, Cause: err}
	}
	l.Heading = heading
	for _, e := range sec.List.Entries {
		r, err := v.resources.FindResource(ctx, e.ID)
		if err != nil {
			return sec, fmt.Errorf("find entry %s: %w", e.ID, err)
		}
		if r == nil {
			return sec, errs.NotFound("resource", e.ID)
		}
		if e.Description != nil {
			d := strings.TrimSpace(*e.Description)
			if d == "" {
				e.Description = nil
			} else {
				e.Description = &d
			}
		}
		l.Entries = append(l.Entries, e)
	}
	return Section{List: &l}, nil
}

func (v sectionValidator) validateAll(ctx context.Context, secs []Section) ([]Section, error) {
	if secs == nil {
		return nil, nil
	}
	out := make([]Section, 0, len(secs))
	for _, sec := range secs {
		n, err := v.validate(ctx, sec)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}
