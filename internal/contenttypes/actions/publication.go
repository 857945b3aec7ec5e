package actions

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/yungbote/kgcontent-backend/internal/contenttypes/errs"
	"github.com/yungbote/kgcontent-backend/internal/contenttypes/ports"
	"github.com/yungbote/kgcontent-backend/internal/contenttypes/reconcile"
	"github.com/yungbote/kgcontent-backend/internal/domain/graph"
)

// PublicationInfo is the bibliographic metadata of a paper or comparison.
// Nil fields are absent.
type PublicationInfo struct {
	Month *int    `json:"published_month,omitempty"`
	Year  *int    `json:"published_year,omitempty"`
	Venue *string `json:"published_in,omitempty"`
	URL   *string `json:"url,omitempty"`
}

// ValidatePublicationInfo returns info with venue and url trimmed, and blank
// strings turned into absent values.
func ValidatePublicationInfo(info *PublicationInfo) (*PublicationInfo, error) {
	if info == nil {
		return nil, nil
	}
	out := &PublicationInfo{Month: info.Month, Year: info.Year}
	if info.Month != nil && (*info.Month < 1 || *info.Month > 12) {
		return nil, errs.Invalid("published month %d out of range", *info.Month)
	}
	if info.Venue != nil {
		if venue := strings.TrimSpace(*info.Venue); venue != "" {
			label, err := graph.NormalizeLabel(venue)
			if err != nil {
				return nil, &errs.InvalidLabelError{Label: venue, Cause: err}
			}
			out.Venue = &label
		}
	}
	if info.URL != nil {
		if url := strings.TrimSpace(*info.URL); url != "" {
			if err := graph.ValidateLiteral(url, graph.DatatypeAnyURI); err != nil {
				return nil, &errs.InvalidLiteralError{Value: url, Datatype: graph.DatatypeAnyURI, Cause: err}
			}
			out.URL = &url
		}
	}
	return out, nil
}

// PublicationInfoWriter stores month and year as integer literals, the url
// as an anyURI literal and the venue as a shared Venue resource.
type PublicationInfoWriter struct {
	resources ports.ResourceStore
	single    *reconcile.SingleValue
}

func NewPublicationInfoWriter(resources ports.ResourceStore, literals ports.LiteralStore, statements ports.StatementStore) *PublicationInfoWriter {
	return &PublicationInfoWriter{resources: resources, single: reconcile.NewSingleValue(literals, statements)}
}

func (w *PublicationInfoWriter) Create(ctx context.Context, subject graph.ThingID, info *PublicationInfo, contributor graph.ContributorID) error {
	if info == nil {
		return nil
	}
	return w.write(ctx, subject, info, contributor)
}

// Update replaces the stored metadata with info field by field; unchanged
// fields are not written. A nil info leaves everything as is.
func (w *PublicationInfoWriter) Update(ctx context.Context, subject graph.ThingID, info *PublicationInfo, contributor graph.ContributorID) error {
	if info == nil {
		return nil
	}
	return w.write(ctx, subject, info, contributor)
}

func (w *PublicationInfoWriter) write(ctx context.Context, subject graph.ThingID, info *PublicationInfo, contributor graph.ContributorID) error {
	if err := w.single.UpdateLiteral(ctx, subject, graph.PredicateMonth, itoa(info.Month), graph.DatatypeInteger, contributor); err != nil {
		return fmt.Errorf("publication month: %w", err)
	}
	if err := w.single.UpdateLiteral(ctx, subject, graph.PredicateYear, itoa(info.Year), graph.DatatypeInteger, contributor); err != nil {
		return fmt.Errorf("publication year: %w", err)
	}
	var venue *graph.ThingID
	if info.Venue != nil {
		id, err := w.venue(ctx, *info.Venue, contributor)
		if err != nil {
			return err
		}
		venue = &id
	}
	if err := w.single.UpdateResource(ctx, subject, graph.PredicateHasVenue, venue, contributor); err != nil {
		return fmt.Errorf("publication venue: %w", err)
	}
	if err := w.single.UpdateLiteral(ctx, subject, graph.PredicateHasURL, info.URL, graph.DatatypeAnyURI, contributor); err != nil {
		return fmt.Errorf("publication url: %w", err)
	}
	return nil
}

// venue returns the first Venue resource with label, creating one if none exists.
func (w *PublicationInfoWriter) venue(ctx context.Context, label string, contributor graph.ContributorID) (graph.ThingID, error) {
	found, err := w.resources.FindResources(ctx, ports.ResourceFilter{Label: label, Class: graph.ClassVenue})
	if err != nil {
		return "", fmt.Errorf("find venue %q: %w", label, err)
	}
	if len(found) > 0 {
		return found[0].ID, nil
	}
	id, err := w.resources.CreateResource(ctx, ports.CreateResourceCommand{
		Label:       label,
		Classes:     []graph.ThingID{graph.ClassVenue},
		Contributor: contributor,
	})
	if err != nil {
		return "", fmt.Errorf("create venue %q: %w", label, err)
	}
	return id, nil
}

func itoa(v *int) *string {
	if v == nil {
		return nil
	}
	s := strconv.Itoa(*v)
	return &s
}
