// Package comparison builds comparisons: a titled resource that compares a
// set of existing contributions and carries the bibliographic metadata of
// a publication.
package comparison

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/kgcontent-backend/internal/contenttypes"
	"github.com/yungbote/kgcontent-backend/internal/contenttypes/actions"
	"github.com/yungbote/kgcontent-backend/internal/contenttypes/errs"
	"github.com/yungbote/kgcontent-backend/internal/contenttypes/pipeline"
	"github.com/yungbote/kgcontent-backend/internal/domain/graph"
	"github.com/yungbote/kgcontent-backend/internal/platform/logger"
)

const (
	OpCreate = "create_comparison"
	OpUpdate = "update_comparison"
)

type CreateCommand struct {
	Contributor      graph.ContributorID      `json:"contributor_id"`
	Title            string                   `json:"title"`
	Description      *string                  `json:"description,omitempty"`
	ResearchFields   []graph.ThingID          `json:"research_fields,omitempty"`
	Contributions    []graph.ThingID          `json:"contributions"`
	References       []string                 `json:"references,omitempty"`
	IsAnonymized     bool                     `json:"is_anonymized"`
	Authors          []actions.Author         `json:"authors,omitempty"`
	SDGs             []graph.ThingID          `json:"sdgs,omitempty"`
	Identifiers      actions.Identifiers      `json:"identifiers,omitempty"`
	PublicationInfo  *actions.PublicationInfo `json:"publication_info,omitempty"`
	ObservatoryID    uuid.UUID                `json:"observatory_id,omitempty"`
	OrganizationID   uuid.UUID                `json:"organization_id,omitempty"`
	ExtractionMethod graph.ExtractionMethod   `json:"extraction_method,omitempty"`
}

// UpdateCommand changes the fields that are set; nil slices and maps are
// left alone and an empty Description clears it.
type UpdateCommand struct {
	ComparisonID     graph.ThingID            `json:"comparison_id"`
	Contributor      graph.ContributorID      `json:"contributor_id"`
	Title            *string                  `json:"title,omitempty"`
	Description      *string                  `json:"description,omitempty"`
	ResearchFields   []graph.ThingID          `json:"research_fields,omitempty"`
	Contributions    []graph.ThingID          `json:"contributions,omitempty"`
	References       []string                 `json:"references,omitempty"`
	IsAnonymized     *bool                    `json:"is_anonymized,omitempty"`
	Authors          []actions.Author         `json:"authors,omitempty"`
	SDGs             []graph.ThingID          `json:"sdgs,omitempty"`
	Identifiers      actions.Identifiers      `json:"identifiers,omitempty"`
	PublicationInfo  *actions.PublicationInfo `json:"publication_info,omitempty"`
	ObservatoryID    *uuid.UUID               `json:"observatory_id,omitempty"`
	OrganizationID   *uuid.UUID               `json:"organization_id,omitempty"`
	ExtractionMethod *graph.ExtractionMethod  `json:"extraction_method,omitempty"`
	Visibility       *graph.Visibility        `json:"visibility,omitempty"`
}

type Service struct {
	kit    *actions.Kit
	log    *logger.Logger
	create *pipeline.Pipeline[CreateCommand, CreateState]
	update *pipeline.Pipeline[UpdateCommand, UpdateState]
}

func New(cfg contenttypes.Config) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Service{kit: cfg.Kit, log: cfg.Logger().With("content_type", "comparison")}
	var err error
	if s.create, err = pipeline.New(OpCreate, s.createSteps(), cfg.Options(OpCreate)); err != nil {
		return nil, err
	}
	if s.update, err = pipeline.New(OpUpdate, s.updateSteps(), cfg.Options(OpUpdate)); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Service) Create(ctx context.Context, cmd CreateCommand) (graph.ThingID, error) {
	st, err := s.create.Run(ctx, cmd, CreateState{})
	if err != nil {
		return "", err
	}
	s.log.Info("comparison created", "comparison_id", st.ComparisonID, "contributions", len(cmd.Contributions))
	return st.ComparisonID, nil
}

func (s *Service) Update(ctx context.Context, cmd UpdateCommand) error {
	if _, err := s.update.Run(ctx, cmd, UpdateState{}); err != nil {
		return err
	}
	s.log.Info("comparison updated", "comparison_id", cmd.ComparisonID)
	return nil
}

func (s *Service) findComparison(ctx context.Context, id graph.ThingID) (graph.Resource, error) {
	r, err := s.kit.Repos.Resources.FindResource(ctx, id)
	if err != nil {
		return graph.Resource{}, fmt.Errorf("find comparison %s: %w", id, err)
	}
	if r == nil || !r.HasClass(graph.ClassComparison) {
		return graph.Resource{}, errs.NotFound("comparison", id)
	}
	return *r, nil
}

// normalizeReferences trims references, drops blanks and duplicates, and
// checks the remaining values are storable literals. nil stays nil.
func normalizeReferences(refs []string) ([]string, error) {
	if refs == nil {
		return nil, nil
	}
	out := make([]string, 0, len(refs))
	seen := make(map[string]bool, len(refs))
	for _, r := range refs {
		r = strings.TrimSpace(r)
		if r == "" || seen[r] {
			continue
		}
		if err := graph.ValidateLiteral(r, graph.DatatypeString); err != nil {
			return nil, &errs.InvalidLiteralError{Value: r, Datatype: graph.DatatypeString, Cause: err}
		}
		seen[r] = true
		out = append(out, r)
	}
	return out, nil
}

func anonymizedFlag(v bool) *string {
	s := "false"
	if v {
		s = "true"
	}
	return &s
}

func description(d *string) *string {
	if d == nil {
		return nil
	}
	t := strings.TrimSpace(*d)
	if t == "" {
		return nil
	}
	return &t
}
