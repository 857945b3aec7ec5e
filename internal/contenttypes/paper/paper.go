// Package paper builds and updates papers: a Paper resource with its
// bibliographic metadata, authors, research fields, SDGs and contributions.
package paper

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/yungbote/kgcontent-backend/internal/contenttypes"
	"github.com/yungbote/kgcontent-backend/internal/contenttypes/actions"
	"github.com/yungbote/kgcontent-backend/internal/contenttypes/errs"
	"github.com/yungbote/kgcontent-backend/internal/contenttypes/pipeline"
	"github.com/yungbote/kgcontent-backend/internal/contenttypes/thingdef"
	"github.com/yungbote/kgcontent-backend/internal/domain/graph"
	"github.com/yungbote/kgcontent-backend/internal/platform/logger"
)

const (
	OpCreate             = "create_paper"
	OpUpdate             = "update_paper"
	OpCreateContribution = "create_contribution"
)

// Contribution is a root resource of a paper's content. Its statements may
// reference the temp ids declared in the surrounding definitions.
type Contribution struct {
	Label      string                                 `json:"label"`
	Classes    []graph.ThingID                        `json:"classes,omitempty"`
	Statements map[graph.ThingID][]thingdef.ObjectRef `json:"statements,omitempty"`
}

// Contents is the nested subgraph submitted with a paper.
type Contents struct {
	thingdef.Definitions
	Contributions []Contribution `json:"contributions"`
}

type CreateCommand struct {
	Contributor      graph.ContributorID      `json:"contributor_id"`
	Title            string                   `json:"title"`
	ResearchFields   []graph.ThingID          `json:"research_fields,omitempty"`
	Identifiers      actions.Identifiers      `json:"identifiers,omitempty"`
	PublicationInfo  *actions.PublicationInfo `json:"publication_info,omitempty"`
	Authors          []actions.Author         `json:"authors,omitempty"`
	SDGs             []graph.ThingID          `json:"sdgs,omitempty"`
	ObservatoryID    uuid.UUID                `json:"observatory_id,omitempty"`
	OrganizationID   uuid.UUID                `json:"organization_id,omitempty"`
	ExtractionMethod graph.ExtractionMethod   `json:"extraction_method,omitempty"`
	Contents         *Contents                `json:"contents,omitempty"`
}

// UpdateCommand changes the fields that are set. Nil slices and maps leave
// the stored values alone; empty ones clear them.
type UpdateCommand struct {
	PaperID          graph.ThingID            `json:"paper_id"`
	Contributor      graph.ContributorID      `json:"contributor_id"`
	Title            *string                  `json:"title,omitempty"`
	ResearchFields   []graph.ThingID          `json:"research_fields,omitempty"`
	Identifiers      actions.Identifiers      `json:"identifiers,omitempty"`
	PublicationInfo  *actions.PublicationInfo `json:"publication_info,omitempty"`
	Authors          []actions.Author         `json:"authors,omitempty"`
	SDGs             []graph.ThingID          `json:"sdgs,omitempty"`
	ObservatoryID    *uuid.UUID               `json:"observatory_id,omitempty"`
	OrganizationID   *uuid.UUID               `json:"organization_id,omitempty"`
	ExtractionMethod *graph.ExtractionMethod  `json:"extraction_method,omitempty"`
	Visibility       *graph.Visibility        `json:"visibility,omitempty"`
}

type CreateContributionCommand struct {
	PaperID          graph.ThingID          `json:"paper_id"`
	Contributor      graph.ContributorID    `json:"contributor_id"`
	ExtractionMethod graph.ExtractionMethod `json:"extraction_method,omitempty"`
	thingdef.Definitions
	Contribution Contribution `json:"contribution"`
}

type Service struct {
	kit          *actions.Kit
	log          *logger.Logger
	create       *pipeline.Pipeline[CreateCommand, CreateState]
	update       *pipeline.Pipeline[UpdateCommand, UpdateState]
	contribution *pipeline.Pipeline[CreateContributionCommand, ContributionState]
}

func New(cfg contenttypes.Config) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Service{kit: cfg.Kit, log: cfg.Logger().With("content_type", "paper")}
	var err error
	if s.create, err = pipeline.New(OpCreate, s.createSteps(), cfg.Options(OpCreate)); err != nil {
		return nil, err
	}
	if s.update, err = pipeline.New(OpUpdate, s.updateSteps(), cfg.Options(OpUpdate)); err != nil {
		return nil, err
	}
	if s.contribution, err = pipeline.New(OpCreateContribution, s.contributionSteps(), cfg.Options(OpCreateContribution)); err != nil {
		return nil, err
	}
	return s, nil
}

// Create runs the create-paper pipeline and returns the new paper id.
func (s *Service) Create(ctx context.Context, cmd CreateCommand) (graph.ThingID, error) {
	st, err := s.create.Run(ctx, cmd, CreateState{})
	if err != nil {
		return "", err
	}
	s.log.Info("paper created", "paper_id", st.PaperID, "contributions", len(st.ContributionIDs), "contributor_id", cmd.Contributor)
	return st.PaperID, nil
}

func (s *Service) Update(ctx context.Context, cmd UpdateCommand) error {
	if _, err := s.update.Run(ctx, cmd, UpdateState{}); err != nil {
		return err
	}
	s.log.Info("paper updated", "paper_id", cmd.PaperID, "contributor_id", cmd.Contributor)
	return nil
}

// CreateContribution adds one contribution to an existing paper.
func (s *Service) CreateContribution(ctx context.Context, cmd CreateContributionCommand) (graph.ThingID, error) {
	st, err := s.contribution.Run(ctx, cmd, ContributionState{})
	if err != nil {
		return "", err
	}
	s.log.Info("contribution created", "paper_id", cmd.PaperID, "contribution_id", st.ContributionID, "contributor_id", cmd.Contributor)
	return st.ContributionID, nil
}

func (s *Service) findPaper(ctx context.Context, id graph.ThingID) (graph.Resource, error) {
	r, err := s.kit.Repos.Resources.FindResource(ctx, id)
	if err != nil {
		return graph.Resource{}, fmt.Errorf("find paper %s: %w", id, err)
	}
	if r == nil || !r.HasClass(graph.ClassPaper) {
		return graph.Resource{}, errs.NotFound("paper", id)
	}
	return *r, nil
}

// contributionRoot turns a submitted contribution into a trusted root
// definition carrying the Contribution class. User classes stay subject to
// the reserved-class rule.
func contributionRoot(n int, c Contribution) (thingdef.Root, error) {
	classes := make([]graph.ThingID, 0, len(c.Classes)+1)
	classes = append(classes, graph.ClassContribution)
	for _, cl := range c.Classes {
		if cl == graph.ClassContribution {
			continue
		}
		if graph.IsReservedClass(cl) {
			return thingdef.Root{}, errs.Invalid("class %q is reserved", cl)
		}
		classes = append(classes, cl)
	}
	return thingdef.Root{
		TempID: thingdef.RootID("c", n),
		Definition: thingdef.ResourceDefinition{
			Label:      c.Label,
			Classes:    classes,
			Statements: c.Statements,
		},
	}, nil
}
