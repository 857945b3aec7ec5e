package paper

import (
	"context"
	"fmt"

	"github.com/yungbote/kgcontent-backend/internal/contenttypes/actions"
	"github.com/yungbote/kgcontent-backend/internal/contenttypes/errs"
	"github.com/yungbote/kgcontent-backend/internal/contenttypes/pipeline"
	"github.com/yungbote/kgcontent-backend/internal/contenttypes/ports"
	"github.com/yungbote/kgcontent-backend/internal/contenttypes/thingdef"
	"github.com/yungbote/kgcontent-backend/internal/domain/graph"
)

type CreateState struct {
	Title           string
	Identifiers     actions.Identifiers
	Authors         []actions.Author
	PublicationInfo *actions.PublicationInfo
	Roots           []thingdef.Root
	Plan            thingdef.Plan
	PaperID         graph.ThingID
	ValidatedIDs    thingdef.ValidatedIDs
	ContributionIDs []graph.ThingID
}

type createStep = pipeline.Step[CreateCommand, CreateState]

func (s *Service) createSteps() []createStep {
	k := s.kit
	return []createStep{
		pipeline.Validator("title-uniqueness", func(ctx context.Context, cmd CreateCommand, st CreateState) (CreateState, error) {
			title, err := k.Titles.ValidateUnique(ctx, cmd.Title, graph.ClassPaper, "")
			if err != nil {
				return st, err
			}
			st.Title = title
			return st, nil
		}),
		pipeline.Validator("research-field-exists", func(ctx context.Context, cmd CreateCommand, st CreateState) (CreateState, error) {
			return st, k.Classes.ResearchFields(ctx, cmd.ResearchFields)
		}),
		pipeline.Validator("observatory-exists", func(ctx context.Context, cmd CreateCommand, st CreateState) (CreateState, error) {
			return st, k.Aggregates.Observatory(ctx, cmd.ObservatoryID)
		}),
		pipeline.Validator("organization-exists", func(ctx context.Context, cmd CreateCommand, st CreateState) (CreateState, error) {
			return st, k.Aggregates.Organization(ctx, cmd.OrganizationID)
		}),
		pipeline.Validator("identifier-validate", func(ctx context.Context, cmd CreateCommand, st CreateState) (CreateState, error) {
			ids, err := k.Identifiers.Validate(ctx, actions.PaperIdentifiers, cmd.Identifiers, graph.ClassPaper, "")
			if err != nil {
				return st, err
			}
			st.Identifiers = ids
			return st, nil
		}),
		pipeline.Validator("author-validate", func(ctx context.Context, cmd CreateCommand, st CreateState) (CreateState, error) {
			authors, err := k.Authors.Validate(ctx, cmd.Authors)
			if err != nil {
				return st, err
			}
			st.Authors = authors
			return st, nil
		}),
		pipeline.Validator("sdg-validate", func(ctx context.Context, cmd CreateCommand, st CreateState) (CreateState, error) {
			return st, k.Classes.SDGs(ctx, cmd.SDGs)
		}),
		pipeline.Validator("publication-info-validate", func(_ context.Context, cmd CreateCommand, st CreateState) (CreateState, error) {
			info, err := actions.ValidatePublicationInfo(cmd.PublicationInfo)
			if err != nil {
				return st, err
			}
			st.PublicationInfo = info
			return st, nil
		}),
		pipeline.Validator("temp-id-validate", func(_ context.Context, cmd CreateCommand, st CreateState) (CreateState, error) {
			if cmd.Contents == nil {
				return st, nil
			}
			if len(cmd.Contents.Contributions) == 0 {
				return st, errs.Invalid("paper contents must define at least one contribution")
			}
			if err := thingdef.ValidateTempIDs(cmd.Contents.Definitions); err != nil {
				return st, err
			}
			roots := make([]thingdef.Root, 0, len(cmd.Contents.Contributions))
			for i, c := range cmd.Contents.Contributions {
				root, err := contributionRoot(i, c)
				if err != nil {
					return st, err
				}
				roots = append(roots, root)
			}
			st.Roots = roots
			return st, nil
		}),
		pipeline.Resolver("thing-definition-validate", func(ctx context.Context, cmd CreateCommand, st CreateState) (CreateState, error) {
			if cmd.Contents == nil {
				return st, nil
			}
			plan, err := k.ThingValidator.Validate(ctx, cmd.Contents.Definitions, nil, st.Roots...)
			if err != nil {
				return st, err
			}
			st.Plan = plan
			return st, nil
		}),
		pipeline.Validator("extraction-method-validate", func(_ context.Context, cmd CreateCommand, st CreateState) (CreateState, error) {
			return st, actions.ValidateExtractionMethod(cmd.ExtractionMethod)
		}),
		pipeline.Creator("resource-create", func(ctx context.Context, cmd CreateCommand, st CreateState) (CreateState, error) {
			id, err := k.Repos.Resources.CreateResource(ctx, ports.CreateResourceCommand{
				Label:            st.Title,
				Classes:          []graph.ThingID{graph.ClassPaper},
				ObservatoryID:    cmd.ObservatoryID,
				OrganizationID:   cmd.OrganizationID,
				ExtractionMethod: cmd.ExtractionMethod,
				Contributor:      cmd.Contributor,
			})
			if err != nil {
				return st, fmt.Errorf("create paper: %w", err)
			}
			st.PaperID = id
			return st, nil
		}),
		pipeline.Creator("contribution-create", func(ctx context.Context, cmd CreateCommand, st CreateState) (CreateState, error) {
			if len(st.Roots) == 0 {
				return st, nil
			}
			validated, err := k.ThingCreator.Create(ctx, st.Plan, thingdef.CreateOptions{
				Contributor:      cmd.Contributor,
				ObservatoryID:    cmd.ObservatoryID,
				OrganizationID:   cmd.OrganizationID,
				ExtractionMethod: cmd.ExtractionMethod,
			})
			if err != nil {
				return st, err
			}
			ids, err := linkContributions(ctx, k, st.PaperID, st.Roots, validated, cmd.Contributor)
			if err != nil {
				return st, err
			}
			st.ValidatedIDs = validated
			st.ContributionIDs = ids
			return st, nil
		}),
		pipeline.Creator("identifier-create", func(ctx context.Context, cmd CreateCommand, st CreateState) (CreateState, error) {
			return st, k.IdentifierStore.Create(ctx, st.PaperID, actions.PaperIdentifiers, st.Identifiers, cmd.Contributor)
		}),
		pipeline.Creator("author-create", func(ctx context.Context, cmd CreateCommand, st CreateState) (CreateState, error) {
			return st, k.AuthorStore.Create(ctx, st.PaperID, st.Authors, cmd.Contributor)
		}),
		pipeline.Creator("research-field-link", func(ctx context.Context, cmd CreateCommand, st CreateState) (CreateState, error) {
			return st, k.Links.Link(ctx, st.PaperID, graph.PredicateHasResearchField, cmd.ResearchFields, cmd.Contributor)
		}),
		pipeline.Creator("publication-info-create", func(ctx context.Context, cmd CreateCommand, st CreateState) (CreateState, error) {
			return st, k.Publication.Create(ctx, st.PaperID, st.PublicationInfo, cmd.Contributor)
		}),
		pipeline.Creator("sdg-link", func(ctx context.Context, cmd CreateCommand, st CreateState) (CreateState, error) {
			return st, k.Links.Link(ctx, st.PaperID, graph.PredicateSustainableDevelopment, cmd.SDGs, cmd.Contributor)
		}),
	}
}

// linkContributions attaches every materialized root to the paper in
// submission order.
func linkContributions(ctx context.Context, k *actions.Kit, paper graph.ThingID, roots []thingdef.Root, validated thingdef.ValidatedIDs, contributor graph.ContributorID) ([]graph.ThingID, error) {
	ids := make([]graph.ThingID, 0, len(roots))
	for _, root := range roots {
		id, ok := validated.ThingID(string(root.TempID))
		if !ok {
			return nil, fmt.Errorf("contribution %s was not created", root.TempID)
		}
		ids = append(ids, id)
	}
	if err := k.Links.Link(ctx, paper, graph.PredicateHasContribution, ids, contributor); err != nil {
		return nil, err
	}
	return ids, nil
}
