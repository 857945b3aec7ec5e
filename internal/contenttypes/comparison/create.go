package comparison

import (
	"context"
	"fmt"

	"github.com/yungbote/kgcontent-backend/internal/contenttypes/actions"
	"github.com/yungbote/kgcontent-backend/internal/contenttypes/errs"
	"github.com/yungbote/kgcontent-backend/internal/contenttypes/pipeline"
	"github.com/yungbote/kgcontent-backend/internal/contenttypes/ports"
	"github.com/yungbote/kgcontent-backend/internal/domain/graph"
)

type CreateState struct {
	Title           string
	Authors         []actions.Author
	Identifiers     actions.Identifiers
	PublicationInfo *actions.PublicationInfo
	References      []string
	ComparisonID    graph.ThingID
}

type createStep = pipeline.Step[CreateCommand, CreateState]

func (s *Service) createSteps() []createStep {
	k := s.kit
	return []createStep{
		pipeline.Validator("title-validate", func(_ context.Context, cmd CreateCommand, st CreateState) (CreateState, error) {
			title, err := k.Titles.Validate(cmd.Title)
			if err != nil {
				return st, err
			}
			st.Title = title
			return st, nil
		}),
		pipeline.Validator("research-field-exists", func(ctx context.Context, cmd CreateCommand, st CreateState) (CreateState, error) {
			return st, k.Classes.ResearchFields(ctx, cmd.ResearchFields)
		}),
		pipeline.Validator("contributions-exist", func(ctx context.Context, cmd CreateCommand, st CreateState) (CreateState, error) {
			if len(cmd.Contributions) == 0 {
				return st, errs.Invalid("a comparison needs at least one contribution")
			}
			return st, k.Classes.Contributions(ctx, cmd.Contributions)
		}),
		pipeline.Validator("observatory-exists", func(ctx context.Context, cmd CreateCommand, st CreateState) (CreateState, error) {
			return st, k.Aggregates.Observatory(ctx, cmd.ObservatoryID)
		}),
		pipeline.Validator("organization-exists", func(ctx context.Context, cmd CreateCommand, st CreateState) (CreateState, error) {
			return st, k.Aggregates.Organization(ctx, cmd.OrganizationID)
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
		pipeline.Validator("identifier-validate", func(ctx context.Context, cmd CreateCommand, st CreateState) (CreateState, error) {
			ids, err := k.Identifiers.Validate(ctx, actions.ComparisonIdentifiers, cmd.Identifiers, graph.ClassComparison, "")
			if err != nil {
				return st, err
			}
			st.Identifiers = ids
			return st, nil
		}),
		pipeline.Validator("publication-info-validate", func(_ context.Context, cmd CreateCommand, st CreateState) (CreateState, error) {
			info, err := actions.ValidatePublicationInfo(cmd.PublicationInfo)
			if err != nil {
				return st, err
			}
			st.PublicationInfo = info
			return st, nil
		}),
		pipeline.Validator("references-validate", func(_ context.Context, cmd CreateCommand, st CreateState) (CreateState, error) {
			refs, err := normalizeReferences(cmd.References)
			if err != nil {
				return st, err
			}
			st.References = refs
			return st, nil
		}),
		pipeline.Validator("extraction-method-validate", func(_ context.Context, cmd CreateCommand, st CreateState) (CreateState, error) {
			return st, actions.ValidateExtractionMethod(cmd.ExtractionMethod)
		}),
		pipeline.Creator("resource-create", func(ctx context.Context, cmd CreateCommand, st CreateState) (CreateState, error) {
			id, err := k.Repos.Resources.CreateResource(ctx, ports.CreateResourceCommand{
				Label:            st.Title,
				Classes:          []graph.ThingID{graph.ClassComparison},
				ObservatoryID:    cmd.ObservatoryID,
				OrganizationID:   cmd.OrganizationID,
				ExtractionMethod: cmd.ExtractionMethod,
				Contributor:      cmd.Contributor,
			})
			if err != nil {
				return st, fmt.Errorf("create comparison: %w", err)
			}
			st.ComparisonID = id
			return st, nil
		}),
		pipeline.Creator("description-create", func(ctx context.Context, cmd CreateCommand, st CreateState) (CreateState, error) {
			return st, k.SingleValue.UpdateLiteral(ctx, st.ComparisonID, graph.PredicateDescription, description(cmd.Description), graph.DatatypeString, cmd.Contributor)
		}),
		pipeline.Creator("research-field-link", func(ctx context.Context, cmd CreateCommand, st CreateState) (CreateState, error) {
			return st, k.Links.Link(ctx, st.ComparisonID, graph.PredicateHasResearchField, cmd.ResearchFields, cmd.Contributor)
		}),
		pipeline.Creator("contribution-link", func(ctx context.Context, cmd CreateCommand, st CreateState) (CreateState, error) {
			return st, k.Links.Link(ctx, st.ComparisonID, graph.PredicateComparesContribution, cmd.Contributions, cmd.Contributor)
		}),
		pipeline.Creator("author-create", func(ctx context.Context, cmd CreateCommand, st CreateState) (CreateState, error) {
			return st, k.AuthorStore.Create(ctx, st.ComparisonID, st.Authors, cmd.Contributor)
		}),
		pipeline.Creator("sdg-link", func(ctx context.Context, cmd CreateCommand, st CreateState) (CreateState, error) {
			return st, k.Links.Link(ctx, st.ComparisonID, graph.PredicateSustainableDevelopment, cmd.SDGs, cmd.Contributor)
		}),
		pipeline.Creator("identifier-create", func(ctx context.Context, cmd CreateCommand, st CreateState) (CreateState, error) {
			return st, k.IdentifierStore.Create(ctx, st.ComparisonID, actions.ComparisonIdentifiers, st.Identifiers, cmd.Contributor)
		}),
		pipeline.Creator("publication-info-create", func(ctx context.Context, cmd CreateCommand, st CreateState) (CreateState, error) {
			return st, k.Publication.Create(ctx, st.ComparisonID, st.PublicationInfo, cmd.Contributor)
		}),
		pipeline.Creator("references-create", func(ctx context.Context, cmd CreateCommand, st CreateState) (CreateState, error) {
			if len(st.References) == 0 {
				return st, nil
			}
			return st, k.LiteralSet.UpdateLiterals(ctx, st.ComparisonID, graph.PredicateReference, st.References, graph.DatatypeString, cmd.Contributor)
		}),
		pipeline.Creator("anonymization-create", func(ctx context.Context, cmd CreateCommand, st CreateState) (CreateState, error) {
			return st, k.SingleValue.UpdateLiteral(ctx, st.ComparisonID, graph.PredicateIsAnonymized, anonymizedFlag(cmd.IsAnonymized), graph.DatatypeBoolean, cmd.Contributor)
		}),
	}
}
