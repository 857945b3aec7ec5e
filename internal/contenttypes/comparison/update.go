package comparison

import (
	"context"
	"fmt"
	"strings"

	"github.com/yungbote/kgcontent-backend/internal/contenttypes/actions"
	"github.com/yungbote/kgcontent-backend/internal/contenttypes/errs"
	"github.com/yungbote/kgcontent-backend/internal/contenttypes/pipeline"
	"github.com/yungbote/kgcontent-backend/internal/contenttypes/ports"
	"github.com/yungbote/kgcontent-backend/internal/domain/graph"
)

type UpdateState struct {
	Comparison      graph.Resource
	Title           *string
	Authors         []actions.Author
	Identifiers     actions.Identifiers
	PublicationInfo *actions.PublicationInfo
	References      []string
}

type updateStep = pipeline.Step[UpdateCommand, UpdateState]

func (s *Service) updateSteps() []updateStep {
	k := s.kit
	return []updateStep{
		pipeline.Resolver("comparison-exists", func(ctx context.Context, cmd UpdateCommand, st UpdateState) (UpdateState, error) {
			c, err := s.findComparison(ctx, cmd.ComparisonID)
			if err != nil {
				return st, err
			}
			st.Comparison = c
			return st, nil
		}),
		pipeline.Validator("title-validate", func(_ context.Context, cmd UpdateCommand, st UpdateState) (UpdateState, error) {
			if cmd.Title == nil || strings.TrimSpace(*cmd.Title) == st.Comparison.Label {
				return st, nil
			}
			title, err := k.Titles.Validate(*cmd.Title)
			if err != nil {
				return st, err
			}
			st.Title = &title
			return st, nil
		}),
		pipeline.Validator("research-field-exists", func(ctx context.Context, cmd UpdateCommand, st UpdateState) (UpdateState, error) {
			return st, k.Classes.ResearchFields(ctx, cmd.ResearchFields)
		}),
		pipeline.Validator("contributions-exist", func(ctx context.Context, cmd UpdateCommand, st UpdateState) (UpdateState, error) {
			if cmd.Contributions != nil && len(cmd.Contributions) == 0 {
				return st, errs.Invalid("a comparison needs at least one contribution")
			}
			return st, k.Classes.Contributions(ctx, cmd.Contributions)
		}),
		pipeline.Validator("observatory-exists", func(ctx context.Context, cmd UpdateCommand, st UpdateState) (UpdateState, error) {
			if cmd.ObservatoryID == nil || *cmd.ObservatoryID == st.Comparison.ObservatoryID {
				return st, nil
			}
			return st, k.Aggregates.Observatory(ctx, *cmd.ObservatoryID)
		}),
		pipeline.Validator("organization-exists", func(ctx context.Context, cmd UpdateCommand, st UpdateState) (UpdateState, error) {
			if cmd.OrganizationID == nil || *cmd.OrganizationID == st.Comparison.OrganizationID {
				return st, nil
			}
			return st, k.Aggregates.Organization(ctx, *cmd.OrganizationID)
		}),
		pipeline.Validator("author-validate", func(ctx context.Context, cmd UpdateCommand, st UpdateState) (UpdateState, error) {
			authors, err := k.Authors.Validate(ctx, cmd.Authors)
			if err != nil {
				return st, err
			}
			st.Authors = authors
			return st, nil
		}),
		pipeline.Validator("sdg-validate", func(ctx context.Context, cmd UpdateCommand, st UpdateState) (UpdateState, error) {
			return st, k.Classes.SDGs(ctx, cmd.SDGs)
		}),
		pipeline.Validator("identifier-validate", func(ctx context.Context, cmd UpdateCommand, st UpdateState) (UpdateState, error) {
			ids, err := k.Identifiers.Validate(ctx, actions.ComparisonIdentifiers, cmd.Identifiers, graph.ClassComparison, st.Comparison.ID)
			if err != nil {
				return st, err
			}
			st.Identifiers = ids
			return st, nil
		}),
		pipeline.Validator("publication-info-validate", func(_ context.Context, cmd UpdateCommand, st UpdateState) (UpdateState, error) {
			info, err := actions.ValidatePublicationInfo(cmd.PublicationInfo)
			if err != nil {
				return st, err
			}
			st.PublicationInfo = info
			return st, nil
		}),
		pipeline.Validator("references-validate", func(_ context.Context, cmd UpdateCommand, st UpdateState) (UpdateState, error) {
			refs, err := normalizeReferences(cmd.References)
			if err != nil {
				return st, err
			}
			st.References = refs
			return st, nil
		}),
		pipeline.Validator("extraction-method-validate", func(_ context.Context, cmd UpdateCommand, st UpdateState) (UpdateState, error) {
			return st, actions.ValidateOptionalExtractionMethod(cmd.ExtractionMethod)
		}),
		pipeline.Validator("visibility-validate", func(_ context.Context, cmd UpdateCommand, st UpdateState) (UpdateState, error) {
			return st, actions.ValidateOptionalVisibility(cmd.Visibility)
		}),
		pipeline.Updater("resource-update", func(ctx context.Context, cmd UpdateCommand, st UpdateState) (UpdateState, error) {
			update, changed := resourceUpdate(st.Comparison, st.Title, cmd)
			if !changed {
				return st, nil
			}
			if err := k.Repos.Resources.UpdateResource(ctx, st.Comparison.ID, update); err != nil {
				return st, fmt.Errorf("update comparison %s: %w", st.Comparison.ID, err)
			}
			return st, nil
		}),
		pipeline.Updater("description-update", func(ctx context.Context, cmd UpdateCommand, st UpdateState) (UpdateState, error) {
			if cmd.Description == nil {
				return st, nil
			}
			return st, k.SingleValue.UpdateLiteral(ctx, st.Comparison.ID, graph.PredicateDescription, description(cmd.Description), graph.DatatypeString, cmd.Contributor)
		}),
		pipeline.Updater("research-field-update", func(ctx context.Context, cmd UpdateCommand, st UpdateState) (UpdateState, error) {
			if cmd.ResearchFields == nil {
				return st, nil
			}
			return st, k.ObjectSet.UpdateObjects(ctx, st.Comparison.ID, graph.PredicateHasResearchField, cmd.ResearchFields, cmd.Contributor)
		}),
		pipeline.Updater("contribution-update", func(ctx context.Context, cmd UpdateCommand, st UpdateState) (UpdateState, error) {
			if cmd.Contributions == nil {
				return st, nil
			}
			return st, k.ObjectSet.UpdateObjects(ctx, st.Comparison.ID, graph.PredicateComparesContribution, cmd.Contributions, cmd.Contributor)
		}),
		pipeline.Updater("author-update", func(ctx context.Context, cmd UpdateCommand, st UpdateState) (UpdateState, error) {
			return st, k.AuthorStore.Update(ctx, st.Comparison.ID, st.Authors, cmd.Contributor)
		}),
		pipeline.Updater("sdg-update", func(ctx context.Context, cmd UpdateCommand, st UpdateState) (UpdateState, error) {
			if cmd.SDGs == nil {
				return st, nil
			}
			return st, k.ObjectSet.UpdateObjects(ctx, st.Comparison.ID, graph.PredicateSustainableDevelopment, cmd.SDGs, cmd.Contributor)
		}),
		pipeline.Updater("identifier-update", func(ctx context.Context, cmd UpdateCommand, st UpdateState) (UpdateState, error) {
			if st.Identifiers == nil {
				return st, nil
			}
			return st, k.IdentifierStore.Update(ctx, st.Comparison.ID, actions.ComparisonIdentifiers, st.Identifiers, cmd.Contributor)
		}),
		pipeline.Updater("publication-info-update", func(ctx context.Context, cmd UpdateCommand, st UpdateState) (UpdateState, error) {
			return st, k.Publication.Update(ctx, st.Comparison.ID, st.PublicationInfo, cmd.Contributor)
		}),
		pipeline.Updater("references-update", func(ctx context.Context, cmd UpdateCommand, st UpdateState) (UpdateState, error) {
			if st.References == nil {
				return st, nil
			}
			return st, k.LiteralSet.UpdateLiterals(ctx, st.Comparison.ID, graph.PredicateReference, st.References, graph.DatatypeString, cmd.Contributor)
		}),
		pipeline.Updater("anonymization-update", func(ctx context.Context, cmd UpdateCommand, st UpdateState) (UpdateState, error) {
			if cmd.IsAnonymized == nil {
				return st, nil
			}
			return st, k.SingleValue.UpdateLiteral(ctx, st.Comparison.ID, graph.PredicateIsAnonymized, anonymizedFlag(*cmd.IsAnonymized), graph.DatatypeBoolean, cmd.Contributor)
		}),
	}
}

func resourceUpdate(current graph.Resource, title *string, cmd UpdateCommand) (ports.ResourceUpdate, bool) {
	var u ports.ResourceUpdate
	changed := false
	if title != nil && *title != current.Label {
		u.Label = title
		changed = true
	}
	if cmd.ObservatoryID != nil && *cmd.ObservatoryID != current.ObservatoryID {
		u.ObservatoryID = cmd.ObservatoryID
		changed = true
	}
	if cmd.OrganizationID != nil && *cmd.OrganizationID != current.OrganizationID {
		u.OrganizationID = cmd.OrganizationID
		changed = true
	}
	if cmd.ExtractionMethod != nil && *cmd.ExtractionMethod != current.ExtractionMethod {
		u.ExtractionMethod = cmd.ExtractionMethod
		changed = true
	}
	if cmd.Visibility != nil && *cmd.Visibility != current.Visibility {
		u.Visibility = cmd.Visibility
		changed = true
	}
	return u, changed
}
