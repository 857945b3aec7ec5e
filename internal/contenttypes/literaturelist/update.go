package literaturelist

import (
	"context"
	"fmt"
	"strings"

	"github.com/yungbote/kgcontent-backend/internal/contenttypes/actions"
	"github.com/yungbote/kgcontent-backend/internal/contenttypes/pipeline"
	"github.com/yungbote/kgcontent-backend/internal/contenttypes/ports"
	"github.com/yungbote/kgcontent-backend/internal/domain/graph"
)

type UpdateState struct {
	List    view
	Title   *string
	Authors []actions.Author
	// Sections is nil when the section list is left unchanged.
	Sections []Section
}

type updateStep = pipeline.Step[UpdateCommand, UpdateState]

func (s *Service) updateSteps() []updateStep {
	k := s.kit
	return []updateStep{
		pipeline.Resolver("list-exists", func(ctx context.Context, cmd UpdateCommand, st UpdateState) (UpdateState, error) {
			v, err := s.sections.load(ctx, cmd.ListID)
			if err != nil {
				return st, err
			}
			st.List = v
			return st, nil
		}),
		pipeline.Validator("title-validate", func(_ context.Context, cmd UpdateCommand, st UpdateState) (UpdateState, error) {
			if cmd.Title == nil || strings.TrimSpace(*cmd.Title) == st.List.Resource.Label {
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
		pipeline.Validator("observatory-exists", func(ctx context.Context, cmd UpdateCommand, st UpdateState) (UpdateState, error) {
			if cmd.ObservatoryID == nil || *cmd.ObservatoryID == st.List.Resource.ObservatoryID {
				return st, nil
			}
			return st, k.Aggregates.Observatory(ctx, *cmd.ObservatoryID)
		}),
		pipeline.Validator("organization-exists", func(ctx context.Context, cmd UpdateCommand, st UpdateState) (UpdateState, error) {
			if cmd.OrganizationID == nil || *cmd.OrganizationID == st.List.Resource.OrganizationID {
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
		pipeline.Validator("section-validate", func(ctx context.Context, cmd UpdateCommand, st UpdateState) (UpdateState, error) {
			secs, err := s.validator.validateAll(ctx, cmd.Sections)
			if err != nil {
				return st, err
			}
			st.Sections = secs
			return st, nil
		}),
		pipeline.Validator("extraction-method-validate", func(_ context.Context, cmd UpdateCommand, st UpdateState) (UpdateState, error) {
			return st, actions.ValidateOptionalExtractionMethod(cmd.ExtractionMethod)
		}),
		pipeline.Validator("visibility-validate", func(_ context.Context, cmd UpdateCommand, st UpdateState) (UpdateState, error) {
			return st, actions.ValidateOptionalVisibility(cmd.Visibility)
		}),
		pipeline.Updater("resource-update", func(ctx context.Context, cmd UpdateCommand, st UpdateState) (UpdateState, error) {
			update, changed := resourceUpdate(st.List.Resource, st.Title, cmd)
			if !changed {
				return st, nil
			}
			if err := k.Repos.Resources.UpdateResource(ctx, st.List.Resource.ID, update); err != nil {
				return st, fmt.Errorf("update literature list %s: %w", st.List.Resource.ID, err)
			}
			return st, nil
		}),
		pipeline.Updater("research-field-update", func(ctx context.Context, cmd UpdateCommand, st UpdateState) (UpdateState, error) {
			if cmd.ResearchFields == nil {
				return st, nil
			}
			return st, k.ObjectSet.UpdateObjects(ctx, st.List.Resource.ID, graph.PredicateHasResearchField, cmd.ResearchFields, cmd.Contributor)
		}),
		pipeline.Updater("author-update", func(ctx context.Context, cmd UpdateCommand, st UpdateState) (UpdateState, error) {
			return st, k.AuthorStore.Update(ctx, st.List.Resource.ID, st.Authors, cmd.Contributor)
		}),
		pipeline.Updater("sdg-update", func(ctx context.Context, cmd UpdateCommand, st UpdateState) (UpdateState, error) {
			if cmd.SDGs == nil {
				return st, nil
			}
			return st, k.ObjectSet.UpdateObjects(ctx, st.List.Resource.ID, graph.PredicateSustainableDevelopment, cmd.SDGs, cmd.Contributor)
		}),
		pipeline.Updater("sections-update", func(ctx context.Context, cmd UpdateCommand, st UpdateState) (UpdateState, error) {
			if st.Sections == nil {
				return st, nil
			}
			return st, s.sections.reconcileSections(ctx, st.List.Resource.ID, st.List.Sections, st.Sections, cmd.Contributor)
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
