package paper

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
	Paper           graph.Resource
	Title           *string
	Identifiers     actions.Identifiers
	Authors         []actions.Author
	PublicationInfo *actions.PublicationInfo
}

type updateStep = pipeline.Step[UpdateCommand, UpdateState]

func (s *Service) updateSteps() []updateStep {
	k := s.kit
	return []updateStep{
		pipeline.Resolver("paper-exists", func(ctx context.Context, cmd UpdateCommand, st UpdateState) (UpdateState, error) {
			p, err := s.findPaper(ctx, cmd.PaperID)
			if err != nil {
				return st, err
			}
			st.Paper = p
			return st, nil
		}),
		pipeline.Validator("title-uniqueness", func(ctx context.Context, cmd UpdateCommand, st UpdateState) (UpdateState, error) {
			if cmd.Title == nil || strings.TrimSpace(*cmd.Title) == st.Paper.Label {
				return st, nil
			}
			title, err := k.Titles.ValidateUnique(ctx, *cmd.Title, graph.ClassPaper, st.Paper.ID)
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
			if cmd.ObservatoryID == nil || *cmd.ObservatoryID == st.Paper.ObservatoryID {
				return st, nil
			}
			return st, k.Aggregates.Observatory(ctx, *cmd.ObservatoryID)
		}),
		pipeline.Validator("organization-exists", func(ctx context.Context, cmd UpdateCommand, st UpdateState) (UpdateState, error) {
			if cmd.OrganizationID == nil || *cmd.OrganizationID == st.Paper.OrganizationID {
				return st, nil
			}
			return st, k.Aggregates.Organization(ctx, *cmd.OrganizationID)
		}),
		pipeline.Validator("identifier-validate", func(ctx context.Context, cmd UpdateCommand, st UpdateState) (UpdateState, error) {
			ids, err := k.Identifiers.Validate(ctx, actions.PaperIdentifiers, cmd.Identifiers, graph.ClassPaper, st.Paper.ID)
			if err != nil {
				return st, err
			}
			st.Identifiers = ids
			return st, nil
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
		pipeline.Validator("publication-info-validate", func(_ context.Context, cmd UpdateCommand, st UpdateState) (UpdateState, error) {
			info, err := actions.ValidatePublicationInfo(cmd.PublicationInfo)
			if err != nil {
				return st, err
			}
			st.PublicationInfo = info
			return st, nil
		}),
		pipeline.Validator("extraction-method-validate", func(_ context.Context, cmd UpdateCommand, st UpdateState) (UpdateState, error) {
			return st, actions.ValidateOptionalExtractionMethod(cmd.ExtractionMethod)
		}),
		pipeline.Validator("visibility-validate", func(_ context.Context, cmd UpdateCommand, st UpdateState) (UpdateState, error) {
			return st, actions.ValidateOptionalVisibility(cmd.Visibility)
		}),
		pipeline.Updater("resource-update", func(ctx context.Context, cmd UpdateCommand, st UpdateState) (UpdateState, error) {
			update, changed := resourceUpdate(st.Paper, st.Title, cmd)
			if !changed {
				return st, nil
			}
			if err := k.Repos.Resources.UpdateResource(ctx, st.Paper.ID, update); err != nil {
				return st, fmt.Errorf("update paper %s: %w", st.Paper.ID, err)
			}
			return st, nil
		}),
		pipeline.Updater("research-field-update", func(ctx context.Context, cmd UpdateCommand, st UpdateState) (UpdateState, error) {
			if cmd.ResearchFields == nil {
				return st, nil
			}
			return st, k.ObjectSet.UpdateObjects(ctx, st.Paper.ID, graph.PredicateHasResearchField, cmd.ResearchFields, cmd.Contributor)
		}),
		pipeline.Updater("identifier-update", func(ctx context.Context, cmd UpdateCommand, st UpdateState) (UpdateState, error) {
			if st.Identifiers == nil {
				return st, nil
			}
			return st, k.IdentifierStore.Update(ctx, st.Paper.ID, actions.PaperIdentifiers, st.Identifiers, cmd.Contributor)
		}),
		pipeline.Updater("author-update", func(ctx context.Context, cmd UpdateCommand, st UpdateState) (UpdateState, error) {
			return st, k.AuthorStore.Update(ctx, st.Paper.ID, st.Authors, cmd.Contributor)
		}),
		pipeline.Updater("publication-info-update", func(ctx context.Context, cmd UpdateCommand, st UpdateState) (UpdateState, error) {
			return st, k.Publication.Update(ctx, st.Paper.ID, st.PublicationInfo, cmd.Contributor)
		}),
		pipeline.Updater("sdg-update", func(ctx context.Context, cmd UpdateCommand, st UpdateState) (UpdateState, error) {
			if cmd.SDGs == nil {
				return st, nil
			}
			return st, k.ObjectSet.UpdateObjects(ctx, st.Paper.ID, graph.PredicateSustainableDevelopment, cmd.SDGs, cmd.Contributor)
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
