package literaturelist

import (
	"context"
	"fmt"

	"github.com/yungbote/kgcontent-backend/internal/contenttypes/actions"
	"github.com/yungbote/kgcontent-backend/internal/contenttypes/pipeline"
	"github.com/yungbote/kgcontent-backend/internal/contenttypes/ports"
	"github.com/yungbote/kgcontent-backend/internal/domain/graph"
)

type CreateState struct {
	Title    string
	Authors  []actions.Author
	Sections []Section
	ListID   graph.ThingID
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
		pipeline.Validator("section-validate", func(ctx context.Context, cmd CreateCommand, st CreateState) (CreateState, error) {
			secs, err := s.validator.validateAll(ctx, cmd.Sections)
			if err != nil {
				return st, err
			}
			st.Sections = secs
			return st, nil
		}),
		pipeline.Validator("extraction-method-validate", func(_ context.Context, cmd CreateCommand, st CreateState) (CreateState, error) {
			return st, actions.ValidateExtractionMethod(cmd.ExtractionMethod)
		}),
		pipeline.Creator("resource-create", func(ctx context.Context, cmd CreateCommand, st CreateState) (CreateState, error) {
			id, err := k.Repos.Resources.CreateResource(ctx, ports.CreateResourceCommand{
				Label:            st.Title,
				Classes:          []graph.ThingID{graph.ClassLiteratureList},
				ObservatoryID:    cmd.ObservatoryID,
				OrganizationID:   cmd.OrganizationID,
				ExtractionMethod: cmd.ExtractionMethod,
				Contributor:      cmd.Contributor,
			})
			if err != nil {
				return st, fmt.Errorf("create literature list: %w", err)
			}
			st.ListID = id
			return st, nil
		}),
		pipeline.Creator("research-field-link", func(ctx context.Context, cmd CreateCommand, st CreateState) (CreateState, error) {
			return st, k.Links.Link(ctx, st.ListID, graph.PredicateHasResearchField, cmd.ResearchFields, cmd.Contributor)
		}),
		pipeline.Creator("author-create", func(ctx context.Context, cmd CreateCommand, st CreateState) (CreateState, error) {
			return st, k.AuthorStore.Create(ctx, st.ListID, st.Authors, cmd.Contributor)
		}),
		pipeline.Creator("sdg-link", func(ctx context.Context, cmd CreateCommand, st CreateState) (CreateState, error) {
			return st, k.Links.Link(ctx, st.ListID, graph.PredicateSustainableDevelopment, cmd.SDGs, cmd.Contributor)
		}),
		pipeline.Creator("sections-create", func(ctx context.Context, cmd CreateCommand, st CreateState) (CreateState, error) {
			for i, sec := range st.Sections {
				if _, err := s.sections.create(ctx, st.ListID, sec, i, cmd.Contributor); err != nil {
					return st, err
				}
			}
			return st, nil
		}),
	}
}
