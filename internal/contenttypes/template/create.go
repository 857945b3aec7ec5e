package template

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
	Label      string
	Properties []Property
	TemplateID graph.ThingID
}

type createStep = pipeline.Step[CreateCommand, CreateState]

func (s *Service) createSteps() []createStep {
	k := s.kit
	return []createStep{
		pipeline.Validator("label-validate", func(_ context.Context, cmd CreateCommand, st CreateState) (CreateState, error) {
			label, err := k.Titles.Validate(cmd.Label)
			if err != nil {
				return st, err
			}
			st.Label = label
			return st, nil
		}),
		pipeline.Validator("target-class-exists", func(ctx context.Context, cmd CreateCommand, st CreateState) (CreateState, error) {
			return st, requireClass(ctx, k, cmd.TargetClass)
		}),
		pipeline.Validator("target-class-unbound", func(ctx context.Context, cmd CreateCommand, st CreateState) (CreateState, error) {
			return st, s.requireUnbound(ctx, cmd.TargetClass, "")
		}),
		pipeline.Validator("relations-validate", func(ctx context.Context, cmd CreateCommand, st CreateState) (CreateState, error) {
			return st, validateRelations(ctx, k, cmd.Relations)
		}),
		pipeline.Validator("observatory-exists", func(ctx context.Context, cmd CreateCommand, st CreateState) (CreateState, error) {
			return st, k.Aggregates.Observatory(ctx, cmd.ObservatoryID)
		}),
		pipeline.Validator("organization-exists", func(ctx context.Context, cmd CreateCommand, st CreateState) (CreateState, error) {
			return st, k.Aggregates.Organization(ctx, cmd.OrganizationID)
		}),
		pipeline.Validator("property-validate", func(ctx context.Context, cmd CreateCommand, st CreateState) (CreateState, error) {
			ps, err := s.props.validateAll(ctx, cmd.Properties)
			if err != nil {
				return st, err
			}
			st.Properties = ps
			return st, nil
		}),
		pipeline.Validator("extraction-method-validate", func(_ context.Context, cmd CreateCommand, st CreateState) (CreateState, error) {
			return st, actions.ValidateExtractionMethod(cmd.ExtractionMethod)
		}),
		pipeline.Creator("resource-create", func(ctx context.Context, cmd CreateCommand, st CreateState) (CreateState, error) {
			id, err := k.Repos.Resources.CreateResource(ctx, ports.CreateResourceCommand{
				Label:            st.Label,
				Classes:          []graph.ThingID{graph.ClassNodeShape},
				ObservatoryID:    cmd.ObservatoryID,
				OrganizationID:   cmd.OrganizationID,
				ExtractionMethod: cmd.ExtractionMethod,
				Contributor:      cmd.Contributor,
			})
			if err != nil {
				return st, fmt.Errorf("create template: %w", err)
			}
			st.TemplateID = id
			return st, nil
		}),
		pipeline.Creator("target-class-link", func(ctx context.Context, cmd CreateCommand, st CreateState) (CreateState, error) {
			return st, k.Links.Link(ctx, st.TemplateID, graph.PredicateShTargetClass, []graph.ThingID{cmd.TargetClass}, cmd.Contributor)
		}),
		pipeline.Creator("relations-create", func(ctx context.Context, cmd CreateCommand, st CreateState) (CreateState, error) {
			r := cmd.Relations
			if err := k.Links.Link(ctx, st.TemplateID, graph.PredicateTemplateOfResearchField, r.ResearchFields, cmd.Contributor); err != nil {
				return st, err
			}
			if err := k.Links.Link(ctx, st.TemplateID, graph.PredicateTemplateOfResearchProblem, r.ResearchProblems, cmd.Contributor); err != nil {
				return st, err
			}
			if r.Predicate == nil {
				return st, nil
			}
			return st, k.Links.Link(ctx, st.TemplateID, graph.PredicateTemplateOfPredicate, []graph.ThingID{*r.Predicate}, cmd.Contributor)
		}),
		pipeline.Creator("properties-create", func(ctx context.Context, cmd CreateCommand, st CreateState) (CreateState, error) {
			for i, p := range st.Properties {
				if _, err := s.shapes.create(ctx, st.TemplateID, p, i, cmd.Contributor); err != nil {
					return st, err
				}
			}
			return st, nil
		}),
		pipeline.Creator("closed-flag-create", func(ctx context.Context, cmd CreateCommand, st CreateState) (CreateState, error) {
			return st, k.SingleValue.UpdateLiteral(ctx, st.TemplateID, graph.PredicateShClosed, closedFlag(cmd.IsClosed), graph.DatatypeBoolean, cmd.Contributor)
		}),
		pipeline.Creator("description-create", func(ctx context.Context, cmd CreateCommand, st CreateState) (CreateState, error) {
			return st, k.SingleValue.UpdateLiteral(ctx, st.TemplateID, graph.PredicateDescription, trimmed(cmd.Description), graph.DatatypeString, cmd.Contributor)
		}),
		pipeline.Creator("label-format-create", func(ctx context.Context, cmd CreateCommand, st CreateState) (CreateState, error) {
			return st, k.SingleValue.UpdateLiteral(ctx, st.TemplateID, graph.PredicateTemplateLabelFormat, trimmed(cmd.FormattedLabel), graph.DatatypeString, cmd.Contributor)
		}),
	}
}

func requireClass(ctx context.Context, k *actions.Kit, id graph.ThingID) error {
	c, err := k.Repos.Classes.FindClass(ctx, id)
	if err != nil {
		return fmt.Errorf("find class %s: %w", id, err)
	}
	if c == nil {
		return errs.NotFound("class", id)
	}
	return nil
}

func (s *Service) requireUnbound(ctx context.Context, class, self graph.ThingID) error {
	other, err := s.shapes.boundTemplate(ctx, class, self)
	if err != nil {
		return err
	}
	if other != "" {
		return errs.Conflict(fmt.Sprintf("class %s already has a template", class), string(other))
	}
	return nil
}

func validateRelations(ctx context.Context, k *actions.Kit, r Relations) error {
	if err := k.Classes.ResearchFields(ctx, r.ResearchFields); err != nil {
		return err
	}
	if err := k.Classes.ResearchProblems(ctx, r.ResearchProblems); err != nil {
		return err
	}
	if r.Predicate == nil {
		return nil
	}
	p, err := k.Repos.Predicates.FindPredicate(ctx, *r.Predicate)
	if err != nil {
		return fmt.Errorf("find predicate %s: %w", *r.Predicate, err)
	}
	if p == nil {
		return errs.NotFound("predicate", *r.Predicate)
	}
	return nil
}

// closedFlag is the sh:closed slot value; open templates carry no flag.
func closedFlag(closed bool) *string {
	if !closed {
		return nil
	}
	v := "true"
	return &v
}
