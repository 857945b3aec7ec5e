package template

import (
	"context"
	"fmt"

	"github.com/yungbote/kgcontent-backend/internal/contenttypes/actions"
	"github.com/yungbote/kgcontent-backend/internal/contenttypes/errs"
	"github.com/yungbote/kgcontent-backend/internal/contenttypes/pipeline"
	"github.com/yungbote/kgcontent-backend/internal/contenttypes/ports"
	"github.com/yungbote/kgcontent-backend/internal/contenttypes/reconcile"
	"github.com/yungbote/kgcontent-backend/internal/domain/graph"
)

type UpdateState struct {
	Template view
	Label    *string
	// Properties is nil when the property list is left unchanged.
	Properties []Property
}

type updateStep = pipeline.Step[UpdateCommand, UpdateState]

func (st UpdateState) targetChanged(cmd UpdateCommand) bool {
	return cmd.TargetClass != nil && *cmd.TargetClass != st.Template.TargetClass
}

func (s *Service) updateSteps() []updateStep {
	k := s.kit
	return []updateStep{
		pipeline.Resolver("template-exists", func(ctx context.Context, cmd UpdateCommand, st UpdateState) (UpdateState, error) {
			v, err := s.shapes.load(ctx, cmd.TemplateID)
			if err != nil {
				return st, err
			}
			st.Template = v
			return st, nil
		}),
		pipeline.Validator("label-validate", func(_ context.Context, cmd UpdateCommand, st UpdateState) (UpdateState, error) {
			if cmd.Label == nil {
				return st, nil
			}
			label, err := k.Titles.Validate(*cmd.Label)
			if err != nil {
				return st, err
			}
			st.Label = &label
			return st, nil
		}),
		pipeline.Validator("target-class-exists", func(ctx context.Context, cmd UpdateCommand, st UpdateState) (UpdateState, error) {
			if !st.targetChanged(cmd) {
				return st, nil
			}
			return st, requireClass(ctx, k, *cmd.TargetClass)
		}),
		pipeline.Validator("target-class-unbound", func(ctx context.Context, cmd UpdateCommand, st UpdateState) (UpdateState, error) {
			if !st.targetChanged(cmd) {
				return st, nil
			}
			return st, s.requireUnbound(ctx, *cmd.TargetClass, st.Template.Resource.ID)
		}),
		pipeline.Validator("relations-validate", func(ctx context.Context, cmd UpdateCommand, st UpdateState) (UpdateState, error) {
			if cmd.Relations == nil {
				return st, nil
			}
			return st, validateRelations(ctx, k, *cmd.Relations)
		}),
		pipeline.Validator("observatory-exists", func(ctx context.Context, cmd UpdateCommand, st UpdateState) (UpdateState, error) {
			if cmd.ObservatoryID == nil || *cmd.ObservatoryID == st.Template.Resource.ObservatoryID {
				return st, nil
			}
			return st, k.Aggregates.Observatory(ctx, *cmd.ObservatoryID)
		}),
		pipeline.Validator("organization-exists", func(ctx context.Context, cmd UpdateCommand, st UpdateState) (UpdateState, error) {
			if cmd.OrganizationID == nil || *cmd.OrganizationID == st.Template.Resource.OrganizationID {
				return st, nil
			}
			return st, k.Aggregates.Organization(ctx, *cmd.OrganizationID)
		}),
		pipeline.Validator("property-validate", func(ctx context.Context, cmd UpdateCommand, st UpdateState) (UpdateState, error) {
			ps, err := s.props.validateAll(ctx, cmd.Properties)
			if err != nil {
				return st, err
			}
			st.Properties = ps
			return st, nil
		}),
		pipeline.Validator("closed-template-guard", func(_ context.Context, cmd UpdateCommand, st UpdateState) (UpdateState, error) {
			if !st.Template.Closed || st.Properties == nil {
				return st, nil
			}
			if !reconcile.Equal(st.Template.Properties, st.Properties, sameProperty) {
				return st, &errs.TemplateClosedError{TemplateID: st.Template.Resource.ID}
			}
			return st, nil
		}),
		pipeline.Validator("extraction-method-validate", func(_ context.Context, cmd UpdateCommand, st UpdateState) (UpdateState, error) {
			return st, actions.ValidateOptionalExtractionMethod(cmd.ExtractionMethod)
		}),
		pipeline.Updater("resource-update", func(ctx context.Context, cmd UpdateCommand, st UpdateState) (UpdateState, error) {
			update, changed := resourceUpdate(st.Template.Resource, st.Label, cmd)
			if !changed {
				return st, nil
			}
			if err := k.Repos.Resources.UpdateResource(ctx, st.Template.Resource.ID, update); err != nil {
				return st, fmt.Errorf("update template %s: %w", st.Template.Resource.ID, err)
			}
			return st, nil
		}),
		pipeline.Updater("description-update", func(ctx context.Context, cmd UpdateCommand, st UpdateState) (UpdateState, error) {
			if cmd.Description == nil {
				return st, nil
			}
			return st, k.SingleValue.UpdateLiteral(ctx, st.Template.Resource.ID, graph.PredicateDescription, trimmed(cmd.Description), graph.DatatypeString, cmd.Contributor)
		}),
		pipeline.Updater("label-format-update", func(ctx context.Context, cmd UpdateCommand, st UpdateState) (UpdateState, error) {
			if cmd.FormattedLabel == nil {
				return st, nil
			}
			return st, k.SingleValue.UpdateLiteral(ctx, st.Template.Resource.ID, graph.PredicateTemplateLabelFormat, trimmed(cmd.FormattedLabel), graph.DatatypeString, cmd.Contributor)
		}),
		pipeline.Updater("target-class-update", func(ctx context.Context, cmd UpdateCommand, st UpdateState) (UpdateState, error) {
			if !st.targetChanged(cmd) {
				return st, nil
			}
			return st, k.SingleValue.UpdateResource(ctx, st.Template.Resource.ID, graph.PredicateShTargetClass, cmd.TargetClass, cmd.Contributor)
		}),
		pipeline.Updater("relations-update", func(ctx context.Context, cmd UpdateCommand, st UpdateState) (UpdateState, error) {
			if cmd.Relations == nil {
				return st, nil
			}
			id, r := st.Template.Resource.ID, cmd.Relations
			if err := k.ObjectSet.UpdateObjects(ctx, id, graph.PredicateTemplateOfResearchField, r.ResearchFields, cmd.Contributor); err != nil {
				return st, err
			}
			if err := k.ObjectSet.UpdateObjects(ctx, id, graph.PredicateTemplateOfResearchProblem, r.ResearchProblems, cmd.Contributor); err != nil {
				return st, err
			}
			return st, k.SingleValue.UpdateResource(ctx, id, graph.PredicateTemplateOfPredicate, r.Predicate, cmd.Contributor)
		}),
		pipeline.Updater("properties-update", func(ctx context.Context, cmd UpdateCommand, st UpdateState) (UpdateState, error) {
			if st.Properties == nil {
				return st, nil
			}
			return st, s.shapes.reconcileProperties(ctx, st.Template.Resource.ID, st.Template.Properties, st.Properties, cmd.Contributor)
		}),
		pipeline.Updater("closed-flag-update", func(ctx context.Context, cmd UpdateCommand, st UpdateState) (UpdateState, error) {
			if cmd.IsClosed == nil || *cmd.IsClosed == st.Template.Closed {
				return st, nil
			}
			return st, k.SingleValue.UpdateLiteral(ctx, st.Template.Resource.ID, graph.PredicateShClosed, closedFlag(*cmd.IsClosed), graph.DatatypeBoolean, cmd.Contributor)
		}),
	}
}

func resourceUpdate(current graph.Resource, label *string, cmd UpdateCommand) (ports.ResourceUpdate, bool) {
	var u ports.ResourceUpdate
	changed := false
	if label != nil && *label != current.Label {
		u.Label = label
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
	return u, changed
}
