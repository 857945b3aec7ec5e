package template

import (
	"context"

	"github.com/yungbote/kgcontent-backend/internal/contenttypes/errs"
	"github.com/yungbote/kgcontent-backend/internal/contenttypes/pipeline"
	"github.com/yungbote/kgcontent-backend/internal/domain/graph"
)

// PropertyState is shared by the single-property operations. Current is
// set only when an existing property is targeted.
type PropertyState struct {
	Template   view
	Current    *StoredProperty
	Property   Property
	PropertyID graph.ThingID
}

func (s *Service) templateExists(ctx context.Context, id graph.ThingID, st PropertyState) (PropertyState, error) {
	v, err := s.shapes.load(ctx, id)
	if err != nil {
		return st, err
	}
	st.Template = v
	return st, nil
}

func (s *Service) createPropertySteps() []pipeline.Step[CreatePropertyCommand, PropertyState] {
	return []pipeline.Step[CreatePropertyCommand, PropertyState]{
		pipeline.Resolver("template-exists", func(ctx context.Context, cmd CreatePropertyCommand, st PropertyState) (PropertyState, error) {
			return s.templateExists(ctx, cmd.TemplateID, st)
		}),
		pipeline.Validator("property-validate", func(ctx context.Context, cmd CreatePropertyCommand, st PropertyState) (PropertyState, error) {
			p, err := s.props.validate(ctx, cmd.Property)
			if err != nil {
				return st, err
			}
			st.Property = p
			return st, nil
		}),
		// Appending always changes the list length.
		pipeline.Validator("closed-template-guard", func(_ context.Context, _ CreatePropertyCommand, st PropertyState) (PropertyState, error) {
			if st.Template.Closed {
				return st, &errs.TemplateClosedError{TemplateID: st.Template.Resource.ID}
			}
			return st, nil
		}),
		pipeline.Creator("property-create", func(ctx context.Context, cmd CreatePropertyCommand, st PropertyState) (PropertyState, error) {
			id, err := s.shapes.create(ctx, st.Template.Resource.ID, st.Property, len(st.Template.Properties), cmd.Contributor)
			if err != nil {
				return st, err
			}
			st.PropertyID = id
			return st, nil
		}),
	}
}

func (s *Service) updatePropertySteps() []pipeline.Step[UpdatePropertyCommand, PropertyState] {
	return []pipeline.Step[UpdatePropertyCommand, PropertyState]{
		pipeline.Resolver("template-exists", func(ctx context.Context, cmd UpdatePropertyCommand, st PropertyState) (PropertyState, error) {
			return s.templateExists(ctx, cmd.TemplateID, st)
		}),
		pipeline.Resolver("property-exists", func(_ context.Context, cmd UpdatePropertyCommand, st PropertyState) (PropertyState, error) {
			for i := range st.Template.Properties {
				if st.Template.Properties[i].ID == cmd.PropertyID {
					p := st.Template.Properties[i]
					st.Current = &p
					st.PropertyID = p.ID
					return st, nil
				}
			}
			return st, errs.NotFound("template property", cmd.PropertyID)
		}),
		pipeline.Validator("property-validate", func(ctx context.Context, cmd UpdatePropertyCommand, st PropertyState) (PropertyState, error) {
			p, err := s.props.validate(ctx, cmd.Property)
			if err != nil {
				return st, err
			}
			st.Property = p
			return st, nil
		}),
		pipeline.Validator("closed-template-guard", func(_ context.Context, _ UpdatePropertyCommand, st PropertyState) (PropertyState, error) {
			if st.Template.Closed && !st.Current.Property.Equal(st.Property) {
				return st, &errs.TemplateClosedError{TemplateID: st.Template.Resource.ID}
			}
			return st, nil
		}),
		pipeline.Updater("property-update", func(ctx context.Context, cmd UpdatePropertyCommand, st PropertyState) (PropertyState, error) {
			return st, s.shapes.update(ctx, *st.Current, st.Property, cmd.Contributor)
		}),
	}
}
