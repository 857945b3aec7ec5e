// Package template builds and updates templates. A template is a NodeShape
// resource bound to one target class; its ordered property shapes describe
// the statements instances of that class are expected to carry.
package template

import (
	"context"

	"github.com/google/uuid"

	"github.com/yungbote/kgcontent-backend/internal/contenttypes"
	"github.com/yungbote/kgcontent-backend/internal/contenttypes/actions"
	"github.com/yungbote/kgcontent-backend/internal/contenttypes/pipeline"
	"github.com/yungbote/kgcontent-backend/internal/domain/graph"
	"github.com/yungbote/kgcontent-backend/internal/pkg/pointers"
	"github.com/yungbote/kgcontent-backend/internal/platform/logger"
)

const (
	OpCreate         = "create_template"
	OpUpdate         = "update_template"
	OpCreateProperty = "create_template_property"
	OpUpdateProperty = "update_template_property"
)

// Property is one property shape. A property with a Datatype constrains
// literal values, one with a Class constrains resource values, and one with
// neither is untyped.
type Property struct {
	Label        string         `json:"label"`
	Placeholder  *string        `json:"placeholder,omitempty"`
	Description  *string        `json:"description,omitempty"`
	MinCount     *int           `json:"min_count,omitempty"`
	MaxCount     *int           `json:"max_count,omitempty"`
	Path         graph.ThingID  `json:"path"`
	Datatype     *graph.ThingID `json:"datatype,omitempty"`
	Class        *graph.ThingID `json:"class,omitempty"`
	Pattern      *string        `json:"pattern,omitempty"`
	MinInclusive *string        `json:"min_inclusive,omitempty"`
	MaxInclusive *string        `json:"max_inclusive,omitempty"`
}

// Equal compares every field except the position.
func (p Property) Equal(o Property) bool {
	return p.Label == o.Label &&
		p.Path == o.Path &&
		pointers.Equal(p.Placeholder, o.Placeholder) &&
		pointers.Equal(p.Description, o.Description) &&
		pointers.Equal(p.MinCount, o.MinCount) &&
		pointers.Equal(p.MaxCount, o.MaxCount) &&
		pointers.Equal(p.Datatype, o.Datatype) &&
		pointers.Equal(p.Class, o.Class) &&
		pointers.Equal(p.Pattern, o.Pattern) &&
		pointers.Equal(p.MinInclusive, o.MinInclusive) &&
		pointers.Equal(p.MaxInclusive, o.MaxInclusive)
}

// StoredProperty is a property shape read back from the graph.
type StoredProperty struct {
	ID    graph.ThingID
	Order int
	Property
}

func sameProperty(old StoredProperty, next Property) bool { return old.Property.Equal(next) }

// Relations ties a template to the research fields, problems and predicate
// it is meant for.
type Relations struct {
	ResearchFields   []graph.ThingID `json:"research_fields,omitempty"`
	ResearchProblems []graph.ThingID `json:"research_problems,omitempty"`
	Predicate        *graph.ThingID  `json:"predicate,omitempty"`
}

type CreateCommand struct {
	Contributor      graph.ContributorID    `json:"contributor_id"`
	Label            string                 `json:"label"`
	Description      *string                `json:"description,omitempty"`
	FormattedLabel   *string                `json:"formatted_label,omitempty"`
	TargetClass      graph.ThingID          `json:"target_class"`
	Relations        Relations              `json:"relations"`
	Properties       []Property             `json:"properties,omitempty"`
	IsClosed         bool                   `json:"is_closed"`
	ObservatoryID    uuid.UUID              `json:"observatory_id,omitempty"`
	OrganizationID   uuid.UUID              `json:"organization_id,omitempty"`
	ExtractionMethod graph.ExtractionMethod `json:"extraction_method,omitempty"`
}

// UpdateCommand changes the fields that are set. A nil Properties slice
// keeps the property list; an empty Description or FormattedLabel clears it.
type UpdateCommand struct {
	TemplateID       graph.ThingID           `json:"template_id"`
	Contributor      graph.ContributorID     `json:"contributor_id"`
	Label            *string                 `json:"label,omitempty"`
	Description      *string                 `json:"description,omitempty"`
	FormattedLabel   *string                 `json:"formatted_label,omitempty"`
	TargetClass      *graph.ThingID          `json:"target_class,omitempty"`
	Relations        *Relations              `json:"relations,omitempty"`
	Properties       []Property              `json:"properties,omitempty"`
	IsClosed         *bool                   `json:"is_closed,omitempty"`
	ObservatoryID    *uuid.UUID              `json:"observatory_id,omitempty"`
	OrganizationID   *uuid.UUID              `json:"organization_id,omitempty"`
	ExtractionMethod *graph.ExtractionMethod `json:"extraction_method,omitempty"`
}

type CreatePropertyCommand struct {
	TemplateID  graph.ThingID       `json:"template_id"`
	Contributor graph.ContributorID `json:"contributor_id"`
	Property
}

type UpdatePropertyCommand struct {
	TemplateID  graph.ThingID       `json:"template_id"`
	PropertyID  graph.ThingID       `json:"property_id"`
	Contributor graph.ContributorID `json:"contributor_id"`
	Property
}

type Service struct {
	kit            *actions.Kit
	shapes         *shapes
	props          propertyValidator
	log            *logger.Logger
	create         *pipeline.Pipeline[CreateCommand, CreateState]
	update         *pipeline.Pipeline[UpdateCommand, UpdateState]
	createProperty *pipeline.Pipeline[CreatePropertyCommand, PropertyState]
	updateProperty *pipeline.Pipeline[UpdatePropertyCommand, PropertyState]
}

func New(cfg contenttypes.Config) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Service{
		kit:    cfg.Kit,
		shapes: newShapes(cfg.Kit),
		props:  propertyValidator{predicates: cfg.Kit.Repos.Predicates, classes: cfg.Kit.Repos.Classes},
		log:    cfg.Logger().With("content_type", "template"),
	}
	var err error
	if s.create, err = pipeline.New(OpCreate, s.createSteps(), cfg.Options(OpCreate)); err != nil {
		return nil, err
	}
	if s.update, err = pipeline.New(OpUpdate, s.updateSteps(), cfg.Options(OpUpdate)); err != nil {
		return nil, err
	}
	if s.createProperty, err = pipeline.New(OpCreateProperty, s.createPropertySteps(), cfg.Options(OpCreateProperty)); err != nil {
		return nil, err
	}
	if s.updateProperty, err = pipeline.New(OpUpdateProperty, s.updatePropertySteps(), cfg.Options(OpUpdateProperty)); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Service) Create(ctx context.Context, cmd CreateCommand) (graph.ThingID, error) {
	st, err := s.create.Run(ctx, cmd, CreateState{})
	if err != nil {
		return "", err
	}
	s.log.Info("template created", "template_id", st.TemplateID, "target_class", cmd.TargetClass, "properties", len(st.Properties))
	return st.TemplateID, nil
}

func (s *Service) Update(ctx context.Context, cmd UpdateCommand) error {
	if _, err := s.update.Run(ctx, cmd, UpdateState{}); err != nil {
		return err
	}
	s.log.Info("template updated", "template_id", cmd.TemplateID)
	return nil
}

// CreateProperty appends a property to a template and returns its id.
func (s *Service) CreateProperty(ctx context.Context, cmd CreatePropertyCommand) (graph.ThingID, error) {
	st, err := s.createProperty.Run(ctx, cmd, PropertyState{})
	if err != nil {
		return "", err
	}
	s.log.Info("template property created", "template_id", cmd.TemplateID, "property_id", st.PropertyID)
	return st.PropertyID, nil
}

func (s *Service) UpdateProperty(ctx context.Context, cmd UpdatePropertyCommand) error {
	if _, err := s.updateProperty.Run(ctx, cmd, PropertyState{}); err != nil {
		return err
	}
	s.log.Info("template property updated", "template_id", cmd.TemplateID, "property_id", cmd.PropertyID)
	return nil
}
