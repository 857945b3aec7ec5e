// Package literaturelist builds curated literature lists: a titled resource
// with an ordered sequence of sections. A list section holds ordered
// entries pointing at existing resources; a text section holds a heading
// and free text.
package literaturelist

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
	OpCreate        = "create_literature_list"
	OpUpdate        = "update_literature_list"
	OpCreateSection = "create_literature_list_section"
	OpUpdateSection = "update_literature_list_section"
	OpDeleteSection = "delete_literature_list_section"
)

type Entry struct {
	ID          graph.ThingID `json:"id"`
	Description *string       `json:"description,omitempty"`
}

type ListSection struct {
	Heading string  `json:"heading"`
	Entries []Entry `json:"entries"`
}

type TextSection struct {
	Heading      string `json:"heading"`
	HeadingLevel int    `json:"heading_level"`
	Text         string `json:"text"`
}

// Section is exactly one of List or Text.
type Section struct {
	List *ListSection `json:"list,omitempty"`
	Text *TextSection `json:"text,omitempty"`
}

func sameEntry(a, b Entry) bool {
	return a.ID == b.ID && pointers.Equal(a.Description, b.Description)
}

func (s Section) Equal(o Section) bool {
	switch {
	case s.List != nil && o.List != nil:
		if s.List.Heading != o.List.Heading || len(s.List.Entries) != len(o.List.Entries) {
			return false
		}
		for i := range s.List.Entries {
			if !sameEntry(s.List.Entries[i], o.List.Entries[i]) {
				return false
			}
		}
		return true
	case s.Text != nil && o.Text != nil:
		return *s.Text == *o.Text
	}
	return false
}

// StoredSection is a section read back from the graph. Index is the
// position stored on its hasSection link.
type StoredSection struct {
	ID    graph.ThingID
	Index int
	Section
}

func sameSection(old StoredSection, next Section) bool { return old.Section.Equal(next) }

type CreateCommand struct {
	Contributor      graph.ContributorID    `json:"contributor_id"`
	Title            string                 `json:"title"`
	ResearchFields   []graph.ThingID        `json:"research_fields,omitempty"`
	Authors          []actions.Author       `json:"authors,omitempty"`
	SDGs             []graph.ThingID        `json:"sdgs,omitempty"`
	ObservatoryID    uuid.UUID              `json:"observatory_id,omitempty"`
	OrganizationID   uuid.UUID              `json:"organization_id,omitempty"`
	ExtractionMethod graph.ExtractionMethod `json:"extraction_method,omitempty"`
	Sections         []Section              `json:"sections,omitempty"`
}

// UpdateCommand changes the fields that are set; nil slices are left alone.
type UpdateCommand struct {
	ListID           graph.ThingID           `json:"list_id"`
	Contributor      graph.ContributorID     `json:"contributor_id"`
	Title            *string                 `json:"title,omitempty"`
	ResearchFields   []graph.ThingID         `json:"research_fields,omitempty"`
	Authors          []actions.Author        `json:"authors,omitempty"`
	SDGs             []graph.ThingID         `json:"sdgs,omitempty"`
	ObservatoryID    *uuid.UUID              `json:"observatory_id,omitempty"`
	OrganizationID   *uuid.UUID              `json:"organization_id,omitempty"`
	ExtractionMethod *graph.ExtractionMethod `json:"extraction_method,omitempty"`
	Visibility       *graph.Visibility       `json:"visibility,omitempty"`
	Sections         []Section               `json:"sections,omitempty"`
}

// CreateSectionCommand inserts a section at Index, or appends it when Index
// is nil or past the end.
type CreateSectionCommand struct {
	ListID      graph.ThingID       `json:"list_id"`
	Contributor graph.ContributorID `json:"contributor_id"`
	Index       *int                `json:"index,omitempty"`
	Section
}

type UpdateSectionCommand struct {
	ListID      graph.ThingID       `json:"list_id"`
	SectionID   graph.ThingID       `json:"section_id"`
	Contributor graph.ContributorID `json:"contributor_id"`
	Section
}

type DeleteSectionCommand struct {
	ListID      graph.ThingID       `json:"list_id"`
	SectionID   graph.ThingID       `json:"section_id"`
	Contributor graph.ContributorID `json:"contributor_id"`
}

type Service struct {
	kit           *actions.Kit
	sections      *sections
	validator     sectionValidator
	log           *logger.Logger
	create        *pipeline.Pipeline[CreateCommand, CreateState]
	update        *pipeline.Pipeline[UpdateCommand, UpdateState]
	createSection *pipeline.Pipeline[CreateSectionCommand, SectionState]
	updateSection *pipeline.Pipeline[UpdateSectionCommand, SectionState]
	deleteSection *pipeline.Pipeline[DeleteSectionCommand, SectionState]
}

func New(cfg contenttypes.Config) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Service{
		kit:       cfg.Kit,
		sections:  newSections(cfg.Kit),
		validator: sectionValidator{resources: cfg.Kit.Repos.Resources},
		log:       cfg.Logger().With("content_type", "literature_list"),
	}
	var err error
	if s.create, err = pipeline.New(OpCreate, s.createSteps(), cfg.Options(OpCreate)); err != nil {
		return nil, err
	}
	if s.update, err = pipeline.New(OpUpdate, s.updateSteps(), cfg.Options(OpUpdate)); err != nil {
		return nil, err
	}
	if s.createSection, err = pipeline.New(OpCreateSection, s.createSectionSteps(), cfg.Options(OpCreateSection)); err != nil {
		return nil, err
	}
	if s.updateSection, err = pipeline.New(OpUpdateSection, s.updateSectionSteps(), cfg.Options(OpUpdateSection)); err != nil {
		return nil, err
	}
	if s.deleteSection, err = pipeline.New(OpDeleteSection, s.deleteSectionSteps(), cfg.Options(OpDeleteSection)); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Service) Create(ctx context.Context, cmd CreateCommand) (graph.ThingID, error) {
	st, err := s.create.Run(ctx, cmd, CreateState{})
	if err != nil {
		return "", err
	}
	s.log.Info("literature list created", "list_id", st.ListID, "sections", len(st.Sections))
	return st.ListID, nil
}

func (s *Service) Update(ctx context.Context, cmd UpdateCommand) error {
	if _, err := s.update.Run(ctx, cmd, UpdateState{}); err != nil {
		return err
	}
	s.log.Info("literature list updated", "list_id", cmd.ListID)
	return nil
}

func (s *Service) CreateSection(ctx context.Context, cmd CreateSectionCommand) (graph.ThingID, error) {
	st, err := s.createSection.Run(ctx, cmd, SectionState{})
	if err != nil {
		return "", err
	}
	s.log.Info("literature list section created", "list_id", cmd.ListID, "section_id", st.SectionID)
	return st.SectionID, nil
}

func (s *Service) UpdateSection(ctx context.Context, cmd UpdateSectionCommand) error {
	if _, err := s.updateSection.Run(ctx, cmd, SectionState{}); err != nil {
		return err
	}
	s.log.Info("literature list section updated", "list_id", cmd.ListID, "section_id", cmd.SectionID)
	return nil
}

func (s *Service) DeleteSection(ctx context.Context, cmd DeleteSectionCommand) error {
	if _, err := s.deleteSection.Run(ctx, cmd, SectionState{}); err != nil {
		return err
	}
	s.log.Info("literature list section deleted", "list_id", cmd.ListID, "section_id", cmd.SectionID)
	return nil
}
