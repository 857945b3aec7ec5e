package literaturelist

import (
	"context"

	"github.com/yungbote/kgcontent-backend/internal/contenttypes/errs"
	"github.com/yungbote/kgcontent-backend/internal/contenttypes/pipeline"
	"github.com/yungbote/kgcontent-backend/internal/domain/graph"
)

// SectionState is shared by the single-section operations.
type SectionState struct {
	List      view
	Position  int
	Section   Section
	SectionID graph.ThingID
}

func (s *Service) listExists(ctx context.Context, id graph.ThingID, st SectionState) (SectionState, error) {
	v, err := s.sections.load(ctx, id)
	if err != nil {
		return st, err
	}
	st.List = v
	return st, nil
}

func (s *Service) sectionExists(id graph.ThingID, st SectionState) (SectionState, error) {
	for i, sec := range st.List.Sections {
		if sec.ID == id {
			st.Position = i
			st.SectionID = id
			return st, nil
		}
	}
	return st, errs.NotFound("literature list section", id)
}

func (s *Service) createSectionSteps() []pipeline.Step[CreateSectionCommand, SectionState] {
	return []pipeline.Step[CreateSectionCommand, SectionState]{
		pipeline.Resolver("list-exists", func(ctx context.Context, cmd CreateSectionCommand, st SectionState) (SectionState, error) {
			return s.listExists(ctx, cmd.ListID, st)
		}),
		pipeline.Validator("section-validate", func(ctx context.Context, cmd CreateSectionCommand, st SectionState) (SectionState, error) {
			sec, err := s.validator.validate(ctx, cmd.Section)
			if err != nil {
				return st, err
			}
			if cmd.Index != nil && *cmd.Index < 0 {
				return st, errs.Invalid("section index %d is negative", *cmd.Index)
			}
			st.Section = sec
			st.Position = len(st.List.Sections)
			if cmd.Index != nil && *cmd.Index < st.Position {
				st.Position = *cmd.Index
			}
			return st, nil
		}),
		// Sections at or after the insert position shift down by one.
		pipeline.Creator("section-create", func(ctx context.Context, cmd CreateSectionCommand, st SectionState) (SectionState, error) {
			id, err := s.sections.create(ctx, st.List.Resource.ID, st.Section, st.Position, cmd.Contributor)
			if err != nil {
				return st, err
			}
			st.SectionID = id
			order := make([]StoredSection, 0, len(st.List.Sections)+1)
			order = append(order, st.List.Sections[:st.Position]...)
			order = append(order, StoredSection{ID: id, Index: st.Position, Section: st.Section})
			order = append(order, st.List.Sections[st.Position:]...)
			return st, s.sections.reindex(ctx, st.List.Resource.ID, order, cmd.Contributor)
		}),
	}
}

func (s *Service) updateSectionSteps() []pipeline.Step[UpdateSectionCommand, SectionState] {
	return []pipeline.Step[UpdateSectionCommand, SectionState]{
		pipeline.Resolver("list-exists", func(ctx context.Context, cmd UpdateSectionCommand, st SectionState) (SectionState, error) {
			return s.listExists(ctx, cmd.ListID, st)
		}),
		pipeline.Resolver("section-exists", func(_ context.Context, cmd UpdateSectionCommand, st SectionState) (SectionState, error) {
			return s.sectionExists(cmd.SectionID, st)
		}),
		pipeline.Validator("section-validate", func(ctx context.Context, cmd UpdateSectionCommand, st SectionState) (SectionState, error) {
			sec, err := s.validator.validate(ctx, cmd.Section)
			if err != nil {
				return st, err
			}
			current := st.List.Sections[st.Position]
			if (current.List == nil) != (sec.List == nil) {
				return st, errs.Invalid("section %s cannot change kind", current.ID)
			}
			st.Section = sec
			return st, nil
		}),
		pipeline.Updater("section-update", func(ctx context.Context, cmd UpdateSectionCommand, st SectionState) (SectionState, error) {
			current := st.List.Sections[st.Position]
			if current.Section.Equal(st.Section) {
				return st, nil
			}
			return st, s.sections.update(ctx, current, st.Section, cmd.Contributor)
		}),
	}
}

func (s *Service) deleteSectionSteps() []pipeline.Step[DeleteSectionCommand, SectionState] {
	return []pipeline.Step[DeleteSectionCommand, SectionState]{
		pipeline.Resolver("list-exists", func(ctx context.Context, cmd DeleteSectionCommand, st SectionState) (SectionState, error) {
			return s.listExists(ctx, cmd.ListID, st)
		}),
		pipeline.Resolver("section-exists", func(_ context.Context, cmd DeleteSectionCommand, st SectionState) (SectionState, error) {
			return s.sectionExists(cmd.SectionID, st)
		}),
		// Sections after the removed one close the gap.
		pipeline.Updater("section-delete", func(ctx context.Context, cmd DeleteSectionCommand, st SectionState) (SectionState, error) {
			list, secs := st.List.Resource.ID, st.List.Sections
			if err := s.sections.remove(ctx, list, secs[st.Position]); err != nil {
				return st, err
			}
			rest := make([]StoredSection, 0, len(secs)-1)
			rest = append(rest, secs[:st.Position]...)
			rest = append(rest, secs[st.Position+1:]...)
			return st, s.sections.reindex(ctx, list, rest, cmd.Contributor)
		}),
	}
}
