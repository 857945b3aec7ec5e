package literaturelist

import (
	"context"
	"fmt"
	"strconv"

	"github.com/yungbote/kgcontent-backend/internal/contenttypes/actions"
	"github.com/yungbote/kgcontent-backend/internal/contenttypes/errs"
	"github.com/yungbote/kgcontent-backend/internal/contenttypes/ports"
	"github.com/yungbote/kgcontent-backend/internal/contenttypes/reconcile"
	"github.com/yungbote/kgcontent-backend/internal/domain/graph"
)

const entryLabel = "Entry"

type view struct {
	Resource graph.Resource
	Sections []StoredSection
}

type storedEntry struct {
	ID    graph.ThingID
	Index int
	Entry
}

func matchEntry(old storedEntry, next Entry) bool { return sameEntry(old.Entry, next) }

// sections reads and writes the section subgraphs of a literature list.
type sections struct {
	resources  ports.ResourceStore
	literals   ports.LiteralStore
	statements ports.StatementStore
	single     *reconcile.SingleValue
}

func newSections(k *actions.Kit) *sections {
	return &sections{
		resources:  k.Repos.Resources,
		literals:   k.Repos.Literals,
		statements: k.Repos.Statements,
		single:     k.SingleValue,
	}
}

func (s *sections) links(ctx context.Context, subject, predicate graph.ThingID) ([]graph.Statement, error) {
	sts, err := s.statements.FindStatements(ctx, ports.StatementFilter{SubjectID: subject, PredicateID: predicate})
	if err != nil {
		return nil, fmt.Errorf("find %s of %s: %w", predicate, subject, err)
	}
	return sts, nil
}

func (s *sections) load(ctx context.Context, id graph.ThingID) (view, error) {
	r, err := s.resources.FindResource(ctx, id)
	if err != nil {
		return view{}, fmt.Errorf("find literature list %s: %w", id, err)
	}
	if r == nil || !r.HasClass(graph.ClassLiteratureList) {
		return view{}, errs.NotFound("literature list", id)
	}
	v := view{Resource: *r}
	links, err := s.links(ctx, id, graph.PredicateHasSection)
	if err != nil {
		return view{}, err
	}
	for i, l := range links {
		sec, err := s.loadSection(ctx, l.ObjectID)
		if err != nil {
			return view{}, err
		}
		sec.Index = indexOr(l.Index, i)
		v.Sections = append(v.Sections, sec)
	}
	return v, nil
}

func (s *sections) loadSection(ctx context.Context, id graph.ThingID) (StoredSection, error) {
	r, err := s.resources.FindResource(ctx, id)
	if err != nil {
		return StoredSection{}, fmt.Errorf("find section %s: %w", id, err)
	}
	if r == nil {
		return StoredSection{}, errs.NotFound("literature list section", id)
	}
	sec := StoredSection{ID: id}
	switch {
	case r.HasClass(graph.ClassListSection):
		entries, err := s.loadEntries(ctx, id)
		if err != nil {
			return StoredSection{}, err
		}
		ls := &ListSection{Heading: r.Label, Entries: make([]Entry, 0, len(entries))}
		for _, e := range entries {
			ls.Entries = append(ls.Entries, e.Entry)
		}
		sec.List = ls
	case r.HasClass(graph.ClassTextSection):
		ts := &TextSection{Heading: r.Label}
		level, err := s.links(ctx, id, graph.PredicateHasHeadingLevel)
		if err != nil {
			return StoredSection{}, err
		}
		if len(level) > 0 {
			ts.HeadingLevel, _ = strconv.Atoi(level[0].ObjectLabel())
		}
		text, err := s.links(ctx, id, graph.PredicateHasContent)
		if err != nil {
			return StoredSection{}, err
		}
		if len(text) > 0 {
			ts.Text = text[0].ObjectLabel()
		}
		sec.Text = ts
	default:
		return StoredSection{}, fmt.Errorf("resource %s is not a literature list section", id)
	}
	return sec, nil
}

func (s *sections) loadEntries(ctx context.Context, section graph.ThingID) ([]storedEntry, error) {
	links, err := s.links(ctx, section, graph.PredicateHasEntry)
	if err != nil {
		return nil, err
	}
	out := make([]storedEntry, 0, len(links))
	for i, l := range links {
		e := storedEntry{ID: l.ObjectID, Index: indexOr(l.Index, i)}
		target, err := s.links(ctx, l.ObjectID, graph.PredicateHasLink)
		if err != nil {
			return nil, err
		}
		if len(target) > 0 {
			e.Entry.ID = target[0].ObjectID
		}
		desc, err := s.links(ctx, l.ObjectID, graph.PredicateDescription)
		if err != nil {
			return nil, err
		}
		if len(desc) > 0 {
			d := desc[0].ObjectLabel()
			e.Description = &d
		}
		out = append(out, e)
	}
	return out, nil
}

// create writes a section and links it to the list at index.
func (s *sections) create(ctx context.Context, list graph.ThingID, sec Section, index int, contributor graph.ContributorID) (graph.ThingID, error) {
	class, heading := graph.ClassTextSection, ""
	if sec.List != nil {
		class, heading = graph.ClassListSection, sec.List.Heading
	} else {
		heading = sec.Text.Heading
	}
	id, err := s.resources.CreateResource(ctx, ports.CreateResourceCommand{
		Label:       heading,
		Classes:     []graph.ThingID{class},
		Contributor: contributor,
	})
	if err != nil {
		return "", fmt.Errorf("create section: %w", err)
	}
	if err := s.link(ctx, list, graph.PredicateHasSection, id, index, contributor); err != nil {
		return "", err
	}
	if sec.List != nil {
		for i, e := range sec.List.Entries {
			if err := s.createEntry(ctx, id, e, i, contributor); err != nil {
				return "", err
			}
		}
		return id, nil
	}
	if err := s.writeText(ctx, id, *sec.Text, contributor); err != nil {
		return "", err
	}
	return id, nil
}

func (s *sections) writeText(ctx context.Context, id graph.ThingID, t TextSection, contributor graph.ContributorID) error {
	level := strconv.Itoa(t.HeadingLevel)
	if err := s.single.UpdateLiteral(ctx, id, graph.PredicateHasHeadingLevel, &level, graph.DatatypeInteger, contributor); err != nil {
		return err
	}
	return s.single.UpdateLiteral(ctx, id, graph.PredicateHasContent, &t.Text, graph.DatatypeString, contributor)
}

func (s *sections) createEntry(ctx context.Context, section graph.ThingID, e Entry, index int, contributor graph.ContributorID) error {
	id, err := s.resources.CreateResource(ctx, ports.CreateResourceCommand{
		Label:       entryLabel,
		Classes:     []graph.ThingID{graph.ClassEntry},
		Contributor: contributor,
	})
	if err != nil {
		return fmt.Errorf("create entry: %w", err)
	}
	if err := s.link(ctx, section, graph.PredicateHasEntry, id, index, contributor); err != nil {
		return err
	}
	if _, err := s.statements.CreateStatement(ctx, ports.CreateStatementCommand{
		SubjectID:   id,
		PredicateID: graph.PredicateHasLink,
		ObjectID:    e.ID,
		Contributor: contributor,
	}); err != nil {
		return fmt.Errorf("link entry to %s: %w", e.ID, err)
	}
	return s.single.UpdateLiteral(ctx, id, graph.PredicateDescription, e.Description, graph.DatatypeString, contributor)
}

func (s *sections) link(ctx context.Context, subject, predicate, object graph.ThingID, index int, contributor graph.ContributorID) error {
	if _, err := s.statements.CreateStatement(ctx, ports.CreateStatementCommand{
		SubjectID:   subject,
		PredicateID: predicate,
		ObjectID:    object,
		Index:       &index,
		Contributor: contributor,
	}); err != nil {
		return fmt.Errorf("link %s to %s: %w", object, subject, err)
	}
	return nil
}

// relink moves object to index by replacing its indexed link.
func (s *sections) relink(ctx context.Context, subject, predicate, object graph.ThingID, index int, contributor graph.ContributorID) error {
	if err := s.unlink(ctx, subject, predicate, object); err != nil {
		return err
	}
	return s.link(ctx, subject, predicate, object, index, contributor)
}

func (s *sections) unlink(ctx context.Context, subject, predicate, object graph.ThingID) error {
	sts, err := s.statements.FindStatements(ctx, ports.StatementFilter{SubjectID: subject, PredicateID: predicate, ObjectID: object})
	if err != nil {
		return fmt.Errorf("find %s link to %s: %w", predicate, object, err)
	}
	return s.deleteStatements(ctx, sts)
}

func (s *sections) deleteStatements(ctx context.Context, sts []graph.Statement) error {
	if len(sts) == 0 {
		return nil
	}
	ids := make([]graph.StatementID, 0, len(sts))
	for _, st := range sts {
		ids = append(ids, st.ID)
	}
	if err := s.statements.DeleteStatements(ctx, ids...); err != nil {
		return fmt.Errorf("delete statements: %w", err)
	}
	return nil
}

// purge deletes a resource, the statements it is the subject of and the
// literals those statements point at.
func (s *sections) purge(ctx context.Context, id graph.ThingID) error {
	owned, err := s.statements.FindStatements(ctx, ports.StatementFilter{SubjectID: id})
	if err != nil {
		return fmt.Errorf("find statements of %s: %w", id, err)
	}
	if err := s.deleteStatements(ctx, owned); err != nil {
		return err
	}
	for _, st := range owned {
		if _, ok := st.Object.(graph.Literal); !ok {
			continue
		}
		if err := s.literals.DeleteLiteral(ctx, st.ObjectID); err != nil {
			return fmt.Errorf("delete literal %s: %w", st.ObjectID, err)
		}
	}
	if err := s.resources.DeleteResource(ctx, id); err != nil {
		return fmt.Errorf("delete %s: %w", id, err)
	}
	return nil
}

// remove unlinks a section from the list and deletes it with its entries.
func (s *sections) remove(ctx context.Context, list graph.ThingID, sec StoredSection) error {
	if err := s.unlink(ctx, list, graph.PredicateHasSection, sec.ID); err != nil {
		return err
	}
	if sec.List != nil {
		entries, err := s.links(ctx, sec.ID, graph.PredicateHasEntry)
		if err != nil {
			return err
		}
		for _, e := range entries {
			if err := s.purge(ctx, e.ObjectID); err != nil {
				return err
			}
		}
	}
	return s.purge(ctx, sec.ID)
}

// reconcileSections applies the greedy ordered diff between the stored and
// the requested sections. Kept sections whose position changed are relinked.
func (s *sections) reconcileSections(ctx context.Context, list graph.ThingID, current []StoredSection, next []Section, contributor graph.ContributorID) error {
	for _, op := range reconcile.Plan(current, next, sameSection) {
		switch op.Kind {
		case reconcile.OpKeep:
			kept := current[op.OldIndex]
			if kept.Index == op.NewIndex {
				continue
			}
			if err := s.relink(ctx, list, graph.PredicateHasSection, kept.ID, op.NewIndex, contributor); err != nil {
				return err
			}
		case reconcile.OpCreate:
			if _, err := s.create(ctx, list, next[op.NewIndex], op.NewIndex, contributor); err != nil {
				return err
			}
		case reconcile.OpDelete:
			if err := s.remove(ctx, list, current[op.OldIndex]); err != nil {
				return err
			}
		}
	}
	return nil
}

// reindex relinks every section whose stored index differs from its
// position in order.
func (s *sections) reindex(ctx context.Context, list graph.ThingID, order []StoredSection, contributor graph.ContributorID) error {
	for i, sec := range order {
		if sec.Index == i {
			continue
		}
		if err := s.relink(ctx, list, graph.PredicateHasSection, sec.ID, i, contributor); err != nil {
			return err
		}
	}
	return nil
}

// update rewrites a stored section in place. The section kind never changes.
func (s *sections) update(ctx context.Context, current StoredSection, next Section, contributor graph.ContributorID) error {
	heading := next.heading()
	if heading != current.heading() {
		if err := s.resources.UpdateResource(ctx, current.ID, ports.ResourceUpdate{Label: &heading}); err != nil {
			return fmt.Errorf("update section %s: %w", current.ID, err)
		}
	}
	if next.Text != nil {
		return s.writeText(ctx, current.ID, *next.Text, contributor)
	}
	entries, err := s.loadEntries(ctx, current.ID)
	if err != nil {
		return err
	}
	for _, op := range reconcile.Plan(entries, next.List.Entries, matchEntry) {
		switch op.Kind {
		case reconcile.OpKeep:
			kept := entries[op.OldIndex]
			if kept.Index == op.NewIndex {
				continue
			}
			if err := s.relink(ctx, current.ID, graph.PredicateHasEntry, kept.ID, op.NewIndex, contributor); err != nil {
				return err
			}
		case reconcile.OpCreate:
			if err := s.createEntry(ctx, current.ID, next.List.Entries[op.NewIndex], op.NewIndex, contributor); err != nil {
				return err
			}
		case reconcile.OpDelete:
			gone := entries[op.OldIndex]
			if err := s.unlink(ctx, current.ID, graph.PredicateHasEntry, gone.ID); err != nil {
				return err
			}
			if err := s.purge(ctx, gone.ID); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s Section) heading() string {
	if s.List != nil {
		return s.List.Heading
	}
	if s.Text != nil {
		return s.Text.Heading
	}
	return ""
}

func indexOr(index *int, fallback int) int {
	if index == nil {
		return fallback
	}
	return *index
}
