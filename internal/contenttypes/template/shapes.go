package template

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/yungbote/kgcontent-backend/internal/contenttypes/actions"
	"github.com/yungbote/kgcontent-backend/internal/contenttypes/errs"
	"github.com/yungbote/kgcontent-backend/internal/contenttypes/ports"
	"github.com/yungbote/kgcontent-backend/internal/contenttypes/reconcile"
	"github.com/yungbote/kgcontent-backend/internal/domain/graph"
)

// view is a template as read back from the graph.
type view struct {
	Resource    graph.Resource
	TargetClass graph.ThingID
	Closed      bool
	Properties  []StoredProperty
}

// shapes reads and writes NodeShape and PropertyShape subgraphs.
type shapes struct {
	resources  ports.ResourceStore
	literals   ports.LiteralStore
	statements ports.StatementStore
	single     *reconcile.SingleValue
}

func newShapes(k *actions.Kit) *shapes {
	return &shapes{
		resources:  k.Repos.Resources,
		literals:   k.Repos.Literals,
		statements: k.Repos.Statements,
		single:     k.SingleValue,
	}
}

func (s *shapes) find(ctx context.Context, id graph.ThingID, predicate graph.ThingID) ([]graph.Statement, error) {
	sts, err := s.statements.FindStatements(ctx, ports.StatementFilter{SubjectID: id, PredicateID: predicate})
	if err != nil {
		return nil, fmt.Errorf("find %s of %s: %w", predicate, id, err)
	}
	return sts, nil
}

func (s *shapes) load(ctx context.Context, id graph.ThingID) (view, error) {
	r, err := s.resources.FindResource(ctx, id)
	if err != nil {
		return view{}, fmt.Errorf("find template %s: %w", id, err)
	}
	if r == nil || !r.HasClass(graph.ClassNodeShape) {
		return view{}, errs.NotFound("template", id)
	}
	v := view{Resource: *r}

	target, err := s.find(ctx, id, graph.PredicateShTargetClass)
	if err != nil {
		return view{}, err
	}
	if len(target) > 0 {
		v.TargetClass = target[0].ObjectID
	}
	closed, err := s.find(ctx, id, graph.PredicateShClosed)
	if err != nil {
		return view{}, err
	}
	v.Closed = len(closed) > 0 && closed[0].ObjectLabel() == "true"

	links, err := s.find(ctx, id, graph.PredicateShProperty)
	if err != nil {
		return view{}, err
	}
	v.Properties = make([]StoredProperty, 0, len(links))
	for _, l := range links {
		p, err := s.loadProperty(ctx, l.ObjectID)
		if err != nil {
			return view{}, err
		}
		v.Properties = append(v.Properties, p)
	}
	sort.SliceStable(v.Properties, func(i, j int) bool { return v.Properties[i].Order < v.Properties[j].Order })
	return v, nil
}

func (s *shapes) loadProperty(ctx context.Context, id graph.ThingID) (StoredProperty, error) {
	r, err := s.resources.FindResource(ctx, id)
	if err != nil {
		return StoredProperty{}, fmt.Errorf("find template property %s: %w", id, err)
	}
	if r == nil {
		return StoredProperty{}, errs.NotFound("template property", id)
	}
	sts, err := s.statements.FindStatements(ctx, ports.StatementFilter{SubjectID: id})
	if err != nil {
		return StoredProperty{}, fmt.Errorf("find statements of %s: %w", id, err)
	}
	p := StoredProperty{ID: id, Property: Property{Label: r.Label}}
	for _, st := range sts {
		obj := st.ObjectID
		label := st.ObjectLabel()
		switch st.PredicateID {
		case graph.PredicateShPath:
			p.Path = obj
		case graph.PredicateShOrder:
			p.Order, _ = strconv.Atoi(label)
		case graph.PredicateShMinCount:
			p.MinCount = atoi(label)
		case graph.PredicateShMaxCount:
			p.MaxCount = atoi(label)
		case graph.PredicateShDatatype:
			p.Datatype = &obj
		case graph.PredicateShClass:
			p.Class = &obj
		case graph.PredicateShPattern:
			p.Pattern = &label
		case graph.PredicateShMinIncl:
			p.MinInclusive = &label
		case graph.PredicateShMaxIncl:
			p.MaxInclusive = &label
		case graph.PredicatePlaceholder:
			p.Placeholder = &label
		case graph.PredicateDescription:
			p.Description = &label
		}
	}
	return p, nil
}

// create writes a PropertyShape at order and links it to the template.
func (s *shapes) create(ctx context.Context, template graph.ThingID, p Property, order int, contributor graph.ContributorID) (graph.ThingID, error) {
	id, err := s.resources.CreateResource(ctx, ports.CreateResourceCommand{
		Label:       p.Label,
		Classes:     []graph.ThingID{graph.ClassPropertyShape},
		Contributor: contributor,
	})
	if err != nil {
		return "", fmt.Errorf("create template property: %w", err)
	}
	if _, err := s.statements.CreateStatement(ctx, ports.CreateStatementCommand{
		SubjectID:   template,
		PredicateID: graph.PredicateShProperty,
		ObjectID:    id,
		Contributor: contributor,
	}); err != nil {
		return "", fmt.Errorf("link template property %s: %w", id, err)
	}
	if err := s.writeFields(ctx, id, p, contributor); err != nil {
		return "", err
	}
	if err := s.setOrder(ctx, id, order, contributor); err != nil {
		return "", err
	}
	return id, nil
}

// update rewrites the fields of a stored property that differ from p.
func (s *shapes) update(ctx context.Context, stored StoredProperty, p Property, contributor graph.ContributorID) error {
	if stored.Label != p.Label {
		label := p.Label
		if err := s.resources.UpdateResource(ctx, stored.ID, ports.ResourceUpdate{Label: &label}); err != nil {
			return fmt.Errorf("relabel template property %s: %w", stored.ID, err)
		}
	}
	if stored.Property.Equal(p) {
		return nil
	}
	return s.writeFields(ctx, stored.ID, p, contributor)
}

func (s *shapes) setOrder(ctx context.Context, id graph.ThingID, order int, contributor graph.ContributorID) error {
	v := strconv.Itoa(order)
	return s.single.UpdateLiteral(ctx, id, graph.PredicateShOrder, &v, graph.DatatypeInteger, contributor)
}

// writeFields points every field slot of a property at p's value. Slots
// already holding that value are left alone.
func (s *shapes) writeFields(ctx context.Context, id graph.ThingID, p Property, contributor graph.ContributorID) error {
	path := p.Path
	resources := []struct {
		predicate graph.ThingID
		object    *graph.ThingID
	}{
		{graph.PredicateShPath, &path},
		{graph.PredicateShDatatype, p.Datatype},
		{graph.PredicateShClass, p.Class},
	}
	for _, f := range resources {
		if err := s.single.UpdateResource(ctx, id, f.predicate, f.object, contributor); err != nil {
			return err
		}
	}
	literals := []struct {
		predicate graph.ThingID
		value     *string
		datatype  string
	}{
		{graph.PredicateShMinCount, itoa(p.MinCount), graph.DatatypeInteger},
		{graph.PredicateShMaxCount, itoa(p.MaxCount), graph.DatatypeInteger},
		{graph.PredicateShPattern, p.Pattern, graph.DatatypeString},
		{graph.PredicateShMinIncl, p.MinInclusive, graph.DatatypeDecimal},
		{graph.PredicateShMaxIncl, p.MaxInclusive, graph.DatatypeDecimal},
		{graph.PredicatePlaceholder, p.Placeholder, graph.DatatypeString},
		{graph.PredicateDescription, p.Description, graph.DatatypeString},
	}
	for _, f := range literals {
		if err := s.single.UpdateLiteral(ctx, id, f.predicate, f.value, f.datatype, contributor); err != nil {
			return err
		}
	}
	return nil
}

// remove unlinks a property from the template and deletes its subgraph.
func (s *shapes) remove(ctx context.Context, template graph.ThingID, stored StoredProperty) error {
	links, err := s.statements.FindStatements(ctx, ports.StatementFilter{
		SubjectID:   template,
		PredicateID: graph.PredicateShProperty,
		ObjectID:    stored.ID,
	})
	if err != nil {
		return fmt.Errorf("find link to template property %s: %w", stored.ID, err)
	}
	owned, err := s.statements.FindStatements(ctx, ports.StatementFilter{SubjectID: stored.ID})
	if err != nil {
		return fmt.Errorf("find statements of %s: %w", stored.ID, err)
	}
	ids := make([]graph.StatementID, 0, len(links)+len(owned))
	for _, st := range append(links, owned...) {
		ids = append(ids, st.ID)
	}
	if err := s.statements.DeleteStatements(ctx, ids...); err != nil {
		return fmt.Errorf("delete template property %s statements: %w", stored.ID, err)
	}
	for _, st := range owned {
		if _, ok := st.Object.(graph.Literal); !ok {
			continue
		}
		if err := s.literals.DeleteLiteral(ctx, st.ObjectID); err != nil {
			return fmt.Errorf("delete literal %s: %w", st.ObjectID, err)
		}
	}
	if err := s.resources.DeleteResource(ctx, stored.ID); err != nil {
		return fmt.Errorf("delete template property %s: %w", stored.ID, err)
	}
	return nil
}

// reconcileProperties applies the greedy ordered diff between the stored
// and the requested property lists.
func (s *shapes) reconcileProperties(ctx context.Context, template graph.ThingID, current []StoredProperty, next []Property, contributor graph.ContributorID) error {
	for _, op := range reconcile.Plan(current, next, sameProperty) {
		switch op.Kind {
		case reconcile.OpKeep:
			if current[op.OldIndex].Order == op.NewIndex {
				continue
			}
			if err := s.setOrder(ctx, current[op.OldIndex].ID, op.NewIndex, contributor); err != nil {
				return err
			}
		case reconcile.OpCreate:
			if _, err := s.create(ctx, template, next[op.NewIndex], op.NewIndex, contributor); err != nil {
				return err
			}
		case reconcile.OpDelete:
			if err := s.remove(ctx, template, current[op.OldIndex]); err != nil {
				return err
			}
		}
	}
	return nil
}

// boundTemplate returns the template other than self that targets class.
func (s *shapes) boundTemplate(ctx context.Context, class, self graph.ThingID) (graph.ThingID, error) {
	sts, err := s.statements.FindStatements(ctx, ports.StatementFilter{PredicateID: graph.PredicateShTargetClass, ObjectID: class})
	if err != nil {
		return "", fmt.Errorf("find templates of class %s: %w", class, err)
	}
	for _, st := range sts {
		if st.SubjectID != self {
			return st.SubjectID, nil
		}
	}
	return "", nil
}

func itoa(v *int) *string {
	if v == nil {
		return nil
	}
	s := strconv.Itoa(*v)
	return &s
}

func atoi(s string) *int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return nil
	}
	return &n
}
