package reconcile

import (
	"context"
	"fmt"

	"github.com/yungbote/kgcontent-backend/internal/contenttypes/ports"
	"github.com/yungbote/kgcontent-backend/internal/domain/graph"
)

// SingleValue keeps at most one object behind a (subject, predicate) slot.
type SingleValue struct {
	literals   ports.LiteralStore
	statements ports.StatementStore
}

func NewSingleValue(literals ports.LiteralStore, statements ports.StatementStore) *SingleValue {
	return &SingleValue{literals: literals, statements: statements}
}

// UpdateLiteral points the slot at a literal holding value. A nil value
// clears the slot. Nothing is written when the slot already holds exactly
// that value.
func (u *SingleValue) UpdateLiteral(ctx context.Context, subject, predicate graph.ThingID, value *string, datatype string, contributor graph.ContributorID) error {
	if datatype == "" {
		datatype = graph.DatatypeString
	}
	current, err := u.statements.FindStatements(ctx, ports.StatementFilter{SubjectID: subject, PredicateID: predicate})
	if err != nil {
		return fmt.Errorf("find %s of %s: %w", predicate, subject, err)
	}
	if value == nil && len(current) == 0 {
		return nil
	}
	if value != nil && len(current) == 1 {
		if l, ok := current[0].Object.(graph.Literal); ok && l.Label == *value && l.Datatype == datatype {
			return nil
		}
	}
	if err := deleteAll(ctx, u.statements, current); err != nil {
		return err
	}
	if value == nil {
		return nil
	}
	id, err := u.literals.CreateLiteral(ctx, ports.CreateLiteralCommand{Label: *value, Datatype: datatype, Contributor: contributor})
	if err != nil {
		return fmt.Errorf("create %s literal: %w", predicate, err)
	}
	return link(ctx, u.statements, subject, predicate, id, nil, contributor)
}

// UpdateResource points the slot at object, or clears it when object is nil.
func (u *SingleValue) UpdateResource(ctx context.Context, subject, predicate graph.ThingID, object *graph.ThingID, contributor graph.ContributorID) error {
	current, err := u.statements.FindStatements(ctx, ports.StatementFilter{SubjectID: subject, PredicateID: predicate})
	if err != nil {
		return fmt.Errorf("find %s of %s: %w", predicate, subject, err)
	}
	if object == nil && len(current) == 0 {
		return nil
	}
	if object != nil && len(current) == 1 && current[0].ObjectID == *object {
		return nil
	}
	if err := deleteAll(ctx, u.statements, current); err != nil {
		return err
	}
	if object == nil {
		return nil
	}
	return link(ctx, u.statements, subject, predicate, *object, nil, contributor)
}

// ObjectSet keeps the objects behind (subject, predicate) equal to a set of
// existing things.
type ObjectSet struct {
	statements ports.StatementStore
}

func NewObjectSet(statements ports.StatementStore) *ObjectSet {
	return &ObjectSet{statements: statements}
}

// UpdateObjects removes links to objects missing from objects and adds the
// missing ones in the given order. Duplicates in objects are ignored.
func (u *ObjectSet) UpdateObjects(ctx context.Context, subject, predicate graph.ThingID, objects []graph.ThingID, contributor graph.ContributorID) error {
	current, err := u.statements.FindStatements(ctx, ports.StatementFilter{SubjectID: subject, PredicateID: predicate})
	if err != nil {
		return fmt.Errorf("find %s of %s: %w", predicate, subject, err)
	}
	want := make(map[graph.ThingID]bool, len(objects))
	for _, o := range objects {
		want[o] = true
	}
	have := make(map[graph.ThingID]bool, len(current))
	var stale []graph.Statement
	for _, st := range current {
		if want[st.ObjectID] && !have[st.ObjectID] {
			have[st.ObjectID] = true
			continue
		}
		stale = append(stale, st)
	}
	if err := deleteAll(ctx, u.statements, stale); err != nil {
		return err
	}
	for _, o := range objects {
		if have[o] {
			continue
		}
		have[o] = true
		if err := link(ctx, u.statements, subject, predicate, o, nil, contributor); err != nil {
			return err
		}
	}
	return nil
}

// LiteralSet keeps the literal objects behind (subject, predicate) equal to
// a set of values.
type LiteralSet struct {
	literals   ports.LiteralStore
	statements ports.StatementStore
}

func NewLiteralSet(literals ports.LiteralStore, statements ports.StatementStore) *LiteralSet {
	return &LiteralSet{literals: literals, statements: statements}
}

func (u *LiteralSet) UpdateLiterals(ctx context.Context, subject, predicate graph.ThingID, values []string, datatype string, contributor graph.ContributorID) error {
	if datatype == "" {
		datatype = graph.DatatypeString
	}
	current, err := u.statements.FindStatements(ctx, ports.StatementFilter{SubjectID: subject, PredicateID: predicate})
	if err != nil {
		return fmt.Errorf("find %s of %s: %w", predicate, subject, err)
	}
	want := make(map[string]bool, len(values))
	for _, v := range values {
		want[v] = true
	}
	have := make(map[string]bool, len(current))
	var stale []graph.Statement
	for _, st := range current {
		l, ok := st.Object.(graph.Literal)
		if ok && want[l.Label] && !have[l.Label] {
			have[l.Label] = true
			continue
		}
		stale = append(stale, st)
	}
	if err := deleteAll(ctx, u.statements, stale); err != nil {
		return err
	}
	for _, v := range values {
		if have[v] {
			continue
		}
		have[v] = true
		id, err := u.literals.CreateLiteral(ctx, ports.CreateLiteralCommand{Label: v, Datatype: datatype, Contributor: contributor})
		if err != nil {
			return fmt.Errorf("create %s literal: %w", predicate, err)
		}
		if err := link(ctx, u.statements, subject, predicate, id, nil, contributor); err != nil {
			return err
		}
	}
	return nil
}

func deleteAll(ctx context.Context, statements ports.StatementStore, sts []graph.Statement) error {
	if len(sts) == 0 {
		return nil
	}
	ids := make([]graph.StatementID, 0, len(sts))
	for _, st := range sts {
		ids = append(ids, st.ID)
	}
	if err := statements.DeleteStatements(ctx, ids...); err != nil {
		return fmt.Errorf("delete statements: %w", err)
	}
	return nil
}

func link(ctx context.Context, statements ports.StatementStore, subject, predicate, object graph.ThingID, index *int, contributor graph.ContributorID) error {
	if _, err := statements.CreateStatement(ctx, ports.CreateStatementCommand{
		SubjectID:   subject,
		PredicateID: predicate,
		ObjectID:    object,
		Index:       index,
		Contributor: contributor,
	}); err != nil {
		return fmt.Errorf("create statement %s-%s->%s: %w", subject, predicate, object, err)
	}
	return nil
}
