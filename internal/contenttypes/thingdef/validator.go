package thingdef

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/yungbote/kgcontent-backend/internal/contenttypes/errs"
	"github.com/yungbote/kgcontent-backend/internal/contenttypes/ports"
	"github.com/yungbote/kgcontent-backend/internal/domain/graph"
)

// Root is a resource definition supplied by the operation itself, such as a
// paper contribution. Its temp id must come from RootID and its classes may
// include reserved classes.
type Root struct {
	TempID     TempID
	Definition ResourceDefinition
}

// RootID returns the n-th synthesized temp id for roots of the given kind.
func RootID(kind string, n int) TempID {
	return synthesized(kind, n)
}

// ValidateTempIDs checks the syntax of every declared temp id and that no id
// is declared both as a resource and as a literal.
func ValidateTempIDs(defs Definitions) error {
	for _, id := range sortedKeys(defs.Literals) {
		if !id.Valid() {
			return &errs.InvalidTempIDError{ID: string(id)}
		}
	}
	for _, id := range sortedKeys(defs.Resources) {
		if !id.Valid() {
			return &errs.InvalidTempIDError{ID: string(id)}
		}
		if _, dup := defs.Literals[id]; dup {
			return &errs.DuplicateTempIDError{ID: string(id)}
		}
	}
	return nil
}

type Validator struct {
	things     ports.ThingStore
	predicates ports.PredicateStore
	classes    ports.ClassStore
}

func NewValidator(things ports.ThingStore, predicates ports.PredicateStore, classes ports.ClassStore) *Validator {
	return &Validator{things: things, predicates: predicates, classes: classes}
}

type declKind int

const (
	declLiteral declKind = iota + 1
	declResource
)

// validation is the per-call working set; Validate never touches the store
// beyond lookups.
type validation struct {
	v          *Validator
	declared   map[string]declKind
	validated  ValidatedIDs
	literals   map[TempID]LiteralDefinition
	resources  map[TempID]NewResource
	statements []BakedStatement
	predicates map[graph.ThingID]bool
	classes    map[graph.ThingID]bool
	inline     int
}

// Validate resolves every reference in defs and roots against the payload's
// declared temp ids and the store. known carries resolutions from earlier
// steps and is not modified.
func (v *Validator) Validate(ctx context.Context, defs Definitions, known ValidatedIDs, roots ...Root) (Plan, error) {
	if err := ValidateTempIDs(defs); err != nil {
		return Plan{}, err
	}
	w := &validation{
		v:          v,
		declared:   map[string]declKind{},
		validated:  known.Clone(),
		literals:   map[TempID]LiteralDefinition{},
		resources:  map[TempID]NewResource{},
		predicates: map[graph.ThingID]bool{},
		classes:    map[graph.ThingID]bool{},
	}

	for _, id := range sortedKeys(defs.Literals) {
		w.declared[string(id)] = declLiteral
	}
	for _, id := range sortedKeys(defs.Resources) {
		w.declared[string(id)] = declResource
	}
	for _, r := range roots {
		if !strings.HasPrefix(string(r.TempID), synthesizedPrefix) {
			return Plan{}, &errs.InvalidTempIDError{ID: string(r.TempID)}
		}
		if _, dup := w.declared[string(r.TempID)]; dup {
			return Plan{}, &errs.DuplicateTempIDError{ID: string(r.TempID)}
		}
		w.declared[string(r.TempID)] = declResource
	}

	for _, id := range sortedKeys(defs.Literals) {
		if err := w.addLiteral(id, defs.Literals[id]); err != nil {
			return Plan{}, err
		}
	}
	for _, r := range roots {
		if err := w.addResource(ctx, r.TempID, r.Definition, true); err != nil {
			return Plan{}, err
		}
	}
	for _, id := range sortedKeys(defs.Resources) {
		if err := w.addResource(ctx, id, defs.Resources[id], false); err != nil {
			return Plan{}, err
		}
	}
	for _, st := range defs.Statements {
		if err := w.addStatement(ctx, st.Subject, st.Predicate, st.Object); err != nil {
			return Plan{}, err
		}
	}

	return w.plan(), nil
}

func (w *validation) addLiteral(id TempID, def LiteralDefinition) error {
	datatype, err := graph.NormalizeDatatype(def.Datatype)
	if err != nil {
		return &errs.InvalidLiteralError{Value: def.Label, Datatype: def.Datatype, Cause: err}
	}
	if err := graph.ValidateLiteral(def.Label, datatype); err != nil {
		return &errs.InvalidLiteralError{Value: def.Label, Datatype: datatype, Cause: err}
	}
	w.literals[id] = LiteralDefinition{Label: def.Label, Datatype: datatype}
	w.validated[string(id)] = Pending{TempID: id}
	return nil
}

func (w *validation) addResource(ctx context.Context, id TempID, def ResourceDefinition, trusted bool) error {
	label, err := graph.NormalizeLabel(def.Label)
	if err != nil {
		return &errs.InvalidLabelError{Label: def.Label, Cause: err}
	}
	classes := make([]graph.ThingID, 0, len(def.Classes))
	seen := map[graph.ThingID]bool{}
	for _, c := range def.Classes {
		if seen[c] {
			continue
		}
		seen[c] = true
		if !trusted && graph.IsReservedClass(c) {
			return errs.Invalid("class %q is reserved", c)
		}
		if err := w.checkClass(ctx, c); err != nil {
			return err
		}
		classes = append(classes, c)
	}
	w.resources[id] = NewResource{TempID: id, Label: label, Classes: classes}
	w.validated[string(id)] = Pending{TempID: id}

	predicates := make([]graph.ThingID, 0, len(def.Statements))
	for p := range def.Statements {
		predicates = append(predicates, p)
	}
	sort.Slice(predicates, func(i, j int) bool { return predicates[i] < predicates[j] })
	for _, p := range predicates {
		for _, obj := range def.Statements[p] {
			if err := w.addStatement(ctx, string(id), p, obj); err != nil {
				return err
			}
		}
	}
	return nil
}

func (w *validation) addStatement(ctx context.Context, subject string, predicate graph.ThingID, obj ObjectRef) error {
	subj, err := w.resolve(ctx, subject)
	if err != nil {
		return err
	}
	switch s := subj.(type) {
	case Pending:
		if w.declared[string(s.TempID)] == declLiteral {
			return &errs.InvalidSubjectError{ID: subject}
		}
	case Resolved:
		if s.Thing.Kind() == graph.KindLiteral {
			return &errs.InvalidSubjectError{ID: subject}
		}
	}
	if err := w.checkPredicate(ctx, predicate); err != nil {
		return err
	}
	object, err := w.resolveObject(ctx, obj)
	if err != nil {
		return err
	}
	w.statements = append(w.statements, BakedStatement{Subject: subj, Predicate: predicate, Object: object})
	return nil
}

func (w *validation) resolveObject(ctx context.Context, obj ObjectRef) (ValidatedID, error) {
	if obj.set() != 1 {
		return nil, errs.Invalid("statement object must set exactly one of id, literal or resource")
	}
	switch {
	case obj.Literal != nil:
		w.inline++
		id := synthesized("o", w.inline)
		w.declared[string(id)] = declLiteral
		if err := w.addLiteral(id, *obj.Literal); err != nil {
			return nil, err
		}
		return Pending{TempID: id}, nil
	case obj.Resource != nil:
		w.inline++
		id := synthesized("o", w.inline)
		w.declared[string(id)] = declResource
		if err := w.addResource(ctx, id, *obj.Resource, false); err != nil {
			return nil, err
		}
		return Pending{TempID: id}, nil
	default:
		return w.resolve(ctx, obj.ID)
	}
}

func (w *validation) resolve(ctx context.Context, id string) (ValidatedID, error) {
	id = strings.TrimSpace(id)
	if x, ok := w.validated[id]; ok {
		return x, nil
	}
	if _, ok := w.declared[id]; ok {
		p := Pending{TempID: TempID(id)}
		w.validated[id] = p
		return p, nil
	}
	if id == "" || IsTempID(id) || !graph.ThingID(id).Valid() {
		return nil, &errs.UnresolvableReferenceError{ID: id}
	}
	thing, err := w.v.things.FindThing(ctx, graph.ThingID(id))
	if err != nil {
		return nil, fmt.Errorf("find thing %s: %w", id, err)
	}
	if thing == nil {
		return nil, &errs.UnresolvableReferenceError{ID: id}
	}
	r := Resolved{Thing: thing}
	w.validated[id] = r
	return r, nil
}

func (w *validation) checkPredicate(ctx context.Context, id graph.ThingID) error {
	if w.predicates[id] {
		return nil
	}
	p, err := w.v.predicates.FindPredicate(ctx, id)
	if err != nil {
		return fmt.Errorf("find predicate %s: %w", id, err)
	}
	if p == nil {
		return errs.NotFound("predicate", id)
	}
	w.predicates[id] = true
	return nil
}

func (w *validation) checkClass(ctx context.Context, id graph.ThingID) error {
	if w.classes[id] {
		return nil
	}
	c, err := w.v.classes.FindClass(ctx, id)
	if err != nil {
		return fmt.Errorf("find class %s: %w", id, err)
	}
	if c == nil {
		return errs.NotFound("class", id)
	}
	w.classes[id] = true
	return nil
}

func (w *validation) plan() Plan {
	p := Plan{
		ValidatedIDs: w.validated,
		Statements:   w.statements,
	}
	for _, id := range sortedKeys(w.literals) {
		p.Literals = append(p.Literals, NewLiteral{TempID: id, LiteralDefinition: w.literals[id]})
	}
	for _, id := range sortedKeys(w.resources) {
		p.Resources = append(p.Resources, w.resources[id])
	}
	return p
}

func sortedKeys[V any](m map[TempID]V) []TempID {
	out := make([]TempID, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
