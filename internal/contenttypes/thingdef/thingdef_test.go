package thingdef

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"github.com/yungbote/kgcontent-backend/internal/contenttypes/errs"
	"github.com/yungbote/kgcontent-backend/internal/contenttypes/ports"
	"github.com/yungbote/kgcontent-backend/internal/data/memory"
	"github.com/yungbote/kgcontent-backend/internal/domain/graph"
	pkgerrors "github.com/yungbote/kgcontent-backend/internal/pkg/errors"
)

func newFixture(t *testing.T) (*memory.Store, *Validator, *Creator) {
	t.Helper()
	s := memory.New(nil)
	s.SeedVocabulary()
	s.PutPredicate("P1", "has value")
	s.PutPredicate("P2", "related to")
	s.PutClass("C1", "Method")
	s.PutResource(graph.Resource{ID: "R100", Label: "existing"})
	s.PutLiteral(graph.Literal{ID: "L100", Label: "existing literal"})
	return s, NewValidator(s, s, s), NewCreator(s, s, s)
}

func TestCreatePaperScenarioMaterializes(t *testing.T) {
	ctx := context.Background()
	s, v, c := newFixture(t)
	defs := Definitions{
		Resources: map[TempID]ResourceDefinition{"_r1": {Label: "x", Classes: []graph.ThingID{}}},
		Literals:  map[TempID]LiteralDefinition{"_l1": {Label: "5", Datatype: "xsd:integer"}},
		Statements: []StatementDefinition{
			{Subject: "_r1", Predicate: "P1", Object: ObjectRef{ID: "_l1"}},
		},
	}
	plan, err := v.Validate(ctx, defs, nil)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if s.Stats().Writes() != 0 {
		t.Fatalf("validator wrote to the store")
	}
	validated, err := c.Create(ctx, plan, CreateOptions{Contributor: graph.UnknownContributor})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(validated.PendingIDs()) != 0 {
		t.Fatalf("pending ids remain: %v", validated.PendingIDs())
	}
	rid, ok := validated.ThingID("_r1")
	if !ok {
		t.Fatalf("_r1 not resolved")
	}
	lid, _ := validated.ThingID("_l1")

	r, _ := s.FindResource(ctx, rid)
	if r == nil || r.Label != "x" {
		t.Fatalf("resource not persisted: %+v", r)
	}
	l, _ := s.FindLiteral(ctx, lid)
	if l == nil || l.Label != "5" || l.Datatype != graph.DatatypeInteger {
		t.Fatalf("literal not persisted: %+v", l)
	}
	sts, _ := s.FindStatements(ctx, ports.StatementFilter{SubjectID: rid, PredicateID: "P1"})
	if len(sts) != 1 || sts[0].ObjectID != lid {
		t.Fatalf("statement not persisted: %+v", sts)
	}
	stats := s.Stats()
	if stats.ResourcesCreated != 1 || stats.LiteralsCreated != 1 || stats.StatementsCreated != 1 {
		t.Fatalf("unexpected write counts %+v", stats)
	}
}

func TestUndeclaredTempIDFailsWithoutWrites(t *testing.T) {
	ctx := context.Background()
	s, v, _ := newFixture(t)
	cases := map[string]Definitions{
		"undeclared temp object": {
			Resources:  map[TempID]ResourceDefinition{"_r1": {Label: "x"}},
			Statements: []StatementDefinition{{Subject: "_r1", Predicate: "P1", Object: ObjectRef{ID: "_ghost"}}},
		},
		"missing persisted object": {
			Resources:  map[TempID]ResourceDefinition{"_r1": {Label: "x"}},
			Statements: []StatementDefinition{{Subject: "_r1", Predicate: "P1", Object: ObjectRef{ID: "R404"}}},
		},
		"undeclared subject": {
			Statements: []StatementDefinition{{Subject: "#nope", Predicate: "P1", Object: ObjectRef{ID: "R100"}}},
		},
		"nested reference": {
			Resources: map[TempID]ResourceDefinition{"_r1": {
				Label:      "x",
				Statements: map[graph.ThingID][]ObjectRef{"P2": {{ID: "_missing"}}},
			}},
		},
	}
	for name, defs := range cases {
		_, err := v.Validate(ctx, defs, nil)
		var unresolved *errs.UnresolvableReferenceError
		if !errors.As(err, &unresolved) {
			t.Fatalf("%s: expected UnresolvableReferenceError, got %v", name, err)
		}
		if !errors.Is(err, pkgerrors.ErrNotFound) {
			t.Fatalf("%s: expected not-found classification", name)
		}
	}
	if s.Stats().Writes() != 0 {
		t.Fatalf("validation failures wrote to the store: %+v", s.Stats())
	}
}

func TestValidatorIsDeterministic(t *testing.T) {
	ctx := context.Background()
	_, v, _ := newFixture(t)
	defs := Definitions{
		Resources: map[TempID]ResourceDefinition{
			"_a": {Label: "a", Classes: []graph.ThingID{"C1"}, Statements: map[graph.ThingID][]ObjectRef{
				"P1": {{Literal: &LiteralDefinition{Label: "inline"}}, {ID: "R100"}},
				"P2": {{Resource: &ResourceDefinition{Label: "nested"}}},
			}},
			"_b": {Label: "b"},
		},
		Literals:   map[TempID]LiteralDefinition{"_l": {Label: "3.5", Datatype: "xsd:decimal"}},
		Statements: []StatementDefinition{{Subject: "_b", Predicate: "P2", Object: ObjectRef{ID: "_a"}}},
	}
	known := ValidatedIDs{"R100": Resolved{Thing: graph.Resource{ID: "R100", Label: "existing"}}}
	first, err := v.Validate(ctx, defs, known)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	second, err := v.Validate(ctx, defs, known)
	if err != nil {
		t.Fatalf("Validate again: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("validator is not idempotent:\n%+v\n%+v", first, second)
	}
	if len(known) != 1 {
		t.Fatalf("known ids were mutated: %v", known)
	}
	if len(first.Literals) != 2 || len(first.Resources) != 3 || len(first.Statements) != 4 {
		t.Fatalf("unexpected plan sizes: %d literals %d resources %d statements",
			len(first.Literals), len(first.Resources), len(first.Statements))
	}
}

func TestLeafLiteralsAndTempStatements(t *testing.T) {
	ctx := context.Background()
	s, v, c := newFixture(t)
	defs := Definitions{
		Resources: map[TempID]ResourceDefinition{"_r1": {Label: "r1"}, "_r2": {Label: "r2"}},
		Literals: map[TempID]LiteralDefinition{
			"_l1": {Label: "one"},
			"_l2": {Label: "two"},
			"_l3": {Label: "true", Datatype: "xsd:boolean"},
		},
		Statements: []StatementDefinition{
			{Subject: "_r1", Predicate: "P1", Object: ObjectRef{ID: "_l1"}},
			{Subject: "_r1", Predicate: "P1", Object: ObjectRef{ID: "_l2"}},
			{Subject: "_r2", Predicate: "P1", Object: ObjectRef{ID: "_l3"}},
			{Subject: "_r1", Predicate: "P2", Object: ObjectRef{ID: "_r2"}},
		},
	}
	plan, err := v.Validate(ctx, defs, nil)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	validated, err := c.Create(ctx, plan, CreateOptions{})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	stats := s.Stats()
	if stats.LiteralsCreated != 3 || stats.ResourcesCreated != 2 || stats.StatementsCreated != 4 {
		t.Fatalf("unexpected counts %+v", stats)
	}
	for key, x := range validated {
		if _, pending := x.(Pending); pending {
			t.Fatalf("%s still pending", key)
		}
	}
}

func TestValidatorRejections(t *testing.T) {
	ctx := context.Background()
	_, v, _ := newFixture(t)
	cases := []struct {
		name   string
		defs   Definitions
		target any
	}{
		{
			name:   "bad temp id",
			defs:   Definitions{Resources: map[TempID]ResourceDefinition{"r1": {Label: "x"}}},
			target: new(*errs.InvalidTempIDError),
		},
		{
			name:   "reserved prefix",
			defs:   Definitions{Literals: map[TempID]LiteralDefinition{"#~o1": {Label: "x"}}},
			target: new(*errs.InvalidTempIDError),
		},
		{
			name: "duplicate across kinds",
			defs: Definitions{
				Resources: map[TempID]ResourceDefinition{"_x": {Label: "x"}},
				Literals:  map[TempID]LiteralDefinition{"_x": {Label: "x"}},
			},
			target: new(*errs.DuplicateTempIDError),
		},
		{
			name:   "bad literal value",
			defs:   Definitions{Literals: map[TempID]LiteralDefinition{"_l": {Label: "five", Datatype: "xsd:integer"}}},
			target: new(*errs.InvalidLiteralError),
		},
		{
			name:   "blank resource label",
			defs:   Definitions{Resources: map[TempID]ResourceDefinition{"_r": {Label: "  "}}},
			target: new(*errs.InvalidLabelError),
		},
		{
			name:   "unknown class",
			defs:   Definitions{Resources: map[TempID]ResourceDefinition{"_r": {Label: "r", Classes: []graph.ThingID{"C404"}}}},
			target: new(*errs.NotFoundError),
		},
		{
			name: "unknown predicate",
			defs: Definitions{
				Resources:  map[TempID]ResourceDefinition{"_r": {Label: "r"}},
				Statements: []StatementDefinition{{Subject: "_r", Predicate: "P404", Object: ObjectRef{ID: "R100"}}},
			},
			target: new(*errs.NotFoundError),
		},
		{
			name: "literal subject",
			defs: Definitions{
				Literals:   map[TempID]LiteralDefinition{"_l": {Label: "x"}},
				Statements: []StatementDefinition{{Subject: "_l", Predicate: "P1", Object: ObjectRef{ID: "R100"}}},
			},
			target: new(*errs.InvalidSubjectError),
		},
		{
			name: "persisted literal subject",
			defs: Definitions{
				Statements: []StatementDefinition{{Subject: "L100", Predicate: "P1", Object: ObjectRef{ID: "R100"}}},
			},
			target: new(*errs.InvalidSubjectError),
		},
	}
	for _, tc := range cases {
		_, err := v.Validate(ctx, tc.defs, nil)
		if err == nil || !errors.As(err, tc.target) {
			t.Fatalf("%s: unexpected error %v", tc.name, err)
		}
	}

	_, err := v.Validate(ctx, Definitions{Resources: map[TempID]ResourceDefinition{
		"_r": {Label: "r", Classes: []graph.ThingID{graph.ClassPaper}},
	}}, nil)
	if !errors.Is(err, pkgerrors.ErrInvalidArgument) {
		t.Fatalf("reserved class: expected invalid argument, got %v", err)
	}
}

func TestEmptyDefinitionsProduceEmptyPlan(t *testing.T) {
	_, v, _ := newFixture(t)
	plan, err := v.Validate(context.Background(), Definitions{}, nil)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if !plan.Empty() {
		t.Fatalf("expected empty plan, got %+v", plan)
	}
}

func TestRootsAllowReservedClasses(t *testing.T) {
	ctx := context.Background()
	s, v, c := newFixture(t)
	root := Root{TempID: RootID("c", 0), Definition: ResourceDefinition{
		Label:   "Contribution 1",
		Classes: []graph.ThingID{graph.ClassContribution},
		Statements: map[graph.ThingID][]ObjectRef{
			"P1": {{ID: "_m"}},
		},
	}}
	defs := Definitions{Resources: map[TempID]ResourceDefinition{"_m": {Label: "method", Classes: []graph.ThingID{"C1"}}}}
	plan, err := v.Validate(ctx, defs, nil, root)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	validated, err := c.Create(ctx, plan, CreateOptions{})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	id, ok := validated.ThingID(string(root.TempID))
	if !ok {
		t.Fatalf("root not created")
	}
	r, _ := s.FindResource(ctx, id)
	if r == nil || !r.HasClass(graph.ClassContribution) {
		t.Fatalf("root resource missing class: %+v", r)
	}

	if _, err := v.Validate(ctx, Definitions{}, nil, Root{TempID: "_user", Definition: ResourceDefinition{Label: "x"}}); err == nil {
		t.Fatalf("expected roots with user temp ids to be rejected")
	}
}

func TestCreatorDoesNotRollBack(t *testing.T) {
	ctx := context.Background()
	s, v, _ := newFixture(t)
	defs := Definitions{
		Resources:  map[TempID]ResourceDefinition{"_r": {Label: "r"}},
		Statements: []StatementDefinition{{Subject: "_r", Predicate: "P1", Object: ObjectRef{ID: "R100"}}},
	}
	plan, err := v.Validate(ctx, defs, nil)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	failing := NewCreator(s, s, failingStatements{})
	if _, err := failing.Create(ctx, plan, CreateOptions{}); err == nil {
		t.Fatalf("expected statement failure")
	}
	if s.Stats().ResourcesCreated != 1 {
		t.Fatalf("resource created before the failure should stay: %+v", s.Stats())
	}
}

type failingStatements struct{}

func (failingStatements) CreateStatement(context.Context, ports.CreateStatementCommand) (graph.StatementID, error) {
	return "", errors.New("statement store down")
}

func (failingStatements) FindStatements(context.Context, ports.StatementFilter) ([]graph.Statement, error) {
	return nil, nil
}

func (failingStatements) DeleteStatements(context.Context, ...graph.StatementID) error { return nil }

func TestDefinitionsJSONRejectsRepeatedKeys(t *testing.T) {
	for name, raw := range map[string]string{
		"resources": `{"resources":{"_r1":{"label":"first"},"_r1":{"label":"second"}}}`,
		"literals":  `{"literals":{"#l":{"label":"1"},"#l":{"label":"2"}}}`,
	} {
		var d Definitions
		err := json.Unmarshal([]byte(raw), &d)
		var dup *errs.DuplicateTempIDError
		if !errors.As(err, &dup) {
			t.Fatalf("%s: got %v, want duplicate temp id", name, err)
		}
	}

	var d Definitions
	raw := `{"resources":{"_r1":{"label":"a"},"_r2":{"label":"b","statements":{"P1":["_r1",{"literal":{"label":"x"}}]}}},"literals":null}`
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(d.Resources) != 2 || d.Literals != nil {
		t.Fatalf("decoded %+v", d)
	}
	if refs := d.Resources["_r2"].Statements["P1"]; len(refs) != 2 || refs[0].ID != "_r1" || refs[1].Literal == nil {
		t.Fatalf("nested refs %+v", refs)
	}
	if err := json.Unmarshal([]byte(`{"resources":{"_r1":{"label":"a","colour":"red"}}}`), &d); err == nil {
		t.Fatalf("unknown field in a definition should fail")
	}
}
