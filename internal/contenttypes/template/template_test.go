package template

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/yungbote/kgcontent-backend/internal/contenttypes"
	"github.com/yungbote/kgcontent-backend/internal/contenttypes/actions"
	"github.com/yungbote/kgcontent-backend/internal/contenttypes/errs"
	"github.com/yungbote/kgcontent-backend/internal/contenttypes/pipeline"
	"github.com/yungbote/kgcontent-backend/internal/contenttypes/ports"
	"github.com/yungbote/kgcontent-backend/internal/data/memory"
	"github.com/yungbote/kgcontent-backend/internal/domain/graph"
	pkgerrors "github.com/yungbote/kgcontent-backend/internal/pkg/errors"
	"github.com/yungbote/kgcontent-backend/internal/pkg/pointers"
	"github.com/yungbote/kgcontent-backend/internal/platform/logger"
)

func newService(t *testing.T) (*memory.Store, *Service) {
	t.Helper()
	s := memory.New(nil)
	s.SeedVocabulary()
	s.PutPredicate("P1", "has method")
	s.PutPredicate("P2", "has dataset")
	s.PutPredicate("P3", "has result")
	s.PutClass("C1", "Dataset")
	s.PutClass("C2", "Method")
	s.PutClass("C3", "Result")
	s.PutResource(graph.Resource{ID: "RF1", Label: "Physics", Classes: []graph.ThingID{graph.ClassResearchField}})
	s.PutResource(graph.Resource{ID: "PR1", Label: "Entity linking", Classes: []graph.ThingID{graph.ClassProblem}})
	svc, err := New(contenttypes.Config{
		Kit:  actions.NewKit(s.Repositories()),
		Log:  logger.Nop(),
		Spec: pipeline.LoadSpec(logger.Nop()),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s, svc
}

var (
	propA = Property{Label: "A", Path: "P1", Datatype: pointers.Ptr(graph.ThingID(graph.DatatypeString))}
	propB = Property{Label: "B", Path: "P2", Class: pointers.Ptr(graph.ThingID("C1"))}
	propC = Property{Label: "C", Path: "P3", MinCount: pointers.Ptr(1)}
	propD = Property{Label: "D", Path: "P1", Datatype: pointers.Ptr(graph.ThingID(graph.DatatypeInteger)), MinInclusive: pointers.Ptr("0")}
)

func createTemplate(t *testing.T, svc *Service, class graph.ThingID, closed bool, props ...Property) graph.ThingID {
	t.Helper()
	id, err := svc.Create(context.Background(), CreateCommand{
		Label:       "Template for " + string(class),
		TargetClass: class,
		Properties:  props,
		IsClosed:    closed,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return id
}

func labels(ps []StoredProperty) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.Label)
	}
	return out
}

func TestStepOrderMatchesConfiguredSpec(t *testing.T) {
	_, svc := newService(t)
	spec := pipeline.LoadSpec(logger.Nop())
	cases := []struct {
		op  string
		got []string
	}{
		{OpCreate, svc.create.StepNames()},
		{OpUpdate, svc.update.StepNames()},
		{OpCreateProperty, svc.createProperty.StepNames()},
		{OpUpdateProperty, svc.updateProperty.StepNames()},
	}
	for _, c := range cases {
		if want := spec.Order(c.op); !reflect.DeepEqual(c.got, want) {
			t.Fatalf("%s steps %v, configured %v", c.op, c.got, want)
		}
	}
}

func TestCreateTemplateWritesShape(t *testing.T) {
	ctx := context.Background()
	_, svc := newService(t)
	id, err := svc.Create(ctx, CreateCommand{
		Label:          "  Dataset template ",
		Description:    pointers.Ptr("describes datasets"),
		FormattedLabel: pointers.Ptr("{P1}"),
		TargetClass:    "C1",
		Relations: Relations{
			ResearchFields:   []graph.ThingID{"RF1"},
			ResearchProblems: []graph.ThingID{"PR1"},
			Predicate:        pointers.Ptr(graph.ThingID("P2")),
		},
		Properties: []Property{propA, propD},
		IsClosed:   true,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	v, err := svc.shapes.load(ctx, id)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if v.Resource.Label != "Dataset template" || v.TargetClass != "C1" || !v.Closed {
		t.Fatalf("unexpected template %+v", v)
	}
	if got := labels(v.Properties); !reflect.DeepEqual(got, []string{"A", "D"}) {
		t.Fatalf("properties %v", got)
	}
	if !v.Properties[1].Property.Equal(propD) || v.Properties[1].Order != 1 {
		t.Fatalf("property D stored as %+v", v.Properties[1])
	}
	for pred, want := range map[graph.ThingID]graph.ThingID{
		graph.PredicateTemplateOfResearchField:   "RF1",
		graph.PredicateTemplateOfResearchProblem: "PR1",
		graph.PredicateTemplateOfPredicate:       "P2",
	} {
		sts, _ := svc.shapes.find(ctx, id, pred)
		if len(sts) != 1 || sts[0].ObjectID != want {
			t.Fatalf("%s: %+v", pred, sts)
		}
	}
	for pred, want := range map[graph.ThingID]string{
		graph.PredicateDescription:         "describes datasets",
		graph.PredicateTemplateLabelFormat: "{P1}",
	} {
		sts, _ := svc.shapes.find(ctx, id, pred)
		if len(sts) != 1 || sts[0].ObjectLabel() != want {
			t.Fatalf("%s: %+v", pred, sts)
		}
	}
}

func TestCreateTemplateRejectionsWriteNothing(t *testing.T) {
	ctx := context.Background()
	s, svc := newService(t)
	createTemplate(t, svc, "C2", false)

	cases := []struct {
		name string
		cmd  CreateCommand
		want error
	}{
		{"missing class", CreateCommand{Label: "x", TargetClass: "C404"}, pkgerrors.ErrNotFound},
		{"bound class", CreateCommand{Label: "x", TargetClass: "C2"}, pkgerrors.ErrConflict},
		{"blank label", CreateCommand{Label: " ", TargetClass: "C1"}, pkgerrors.ErrInvalidArgument},
		{"missing field", CreateCommand{Label: "x", TargetClass: "C1", Relations: Relations{ResearchFields: []graph.ThingID{"PR1"}}}, pkgerrors.ErrNotFound},
		{"missing predicate", CreateCommand{Label: "x", TargetClass: "C1", Relations: Relations{Predicate: pointers.Ptr(graph.ThingID("P404"))}}, pkgerrors.ErrNotFound},
		{"unknown path", CreateCommand{Label: "x", TargetClass: "C1", Properties: []Property{{Label: "p", Path: "P404"}}}, pkgerrors.ErrNotFound},
		{"datatype and class", CreateCommand{Label: "x", TargetClass: "C1", Properties: []Property{{Label: "p", Path: "P1", Datatype: propA.Datatype, Class: propB.Class}}}, pkgerrors.ErrInvalidArgument},
		{"bounds on string", CreateCommand{Label: "x", TargetClass: "C1", Properties: []Property{{Label: "p", Path: "P1", Datatype: propA.Datatype, MinInclusive: pointers.Ptr("1")}}}, pkgerrors.ErrInvalidArgument},
		{"inverted bounds", CreateCommand{Label: "x", TargetClass: "C1", Properties: []Property{{Label: "p", Path: "P1", Datatype: propD.Datatype, MinInclusive: pointers.Ptr("5"), MaxInclusive: pointers.Ptr("1")}}}, pkgerrors.ErrInvalidArgument},
		{"bad pattern", CreateCommand{Label: "x", TargetClass: "C1", Properties: []Property{{Label: "p", Path: "P1", Datatype: propA.Datatype, Pattern: pointers.Ptr("(")}}}, pkgerrors.ErrInvalidArgument},
		{"inverted counts", CreateCommand{Label: "x", TargetClass: "C1", Properties: []Property{{Label: "p", Path: "P1", MinCount: pointers.Ptr(3), MaxCount: pointers.Ptr(1)}}}, pkgerrors.ErrInvalidArgument},
	}
	for _, c := range cases {
		before := s.Stats()
		_, err := svc.Create(ctx, c.cmd)
		if !errors.Is(err, c.want) {
			t.Fatalf("%s: got %v, want %v", c.name, err, c.want)
		}
		if after := s.Stats(); after != before {
			t.Fatalf("%s: writes happened: %+v -> %+v", c.name, before, after)
		}
	}
}

func TestClosedTemplateRejectsChangedPropertyList(t *testing.T) {
	ctx := context.Background()
	s, svc := newService(t)
	id := createTemplate(t, svc, "C1", true, propA, propB)

	for name, props := range map[string][]Property{
		"longer":    {propA, propB, propC},
		"shorter":   {propA},
		"reordered": {propB, propA},
		"changed":   {propA, {Label: "B", Path: "P2", Class: pointers.Ptr(graph.ThingID("C2"))}},
	} {
		before := s.Stats()
		err := svc.Update(ctx, UpdateCommand{TemplateID: id, Label: pointers.Ptr("renamed"), Properties: props})
		var closed *errs.TemplateClosedError
		if !errors.As(err, &closed) || closed.TemplateID != id {
			t.Fatalf("%s: got %v, want template closed", name, err)
		}
		if !errors.Is(err, pkgerrors.ErrConflict) {
			t.Fatalf("%s: closed error should be a conflict", name)
		}
		if after := s.Stats(); after != before {
			t.Fatalf("%s: writes happened: %+v -> %+v", name, before, after)
		}
	}
}

func TestClosedTemplateIdenticalListWritesNothing(t *testing.T) {
	ctx := context.Background()
	s, svc := newService(t)
	id := createTemplate(t, svc, "C1", true, propA, propB)

	before := s.Stats()
	same := []Property{propA, {Label: " B ", Path: "P2", Class: propB.Class, Description: pointers.Ptr("")}}
	if err := svc.Update(ctx, UpdateCommand{TemplateID: id, Properties: same}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if after := s.Stats(); after != before {
		t.Fatalf("identical list wrote: %+v -> %+v", before, after)
	}
}

func TestUpdateReconcilesPropertyList(t *testing.T) {
	ctx := context.Background()
	s, svc := newService(t)
	id := createTemplate(t, svc, "C1", false, propA, propB, propC)
	old, _ := svc.shapes.load(ctx, id)

	before := s.Stats()
	if err := svc.Update(ctx, UpdateCommand{TemplateID: id, Properties: []Property{propA, propC, propD}}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	v, err := svc.shapes.load(ctx, id)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := labels(v.Properties); !reflect.DeepEqual(got, []string{"A", "C", "D"}) {
		t.Fatalf("properties %v", got)
	}
	for i, p := range v.Properties {
		if p.Order != i {
			t.Fatalf("property %s has order %d, want %d", p.Label, p.Order, i)
		}
	}
	if v.Properties[0].ID != old.Properties[0].ID || v.Properties[1].ID != old.Properties[2].ID {
		t.Fatalf("kept properties were recreated")
	}
	if r, _ := s.FindResource(ctx, old.Properties[1].ID); r != nil {
		t.Fatalf("removed property B still exists")
	}
	after := s.Stats()
	if after.ResourcesCreated-before.ResourcesCreated != 1 || after.ResourcesDeleted-before.ResourcesDeleted != 1 {
		t.Fatalf("expected one create and one delete: %+v -> %+v", before, after)
	}

	before = s.Stats()
	if err := svc.Update(ctx, UpdateCommand{TemplateID: id, Properties: []Property{propA, propC, propD}}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if after := s.Stats(); after != before {
		t.Fatalf("unchanged list wrote: %+v -> %+v", before, after)
	}
}

func TestUpdateTemplateFields(t *testing.T) {
	ctx := context.Background()
	s, svc := newService(t)
	id := createTemplate(t, svc, "C1", false, propA)
	other := createTemplate(t, svc, "C2", false)

	err := svc.Update(ctx, UpdateCommand{TemplateID: id, TargetClass: pointers.Ptr(graph.ThingID("C2"))})
	var conflict *errs.ConflictError
	if !errors.As(err, &conflict) || conflict.ID != string(other) {
		t.Fatalf("got %v, want conflict with %s", err, other)
	}
	if err := svc.Update(ctx, UpdateCommand{TemplateID: "missing"}); !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Fatalf("got %v, want not found", err)
	}

	before := s.Stats()
	if err := svc.Update(ctx, UpdateCommand{TemplateID: id, TargetClass: pointers.Ptr(graph.ThingID("C1"))}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if after := s.Stats(); after != before {
		t.Fatalf("same target class wrote: %+v -> %+v", before, after)
	}

	err = svc.Update(ctx, UpdateCommand{
		TemplateID:  id,
		Label:       pointers.Ptr("Renamed"),
		Description: pointers.Ptr("now described"),
		TargetClass: pointers.Ptr(graph.ThingID("C3")),
		Relations:   &Relations{ResearchProblems: []graph.ThingID{"PR1"}},
		IsClosed:    pointers.Ptr(true),
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	v, _ := svc.shapes.load(ctx, id)
	if v.Resource.Label != "Renamed" || v.TargetClass != "C3" || !v.Closed {
		t.Fatalf("unexpected template %+v", v)
	}
	if sts, _ := svc.shapes.find(ctx, id, graph.PredicateTemplateOfResearchProblem); len(sts) != 1 || sts[0].ObjectID != "PR1" {
		t.Fatalf("problems %+v", sts)
	}

	if err := svc.Update(ctx, UpdateCommand{TemplateID: id, IsClosed: pointers.Ptr(false), Description: pointers.Ptr(" ")}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	v, _ = svc.shapes.load(ctx, id)
	if v.Closed {
		t.Fatalf("template still closed")
	}
	if sts, _ := svc.shapes.find(ctx, id, graph.PredicateDescription); len(sts) != 0 {
		t.Fatalf("blank description kept %+v", sts)
	}
}

func TestCreateProperty(t *testing.T) {
	ctx := context.Background()
	s, svc := newService(t)
	id := createTemplate(t, svc, "C1", false, propA, propB)

	pid, err := svc.CreateProperty(ctx, CreatePropertyCommand{TemplateID: id, Property: propC})
	if err != nil {
		t.Fatalf("CreateProperty: %v", err)
	}
	v, _ := svc.shapes.load(ctx, id)
	last := v.Properties[len(v.Properties)-1]
	if last.ID != pid || last.Order != 2 || !last.Property.Equal(propC) {
		t.Fatalf("appended property %+v", last)
	}

	if _, err := svc.CreateProperty(ctx, CreatePropertyCommand{TemplateID: "missing", Property: propC}); !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Fatalf("got %v, want not found", err)
	}

	closed := createTemplate(t, svc, "C2", true, propA)
	before := s.Stats()
	_, err = svc.CreateProperty(ctx, CreatePropertyCommand{TemplateID: closed, Property: propC})
	var tc *errs.TemplateClosedError
	if !errors.As(err, &tc) {
		t.Fatalf("got %v, want template closed", err)
	}
	if after := s.Stats(); after != before {
		t.Fatalf("closed template was written: %+v -> %+v", before, after)
	}
}

func TestUpdateProperty(t *testing.T) {
	ctx := context.Background()
	s, svc := newService(t)
	id := createTemplate(t, svc, "C1", false, propA, propB)
	v, _ := svc.shapes.load(ctx, id)
	target := v.Properties[1]

	changed := Property{Label: "B renamed", Path: "P2", Class: propB.Class, MinCount: pointers.Ptr(1), Placeholder: pointers.Ptr("pick one")}
	if err := svc.UpdateProperty(ctx, UpdatePropertyCommand{TemplateID: id, PropertyID: target.ID, Property: changed}); err != nil {
		t.Fatalf("UpdateProperty: %v", err)
	}
	v, _ = svc.shapes.load(ctx, id)
	if got := v.Properties[1]; got.ID != target.ID || got.Order != 1 || !got.Property.Equal(changed) {
		t.Fatalf("updated property %+v", got)
	}

	before := s.Stats()
	if err := svc.UpdateProperty(ctx, UpdatePropertyCommand{TemplateID: id, PropertyID: target.ID, Property: changed}); err != nil {
		t.Fatalf("UpdateProperty: %v", err)
	}
	if after := s.Stats(); after != before {
		t.Fatalf("unchanged property wrote: %+v -> %+v", before, after)
	}

	err := svc.UpdateProperty(ctx, UpdatePropertyCommand{TemplateID: id, PropertyID: "nope", Property: propA})
	var nf *errs.NotFoundError
	if !errors.As(err, &nf) || nf.Kind != "template property" {
		t.Fatalf("got %v, want template property not found", err)
	}

	if err := svc.Update(ctx, UpdateCommand{TemplateID: id, IsClosed: pointers.Ptr(true)}); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := svc.UpdateProperty(ctx, UpdatePropertyCommand{TemplateID: id, PropertyID: target.ID, Property: propB}); !errors.Is(err, pkgerrors.ErrConflict) {
		t.Fatalf("got %v, want closed conflict", err)
	}
	if err := svc.UpdateProperty(ctx, UpdatePropertyCommand{TemplateID: id, PropertyID: target.ID, Property: changed}); err != nil {
		t.Fatalf("identical update on closed template: %v", err)
	}
}

func TestDeletedPropertyLeavesNoStatements(t *testing.T) {
	ctx := context.Background()
	s, svc := newService(t)
	id := createTemplate(t, svc, "C1", false, propA, propD)
	v, _ := svc.shapes.load(ctx, id)
	gone := v.Properties[1].ID

	if err := svc.Update(ctx, UpdateCommand{TemplateID: id, Properties: []Property{propA}}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	for _, st := range s.AllStatements() {
		if st.SubjectID == gone || st.ObjectID == gone {
			t.Fatalf("statement %+v still references deleted property", st)
		}
	}
	if sts, _ := s.FindStatements(ctx, ports.StatementFilter{SubjectID: id, PredicateID: graph.PredicateShProperty}); len(sts) != 1 {
		t.Fatalf("expected one property link, got %d", len(sts))
	}
}
