// Package actions holds the helpers shared by the content-type pipelines.
// Each helper validates or writes exactly one concern; the concrete steps
// of a pipeline hold a helper and call it with values from their command
// and state.
package actions

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/kgcontent-backend/internal/contenttypes/errs"
	"github.com/yungbote/kgcontent-backend/internal/contenttypes/ports"
	"github.com/yungbote/kgcontent-backend/internal/domain/graph"
)

// TitleValidator checks entity titles.
type TitleValidator struct {
	resources ports.ResourceStore
}

func NewTitleValidator(resources ports.ResourceStore) *TitleValidator {
	return &TitleValidator{resources: resources}
}

// Validate normalizes a title against the label rules.
func (v *TitleValidator) Validate(title string) (string, error) {
	label, err := graph.NormalizeLabel(title)
	if err != nil {
		return "", &errs.InvalidLabelError{Label: title, Cause: err}
	}
	return label, nil
}

// ValidateUnique also rejects titles already used by another resource of
// class. self is ignored so an entity may keep its own title.
func (v *TitleValidator) ValidateUnique(ctx context.Context, title string, class, self graph.ThingID) (string, error) {
	label, err := v.Validate(title)
	if err != nil {
		return "", err
	}
	found, err := v.resources.FindResources(ctx, ports.ResourceFilter{Label: label, Class: class})
	if err != nil {
		return "", fmt.Errorf("find resources titled %q: %w", label, err)
	}
	for _, r := range found {
		if r.ID != self && strings.EqualFold(strings.TrimSpace(r.Label), label) {
			return "", errs.Conflict("title already in use", string(r.ID))
		}
	}
	return label, nil
}

// ClassValidator checks that referenced resources exist and carry the
// class their role requires.
type ClassValidator struct {
	resources ports.ResourceStore
}

func NewClassValidator(resources ports.ResourceStore) *ClassValidator {
	return &ClassValidator{resources: resources}
}

// Require fails with a not-found error naming kind for the first id that is
// missing or lacks class.
func (v *ClassValidator) Require(ctx context.Context, kind string, class graph.ThingID, ids ...graph.ThingID) error {
	for _, id := range ids {
		r, err := v.resources.FindResource(ctx, id)
		if err != nil {
			return fmt.Errorf("find %s %s: %w", kind, id, err)
		}
		if r == nil || !r.HasClass(class) {
			return errs.NotFound(kind, id)
		}
	}
	return nil
}

func (v *ClassValidator) ResearchFields(ctx context.Context, ids []graph.ThingID) error {
	return v.Require(ctx, "research field", graph.ClassResearchField, ids...)
}

func (v *ClassValidator) ResearchProblems(ctx context.Context, ids []graph.ThingID) error {
	return v.Require(ctx, "research problem", graph.ClassProblem, ids...)
}

func (v *ClassValidator) SDGs(ctx context.Context, ids []graph.ThingID) error {
	return v.Require(ctx, "sustainable development goal", graph.ClassSDG, ids...)
}

func (v *ClassValidator) Contributions(ctx context.Context, ids []graph.ThingID) error {
	return v.Require(ctx, "contribution", graph.ClassContribution, ids...)
}

// AggregateValidator checks observatory and organization references. The
// nil uuid means "none" and always passes.
type AggregateValidator struct {
	observatories ports.ObservatoryStore
	organizations ports.OrganizationStore
}

func NewAggregateValidator(observatories ports.ObservatoryStore, organizations ports.OrganizationStore) *AggregateValidator {
	return &AggregateValidator{observatories: observatories, organizations: organizations}
}

func (v *AggregateValidator) Observatory(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return nil
	}
	ok, err := v.observatories.ObservatoryExists(ctx, id)
	if err != nil {
		return fmt.Errorf("find observatory %s: %w", id, err)
	}
	if !ok {
		return errs.NotFound("observatory", id)
	}
	return nil
}

func (v *AggregateValidator) Organization(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return nil
	}
	ok, err := v.organizations.OrganizationExists(ctx, id)
	if err != nil {
		return fmt.Errorf("find organization %s: %w", id, err)
	}
	if !ok {
		return errs.NotFound("organization", id)
	}
	return nil
}

// Linker writes plain links from a subject to existing objects, such as
// research fields, SDGs and compared contributions.
type Linker struct {
	statements ports.StatementStore
}

func NewLinker(statements ports.StatementStore) *Linker {
	return &Linker{statements: statements}
}

func (l *Linker) Link(ctx context.Context, subject, predicate graph.ThingID, objects []graph.ThingID, contributor graph.ContributorID) error {
	seen := make(map[graph.ThingID]bool, len(objects))
	for _, o := range objects {
		if seen[o] {
			continue
		}
		seen[o] = true
		if _, err := l.statements.CreateStatement(ctx, ports.CreateStatementCommand{
			SubjectID:   subject,
			PredicateID: predicate,
			ObjectID:    o,
			Contributor: contributor,
		}); err != nil {
			return fmt.Errorf("link %s-%s->%s: %w", subject, predicate, o, err)
		}
	}
	return nil
}
