package thingdef

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/yungbote/kgcontent-backend/internal/contenttypes/ports"
	"github.com/yungbote/kgcontent-backend/internal/domain/graph"
)

type CreateOptions struct {
	Contributor      graph.ContributorID
	ObservatoryID    uuid.UUID
	OrganizationID   uuid.UUID
	ExtractionMethod graph.ExtractionMethod
}

type Creator struct {
	resources  ports.ResourceStore
	literals   ports.LiteralStore
	statements ports.StatementStore
}

func NewCreator(resources ports.ResourceStore, literals ports.LiteralStore, statements ports.StatementStore) *Creator {
	return &Creator{resources: resources, literals: literals, statements: statements}
}

// Create materializes a validated plan. Literals are created first, then
// resources, then statements with every pending end substituted. The
// returned map has no Pending entry. Writes made before a failure stay in
// place.
func (c *Creator) Create(ctx context.Context, plan Plan, opts CreateOptions) (ValidatedIDs, error) {
	validated := plan.ValidatedIDs.Clone()

	for _, l := range plan.Literals {
		id, err := c.literals.CreateLiteral(ctx, ports.CreateLiteralCommand{
			Label:       l.Label,
			Datatype:    l.Datatype,
			Contributor: opts.Contributor,
		})
		if err != nil {
			return nil, fmt.Errorf("create literal %s: %w", l.TempID, err)
		}
		validated[string(l.TempID)] = Resolved{Thing: graph.Literal{
			ID:        id,
			Label:     l.Label,
			Datatype:  l.Datatype,
			CreatedBy: opts.Contributor,
		}}
	}

	for _, r := range plan.Resources {
		id, err := c.resources.CreateResource(ctx, ports.CreateResourceCommand{
			Label:            r.Label,
			Classes:          r.Classes,
			ObservatoryID:    opts.ObservatoryID,
			OrganizationID:   opts.OrganizationID,
			ExtractionMethod: opts.ExtractionMethod,
			Contributor:      opts.Contributor,
		})
		if err != nil {
			return nil, fmt.Errorf("create resource %s: %w", r.TempID, err)
		}
		validated[string(r.TempID)] = Resolved{Thing: graph.Resource{
			ID:               id,
			Label:            r.Label,
			Classes:          append([]graph.ThingID(nil), r.Classes...),
			ObservatoryID:    opts.ObservatoryID,
			OrganizationID:   opts.OrganizationID,
			ExtractionMethod: opts.ExtractionMethod,
			CreatedBy:        opts.Contributor,
		}}
	}

	for i, st := range plan.Statements {
		subject, err := concrete(validated, st.Subject)
		if err != nil {
			return nil, fmt.Errorf("statement %d subject: %w", i, err)
		}
		object, err := concrete(validated, st.Object)
		if err != nil {
			return nil, fmt.Errorf("statement %d object: %w", i, err)
		}
		if _, err := c.statements.CreateStatement(ctx, ports.CreateStatementCommand{
			SubjectID:   subject,
			PredicateID: st.Predicate,
			ObjectID:    object,
			Contributor: opts.Contributor,
		}); err != nil {
			return nil, fmt.Errorf("create statement %s-%s->%s: %w", subject, st.Predicate, object, err)
		}
	}

	if pending := validated.PendingIDs(); len(pending) > 0 {
		return nil, fmt.Errorf("thingdef: temp ids left uncreated: %v", pending)
	}
	return validated, nil
}

func concrete(validated ValidatedIDs, ref ValidatedID) (graph.ThingID, error) {
	switch r := ref.(type) {
	case Resolved:
		return r.Thing.ThingID(), nil
	case Pending:
		id, ok := validated.ThingID(string(r.TempID))
		if !ok {
			return "", fmt.Errorf("temp id %s was not created", r.TempID)
		}
		return id, nil
	default:
		return "", fmt.Errorf("unexpected reference %T", ref)
	}
}
