// Package ports declares the persistence boundary consumed by the content
// pipelines. Finders return (nil, nil) when the entity is absent; callers
// turn absence into typed not-found errors.
package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/yungbote/kgcontent-backend/internal/domain/graph"
)

type CreateResourceCommand struct {
	Label            string
	Classes          []graph.ThingID
	ObservatoryID    uuid.UUID
	OrganizationID   uuid.UUID
	ExtractionMethod graph.ExtractionMethod
	Contributor      graph.ContributorID
}

// ResourceUpdate changes the non-nil fields only.
type ResourceUpdate struct {
	Label            *string
	Classes          *[]graph.ThingID
	ObservatoryID    *uuid.UUID
	OrganizationID   *uuid.UUID
	ExtractionMethod *graph.ExtractionMethod
	Visibility       *graph.Visibility
}

// ResourceFilter matches resources by exact label (case-insensitive) and/or class.
type ResourceFilter struct {
	Label string
	Class graph.ThingID
}

type ResourceStore interface {
	CreateResource(ctx context.Context, cmd CreateResourceCommand) (graph.ThingID, error)
	FindResource(ctx context.Context, id graph.ThingID) (*graph.Resource, error)
	FindResources(ctx context.Context, filter ResourceFilter) ([]graph.Resource, error)
	UpdateResource(ctx context.Context, id graph.ThingID, update ResourceUpdate) error
	DeleteResource(ctx context.Context, id graph.ThingID) error
}

type CreateLiteralCommand struct {
	Label       string
	Datatype    string
	Contributor graph.ContributorID
}

type LiteralStore interface {
	CreateLiteral(ctx context.Context, cmd CreateLiteralCommand) (graph.ThingID, error)
	FindLiteral(ctx context.Context, id graph.ThingID) (*graph.Literal, error)
	DeleteLiteral(ctx context.Context, id graph.ThingID) error
}

type CreateStatementCommand struct {
	SubjectID   graph.ThingID
	PredicateID graph.ThingID
	ObjectID    graph.ThingID
	Index       *int
	Contributor graph.ContributorID
}

// StatementFilter fields are ANDed; zero values are ignored. ObjectLabel
// matches the object's label exactly.
type StatementFilter struct {
	SubjectID   graph.ThingID
	PredicateID graph.ThingID
	ObjectID    graph.ThingID
	ObjectLabel *string
}

// StatementStore returns statements with Subject and Object loaded, ordered
// by Index (unindexed last) then creation.
type StatementStore interface {
	CreateStatement(ctx context.Context, cmd CreateStatementCommand) (graph.StatementID, error)
	FindStatements(ctx context.Context, filter StatementFilter) ([]graph.Statement, error)
	DeleteStatements(ctx context.Context, ids ...graph.StatementID) error
}

type PredicateStore interface {
	FindPredicate(ctx context.Context, id graph.ThingID) (*graph.Predicate, error)
}

type ClassStore interface {
	FindClass(ctx context.Context, id graph.ThingID) (*graph.Class, error)
}

// ThingStore looks an id up across resources, literals, predicates and classes.
type ThingStore interface {
	FindThing(ctx context.Context, id graph.ThingID) (graph.Thing, error)
}

type ObservatoryStore interface {
	ObservatoryExists(ctx context.Context, id uuid.UUID) (bool, error)
}

type OrganizationStore interface {
	OrganizationExists(ctx context.Context, id uuid.UUID) (bool, error)
}

// Repositories bundles every port for the composition root.
type Repositories struct {
	Resources     ResourceStore
	Literals      LiteralStore
	Statements    StatementStore
	Predicates    PredicateStore
	Classes       ClassStore
	Things        ThingStore
	Observatories ObservatoryStore
	Organizations OrganizationStore
}
