// Package graph holds the persisted knowledge-graph model: things
// (resources, literals, predicates, classes) and the statements that
// connect them.
package graph

import (
	"regexp"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ThingID identifies a persisted resource, literal, predicate or class.
type ThingID string

// StatementID identifies a persisted statement.
type StatementID string

// ContributorID identifies the user a write is attributed to.
type ContributorID = uuid.UUID

// UnknownContributor is attached to writes with no known author. It is
// passed through commands like any other contributor id.
var UnknownContributor ContributorID = uuid.Nil

var thingIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9:_-]*$`)

// Valid reports whether id is lexically a persisted id.
func (id ThingID) Valid() bool { return thingIDPattern.MatchString(string(id)) }

func (id ThingID) String() string { return string(id) }

type ThingKind string

const (
	KindResource  ThingKind = "resource"
	KindLiteral   ThingKind = "literal"
	KindPredicate ThingKind = "predicate"
	KindClass     ThingKind = "class"
)

// Thing is implemented by every node kind of the graph.
type Thing interface {
	ThingID() ThingID
	ThingLabel() string
	Kind() ThingKind
}

type ExtractionMethod string

const (
	ExtractionUnknown   ExtractionMethod = "UNKNOWN"
	ExtractionManual    ExtractionMethod = "MANUAL"
	ExtractionAutomatic ExtractionMethod = "AUTOMATIC"
)

func (m ExtractionMethod) Valid() bool {
	switch m {
	case ExtractionUnknown, ExtractionManual, ExtractionAutomatic:
		return true
	}
	return false
}

type Visibility string

const (
	VisibilityDefault  Visibility = "DEFAULT"
	VisibilityFeatured Visibility = "FEATURED"
	VisibilityUnlisted Visibility = "UNLISTED"
	VisibilityDeleted  Visibility = "DELETED"
)

func (v Visibility) Valid() bool {
	switch v {
	case VisibilityDefault, VisibilityFeatured, VisibilityUnlisted, VisibilityDeleted:
		return true
	}
	return false
}

type Resource struct {
	ID               ThingID                      `gorm:"column:id;primaryKey" json:"id"`
	Label            string                       `gorm:"column:label;type:text;not null;index" json:"label"`
	Classes          datatypes.JSONSlice[ThingID] `gorm:"column:classes;type:jsonb" json:"classes"`
	ObservatoryID    uuid.UUID                    `gorm:"type:uuid;column:observatory_id" json:"observatory_id"`
	OrganizationID   uuid.UUID                    `gorm:"type:uuid;column:organization_id" json:"organization_id"`
	ExtractionMethod ExtractionMethod             `gorm:"column:extraction_method;not null;default:'UNKNOWN'" json:"extraction_method"`
	Visibility       Visibility                   `gorm:"column:visibility;not null;default:'DEFAULT'" json:"visibility"`
	CreatedBy        ContributorID                `gorm:"type:uuid;column:created_by" json:"created_by"`
	CreatedAt        time.Time                    `gorm:"column:created_at;not null;autoCreateTime:false" json:"created_at"`
}

func (Resource) TableName() string { return "resource" }

func (r Resource) ThingID() ThingID   { return r.ID }
func (r Resource) ThingLabel() string { return r.Label }
func (r Resource) Kind() ThingKind    { return KindResource }

// HasClass reports whether the resource carries class c.
func (r Resource) HasClass(c ThingID) bool {
	for _, x := range r.Classes {
		if x == c {
			return true
		}
	}
	return false
}

type Literal struct {
	ID        ThingID       `gorm:"column:id;primaryKey" json:"id"`
	Label     string        `gorm:"column:label;type:text;not null" json:"label"`
	Datatype  string        `gorm:"column:datatype;not null;default:'xsd:string'" json:"datatype"`
	CreatedBy ContributorID `gorm:"type:uuid;column:created_by" json:"created_by"`
	CreatedAt time.Time     `gorm:"column:created_at;not null;autoCreateTime:false" json:"created_at"`
}

func (Literal) TableName() string { return "literal" }

func (l Literal) ThingID() ThingID   { return l.ID }
func (l Literal) ThingLabel() string { return l.Label }
func (l Literal) Kind() ThingKind    { return KindLiteral }

type Predicate struct {
	ID        ThingID       `gorm:"column:id;primaryKey" json:"id"`
	Label     string        `gorm:"column:label;type:text;not null" json:"label"`
	CreatedBy ContributorID `gorm:"type:uuid;column:created_by" json:"created_by"`
	CreatedAt time.Time     `gorm:"column:created_at;not null;autoCreateTime:false" json:"created_at"`
}

func (Predicate) TableName() string { return "predicate" }

func (p Predicate) ThingID() ThingID   { return p.ID }
func (p Predicate) ThingLabel() string { return p.Label }
func (p Predicate) Kind() ThingKind    { return KindPredicate }

type Class struct {
	ID        ThingID       `gorm:"column:id;primaryKey" json:"id"`
	Label     string        `gorm:"column:label;type:text;not null" json:"label"`
	URI       string        `gorm:"column:uri;index" json:"uri,omitempty"`
	CreatedBy ContributorID `gorm:"type:uuid;column:created_by" json:"created_by"`
	CreatedAt time.Time     `gorm:"column:created_at;not null;autoCreateTime:false" json:"created_at"`
}

func (Class) TableName() string { return "class" }

func (c Class) ThingID() ThingID   { return c.ID }
func (c Class) ThingLabel() string { return c.Label }
func (c Class) Kind() ThingKind    { return KindClass }

// Statement is a (subject, predicate, object) triple. Subject and Object are
// populated on reads only.
type Statement struct {
	ID          StatementID   `gorm:"column:id;primaryKey" json:"id"`
	SubjectID   ThingID       `gorm:"column:subject_id;not null;index:idx_statement_subject_predicate,priority:1" json:"subject_id"`
	PredicateID ThingID       `gorm:"column:predicate_id;not null;index:idx_statement_subject_predicate,priority:2;index:idx_statement_predicate_object,priority:1" json:"predicate_id"`
	ObjectID    ThingID       `gorm:"column:object_id;not null;index:idx_statement_predicate_object,priority:2" json:"object_id"`
	Index       *int          `gorm:"column:idx" json:"index,omitempty"`
	CreatedBy   ContributorID `gorm:"type:uuid;column:created_by" json:"created_by"`
	CreatedAt   time.Time     `gorm:"column:created_at;not null;autoCreateTime:false" json:"created_at"`

	Subject Thing `gorm:"-" json:"-"`
	Object  Thing `gorm:"-" json:"-"`
}

func (Statement) TableName() string { return "statement" }

// ObjectLabel returns the label of the loaded object, or "" when not loaded.
func (s Statement) ObjectLabel() string {
	if s.Object == nil {
		return ""
	}
	return s.Object.ThingLabel()
}

// Observatory and Organization are aggregate roots owned by another
// bounded context; this module only checks they exist.
type Observatory struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"column:name;not null" json:"name"`
	CreatedAt time.Time `gorm:"column:created_at;not null;autoCreateTime:false" json:"created_at"`
}

func (Observatory) TableName() string { return "observatory" }

type Organization struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"column:name;not null" json:"name"`
	CreatedAt time.Time `gorm:"column:created_at;not null;autoCreateTime:false" json:"created_at"`
}

func (Organization) TableName() string { return "organization" }
