package actions

import (
	"github.com/yungbote/kgcontent-backend/internal/contenttypes/ports"
	"github.com/yungbote/kgcontent-backend/internal/contenttypes/reconcile"
	"github.com/yungbote/kgcontent-backend/internal/contenttypes/thingdef"
)

// Kit is the set of helper instances the content-type steps share. Build it
// once per repository set.
type Kit struct {
	Repos ports.Repositories

	Titles          *TitleValidator
	Classes         *ClassValidator
	Aggregates      *AggregateValidator
	Identifiers     *IdentifierValidator
	Authors         *AuthorValidator
	ThingValidator  *thingdef.Validator
	ThingCreator    *thingdef.Creator
	Links           *Linker
	IdentifierStore *IdentifierWriter
	AuthorStore     *AuthorWriter
	Publication     *PublicationInfoWriter
	SingleValue     *reconcile.SingleValue
	ObjectSet       *reconcile.ObjectSet
	LiteralSet      *reconcile.LiteralSet
}

func NewKit(r ports.Repositories) *Kit {
	return &Kit{
		Repos:           r,
		Titles:          NewTitleValidator(r.Resources),
		Classes:         NewClassValidator(r.Resources),
		Aggregates:      NewAggregateValidator(r.Observatories, r.Organizations),
		Identifiers:     NewIdentifierValidator(r.Statements),
		Authors:         NewAuthorValidator(r.Resources, r.Statements),
		ThingValidator:  thingdef.NewValidator(r.Things, r.Predicates, r.Classes),
		ThingCreator:    thingdef.NewCreator(r.Resources, r.Literals, r.Statements),
		Links:           NewLinker(r.Statements),
		IdentifierStore: NewIdentifierWriter(r.Literals, r.Statements),
		AuthorStore:     NewAuthorWriter(r.Resources, r.Literals, r.Statements),
		Publication:     NewPublicationInfoWriter(r.Resources, r.Literals, r.Statements),
		SingleValue:     reconcile.NewSingleValue(r.Literals, r.Statements),
		ObjectSet:       reconcile.NewObjectSet(r.Statements),
		LiteralSet:      reconcile.NewLiteralSet(r.Literals, r.Statements),
	}
}
