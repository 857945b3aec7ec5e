// Package pipeline runs ordered content-type steps over an immutable state.
package pipeline

import "context"

// Action is one unit of work. It returns the next state and must not mutate
// the state it was given.
type Action[C, S any] interface {
	Invoke(ctx context.Context, cmd C, state S) (S, error)
}

// ActionFunc adapts a plain function to Action.
type ActionFunc[C, S any] func(ctx context.Context, cmd C, state S) (S, error)

func (f ActionFunc[C, S]) Invoke(ctx context.Context, cmd C, state S) (S, error) {
	return f(ctx, cmd, state)
}

type Kind string

const (
	KindValidator Kind = "validator"
	KindResolver  Kind = "resolver"
	KindCreator   Kind = "creator"
	KindUpdater   Kind = "updater"
)

func (k Kind) Valid() bool {
	switch k {
	case KindValidator, KindResolver, KindCreator, KindUpdater:
		return true
	}
	return false
}

// Writes reports whether steps of this kind touch the store.
func (k Kind) Writes() bool {
	return k == KindCreator || k == KindUpdater
}

type Step[C, S any] struct {
	Name   string
	Kind   Kind
	Action Action[C, S]
}

// Validator, Resolver, Creator and Updater build steps from plain functions.

func Validator[C, S any](name string, fn func(ctx context.Context, cmd C, state S) (S, error)) Step[C, S] {
	return Step[C, S]{Name: name, Kind: KindValidator, Action: ActionFunc[C, S](fn)}
}

func Resolver[C, S any](name string, fn func(ctx context.Context, cmd C, state S) (S, error)) Step[C, S] {
	return Step[C, S]{Name: name, Kind: KindResolver, Action: ActionFunc[C, S](fn)}
}

func Creator[C, S any](name string, fn func(ctx context.Context, cmd C, state S) (S, error)) Step[C, S] {
	return Step[C, S]{Name: name, Kind: KindCreator, Action: ActionFunc[C, S](fn)}
}

func Updater[C, S any](name string, fn func(ctx context.Context, cmd C, state S) (S, error)) Step[C, S] {
	return Step[C, S]{Name: name, Kind: KindUpdater, Action: ActionFunc[C, S](fn)}
}
