package dbctx

import (
	"context"

	"gorm.io/gorm"
)

// Context bundles a request context with an optional GORM transaction.
type Context struct {
	Ctx context.Context
	Tx  *gorm.DB
}

// DB returns the transaction when set, otherwise fallback, bound to Ctx.
func (c Context) DB(fallback *gorm.DB) *gorm.DB {
	t := c.Tx
	if t == nil {
		t = fallback
	}
	if c.Ctx == nil {
		return t
	}
	return t.WithContext(c.Ctx)
}

type txKey struct{}

// WithTx carries tx on ctx so repositories called below join it.
func WithTx(ctx context.Context, tx *gorm.DB) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// FromContext returns the bundle for ctx, with the transaction set by WithTx if any.
func FromContext(ctx context.Context) Context {
	c := Context{Ctx: ctx}
	if ctx != nil {
		if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
			c.Tx = tx
		}
	}
	return c
}
