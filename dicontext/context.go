// Package dicontext carries a [daggerok.Context] on a [context.Context].
package dicontext

import (
	"context"

	"github.com/sectrean/daggerok"
	"github.com/sectrean/daggerok/internal/errors"
)

type beanContextKey struct{}

// WithContext returns a new [context.Context] that carries the provided [daggerok.Context].
func WithContext(ctx context.Context, c *daggerok.Context) context.Context {
	return context.WithValue(ctx, beanContextKey{}, c)
}

// FromContext returns the [daggerok.Context] stored on the [context.Context], if present.
func FromContext(ctx context.Context) *daggerok.Context {
	if c, ok := ctx.Value(beanContextKey{}).(*daggerok.Context); ok {
		return c
	}
	return nil
}

// Bean returns the bean of type T from the [daggerok.Context] stored on the
// [context.Context].
//
// A missing bean results in an error wrapping [daggerok.ErrBeanNotFound].
func Bean[T any](ctx context.Context) (T, error) {
	var val T

	c := FromContext(ctx)
	if c == nil {
		return val, errors.Errorf("bean %s from context: daggerok context not found on context", daggerok.KeyFor[T]())
	}

	val, ok, err := daggerok.Bean[T](c)
	if err != nil {
		return val, errors.Wrap(err, "bean from context")
	}
	if !ok {
		return val, errors.Wrapf(daggerok.ErrBeanNotFound, "bean %s from context", daggerok.KeyFor[T]())
	}

	return val, nil
}

// MustBean returns the bean of type T from the [daggerok.Context] stored on the
// [context.Context]. It panics if the bean can not be returned.
func MustBean[T any](ctx context.Context) T {
	val, err := Bean[T](ctx)
	if err != nil {
		panic(err)
	}
	return val
}
