package daggerok

import (
	"github.com/sectrean/daggerok/internal/errors"
)

// Report describes the outcome of [Context.Initialize].
type Report struct {
	// Discovered is the number of constructors found by discovery.
	Discovered int
	// Created is the number of keys added to the registry by resolution, nil beans
	// included. Beans replacing an existing entry are not counted.
	Created int
	// Passes is the number of passes the parameterized phase made.
	Passes int
	// Unresolved holds the keys of constructors that could not be satisfied.
	Unresolved []string
	// Suppressed holds the errors skipped by the failure policies, at most one
	// creation error per key.
	Suppressed []error
}

// Complete returns true if every discovered constructor was resolved.
func (r Report) Complete() bool {
	return len(r.Unresolved) == 0
}

// Err joins the suppressed errors. It returns nil if nothing was suppressed.
func (r Report) Err() error {
	return errors.MultiError(r.Suppressed).Join()
}
