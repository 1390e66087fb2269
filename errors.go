package daggerok

import (
	stderrors "errors"
	"fmt"
	"reflect"
)

var (
	// ErrBeanNotFound is returned when a constructor produced no bean and
	// [Context.FailOnInjectNullRef] is enabled.
	ErrBeanNotFound = stderrors.New("bean not found")
	// ErrCreationFailed is returned when a constructor failed and
	// [Context.FailOnBeanCreationError] is enabled.
	ErrCreationFailed = stderrors.New("bean creation failed")
	// ErrDiscoveryFailed is returned when a [Provider] failed for a search scope and
	// [Context.FailOnUnknownDiscoveryErrors] is enabled.
	ErrDiscoveryFailed = stderrors.New("discovery failed")
	// ErrTypeMismatch is returned when a bean is not assignable to the requested type.
	ErrTypeMismatch = stderrors.New("type mismatch")
	// ErrConfiguration is returned for invalid or missing configuration.
	ErrConfiguration = stderrors.New("configuration error")
	// ErrScopeNotFound is returned by a [Catalog] when a search scope matches no entries.
	ErrScopeNotFound = stderrors.New("scope not found")
)

// BeanNotFoundError reports a bean that resulted in nil.
type BeanNotFoundError struct {
	Type reflect.Type
	Key  string
	// Cause is the suppressed creation error, if any.
	Cause error
}

func (e *BeanNotFoundError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("injecting bean %q resulted in nil: %v", e.Key, e.Cause)
	}
	return fmt.Sprintf("injecting bean %q resulted in nil", e.Key)
}

func (e *BeanNotFoundError) Is(target error) bool {
	return target == ErrBeanNotFound
}

func (e *BeanNotFoundError) Unwrap() error {
	return e.Cause
}

// CreationError reports a constructor that returned an error or panicked.
type CreationError struct {
	Type  reflect.Type
	Key   string
	Cause error
}

func (e *CreationError) Error() string {
	return fmt.Sprintf("cannot instantiate %q: %v", e.Key, e.Cause)
}

func (e *CreationError) Is(target error) bool {
	return target == ErrCreationFailed
}

func (e *CreationError) Unwrap() error {
	return e.Cause
}

// DiscoveryError reports a [Provider] failure for one search scope.
type DiscoveryError struct {
	Scope string
	Cause error
}

func (e *DiscoveryError) Error() string {
	return fmt.Sprintf("discovery in scope %q failed: %v", e.Scope, e.Cause)
}

func (e *DiscoveryError) Is(target error) bool {
	return target == ErrDiscoveryFailed
}

func (e *DiscoveryError) Unwrap() error {
	return e.Cause
}

// TypeMismatchError reports a stored bean that is not assignable to the requested type.
type TypeMismatchError struct {
	Key  string
	Want reflect.Type
	// Got is nil when the stored bean is nil.
	Got reflect.Type
}

func (e *TypeMismatchError) Error() string {
	if e.Got == nil {
		return fmt.Sprintf("bean %q: nil is not assignable to %s", e.Key, e.Want)
	}
	return fmt.Sprintf("bean %q: %s is not assignable to %s", e.Key, e.Got, e.Want)
}

func (e *TypeMismatchError) Is(target error) bool {
	return target == ErrTypeMismatch
}

func configErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConfiguration, fmt.Sprintf(format, args...))
}
