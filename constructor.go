package daggerok

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/sectrean/daggerok/internal/errors"
)

// Param is a single constructor parameter.
type Param struct {
	Type reflect.Type
	// Key is the bean key the parameter is resolved with.
	Key string
}

// Constructor describes how to build one bean: the type it declares, the key the bean
// is registered with and the ordered parameters it needs.
//
// A Constructor is immutable once created.
type Constructor struct {
	t       reflect.Type
	key     string
	params  []Param
	markers []Marker
	fn      reflect.Value
	withErr bool
}

// NewConstructor creates a [Constructor] from a constructor function.
//
// The function may take any number of parameters and must return T or (T, error).
// The bean is registered with the key of T unless [WithKey] is used. Variadic functions
// are not supported.
//
// Available options:
//   - [WithKey] sets the key the bean is registered with.
//   - [WithKeyed] sets the key a parameter is resolved with.
//   - [WithMarker] adds a marker to the constructor.
func NewConstructor(fn any, opts ...Option) (*Constructor, error) {
	if fn == nil {
		return nil, errors.New("new constructor: fn is nil")
	}

	fnType := reflect.TypeOf(fn)
	if fnType.Kind() != reflect.Func {
		return nil, errors.Errorf("new constructor %T: fn must be a function", fn)
	}
	if fnType.IsVariadic() {
		return nil, errors.Errorf("new constructor %T: variadic functions are not supported", fn)
	}

	var withErr bool
	switch {
	case fnType.NumOut() == 1:
	case fnType.NumOut() == 2 && fnType.Out(1) == typeError:
		withErr = true
	default:
		return nil, errors.Errorf("new constructor %T: function must return T or (T, error)", fn)
	}

	t := fnType.Out(0)
	if t == typeError {
		return nil, errors.Errorf("new constructor %T: invalid bean type", fn)
	}

	var params []Param
	if fnType.NumIn() > 0 {
		params = make([]Param, fnType.NumIn())
		for i := range fnType.NumIn() {
			params[i] = Param{
				Type: fnType.In(i),
				Key:  KeyOf(fnType.In(i)),
			}
		}
	}

	c := &Constructor{
		t:       t,
		key:     KeyOf(t),
		params:  params,
		fn:      reflect.ValueOf(fn),
		withErr: withErr,
	}

	if err := c.apply(opts); err != nil {
		return nil, errors.Wrapf(err, "new constructor %T", fn)
	}

	return c, nil
}

// ZeroValueConstructor creates a [Constructor] without parameters for a struct type or
// a pointer to a struct type. The bean is the zero value of the struct, or a pointer to
// a new zero value.
func ZeroValueConstructor(t reflect.Type, opts ...Option) (*Constructor, error) {
	if !isZeroConstructible(t) {
		return nil, errors.Errorf("zero value constructor %s: type must be a struct or a pointer to a struct", t)
	}

	c := &Constructor{
		t:   t,
		key: KeyOf(t),
	}

	if err := c.apply(opts); err != nil {
		return nil, errors.Wrapf(err, "zero value constructor %s", t)
	}

	return c, nil
}

func isZeroConstructible(t reflect.Type) bool {
	if t == nil {
		return false
	}
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Kind() == reflect.Struct
}

func (c *Constructor) apply(opts []Option) error {
	var s settings
	err := applyOptions(opts, func(o Option) error {
		return o.apply(&s)
	})
	if err != nil {
		return err
	}

	if s.key != "" {
		c.key = s.key
	}
	c.markers = append(c.markers, s.markers...)

	var errs errors.MultiError
	for _, k := range s.keyed {
		errs = errs.Append(k.applyParams(c.params))
	}

	return errs.Join()
}

// Type returns the type the constructor declares.
func (c *Constructor) Type() reflect.Type {
	return c.t
}

// Key returns the key the bean is registered with.
func (c *Constructor) Key() string {
	return c.key
}

// NumParams returns the number of parameters.
func (c *Constructor) NumParams() int {
	return len(c.params)
}

// Params returns a copy of the parameters.
func (c *Constructor) Params() []Param {
	return append([]Param(nil), c.params...)
}

// HasMarker returns true if the constructor carries the marker.
func (c *Constructor) HasMarker(m Marker) bool {
	return hasMarker(c.markers, m)
}

func (c *Constructor) String() string {
	keys := make([]string, len(c.params))
	for i, p := range c.params {
		keys[i] = p.Key
	}
	return fmt.Sprintf("%s(%s)", c.key, strings.Join(keys, ", "))
}

// newInstance calls the constructor with the given arguments.
// A panic or a returned error is reported as a *CreationError.
func (c *Constructor) newInstance(args []reflect.Value) (val any, err error) {
	defer func() {
		if r := recover(); r != nil {
			val = nil
			err = &CreationError{Type: c.t, Key: c.key, Cause: panicError(r)}
		}
	}()

	if !c.fn.IsValid() {
		if c.t.Kind() == reflect.Ptr {
			return reflect.New(c.t.Elem()).Interface(), nil
		}
		return reflect.New(c.t).Elem().Interface(), nil
	}

	out := c.fn.Call(args)
	if c.withErr {
		if outErr, _ := out[1].Interface().(error); outErr != nil {
			return nil, &CreationError{Type: c.t, Key: c.key, Cause: outErr}
		}
	}

	return out[0].Interface(), nil
}

func panicError(r any) error {
	if err, ok := r.(error); ok {
		return errors.Wrap(err, "panic")
	}
	return errors.Errorf("panic: %v", r)
}
