package daggerok

import (
	"reflect"

	"github.com/sectrean/daggerok/internal/errors"
)

// Invoke calls fn with parameters looked up from the [Context].
//
// The function may take any number of parameters and may return any number of
// results. The first [error] result is returned as-is and the other results are ignored.
// A parameter without a non-nil bean fails with an error wrapping [ErrBeanNotFound].
//
// Available options:
//   - [WithKeyed] sets the key a parameter is looked up with.
func Invoke(c *Context, fn any, opts ...Option) error {
	fnType := reflect.TypeOf(fn)
	if fnType == nil || fnType.Kind() != reflect.Func {
		return errors.Errorf("daggerok.Invoke %T: fn must be a function", fn)
	}
	if fnType.IsVariadic() {
		return errors.Errorf("daggerok.Invoke %T: variadic functions are not supported", fn)
	}

	params := make([]Param, fnType.NumIn())
	for i := range fnType.NumIn() {
		params[i] = Param{
			Type: fnType.In(i),
			Key:  KeyOf(fnType.In(i)),
		}
	}

	var s settings
	err := applyOptions(opts, func(o Option) error {
		return o.apply(&s)
	})
	if err != nil {
		return errors.Wrapf(err, "daggerok.Invoke %T", fn)
	}

	var errs errors.MultiError
	for _, k := range s.keyed {
		errs = errs.Append(k.applyParams(params))
	}
	if err := errs.Wrapf("daggerok.Invoke %T", fn); err != nil {
		return err
	}

	in := make([]reflect.Value, len(params))
	for i, p := range params {
		bean, ok := c.registry.lookup(p.Key)
		if !ok {
			return errors.Wrapf(&BeanNotFoundError{Type: p.Type, Key: p.Key}, "daggerok.Invoke %T", fn)
		}
		if !assignable(bean, p.Type) {
			return errors.Wrapf(&TypeMismatchError{Key: p.Key, Want: p.Type, Got: reflect.TypeOf(bean)},
				"daggerok.Invoke %T", fn)
		}
		in[i] = reflect.ValueOf(bean)
	}

	out := reflect.ValueOf(fn).Call(in)

	for i := range fnType.NumOut() {
		if fnType.Out(i) == typeError {
			err, _ := out[i].Interface().(error)
			return err
		}
	}

	return nil
}
