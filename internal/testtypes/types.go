package testtypes

import (
	"errors"
	"reflect"
)

// Scope is the search scope of this package.
var Scope = reflect.TypeFor[Clock]().PkgPath()

var (
	TypeClock    = reflect.TypeFor[Clock]()
	TypeClockPtr = reflect.TypeFor[*Clock]()
	TypeService  = reflect.TypeFor[*Service]()
	TypeGreeter  = reflect.TypeFor[Greeter]()
)

// ErrBroken is returned by NewBroken.
var ErrBroken = errors.New("broken on purpose")

type Clock struct {
	Now int
}

type Service struct {
	Clock *Clock
}

func NewService(c *Clock) *Service {
	return &Service{Clock: c}
}

type Greeter interface {
	Greet() string
}

// Settings has the underlying type of a configuration map but is not one.
type Settings map[string]any

type ConfigGreeter struct {
	Config map[string]any
}

func (g *ConfigGreeter) Greet() string {
	msg, _ := g.Config["msg"].(string)
	return msg
}

func NewConfigGreeter(cfg map[string]any) Greeter {
	return &ConfigGreeter{Config: cfg}
}

type Outer struct {
	Service *Service
	Greeter Greeter
}

func NewOuter(s *Service, g Greeter) *Outer {
	return &Outer{Service: s, Greeter: g}
}

type Top struct {
	Outer *Outer
	Clock *Clock
}

func NewTop(o *Outer, c *Clock) *Top {
	return &Top{Outer: o, Clock: c}
}

type Chicken struct {
	Egg *Egg
}

func NewChicken(e *Egg) *Chicken {
	return &Chicken{Egg: e}
}

type Egg struct {
	Chicken *Chicken
}

func NewEgg(c *Chicken) *Egg {
	return &Egg{Chicken: c}
}

type Nothing struct{}

func NewNothing() *Nothing {
	return nil
}

type Broken struct{}

func NewBroken() (*Broken, error) {
	return nil, ErrBroken
}

type Panicky struct{}

func NewPanicky() *Panicky {
	panic("panicky on purpose")
}

type Lonely struct {
	Greeter Greeter
}

func NewLonely(g Greeter) *Lonely {
	return &Lonely{Greeter: g}
}
