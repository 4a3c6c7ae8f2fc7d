// Package shapes holds annotated declarations for the collector tests.
package shapes

import "time"

//namedargs:export
func Move(x, y int) {}

// Reset has no parameters.
//
//namedargs:export
func Reset() {}

//namedargs:export
func helper(a int) int { return a }

func Ignored(a int) {}

//namedargs:export
func Sum(label string, values ...float64) (float64, error) { return 0, nil }

//namedargs:export
func Keys[K comparable, V any](m map[K]V, keep func(K, V) bool) []K { return nil }

// Point is a point in the plane.
//
//namedargs:export
type Point[T Number] struct{ X, Y T }

// Number constrains Point.
type Number interface{ ~int | ~float64 }

func NewPoint[T Number](x, y T) *Point[T] { return &Point[T]{X: x, Y: y} }

//namedargs:export
func (p *Point[U]) Scale(factor U, at time.Time) *Point[U] { return p }

type Box struct{ w float64 }

//namedargs:export
func (b Box) Resize(w float64) {}

//namedargs:export
type Listener interface{ OnChange(p *Point[int]) }

//namedargs:export
type Clock struct{}

//namedargs:export
func NewClock(tz string) (*Clock, error) { return &Clock{}, nil }
