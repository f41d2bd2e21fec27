// Package cell provides the interrupt-safe shared slot that moves a
// peripheral handle from main context to interrupt context. Every access
// requires a live critical.Token; the handle is only ever lent to a closure,
// never handed back out.
package cell

import (
	"isrcell-go/errcode"
	"isrcell-go/services/hal/internal/critical"
)

// Cell holds zero or one T.
type Cell[T any] struct {
	name     string
	v        T
	full     bool
	borrowed bool
	stores   uint32
}

func New[T any](name string) *Cell[T] { return &Cell[T]{name: name} }

func (c *Cell[T]) Name() string { return c.name }

// Store puts v in the cell. A previous handle is dropped and reported through
// replaced; storing twice is a caller logic error unless intended.
func (c *Cell[T]) Store(tok critical.Token, v T) (prev T, replaced bool) {
	tok.Check()
	if c.borrowed {
		panic(errcode.AliasedBorrow)
	}
	prev, replaced = c.v, c.full
	c.v, c.full = v, true
	c.stores++
	return prev, replaced
}

// Populated reports whether a handle is present.
func (c *Cell[T]) Populated(tok critical.Token) bool {
	tok.Check()
	return c.full
}

// Stores counts Store calls since creation.
func (c *Cell[T]) Stores() uint32 { return c.stores }

// With lends the handle to fn for the duration of the caller's section.
// Halts if the cell is empty (a handler was armed before its cell was
// populated) or if the same cell is already lent out further up the stack.
func (c *Cell[T]) With(tok critical.Token, fn func(h T)) {
	tok.Check()
	if !c.full {
		panic(&errcode.E{C: errcode.EmptyCell, Op: "cell.With", Msg: c.name})
	}
	if c.borrowed {
		panic(&errcode.E{C: errcode.AliasedBorrow, Op: "cell.With", Msg: c.name})
	}
	c.borrowed = true
	defer func() { c.borrowed = false }()
	fn(c.v)
}

// Lock opens its own critical section around With.
func Lock[T any](ex *critical.Executor, c *Cell[T], fn func(h T)) {
	ex.Run(func(tok critical.Token) { c.With(tok, fn) })
}

// Query is Lock for closures that return a value.
func Query[T, R any](ex *critical.Executor, c *Cell[T], fn func(h T) R) (r R) {
	ex.Run(func(tok critical.Token) {
		c.With(tok, func(h T) { r = fn(h) })
	})
	return r
}
