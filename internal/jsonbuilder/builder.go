// Package jsonbuilder assembles JSON documents through a fluent, validated call sequence.
//
// A Builder is a small state machine over a stack of open containers. Every call is
// checked against the state at the top of the stack; the first violation is recorded
// and reported by Build, and later calls become no-ops.
//
//	node, err := jsonbuilder.New().
//		StartDict().
//		Key("request_id").Value(1).
//		Key("buses").StartArray().Value("114").EndArray().
//		EndDict().
//		Build()
package jsonbuilder

import (
	"errors"
	"fmt"
)

var (
	ErrValueWithoutKey   = errors.New("value requested without a pending key")
	ErrKeyOutsideDict    = errors.New("key requested outside of a map")
	ErrKeyAlreadyPending = errors.New("key requested while another key awaits its value")
	ErrKeyWithoutValue   = errors.New("map closed while a key awaits its value")
	ErrMismatchedClose   = errors.New("closed a container of a different kind than the one open")
	ErrNothingToClose    = errors.New("close requested with no open container")
	ErrBuilderClosed     = errors.New("builder already holds a complete document")
	ErrIncomplete        = errors.New("document is incomplete")
)

// Dict is a built JSON object
type Dict = map[string]any

// Array is a built JSON array
type Array = []any

// State is the position of a Builder in its protocol
type State int

const (
	StateAwaitingValue State = iota
	StateAwaitingKeyOrClose
	StateInArray
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateAwaitingValue:
		return "AwaitingValue"
	case StateAwaitingKeyOrClose:
		return "AwaitingKeyOrClose"
	case StateInArray:
		return "InArray"
	case StateClosed:
		return "Closed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

type frame struct {
	dict       Dict
	array      Array
	isArray    bool
	pendingKey *string
}

// Builder builds one JSON value
type Builder struct {
	stack   []*frame
	root    any
	hasRoot bool
	err     error
}

// New creates a builder awaiting its root value
func New() *Builder {
	return &Builder{}
}

// State returns the current protocol state
func (b *Builder) State() State {
	if len(b.stack) == 0 {
		if b.hasRoot {
			return StateClosed
		}
		return StateAwaitingValue
	}
	top := b.stack[len(b.stack)-1]
	switch {
	case top.isArray:
		return StateInArray
	case top.pendingKey != nil:
		return StateAwaitingValue
	default:
		return StateAwaitingKeyOrClose
	}
}

// Err returns the first protocol violation, if any
func (b *Builder) Err() error {
	return b.err
}

// Key sets the key for the next value of the open map
func (b *Builder) Key(key string) *Builder {
	if b.err != nil {
		return b
	}

	switch b.State() {
	case StateAwaitingKeyOrClose:
		b.stack[len(b.stack)-1].pendingKey = &key
	case StateClosed:
		b.fail("Key", key, ErrBuilderClosed)
	case StateAwaitingValue:
		if len(b.stack) > 0 {
			b.fail("Key", key, ErrKeyAlreadyPending)
		} else {
			b.fail("Key", key, ErrKeyOutsideDict)
		}
	default:
		b.fail("Key", key, ErrKeyOutsideDict)
	}
	return b
}

// Value places a complete value at the current position
func (b *Builder) Value(value any) *Builder {
	if b.err != nil {
		return b
	}
	if err := b.canPlace(); err != nil {
		b.fail("Value", "", err)
		return b
	}
	b.place(value)
	return b
}

// StartDict opens a map at the current position
func (b *Builder) StartDict() *Builder {
	if b.err != nil {
		return b
	}
	if err := b.canPlace(); err != nil {
		b.fail("StartDict", "", err)
		return b
	}
	b.stack = append(b.stack, &frame{dict: Dict{}})
	return b
}

// StartArray opens an array at the current position
func (b *Builder) StartArray() *Builder {
	if b.err != nil {
		return b
	}
	if err := b.canPlace(); err != nil {
		b.fail("StartArray", "", err)
		return b
	}
	b.stack = append(b.stack, &frame{array: Array{}, isArray: true})
	return b
}

// EndDict closes the open map
func (b *Builder) EndDict() *Builder {
	if b.err != nil {
		return b
	}

	switch b.State() {
	case StateAwaitingKeyOrClose:
		top := b.pop()
		b.place(top.dict)
	case StateInArray:
		b.fail("EndDict", "", fmt.Errorf("%w: closed a map while an array was open", ErrMismatchedClose))
	case StateAwaitingValue:
		if len(b.stack) > 0 {
			b.fail("EndDict", *b.stack[len(b.stack)-1].pendingKey, ErrKeyWithoutValue)
		} else {
			b.fail("EndDict", "", ErrNothingToClose)
		}
	case StateClosed:
		b.fail("EndDict", "", ErrBuilderClosed)
	}
	return b
}

// EndArray closes the open array
func (b *Builder) EndArray() *Builder {
	if b.err != nil {
		return b
	}

	switch b.State() {
	case StateInArray:
		top := b.pop()
		b.place(top.array)
	case StateAwaitingKeyOrClose:
		b.fail("EndArray", "", fmt.Errorf("%w: closed an array while a map was open", ErrMismatchedClose))
	case StateAwaitingValue:
		if len(b.stack) > 0 {
			b.fail("EndArray", "", fmt.Errorf("%w: closed an array while a map was open", ErrMismatchedClose))
		} else {
			b.fail("EndArray", "", ErrNothingToClose)
		}
	case StateClosed:
		b.fail("EndArray", "", ErrBuilderClosed)
	}
	return b
}

// Build returns the finished document
func (b *Builder) Build() (any, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.State() != StateClosed {
		return nil, fmt.Errorf("Build: %w (state %s, %d open containers)", ErrIncomplete, b.State(), len(b.stack))
	}
	return b.root, nil
}

// canPlace reports whether a value may be placed in the current state
func (b *Builder) canPlace() error {
	switch b.State() {
	case StateAwaitingValue, StateInArray:
		return nil
	case StateAwaitingKeyOrClose:
		return ErrValueWithoutKey
	default:
		return ErrBuilderClosed
	}
}

// place stores a finished value in the enclosing container or as the root
func (b *Builder) place(value any) {
	if len(b.stack) == 0 {
		b.root = value
		b.hasRoot = true
		return
	}

	top := b.stack[len(b.stack)-1]
	if top.isArray {
		top.array = append(top.array, value)
		return
	}
	top.dict[*top.pendingKey] = value
	top.pendingKey = nil
}

func (b *Builder) pop() *frame {
	top := b.stack[len(b.stack)-1]
	b.stack = b.stack[:len(b.stack)-1]
	return top
}

func (b *Builder) fail(op, key string, err error) {
	if key != "" {
		b.err = fmt.Errorf("%s(%q): %w", op, key, err)
		return
	}
	b.err = fmt.Errorf("%s: %w", op, err)
}
