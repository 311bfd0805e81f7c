// Package planerr defines the planner's error taxonomy.
//
// Three kinds of failure exist. Configuration errors are fatal and abort
// startup. Invalid destinations are fatal inside the control loop since
// they mean a scheduling policy proposed a step the motion model cannot
// take. Not-found errors are recoverable and expected when arrivals and
// removals race.
package planerr

import (
	"errors"
	"fmt"
	"strconv"
)

// Sentinel errors, matched with errors.Is.
var (
	ErrConfiguration      = errors.New("configuration error")
	ErrInvalidDestination = errors.New("invalid destination")
	ErrNotFound           = errors.New("instruction not found")
)

// Error carries structured context for a planner failure.
type Error struct {
	Op      string // Operation that failed (e.g. "Advance", "Remove")
	Entity  string // "node", "edge", "instruction", "graph"
	ID      string // Entity identifier, empty when not applicable
	Cause   error  // Underlying error, usually one of the sentinels
	Context string // Free-form detail
}

func (e *Error) Error() string {
	subject := e.Entity
	if e.ID != "" {
		subject += " " + e.ID
	}
	switch {
	case subject != "" && e.Context != "":
		return fmt.Sprintf("%s %s (%s): %v", e.Op, subject, e.Context, e.Cause)
	case subject != "":
		return fmt.Sprintf("%s %s: %v", e.Op, subject, e.Cause)
	case e.Context != "":
		return fmt.Sprintf("%s (%s): %v", e.Op, e.Context, e.Cause)
	default:
		return fmt.Sprintf("%s: %v", e.Op, e.Cause)
	}
}

// Unwrap returns the underlying cause for error chain support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Builder assembles an *Error fluently.
type Builder struct {
	err Error
}

// New starts an error for the given operation.
func New(op string) *Builder {
	return &Builder{err: Error{Op: op}}
}

// Node marks the error as concerning graph node n.
func (b *Builder) Node(n int) *Builder {
	b.err.Entity = "node"
	b.err.ID = strconv.Itoa(n)
	return b
}

// Edge marks the error as concerning the edge between a and c.
func (b *Builder) Edge(a, c int) *Builder {
	b.err.Entity = "edge"
	b.err.ID = fmt.Sprintf("%d-%d", a, c)
	return b
}

// Instruction marks the error as concerning instruction id.
func (b *Builder) Instruction(id uint64) *Builder {
	b.err.Entity = "instruction"
	b.err.ID = strconv.FormatUint(id, 10)
	return b
}

// Graph marks the error as concerning the topology as a whole.
func (b *Builder) Graph() *Builder {
	b.err.Entity = "graph"
	b.err.ID = ""
	return b
}

// Context adds free-form detail.
func (b *Builder) Context(format string, args ...any) *Builder {
	b.err.Context = fmt.Sprintf(format, args...)
	return b
}

// Cause sets the underlying error.
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Build returns the constructed *Error.
func (b *Builder) Build() *Error {
	e := b.err
	return &e
}

// Err returns the constructed error as an error value.
func (b *Builder) Err() error {
	return b.Build()
}

// Configuration builds a configuration error about the graph.
func Configuration(op, format string, args ...any) error {
	return New(op).Graph().Context(format, args...).Cause(ErrConfiguration).Err()
}

// NotFound builds a not-found error for instruction id.
func NotFound(op string, id uint64) error {
	return New(op).Instruction(id).Cause(ErrNotFound).Err()
}

// InvalidDestination builds an error for a step toward target that is not
// adjacent to the position described by ctx.
func InvalidDestination(op string, target int, ctx string) error {
	return New(op).Node(target).Context("%s", ctx).Cause(ErrInvalidDestination).Err()
}

// IsConfiguration reports whether err is a configuration error.
func IsConfiguration(err error) bool { return errors.Is(err, ErrConfiguration) }

// IsNotFound reports whether err is a not-found error.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsInvalidDestination reports whether err is an invalid-destination error.
func IsInvalidDestination(err error) bool { return errors.Is(err, ErrInvalidDestination) }

// IsFatal reports whether err must stop the control loop.
func IsFatal(err error) bool {
	return err != nil && !IsNotFound(err)
}
