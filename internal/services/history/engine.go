// Package history implements undo/redo over complete design snapshots.
//
// Every mutation of a design goes through Commit or Amend. Snapshots are never
// modified once stored: undo and redo only move the current index.
// The engine is not safe for concurrent use; callers serialise access.
package history

import (
	"github.com/planmark/planmark-go/internal/design"
)

// DefaultLimit is the number of snapshots kept when no limit is configured.
const DefaultLimit = 100

// Mutator derives a new document from the current one. It receives a private
// copy and may modify it freely.
type Mutator func(doc design.Document) design.Document

// Reason names the transition that produced a Status.
type Reason string

const (
	ReasonCommit Reason = "COMMIT"
	ReasonAmend  Reason = "AMEND"
	ReasonUndo   Reason = "UNDO"
	ReasonRedo   Reason = "REDO"
	ReasonReset  Reason = "RESET"
)

// Status describes the position in the history after a transition.
type Status struct {
	Index   int    `json:"index"`
	Length  int    `json:"length"`
	CanUndo bool   `json:"canUndo"`
	CanRedo bool   `json:"canRedo"`
	Reason  Reason `json:"reason,omitempty"`
}

// Engine is an undo/redo stack of design snapshots.
type Engine struct {
	snapshots []design.Document
	index     int
	limit     int

	onChange func(Status)
}

// NewEngine creates an engine holding one empty snapshot. limit bounds the
// number of snapshots kept; values below 1 select DefaultLimit.
func NewEngine(limit int) *Engine {
	if limit < 1 {
		limit = DefaultLimit
	}
	return &Engine{
		snapshots: []design.Document{design.Empty()},
		limit:     limit,
	}
}

// SetChangeCallback registers a function called after every transition that
// changed the engine.
func (e *Engine) SetChangeCallback(fn func(Status)) {
	e.onChange = fn
}

// Commit applies m to the current snapshot and appends the result, dropping
// any redo entries. A result structurally equal to the current snapshot is a
// no-op. It reports whether a new entry was created.
func (e *Engine) Commit(m Mutator) bool {
	current := e.snapshots[e.index]
	next := m(current.Clone())
	if design.Equal(current, next) {
		return false
	}

	e.snapshots = append(e.snapshots[:e.index+1], next.Clone())
	e.index++

	if overflow := len(e.snapshots) - e.limit; overflow > 0 {
		e.snapshots = append([]design.Document(nil), e.snapshots[overflow:]...)
		e.index -= overflow
	}

	e.notify(ReasonCommit)
	return true
}

// Amend applies m to the current snapshot and replaces it in place, leaving
// the undo position unchanged. It reports whether the snapshot changed.
func (e *Engine) Amend(m Mutator) bool {
	current := e.snapshots[e.index]
	next := m(current.Clone())
	if design.Equal(current, next) {
		return false
	}

	e.snapshots[e.index] = next.Clone()
	e.notify(ReasonAmend)
	return true
}

// Undo moves to the previous snapshot. It is a no-op at the first entry.
func (e *Engine) Undo() bool {
	if e.index == 0 {
		return false
	}
	e.index--
	e.notify(ReasonUndo)
	return true
}

// Redo moves to the next snapshot. It is a no-op at the last entry.
func (e *Engine) Redo() bool {
	if e.index >= len(e.snapshots)-1 {
		return false
	}
	e.index++
	e.notify(ReasonRedo)
	return true
}

// Reset replaces the whole history with doc. The previous history cannot be
// recovered.
func (e *Engine) Reset(doc design.Document) {
	e.snapshots = []design.Document{doc.Clone()}
	e.index = 0
	e.notify(ReasonReset)
}

// Current returns a copy of the current snapshot.
func (e *Engine) Current() design.Document {
	return e.snapshots[e.index].Clone()
}

// CanUndo reports whether Undo would move.
func (e *Engine) CanUndo() bool {
	return e.index > 0
}

// CanRedo reports whether Redo would move.
func (e *Engine) CanRedo() bool {
	return e.index < len(e.snapshots)-1
}

// Len returns the number of stored snapshots.
func (e *Engine) Len() int {
	return len(e.snapshots)
}

// Index returns the position of the current snapshot.
func (e *Engine) Index() int {
	return e.index
}

// Status returns the current position without a reason.
func (e *Engine) Status() Status {
	return Status{
		Index:   e.index,
		Length:  len(e.snapshots),
		CanUndo: e.CanUndo(),
		CanRedo: e.CanRedo(),
	}
}

func (e *Engine) notify(reason Reason) {
	if e.onChange == nil {
		return
	}
	s := e.Status()
	s.Reason = reason
	e.onChange(s)
}
