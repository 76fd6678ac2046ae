// Copyright The wcs-go Authors
// SPDX-License-Identifier: Apache-2.0

// Package pipeline implements the Request Pipeline collaborator of spec
// §4.6: the per-call state machine (Built -> InFlight -> Decoded,
// looping through Sleeping on retry, to Done) and the single-attempt
// wire mechanics (header construction, signing, transport I/O, digest
// verification) that state machine drives.
//
// Retry classification itself stays outside this package: the caller
// decides whether to retry and then marks the Context Sleeping or Done,
// since only the owning wcs package knows how to turn a wire response
// into the Error taxonomy of spec §4.1.
package pipeline

import "fmt"

// State is one stage of a call's lifecycle (spec §4.6).
type State int

const (
	StateBuilt State = iota
	StateInFlight
	StateDecoded
	StateSleeping
	StateDone
)

func (s State) String() string {
	switch s {
	case StateBuilt:
		return "Built"
	case StateInFlight:
		return "InFlight"
	case StateDecoded:
		return "Decoded"
	case StateSleeping:
		return "Sleeping"
	case StateDone:
		return "Done"
	default:
		return "Unknown"
	}
}

// legalTransitions enumerates the state machine's edges. Built only ever
// leads to InFlight; from there a call alternates InFlight<->Decoded on
// each attempt, detouring through Sleeping between a retriable failure
// and the next attempt, until something marks it Done.
var legalTransitions = map[State]map[State]bool{
	StateBuilt:    {StateInFlight: true},
	StateInFlight: {StateDecoded: true},
	StateDecoded:  {StateSleeping: true, StateDone: true},
	StateSleeping: {StateInFlight: true},
	StateDone:     {},
}

// Context tracks one call's progress through the state machine. It is
// not safe for concurrent use — a call is driven by exactly one
// goroutine at a time, matching the actor-serialized callback delivery
// of spec §4.6.
type Context struct {
	TraceID   string
	state     State
	attempts  int
}

// NewContext builds a Context in the Built state.
func NewContext(traceID string) *Context {
	return &Context{TraceID: traceID, state: StateBuilt}
}

// State returns the current state.
func (c *Context) State() State { return c.state }

// Attempts returns how many times the call has entered InFlight.
func (c *Context) Attempts() int { return c.attempts }

func (c *Context) transition(to State) {
	if !legalTransitions[c.state][to] {
		panic(fmt.Sprintf("pipeline: illegal transition %s -> %s", c.state, to))
	}
	c.state = to
}

// MarkInFlight transitions Built->InFlight or Sleeping->InFlight and
// counts the attempt.
func (c *Context) MarkInFlight() {
	c.transition(StateInFlight)
	c.attempts++
}

// MarkDecoded transitions InFlight->Decoded: a response (success,
// server error, or transport failure) has been fully read.
func (c *Context) MarkDecoded() { c.transition(StateDecoded) }

// MarkSleeping transitions Decoded->Sleeping: a retry has been decided
// on and the backoff pause is starting.
func (c *Context) MarkSleeping() { c.transition(StateSleeping) }

// MarkDone transitions Decoded->Done: no further retry will occur,
// successful or not.
func (c *Context) MarkDone() { c.transition(StateDone) }
