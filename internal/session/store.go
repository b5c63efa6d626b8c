// Package session holds the client-side state of the active conversation.
//
// The turn list is managed by a pure reducer: discrete actions (optimistic
// append, settle, wholesale replace, clear) are applied by [Apply], which
// never mutates its input. All mutation happens on the Bubble Tea event
// loop, so ordering within a send — user turn appended before the network
// call, assistant turn appended after it settles — is program order.
//
// [LatestCitations] is a projection, recomputed from the turn list on every
// read rather than cached, so a wholesale history replace can never leave
// it stale.
package session

import (
	"strings"

	"github.com/oncoref/oncoref/internal/gateway"
)

// FailedAnswer is the assistant turn content recorded when a send fails.
// The optimistic user turn is never retracted; a failure only fails to
// produce a clean reply.
const FailedAnswer = "Error: could not generate answer."

// Phase is the store's in-flight operation, if any. One operation at a time
// is meaningful from the operator's perspective; the reducer itself stays
// consistent regardless.
type Phase int

// Store phases.
const (
	Idle Phase = iota
	Sending
	LoadingHistory
	Clearing
)

// State is the conversation state for the active session identifier.
// Values are treated as immutable; Apply returns a fresh State.
type State struct {
	SessionID string
	Turns     []gateway.Turn
}

// Action is one discrete state transition. Exactly the five transitions the
// conversation needs; everything else is a projection of State.
type Action interface {
	apply(State) State
}

// AppendLocal optimistically appends the operator's message as a user turn,
// before any network round trip.
type AppendLocal struct {
	Content string
}

// SettleSuccess appends the assistant turn for a send that succeeded.
type SettleSuccess struct {
	Answer    string
	Citations []gateway.Citation
}

// SettleFailure appends the sentinel assistant turn for a send that failed.
type SettleFailure struct{}

// ReplaceAll replaces the turn list wholesale with a fetched history.
// No merging with local turns.
type ReplaceAll struct {
	Turns []gateway.Turn
}

// ClearAll empties the turn list after a successful remote clear.
type ClearAll struct{}

// SetSession retargets subsequent operations at a different session
// identifier. It fetches nothing and leaves the turn list alone; loading
// the new session's history is a separate, explicit action.
type SetSession struct {
	ID string
}

func (a AppendLocal) apply(s State) State {
	return State{
		SessionID: s.SessionID,
		Turns: appendTurn(s.Turns, gateway.Turn{
			Role:      gateway.RoleUser,
			Content:   a.Content,
			Citations: []gateway.Citation{},
		}),
	}
}

func (a SettleSuccess) apply(s State) State {
	citations := a.Citations
	if citations == nil {
		citations = []gateway.Citation{}
	}
	return State{
		SessionID: s.SessionID,
		Turns: appendTurn(s.Turns, gateway.Turn{
			Role:      gateway.RoleAssistant,
			Content:   a.Answer,
			Citations: citations,
		}),
	}
}

func (SettleFailure) apply(s State) State {
	return State{
		SessionID: s.SessionID,
		Turns: appendTurn(s.Turns, gateway.Turn{
			Role:      gateway.RoleAssistant,
			Content:   FailedAnswer,
			Citations: []gateway.Citation{},
		}),
	}
}

func (a ReplaceAll) apply(s State) State {
	turns := make([]gateway.Turn, len(a.Turns))
	copy(turns, a.Turns)
	return State{SessionID: s.SessionID, Turns: turns}
}

func (ClearAll) apply(s State) State {
	return State{SessionID: s.SessionID, Turns: nil}
}

func (a SetSession) apply(s State) State {
	return State{SessionID: strings.TrimSpace(a.ID), Turns: s.Turns}
}

// Apply returns the state after one action. The input state is never
// mutated; the turn list is copied on append so settled snapshots held by
// the presentation layer stay valid.
func Apply(s State, a Action) State {
	return a.apply(s)
}

// appendTurn copies the turn slice and appends. Turns are append-only from
// the client's perspective; only ReplaceAll and ClearAll swap the list.
func appendTurn(turns []gateway.Turn, t gateway.Turn) []gateway.Turn {
	next := make([]gateway.Turn, len(turns), len(turns)+1)
	copy(next, turns)
	return append(next, t)
}

// LatestCitations returns the citations of the most recent assistant turn,
// or an empty sequence when no assistant turn exists.
func LatestCitations(s State) []gateway.Citation {
	for i := len(s.Turns) - 1; i >= 0; i-- {
		if s.Turns[i].Role == gateway.RoleAssistant {
			if s.Turns[i].Citations == nil {
				return []gateway.Citation{}
			}
			return s.Turns[i].Citations
		}
	}
	return []gateway.Citation{}
}

// Store wraps the reducer state with the in-flight phase for the UI.
// Not safe for concurrent use; all calls happen on the event loop.
type Store struct {
	state State
	phase Phase
}

// NewStore creates a store targeting the given session identifier.
func NewStore(sessionID string) *Store {
	return &Store{state: State{SessionID: strings.TrimSpace(sessionID)}}
}

// Dispatch applies an action to the current state.
func (st *Store) Dispatch(a Action) {
	st.state = Apply(st.state, a)
}

// State returns the current state snapshot.
func (st *Store) State() State {
	return st.state
}

// Turns returns the current turn list.
func (st *Store) Turns() []gateway.Turn {
	return st.state.Turns
}

// SessionID returns the active session identifier.
func (st *Store) SessionID() string {
	return st.state.SessionID
}

// LatestCitations returns the latest-citations projection.
func (st *Store) LatestCitations() []gateway.Citation {
	return LatestCitations(st.state)
}

// Phase returns the in-flight operation.
func (st *Store) Phase() Phase {
	return st.phase
}

// SetPhase records the in-flight operation.
func (st *Store) SetPhase(p Phase) {
	st.phase = p
}

// Busy reports whether an operation is in flight.
func (st *Store) Busy() bool {
	return st.phase != Idle
}
