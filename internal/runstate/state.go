// Package runstate holds the process-wide flags of a single orchestrator run
// and turns them into the run's outcome.
//
// Every flag is monotonic: once set within a run it stays set until the
// outcome is decided. A new run starts from a fresh State.
package runstate

import (
	"fmt"
	"sync"
)

// Phase is a stage of the run lifecycle.
type Phase int

const (
	PhaseInit Phase = iota
	// PhaseCold is entered when no previous meta store was found.
	PhaseCold
	PhaseScanning
	PhaseProcessing
	PhaseDecided
)

func (p Phase) String() string {
	switch p {
	case PhaseInit:
		return "init"
	case PhaseCold:
		return "cold"
	case PhaseScanning:
		return "scanning"
	case PhaseProcessing:
		return "processing"
	case PhaseDecided:
		return "decided"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// transitions lists the allowed forward moves between phases.
var transitions = map[Phase][]Phase{
	PhaseInit:       {PhaseCold, PhaseScanning},
	PhaseCold:       {PhaseScanning},
	PhaseScanning:   {PhaseProcessing},
	PhaseProcessing: {PhaseDecided},
}

// Outcome is the terminal result of a successful run.
type Outcome int

const (
	// Proceed means the generated description is current and the surrounding
	// build may continue.
	Proceed Outcome = iota
	// RegenerationRequired means the generated description changed or a
	// fetched dependency was rebuilt; the surrounding build must restart.
	RegenerationRequired
)

func (o Outcome) String() string {
	if o == RegenerationRequired {
		return "regeneration-required"
	}
	return "proceed"
}

// Flags is a point-in-time copy of the run flags.
type Flags struct {
	MetaMissing    bool
	IsDirty        bool
	FullRegenerate bool
	DeleteBuilds   bool
	ExitAndRebuild bool
}

// State is safe for concurrent use.
type State struct {
	mu    sync.Mutex
	flags Flags
	phase Phase
}

// New returns a State in PhaseInit with every flag cleared.
func New() *State {
	return &State{}
}

func (s *State) set(f func(*Flags)) {
	s.mu.Lock()
	f(&s.flags)
	s.mu.Unlock()
}

// MarkMetaMissing records that the meta store was absent or unreadable.
func (s *State) MarkMetaMissing() { s.set(func(f *Flags) { f.MetaMissing = true }) }

// MarkDirty records that the generated description must be refreshed.
func (s *State) MarkDirty() { s.set(func(f *Flags) { f.IsDirty = true }) }

// MarkFullRegenerate forces every module to be treated as changed.
func (s *State) MarkFullRegenerate() { s.set(func(f *Flags) { f.FullRegenerate = true }) }

// MarkDeleteBuilds requests removal of existing build caches.
func (s *State) MarkDeleteBuilds() { s.set(func(f *Flags) { f.DeleteBuilds = true }) }

// MarkExitAndRebuild records that a fetch step rebuilt external content.
func (s *State) MarkExitAndRebuild() { s.set(func(f *Flags) { f.ExitAndRebuild = true }) }

// Snapshot returns a copy of the current flags.
func (s *State) Snapshot() Flags {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flags
}

// IsDirty reports whether any descriptor, the compiler or the project
// changed during this run.
func (s *State) IsDirty() bool { return s.Snapshot().IsDirty }

// FullRegenerate reports whether every module must be regenerated.
func (s *State) FullRegenerate() bool { return s.Snapshot().FullRegenerate }

// DeleteBuilds reports whether previous build outputs must be removed.
func (s *State) DeleteBuilds() bool { return s.Snapshot().DeleteBuilds }

// MetaMissing reports whether no usable meta store was found.
func (s *State) MetaMissing() bool { return s.Snapshot().MetaMissing }

// ExitAndRebuild reports whether a fetch was rebuilt during this run.
func (s *State) ExitAndRebuild() bool { return s.Snapshot().ExitAndRebuild }

// Phase returns the current lifecycle phase.
func (s *State) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Advance moves the run to the next phase.
func (s *State) Advance(next Phase) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, allowed := range transitions[s.phase] {
		if allowed == next {
			s.phase = next
			return nil
		}
	}
	return fmt.Errorf("invalid phase transition %s -> %s", s.phase, next)
}

// Decide computes the terminal outcome. It may only be called once, after
// processing has completed.
func (s *State) Decide() (Outcome, error) {
	if err := s.Advance(PhaseDecided); err != nil {
		return Proceed, err
	}
	f := s.Snapshot()
	if f.IsDirty || f.ExitAndRebuild {
		return RegenerationRequired, nil
	}
	return Proceed, nil
}
