package codegen

import (
	"fmt"
)

// Stage is the progress of one top-level type through generation.
type Stage int

const (
	StageParsed Stage = iota
	StageLayoutComputed
	StageDiscriminatorResolved
	StageEmitted
)

func (s Stage) String() string {
	switch s {
	case StageParsed:
		return "parsed"
	case StageLayoutComputed:
		return "layout-computed"
	case StageDiscriminatorResolved:
		return "discriminator-resolved"
	case StageEmitted:
		return "emitted"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// StageError reports a transition that skips or reverses a stage.
type StageError struct {
	Type string
	From Stage
	To   Stage
}

func (e *StageError) Error() string {
	return fmt.Sprintf("type %s: invalid stage transition %s -> %s", e.Type, e.From, e.To)
}

// Stages tracks the stage of every top-level type of one emission.
type Stages struct {
	current map[string]Stage
}

// NewStages starts every name at StageParsed.
func NewStages(names []string) *Stages {
	s := &Stages{current: make(map[string]Stage, len(names))}
	for _, n := range names {
		s.current[n] = StageParsed
	}
	return s
}

// Track starts name at StageParsed. Tracking a name twice is an error.
func (s *Stages) Track(name string) error {
	if _, ok := s.current[name]; ok {
		return fmt.Errorf("type %s: already tracked", name)
	}
	s.current[name] = StageParsed
	return nil
}

// Get returns the stage of name.
func (s *Stages) Get(name string) (Stage, bool) {
	st, ok := s.current[name]
	return st, ok
}

// Advance moves name to the stage directly after its current one.
func (s *Stages) Advance(name string, to Stage) error {
	from, ok := s.current[name]
	if !ok {
		return fmt.Errorf("type %s: not tracked", name)
	}
	if to != from+1 {
		return &StageError{Type: name, From: from, To: to}
	}
	s.current[name] = to
	return nil
}
