package aggregate

import (
	"errors"
)

// ErrNoValidData is matched by every *NoValidDataError via errors.Is.
var ErrNoValidData = errors.New("no valid TVL data")

// Scopes of a Subject
const (
	ScopeProtocol = "protocol"
	ScopeChain    = "chain"
)

// Subject identifies the series being summarized in error reports.
type Subject struct {
	Scope string
	Name  string
}

// ProtocolSubject names a protocol's overall series. A protocol without a name
// is reported with the plain "chain" label.
func ProtocolSubject(name string) Subject {
	if name == "" {
		return Subject{Scope: ScopeChain}
	}
	return Subject{Scope: ScopeProtocol, Name: name}
}

// ChainSubject names a single chain series; name may be empty.
func ChainSubject(name string) Subject {
	return Subject{Scope: ScopeChain, Name: name}
}

// NoValidDataError reports a series with zero valid points after cleaning.
type NoValidDataError struct {
	Scope string
	Name  string
}

func (e *NoValidDataError) Error() string {
	if e.Name == "" {
		return "no valid TVL data found for " + e.Scope
	}
	return "no valid TVL data found for " + e.Scope + " " + e.Name
}

// Is makes errors.Is(err, ErrNoValidData) hold.
func (e *NoValidDataError) Is(target error) bool {
	return target == ErrNoValidData
}
