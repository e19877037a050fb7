package timer

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownKind is returned for a counter kind other than work or study.
var ErrUnknownKind = errors.New("unknown counter kind")

// ErrReadOnly is returned by transitions on an engine opened with ReadOnly.
var ErrReadOnly = errors.New("timer opened read-only")

// Kind identifies one of the independently clocked counters.
type Kind string

const (
	Work  Kind = "work"
	Study Kind = "study"
)

// Kinds lists every counter in display order.
var Kinds = []Kind{Work, Study}

func (k Kind) Valid() bool {
	return k == Work || k == Study
}

func (k Kind) String() string { return string(k) }

// Label is the capitalised display name.
func (k Kind) Label() string {
	switch k {
	case Work:
		return "Work"
	case Study:
		return "Study"
	}
	return string(k)
}

// ParseKind accepts "work" or "study" in any case.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if !k.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
	return k, nil
}
