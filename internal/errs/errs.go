package errs

import (
	"errors"
	"fmt"
)

// Kind classifies a domain error so the transport layer can map it to a
// status code without string matching.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindConflict
	KindNotFound
	KindCycle
	KindInvariant
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	case KindCycle:
		return "cycle"
	case KindInvariant:
		return "invariant"
	default:
		return "unknown"
	}
}

// Error carries the kind plus the entity/field that caused it.
type Error struct {
	Kind   Kind   `json:"kind"`
	Entity string `json:"entity,omitempty"`
	ID     string `json:"id,omitempty"`
	Field  string `json:"field,omitempty"`
	Msg    string `json:"message"`
}

func (e *Error) Error() string {
	switch {
	case e.ID != "":
		return fmt.Sprintf("%s: %s %q: %s", e.Kind, e.Entity, e.ID, e.Msg)
	case e.Field != "":
		return fmt.Sprintf("%s: field %q: %s", e.Kind, e.Field, e.Msg)
	default:
		return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
	}
}

func Validation(field, msg string) *Error {
	return &Error{Kind: KindValidation, Field: field, Msg: msg}
}

func Conflict(entity, id string) *Error {
	return &Error{Kind: KindConflict, Entity: entity, ID: id, Msg: "already exists"}
}

func NotFound(entity, id string) *Error {
	return &Error{Kind: KindNotFound, Entity: entity, ID: id, Msg: "does not exist"}
}

func Cycle(entity, id, msg string) *Error {
	return &Error{Kind: KindCycle, Entity: entity, ID: id, Msg: msg}
}

func Invariant(entity, id, msg string) *Error {
	return &Error{Kind: KindInvariant, Entity: entity, ID: id, Msg: msg}
}

func kindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

func IsValidation(err error) bool { return kindOf(err) == KindValidation }
func IsConflict(err error) bool   { return kindOf(err) == KindConflict }
func IsNotFound(err error) bool   { return kindOf(err) == KindNotFound }
func IsCycle(err error) bool      { return kindOf(err) == KindCycle }
func IsInvariant(err error) bool  { return kindOf(err) == KindInvariant }
