// Package coredb assembles the local store, schema registry, query
// engine, and optional bucket mirror behind one façade: Database. This
// is the seam every higher layer (CLI, NL translator, terminal
// renderer) composes through.
//
// Grounded on original_source/tools/aresadb/src/storage/mod.rs's
// Database/DatabaseConfig/DatabaseStatus/SyncStats/GraphView/KvView,
// per SPEC_FULL.md §5, with the surrounding Go idiom (error kinds,
// struct composition, Open/Create constructors) grounded on the
// teacher's pkg/nornicdb/db.go (DB struct, Config, Open).
package coredb

import (
	"errors"
	"fmt"
)

// Kind classifies an Error without requiring callers to match on
// concrete types, per spec.md §7's error taxonomy.
type Kind int

const (
	KindConfig Kind = iota
	KindConnection
	KindQuery
	KindNotFound
	KindValidation
	KindCorruption
	KindIO
	KindTimeout
	KindReadOnly
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindConnection:
		return "connection"
	case KindQuery:
		return "query"
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation"
	case KindCorruption:
		return "corruption"
	case KindIO:
		return "io"
	case KindTimeout:
		return "timeout"
	case KindReadOnly:
		return "read_only"
	case KindConflict:
		return "conflict"
	default:
		return "unknown"
	}
}

// Error is the one error type coredb returns across every public
// method: a Kind for callers to match on via errors.Is/errors.As, a
// Subject identifying what the error is about (an id, a name, a
// field), a one-line actionable Hint, and the wrapped Cause.
type Error struct {
	Kind    Kind
	Subject string
	Hint    string
	Cause   error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Kind, e.Subject)
	if e.Hint != "" {
		msg += " (" + e.Hint + ")"
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Cause }

// Is reports whether target is an *Error with the same Kind, so
// errors.Is(err, &Error{Kind: KindNotFound}) matches regardless of
// Subject/Hint/Cause.
func (e *Error) Is(target error) bool {
	var other *Error
	if errors.As(target, &other) {
		return e.Kind == other.Kind
	}
	return false
}

func newErr(kind Kind, subject, hint string, cause error) *Error {
	return &Error{Kind: kind, Subject: subject, Hint: hint, Cause: cause}
}

// Sentinel kind markers for errors.Is comparisons, e.g.
// errors.Is(err, ErrNotFound).
var (
	ErrConfig     = &Error{Kind: KindConfig}
	ErrConnection = &Error{Kind: KindConnection}
	ErrQuery      = &Error{Kind: KindQuery}
	ErrNotFound   = &Error{Kind: KindNotFound}
	ErrValidation = &Error{Kind: KindValidation}
	ErrCorruption = &Error{Kind: KindCorruption}
	ErrIO         = &Error{Kind: KindIO}
	ErrTimeout    = &Error{Kind: KindTimeout}
	ErrReadOnly   = &Error{Kind: KindReadOnly}
	ErrConflict   = &Error{Kind: KindConflict}
)
