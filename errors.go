// Package psutil defines the failure taxonomy shared by the process, system
// and netconn packages.
package psutil

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/shirou/gopsutil/v4/process"
)

// Kind identifies one of the closed set of failure kinds.
// A Kind is itself an error, so errors.Is(err, psutil.NoSuchProcess) matches
// any *Error of that kind.
type Kind int

const (
	// Unclassified marks an OS failure that maps to no other kind.
	Unclassified Kind = iota
	// NoSuchProcess means the pid does not denote a live process.
	NoSuchProcess
	// ZombieProcess means the process exited but has not been reaped.
	ZombieProcess
	// AccessDenied means the caller lacks the required privilege.
	AccessDenied
	// TimeoutExpired means a caller-supplied deadline elapsed.
	TimeoutExpired
	// UnsupportedOnPlatform means the running backend does not implement the operation.
	UnsupportedOnPlatform
	// InvalidArgument means a parameter is out of the accepted domain.
	InvalidArgument
)

var kindNames = [...]string{
	Unclassified:          "unclassified system failure",
	NoSuchProcess:         "no such process",
	ZombieProcess:         "zombie process",
	AccessDenied:          "access denied",
	TimeoutExpired:        "timeout expired",
	UnsupportedOnPlatform: "unsupported on this platform",
	InvalidArgument:       "invalid argument",
}

// String returns the human-readable name of the kind.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

func (k Kind) Error() string { return k.String() }

// ErrNotImplemented is returned by backends for operations they do not
// implement on the running platform.
var ErrNotImplemented = errors.New("not implemented on this platform")

// Error is the single typed failure returned by every public operation.
type Error struct {
	Kind Kind
	// Op names the operation that failed, e.g. "cmdline" or "cpu_times".
	Op string
	// Pid is the target process, zero for system-wide operations.
	Pid int32
	// Err is the raw cause, possibly nil.
	Err error
}

// NewError returns an *Error of the given kind.
func NewError(kind Kind, op string, pid int32, err error) *Error {
	return &Error{Kind: kind, Op: op, Pid: pid, Err: err}
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(e.Kind.String())
	if e.Pid != 0 {
		fmt.Fprintf(&b, " (pid=%d)", e.Pid)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the Kind of e.
func (e *Error) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k == e.Kind
}

// KindOf returns the kind of the first *Error in err's chain.
// The second result is false when err carries no *Error.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return Unclassified, false
}

// Presence is the outcome of an existence check against a pid.
type Presence int

const (
	// Unknown means the check itself could not decide.
	Unknown Presence = iota
	// Gone means the pid is absent or now denotes a different process.
	Gone
	// Alive means the process exists and is not a zombie.
	Alive
	// Zombie means the process table still holds a defunct entry.
	Zombie
)

// Prober performs the fallback existence check used to disambiguate a raw
// failure. A nil Prober is treated as always returning Unknown.
type Prober func() Presence

func (p Prober) presence() Presence {
	if p == nil {
		return Unknown
	}
	return p()
}

// rule tells Translate how the existence check refines a classification.
type rule uint8

const (
	// ruleFinal keeps the classification.
	ruleFinal rule = iota
	// ruleRefineZombie turns NoSuchProcess into ZombieProcess for defunct entries.
	ruleRefineZombie
	// ruleUnlessGone turns the kind into NoSuchProcess if the process vanished.
	ruleUnlessGone
	// ruleResolve lets the existence check pick the kind.
	ruleResolve
)

// gopsutil keeps its not-implemented sentinel internal.
const notImplementedMessage = "not implemented yet"

func classify(err error) (Kind, rule) {
	var kind Kind
	switch {
	case errors.As(err, &kind):
		return kind, ruleFinal
	case errors.Is(err, ErrNotImplemented),
		strings.Contains(err.Error(), notImplementedMessage):
		return UnsupportedOnPlatform, ruleFinal
	case errors.Is(err, context.DeadlineExceeded):
		return TimeoutExpired, ruleFinal
	case errors.Is(err, os.ErrProcessDone),
		errors.Is(err, process.ErrorProcessNotRunning):
		return NoSuchProcess, ruleRefineZombie
	case errors.Is(err, process.ErrorNotPermitted),
		errors.Is(err, fs.ErrPermission):
		return AccessDenied, ruleUnlessGone
	}
	if kind, r, ok := classifyOS(err); ok {
		return kind, r
	}
	if errors.Is(err, fs.ErrNotExist) {
		return Unclassified, ruleResolve
	}
	return Unclassified, ruleUnlessGone
}

// Translate maps a raw backend failure to exactly one *Error. The probe is
// consulted only when the raw failure is ambiguous about the process state.
// An error that is already an *Error is returned unchanged.
func Translate(op string, pid int32, err error, probe Prober) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}

	kind, r := classify(err)
	switch r {
	case ruleRefineZombie:
		if pid > 0 && probe.presence() == Zombie {
			kind = ZombieProcess
		}
	case ruleUnlessGone:
		if pid > 0 && probe.presence() == Gone {
			kind = NoSuchProcess
		}
	case ruleResolve:
		if pid > 0 {
			switch probe.presence() {
			case Gone:
				kind = NoSuchProcess
			case Zombie:
				kind = ZombieProcess
			}
		}
	}
	return NewError(kind, op, pid, err)
}
