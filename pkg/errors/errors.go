// Package errors provides the error taxonomy and warning system for expman.
// Every failure surfaced by run preparation is one of the structured types
// below, carrying enough context for callers to log and abort cleanly.
package errors

import (
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// ===========================================================================
//
//	Global warning handling
//
// ===========================================================================
var (
	warningMutex   sync.Mutex
	warningHandler = func(w error) {
		// Default handler logs to standard error.
		log.Printf("expman-warning: %v\n", w)
	}
	// zerolog sink (set lazily to avoid a circular import with the CLI)
	zerologWarnFunc func(warning error)
)

// SetWarningHandler sets the warning handler for the whole module.
// It controls how benign conditions such as DebugRunWarning are reported.
//
// Example:
//
//	errors.SetWarningHandler(func(w error) {
//	    // swallow warnings
//	})
func SetWarningHandler(handler func(w error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	warningHandler = handler
}

// SetZerologWarnFunc installs a zerolog-backed warning sink. When set it
// takes precedence over the plain handler.
func SetZerologWarnFunc(warnFunc func(warning error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	zerologWarnFunc = warnFunc
}

// Warn emits a warning through the configured sink.
func Warn(w error) {
	warningMutex.Lock()
	defer warningMutex.Unlock()

	if zerologWarnFunc != nil {
		zerologWarnFunc(w)
		return
	}

	if warningHandler != nil {
		warningHandler(w)
	}
}

// ===========================================================================
//
//	Warning types
//
// ===========================================================================

// DebugRunWarning is emitted when a run is routed to the debug directory
// instead of the hashed experiment tree.
type DebugRunWarning struct {
	DebugDir string
}

func (w *DebugRunWarning) Error() string {
	return fmt.Sprintf("debug mode: run routed to %s, hyperparameters are not fingerprinted", w.DebugDir)
}

// MarshalZerologObject adds the structured warning fields to a zerolog event.
func (w *DebugRunWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("debug_dir", w.DebugDir).
		Str("type", "DebugRunWarning")
}

// NewDebugRunWarning creates a new DebugRunWarning.
func NewDebugRunWarning(debugDir string) *DebugRunWarning {
	return &DebugRunWarning{DebugDir: debugDir}
}

// SharedExperimentWarning is emitted when the experiment directory already
// existed at preparation time. This is the expected outcome for repeated or
// parallel runs of the same configuration and never fails preparation; the
// warning only makes the sharing visible.
type SharedExperimentWarning struct {
	ExperimentID  string
	ExperimentDir string
}

func (w *SharedExperimentWarning) Error() string {
	return fmt.Sprintf("experiment %s already has runs under %s; this run joins them", w.ExperimentID, w.ExperimentDir)
}

// MarshalZerologObject adds the structured warning fields to a zerolog event.
func (w *SharedExperimentWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("experiment_id", w.ExperimentID).
		Str("experiment_dir", w.ExperimentDir).
		Str("type", "SharedExperimentWarning")
}

// NewSharedExperimentWarning creates a new SharedExperimentWarning.
func NewSharedExperimentWarning(experimentID, experimentDir string) *SharedExperimentWarning {
	return &SharedExperimentWarning{ExperimentID: experimentID, ExperimentDir: experimentDir}
}

// ===========================================================================
//
//	Structured error types
//
// ===========================================================================

// UnsupportedValueKindError reports a hyperparameter value that cannot be
// canonically serialized for fingerprinting. Path locates the offending
// value inside the parameter group ("training.optimizer.betas[1]").
type UnsupportedValueKindError struct {
	Path string
	Kind string
}

func (e *UnsupportedValueKindError) Error() string {
	return fmt.Sprintf("expman: cannot canonicalize value at %q: unsupported kind %s", e.Path, e.Kind)
}

// MarshalZerologObject adds the structured error fields to a zerolog event.
func (e *UnsupportedValueKindError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("path", e.Path).
		Str("kind", e.Kind).
		Str("type", "UnsupportedValueKindError")
}

// NewUnsupportedValueKindError creates a new UnsupportedValueKindError with
// a stack trace attached.
func NewUnsupportedValueKindError(path, kind string) error {
	err := &UnsupportedValueKindError{Path: path, Kind: kind}
	return errors.WithStack(err)
}

// MissingMonitoredKeyError reports a monitored key that is absent from the
// supplied hyperparameters. It is raised before any filesystem mutation.
type MissingMonitoredKeyError struct {
	Key       string
	Available []string
}

func (e *MissingMonitoredKeyError) Error() string {
	return fmt.Sprintf("expman: monitored key %q not present in hyperparameters (top-level keys: %s)",
		e.Key, strings.Join(e.Available, ", "))
}

// MarshalZerologObject adds the structured error fields to a zerolog event.
func (e *MissingMonitoredKeyError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("key", e.Key).
		Strs("available", e.Available).
		Str("type", "MissingMonitoredKeyError")
}

// NewMissingMonitoredKeyError creates a new MissingMonitoredKeyError with a
// stack trace attached.
func NewMissingMonitoredKeyError(key string, available []string) error {
	err := &MissingMonitoredKeyError{Key: key, Available: available}
	return errors.WithStack(err)
}

// RunDirectoryCollisionError reports a run directory that already holds
// content at the computed path. Two runs starting within the same minute
// under the same experiment identifier collide on the directory name; the
// collision fails loudly instead of clobbering the earlier run's artifacts.
type RunDirectoryCollisionError struct {
	RunDir  string
	Entries int
}

func (e *RunDirectoryCollisionError) Error() string {
	return fmt.Sprintf("expman: run directory %s already exists with %d entries; refusing to overwrite", e.RunDir, e.Entries)
}

// MarshalZerologObject adds the structured error fields to a zerolog event.
func (e *RunDirectoryCollisionError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("run_dir", e.RunDir).
		Int("entries", e.Entries).
		Str("type", "RunDirectoryCollisionError")
}

// NewRunDirectoryCollisionError creates a new RunDirectoryCollisionError
// with a stack trace attached.
func NewRunDirectoryCollisionError(runDir string, entries int) error {
	err := &RunDirectoryCollisionError{RunDir: runDir, Entries: entries}
	return errors.WithStack(err)
}

// RunNotFoundError reports a resume attempt against a run directory that
// does not exist.
type RunNotFoundError struct {
	ExperimentID string
	RunID        string
	Path         string
}

func (e *RunNotFoundError) Error() string {
	return fmt.Sprintf("expman: no run %s/%s at %s", e.ExperimentID, e.RunID, e.Path)
}

// MarshalZerologObject adds the structured error fields to a zerolog event.
func (e *RunNotFoundError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("experiment_id", e.ExperimentID).
		Str("run_id", e.RunID).
		Str("path", e.Path).
		Str("type", "RunNotFoundError")
}

// NewRunNotFoundError creates a new RunNotFoundError with a stack trace
// attached.
func NewRunNotFoundError(experimentID, runID, path string) error {
	err := &RunNotFoundError{ExperimentID: experimentID, RunID: runID, Path: path}
	return errors.WithStack(err)
}

// FilesystemError wraps an underlying I/O failure (permissions, disk full,
// path length) encountered while materializing the experiment tree.
type FilesystemError struct {
	Op   string
	Path string
	Err  error
}

func (e *FilesystemError) Error() string {
	return fmt.Sprintf("expman: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FilesystemError) Unwrap() error {
	return e.Err
}

// MarshalZerologObject adds the structured error fields to a zerolog event.
func (e *FilesystemError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("op", e.Op).
		Str("path", e.Path).
		AnErr("cause", e.Err).
		Str("type", "FilesystemError")
}

// NewFilesystemError creates a new FilesystemError with a stack trace
// attached.
func NewFilesystemError(op, path string, err error) error {
	fsErr := &FilesystemError{Op: op, Path: path, Err: err}
	return errors.WithStack(fsErr)
}

// ===========================================================================
//
//	cockroachdb/errors wrappers
//
// ===========================================================================

// Is reports whether err matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap wraps an existing error with a message.
func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

// Wrapf wraps an existing error with a format string.
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// New creates a new error.
func New(message string) error {
	return errors.New(message)
}

// Newf creates a new formatted error.
func Newf(format string, args ...interface{}) error {
	return errors.Newf(format, args...)
}

// WithStack annotates an error with a stack trace.
func WithStack(err error) error {
	return errors.WithStack(err)
}

// ===========================================================================
//
//	Common error variables
//
// ===========================================================================

var (
	// ErrNoMonitoredKeys is returned when preparation is attempted with an
	// empty monitored key list.
	ErrNoMonitoredKeys = New("no monitored keys")

	// ErrEmptyParams is returned when preparation is attempted with empty
	// hyperparameters.
	ErrEmptyParams = New("empty hyperparameters")

	// ErrNoCheckpoints is returned when a resumed run has no checkpoint
	// files in its models directory.
	ErrNoCheckpoints = New("no checkpoints found")
)
