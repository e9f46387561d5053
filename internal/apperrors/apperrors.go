// Package apperrors is the unified error taxonomy every other package in
// this module returns through: a small set of Kinds, an opaque diagnostic
// string, optional metadata, an optional contract error code, and a
// preserved cause chain.
package apperrors

import (
	"errors"
	"maps"
	"strconv"
	"strings"
)

// Kind enumerates the error categories the rest of the pipeline can
// produce. Kinds are what callers branch on; Message is always the opaque
// diagnostic string for humans and logs.
type Kind string

const (
	Transport           Kind = "transport"
	ChipProtocol        Kind = "chip_protocol"
	Der                 Kind = "der"
	Curve               Kind = "curve"
	Sep53               Kind = "sep53"
	ContractSimulation  Kind = "contract_simulation"
	ContractExecution   Kind = "contract_execution"
	ReplayNonce         Kind = "replay_nonce"
	RecoveryIDUnmatched Kind = "recovery_id_unmatched"
	Timeout             Kind = "timeout"
	UserCancelled       Kind = "user_cancelled"
	Validation          Kind = "validation"
)

const (
	metadataSeparator = ", "
	metadataPrefix    = "metadata={"
	metadataSuffix    = "}"
	causePrefix       = "cause="
)

// Status carries an error's stable, serializable fields.
type Status struct {
	Kind         Kind              `json:"kind"`
	Message      string            `json:"message,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	ContractCode *uint32           `json:"contract_code,omitempty"`
}

// Error is the structured error every component returns.
type Error struct {
	Status
	cause error
}

func (e *Error) Error() string {
	var msg strings.Builder
	msg.WriteString("kind=")
	msg.WriteString(string(e.Kind))
	msg.WriteString(metadataSeparator)
	msg.WriteString("message=")
	msg.WriteString(e.Message)

	if e.ContractCode != nil {
		msg.WriteString(metadataSeparator)
		msg.WriteString("contract_code=")
		msg.WriteString(strconv.FormatUint(uint64(*e.ContractCode), 10))
	}

	if len(e.Metadata) > 0 {
		msg.WriteString(metadataSeparator)
		msg.WriteString(metadataPrefix)
		first := true
		for k, v := range e.Metadata {
			if !first {
				msg.WriteString(", ")
			}
			msg.WriteString(k)
			msg.WriteByte('=')
			msg.WriteString(v)
			first = false
		}
		msg.WriteString(metadataSuffix)
	}

	if e.cause != nil {
		msg.WriteString(metadataSeparator)
		msg.WriteString(causePrefix)
		msg.WriteString(e.cause.Error())
	}

	return msg.String()
}

func (e *Error) Unwrap() error {
	return e.cause
}

// WithMetadata returns a new error with m merged into its metadata.
func (e *Error) WithMetadata(m map[string]string) *Error {
	if len(m) == 0 {
		return e
	}
	err := e.clone()
	if err.Metadata == nil {
		err.Metadata = make(map[string]string, len(m))
	}
	maps.Copy(err.Metadata, m)
	return err
}

// WithCause returns a new error with cause attached.
func (e *Error) WithCause(cause error) *Error {
	if cause == nil {
		return e
	}
	err := e.clone()
	err.cause = cause
	return err
}

// WithContractCode tags the error with the contract's own numeric error
// code (e.g. TokenAlreadyClaimed), so the UI can distinguish failure modes
// that all surface as ContractExecution.
func (e *Error) WithContractCode(code uint32) *Error {
	err := e.clone()
	err.ContractCode = &code
	return err
}

func (e *Error) clone() *Error {
	var metadata map[string]string
	if len(e.Metadata) > 0 {
		metadata = make(map[string]string, len(e.Metadata))
		maps.Copy(metadata, e.Metadata)
	}
	var contractCode *uint32
	if e.ContractCode != nil {
		cc := *e.ContractCode
		contractCode = &cc
	}
	return &Error{
		Status: Status{
			Kind:         e.Kind,
			Message:      e.Message,
			Metadata:     metadata,
			ContractCode: contractCode,
		},
		cause: e.cause,
	}
}

// Is reports whether err is an *Error of the same Kind.
func (e *Error) Is(err error) bool {
	var ae *Error
	if errors.As(err, &ae) {
		return e.Kind == ae.Kind
	}
	return false
}

// New creates an error of the given kind. message is an opaque diagnostic
// string, not formatted for end users — C12's mapping to short actionable
// messages happens at the UI boundary, not here.
func New(kind Kind, message string) *Error {
	return &Error{Status: Status{Kind: kind, Message: message}}
}

// NewWithMetadata creates an error of the given kind carrying metadata.
func NewWithMetadata(kind Kind, metadata map[string]string, message string) *Error {
	err := New(kind, message)
	if len(metadata) > 0 {
		err.Metadata = make(map[string]string, len(metadata))
		maps.Copy(err.Metadata, metadata)
	}
	return err
}

// Wrap creates a new error of the given kind with err attached as cause.
// Returns nil if err is nil.
func Wrap(err error, kind Kind, message string) *Error {
	if err == nil {
		return nil
	}
	return New(kind, message).WithCause(err)
}

// From converts a generic error to *Error, leaving an existing *Error
// untouched rather than rewrapping it.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return New(Validation, err.Error())
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	var ae *Error
	if !errors.As(err, &ae) {
		return false
	}
	return ae.Kind == kind
}
