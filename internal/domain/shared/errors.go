package shared

import (
	"fmt"
	"strings"
	"time"
)

// ErrorCode is the canonical failure code surfaced to API clients
type ErrorCode string

const (
	CodeInvalidRequest         ErrorCode = "INVALID_REQUEST"
	CodeNotFound               ErrorCode = "NOT_FOUND"
	CodeNotOwner               ErrorCode = "NOT_OWNER"
	CodeTechRequirements       ErrorCode = "TECH_REQUIREMENTS"
	CodeInsufficientArea       ErrorCode = "INSUFFICIENT_AREA"
	CodeInsufficientPopulation ErrorCode = "INSUFFICIENT_POPULATION"
	CodeShipyardRequired       ErrorCode = "SHIPYARD_REQUIRED"
	CodeNoCapacity             ErrorCode = "NO_CAPACITY"
	CodeInsufficientFunds      ErrorCode = "INSUFFICIENT_FUNDS"
	CodeInsufficientEnergy     ErrorCode = "INSUFFICIENT_ENERGY"
	CodeAlreadyInProgress      ErrorCode = "ALREADY_IN_PROGRESS"
	CodeDBError                ErrorCode = "DB_ERROR"
)

// DomainError is the base error type for all domain errors
type DomainError struct {
	Code    ErrorCode
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func NewDomainError(code ErrorCode, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

// InvalidRequestError covers malformed input, recoverable by caller correction
type InvalidRequestError struct {
	*DomainError
}

func NewInvalidRequestError(message string) *InvalidRequestError {
	return &InvalidRequestError{DomainError: NewDomainError(CodeInvalidRequest, message)}
}

// NotFoundError covers missing empires, bases, catalog entries and queue items
type NotFoundError struct {
	*DomainError
}

func NewNotFoundError(message string) *NotFoundError {
	return &NotFoundError{DomainError: NewDomainError(CodeNotFound, message)}
}

// NotOwnerError is returned when a base exists but belongs to another empire
type NotOwnerError struct {
	*DomainError
	Coord Coord
}

func NewNotOwnerError(coord Coord) *NotOwnerError {
	return &NotOwnerError{
		DomainError: NewDomainError(CodeNotOwner, fmt.Sprintf("base %s is not owned by this empire", coord)),
		Coord:       coord,
	}
}

// UnmetPrereq describes one unmet tech prerequisite
type UnmetPrereq struct {
	TechKey  string `json:"techKey"`
	Required int    `json:"required"`
	Current  int    `json:"current"`
}

// TechRequirementsError carries the full list of unmet tech prerequisites
type TechRequirementsError struct {
	*DomainError
	Unmet []UnmetPrereq
}

func NewTechRequirementsError(unmet []UnmetPrereq) *TechRequirementsError {
	names := make([]string, 0, len(unmet))
	for _, u := range unmet {
		names = append(names, fmt.Sprintf("%s>=%d (have %d)", u.TechKey, u.Required, u.Current))
	}
	return &TechRequirementsError{
		DomainError: NewDomainError(CodeTechRequirements,
			fmt.Sprintf("unmet tech requirements: %s", strings.Join(names, ", "))),
		Unmet: unmet,
	}
}

// CapacityError covers the area/population/shipyard/rate admission checks
type CapacityError struct {
	*DomainError
	Required  int
	Available int
}

func NewCapacityError(code ErrorCode, message string, required, available int) *CapacityError {
	return &CapacityError{
		DomainError: NewDomainError(code, message),
		Required:    required,
		Available:   available,
	}
}

// InsufficientFundsError is returned by immediate-start queues when the
// empire cannot pay at admission time
type InsufficientFundsError struct {
	*DomainError
	Required  int64
	Available int64
}

func NewInsufficientFundsError(required, available int64) *InsufficientFundsError {
	return &InsufficientFundsError{
		DomainError: NewDomainError(CodeInsufficientFunds,
			fmt.Sprintf("insufficient credits: need %d, have %d", required, available)),
		Required:  required,
		Available: available,
	}
}

// InsufficientEnergyError carries the full projection breakdown from the
// energy feasibility gate
type InsufficientEnergyError struct {
	*DomainError
	Produced        int `json:"produced"`
	Consumed        int `json:"consumed"`
	Balance         int `json:"balance"`
	Reserved        int `json:"reservedNegative"`
	Delta           int `json:"delta"`
	ProjectedEnergy int `json:"projectedEnergy"`
}

func NewInsufficientEnergyError(produced, consumed, balance, reserved, delta, projected int) *InsufficientEnergyError {
	return &InsufficientEnergyError{
		DomainError: NewDomainError(CodeInsufficientEnergy,
			fmt.Sprintf("insufficient energy: projected %d after delta %d (balance %d, reserved %d)",
				projected, delta, balance, reserved)),
		Produced:        produced,
		Consumed:        consumed,
		Balance:         balance,
		Reserved:        reserved,
		Delta:           delta,
		ProjectedEnergy: projected,
	}
}

// ExistingEntrySnapshot is the terminal-safe view of the queue entry that won
// an identity-key race, returned with ALREADY_IN_PROGRESS
type ExistingEntrySnapshot struct {
	ID         string     `json:"_id"`
	State      string     `json:"state"`
	StartedAt  *time.Time `json:"startedAt"`
	EtaSeconds int64      `json:"etaSeconds"`
	CatalogKey string     `json:"catalogKey"`
}

// AlreadyInProgressError is the idempotency-guard outcome: a live queue entry
// with the same identity key already exists. Semantically a no-op, not a fault.
type AlreadyInProgressError struct {
	*DomainError
	QueueType   string
	IdentityKey string
	CatalogKey  string
	Existing    ExistingEntrySnapshot
}

func NewAlreadyInProgressError(queueType, identityKey, catalogKey string, existing ExistingEntrySnapshot) *AlreadyInProgressError {
	return &AlreadyInProgressError{
		DomainError: NewDomainError(CodeAlreadyInProgress,
			fmt.Sprintf("%s %s is already in progress", queueType, catalogKey)),
		QueueType:   queueType,
		IdentityKey: identityKey,
		CatalogKey:  catalogKey,
		Existing:    existing,
	}
}

// StorageError wraps unexpected persistence faults without leaking driver internals
type StorageError struct {
	*DomainError
	Cause error
}

func NewStorageError(cause error) *StorageError {
	return &StorageError{
		DomainError: NewDomainError(CodeDBError, "internal storage error"),
		Cause:       cause,
	}
}

func (e *StorageError) Unwrap() error {
	return e.Cause
}

// CodeOf extracts the canonical error code from any domain error, falling
// back to DB_ERROR for unrecognized faults
func CodeOf(err error) ErrorCode {
	switch e := err.(type) {
	case *InvalidRequestError:
		return e.Code
	case *NotFoundError:
		return e.Code
	case *NotOwnerError:
		return e.Code
	case *TechRequirementsError:
		return e.Code
	case *CapacityError:
		return e.Code
	case *InsufficientFundsError:
		return e.Code
	case *InsufficientEnergyError:
		return e.Code
	case *AlreadyInProgressError:
		return e.Code
	case *StorageError:
		return e.Code
	case *DomainError:
		return e.Code
	}
	return CodeDBError
}
