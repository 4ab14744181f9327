package core

import (
	"errors"
)

var (
	// ErrContract is matched by every assertion failure raised through Assert.
	ErrContract = errors.New("contract violation")
	// ErrStageDependency is raised when a stage is executed while its parent was not rendered.
	ErrStageDependency = errors.New("stage dependency not rendered")
	ErrUnknown         = errors.New("unknown")
)

// ContractError is the panic value of a failed assertion.
type ContractError struct {
	Err error
	Msg string
}

func (e *ContractError) Error() string {
	if e.Err != nil && e.Err != ErrContract {
		return ErrContract.Error() + ": " + e.Err.Error() + ": " + e.Msg
	}
	return ErrContract.Error() + ": " + e.Msg
}

func (e *ContractError) Unwrap() []error {
	if e.Err == nil || e.Err == ErrContract {
		return []error{ErrContract}
	}
	return []error{ErrContract, e.Err}
}
