package error

import (
	"fmt"
	"net/http"
)

// UpstreamError reports a failed call to an external service (scraper, AI provider, media host).
type UpstreamError struct {
	Service string
	Err     error
}

func NewUpstreamError(service string, err error) *UpstreamError {
	return &UpstreamError{Service: service, Err: err}
}

func (err *UpstreamError) Error() string {
	if err.Err == nil {
		return fmt.Sprintf("%s request failed", err.Service)
	}
	return fmt.Sprintf("%s request failed: %v", err.Service, err.Err)
}

func (err *UpstreamError) Unwrap() error {
	return err.Err
}

func (err *UpstreamError) ErrCode() string {
	return "UPSTREAM_ERROR"
}

func (err *UpstreamError) StatusCode() int {
	return http.StatusInternalServerError
}

// PersistenceError reports a failed cache store operation. Writes are rolled back before it is returned.
type PersistenceError struct {
	Op  string
	Err error
}

func NewPersistenceError(op string, err error) *PersistenceError {
	return &PersistenceError{Op: op, Err: err}
}

func (err *PersistenceError) Error() string {
	return fmt.Sprintf("failed to %s: %v", err.Op, err.Err)
}

func (err *PersistenceError) Unwrap() error {
	return err.Err
}

func (err *PersistenceError) ErrCode() string {
	return "PERSISTENCE_ERROR"
}

func (err *PersistenceError) StatusCode() int {
	return http.StatusInternalServerError
}
