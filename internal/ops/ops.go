// Package ops implements the three agent operations: download, delete and
// run. Every operation resolves its path through the policy engine before
// touching the filesystem; validation and policy failures short-circuit
// with no side effects.
package ops

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/Sv443/WHDL/internal/policy"
)

// OpError is an operation failure with the HTTP status the transport
// should answer with.
type OpError struct {
	Status  int
	Message string
}

func (e *OpError) Error() string {
	return e.Message
}

func badRequest(msg string) *OpError {
	return &OpError{Status: http.StatusBadRequest, Message: msg}
}

func internal(err error) *OpError {
	return &OpError{Status: http.StatusInternalServerError, Message: err.Error()}
}

// fromPolicy maps a policy rejection to its HTTP shape: missing field 400,
// disallowed name or path 403.
func fromPolicy(err error) *OpError {
	switch {
	case errors.Is(err, policy.ErrMissingPath):
		return &OpError{Status: http.StatusBadRequest, Message: "Path required"}
	case errors.Is(err, policy.ErrNameRejected):
		return &OpError{Status: http.StatusForbidden, Message: "File name not allowed"}
	case errors.Is(err, policy.ErrPathRejected):
		return &OpError{Status: http.StatusForbidden, Message: "Path not allowed"}
	}
	return internal(err)
}

// Options tunes operation behavior.
type Options struct {
	// EarlyReply is how long a download may run before the caller gets an
	// early success while the fetch continues in the background.
	EarlyReply time.Duration

	// LogCreatedFiles enables a log line for every completed download.
	LogCreatedFiles bool

	// LogRequests enables a log line for every successful script run.
	LogRequests bool
}

// Ops executes agent operations under a shared path policy. Safe for
// concurrent use: the policy is read-only and each call works on its own
// state.
type Ops struct {
	policy *policy.Policy
	client *http.Client
	opts   Options

	bg sync.WaitGroup // outstanding background downloads
}

// New creates an Ops bound to the given policy.
func New(p *policy.Policy, opts Options) *Ops {
	if opts.EarlyReply <= 0 {
		opts.EarlyReply = 25 * time.Second
	}
	return &Ops{
		policy: p,
		// No overall timeout: a download that outlives the early-reply
		// window keeps streaming in the background.
		client: &http.Client{},
		opts:   opts,
	}
}

// Drain waits up to timeout for outstanding background downloads to
// finish. Returns false if the timeout elapsed first.
func (o *Ops) Drain(timeout time.Duration) bool {
	done := make(chan struct{})
	go func() {
		o.bg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return true
	case <-time.After(timeout):
		return false
	}
}
