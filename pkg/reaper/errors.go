package reaper

import (
	"errors"
	"fmt"
)

var (
	// ErrResultCount is returned when a batch reply does not hold one line per
	// command.
	ErrResultCount = errors.New("reaper: reply line count does not match command count")
	// ErrRequestTooLong is returned when a request exceeds the configured
	// maximum length. Nothing is sent in that case.
	ErrRequestTooLong = errors.New("reaper: request exceeds maximum length")
	// ErrScriptActionUnset is returned when no script action id is stored.
	ErrScriptActionUnset = errors.New("reaper: script action id is not set")
)

// ChannelError wraps a failed command exchange. Err is the transport error,
// an *httpx.HTTPError for non-success replies, or one of the sentinels above.
type ChannelError struct {
	// Commands is the number of commands in the failed request.
	Commands int
	// First is the first command of the request, for diagnostics.
	First Command
	Err   error
}

func (e *ChannelError) Error() string {
	if e.Commands == 1 {
		return fmt.Sprintf("reaper: command %.80q failed: %v", string(e.First), e.Err)
	}
	return fmt.Sprintf("reaper: batch of %d commands (first %.80q) failed: %v", e.Commands, string(e.First), e.Err)
}

func (e *ChannelError) Unwrap() error { return e.Err }

func newChannelError(commands []Command, err error) *ChannelError {
	ce := &ChannelError{Commands: len(commands), Err: err}
	if len(commands) > 0 {
		ce.First = commands[0]
	}
	return ce
}
