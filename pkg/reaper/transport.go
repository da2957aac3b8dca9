package reaper

import (
	"context"
	"fmt"
	"time"

	"github.com/reaper-setlist/reaper_sdk_go/internal/reaperapi"
)

// PlayState is the transport state reported by TRANSPORT.
type PlayState int

const (
	PlayStateStopped      PlayState = 0
	PlayStatePlaying      PlayState = 1
	PlayStatePaused       PlayState = 2
	PlayStateRecording    PlayState = 5
	PlayStateRecordPaused PlayState = 6
)

func (s PlayState) String() string {
	switch s {
	case PlayStateStopped:
		return "stopped"
	case PlayStatePlaying:
		return "playing"
	case PlayStatePaused:
		return "paused"
	case PlayStateRecording:
		return "recording"
	case PlayStateRecordPaused:
		return "record-paused"
	default:
		return fmt.Sprintf("PlayState(%d)", int(s))
	}
}

// TransportState is the decoded TRANSPORT reply.
type TransportState struct {
	PlayState       PlayState
	PositionSeconds float64
	Repeat          bool
	Position        string
	PositionBeats   string
}

// ReadTransport queries the transport of the active project.
func ReadTransport(ctx context.Context, ch Channel) (*TransportState, error) {
	body, err := ch.ExecuteCommand(ctx, Transport())
	if err != nil {
		return nil, err
	}
	tr, err := reaperapi.ParseTransport(body)
	if err != nil {
		return nil, fmt.Errorf("reaper: decode transport: %w", err)
	}
	return &TransportState{
		PlayState:       PlayState(tr.PlayState),
		PositionSeconds: tr.Position,
		Repeat:          tr.Repeat,
		Position:        tr.PositionString,
		PositionBeats:   tr.PositionBeats,
	}, nil
}

// GoToStart moves the edit cursor to the project start.
func GoToStart(ctx context.Context, ch Channel) error {
	_, err := ch.ExecuteCommand(ctx, Action(ActionGoToStart))
	return err
}

// GoToEnd moves the edit cursor to the project end.
func GoToEnd(ctx context.Context, ch Channel) error {
	_, err := ch.ExecuteCommand(ctx, Action(ActionGoToEnd))
	return err
}

// NewTab opens a new project tab.
func NewTab(ctx context.Context, ch Channel) error {
	_, err := ch.ExecuteCommand(ctx, Action(ActionNewTab))
	return err
}

// CloseAllTabs closes every open project tab.
func CloseAllTabs(ctx context.Context, ch Channel) error {
	_, err := ch.ExecuteCommand(ctx, Action(ActionCloseAllTabs))
	return err
}

// ProjectDuration moves the cursor to the project end and reports its position,
// which is the length of the active project.
func ProjectDuration(ctx context.Context, ch Channel) (time.Duration, error) {
	if err := GoToEnd(ctx, ch); err != nil {
		return 0, err
	}
	tr, err := ReadTransport(ctx, ch)
	if err != nil {
		return 0, err
	}
	return time.Duration(tr.PositionSeconds * float64(time.Second)), nil
}
