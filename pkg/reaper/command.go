package reaper

import (
	"net/url"
	"strings"
)

// Command is one REAPER web interface command in its wire form, with every
// user-supplied segment already percent-encoded.
type Command string

// Built-in REAPER action ids used by the setlist application.
const (
	ActionGoToStart    = "40042"
	ActionGoToEnd      = "40043"
	ActionNewTab       = "40859"
	ActionCloseAllTabs = "40860"
)

const (
	prefixGetExtState        = "GET/EXTSTATE/"
	prefixSetExtState        = "SET/EXTSTATE/"
	prefixSetExtStatePersist = "SET/EXTSTATEPERSIST/"
	commandTransport         = "TRANSPORT"
	commandSeparator         = ";"
)

// GetExtState builds GET/EXTSTATE/{section}/{key}.
func GetExtState(section, key string) Command {
	return Command(prefixGetExtState + EscapeSegment(section) + "/" + EscapeSegment(key))
}

// SetExtState builds SET/EXTSTATEPERSIST/{section}/{key}/{value} when persist
// is true and SET/EXTSTATE/{section}/{key}/{value} otherwise.
func SetExtState(section, key, value string, persist bool) Command {
	prefix := prefixSetExtState
	if persist {
		prefix = prefixSetExtStatePersist
	}
	return Command(prefix + EscapeSegment(section) + "/" + EscapeSegment(key) + "/" + EscapeSegment(value))
}

// Transport builds the TRANSPORT query.
func Transport() Command {
	return Command(commandTransport)
}

// Action builds a command that triggers the action with the given id, either a
// numeric command id or a named one such as _RS1234.
func Action(id string) Command {
	return Command(EscapeSegment(strings.TrimSpace(id)))
}

// EscapeSegment percent-encodes s so it survives as a single path segment and
// cannot be mistaken for the command separator. Spaces become %20.
func EscapeSegment(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// UnescapeSegment reverses EscapeSegment.
func UnescapeSegment(s string) (string, error) {
	return url.PathUnescape(s)
}

func (c Command) kind() string {
	s := string(c)
	switch {
	case strings.HasPrefix(s, prefixGetExtState):
		return "get_extstate"
	case strings.HasPrefix(s, prefixSetExtStatePersist):
		return "set_extstate_persist"
	case strings.HasPrefix(s, prefixSetExtState):
		return "set_extstate"
	case s == commandTransport:
		return "transport"
	default:
		return "action"
	}
}

func joinCommands(commands []Command) string {
	parts := make([]string, len(commands))
	for i, c := range commands {
		parts[i] = string(c)
	}
	return strings.Join(parts, commandSeparator)
}
