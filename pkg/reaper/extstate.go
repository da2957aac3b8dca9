package reaper

import (
	"context"

	"github.com/reaper-setlist/reaper_sdk_go/internal/reaperapi"
)

// ReadExtState returns the value stored under section/key. An absent key and
// an empty value both yield "".
func ReadExtState(ctx context.Context, ch Channel, section, key string) (string, error) {
	body, err := ch.ExecuteCommand(ctx, GetExtState(section, key))
	if err != nil {
		return "", err
	}
	return ParseExtStateValue(body)
}

// ReadExtStates reads several keys of one section in a single request.
func ReadExtStates(ctx context.Context, ch Channel, section string, keys []string) ([]string, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	commands := make([]Command, len(keys))
	for i, k := range keys {
		commands[i] = GetExtState(section, k)
	}
	lines, err := ch.ExecuteCommands(ctx, commands)
	if err != nil {
		return nil, err
	}
	values := make([]string, len(lines))
	for i, line := range lines {
		v, err := ParseExtStateValue(line)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}

// WriteExtState stores value under section/key. Writing "" clears the key.
func WriteExtState(ctx context.Context, ch Channel, section, key, value string, persist bool) error {
	_, err := ch.ExecuteCommand(ctx, SetExtState(section, key, value, persist))
	return err
}

// ParseExtStateValue extracts the value column of a GET/EXTSTATE reply.
func ParseExtStateValue(reply string) (string, error) {
	st, err := reaperapi.ParseExtState(reply)
	if err != nil {
		return "", err
	}
	return st.Value, nil
}
