package reaper

import (
	"context"
	"strings"

	"github.com/reaper-setlist/reaper_sdk_go/internal/lazy"
)

// DefaultSettingsSection is the ExtState section shared with the setlist
// scripts running inside REAPER.
const DefaultSettingsSection = "reaper-setlist"

const (
	keyFolderPath     = "folderPath"
	keyScriptActionID = "scriptActionId"
)

// Settings reads and writes the single-value settings of the setlist
// application. The script action id is cached after the first successful
// lookup. SetScriptActionID replaces the cached id and ResetCache drops it.
type Settings struct {
	ch       Channel
	section  string
	actionID *lazy.Cell[string]
}

// NewSettings returns a Settings accessor for section. An empty section
// selects DefaultSettingsSection.
func NewSettings(ch Channel, section string) *Settings {
	if strings.TrimSpace(section) == "" {
		section = DefaultSettingsSection
	}
	s := &Settings{ch: ch, section: section}
	s.actionID = lazy.New(s.fetchScriptActionID)
	return s
}

// FolderPath returns the project folder configured in REAPER.
func (s *Settings) FolderPath(ctx context.Context) (string, error) {
	return ReadExtState(ctx, s.ch, s.section, keyFolderPath)
}

// SetFolderPath persists the project folder.
func (s *Settings) SetFolderPath(ctx context.Context, path string) error {
	return WriteExtState(ctx, s.ch, s.section, keyFolderPath, path, true)
}

// ScriptActionID returns the registered action id of the setlist script.
func (s *Settings) ScriptActionID(ctx context.Context) (string, error) {
	return s.actionID.Get(ctx)
}

// SetScriptActionID persists the script action id and caches it. An empty id
// clears the setting.
func (s *Settings) SetScriptActionID(ctx context.Context, id string) error {
	if err := WriteExtState(ctx, s.ch, s.section, keyScriptActionID, id, true); err != nil {
		return err
	}
	if strings.TrimSpace(id) == "" {
		s.actionID.Reset()
		return nil
	}
	s.actionID.Set(id)
	return nil
}

// RunScript triggers the setlist script through its action id.
func (s *Settings) RunScript(ctx context.Context) error {
	id, err := s.ScriptActionID(ctx)
	if err != nil {
		return err
	}
	_, err = s.ch.ExecuteCommand(ctx, Action(id))
	return err
}

// ResetCache forgets the cached script action id.
func (s *Settings) ResetCache() {
	s.actionID.Reset()
}

func (s *Settings) fetchScriptActionID(ctx context.Context) (string, error) {
	id, err := ReadExtState(ctx, s.ch, s.section, keyScriptActionID)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(id) == "" {
		return "", ErrScriptActionUnset
	}
	return id, nil
}
