package reaper_sdk

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/reaper-setlist/reaper_sdk_go/pkg/kvstore"
	"github.com/reaper-setlist/reaper_sdk_go/pkg/reaper"
)

// Seed maps section names to the records stored in them, keyed by id.
type Seed map[string]map[string]kvstore.Record

// LoadSeed reads a seed file such as
//
//	{"Songs": {"abc-123": {"name": "Tune A", "length": 180}}}
func LoadSeed(path string) (Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var seed Seed
	if err := json.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return seed, nil
}

// Apply writes every record through a kvstore, so the section indexes are
// maintained. Records get their key as "id".
func (s Seed) Apply(ch reaper.Channel) error {
	ctx := context.Background()
	sections := make([]string, 0, len(s))
	for name := range s {
		sections = append(sections, name)
	}
	sort.Strings(sections)

	for _, name := range sections {
		st, err := kvstore.New[kvstore.Record](ch, name)
		if err != nil {
			return err
		}
		records := s[name]
		keys := make([]string, 0, len(records))
		for k := range records {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if err := st.Update(ctx, k, records[k].WithID(k)); err != nil {
				return fmt.Errorf("section %s key %s: %w", name, k, err)
			}
		}
	}
	return nil
}
