package audio

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

type presetMetaJSON struct {
	Name string `json:"name"`
}
type presetMetaListJSON struct {
	Items []presetMetaJSON `json:"items"`
}

// presetManager reads patches from dir: _list.json names them and each one
// lives in <name>.json.
type presetManager struct {
	sync.Mutex
	dir   string
	names []string // nil until loaded
}

func newPresetManager(dir string) *presetManager {
	return &presetManager{
		dir: dir,
	}
}

func (pm *presetManager) getList() ([]string, error) {
	pm.Lock()
	defer pm.Unlock()
	if pm.names == nil {
		if err := pm.loadList(); err != nil {
			return nil, err
		}
	}
	return pm.names, nil
}

func (pm *presetManager) loadList() error {
	path := filepath.Join(pm.dir, "_list.json")
	bytes, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	metaListJSON := &presetMetaListJSON{}
	if err := json.Unmarshal(bytes, metaListJSON); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	names := make([]string, len(metaListJSON.Items))
	for i, item := range metaListJSON.Items {
		names[i] = item.Name
	}
	pm.names = names
	return nil
}

func (pm *presetManager) read(name string) ([]byte, error) {
	if name == "" || filepath.Base(name) != name {
		return nil, fmt.Errorf("preset name %q: %w", name, ErrInvalidCommand)
	}
	return os.ReadFile(filepath.Join(pm.dir, name+".json"))
}

// PresetNames lists the presets of the configured directory.
func (e *Engine) PresetNames() ([]string, error) {
	return e.presets.getList()
}

// LoadPreset applies the named preset.
func (e *Engine) LoadPreset(name string) error {
	bytes, err := e.presets.read(name)
	if err != nil {
		return err
	}
	if err := e.ApplyJSON(bytes); err != nil {
		return fmt.Errorf("preset %s: %w", name, err)
	}
	return nil
}
