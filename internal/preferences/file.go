package preferences

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"

	"github.com/MAYANKpandey14/do-it-with-ease/internal/model"
)

// FileStore keeps preferences in a YAML file. Keys missing from the file keep
// their default values; a missing file yields the defaults.
type FileStore struct {
	Path string
}

var _ Store = FileStore{}

func (f FileStore) Load(_ context.Context) (model.Preferences, error) {
	prefs := model.DefaultPreferences()

	data, err := os.ReadFile(f.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return prefs, nil
	}
	if err != nil {
		return model.Preferences{}, fmt.Errorf("read preferences: %w", err)
	}

	if err := yaml.Unmarshal(data, &prefs); err != nil {
		return model.Preferences{}, fmt.Errorf("parse preferences %s: %w", f.Path, err)
	}
	return prefs, nil
}

func (f FileStore) Save(_ context.Context, prefs model.Preferences) (model.Preferences, error) {
	data, err := yaml.Marshal(prefs)
	if err != nil {
		return model.Preferences{}, fmt.Errorf("encode preferences: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(f.Path), 0o755); err != nil {
		return model.Preferences{}, fmt.Errorf("create preferences dir: %w", err)
	}
	tmp := f.Path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return model.Preferences{}, fmt.Errorf("write preferences: %w", err)
	}
	if err := os.Rename(tmp, f.Path); err != nil {
		return model.Preferences{}, fmt.Errorf("replace preferences: %w", err)
	}
	return prefs, nil
}
