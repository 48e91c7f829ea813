// Package loader reads the generated world catalogs (JSON artifacts of
// the world generator) and compiles them into validated immutable
// definitions. Structural and semantic defects are caught here, at load
// time, so the evaluators never see a malformed catalog.
package loader

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/tessera-games/lingoquest/types"
)

// Catalog artifact file names, as written by the world generator.
const (
	skillsFile      = "skills.json"
	triggersFile    = "triggers.json"
	questsFile      = "quests.json"
	progressionFile = "level_progression.json"
	itemsFile       = "items.json"
	mapFile         = "map.json"
	npcsFile        = "npcs.json"
)

// defaultLevelOrder is used when the progression artifact does not
// carry its own ladder.
var defaultLevelOrder = []types.LevelID{"A0", "A0+", "A1", "A1+", "A2"}

// Load reads the catalog artifacts from dir, compiles them into typed
// definitions, and validates references. Validation warnings are
// logged; validation errors abort the load.
func Load(dir string, log *slog.Logger) (*types.Catalog, error) {
	if log == nil {
		log = slog.Default()
	}

	var raw rawCatalog
	for _, f := range []struct {
		name     string
		target   any
		required bool
	}{
		{skillsFile, &raw.skills, true},
		{triggersFile, &raw.triggers, true},
		{questsFile, &raw.quests, true},
		{progressionFile, &raw.progression, true},
		{itemsFile, &raw.items, false},
		{mapFile, &raw.worldMap, false},
		{npcsFile, &raw.npcs, false},
	} {
		if err := readJSON(filepath.Join(dir, f.name), f.target); err != nil {
			if os.IsNotExist(err) && !f.required {
				log.Warn("optional catalog artifact missing", "file", f.name)
				continue
			}
			return nil, fmt.Errorf("loading %s: %w", f.name, err)
		}
	}

	cat, err := compile(&raw)
	if err != nil {
		return nil, fmt.Errorf("compiling catalogs: %w", err)
	}

	ve := validate(cat)
	for _, w := range ve.Warnings {
		log.Warn("catalog validation", "warning", w)
	}
	if len(ve.Errors) > 0 {
		return nil, ve
	}

	return cat, nil
}

func readJSON(path string, target any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}
	return nil
}
