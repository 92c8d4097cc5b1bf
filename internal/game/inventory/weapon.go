// Package inventory provides the static weapon and armor tables for the arena,
// together with their YAML loaders.
package inventory

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// WeaponDef defines the static properties of a weapon.
type WeaponDef struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
	// Damage is the raw damage before armor mitigation.
	Damage int `yaml:"damage"`
	// Range is the melee reach, or the advisory AI targeting range for projectiles.
	Range float64 `yaml:"range"`
	// Cooldown is the number of ticks between attacks.
	Cooldown int `yaml:"cooldown"`
	// Projectile is true for ranged weapons.
	Projectile bool `yaml:"projectile"`
	// Order controls the position of the weapon in selection menus.
	Order int `yaml:"order"`
}

// IsMelee reports whether the weapon resolves its damage immediately.
func (w *WeaponDef) IsMelee() bool {
	return !w.Projectile
}

// Validate checks that the WeaponDef satisfies its invariants.
// Precondition: w is non-nil.
// Postcondition: returns nil iff all fields are valid.
func (w *WeaponDef) Validate() error {
	var errs []error
	if w.ID == "" {
		errs = append(errs, errors.New("ID must not be empty"))
	}
	if w.Name == "" {
		errs = append(errs, errors.New("Name must not be empty"))
	}
	if w.Damage < 0 {
		errs = append(errs, errors.New("Damage must be >= 0"))
	}
	if w.Range <= 0 {
		errs = append(errs, errors.New("Range must be > 0"))
	}
	if w.Cooldown < 0 {
		errs = append(errs, errors.New("Cooldown must be >= 0"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("weapon validation failed: %v", errs)
	}
	return nil
}

// LoadWeapons reads all *.yaml files from dir, parses each as a WeaponDef,
// validates it, and returns the collected slice ordered by Order then ID.
// Precondition: dir is a readable directory path.
// Postcondition: returns all valid WeaponDefs or the first encountered error.
func LoadWeapons(dir string) ([]*WeaponDef, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("LoadWeapons: cannot read directory %q: %w", dir, err)
	}

	var weapons []*WeaponDef
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".yaml" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("LoadWeapons: cannot read file %q: %w", path, err)
		}
		var w WeaponDef
		if err := yaml.Unmarshal(data, &w); err != nil {
			return nil, fmt.Errorf("LoadWeapons: cannot parse file %q: %w", path, err)
		}
		if err := w.Validate(); err != nil {
			return nil, fmt.Errorf("LoadWeapons: invalid weapon in %q: %w", path, err)
		}
		weapons = append(weapons, &w)
	}
	sort.SliceStable(weapons, func(i, j int) bool {
		if weapons[i].Order != weapons[j].Order {
			return weapons[i].Order < weapons[j].Order
		}
		return weapons[i].ID < weapons[j].ID
	})
	return weapons, nil
}
