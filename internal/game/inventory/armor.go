package inventory

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// ArmorDef defines the static properties of an armor type.
type ArmorDef struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
	// Defense multiplies incoming damage; lower is tougher.
	Defense float64 `yaml:"defense"`
	// SpeedMult multiplies the wearer's base speed.
	SpeedMult float64 `yaml:"speed_mult"`
	Order     int     `yaml:"order"`
}

// Validate reports an error if the ArmorDef is missing required fields or contains illegal values.
// Precondition: def is non-nil.
// Postcondition: Returns nil iff the def is well-formed.
func (a *ArmorDef) Validate() error {
	var errs []error
	if a.ID == "" {
		errs = append(errs, errors.New("id must not be empty"))
	}
	if a.Name == "" {
		errs = append(errs, errors.New("name must not be empty"))
	}
	if a.Defense <= 0 || a.Defense > 1 {
		errs = append(errs, fmt.Errorf("defense must be in (0, 1], got %v", a.Defense))
	}
	if a.SpeedMult <= 0 || a.SpeedMult > 1 {
		errs = append(errs, fmt.Errorf("speed_mult must be in (0, 1], got %v", a.SpeedMult))
	}
	if len(errs) > 0 {
		return fmt.Errorf("armor validation failed: %v", errs)
	}
	return nil
}

// LoadArmors reads all .yaml files in dir and returns parsed ArmorDef slice ordered by Order then ID.
// Precondition: dir must be a readable directory.
// Postcondition: Returns non-nil slice and nil error on success; all returned defs pass Validate.
func LoadArmors(dir string) ([]*ArmorDef, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("LoadArmors: cannot read directory %q: %w", dir, err)
	}

	armors := []*ArmorDef{}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".yaml" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("LoadArmors: cannot read file %q: %w", path, err)
		}
		var a ArmorDef
		if err := yaml.Unmarshal(data, &a); err != nil {
			return nil, fmt.Errorf("LoadArmors: cannot parse file %q: %w", path, err)
		}
		if err := a.Validate(); err != nil {
			return nil, fmt.Errorf("LoadArmors: invalid armor in %q: %w", path, err)
		}
		armors = append(armors, &a)
	}
	sort.SliceStable(armors, func(i, j int) bool {
		if armors[i].Order != armors[j].Order {
			return armors[i].Order < armors[j].Order
		}
		return armors[i].ID < armors[j].ID
	})
	return armors, nil
}
