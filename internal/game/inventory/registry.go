package inventory

import (
	"errors"
	"fmt"
)

// ErrUnknownWeapon is returned when a weapon ID is not registered.
var ErrUnknownWeapon = errors.New("inventory: unknown weapon")

// ErrUnknownArmor is returned when an armor ID is not registered.
var ErrUnknownArmor = errors.New("inventory: unknown armor")

// Registry holds all weapon and armor definitions indexed by ID.
//
// Invariant: a Registry is never mutated after NewRegistry returns; it is safe
// for concurrent readers.
type Registry struct {
	weapons     map[string]*WeaponDef
	armors      map[string]*ArmorDef
	weaponOrder []*WeaponDef
	armorOrder  []*ArmorDef
}

// NewRegistry builds an immutable Registry from the given definitions.
// Definitions are copied so later changes by the caller are not observed.
//
// Precondition: every element must be non-nil.
// Postcondition: returns an error if any definition fails Validate, any ID is
// duplicated, or either list is empty.
func NewRegistry(weapons []*WeaponDef, armors []*ArmorDef) (*Registry, error) {
	if len(weapons) == 0 {
		return nil, errors.New("inventory: NewRegistry: at least one weapon is required")
	}
	if len(armors) == 0 {
		return nil, errors.New("inventory: NewRegistry: at least one armor is required")
	}
	r := &Registry{
		weapons: make(map[string]*WeaponDef, len(weapons)),
		armors:  make(map[string]*ArmorDef, len(armors)),
	}
	for _, w := range weapons {
		if err := w.Validate(); err != nil {
			return nil, fmt.Errorf("inventory: NewRegistry: weapon %q: %w", w.ID, err)
		}
		if _, exists := r.weapons[w.ID]; exists {
			return nil, fmt.Errorf("inventory: NewRegistry: weapon ID %q already registered", w.ID)
		}
		cp := *w
		r.weapons[w.ID] = &cp
		r.weaponOrder = append(r.weaponOrder, &cp)
	}
	for _, a := range armors {
		if err := a.Validate(); err != nil {
			return nil, fmt.Errorf("inventory: NewRegistry: armor %q: %w", a.ID, err)
		}
		if _, exists := r.armors[a.ID]; exists {
			return nil, fmt.Errorf("inventory: NewRegistry: armor ID %q already registered", a.ID)
		}
		cp := *a
		r.armors[a.ID] = &cp
		r.armorOrder = append(r.armorOrder, &cp)
	}
	return r, nil
}

// Weapon returns the WeaponDef for the given id and whether it was found.
//
// Postcondition: ok is true iff the id is registered.
func (r *Registry) Weapon(id string) (*WeaponDef, bool) {
	w, ok := r.weapons[id]
	return w, ok
}

// Armor returns the ArmorDef for the given id and whether it was found.
//
// Postcondition: ok is true iff the id is registered.
func (r *Registry) Armor(id string) (*ArmorDef, bool) {
	a, ok := r.armors[id]
	return a, ok
}

// Weapons returns all weapons in declaration order.
//
// Postcondition: the returned slice is a fresh copy.
func (r *Registry) Weapons() []*WeaponDef {
	out := make([]*WeaponDef, len(r.weaponOrder))
	copy(out, r.weaponOrder)
	return out
}

// Armors returns all armors in declaration order.
//
// Postcondition: the returned slice is a fresh copy.
func (r *Registry) Armors() []*ArmorDef {
	out := make([]*ArmorDef, len(r.armorOrder))
	copy(out, r.armorOrder)
	return out
}

// Loadout resolves a weapon and armor pair.
//
// Postcondition: returns ErrUnknownWeapon or ErrUnknownArmor (wrapped) when
// either ID is not registered.
func (r *Registry) Loadout(weaponID, armorID string) (*WeaponDef, *ArmorDef, error) {
	w, ok := r.Weapon(weaponID)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownWeapon, weaponID)
	}
	a, ok := r.Armor(armorID)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownArmor, armorID)
	}
	return w, a, nil
}

// LoadRegistry builds a Registry from YAML content directories. An empty
// directory path selects the built-in table for that kind.
//
// Postcondition: returns a valid Registry or a non-nil error.
func LoadRegistry(weaponsDir, armorDir string) (*Registry, error) {
	weapons := DefaultWeapons()
	if weaponsDir != "" {
		loaded, err := LoadWeapons(weaponsDir)
		if err != nil {
			return nil, err
		}
		weapons = loaded
	}
	armors := DefaultArmors()
	if armorDir != "" {
		loaded, err := LoadArmors(armorDir)
		if err != nil {
			return nil, err
		}
		armors = loaded
	}
	return NewRegistry(weapons, armors)
}
