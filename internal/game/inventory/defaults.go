package inventory

// DefaultWeapons returns the built-in weapon table.
func DefaultWeapons() []*WeaponDef {
	return []*WeaponDef{
		{ID: "sword", Name: "Sword", Damage: 25, Range: 70, Cooldown: 15, Order: 1},
		{ID: "bow", Name: "Bow", Damage: 20, Range: 500, Cooldown: 25, Projectile: true, Order: 2},
		{ID: "axe", Name: "Axe", Damage: 40, Range: 60, Cooldown: 35, Order: 3},
		{ID: "magic", Name: "Magic", Damage: 30, Range: 400, Cooldown: 20, Projectile: true, Order: 4},
		{ID: "gun", Name: "Gun", Damage: 35, Range: 600, Cooldown: 30, Projectile: true, Order: 5},
	}
}

// DefaultArmors returns the built-in armor table.
func DefaultArmors() []*ArmorDef {
	return []*ArmorDef{
		{ID: "light", Name: "Light Armor", Defense: 0.8, SpeedMult: 1.0, Order: 1},
		{ID: "medium", Name: "Medium Armor", Defense: 0.6, SpeedMult: 0.9, Order: 2},
		{ID: "heavy", Name: "Heavy Armor", Defense: 0.4, SpeedMult: 0.7, Order: 3},
	}
}

// DefaultRegistry returns a Registry holding the built-in tables.
//
// Postcondition: never returns nil.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(DefaultWeapons(), DefaultArmors())
	if err != nil {
		panic("inventory: built-in tables invalid: " + err.Error())
	}
	return r
}
