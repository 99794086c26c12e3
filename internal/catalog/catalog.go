package catalog

import "slices"

// Catalog holds the fixed vocabularies of the app: the word list used to
// build join codes, the unit enum for items, the category list and the
// avatar glyphs offered at login. A yaml file can override any of them.
type Catalog struct {
	CodeWords  []string
	Units      []string
	Categories []string
	Avatars    []string
}

// DefaultCategory is the catch-all category assigned when none is given.
const DefaultCategory = "Autre"

// DefaultUnit is the unit assigned when none is given.
const DefaultUnit = "pcs"

// Default returns the built-in catalog, matching the vocabulary the web
// client ships with.
func Default() *Catalog {
	return &Catalog{
		CodeWords: []string{
			"SOLEIL", "LUNE", "ETOILE", "NUAGE", "VENT", "PLUIE",
			"NEIGE", "MER", "FORET", "COLOC", "MAISON", "CUISINE",
		},
		Units: []string{
			"pcs", "kg", "g", "L", "cL", "mL",
			"barquette", "boîte", "sachet", "bouteille",
		},
		Categories: []string{
			"Fruits & Légumes", "Produits frais", "Épicerie",
			"Boissons", "Hygiène", "Entretien", DefaultCategory,
		},
		Avatars: []string{"🧑", "👩", "👨", "🧔", "👵", "👴", "🐱", "🐶"},
	}
}

// ValidUnit reports whether unit belongs to the enumerated set.
func (c *Catalog) ValidUnit(unit string) bool {
	return slices.Contains(c.Units, unit)
}
