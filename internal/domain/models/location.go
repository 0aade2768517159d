package models

// Port is a leaf location identified by its code (e.g. "CNSGH").
// ParentSlug references the Region that contains it; empty for roots.
type Port struct {
	Code       string
	Name       string
	ParentSlug string
}

// Region groups ports and other regions under a slug
// (e.g. "north_europe_main"). Regions may nest through ParentSlug.
type Region struct {
	Slug       string
	Name       string
	ParentSlug string
}
