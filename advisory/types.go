package advisory

import (
	"golang.org/x/exp/slices"
)

// Entry is a loaded advisory: its identifier and the raw product references it
// cites (CPE URIs for CVE feeds, category/name atoms for GLSAs).
type Entry struct {
	id       string
	products []string
}

func newEntry(id string, products []string) Entry {
	return Entry{
		id:       id,
		products: slices.Clip(products),
	}
}

func (e Entry) ID() string {
	return e.id
}

func (e Entry) Products() []string {
	return slices.Clone(e.products)
}
