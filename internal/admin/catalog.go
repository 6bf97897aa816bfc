package admin

import "github.com/teralab/backoffice/internal/config"

// Benefit is one grantable entry of the benefit catalog.
type Benefit struct {
	ID          int32  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// BenefitCatalog is the locale-keyed benefit lookup. It is built once
// at startup from config and never mutated afterwards.
type BenefitCatalog struct {
	byLocale map[string][]Benefit
}

// NewBenefitCatalog builds a catalog from config entries.
func NewBenefitCatalog(entries map[string][]config.BenefitEntry) *BenefitCatalog {
	byLocale := make(map[string][]Benefit, len(entries))
	for locale, list := range entries {
		benefits := make([]Benefit, 0, len(list))
		for _, e := range list {
			benefits = append(benefits, Benefit{ID: e.ID, Name: e.Name, Description: e.Description})
		}
		byLocale[locale] = benefits
	}
	return &BenefitCatalog{byLocale: byLocale}
}

// ForLocale returns the benefits of a locale. The returned slice is a
// copy; callers may not reach the catalog's own storage through it.
func (c *BenefitCatalog) ForLocale(locale string) []Benefit {
	list := c.byLocale[locale]
	out := make([]Benefit, len(list))
	copy(out, list)
	return out
}

// Known reports whether any locale carries the benefit id.
func (c *BenefitCatalog) Known(id int32) bool {
	for _, list := range c.byLocale {
		for _, b := range list {
			if b.ID == id {
				return true
			}
		}
	}
	return false
}
