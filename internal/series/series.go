// Package series translates delivery-note numbering series into invoice
// numbering series, per tenant.
package series

// Map is the (tenant, delivery series) -> invoice series lookup table.
type Map map[string]map[int]int

// Default returns the production remap table.
func Default() Map {
	return Map{
		"SBO_Alianza": {
			105: 224,
			180: 250,
			53:  215,
			54:  217,
			55:  206,
			75:  222,
			74:  219,
		},
		"SBO_Pruebas": {
			105: 224,
			180: 250,
			53:  215,
			54:  217,
			55:  206,
			75:  222,
			74:  219,
		},
		"SBO_FGE": {
			112: 146,
		},
		"SBO_MANUFACTURING": {
			7:  89,
			64: 89,
		},
	}
}

// Lookup returns the mapped invoice series and whether a mapping exists.
func (m Map) Lookup(companyDB string, deliverySeries int) (int, bool) {
	s, ok := m[companyDB][deliverySeries]
	return s, ok
}

// Resolve returns the invoice series for the given delivery series, passing
// the source series through unchanged when no mapping exists. Never fails.
func (m Map) Resolve(companyDB string, deliverySeries int) int {
	if s, ok := m.Lookup(companyDB, deliverySeries); ok {
		return s
	}
	return deliverySeries
}
