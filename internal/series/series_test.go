package series_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rezonia/invoice-autotransfer/internal/series"
)

func TestResolve_Mapped(t *testing.T) {
	m := series.Default()

	tests := []struct {
		name      string
		companyDB string
		delivery  int
		expected  int
	}{
		{"alianza 105", "SBO_Alianza", 105, 224},
		{"alianza 180", "SBO_Alianza", 180, 250},
		{"alianza 74", "SBO_Alianza", 74, 219},
		{"pruebas mirrors alianza", "SBO_Pruebas", 105, 224},
		{"fge 112", "SBO_FGE", 112, 146},
		{"manufacturing 7", "SBO_MANUFACTURING", 7, 89},
		{"manufacturing 64", "SBO_MANUFACTURING", 64, 89},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, m.Resolve(tt.companyDB, tt.delivery))
		})
	}
}

func TestResolve_UnmappedPassesThrough(t *testing.T) {
	m := series.Default()

	assert.Equal(t, 999, m.Resolve("SBO_Alianza", 999))
	assert.Equal(t, 105, m.Resolve("SBO_UnknownCompany", 105))
}

func TestLookup(t *testing.T) {
	m := series.Map{"SBO_X": {105: 224}}

	s, ok := m.Lookup("SBO_X", 105)
	assert.True(t, ok)
	assert.Equal(t, 224, s)

	_, ok = m.Lookup("SBO_X", 1)
	assert.False(t, ok)

	_, ok = m.Lookup("SBO_Y", 105)
	assert.False(t, ok)
}
