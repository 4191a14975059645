//go:build !integration

package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain lowercase", "sol", "sol"},
		{"uppercase", "SOL", "sol"},
		{"accents", "Chamberí", "chamberi"},
		{"catalan", "Ciutat Vella", "ciutat vella"},
		{"extra spaces", "ciutat   vella", "ciutat vella"},
		{"leading trailing", "  El Raval ", "el raval"},
		{"enye", "Cañada", "canada"},
		{"punctuation stripped", "Sant Martí - Provençals", "sant marti provencals"},
		{"digits kept", "Distrito 7", "distrito 7"},
		{"umlaut and grave", "Güell à", "guell a"},
		{"empty", "", ""},
		{"only punctuation", "...", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Name(tt.in))
		})
	}
}

func TestName_Idempotent(t *testing.T) {
	inputs := []string{
		"Ciutat Vella", "ciutat   vella", "Chamberí", "SANT ANDREU",
		"l'Antiga Esquerra de l'Eixample", "Palma de Mallorca", "", "  ", "ñu ñu",
	}
	for _, in := range inputs {
		once := Name(in)
		assert.Equal(t, once, Name(once), "normalize must be idempotent for %q", in)
	}
}

func TestName_UppercaseAccents(t *testing.T) {
	// ToLower runs first, so uppercase accented letters fold into the table.
	assert.Equal(t, "avila", Name("ÁVILA"))
}

func TestKey(t *testing.T) {
	assert.Equal(t, "madrid/sol", Key("Madrid", "Sol"))
	assert.Equal(t, "barcelona/ciutat vella", Key("Barcelona", "Ciutat  Vella"))
}
