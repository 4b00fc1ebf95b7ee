package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"accents stripped", "Sofá 3 Lugares!", "sofa-3-lugares"},
		{"lowercase", "Mesa Jantar", "mesa-jantar"},
		{"symbol runs collapse", "Poltrona -- Luxo & Conforto", "poltrona-luxo-conforto"},
		{"cedilla", "Estação de Trabalho", "estacao-de-trabalho"},
		{"leading and trailing noise", "  ***Cadeira***  ", "cadeira"},
		{"numbers kept", "Rack 180cm", "rack-180cm"},
		{"empty", "", ""},
		{"only symbols", "!!!", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Slugify(tt.input))
		})
	}
}
