package normalizers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripQuantitySuffix(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain quantity", "Widget / 10", "Widget"},
		{"quantity with unit", "Widget / 12 pk", "Widget"},
		{"no space before slash", "Widget /6ct", "Widget"},
		{"no suffix", "Widget", "Widget"},
		{"slash without quantity kept", "Black / White Tee", "Black / White Tee"},
		{"only trailing suffix stripped", "Combo / 2 / 10", "Combo / 2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, StripQuantitySuffix(tt.input))
		})
	}
}

func TestNormalizeProductName(t *testing.T) {
	assert.Equal(t, "widget", NormalizeProductName("  Widget / 10  "))
	assert.Equal(t, "blue widget xl", NormalizeProductName("Blue  Widget   XL / 6 pk"))
}

func TestApplyUnknownNormalizerReturnsInput(t *testing.T) {
	assert.Equal(t, "Widget", Apply("Widget", "does-not-exist"))
}

func TestApplyChain(t *testing.T) {
	assert.Equal(t, "widget", ApplyChain(" Widget ", "trim", "lowercase"))
}
