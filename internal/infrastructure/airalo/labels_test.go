package airalo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewLabels_Locale(t *testing.T) {
	tests := []struct {
		locale string
		want   string
	}{
		{"es", "es"},
		{"es-AR", "es"},
		{"en", "en"},
		{"en-US", "en"},
		{"fr", "es"},
		{"", "es"},
		{"not a locale!", "es"},
	}

	for _, tt := range tests {
		t.Run(tt.locale, func(t *testing.T) {
			assert.Equal(t, tt.want, NewLabels(tt.locale).Locale())
		})
	}
}

func TestLabels_Days(t *testing.T) {
	tests := []struct {
		locale string
		days   int
		want   string
	}{
		{"es", 1, "1 día"},
		{"es", 7, "7 días"},
		{"es", 30, "30 días"},
		{"en", 1, "1 day"},
		{"en", 15, "15 days"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, NewLabels(tt.locale).Days(tt.days))
		})
	}
}

func TestLabels_UnlimitedData(t *testing.T) {
	assert.Equal(t, "Datos ilimitados", NewLabels("es").UnlimitedData())
	assert.Equal(t, "Unlimited data", NewLabels("en").UnlimitedData())
}
