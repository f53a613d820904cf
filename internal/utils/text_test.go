package utils

import "testing"

func TestNormalizeText(t *testing.T) {
	tests := map[string]string{
		"Comisión  MANEJO-cta": "comision manejo cta",
		"  Nota Crédito #123 ": "nota credito 123",
		"":                     "",
		"***":                  "",
		"Intereses":            "intereses",
	}
	for in, want := range tests {
		if got := NormalizeText(in); got != want {
			t.Errorf("NormalizeText(%q) = %q, want %q", in, got, want)
		}
	}
}
