package model

import "testing"

func TestProductKey(t *testing.T) {
	cases := []struct {
		name, brand, want string
	}{
		{"Café", "Pilão", "cafe-pilao"},
		{"Arroz Branco", "", "arroz-branco"},
		{"Açúcar Cristal", "União", "acucar-cristal-uniao"},
		{"  Leite  ", "", "leite"},
		{"Pão de Queijo!!", "", "pao-de-queijo"},
		{"Coca-Cola 2L", "Coca-Cola", "coca-cola-2l-coca-cola"},
	}
	for _, tc := range cases {
		if got := ProductKey(tc.name, tc.brand); got != tc.want {
			t.Errorf("ProductKey(%q, %q) = %q, want %q", tc.name, tc.brand, got, tc.want)
		}
	}
}

func TestProductKeyStableAcrossAccents(t *testing.T) {
	// the same product typed with and without accents must collide
	if ProductKey("Pilão", "") != ProductKey("Pilao", "") {
		t.Error("accented and plain spellings produced different keys")
	}
}
