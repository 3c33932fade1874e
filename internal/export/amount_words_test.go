package export

import "testing"

func TestAmountInWords(t *testing.T) {
	tests := []struct {
		name   string
		amount float64
		want   string
	}{
		{"zero", 0, "zéro francs"},
		{"round hundred", 100, "cent francs"},
		{"plural hundreds", 200, "deux cents francs"},
		{"seventies", 71, "soixante et onze francs"},
		{"eighty exact", 80, "quatre-vingts francs"},
		{"ninety one", 91, "quatre-vingt-onze francs"},
		{"with centimes", 123.5, "cent vingt-trois francs et cinquante centimes"},
		{"thousand", 1000, "mille francs"},
		{"compound", 417.6, "quatre cent dix-sept francs et soixante centimes"},
		{"million", 2_500_000, "deux millions cinq cent mille francs"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AmountInWords(tt.amount); got != tt.want {
				t.Errorf("AmountInWords(%v) = %q, want %q", tt.amount, got, tt.want)
			}
		})
	}
}
