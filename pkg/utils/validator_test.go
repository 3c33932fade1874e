package utils

import "testing"

func TestValidateQuantity(t *testing.T) {
	tests := []struct {
		name     string
		quantity int
		min, max int
		wantErr  bool
	}{
		{"at lower bound", 1, 1, 7, false},
		{"at upper bound", 7, 1, 7, false},
		{"below", 0, 1, 7, true},
		{"above", 8, 1, 7, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateQuantity(tt.quantity, tt.min, tt.max)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateQuantity(%d) error = %v, wantErr %v", tt.quantity, err, tt.wantErr)
			}
		})
	}
}

func TestValidateTaxRate(t *testing.T) {
	if err := ValidateTaxRate(16); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := ValidateTaxRate(-1); err == nil {
		t.Error("expected error for negative rate")
	}
	if err := ValidateTaxRate(101); err == nil {
		t.Error("expected error for rate over 100")
	}
}

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain", "facture.pdf", "facture.pdf"},
		{"unix path", "/tmp/facture.pdf", "facture.pdf"},
		{"windows path", `C:\docs\facture.pdf`, "facture.pdf"},
		{"traversal", "../../etc/passwd", "passwd"},
		{"control chars", "fac\x00ture.pdf", "facture.pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeFileName(tt.input); got != tt.expected {
				t.Errorf("SanitizeFileName(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}
