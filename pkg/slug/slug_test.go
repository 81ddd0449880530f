package slug

import "testing"

func TestMake(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"simple title", "Hello World", "hello-world"},
		{"already lowercase", "hello", "hello"},
		{"albanian diacritics", "Vera Shkollore në Gjermani", "vera-shkollore-ne-gjermani"},
		{"cedilla", "Çmimet e reja", "cmimet-e-reja"},
		{"german umlauts", "Über München", "uber-munchen"},
		{"punctuation stripped", "What's new? (2026)", "whats-new-2026"},
		{"collapses separators", "a  -  b__c/d", "a-b-c-d"},
		{"leading and trailing junk", "  --Hello--  ", "hello"},
		{"numbers kept", "Vera Shkollore 2026", "vera-shkollore-2026"},
		{"empty", "", ""},
		{"only symbols", "!!!", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Make(tt.input); got != tt.want {
				t.Errorf("Make(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
