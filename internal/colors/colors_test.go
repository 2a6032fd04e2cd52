package colors

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"FF5733", "#FF5733", true},
		{"#ff5733", "#FF5733", true},
		{"red", "#FF0000", true},
		{"RED", "#FF0000", true},
		{"Gold", "#FFD700", true},
		{"aqua", "#00FFFF", true},
		{"notacolor", "", false},
		{"#FFF", "", false},
		{"FFF", "", false},
		{"##FF5733", "", false},
		{"FF57331", "", false},
		{"chartreuse", "", false},
		{"", "", false},
		{"GGGGGG", "", false},
	}

	for _, tt := range tests {
		got, ok := Parse(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("Parse(%q) = (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestParse_HexFormsAgree(t *testing.T) {
	a, _ := Parse("FF5733")
	b, _ := Parse("#ff5733")
	if a != b || a != "#FF5733" {
		t.Errorf("expected both forms to yield #FF5733, got %q and %q", a, b)
	}
}

func TestNamedTableIsCanonical(t *testing.T) {
	for name, hex := range Named {
		got, ok := Parse(hex)
		if !ok || got != hex {
			t.Errorf("table entry %s=%s is not canonical (parsed %q)", name, hex, got)
		}
	}
}
