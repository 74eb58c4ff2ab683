package rt

import "testing"

func TestParseHex(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    RGB
		wantErr bool
	}{
		{name: "six digits", in: "#ff8000", want: RGB{0xff, 0x80, 0x00}},
		{name: "no hash", in: "00ff7f", want: RGB{0x00, 0xff, 0x7f}},
		{name: "upper case", in: "#ABCDEF", want: RGB{0xab, 0xcd, 0xef}},
		{name: "three digits", in: "#f0a", want: RGB{0xff, 0x00, 0xaa}},
		{name: "empty", in: "", wantErr: true},
		{name: "bad length", in: "#12345", wantErr: true},
		{name: "bad digit", in: "#12345g", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseHex(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseHex(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseHex(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestRGBHex(t *testing.T) {
	c := RGB{0x12, 0xab, 0x00}
	if got := c.Hex(); got != "#12ab00" {
		t.Errorf("Hex() = %q, want #12ab00", got)
	}
	back, err := ParseHex(c.Hex())
	if err != nil || back != c {
		t.Errorf("ParseHex(Hex()) = %+v, %v", back, err)
	}
}

func TestRGBColor(t *testing.T) {
	r, g, b, a := Red.Color().RGBA()
	if r != 0xffff || g != 0 || b != 0 || a != 0xffff {
		t.Errorf("Red.Color().RGBA() = %d %d %d %d", r, g, b, a)
	}
}
