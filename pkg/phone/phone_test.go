package phone

import "testing"

func TestFormat(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"0712345678", "+254712345678"},
		{"0112345678", "+254112345678"},
		{"254712345678", "+254712345678"},
		{"+254712345678", "+254712345678"},
		{" 0712345678 ", "+254712345678"},
		{"+14155550100", "+14155550100"},
		{"notaphone", "notaphone"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Format(tt.in); got != tt.want {
			t.Errorf("Format(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestValidate(t *testing.T) {
	valid := []string{"0712345678", "+254712345678", "254712345678", "+14155550100", Format("0712345678")}
	for _, v := range valid {
		if !Validate(v) {
			t.Errorf("expected %q to be valid", v)
		}
	}

	invalid := []string{"notaphone", "", "+", "+0712345678", "+1234567890123456", "0712-345-678"}
	for _, v := range invalid {
		if Validate(v) {
			t.Errorf("expected %q to be invalid", v)
		}
	}
}
