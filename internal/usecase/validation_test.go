package usecase

import "testing"

func TestValidPhone(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"09123456789", true},
		{"09000000000", true},
		{"0912345678", false},
		{"091234567890", false},
		{"9123456789", false},
		{"08123456789", false},
		{"0912345678a", false},
		{"+989123456789", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := ValidPhone(tc.input); got != tc.want {
			t.Errorf("ValidPhone(%q) = %v, want %v", tc.input, got, tc.want)
		}
	}
}

func TestValidEmail(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"user@gmail.com", true},
		{"user.name+tag@gmail.com", true},
		{"USER@gmail.com", true},
		{"user@yahoo.com", false},
		{"user@gmail.com ", false},
		{"user@gmailXcom", false},
		{"@gmail.com", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := ValidEmail(tc.input); got != tc.want {
			t.Errorf("ValidEmail(%q) = %v, want %v", tc.input, got, tc.want)
		}
	}
}

func TestValidFullName(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"Ada Lovelace", true},
		{"Jean Luc Picard", true},
		{"Madonna", false},
		{"  Cher  ", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := ValidFullName(tc.input); got != tc.want {
			t.Errorf("ValidFullName(%q) = %v, want %v", tc.input, got, tc.want)
		}
	}
}
