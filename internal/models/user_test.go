package models

import "testing"

func TestDisplayInitial(t *testing.T) {
	cases := []struct {
		first string
		email string
		want  string
	}{
		{"Jose", "", "J"},
		{"ana", "", "A"},
		{"Ángel", "", "Á"},
		{"  Maria ", "", "M"},
		{"", "pedro@test", "P"},
		{"", "", "X"},
	}
	for _, c := range cases {
		u := User{FirstName: c.first, Email: c.email}
		if got := u.DisplayInitial(); got != c.want {
			t.Fatalf("DisplayInitial(%q, %q) = %q, want %q", c.first, c.email, got, c.want)
		}
	}
}
