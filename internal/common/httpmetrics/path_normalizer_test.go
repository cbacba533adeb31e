package httpmetrics

import "testing"

func TestNormalizePath(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", "/"},
		{"root", "/", "/"},
		{"static", "/v1/auth/login", "/v1/auth/login"},
		{"uuid", "/v1/accounts/8d7f2c9a-1b3e-4f5a-9c8d-0e1f2a3b4c5d", "/v1/accounts/{id}"},
		{"numeric", "/v1/users/42", "/v1/users/{param}"},
		{"mixed segment survives", "/v1/users/42abc", "/v1/users/42abc"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := NormalizePath(tc.in); got != tc.want {
				t.Errorf("NormalizePath(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
