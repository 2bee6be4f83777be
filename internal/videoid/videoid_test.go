package videoid

import "testing"

func TestResolve(t *testing.T) {
	cases := []struct {
		name string
		ref  string
		want string
		ok   bool
	}{
		{"short link", "https://youtu.be/abc123", "abc123", true},
		{"short link with query", "https://youtu.be/abc123?t=42", "abc123", true},
		{"watch link", "https://www.youtube.com/watch?v=abc123", "abc123", true},
		{"watch link with extra params", "https://www.youtube.com/watch?v=abc123&t=5", "abc123", true},
		{"v param not first", "https://www.youtube.com/watch?feature=share&v=xYz_09", "xYz_09", true},
		{"plain website", "https://example.com/some/page", "", false},
		{"empty string", "", "", false},
		{"short link with trailing slash", "https://youtu.be/", "", false},
		{"bare v= with nothing after", "https://www.youtube.com/watch?v=", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := Resolve(tc.ref)
			if ok != tc.ok {
				t.Fatalf("Resolve(%q) ok = %v, want %v", tc.ref, ok, tc.ok)
			}
			if got != tc.want {
				t.Errorf("Resolve(%q) = %q, want %q", tc.ref, got, tc.want)
			}
		})
	}
}
