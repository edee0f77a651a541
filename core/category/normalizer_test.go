package category

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"mat", "Matemática"},
		{"  MAT  ", "Matemática"},
		{"Matemática", "Matemática"},
		{"quimica", "Química"},
		{"ing", "Inglês"},
		{"robotics club", "Robotics Club"},
		{"", Uncategorized},
		{"   ", Uncategorized},
	}
	for _, tc := range cases {
		if got := Normalize(tc.in); got != tc.want {
			t.Errorf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeIsDeterministic(t *testing.T) {
	for i := 0; i < 3; i++ {
		if Normalize("geo") != "Geografia" {
			t.Fatalf("normalization not stable")
		}
	}
}
