package update

import (
	"testing"
)

func TestParseVersion(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Version
		wantErr bool
	}{
		{name: "plain", input: "1.0.0", want: Version{Major: 1}},
		{name: "v prefix", input: "v1.1.0", want: Version{Major: 1, Minor: 1}},
		{name: "prerelease", input: "2.0.0-rc.1", want: Version{Major: 2, Prerelease: "rc.1"}},
		{name: "build metadata", input: "1.2.3+sha.5114f85", want: Version{Major: 1, Minor: 2, Patch: 3, Build: "sha.5114f85"}},
		{name: "prerelease and build", input: "v0.9.0-beta.2+exp", want: Version{Minor: 9, Prerelease: "beta.2", Build: "exp"}},
		{name: "surrounding space", input: " 1.0.0\n", want: Version{Major: 1}},
		{name: "missing patch", input: "1.0", wantErr: true},
		{name: "dev", input: "dev", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseVersion(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseVersion(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if *got != tt.want {
				t.Errorf("ParseVersion(%q) = %+v, want %+v", tt.input, *got, tt.want)
			}
		})
	}
}

func TestVersionString(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"v1.1.0", "1.1.0"},
		{"1.0.0-rc.1", "1.0.0-rc.1"},
		{"1.0.0-rc.1+build.7", "1.0.0-rc.1+build.7"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			v, err := ParseVersion(tt.input)
			if err != nil {
				t.Fatalf("ParseVersion() error = %v", err)
			}
			if got := v.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestVersionCompare(t *testing.T) {
	tests := []struct {
		name string
		v1   string
		v2   string
		want int
	}{
		{name: "equal", v1: "1.0.0", v2: "v1.0.0", want: 0},
		{name: "build metadata ignored", v1: "1.0.0+a", v2: "1.0.0+b", want: 0},
		{name: "minor bump", v1: "1.1.0", v2: "1.0.0", want: 1},
		{name: "major beats minor", v1: "1.9.9", v2: "2.0.0", want: -1},
		{name: "patch bump", v1: "1.0.3", v2: "1.0.2", want: 1},
		{name: "two digit minor", v1: "0.10.0", v2: "0.9.0", want: 1},
		{name: "release above prerelease", v1: "1.0.0", v2: "1.0.0-rc.1", want: 1},
		{name: "prerelease below release", v1: "1.0.0-rc.1", v2: "1.0.0", want: -1},
		{name: "numeric identifiers", v1: "1.0.0-rc.10", v2: "1.0.0-rc.2", want: 1},
		{name: "alpha below beta", v1: "1.0.0-alpha", v2: "1.0.0-beta", want: -1},
		{name: "beta below rc", v1: "1.0.0-beta.11", v2: "1.0.0-rc.1", want: -1},
		{name: "numeric below alphanumeric", v1: "1.0.0-1", v2: "1.0.0-alpha", want: -1},
		{name: "longer prerelease wins", v1: "1.0.0-alpha.1", v2: "1.0.0-alpha", want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CompareVersions(tt.v1, tt.v2)
			if err != nil {
				t.Fatalf("CompareVersions() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("CompareVersions(%s, %s) = %d, want %d", tt.v1, tt.v2, got, tt.want)
			}
		})
	}
}

func TestVersionPredicates(t *testing.T) {
	older, _ := ParseVersion("1.0.0")
	newer, _ := ParseVersion("1.1.0")
	same, _ := ParseVersion("v1.0.0")

	if !newer.IsGreaterThan(older) || older.IsGreaterThan(newer) {
		t.Error("IsGreaterThan() mismatch")
	}
	if !older.IsLessThan(newer) || newer.IsLessThan(older) {
		t.Error("IsLessThan() mismatch")
	}
	if !older.IsEqual(same) || older.IsEqual(newer) {
		t.Error("IsEqual() mismatch")
	}
}

func TestCompareVersionsInvalid(t *testing.T) {
	if _, err := CompareVersions("nope", "1.0.0"); err == nil {
		t.Error("expected error for invalid v1")
	}
	if _, err := CompareVersions("1.0.0", "nope"); err == nil {
		t.Error("expected error for invalid v2")
	}
}

func TestNormalizeVersion(t *testing.T) {
	tests := map[string]string{
		"v1.1.0":      "1.1.0",
		"1.1.0":       "1.1.0",
		" v1.0.0-rc ": "1.0.0-rc",
	}
	for in, want := range tests {
		if got := NormalizeVersion(in); got != want {
			t.Errorf("NormalizeVersion(%q) = %q, want %q", in, got, want)
		}
	}
}
