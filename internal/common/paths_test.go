package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		// Empty and root
		{"empty", "", ""},
		{"root", "/", ""},
		{"double_root", "//", ""},
		{"dot", ".", ""},

		// Simple paths
		{"simple", "foo", "foo"},
		{"leading_slash", "/foo", "foo"},
		{"trailing_slash", "foo/", "foo"},
		{"both_slashes", "/foo/", "foo"},

		// Nested paths
		{"two_parts", "foo/bar", "foo/bar"},
		{"three_parts", "/foo/bar/baz/", "foo/bar/baz"},

		// Dots and duplicate slashes
		{"dot_middle", "foo/./bar", "foo/bar"},
		{"dotdot_middle", "foo/../bar", "bar"},
		{"many_slashes", "///foo///bar///", "foo/bar"},

		// Cannot escape the root
		{"dotdot", "..", ""},
		{"dotdot_prefix", "../foo", "foo"},
		{"dotdot_suffix", "foo/..", ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, NormalizePath(tt.input))
		})
	}
}

func TestSplitPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty", "", nil},
		{"root", "/", nil},
		{"simple", "foo", []string{"foo"}},
		{"leading_slash", "/foo", []string{"foo"}},
		{"three_parts", "/foo/bar/baz/", []string{"foo", "bar", "baz"}},
		{"double_slash", "foo//bar", []string{"foo", "bar"}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, SplitPath(tt.input))
		})
	}
}

func TestJoinPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input []string
		want  string
	}{
		{"nil", nil, ""},
		{"single", []string{"foo"}, "foo"},
		{"two_parts", []string{"foo", "bar"}, "foo/bar"},
		{"first_leading_slash", []string{"/foo", "bar"}, "foo/bar"},
		{"empty_middle", []string{"foo", "", "bar"}, "foo/bar"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, JoinPath(tt.input...))
		})
	}
}

func TestParentAndBaseName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input      string
		wantParent string
		wantBase   string
	}{
		{"", "", ""},
		{"/", "", ""},
		{"foo", "", "foo"},
		{"/foo/bar", "foo", "bar"},
		{"/path/to/file.ext", "path/to", "file.ext"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.wantParent, ParentPath(tt.input))
			assert.Equal(t, tt.wantBase, BaseName(tt.input))
		})
	}
}

func TestValidName(t *testing.T) {
	t.Parallel()

	assert.True(t, ValidName("readme"))
	assert.True(t, ValidName("README.md"))
	assert.False(t, ValidName(""))
	assert.False(t, ValidName("."))
	assert.False(t, ValidName(".."))
	assert.False(t, ValidName("a/b"))
}
