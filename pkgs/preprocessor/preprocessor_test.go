package preprocessor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestAddEndingsAddsTerminators(t *testing.T) {
	cases := []struct {
		name   string
		source string
		want   string
	}{
		{
			name:   "raw command gets semicolon",
			source: "say hello",
			want:   "say hello;\n",
		},
		{
			name:   "brace-terminated line untouched",
			source: "as(\"@a\") {\nsay hi;\n}",
			want:   "as(\"@a\") {\nsay hi;\n}\n",
		},
		{
			name:   "block comment lines untouched",
			source: "/* a comment\nspanning lines */\nsay hi",
			want:   "/* a comment\nspanning lines */\nsay hi;\n",
		},
		{
			name:   "line comment untouched",
			source: "// a comment",
			want:   "// a comment\n",
		},
		{
			name:   "keyword line forced semicolon even with brace suffix",
			source: "execute as @a run say hi {",
			want:   "execute as @a run say hi {;\n",
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := AddEndings(c.source)
			if diff := cmp.Diff(c.want, got); diff != "" {
				t.Errorf("AddEndings() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestAddEndingsIsIdempotent(t *testing.T) {
	source := "score x : obj = 5\nas(\"@a\") {\nsay hi\n}"
	once := AddEndings(source)
	twice := AddEndings(once)

	if diff := cmp.Diff(once, twice); diff != "" {
		t.Errorf("AddEndings is not idempotent (-once +twice):\n%s", diff)
	}
}

func TestIncludeExpandsSiblingFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "physics.msl"), []byte("gravity = 20;\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	source := "include <physics.msl>\nsay done;\n"
	got := Include(dir, source)
	want := "gravity = 20;\n\nsay done;\n"

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Include() mismatch (-want +got):\n%s", diff)
	}
}

func TestIncludeMissingFileRemovesLine(t *testing.T) {
	dir := t.TempDir()
	source := "include <missing.msl>\nsay done;\n"

	got := Include(dir, source)
	want := "\nsay done;\n"

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Include() mismatch (-want +got):\n%s", diff)
	}
}

func TestIncludeIsNonRecursive(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "inner.msl"), []byte("include <never.msl>\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	source := "include <inner.msl>\n"
	got := Include(dir, source)
	want := "include <never.msl>\n\n"

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Include() mismatch (-want +got):\n%s", diff)
	}
}
