// Package emit serializes an interpreted program into `.mcfunction`
// text: the root command list becomes the primary output file, and
// every function registered in the interpreter's Context becomes its
// own sibling file.
package emit

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/malmosmo/msl/pkgs/value"
)

// Render flattens a CommandList into the newline-joined text of a
// single `.mcfunction` file. Nested CommandList values (there
// shouldn't be any left after interp's group-wrapping pass, but
// defensive flattening costs nothing) are inlined in place.
func Render(v value.Value) string {
	var lines []string
	collectLines(v, &lines)
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}

func collectLines(v value.Value, out *[]string) {
	switch v.Kind() {
	case value.KindCommandList:
		for _, c := range v.Commands() {
			collectLines(c, out)
		}
	case value.KindNull:
		// nothing to emit
	default:
		*out = append(*out, v.Render())
	}
}

// File is one compiled `.mcfunction` file: its path relative to the
// output directory, and its rendered text.
type File struct {
	Name string
	Text string
}

// Files returns the primary output file (named after dstFile) plus
// one sibling file per function the interpreter registered in ctx,
// named "<dir>/<function-name>.mcfunction".
func Files(dstFile string, root value.Value, funcs map[string]value.Value) []File {
	files := []File{{Name: dstFile, Text: Render(root)}}

	names := make([]string, 0, len(funcs))
	for name := range funcs {
		names = append(names, name)
	}
	sort.Strings(names)

	dir := filepath.Dir(dstFile)
	for _, name := range names {
		fname := name + ".mcfunction"
		if dir != "." {
			fname = filepath.Join(dir, fname)
		}
		files = append(files, File{Name: fname, Text: Render(funcs[name])})
	}
	return files
}
