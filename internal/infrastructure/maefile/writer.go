package maefile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/turtacn/ChemScreen/internal/domain/structure"
	"github.com/turtacn/ChemScreen/pkg/errors"
	"github.com/turtacn/ChemScreen/pkg/types/annotation"
)

// Write emits every structure to w in the canonical block form.
func Write(w io.Writer, structs []*structure.Structure) error {
	bw := bufio.NewWriter(w)
	for _, s := range structs {
		writeStructure(bw, s)
	}
	if err := bw.Flush(); err != nil {
		return errors.Wrap(err, errors.CodeFileWrite, "writing structure file")
	}
	return nil
}

// WriteFile writes every structure to the file at path, replacing it.
func WriteFile(path string, structs []*structure.Structure) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, errors.CodeFileWrite, "creating structure file").
			WithDetail("path=" + path)
	}
	if err := Write(f, structs); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return errors.Wrap(err, errors.CodeFileWrite, "closing structure file").
			WithDetail("path=" + path)
	}
	return nil
}

// WriteDir writes one file per structure into dir, named after the entry name
// (falling back to the title).  Name collisions get a numeric suffix so no
// structure overwrites another.  It returns the written paths in input order.
func WriteDir(dir string, structs []*structure.Structure) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, errors.CodeFileWrite, "creating output directory").
			WithDetail("path=" + dir)
	}
	paths := make([]string, 0, len(structs))
	used := map[string]int{}
	for _, s := range structs {
		base := sanitizeName(s.EntryName())
		if base == "" {
			base = sanitizeName(s.Title())
		}
		if base == "" {
			base = "structure"
		}
		name := base
		if n := used[base]; n > 0 {
			name = fmt.Sprintf("%s_%d", base, n)
		}
		used[base]++

		path := filepath.Join(dir, name+".mae")
		if err := WriteFile(path, []*structure.Structure{s}); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeStructure(w *bufio.Writer, s *structure.Structure) {
	fmt.Fprintln(w, "structure {")
	for _, k := range s.Props.Keys() {
		v, _ := s.Props.Get(k)
		fmt.Fprintf(w, "  %s %s\n", k, quoteIfNeeded(v.Text()))
	}

	fmt.Fprintf(w, "  atoms %d {\n", s.AtomCount())
	for _, a := range s.Atoms() {
		fmt.Fprintf(w, "    %s %.6f %.6f %.6f", quoteIfNeeded(a.Type), a.X, a.Y, a.Z)
		if a.Props != nil {
			writePairs(w, a.Props)
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintln(w, "  }")

	fmt.Fprintf(w, "  bonds %d {\n", len(s.Bonds()))
	for _, b := range s.Bonds() {
		fmt.Fprintf(w, "    %d %d %d", b.Atom1, b.Atom2, b.Order)
		writePairs(w, b.Props)
		fmt.Fprintln(w)
	}
	fmt.Fprintln(w, "  }")
	fmt.Fprintln(w, "}")
}

func writePairs(w *bufio.Writer, m *annotation.Map) {
	for _, k := range m.Keys() {
		v, _ := m.Get(k)
		fmt.Fprintf(w, " %s=%s", k, quoteIfNeeded(v.Text()))
	}
}

// quoteIfNeeded wraps s in double quotes, escaping backslashes and quotes,
// when it is empty or contains characters the field splitter treats specially.
func quoteIfNeeded(s string) string {
	if s != "" && !strings.ContainsAny(s, " \t\"\\=") {
		return s
	}
	var b strings.Builder
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		if s[i] == '"' || s[i] == '\\' {
			b.WriteByte('\\')
		}
		b.WriteByte(s[i])
	}
	b.WriteByte('"')
	return b.String()
}

// sanitizeName maps a structure name to a safe file name stem.
func sanitizeName(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '-', r == '_', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return strings.Trim(b.String(), "._")
}
