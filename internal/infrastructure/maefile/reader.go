// Package maefile reads and writes the line-oriented structure file format:
// one block per structure carrying typed annotations, an atom table, and a
// bond table.  The writer emits a canonical form the reader accepts, so files
// round-trip byte for byte.
package maefile

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/turtacn/ChemScreen/internal/domain/structure"
	"github.com/turtacn/ChemScreen/pkg/errors"
	"github.com/turtacn/ChemScreen/pkg/types/annotation"
)

// Read parses every structure block from r, in file order.
func Read(r io.Reader) ([]*structure.Structure, error) {
	p := &parser{scanner: bufio.NewScanner(r)}
	var out []*structure.Structure
	for {
		line, ok := p.next()
		if !ok {
			break
		}
		if line != "structure {" {
			return nil, p.errorf("expected %q, got %q", "structure {", line)
		}
		s, err := p.structureBlock()
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := p.scanner.Err(); err != nil {
		return nil, errors.Wrap(err, errors.CodeFileParse, "reading structure file")
	}
	return out, nil
}

// ReadFile parses every structure block from the file at path.
func ReadFile(path string) ([]*structure.Structure, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeFileParse, "opening structure file").
			WithDetail("path=" + path)
	}
	defer f.Close()

	structs, err := Read(f)
	if err != nil {
		if ae, ok := err.(*errors.AppError); ok {
			return nil, ae.WithDetail("path=" + path)
		}
		return nil, err
	}
	return structs, nil
}

type parser struct {
	scanner *bufio.Scanner
	line    int
}

// next returns the next significant line, trimmed, skipping blanks and
// comments.
func (p *parser) next() (string, bool) {
	for p.scanner.Scan() {
		p.line++
		line := strings.TrimSpace(p.scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		return line, true
	}
	return "", false
}

func (p *parser) errorf(format string, args ...interface{}) error {
	return errors.Newf(errors.CodeFileParse, format, args...).
		WithDetail("line=" + strconv.Itoa(p.line))
}

func (p *parser) structureBlock() (*structure.Structure, error) {
	s := structure.NewEmpty()
	for {
		line, ok := p.next()
		if !ok {
			return nil, p.errorf("unexpected end of file inside structure block")
		}
		switch {
		case line == "}":
			return s, nil
		case strings.HasPrefix(line, "atoms "):
			if err := p.atomTable(s, line); err != nil {
				return nil, err
			}
		case strings.HasPrefix(line, "bonds "):
			if err := p.bondTable(s, line); err != nil {
				return nil, err
			}
		default:
			key, val, err := p.annotationLine(line)
			if err != nil {
				return nil, err
			}
			s.Props.Set(key, val)
		}
	}
}

// annotationLine parses "<key> <value>" with an optionally quoted value.
func (p *parser) annotationLine(line string) (string, annotation.Value, error) {
	fields, err := splitQuoted(line)
	if err != nil {
		return "", annotation.Value{}, p.errorf("%v", err)
	}
	if len(fields) != 2 {
		return "", annotation.Value{}, p.errorf("annotation needs key and value: %q", line)
	}
	val, err := annotation.Parse(fields[0], fields[1])
	if err != nil {
		if ae, ok := err.(*errors.AppError); ok {
			return "", annotation.Value{}, ae.WithDetail("line=" + strconv.Itoa(p.line))
		}
		return "", annotation.Value{}, err
	}
	return fields[0], val, nil
}

func (p *parser) tableCount(header, kind string) (int, error) {
	fields := strings.Fields(header)
	if len(fields) != 3 || fields[0] != kind || fields[2] != "{" {
		return 0, p.errorf("malformed %s table header: %q", kind, header)
	}
	n, err := strconv.Atoi(fields[1])
	if err != nil || n < 0 {
		return 0, p.errorf("bad %s count in %q", kind, header)
	}
	return n, nil
}

func (p *parser) atomTable(s *structure.Structure, header string) error {
	n, err := p.tableCount(header, "atoms")
	if err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		line, ok := p.next()
		if !ok {
			return p.errorf("unexpected end of file inside atom table")
		}
		fields, err := splitQuoted(line)
		if err != nil {
			return p.errorf("%v", err)
		}
		if len(fields) < 4 {
			return p.errorf("atom row needs type and 3 coordinates: %q", line)
		}
		a := structure.Atom{Type: fields[0]}
		coords := [3]*float64{&a.X, &a.Y, &a.Z}
		for c := 0; c < 3; c++ {
			v, err := strconv.ParseFloat(fields[1+c], 64)
			if err != nil {
				return p.errorf("bad coordinate %q in atom row", fields[1+c])
			}
			*coords[c] = v
		}
		if len(fields) > 4 {
			a.Props = annotation.NewMap()
			if err := p.annotationPairs(a.Props, fields[4:]); err != nil {
				return err
			}
		}
		s.AddAtom(a)
	}
	return p.closeBrace("atom")
}

func (p *parser) bondTable(s *structure.Structure, header string) error {
	n, err := p.tableCount(header, "bonds")
	if err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		line, ok := p.next()
		if !ok {
			return p.errorf("unexpected end of file inside bond table")
		}
		fields, err := splitQuoted(line)
		if err != nil {
			return p.errorf("%v", err)
		}
		if len(fields) < 3 {
			return p.errorf("bond row needs 2 endpoints and an order: %q", line)
		}
		ints := [3]int{}
		for c := 0; c < 3; c++ {
			v, err := strconv.Atoi(fields[c])
			if err != nil {
				return p.errorf("bad integer %q in bond row", fields[c])
			}
			ints[c] = v
		}
		b, err := s.AddBond(ints[0], ints[1], ints[2])
		if err != nil {
			if ae, ok := err.(*errors.AppError); ok {
				return ae.WithDetail("line=" + strconv.Itoa(p.line))
			}
			return err
		}
		if err := p.annotationPairs(b.Props, fields[3:]); err != nil {
			return err
		}
	}
	return p.closeBrace("bond")
}

func (p *parser) closeBrace(kind string) error {
	line, ok := p.next()
	if !ok || line != "}" {
		return p.errorf("%s table not closed with %q", kind, "}")
	}
	return nil
}

// annotationPairs parses trailing key=value tokens of a table row.
func (p *parser) annotationPairs(dst *annotation.Map, pairs []string) error {
	for _, pair := range pairs {
		eq := strings.Index(pair, "=")
		if eq <= 0 {
			return p.errorf("malformed annotation pair %q", pair)
		}
		key, raw := pair[:eq], pair[eq+1:]
		val, err := annotation.Parse(key, raw)
		if err != nil {
			if ae, ok := err.(*errors.AppError); ok {
				return ae.WithDetail("line=" + strconv.Itoa(p.line))
			}
			return err
		}
		dst.Set(key, val)
	}
	return nil
}

// splitQuoted splits a line into whitespace-separated fields.  Double-quoted
// spans, which may appear anywhere within a field, protect whitespace and
// support \" and \\ escapes, so both `"a b"` and `key="a b"` are single
// fields.
func splitQuoted(line string) ([]string, error) {
	var out []string
	var cur strings.Builder
	inField, inQuote := false, false
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case inQuote:
			switch c {
			case '\\':
				if i+1 >= len(line) {
					return nil, errors.Newf(errors.CodeFileParse,
						"dangling escape in %q", line)
				}
				i++
				cur.WriteByte(line[i])
			case '"':
				inQuote = false
			default:
				cur.WriteByte(c)
			}
		case c == '"':
			inQuote = true
			inField = true
		case c == ' ' || c == '\t':
			if inField {
				out = append(out, cur.String())
				cur.Reset()
				inField = false
			}
		default:
			cur.WriteByte(c)
			inField = true
		}
	}
	if inQuote {
		return nil, errors.Newf(errors.CodeFileParse, "unterminated quote in %q", line)
	}
	if inField {
		out = append(out, cur.String())
	}
	return out, nil
}
