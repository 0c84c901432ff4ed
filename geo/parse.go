package geo

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
)

// SyntaxError describes a malformed statement.
type SyntaxError struct {
	Line int // Line number where the statement starts.
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("geo: line %d: %s", e.Line, e.Msg)
}

// Parse reads a geometry description. Identifiers of each entity kind must be
// declared in sequence starting at 1. Parse does not check references between
// entities, call [Description.Validate] for that.
func Parse(r io.Reader) (*Description, error) {
	d := &Description{}
	vars := make(map[string]float64)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	var (
		stmt      strings.Builder
		lineno    int
		stmtStart int
	)
	for scanner.Scan() {
		lineno++
		line := scanner.Text()
		if i := strings.Index(line, "//"); i >= 0 {
			line = line[:i]
		}
		for {
			semi := strings.IndexByte(line, ';')
			if semi < 0 {
				if strings.TrimSpace(line) != "" {
					if stmt.Len() == 0 {
						stmtStart = lineno
					}
					stmt.WriteString(line)
					stmt.WriteByte(' ')
				}
				break
			}
			if stmt.Len() == 0 {
				stmtStart = lineno
			}
			stmt.WriteString(line[:semi])
			if err := d.statement(strings.TrimSpace(stmt.String()), vars); err != nil {
				return nil, &SyntaxError{Line: stmtStart, Msg: err.Error()}
			}
			stmt.Reset()
			line = line[semi+1:]
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(stmt.String()) != "" {
		return nil, &SyntaxError{Line: stmtStart, Msg: "unterminated statement"}
	}
	return d, nil
}

func (d *Description) statement(s string, vars map[string]float64) error {
	if s == "" {
		return nil
	}
	eq := strings.IndexByte(s, '=')
	if eq < 0 {
		return fmt.Errorf("expected assignment in %q", s)
	}
	lhs := strings.TrimSpace(s[:eq])
	rhs := strings.TrimSpace(s[eq+1:])
	open := strings.IndexByte(lhs, '(')
	if open < 0 {
		return d.assign(lhs, rhs, vars)
	}
	if !strings.HasSuffix(lhs, ")") {
		return fmt.Errorf("malformed entity %q", lhs)
	}
	kind := strings.Join(strings.Fields(lhs[:open]), " ")
	id, err := strconv.Atoi(strings.TrimSpace(lhs[open+1 : len(lhs)-1]))
	if err != nil {
		return fmt.Errorf("bad %s identifier: %w", kind, err)
	}
	list, err := splitList(rhs)
	if err != nil {
		return err
	}
	var want int
	switch kind {
	case "Point":
		want = len(d.Points) + 1
		if id == want {
			err = d.point(list, vars)
		}
	case "Line":
		want = len(d.Lines) + 1
		if id == want {
			err = d.line(list)
		}
	case "Line Loop", "Curve Loop":
		want = len(d.Loops) + 1
		if id == want {
			err = d.loop(list)
		}
	case "Plane Surface":
		want = len(d.Surfaces) + 1
		if id == want {
			err = d.surface(list)
		}
	default:
		return fmt.Errorf("unsupported entity %q", kind)
	}
	if id != want {
		return fmt.Errorf("%s identifier %d out of sequence, want %d", kind, id, want)
	}
	return err
}

func (d *Description) assign(name, value string, vars map[string]float64) error {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("bad value for %s: %w", name, err)
	}
	switch name {
	case "Mesh.Algorithm":
		d.Algorithm = int(v)
	case lcName:
		d.LC = v
	}
	vars[name] = v
	return nil
}

func (d *Description) point(list []string, vars map[string]float64) error {
	if len(list) != 3 && len(list) != 4 {
		return fmt.Errorf("point needs 3 or 4 values, got %d", len(list))
	}
	var c [4]float64
	for i, s := range list {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			var ok bool
			v, ok = vars[s]
			if !ok {
				return fmt.Errorf("undefined value %q in point", s)
			}
		}
		c[i] = v
	}
	d.Points = append(d.Points, Point{X: r3.Vec{X: c[0], Y: c[1], Z: c[2]}, LC: c[3]})
	return nil
}

func (d *Description) line(list []string) error {
	ids, err := atois(list)
	if err != nil {
		return err
	}
	if len(ids) != 2 {
		return fmt.Errorf("line needs 2 points, got %d", len(ids))
	}
	d.Lines = append(d.Lines, Line{ids[0], ids[1]})
	return nil
}

func (d *Description) loop(list []string) error {
	ids, err := atois(list)
	if err != nil {
		return err
	}
	d.Loops = append(d.Loops, Loop(ids))
	return nil
}

func (d *Description) surface(list []string) error {
	ids, err := atois(list)
	if err != nil {
		return err
	}
	if len(ids) != 1 {
		return fmt.Errorf("plane surface needs exactly 1 loop, got %d", len(ids))
	}
	d.Surfaces = append(d.Surfaces, ids[0])
	return nil
}

// splitList splits "{a, b, c}" into its trimmed elements.
func splitList(s string) ([]string, error) {
	if !strings.HasPrefix(s, "{") || !strings.HasSuffix(s, "}") {
		return nil, fmt.Errorf("expected {...} list, got %q", s)
	}
	s = strings.TrimSpace(s[1 : len(s)-1])
	if s == "" {
		return nil, nil
	}
	list := strings.Split(s, ",")
	for i := range list {
		list[i] = strings.TrimSpace(list[i])
	}
	return list, nil
}

func atois(list []string) ([]int, error) {
	ids := make([]int, len(list))
	for i, s := range list {
		// gmsh allows a space between sign and number.
		n, err := strconv.Atoi(strings.Join(strings.Fields(s), ""))
		if err != nil {
			return nil, err
		}
		ids[i] = n
	}
	return ids, nil
}
