// Package objfile reads and writes Wavefront OBJ meshes and MTL material
// libraries.
//
// Faces are grouped into one submesh per usemtl name, in order of first use.
// OBJ indexes positions, texture coordinates and normals separately; every
// distinct v/vt/vn triple becomes one vertex of the shared buffer, so
// submeshes that share a seam share vertices.
package objfile

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/uvwizard/pkg/mesh"
)

// DefaultMaterial names the submesh of faces that precede any usemtl.
const DefaultMaterial = "default"

// OBJ format errors.
var (
	ErrSyntax     = errors.New("obj syntax error")
	ErrBadIndex   = errors.New("obj index out of range")
	ErrEmptyModel = errors.New("obj has no faces")
)

// Object is a parsed OBJ file.
type Object struct {
	Name      string
	Geometry  mesh.Geometry
	Materials []string // usemtl name of each submesh
	Libraries []string // mtllib references, as written
}

type vertexKey struct {
	v, vt, vn int
}

type parser struct {
	positions []mgl32.Vec3
	texCoords []mgl32.Vec2
	normals   []mgl32.Vec3

	obj      *Object
	vertices map[vertexKey]uint32
	groups   map[string]int
	current  int
}

// Read parses an OBJ stream.
func Read(r io.Reader) (*Object, error) {
	p := &parser{
		obj:      &Object{},
		vertices: make(map[vertexKey]uint32),
		groups:   make(map[string]int),
		current:  -1,
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		if err := p.parseLine(strings.TrimSpace(scanner.Text())); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading obj: %w", err)
	}

	if len(p.obj.Geometry.Submeshes) == 0 {
		return nil, ErrEmptyModel
	}
	if len(p.normals) == 0 {
		p.obj.Geometry.Normals = nil
	}
	return p.obj, nil
}

func (p *parser) parseLine(text string) error {
	if text == "" || text[0] == '#' {
		return nil
	}
	fields := strings.Fields(text)
	args := fields[1:]

	switch fields[0] {
	case "v":
		v, err := parseFloats(args, 3, 3)
		if err != nil {
			return err
		}
		p.positions = append(p.positions, mgl32.Vec3{v[0], v[1], v[2]})
	case "vt":
		v, err := parseFloats(args, 1, 2)
		if err != nil {
			return err
		}
		p.texCoords = append(p.texCoords, mgl32.Vec2{v[0], v[1]})
	case "vn":
		v, err := parseFloats(args, 3, 3)
		if err != nil {
			return err
		}
		p.normals = append(p.normals, mgl32.Vec3{v[0], v[1], v[2]})
	case "f":
		return p.parseFace(args)
	case "usemtl":
		if len(args) == 0 {
			return fmt.Errorf("%w: usemtl without name", ErrSyntax)
		}
		p.useMaterial(strings.Join(args, " "))
	case "mtllib":
		p.obj.Libraries = append(p.obj.Libraries, args...)
	case "o":
		if p.obj.Name == "" && len(args) > 0 {
			p.obj.Name = strings.Join(args, " ")
		}
	}
	// g, s, l and unknown statements carry nothing we need.
	return nil
}

func (p *parser) useMaterial(name string) {
	idx, ok := p.groups[name]
	if !ok {
		idx = len(p.obj.Geometry.Submeshes)
		p.groups[name] = idx
		p.obj.Geometry.Submeshes = append(p.obj.Geometry.Submeshes, mesh.Submesh{})
		p.obj.Materials = append(p.obj.Materials, name)
	}
	p.current = idx
}

// parseFace adds a polygon as a triangle fan.
func (p *parser) parseFace(args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("%w: face needs 3 vertices, got %d", ErrSyntax, len(args))
	}
	if p.current < 0 {
		p.useMaterial(DefaultMaterial)
	}

	corners := make([]uint32, len(args))
	for i, arg := range args {
		idx, err := p.vertex(arg)
		if err != nil {
			return err
		}
		corners[i] = idx
	}

	sub := &p.obj.Geometry.Submeshes[p.current]
	for i := 1; i+1 < len(corners); i++ {
		sub.Indices = append(sub.Indices, corners[0], corners[i], corners[i+1])
	}
	return nil
}

// vertex resolves one "v/vt/vn" token to a shared vertex index.
func (p *parser) vertex(token string) (uint32, error) {
	parts := strings.Split(token, "/")
	if len(parts) > 3 {
		return 0, fmt.Errorf("%w: bad face vertex %q", ErrSyntax, token)
	}

	key := vertexKey{v: -1, vt: -1, vn: -1}
	var err error
	if key.v, err = resolveIndex(parts[0], len(p.positions)); err != nil {
		return 0, err
	}
	if len(parts) > 1 && parts[1] != "" {
		if key.vt, err = resolveIndex(parts[1], len(p.texCoords)); err != nil {
			return 0, err
		}
	}
	if len(parts) > 2 && parts[2] != "" {
		if key.vn, err = resolveIndex(parts[2], len(p.normals)); err != nil {
			return 0, err
		}
	}

	if idx, ok := p.vertices[key]; ok {
		return idx, nil
	}

	g := &p.obj.Geometry
	idx := uint32(len(g.Positions))
	g.Positions = append(g.Positions, p.positions[key.v])
	var uv mgl32.Vec2
	if key.vt >= 0 {
		uv = p.texCoords[key.vt]
	}
	g.UVs = append(g.UVs, uv)
	var n mgl32.Vec3
	if key.vn >= 0 {
		n = p.normals[key.vn]
	}
	g.Normals = append(g.Normals, n)

	p.vertices[key] = idx
	return idx, nil
}

// resolveIndex converts a 1-based or negative relative OBJ index to 0-based.
func resolveIndex(s string, count int) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: bad index %q", ErrSyntax, s)
	}
	idx := n - 1
	if n < 0 {
		idx = count + n
	}
	if n == 0 || idx < 0 || idx >= count {
		return 0, fmt.Errorf("%w: %d of %d", ErrBadIndex, n, count)
	}
	return idx, nil
}

func parseFloats(args []string, minN, maxN int) ([]float32, error) {
	if len(args) < minN {
		return nil, fmt.Errorf("%w: expected %d values, got %d", ErrSyntax, minN, len(args))
	}
	out := make([]float32, maxN)
	for i := 0; i < maxN && i < len(args); i++ {
		f, err := strconv.ParseFloat(args[i], 32)
		if err != nil {
			return nil, fmt.Errorf("%w: bad number %q", ErrSyntax, args[i])
		}
		out[i] = float32(f)
	}
	return out, nil
}

// Write serializes m as OBJ. Submesh i is written under usemtl of
// m.Materials[i]. mtllib is omitted when empty.
func Write(w io.Writer, m *mesh.Mesh, mtllib string) error {
	if err := m.Validate(); err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "# uvwizard")
	if mtllib != "" {
		fmt.Fprintf(bw, "mtllib %s\n", mtllib)
	}
	if m.Name != "" {
		fmt.Fprintf(bw, "o %s\n", m.Name)
	}

	for _, v := range m.Positions {
		fmt.Fprintf(bw, "v %s %s %s\n", ftoa(v[0]), ftoa(v[1]), ftoa(v[2]))
	}
	for _, uv := range m.UVs {
		fmt.Fprintf(bw, "vt %s %s\n", ftoa(uv[0]), ftoa(uv[1]))
	}
	for _, n := range m.Normals {
		fmt.Fprintf(bw, "vn %s %s %s\n", ftoa(n[0]), ftoa(n[1]), ftoa(n[2]))
	}

	withNormals := len(m.Normals) > 0
	for i, sub := range m.Submeshes {
		fmt.Fprintf(bw, "usemtl %s\n", m.Materials[i].Name)
		for t := 0; t+2 < len(sub.Indices); t += 3 {
			bw.WriteString("f")
			for _, idx := range sub.Indices[t : t+3] {
				if withNormals {
					fmt.Fprintf(bw, " %d/%d/%d", idx+1, idx+1, idx+1)
				} else {
					fmt.Fprintf(bw, " %d/%d", idx+1, idx+1)
				}
			}
			bw.WriteString("\n")
		}
	}

	return bw.Flush()
}

func ftoa(f float32) string {
	return strconv.FormatFloat(float64(f), 'g', -1, 32)
}
