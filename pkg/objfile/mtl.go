package objfile

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/uvwizard/pkg/mesh"
)

// MTLMaterial is a material entry of an MTL library.
type MTLMaterial struct {
	Name    string
	Diffuse mgl32.Vec3 // Kd
	Alpha   float32    // d, or 1-Tr
	Texture string     // map_Kd, as written
}

// ReadMTL parses an MTL library. Unknown statements are ignored.
func ReadMTL(r io.Reader) ([]MTLMaterial, error) {
	var out []MTLMaterial
	var cur *MTLMaterial

	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || text[0] == '#' {
			continue
		}
		fields := strings.Fields(text)
		args := fields[1:]

		if fields[0] == "newmtl" {
			if len(args) == 0 {
				return nil, fmt.Errorf("line %d: %w: newmtl without name", line, ErrSyntax)
			}
			out = append(out, MTLMaterial{
				Name:    strings.Join(args, " "),
				Diffuse: mgl32.Vec3{1, 1, 1},
				Alpha:   1,
			})
			cur = &out[len(out)-1]
			continue
		}
		if cur == nil {
			continue
		}

		switch fields[0] {
		case "Kd":
			v, err := parseFloats(args, 3, 3)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			cur.Diffuse = mgl32.Vec3{v[0], v[1], v[2]}
		case "d", "Tr":
			if len(args) == 0 {
				return nil, fmt.Errorf("line %d: %w: %s without value", line, ErrSyntax, fields[0])
			}
			f, err := strconv.ParseFloat(args[len(args)-1], 32)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w: bad number %q", line, ErrSyntax, args[len(args)-1])
			}
			cur.Alpha = float32(f)
			if fields[0] == "Tr" {
				cur.Alpha = 1 - float32(f)
			}
		case "map_Kd":
			// Options such as -s or -o precede the file name.
			if len(args) > 0 {
				cur.Texture = args[len(args)-1]
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading mtl: %w", err)
	}
	return out, nil
}

// WriteMTL writes one newmtl entry per material. A textured material
// references its texture by Texture.Path.
func WriteMTL(w io.Writer, materials []mesh.Material) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "# uvwizard")
	for _, m := range materials {
		fmt.Fprintf(bw, "\nnewmtl %s\n", m.Name)
		fmt.Fprintf(bw, "Kd %s %s %s\n", ftoa(m.Diffuse[0]), ftoa(m.Diffuse[1]), ftoa(m.Diffuse[2]))
		fmt.Fprintf(bw, "d %s\n", ftoa(m.Diffuse[3]))
		if m.Texture != nil && m.Texture.Path != "" {
			fmt.Fprintf(bw, "map_Kd %s\n", m.Texture.Path)
		}
	}
	return bw.Flush()
}
