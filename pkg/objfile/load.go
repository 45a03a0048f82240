package objfile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/uvwizard/pkg/mesh"
)

// Load reads an OBJ file and the MTL libraries it references, binding one
// material per submesh. Texture paths are resolved against the directory of
// the library. Textures are not decoded: their Image is left nil.
//
// A usemtl name that no library defines becomes an untextured white material.
func Load(path string) (*mesh.Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening obj: %w", err)
	}
	defer f.Close()

	obj, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	library := make(map[string]MTLMaterial)
	texDir := make(map[string]string)
	for _, lib := range obj.Libraries {
		libPath := lib
		if !filepath.IsAbs(libPath) {
			libPath = filepath.Join(dir, libPath)
		}
		mats, err := loadMTL(libPath)
		if err != nil {
			return nil, err
		}
		for _, m := range mats {
			library[m.Name] = m
			texDir[m.Name] = filepath.Dir(libPath)
		}
	}

	name := obj.Name
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	m := &mesh.Mesh{
		Name:      name,
		Geometry:  obj.Geometry,
		Materials: make([]mesh.Material, len(obj.Materials)),
	}
	for i, matName := range obj.Materials {
		mtl, ok := library[matName]
		if !ok {
			m.Materials[i] = mesh.Material{Name: matName, Diffuse: mgl32.Vec4{1, 1, 1, 1}}
			continue
		}
		m.Materials[i] = bind(mtl, texDir[matName])
	}
	return m, nil
}

func loadMTL(path string) ([]MTLMaterial, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening mtl: %w", err)
	}
	defer f.Close()

	mats, err := ReadMTL(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return mats, nil
}

func bind(mtl MTLMaterial, dir string) mesh.Material {
	m := mesh.Material{
		Name:    mtl.Name,
		Diffuse: mtl.Diffuse.Vec4(mtl.Alpha),
	}
	if mtl.Texture != "" {
		texPath := filepath.FromSlash(strings.ReplaceAll(mtl.Texture, "\\", "/"))
		if !filepath.IsAbs(texPath) {
			texPath = filepath.Join(dir, texPath)
		}
		m.Texture = &mesh.Texture{
			Name: filepath.Base(texPath),
			Path: texPath,
		}
	}
	return m
}

// Provider loads a mesh from an OBJ file on demand.
type Provider struct {
	Path string
}

// Mesh loads the OBJ file.
func (p Provider) Mesh() (*mesh.Mesh, error) {
	return Load(p.Path)
}
