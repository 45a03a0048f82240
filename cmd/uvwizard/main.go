// uvwizard combines the materials of multi-material meshes into a single
// texture atlas and remaps the mesh UVs to match.
package main

import (
	"flag"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/Faultbox/uvwizard/internal/combine"
	"github.com/Faultbox/uvwizard/internal/config"
	"github.com/Faultbox/uvwizard/internal/export"
	"github.com/Faultbox/uvwizard/internal/logger"
	"github.com/Faultbox/uvwizard/internal/texture"
	"github.com/Faultbox/uvwizard/pkg/atlas"
	"github.com/Faultbox/uvwizard/pkg/mesh"
	"github.com/Faultbox/uvwizard/pkg/objfile"
	"github.com/Faultbox/uvwizard/pkg/uvmap"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "combine", "c":
		cmdCombine(args)
	case "pack", "p":
		cmdPack(args)
	case "info":
		cmdInfo(args)
	case "config":
		cmdConfig(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`uvwizard - texture atlas and UV remapping utility

Usage:
  uvwizard <command> [options]

Commands:
  combine [options] <model.obj>        Combine all materials into one atlas
  pack [options] <image>...            Pack images into an atlas
  info <model.obj>                     Show mesh, material and seam information
  config [options] [file]              Write the effective config (default: user config dir)

Options (combine, pack):
  -size N          Atlas side in pixels (default 2048)
  -padding N       Pixels between packed textures
  -no-downscale    Fail instead of downscaling textures that do not fit
  -shrink          Trim the atlas to the smallest power of two
  -origin O        UV origin: bottom-left or top-left
  -no-import       Do not read unreadable textures from disk
  -colorkey        Treat magenta pixels as transparent
  -o DIR           Output directory
  -no-manifest     Do not write the rect manifest
  -config FILE     Config file (default ./uvwizard.yaml)
  -debug           Enable debug logging
  -log FILE        Also log to FILE

Examples:
  uvwizard combine -size 1024 -o build crate.obj
  uvwizard pack -name icons -padding 2 icons/*.png
  uvwizard info crate.obj
  uvwizard config -size 1024 uvwizard.yaml`)
}

// setup parses flags, loads config and starts logging.
func setup(name string, args []string) (*flag.FlagSet, *config.Config, *string) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	flags := config.BindFlags(fs)
	outName := fs.String("name", "", "Output base name")
	fs.Parse(args)

	cfg, err := config.Load(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: initializing logger: %v\n", err)
		os.Exit(1)
	}
	return fs, cfg, outName
}

func fail(err error) {
	logger.Error("command failed", zap.Error(err))
	logger.Sync()
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func cmdCombine(args []string) {
	fs, cfg, outName := setup("combine", args)
	defer logger.Sync()

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: uvwizard combine [options] <model.obj>")
		os.Exit(1)
	}

	opts, err := cfg.PackOptions()
	if err != nil {
		fail(err)
	}

	importer := texture.NewImporter(texture.ImportOptions{
		AllowImport: cfg.Import.AllowImport,
		ColorKey:    cfg.Import.ColorKey,
	})
	combiner := combine.New(cfg.Atlas.Size, opts, importer)
	writer := export.NewWriter(export.Options{
		Dir:      cfg.Output.Dir,
		Manifest: cfg.Output.Manifest,
		Origin:   opts.Origin,
	})

	provider := objfile.Provider{Path: fs.Arg(0)}
	var consumer combine.Consumer = writer
	if *outName != "" {
		consumer = renamed{name: *outName, next: writer}
	}

	res, err := combiner.Combine(provider, consumer)
	if err != nil {
		fail(err)
	}

	fmt.Printf("Atlas:       %dx%d\n", res.Atlas.Size, res.Atlas.Size)
	fmt.Printf("Scale:       %g\n", res.Atlas.Scale)
	fmt.Printf("Utilization: %.1f%%\n", res.Atlas.Utilization()*100)
	for _, f := range writer.Files() {
		fmt.Printf("  wrote %s\n", f)
	}
}

// renamed writes the result under a different base name.
type renamed struct {
	name string
	next combine.Consumer
}

func (r renamed) Apply(src *mesh.Mesh, res *combine.Result) error {
	cp := *src
	cp.Name = r.name
	return r.next.Apply(&cp, res)
}

func cmdPack(args []string) {
	fs, cfg, outName := setup("pack", args)
	defer logger.Sync()

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: uvwizard pack [options] <image>...")
		os.Exit(1)
	}

	opts, err := cfg.PackOptions()
	if err != nil {
		fail(err)
	}

	paths := fs.Args()
	images := make([]image.Image, len(paths))
	for i, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			fail(err)
		}
		img, err := texture.Decode(data, path)
		if err != nil {
			fail(err)
		}
		images[i] = texture.ToRGBA(img, cfg.Import.ColorKey)
	}

	a, err := atlas.Pack(images, cfg.Atlas.Size, opts)
	if err != nil {
		fail(err)
	}

	name := *outName
	if name == "" {
		name = "atlas"
	}
	names := lo.Map(paths, func(p string, _ int) string {
		return strings.TrimSuffix(filepath.Base(p), filepath.Ext(p))
	})

	writer := export.NewWriter(export.Options{
		Dir:      cfg.Output.Dir,
		Manifest: cfg.Output.Manifest,
		Origin:   opts.Origin,
	})
	out, err := writer.WriteAtlas(name, a, names, paths)
	if err != nil {
		fail(err)
	}

	fmt.Printf("Packed %d images into %s (%dx%d, scale %g, %.1f%% used)\n",
		len(images), out, a.Size, a.Size, a.Scale, a.Utilization()*100)
	for i, r := range a.Rects {
		fmt.Printf("  %-24s %s\n", names[i], r)
	}
}

func cmdInfo(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: uvwizard info <model.obj>")
		os.Exit(1)
	}

	m, err := objfile.Load(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Model:     %s\n", args[0])
	fmt.Printf("Name:      %s\n", m.Name)
	fmt.Printf("Vertices:  %d\n", m.VertexCount())
	fmt.Printf("Triangles: %d\n", m.TriangleCount())
	fmt.Printf("Normals:   %v\n", len(m.Normals) > 0)
	fmt.Println()
	fmt.Println("Submeshes:")
	for i, sub := range m.Submeshes {
		mat := m.Materials[i]
		tex := "(none)"
		if mat.Texture != nil {
			tex = mat.Texture.Path
			if _, err := os.Stat(tex); err != nil {
				tex += " (missing)"
			}
		}
		fmt.Printf("  %2d  %-20s %6d tris  %s\n", i, mat.Name, sub.TriangleCount(), tex)
	}

	shared, err := uvmap.Shared(len(m.UVs), m.SubmeshIndices())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	owners, err := uvmap.Owners(len(m.UVs), m.SubmeshIndices())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Printf("Shared vertices: %d\n", len(shared))
	if len(shared) == 0 {
		return
	}
	fmt.Println("  These vertices are used by more than one submesh; after combining")
	fmt.Println("  they take the UVs of the last submesh that uses them.")

	const maxListed = 20
	for i, v := range shared {
		if i == maxListed {
			fmt.Printf("  ... and %d more\n", len(shared)-maxListed)
			break
		}
		owner := owners[v]
		fmt.Printf("  vertex %-8d uv %-8.4g %-8.4g -> submesh %d (%s)\n",
			v, m.UVs[v][0], m.UVs[v][1], owner, m.Materials[owner].Name)
	}
}

func cmdConfig(args []string) {
	fs, cfg, _ := setup("config", args)
	defer logger.Sync()

	var err error
	path := fs.Arg(0)
	if path == "" {
		path = filepath.Join(config.ConfigDir(), "config.yaml")
		err = cfg.Save()
	} else {
		err = cfg.SaveTo(path)
	}
	if err != nil {
		fail(err)
	}
	fmt.Printf("Wrote %s\n", path)
}
