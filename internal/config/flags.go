package config

import "flag"

// Flags holds the command-line overrides bound to one flag set.
type Flags struct {
	Config      *string
	Debug       *bool
	Size        *int
	Padding     *int
	NoDownscale *bool
	Shrink      *bool
	Origin      *string
	NoImport    *bool
	ColorKey    *bool
	OutDir      *string
	NoManifest  *bool
	LogFile     *string

	fs *flag.FlagSet
}

// BindFlags registers the shared flags on fs.
func BindFlags(fs *flag.FlagSet) *Flags {
	return &Flags{
		Config:      fs.String("config", "", "Path to config file"),
		Debug:       fs.Bool("debug", false, "Enable debug logging"),
		Size:        fs.Int("size", 0, "Atlas side in pixels"),
		Padding:     fs.Int("padding", 0, "Pixels between packed textures"),
		NoDownscale: fs.Bool("no-downscale", false, "Fail instead of downscaling textures that do not fit"),
		Shrink:      fs.Bool("shrink", false, "Trim the atlas to the smallest power of two"),
		Origin:      fs.String("origin", "", "UV origin: bottom-left or top-left"),
		NoImport:    fs.Bool("no-import", false, "Do not read unreadable textures from disk"),
		ColorKey:    fs.Bool("colorkey", false, "Treat magenta pixels as transparent"),
		OutDir:      fs.String("o", "", "Output directory"),
		NoManifest:  fs.Bool("no-manifest", false, "Do not write the rect manifest"),
		LogFile:     fs.String("log", "", "Log file path"),
		fs:          fs,
	}
}

// ConfigPath returns the explicit config path if provided via --config flag.
func (f *Flags) ConfigPath() string {
	if f == nil || f.Config == nil {
		return ""
	}
	return *f.Config
}

// set returns the names of the flags given on the command line.
func (f *Flags) set() map[string]bool {
	set := make(map[string]bool)
	if f.fs != nil {
		f.fs.Visit(func(fl *flag.Flag) { set[fl.Name] = true })
	}
	return set
}

// apply applies CLI flag overrides to the config. Only flags given on the
// command line override, so out-of-range values reach Validate.
func (f *Flags) apply(cfg *Config) {
	if f == nil {
		return
	}
	set := f.set()

	if set["debug"] && *f.Debug {
		cfg.Logging.Level = "debug"
	}
	if set["size"] {
		cfg.Atlas.Size = *f.Size
	}
	if set["padding"] {
		cfg.Atlas.Padding = *f.Padding
	}
	if set["no-downscale"] && *f.NoDownscale {
		cfg.Atlas.Downscale = false
	}
	if set["shrink"] && *f.Shrink {
		cfg.Atlas.ShrinkToFit = true
	}
	if set["origin"] {
		cfg.Atlas.Origin = *f.Origin
	}
	if set["no-import"] && *f.NoImport {
		cfg.Import.AllowImport = false
	}
	if set["colorkey"] && *f.ColorKey {
		cfg.Import.ColorKey = true
	}
	if set["o"] && *f.OutDir != "" {
		cfg.Output.Dir = *f.OutDir
	}
	if set["no-manifest"] && *f.NoManifest {
		cfg.Output.Manifest = false
	}
	if set["log"] {
		cfg.Logging.LogFile = *f.LogFile
	}
}
