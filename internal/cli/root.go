package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/latentscope/internal/config"
	"github.com/matzehuels/latentscope/pkg/cache"
)

// rootFlags are the persistent flags shared by every command. Flags that
// were set on the command line override the configuration file.
type rootFlags struct {
	configPath string
	dataDir    string
	minRange   int
	maxRange   int
	seed       uint64
	noCache    bool

	cmd *cobra.Command
}

func (f *rootFlags) register(root *cobra.Command) {
	pf := root.PersistentFlags()
	pf.StringVar(&f.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/latentscope/config.toml)")
	pf.StringVar(&f.dataDir, "data-dir", "", "directory or URL of the dataset assets")
	pf.IntVar(&f.minRange, "min", 0, "first sample index (inclusive)")
	pf.IntVar(&f.maxRange, "max", 0, "last sample index (exclusive); 0 uses the defaults table size")
	pf.Uint64Var(&f.seed, "seed", 0, "random seed; 0 picks one")
	pf.BoolVar(&f.noCache, "no-cache", false, "disable the persistent asset cache")
	f.cmd = root
}

// changed reports whether the named persistent flag was set.
func (f *rootFlags) changed(name string) bool {
	if f.cmd == nil {
		return false
	}
	fl := f.cmd.PersistentFlags().Lookup(name)
	return fl != nil && fl.Changed
}

// config loads the configuration file and applies flag overrides.
func (f *rootFlags) config() (config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return cfg, err
	}
	if f.changed("data-dir") {
		cfg.Explorer.DataDir = f.dataDir
	}
	if f.changed("min") {
		cfg.Explorer.MinRange = f.minRange
	}
	if f.changed("max") {
		cfg.Explorer.MaxRange = f.maxRange
	}
	if f.changed("seed") {
		cfg.Explorer.Seed = f.seed
	}
	if f.noCache {
		cfg.Cache.Backend = cache.BackendNone
	}
	if err := cfg.ValidateAndSetDefaults(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
