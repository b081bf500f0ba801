// Package cmdutil holds shared flag plumbing for omxctl subcommands,
// grounded on the teacher's cmd/ployz/cmdutil.Connect (resolve a live
// handle from flags, then hand it to the subcommand body) minus the
// host/context/auto-discovery resolution chain — there is no daemon to
// dial, so resolution only has one step: load the il-core config file,
// add the --path directories to its component paths, and bring the core up.
package cmdutil

import (
	"context"

	"github.com/spf13/cobra"

	"omxcore/internal/support/ilconfig"
	"omxcore/pkg/omx"
)

// CoreFlags are the persistent flags every omxctl subcommand that talks to
// the core accepts.
type CoreFlags struct {
	ConfigPath string
	CachePath  string
	ExtraPaths []string
}

// Bind registers the flags on cmd.
func (f *CoreFlags) Bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.ConfigPath, "config", "", "il-core config file (defaults to $XDG_CONFIG_HOME/omxcore/il-core.yaml)")
	cmd.Flags().StringVar(&f.CachePath, "cache", "", "probe cache database path (empty disables the cache)")
	cmd.Flags().StringSliceVar(&f.ExtraPaths, "path", nil, "additional component search directory (repeatable)")
}

// Open resolves the il-core config (file, then --path additions) and opens
// the core, returning a ready *omx.Client the caller must Close.
func Open(ctx context.Context, f *CoreFlags) (*omx.Client, error) {
	var cfg *ilconfig.Config
	var err error
	if f.ConfigPath != "" {
		cfg, err = ilconfig.LoadFrom(f.ConfigPath)
	} else {
		cfg, err = ilconfig.Load()
	}
	if err != nil {
		return nil, err
	}
	for _, p := range f.ExtraPaths {
		cfg.AddComponentPath(p)
	}
	return omx.Open(ctx, cfg, f.CachePath)
}
