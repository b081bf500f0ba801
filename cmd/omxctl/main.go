// Command omxctl is the administrative CLI for the core, grounded on the
// teacher's cmd/ployz/main.go (cobra root, persistent --debug flag wired
// to logging.Configure, an in-process otel tracer provider with no
// network exporter) minus the daemon/agent/network/service subcommands
// that have no analogue here — omxctl talks to pkg/omx in-process, the
// way a real admin CLI for an in-process library would (see DESIGN.md for
// why no RPC surface was introduced).
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"omxcore/cmd/omxctl/config"
	"omxcore/cmd/omxctl/demo"
	"omxcore/cmd/omxctl/registry"
	"omxcore/internal/support/buildinfo"
	"omxcore/internal/support/logging"
)

func main() {
	tp := sdktrace.NewTracerProvider()
	otel.SetTracerProvider(tp)
	defer func() {
		_ = tp.Shutdown(context.Background())
	}()

	var debug bool
	if err := logging.Configure(logging.LevelWarn); err != nil {
		_, _ = os.Stderr.WriteString("configure logger: " + err.Error() + "\n")
		os.Exit(1)
	}

	root := &cobra.Command{
		Use:           "omxctl",
		Short:         "Administrative CLI for the OpenMAX IL-style component core",
		Version:       buildinfo.Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := logging.LevelWarn
			if debug {
				level = logging.LevelDebug
			}
			return logging.Configure(level)
		},
	}
	root.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")

	root.AddCommand(registry.ListCmd())
	root.AddCommand(registry.RolesCmd())
	root.AddCommand(registry.RoleOfCmd())
	root.AddCommand(demo.Cmd())
	root.AddCommand(config.Cmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
