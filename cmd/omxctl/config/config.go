// Package config implements "omxctl config ...": managing the il-core
// resource configuration's component-paths list (spec §6), grounded on
// the teacher's cmd/ployz/configure subcommand (load, mutate, Save, print
// the resulting path).
package config

import (
	"fmt"

	"github.com/spf13/cobra"

	"omxcore/cmd/omxctl/ui"
	"omxcore/internal/support/ilconfig"
)

func Cmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the il-core component search path list",
	}
	cmd.AddCommand(showCmd(), addPathCmd())
	return cmd
}

func showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the resolved il-core config",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ilconfig.Load()
			if err != nil {
				return err
			}
			fmt.Print(ui.KeyValues("", ui.KV("path", ilconfig.Path())))
			if len(cfg.ILCore.ComponentPaths) == 0 {
				fmt.Println(ui.Muted("  (no component paths configured)"))
				return nil
			}
			for _, p := range cfg.ILCore.ComponentPaths {
				fmt.Println("  " + p)
			}
			return nil
		},
	}
}

func addPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add-path <dir>",
		Short: "Add a component search directory to the il-core config",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ilconfig.Load()
			if err != nil {
				return err
			}
			cfg.AddComponentPath(args[0])
			if err := cfg.Save(); err != nil {
				return err
			}
			fmt.Println(ui.SuccessMsg("added %s", args[0]))
			return nil
		},
	}
}
