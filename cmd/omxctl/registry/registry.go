// Package registry implements omxctl's registry-introspection
// subcommands (list, roles, role-of — spec §8 scenarios S1/S2), grounded
// on the teacher's cmd/ployz/node status subcommand shape (open the
// client, print a table, close).
package registry

import (
	"fmt"

	"github.com/spf13/cobra"

	"omxcore/cmd/omxctl/cmdutil"
	"omxcore/cmd/omxctl/ui"
)

// ListCmd enumerates every registered component name, in load order
// (spec §8 scenario S1).
func ListCmd() *cobra.Command {
	var cf cmdutil.CoreFlags
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List every registered component name, in load order",
		RunE: func(cmd *cobra.Command, args []string) error {
			cl, err := cmdutil.Open(cmd.Context(), &cf)
			if err != nil {
				return err
			}
			defer cl.Close()

			names, err := cl.ListComponents()
			if err != nil {
				return err
			}
			if len(names) == 0 {
				fmt.Println(ui.Muted("no components registered"))
				return nil
			}
			rows := make([][]string, len(names))
			for i, n := range names {
				rows[i] = []string{fmt.Sprint(i), n}
			}
			fmt.Println(ui.Table([]string{"index", "name"}, rows))
			return nil
		},
	}
	cf.Bind(cmd)
	return cmd
}

// RolesCmd lists the roles a registered component advertises (spec §8
// scenario S2).
func RolesCmd() *cobra.Command {
	var cf cmdutil.CoreFlags
	cmd := &cobra.Command{
		Use:   "roles <component>",
		Short: "List the roles a registered component advertises",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cl, err := cmdutil.Open(cmd.Context(), &cf)
			if err != nil {
				return err
			}
			defer cl.Close()

			roles, err := cl.RolesOf(args[0])
			if err != nil {
				return err
			}
			if len(roles) == 0 {
				fmt.Println(ui.Muted("no roles advertised"))
				return nil
			}
			for _, r := range roles {
				fmt.Println(r)
			}
			return nil
		},
	}
	cf.Bind(cmd)
	return cmd
}

// RoleOfCmd lists every registered component that advertises a role (spec
// §8 scenario S2's reverse lookup).
func RoleOfCmd() *cobra.Command {
	var cf cmdutil.CoreFlags
	cmd := &cobra.Command{
		Use:   "role-of <role>",
		Short: "List every registered component that advertises a role",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cl, err := cmdutil.Open(cmd.Context(), &cf)
			if err != nil {
				return err
			}
			defer cl.Close()

			names, err := cl.ComponentsWithRole(args[0])
			if err != nil {
				return err
			}
			if len(names) == 0 {
				fmt.Println(ui.ErrorMsg("no component advertises role %q", args[0]))
				return nil
			}
			for _, n := range names {
				fmt.Println(n)
			}
			return nil
		},
	}
	cf.Bind(cmd)
	return cmd
}
