package main

// prune.go has the prune and usage commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newPruneCmd(a *app) *cobra.Command {
	var (
		q      queryFlags
		format string
		out    string
	)
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Output the schema reduced to what the queries use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.session(cmd.Context(), &q)
			if err != nil {
				return err
			}

			var data []byte
			switch format {
			case "json":
				if data, err = s.PruneJSON(); err != nil {
					return err
				}
				data = append(data, '\n')
			case "sdl":
				data = []byte(s.PruneSDL())
			default:
				return fmt.Errorf("unknown format %q (expected json or sdl)", format)
			}
			return output(cmd, out, data)
		},
	}
	a.schemaFlags(cmd)
	q.add(cmd)
	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format: json (introspection result) or sdl")
	cmd.Flags().StringVarP(&out, "output", "o", "", "output file (default standard output)")
	return cmd
}

func newUsageCmd(a *app) *cobra.Command {
	var (
		q   queryFlags
		out string
	)
	cmd := &cobra.Command{
		Use:   "usage",
		Short: "Output the fields, arguments and input fields that the queries use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.session(cmd.Context(), &q)
			if err != nil {
				return err
			}
			usage := s.Usage()
			data, err := usage.MarshalJSON()
			if err != nil {
				return err
			}
			return output(cmd, out, append(data, '\n'))
		},
	}
	a.schemaFlags(cmd)
	q.add(cmd)
	cmd.Flags().StringVarP(&out, "output", "o", "", "output file (default standard output)")
	return cmd
}
