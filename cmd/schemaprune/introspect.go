package main

// introspect.go has the introspect command, which saves the schema in JSON or SDL (eg to prune offline later)

import (
	"github.com/diconium/schemapruner"
	"github.com/spf13/cobra"
)

func newIntrospectCmd(a *app) *cobra.Command {
	var (
		sdl bool
		out string
	)
	cmd := &cobra.Command{
		Use:   "introspect",
		Short: "Output the complete schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := a.loader()
			if err != nil {
				return err
			}
			data, err := l.Load(cmd.Context())
			if err != nil {
				return err
			}
			s, err := schemapruner.DecodeSchema(data)
			if err != nil {
				return err
			}
			if sdl {
				return output(cmd, out, []byte(schemapruner.SchemaToSDL(s)))
			}
			if data, err = schemapruner.EncodeSchema(s); err != nil {
				return err
			}
			return output(cmd, out, append(data, '\n'))
		},
	}
	a.schemaFlags(cmd)
	cmd.Flags().BoolVar(&sdl, "sdl", false, "output SDL instead of an introspection result")
	cmd.Flags().StringVarP(&out, "output", "o", "", "output file (default standard output)")
	return cmd
}
