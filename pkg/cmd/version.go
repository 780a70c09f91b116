package cmd

import (
	"github.com/spf13/cobra"
)

// set by makefile with ldflags
var (
	Version = "dev"
	Commit  = "n/a"
	Build   = "n/a"
)

func NewVersionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Application version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Println(Version)
			cmd.Println("Commit:", Commit)
			cmd.Println("Build:", Build)
		},
	}
	return cmd
}
