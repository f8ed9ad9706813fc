package main

import (
	"github.com/koskimas/fondant/internal/cmd"
	"github.com/spf13/cobra"
)

var descriptorCmd = &cobra.Command{
	Use:   "descriptor <spec file>",
	Short: "Print the Kubeflow descriptor of a component spec",
	Args:  cobra.ExactArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		data, err := cmd.Descriptor(args[0])
		if err != nil {
			return err
		}

		_, err = c.OutOrStdout().Write(data)
		return err
	},
}

func init() {
	rootCmd.AddCommand(descriptorCmd)
}
