package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kk-code-lab/arangr/internal/preview"
)

func (c *cli) newPropsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "props <path>",
		Short: "Print the properties panel of a file or folder",
		Args:  cobra.ExactArgs(1),
		RunE:  c.runProps,
	}
}

func (c *cli) runProps(cmd *cobra.Command, args []string) error {
	limits, err := c.cfg.Limits()
	if err != nil {
		return err
	}
	props, err := preview.ReadProperties(args[0], limits)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), props.String())
	return nil
}
