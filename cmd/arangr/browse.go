package main

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"

	apppkg "github.com/kk-code-lab/arangr/internal/app"
)

func (c *cli) newBrowseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "browse [path]",
		Short: "Open the terminal browser (default command)",
		Args:  cobra.MaximumNArgs(1),
		RunE:  c.runBrowse,
	}
}

func (c *cli) runBrowse(cmd *cobra.Command, args []string) error {
	// UTF-8 fallback keeps non-ASCII names readable on terminals that do not
	// advertise an encoding.
	tcell.SetEncodingFallback(tcell.EncodingFallbackUTF8)

	start := ""
	if len(args) > 0 {
		start = args[0]
	}

	app, err := apppkg.NewApplication(apppkg.Options{Config: c.cfg, StartPath: start})
	if err != nil {
		return fmt.Errorf("initializing application: %w", err)
	}
	defer func() {
		_ = app.Close()
	}()

	app.Run(cmd.Context())
	return nil
}
