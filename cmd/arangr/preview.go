package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kk-code-lab/arangr/internal/office"
	"github.com/kk-code-lab/arangr/internal/preview"
)

func (c *cli) newPreviewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "preview <path>",
		Short: "Print the preview of a file or folder",
		Long: `Resolve one preview exactly as the browser would and print its header
and content. Images print their information block.`,
		Args: cobra.ExactArgs(1),
		RunE: c.runPreview,
	}
}

func (c *cli) resolver() (*preview.Resolver, error) {
	limits, err := c.cfg.Limits()
	if err != nil {
		return nil, err
	}
	return preview.NewResolver(limits, preview.WithExtractor(office.New(c.cfg.ExtractorOptions()...))), nil
}

func (c *cli) runPreview(cmd *cobra.Command, args []string) error {
	resolver, err := c.resolver()
	if err != nil {
		return err
	}
	path, err := filepath.Abs(args[0])
	if err != nil {
		return err
	}

	res := resolver.Resolve(cmd.Context(), preview.Request{Path: path})
	if res.Failed() && res.Content == nil {
		return res.Err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, preview.Header(res))
	fmt.Fprintln(out)
	fmt.Fprintln(out, res.Body())
	if res.Failed() {
		return res.Err
	}
	return nil
}
