package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kk-code-lab/arangr/internal/format"
	fsutil "github.com/kk-code-lab/arangr/internal/fs"
)

func (c *cli) newClassifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classify <path>...",
		Short: "Print the preview category and type description of paths",
		Args:  cobra.MinimumNArgs(1),
		RunE:  c.runClassify,
	}
}

func (c *cli) runClassify(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	var failed int
	for _, path := range args {
		entry, err := fsutil.Stat(path)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", path, err)
			failed++
			continue
		}
		if entry.IsDir {
			fmt.Fprintf(out, "%s\tfolder\t%s\n", path, format.Describe(path))
			continue
		}
		fmt.Fprintf(out, "%s\t%s\t%s\n", path, format.Classify(path), format.Describe(path))
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d paths could not be classified", failed, len(args))
	}
	return nil
}
