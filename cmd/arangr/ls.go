package main

import (
	"fmt"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/kk-code-lab/arangr/internal/format"
	fsutil "github.com/kk-code-lab/arangr/internal/fs"
)

func (c *cli) newLsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ls [dir]",
		Short: "List a directory the way the browser does",
		Long:  `Print folders first, then files, each sorted by name, with icon, size and modification time.`,
		Args:  cobra.MaximumNArgs(1),
		RunE:  c.runLs,
	}
}

func (c *cli) runLs(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	dir, err := filepath.Abs(dir)
	if err != nil {
		return err
	}

	snap, err := fsutil.List(cmd.Context(), dir, fsutil.ListOptions{IncludeHidden: c.cfg.Browse.ShowHidden})
	if err != nil {
		return err
	}

	nameWidth := 0
	for _, e := range snap.Entries {
		nameWidth = max(nameWidth, runewidth.StringWidth(displayName(e)))
	}

	out := cmd.OutOrStdout()
	for _, e := range snap.Entries {
		size := "-"
		if !e.IsDir {
			size = humanize.IBytes(uint64(e.Size))
		}
		name := runewidth.FillRight(displayName(e), nameWidth)
		fmt.Fprintf(out, "%s %s  %9s  %s\n", format.Icon(e), name, size, e.Modified.Format("2006-01-02 15:04"))
	}

	folders, files := snap.Counts()
	fmt.Fprintf(out, "\n📁 Folders: %d\n📄 Files: %d\n", folders, files)
	return nil
}

func displayName(e fsutil.PathEntry) string {
	if e.IsDir {
		return e.Name + "/"
	}
	return e.Name
}
