package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kk-code-lab/arangr/internal/config"
	"github.com/kk-code-lab/arangr/internal/logging"
)

// cli holds what the persistent flags resolve to for one invocation.
type cli struct {
	cfgFile string
	verbose bool
	cfg     *config.Config
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "arangr [path]",
		Short: "Browse directories and preview files in the terminal",
		Long: `arangr is a terminal file explorer with a preview pane for text, images,
office documents and PDFs.

Without a subcommand it opens the browser at path (a directory to list or a
file to select), falling back to browse.start_path and the working directory.

Examples:
  arangr                     # Browse the current directory
  arangr ~/Documents         # Browse a specific directory
  arangr preview report.docx # Print the preview of one file
  arangr ls --hidden .       # List a directory the way the browser does
  arangr props photo.jpg     # Show file properties`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE:         c.runBrowse,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&c.cfgFile, "config", "", "config file (default: $XDG_CONFIG_HOME/arangr/config.yaml)")
	flags.Bool("hidden", false, "show hidden files")
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "mirror debug logs to stderr (subcommands only)")

	root.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		return c.setup(cmd)
	}
	root.PersistentPostRun = func(*cobra.Command, []string) {
		_ = logging.Close()
	}

	root.AddCommand(
		c.newBrowseCmd(),
		c.newPreviewCmd(),
		c.newLsCmd(),
		c.newClassifyCmd(),
		c.newPropsCmd(),
		newVersionCmd(),
	)
	return root
}

// setup loads configuration and starts logging. The browser owns the
// terminal, so only subcommands mirror logs to stderr.
func (c *cli) setup(cmd *cobra.Command) error {
	hidden := cmd.Flags().Lookup("hidden")
	bindHidden := func(v *viper.Viper) error {
		if hidden == nil || !hidden.Changed {
			return nil
		}
		return v.BindPFlag("browse.show_hidden", hidden)
	}

	cfg, err := config.Load(c.cfgFile, bindHidden)
	if err != nil {
		return err
	}
	c.cfg = cfg

	console := ""
	if c.verbose && !isBrowse(cmd) {
		console = "debug"
	}
	if err := logging.Init(cfg.LogConfig(console)); err != nil {
		return fmt.Errorf("initializing logging: %w", err)
	}
	logging.Get("cli").Debug("configuration loaded", "file", cfg.File, "command", cmd.Name())
	return nil
}

func isBrowse(cmd *cobra.Command) bool {
	return !cmd.HasParent() || cmd.Name() == "browse"
}
