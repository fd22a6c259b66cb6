package cmd

import (
	"fmt"
	"io/fs"
	"os"

	"github.com/hvacsim/hvacsim-desktop/bundle"
	"github.com/hvacsim/hvacsim-desktop/internal/app"
	"github.com/hvacsim/hvacsim-desktop/internal/appctx"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "hvacsim",
	Short: "HVAC Simulator",
	Long:  "HVAC Simulator desktop application. Run without arguments to open the main window.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		app.Run()
	},
}

// loadContext generates the context of the embedded bundle, or of the
// bundle directory given with --bundle.
func loadContext(cmd *cobra.Command) (*appctx.Context, error) {
	dir, _ := cmd.Flags().GetString("bundle")

	var src fs.FS = bundle.FS
	if dir != "" {
		if _, err := os.Stat(dir); err != nil {
			return nil, fmt.Errorf("failed to open bundle directory: %w", err)
		}
		src = os.DirFS(dir)
	}

	ctx, err := appctx.Generate(src)
	if err != nil {
		return nil, fmt.Errorf("failed to generate application context: %w", err)
	}
	return ctx, nil
}

// addBundleFlag registers --bundle on commands that inspect a bundle. The
// application itself always runs the embedded one.
func addBundleFlag(cmd *cobra.Command) {
	cmd.Flags().String("bundle", "", "Read the bundle from a directory instead of the embedded one")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
