package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/bibliotheca/internal/catalog"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize biblio storage",
		Long: "Create the configuration and data directories, write a default config.yaml,\n" +
			"and open the catalog, seeding it with sample data when it is empty.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.storeConfig()
			if err != nil {
				return sysError(err)
			}
			configPath := filepath.Join(a.configDir, configFileExt)
			if err := writeConfigIfMissing(configPath); err != nil {
				return sysError(fmt.Errorf("write config: %w", err))
			}

			return a.withCatalog(func(cat *catalog.Store) error {
				c := cat.Catalog()
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, "biblio initialized successfully")
				fmt.Fprintln(out, "  config: ", configPath)
				fmt.Fprintln(out, "  data:   ", cfg.DataDir)
				fmt.Fprintln(out, "  backend:", cfg.Backend)
				fmt.Fprintf(out, "  catalog: %d books, %d authors\n", len(c.Books), len(c.Authors))
				return nil
			})
		},
	}
}
