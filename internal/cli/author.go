package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/bibliotheca/internal/catalog"
	"github.com/mesh-intelligence/bibliotheca/pkg/types"
)

func newAuthorCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "author",
		Short: "Manage registered authors",
	}
	cmd.AddCommand(newAuthorAddCmd(a), newAuthorListCmd(a), newAuthorDeleteCmd(a))
	return cmd
}

func newAuthorAddCmd(a *app) *cobra.Command {
	var fields types.AuthorFields
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register an author",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if fields.Name == "" {
				return userError(fmt.Errorf("add: --name is required"))
			}
			return a.withCatalog(func(cat *catalog.Store) error {
				au, err := cat.AddAuthor(fields)
				if err != nil {
					return classify("add", err)
				}
				return writeAuthor(cmd.OutOrStdout(), a.flags.jsonMode, au)
			})
		},
	}
	cmd.Flags().StringVar(&fields.Name, "name", "", "author name")
	cmd.Flags().StringVar(&fields.Nationality, "nationality", "", "nationality")
	cmd.Flags().StringVar(&fields.BirthYear, "birth-year", "", "year of birth")
	cmd.Flags().StringVar(&fields.Bio, "bio", "", "short biography")
	return cmd
}

func newAuthorListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered authors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withCatalog(func(cat *catalog.Store) error {
				return writeAuthors(cmd.OutOrStdout(), a.flags.jsonMode, cat.Authors())
			})
		},
	}
}

func newAuthorDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Remove an author by ID; books naming the author are kept",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withCatalog(func(cat *catalog.Store) error {
				removed, err := cat.DeleteAuthor(args[0])
				if err != nil {
					return classify("delete", err)
				}
				if !removed {
					return userError(fmt.Errorf("author %q not found", args[0]))
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted author %s\n", args[0])
				return nil
			})
		},
	}
}
