package cli

import (
	"encoding/json"
	"fmt"

	"github.com/DRSN-tech/insumos-backend/internal/usecase"
	"github.com/spf13/cobra"
)

func newProductsCmd(backend Backend) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "products",
		Short: "Inspect the product catalog",
	}

	var (
		query      string
		jsonOutput bool
	)
	list := &cobra.Command{
		Use:   "list",
		Short: "List products, optionally filtered by title or SKU",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			products, err := backend.ListProducts(cmd.Context())
			if err != nil {
				return fmt.Errorf("list products: %w", err)
			}

			products = usecase.FilterProducts(products, query)

			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(toRows(products))
			}

			fmt.Fprint(cmd.OutOrStdout(), RenderProducts(products))
			return nil
		},
	}
	list.Flags().StringVarP(&query, "query", "q", "", "Case-insensitive filter on title or SKU")
	list.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.AddCommand(list)

	return cmd
}
