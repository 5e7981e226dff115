package main

import (
	"fmt"

	"github.com/spf13/cobra"

	sqliteRepo "github.com/sakif/foodgram/internal/repository/sqlite"
	"github.com/sakif/foodgram/internal/service"
)

var shoppingListCmd = &cobra.Command{
	Use:   "shopping-list <user-id>",
	Short: "Print the merged shopping list of a user's cart",
	Long: "shopping-list prints the same text the download endpoint serves: one " +
		"\"name, amount unit\" line per ingredient, amounts summed across the cart.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadConfig(cmd.ErrOrStderr())
		if err != nil {
			return err
		}

		db, err := sqliteRepo.New(cfg.Database.Path)
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer db.Close()

		body, err := service.NewShoppingService(db, log).Export(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if len(body) == 0 {
			fmt.Fprintln(cmd.ErrOrStderr(), "shopping cart is empty")
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(body))
		return nil
	},
}
