package commands

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/bookclose/recon/internal/model"
	"github.com/bookclose/recon/internal/recitem"
)

func newItemCommand() *cobra.Command {
	itemCmd := &cobra.Command{
		Use:   "item",
		Short: "Reconciling items (charges, interest, outstanding, errors)",
	}
	itemCmd.AddCommand(newItemAddCommand())
	itemCmd.AddCommand(newItemRemoveCommand())
	return itemCmd
}

func newItemAddCommand() *cobra.Command {
	var (
		configPath  string
		actor       string
		itemType    string
		amount      string
		description string
		reference   string
		noAdjusting bool
	)

	cmd := &cobra.Command{
		Use:   "add <session-id>",
		Short: "Add a reconciling item to a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := openRuntime(configPath)
			if err != nil {
				return err
			}
			defer env.Close()

			amt, err := decimal.NewFromString(amount)
			if err != nil {
				return fmt.Errorf("parsing --amount %q: %w", amount, err)
			}

			result, err := env.svc.AddItem(cmd.Context(), args[0], recitem.AddParams{
				Type:                 model.ItemType(itemType),
				Amount:               amt,
				Description:          description,
				Reference:            reference,
				Actor:                actor,
				CreateAdjustingEntry: !noAdjusting,
			})
			if err != nil {
				return err
			}

			fmt.Printf("Item %s added (variance now %s)\n", result.Item.ID, result.Variance.StringFixed(2))
			if result.Item.AdjustingEntryID != "" {
				fmt.Printf("  adjusting entry %s posted\n", result.Item.AdjustingEntryID)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "recon.yaml", "config file")
	cmd.Flags().StringVar(&actor, "actor", "cli", "acting user")
	cmd.Flags().StringVar(&itemType, "type", "", "item type, e.g. BANK_CHARGE (required)")
	cmd.Flags().StringVar(&amount, "amount", "", "signed item amount (required)")
	cmd.Flags().StringVar(&description, "description", "", "item description (required)")
	cmd.Flags().StringVar(&reference, "reference", "", "optional reference")
	cmd.Flags().BoolVar(&noAdjusting, "no-adjusting-entry", false, "skip posting an adjusting entry")
	_ = cmd.MarkFlagRequired("type")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("description")

	return cmd
}

func newItemRemoveCommand() *cobra.Command {
	var (
		configPath string
		actor      string
		reason     string
		noReverse  bool
	)

	cmd := &cobra.Command{
		Use:   "remove <session-id> <item-id>",
		Short: "Remove a reconciling item, reversing its adjusting entry",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := openRuntime(configPath)
			if err != nil {
				return err
			}
			defer env.Close()

			result, err := env.svc.RemoveItem(cmd.Context(), args[0], args[1], reason, actor, !noReverse)
			if err != nil {
				return err
			}

			fmt.Printf("Item %s removed (variance now %s)\n", result.Item.ID, result.Variance.StringFixed(2))
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "recon.yaml", "config file")
	cmd.Flags().StringVar(&actor, "actor", "cli", "acting user")
	cmd.Flags().StringVar(&reason, "reason", "", "reason for removal (required)")
	cmd.Flags().BoolVar(&noReverse, "no-reverse", false, "keep the adjusting entry posted")
	_ = cmd.MarkFlagRequired("reason")

	return cmd
}
