package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var reduceReason string

var reduceCmd = &cobra.Command{
	Use:   "reduce <governor-id> <percentage>",
	Short: "Record a KPI reduction for a governor",
	Args:  cobra.ExactArgs(2),
	RunE:  runReduce,
}

var unreduceCmd = &cobra.Command{
	Use:   "unreduce <adjustment-id>",
	Short: "Delete a KPI reduction ledger entry",
	Args:  cobra.ExactArgs(1),
	RunE:  runUnreduce,
}

func init() {
	rootCmd.AddCommand(reduceCmd)
	rootCmd.AddCommand(unreduceCmd)

	reduceCmd.Flags().StringVarP(&reduceReason, "reason", "r", "", "reason recorded in the ledger")
}

func runReduce(cmd *cobra.Command, args []string) error {
	pct, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("invalid percentage %q: %w", args[1], err)
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	adj, err := a.adjustments.ApplyReduction(cmd.Context(), args[0], pct, reduceReason)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "adjustment %d: %s (%s) reduced by %.2f%%\n",
		adj.ID, adj.GovernorID, adj.GovernorName, adj.ReductionPercentage)
	return nil
}

func runUnreduce(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid adjustment id %q: %w", args[0], err)
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.adjustments.RemoveReduction(cmd.Context(), id); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "adjustment %d removed\n", id)
	return nil
}
