package main

import (
	"fmt"
	"kvk-dashboard/internal/domain"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var (
	statusName  string
	statusFlags domain.StatusFlags
	statusFlag  string
)

var statusCmd = &cobra.Command{
	Use:   "status <governor-id>",
	Short: "Set the status flags of a governor",
	Long: `Set the status flags of a governor. Flags not given are cleared.
Any set flag removes the governor from every KPI view.`,
	Args: cobra.ExactArgs(1),
	RunE: runStatus,
}

var statusesCmd = &cobra.Command{
	Use:   "statuses",
	Short: "List the status registry",
	Args:  cobra.NoArgs,
	RunE:  runStatuses,
}

func init() {
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(statusesCmd)

	statusCmd.Flags().StringVar(&statusName, "name", "", "governor name (required for unknown governors)")
	statusCmd.Flags().BoolVar(&statusFlags.OnLeave, "on-leave", false, "mark as on leave")
	statusCmd.Flags().BoolVar(&statusFlags.Zeroed, "zeroed", false, "mark as zeroed")
	statusCmd.Flags().BoolVar(&statusFlags.FarmAccount, "farm", false, "mark as farm account")
	statusCmd.Flags().BoolVar(&statusFlags.Blacklisted, "blacklisted", false, "mark as blacklisted")
	statusesCmd.Flags().StringVar(&statusFlag, "flag", "", "only governors with this flag (onLeave, zeroed, farmAccount, blacklisted)")
}

func runStatus(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	rec, err := a.statuses.UpdateStatus(cmd.Context(), args[0], statusName, statusFlags)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s (%s): excluded=%t\n", rec.GovernorID, rec.GovernorName, rec.Excluded())
	return nil
}

func runStatuses(cmd *cobra.Command, _ []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	records, err := a.statuses.ListStatuses(cmd.Context(), statusFlag)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tON LEAVE\tZEROED\tFARM\tBLACKLISTED")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%t\t%t\t%t\t%t\n",
			r.GovernorID, r.GovernorName, r.OnLeave, r.Zeroed, r.FarmAccount, r.Blacklisted)
	}
	return tw.Flush()
}
