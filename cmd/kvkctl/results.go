package main

import (
	"encoding/json"
	"fmt"
	"io"
	"kvk-dashboard/internal/domain"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var (
	resultsQuery string
	outputJSON   bool
	topLimit     int
)

var resultsCmd = &cobra.Command{
	Use:   "results [scope]",
	Short: "Print ranked KPI results (pass4, pass7, kingland or cumulative)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runResults,
}

var topCmd = &cobra.Command{
	Use:   "top",
	Short: "Print the cumulative leaderboard",
	Args:  cobra.NoArgs,
	RunE:  runTop,
}

func init() {
	rootCmd.AddCommand(resultsCmd)
	rootCmd.AddCommand(topCmd)

	resultsCmd.Flags().StringVarP(&resultsQuery, "query", "q", "", "filter by governor id or name")
	resultsCmd.Flags().BoolVar(&outputJSON, "json", false, "print JSON instead of a table")
	topCmd.Flags().IntVarP(&topLimit, "limit", "n", 0, "number of entries (defaults to LEADERBOARD_SIZE)")
	topCmd.Flags().BoolVar(&outputJSON, "json", false, "print JSON instead of a table")
}

func runResults(cmd *cobra.Command, args []string) error {
	scope := "cumulative"
	if len(args) == 1 {
		scope = args[0]
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	results, err := a.kpis.Results(cmd.Context(), scope, resultsQuery)
	if err != nil {
		return err
	}
	if outputJSON {
		return printJSON(cmd.OutOrStdout(), results)
	}
	return printResults(cmd.OutOrStdout(), results)
}

func runTop(cmd *cobra.Command, _ []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	entries, err := a.leaderboard.Top(cmd.Context(), topLimit)
	if err != nil {
		return err
	}
	if outputJSON {
		return printJSON(cmd.OutOrStdout(), entries)
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tID\tNAME\tPOWER\tKP INCREASE\tKPI %\tT4\tT5\tSOURCE")
	for _, e := range entries {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%d\t%.2f\t%d\t%d\t%s\n",
			e.Rank, e.GovernorID, e.GovernorName, e.Power, e.KillPoints, e.KpiPercentage,
			e.TierKills[3], e.TierKills[4], e.SourcePhase)
	}
	return tw.Flush()
}

func printResults(w io.Writer, results []domain.KpiResult) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tID\tNAME\tKP INCREASE\tKP %\tDEADS\tDEADS %\tKPI %\tREDUCTION\tACHIEVED")
	for i, r := range results {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%.2f\t%d\t%.2f\t%.2f\t%.0f%%\t%t\n",
			i+1, r.GovernorID, r.GovernorName, r.KpIncrease, r.KillPointPercentage,
			r.TotalDeads, r.DeadsPercentage, r.KpiPercentage, r.ReductionPercentage, r.IsAchieved)
	}
	return tw.Flush()
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
