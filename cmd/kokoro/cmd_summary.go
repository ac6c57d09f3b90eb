package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"kokorolog/internal/report"
)

var (
	summaryClass string
	summaryDays  int
)

// summaryCmd prints the weekly report to the terminal
var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print the class emotion report",
	Long: `Aggregates the journal over the last N days and prints the
headline, an ASCII distribution chart, and the coaching suggestions.`,
	RunE: runSummary,
}

var riskColors = map[string]*color.Color{
	report.RiskLow:    color.New(color.FgGreen, color.Bold),
	report.RiskMedium: color.New(color.FgYellow, color.Bold),
	report.RiskHigh:   color.New(color.FgRed, color.Bold),
}

func runSummary(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	r, err := report.NewGenerator(st, 0).Summary(cmd.Context(), summaryClass, summaryDays)
	if err != nil {
		return err
	}

	fmt.Println(r.Headline)
	fmt.Println()
	for _, row := range r.ASCIIRows {
		fmt.Println("  " + row)
	}
	fmt.Println()
	for _, h := range r.Highlights {
		fmt.Println("  " + h)
	}
	if len(r.Highlights) > 0 {
		fmt.Println()
	}

	rc := riskColors[r.Coach.RiskLevel]
	fmt.Printf("risk: %s\n", rc.Sprint(r.Coach.RiskLabel))
	for _, s := range r.Coach.Suggestions {
		fmt.Println("  - " + s)
	}
	fmt.Printf("\n%d日間 %d件 (平均 %.1f件/日, 記入日 %d日)\n",
		r.RangeDays, r.KPI.Total, r.Stats.MeanPerDay, r.Stats.ActiveDays)
	return nil
}

func init() {
	summaryCmd.Flags().StringVar(&summaryClass, "class", "", "Class ID (empty: all classes)")
	summaryCmd.Flags().IntVar(&summaryDays, "days", 7, "Window length in days")
}
