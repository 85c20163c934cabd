// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ezzhamed/bilimkapsulu.ai/internal/analytics"
	"github.com/ezzhamed/bilimkapsulu.ai/pkg/types"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show reading statistics",
	Long: `Stats summarizes your reading: papers and minutes per day and per week,
completed reads per category, the current and longest daily streaks, and
totals over the trailing year.`,
	RunE: runStats,
}

func init() {
	statsCmd.Flags().Int("days", 7, "days of daily statistics to show")
	statsCmd.Flags().Int("weeks", 4, "weeks of weekly statistics to show")
	statsCmd.Flags().Bool("json", false, "output statistics as JSON")

	rootCmd.AddCommand(statsCmd)
}

// statsReport groups every statistic for the JSON output.
type statsReport struct {
	Daily      []types.DailyBucket       `json:"daily"`
	Weekly     []types.WeeklyBucket      `json:"weekly"`
	Categories []analytics.CategoryCount `json:"categories"`
	Streak     types.Streak              `json:"streak"`
	Totals     types.ReadingTotals       `json:"totals"`
}

func runStats(cmd *cobra.Command, args []string) error {
	days, _ := cmd.Flags().GetInt("days")
	weeks, _ := cmd.Flags().GetInt("weeks")
	asJSON, _ := cmd.Flags().GetBool("json")

	store, err := openLibrary(appConfig())
	if err != nil {
		return err
	}
	defer store.Close()

	engine := analytics.New(store)
	ctx := context.Background()

	var report statsReport
	if report.Daily, err = engine.DailyStats(ctx, days); err != nil {
		return err
	}
	if report.Weekly, err = engine.WeeklyStats(ctx, weeks); err != nil {
		return err
	}
	if report.Categories, err = engine.CategoryStats(ctx); err != nil {
		return err
	}
	if report.Streak, err = engine.Streak(ctx); err != nil {
		return err
	}
	if report.Totals, err = engine.Totals(ctx); err != nil {
		return err
	}

	if asJSON {
		return json.NewEncoder(os.Stdout).Encode(report)
	}
	printStats(report)
	return nil
}

func printStats(report statsReport) {
	fmt.Println("Daily:")
	for _, d := range report.Daily {
		fmt.Printf("  %s  %2d paper(s)  %4d min  %s\n",
			d.Date, d.PapersRead, d.Minutes, bar(d.Minutes))
	}

	fmt.Println("\nWeekly:")
	for _, w := range report.Weekly {
		fmt.Printf("  week of %s  %2d paper(s)  %4d min\n",
			w.WeekStart, w.PapersRead, w.TotalMinutes)
	}

	if len(report.Categories) > 0 {
		fmt.Println("\nCategories:")
		for _, c := range report.Categories {
			fmt.Printf("  %-20s %d completed\n", c.Category, c.Completed)
		}
	}

	fmt.Printf("\nStreak: %d day(s) current, %d day(s) longest\n",
		report.Streak.Current, report.Streak.Longest)
	fmt.Printf("Last year: %d paper(s), %d min total, %d min/paper average\n",
		report.Totals.TotalPapers, report.Totals.TotalMinutes, report.Totals.AvgMinutesPerPaper)
}

// bar renders minutes as a small text gauge, one mark per 15 minutes.
func bar(minutes int) string {
	n := minutes / 15
	if n > 16 {
		n = 16
	}
	return strings.Repeat("#", n)
}
