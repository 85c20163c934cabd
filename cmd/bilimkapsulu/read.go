// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/ezzhamed/bilimkapsulu.ai/pkg/types"
)

var readCmd = &cobra.Command{
	Use:   "read",
	Short: "Track reading sessions",
	Long: `Read tracks reading sessions against papers. Start a session when you
open a paper, end it with the scroll percentage you reached; a session
reaching 80% counts as a completed read and feeds the daily statistics.`,
}

var readStartCmd = &cobra.Command{
	Use:   "start <paper-id>",
	Short: "Start a reading session",
	Args:  cobra.ExactArgs(1),
	RunE:  runReadStart,
}

var readEndCmd = &cobra.Command{
	Use:   "end <session-id>",
	Short: "End a reading session with the final scroll percentage",
	Args:  cobra.ExactArgs(1),
	RunE:  runReadEnd,
}

var readSessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List recent reading sessions",
	RunE:  runReadSessions,
}

var readProgressCmd = &cobra.Command{
	Use:   "progress <paper-id> <percent>",
	Short: "Record reading progress for a saved paper",
	Args:  cobra.ExactArgs(2),
	RunE:  runReadProgress,
}

func init() {
	readStartCmd.Flags().String("title", "", "paper title for the session record")
	readStartCmd.Flags().String("category", "", "paper category for the session record")
	readEndCmd.Flags().Int("scroll", 0, "scroll percentage reached (0-100)")
	readEndCmd.Flags().Int("duration", 0, "active reading time in seconds (0 derives from elapsed time)")
	readSessionsCmd.Flags().Int("limit", 20, "number of sessions to show")
	readSessionsCmd.Flags().Bool("json", false, "output sessions as JSON")

	readCmd.AddCommand(readStartCmd, readEndCmd, readSessionsCmd, readProgressCmd)
	rootCmd.AddCommand(readCmd)
}

func runReadStart(cmd *cobra.Command, args []string) error {
	title, _ := cmd.Flags().GetString("title")
	category, _ := cmd.Flags().GetString("category")

	store, err := openLibrary(appConfig())
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()
	paperID := args[0]

	// Fall back to the saved paper's own title and category.
	if title == "" || category == "" {
		if saved, err := store.PaperByID(ctx, paperID); err == nil && saved != nil {
			if title == "" {
				title = saved.Paper.Title
			}
			if category == "" {
				category = string(saved.Paper.Category)
			}
		}
	}

	session, err := store.StartSession(ctx, paperID, title, types.TopicCategory(category))
	if err != nil {
		return err
	}
	fmt.Printf("Session %s started for %s\n", session.ID, paperID)
	return nil
}

func runReadEnd(cmd *cobra.Command, args []string) error {
	scroll, _ := cmd.Flags().GetInt("scroll")
	duration, _ := cmd.Flags().GetInt("duration")

	store, err := openLibrary(appConfig())
	if err != nil {
		return err
	}
	defer store.Close()

	session, err := store.EndSession(context.Background(), args[0], scroll, duration)
	if err != nil {
		return err
	}
	if session == nil {
		return nil
	}

	status := "abandoned"
	if session.Completed {
		status = "completed"
	}
	fmt.Printf("Session %s ended: %dm%ds read, %d%% scrolled (%s)\n",
		session.ID, session.DurationSeconds/60, session.DurationSeconds%60,
		session.ScrollPercentage, status)
	return nil
}

func runReadSessions(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	asJSON, _ := cmd.Flags().GetBool("json")

	store, err := openLibrary(appConfig())
	if err != nil {
		return err
	}
	defer store.Close()

	sessions, err := store.RecentSessions(context.Background(), limit)
	if err != nil {
		return err
	}
	if asJSON {
		return json.NewEncoder(os.Stdout).Encode(sessions)
	}

	if len(sessions) == 0 {
		fmt.Println("No reading sessions yet.")
		return nil
	}
	for _, s := range sessions {
		mark := " "
		if s.Completed {
			mark = "*"
		}
		ended := time.UnixMilli(s.EndTime).Format("2006-01-02 15:04")
		fmt.Printf("%s %s  %-40s %3dm %3d%%  %s\n",
			mark, ended, truncate(s.Title, 40), s.DurationSeconds/60, s.ScrollPercentage, s.ID)
	}
	return nil
}

func runReadProgress(cmd *cobra.Command, args []string) error {
	percent, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("percent must be a number: %w", err)
	}

	store, err := openLibrary(appConfig())
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.UpdateProgress(context.Background(), args[0], percent); err != nil {
		return err
	}
	fmt.Printf("Progress recorded for %s\n", args[0])
	return nil
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}
