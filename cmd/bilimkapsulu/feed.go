// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ezzhamed/bilimkapsulu.ai/internal/curated"
	"github.com/ezzhamed/bilimkapsulu.ai/pkg/types"
)

var feedCmd = &cobra.Command{
	Use:   "feed [category]",
	Short: "Browse category, trending, and all-sources paper feeds",
	Long: `Feed shows recent papers for a category (default), globally trending
papers (--trending), or a combined feed with a balanced contribution from
every source (--all-sources). Curated papers for the category, when a
curated file is configured, are listed first.

Categories use their Turkish names, e.g. "Yapay Zeka", "Fizik", "Tıp".
Run with no arguments to list the available categories.`,
	RunE: runFeed,
}

func init() {
	feedCmd.Flags().Bool("trending", false, "show globally trending papers")
	feedCmd.Flags().Bool("all-sources", false, "combine all sources for the category")
	feedCmd.Flags().Int("page", 1, "feed page (1-indexed)")
	feedCmd.Flags().Int("per-page", 12, "papers per page")
	feedCmd.Flags().Bool("json", false, "output results as JSON")

	rootCmd.AddCommand(feedCmd)
}

func runFeed(cmd *cobra.Command, args []string) error {
	trending, _ := cmd.Flags().GetBool("trending")
	allSources, _ := cmd.Flags().GetBool("all-sources")
	page, _ := cmd.Flags().GetInt("page")
	perPage, _ := cmd.Flags().GetInt("per-page")
	asJSON, _ := cmd.Flags().GetBool("json")

	if len(args) == 0 && !trending {
		fmt.Println("Available categories:")
		for _, cat := range types.AllTopics {
			fmt.Printf("  %s\n", cat)
		}
		return nil
	}

	cfg := appConfig()
	agg, err := newAggregator(cfg)
	if err != nil {
		return err
	}

	var res types.FeedResult
	var cat types.TopicCategory
	ctx := context.Background()
	switch {
	case trending:
		res, err = agg.Trending(ctx, page)
	case allSources:
		cat = types.TopicCategory(strings.Join(args, " "))
		res, err = agg.AllSources(ctx, cat, page)
	default:
		cat = types.TopicCategory(strings.Join(args, " "))
		res, err = agg.CategoryFeed(ctx, cat, page, perPage)
	}
	if err != nil {
		return err
	}

	var curatedPapers []types.Paper
	if cat != "" {
		all, err := curated.Load(cfg.CuratedFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		} else {
			curatedPapers = curated.ByCategory(all, cat)
		}
	}

	if asJSON {
		return json.NewEncoder(os.Stdout).Encode(struct {
			Curated []types.Paper `json:"curated,omitempty"`
			types.FeedResult
		}{curatedPapers, res})
	}

	for _, e := range res.Errors {
		fmt.Fprintf(os.Stderr, "warning: %s\n", e.Error())
	}
	if res.FromCache {
		fmt.Fprintln(os.Stderr, "(served from cache)")
	}

	if len(curatedPapers) > 0 {
		fmt.Println("Curated:")
		printPapers(curatedPapers)
		fmt.Println()
	}
	if len(res.Papers) == 0 {
		fmt.Println("No papers in the feed.")
		return nil
	}
	printPapers(res.Papers)
	return nil
}
