// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ezzhamed/bilimkapsulu.ai/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search [query...]",
	Short: "Search academic sources for papers",
	Long: `Search queries OpenAlex, arXiv, and Semantic Scholar concurrently and
merges the results: duplicates are collapsed by title, the copy with more
citations wins, and the merged list is ranked by citation count. A source
that fails is reported on stderr without failing the whole search.

Results are cached for 15 minutes; repeating a query within that window
makes no network calls.`,
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().String("source", "all", "source to query: all, openalex, arxiv, or semantic")
	searchCmd.Flags().Int("page", 1, "result page (1-indexed)")
	searchCmd.Flags().Int("page-size", 12, "results per page per source")
	searchCmd.Flags().Bool("json", false, "output results as JSON")

	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("provide a search query")
	}
	sourceName, _ := cmd.Flags().GetString("source")
	page, _ := cmd.Flags().GetInt("page")
	pageSize, _ := cmd.Flags().GetInt("page-size")
	asJSON, _ := cmd.Flags().GetBool("json")

	agg, err := newAggregator(appConfig())
	if err != nil {
		return err
	}

	res, err := agg.Search(context.Background(), types.SearchQuery{
		Text:     strings.Join(args, " "),
		Source:   types.SourceName(sourceName),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		return err
	}

	if asJSON {
		return json.NewEncoder(os.Stdout).Encode(res)
	}
	printSearchResult(res)
	return nil
}

func printSearchResult(res types.SearchResult) {
	for _, e := range res.Errors {
		fmt.Fprintf(os.Stderr, "warning: %s\n", e.Error())
	}
	if res.FromCache {
		fmt.Fprintln(os.Stderr, "(served from cache)")
	}

	if len(res.Papers) == 0 {
		fmt.Println("No papers found.")
		return
	}
	printPapers(res.Papers)

	fmt.Printf("\n%d paper(s) (openalex: %d, arxiv: %d, semantic: %d)",
		len(res.Papers), res.Counts.OpenAlex, res.Counts.Arxiv, res.Counts.Semantic)
	if res.HasMore {
		fmt.Print(", more pages available")
	}
	fmt.Println()
}

func printPapers(papers []types.Paper) {
	for i, p := range papers {
		fmt.Printf("%2d. %s\n", i+1, p.Title)
		if p.OriginalTitle != "" && p.OriginalTitle != p.Title {
			fmt.Printf("    (%s)\n", p.OriginalTitle)
		}
		meta := []string{}
		if len(p.Authors) > 0 {
			meta = append(meta, strings.Join(p.Authors, ", "))
		}
		if p.PublicationYear > 0 {
			meta = append(meta, fmt.Sprintf("%d", p.PublicationYear))
		}
		if p.Journal != "" {
			meta = append(meta, p.Journal)
		}
		meta = append(meta, fmt.Sprintf("%d citation(s)", p.Citations))
		fmt.Printf("    %s\n", strings.Join(meta, " · "))
		fmt.Printf("    id: %s", p.ID)
		if p.ReadMinutes > 0 {
			fmt.Printf("  ~%d min", p.ReadMinutes)
		}
		fmt.Println()
	}
}
