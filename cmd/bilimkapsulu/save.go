// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ezzhamed/bilimkapsulu.ai/pkg/types"
)

var saveCmd = &cobra.Command{
	Use:   "save <paper-id>",
	Short: "Save a paper to the offline library",
	Long: `Save stores the full paper record locally so it stays readable without
network access. The paper is located by running the given query (--query)
and picking the result with the matching id; alternatively --file reads a
paper JSON record directly.

With --with-pdf the paper's PDF is downloaded too and its read time is
re-estimated from the actual word count.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSave,
}

var unsaveCmd = &cobra.Command{
	Use:   "unsave <paper-id>",
	Short: "Remove a paper from the offline library",
	Args:  cobra.ExactArgs(1),
	RunE:  runUnsave,
}

var savedCmd = &cobra.Command{
	Use:   "saved",
	Short: "List the offline library",
	RunE:  runSaved,
}

var savedClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Wipe the library: saved papers, notes, highlights, and statistics",
	RunE:  runSavedClear,
}

func init() {
	saveCmd.Flags().String("query", "", "search query used to locate the paper")
	saveCmd.Flags().String("file", "", "read the paper record from a JSON file instead")
	saveCmd.Flags().Bool("with-pdf", false, "also download the PDF for offline reading")
	savedCmd.Flags().Bool("json", false, "output the library as JSON")
	savedClearCmd.Flags().Bool("yes", false, "confirm wiping all local data")

	savedCmd.AddCommand(savedClearCmd)
	rootCmd.AddCommand(saveCmd, unsaveCmd, savedCmd)
}

func runSave(cmd *cobra.Command, args []string) error {
	query, _ := cmd.Flags().GetString("query")
	file, _ := cmd.Flags().GetString("file")
	withPDF, _ := cmd.Flags().GetBool("with-pdf")

	cfg := appConfig()
	ctx := context.Background()

	paper, err := locatePaper(ctx, cfg, args, query, file)
	if err != nil {
		return err
	}

	store, err := openLibrary(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	saved, err := store.SavePaper(ctx, paper)
	if err != nil {
		return err
	}
	fmt.Printf("Saved %s: %s\n", saved.ID, saved.Paper.Title)

	if withPDF {
		client := &http.Client{Timeout: 2 * time.Minute}
		path, err := store.AttachPDF(ctx, client, saved.ID)
		if err != nil {
			return fmt.Errorf("saving PDF: %w", err)
		}
		fmt.Printf("PDF stored at %s\n", path)
	}
	return nil
}

// locatePaper resolves the paper record to save, either from a JSON file or
// by searching and matching the id.
func locatePaper(ctx context.Context, cfg types.AppConfig, args []string, query, file string) (types.Paper, error) {
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return types.Paper{}, fmt.Errorf("reading paper file: %w", err)
		}
		var paper types.Paper
		if err := json.Unmarshal(data, &paper); err != nil {
			return types.Paper{}, fmt.Errorf("parsing paper file: %w", err)
		}
		if paper.ID == "" {
			return types.Paper{}, fmt.Errorf("paper file has no id")
		}
		return paper, nil
	}

	if query == "" {
		return types.Paper{}, fmt.Errorf("provide --query to locate the paper, or --file with a paper record")
	}

	agg, err := newAggregator(cfg)
	if err != nil {
		return types.Paper{}, err
	}
	res, err := agg.Search(ctx, types.SearchQuery{Text: query, Source: types.SourceAll})
	if err != nil {
		return types.Paper{}, err
	}
	if len(args) == 0 {
		if len(res.Papers) == 0 {
			return types.Paper{}, fmt.Errorf("no results for %q", query)
		}
		return res.Papers[0], nil
	}
	for _, p := range res.Papers {
		if p.ID == args[0] {
			return p, nil
		}
	}
	return types.Paper{}, fmt.Errorf("paper %s not in the results for %q", args[0], query)
}

func runUnsave(cmd *cobra.Command, args []string) error {
	store, err := openLibrary(appConfig())
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.RemovePaper(context.Background(), args[0]); err != nil {
		return err
	}
	fmt.Printf("Removed %s\n", args[0])
	return nil
}

func runSaved(cmd *cobra.Command, args []string) error {
	asJSON, _ := cmd.Flags().GetBool("json")

	store, err := openLibrary(appConfig())
	if err != nil {
		return err
	}
	defer store.Close()

	papers, err := store.AllSavedPapers(context.Background())
	if err != nil {
		return err
	}
	if asJSON {
		return json.NewEncoder(os.Stdout).Encode(papers)
	}

	if len(papers) == 0 {
		fmt.Println("The library is empty.")
		return nil
	}
	for _, saved := range papers {
		pdf := ""
		if saved.PDFPath != "" {
			pdf = " [pdf]"
		}
		fmt.Printf("%-14s %3d%%%s  %s\n", saved.ID, saved.Progress, pdf, saved.Paper.Title)
	}
	return nil
}

func runSavedClear(cmd *cobra.Command, args []string) error {
	yes, _ := cmd.Flags().GetBool("yes")
	if !yes {
		return fmt.Errorf("this wipes all saved papers, notes, highlights, and statistics; rerun with --yes")
	}

	store, err := openLibrary(appConfig())
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.ClearAll(); err != nil {
		return err
	}
	fmt.Println("Library cleared.")
	return nil
}
