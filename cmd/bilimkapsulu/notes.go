// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ezzhamed/bilimkapsulu.ai/pkg/types"
)

var noteCmd = &cobra.Command{
	Use:   "note",
	Short: "Manage notes on papers",
}

var noteAddCmd = &cobra.Command{
	Use:   "add <paper-id> <content...>",
	Short: "Add a note to a paper",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openLibrary(appConfig())
		if err != nil {
			return err
		}
		defer store.Close()

		note, err := store.AddNote(context.Background(), args[0], strings.Join(args[1:], " "))
		if err != nil {
			return err
		}
		fmt.Printf("Note %s added\n", note.ID)
		return nil
	},
}

var noteEditCmd = &cobra.Command{
	Use:   "edit <note-id> <content...>",
	Short: "Replace a note's content",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openLibrary(appConfig())
		if err != nil {
			return err
		}
		defer store.Close()

		return store.UpdateNote(context.Background(), args[0], strings.Join(args[1:], " "))
	},
}

var noteRmCmd = &cobra.Command{
	Use:   "rm <note-id>",
	Short: "Delete a note",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openLibrary(appConfig())
		if err != nil {
			return err
		}
		defer store.Close()

		return store.DeleteNote(context.Background(), args[0])
	},
}

var noteListCmd = &cobra.Command{
	Use:   "list <paper-id>",
	Short: "List a paper's notes, newest first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")

		store, err := openLibrary(appConfig())
		if err != nil {
			return err
		}
		defer store.Close()

		notes, err := store.NotesByPaper(context.Background(), args[0])
		if err != nil {
			return err
		}
		if asJSON {
			return json.NewEncoder(os.Stdout).Encode(notes)
		}
		if len(notes) == 0 {
			fmt.Println("No notes on this paper.")
			return nil
		}
		for _, n := range notes {
			created := time.UnixMilli(n.CreatedAt).Format("2006-01-02 15:04")
			fmt.Printf("%s  %s\n  %s\n", n.ID, created, n.Content)
		}
		return nil
	},
}

var highlightCmd = &cobra.Command{
	Use:   "highlight",
	Short: "Manage highlights on papers",
}

var highlightAddCmd = &cobra.Command{
	Use:   "add <paper-id> <text...>",
	Short: "Highlight a text span in a paper",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		color, _ := cmd.Flags().GetString("color")
		start, _ := cmd.Flags().GetInt("start")
		end, _ := cmd.Flags().GetInt("end")

		store, err := openLibrary(appConfig())
		if err != nil {
			return err
		}
		defer store.Close()

		h, err := store.AddHighlight(context.Background(), types.Highlight{
			PaperID:     args[0],
			Text:        strings.Join(args[1:], " "),
			Color:       types.HighlightColor(color),
			StartOffset: start,
			EndOffset:   end,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Highlight %s added\n", h.ID)
		return nil
	},
}

var highlightRmCmd = &cobra.Command{
	Use:   "rm <highlight-id>",
	Short: "Delete a highlight",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openLibrary(appConfig())
		if err != nil {
			return err
		}
		defer store.Close()

		return store.DeleteHighlight(context.Background(), args[0])
	},
}

var highlightListCmd = &cobra.Command{
	Use:   "list <paper-id>",
	Short: "List a paper's highlights in document order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")

		store, err := openLibrary(appConfig())
		if err != nil {
			return err
		}
		defer store.Close()

		highlights, err := store.HighlightsByPaper(context.Background(), args[0])
		if err != nil {
			return err
		}
		if asJSON {
			return json.NewEncoder(os.Stdout).Encode(highlights)
		}
		if len(highlights) == 0 {
			fmt.Println("No highlights on this paper.")
			return nil
		}
		for _, h := range highlights {
			span := ""
			if h.EndOffset > h.StartOffset {
				span = " [" + strconv.Itoa(h.StartOffset) + "-" + strconv.Itoa(h.EndOffset) + "]"
			}
			fmt.Printf("%s  (%s)%s  %q\n", h.ID, h.Color, span, h.Text)
		}
		return nil
	},
}

func init() {
	noteListCmd.Flags().Bool("json", false, "output notes as JSON")
	highlightAddCmd.Flags().String("color", "yellow", "highlight color: yellow, green, blue, pink, or purple")
	highlightAddCmd.Flags().Int("start", 0, "start offset of the highlighted span")
	highlightAddCmd.Flags().Int("end", 0, "end offset of the highlighted span")
	highlightListCmd.Flags().Bool("json", false, "output highlights as JSON")

	noteCmd.AddCommand(noteAddCmd, noteEditCmd, noteRmCmd, noteListCmd)
	highlightCmd.AddCommand(highlightAddCmd, highlightRmCmd, highlightListCmd)
	rootCmd.AddCommand(noteCmd, highlightCmd)
}
