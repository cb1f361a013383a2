package client

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

const separatorWidth = 40

func separator() string {
	return strings.Repeat("-", separatorWidth)
}

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func outputJSON(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("output")
	return v
}

func parseNoteID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid note id %q", arg)
	}
	return id, nil
}

// readContent returns the note body from a file, or from stdin when path is "-".
func readContent(cmd *cobra.Command, path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read content: %w", err)
	}
	return string(data), nil
}

func printNoteSummary(w io.Writer, n *Note) {
	fmt.Fprintf(w, "%s %s\n", formatNoteID(n.ID), n.Title)
	fmt.Fprintf(w, "   Updated: %s\n", n.UpdatedAt.Local().Format("2006-01-02 15:04"))
}

func printNoteList(w io.Writer, notes []*Note) {
	for i, n := range notes {
		printNoteSummary(w, n)
		if i < len(notes)-1 {
			fmt.Fprintln(w, separator())
		}
	}
}

func printNote(w io.Writer, n *Note) {
	fmt.Fprintf(w, "ID: %d\n", n.ID)
	fmt.Fprintf(w, "Title: %s\n", n.Title)
	fmt.Fprintf(w, "Created: %s\n", n.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "Updated: %s\n", n.UpdatedAt.Local().Format("2006-01-02 15:04:05"))
	fmt.Fprintln(w)
	fmt.Fprintln(w, "--- Content ---")
	fmt.Fprintln(w, n.Content)
}
