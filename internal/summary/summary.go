package summary

import (
	"fmt"
	"io"
	"os"

	"my-discord-bot/internal/tracker"
)

// Render writes the per-feed markdown tables shown in the CI job summary.
func Render(w io.Writer, s *tracker.Summary) error {
	if _, err := fmt.Fprintf(w, "## RSS Feed Summary\n\n"); err != nil {
		return err
	}

	fmt.Fprintln(w, "| Feed | Available | Selected | New | Duplicate | Posted | Failed |")
	fmt.Fprintln(w, "| --- | --- | --- | --- | --- | --- | --- |")
	for _, feedStats := range s.Feeds {
		name := feedStats.FeedTitle
		if name == "" {
			name = feedStats.SourceURL
		}
		fmt.Fprintf(w, "| %s | %d | %d | %d | %d | %d | %d |\n",
			name,
			feedStats.Available,
			feedStats.Selected,
			feedStats.New,
			feedStats.Duplicate,
			feedStats.Posted,
			feedStats.Failed,
		)
	}

	if s.DuplicateCount() > 0 {
		fmt.Fprintf(w, "\n## Duplicate Entries\n\n")
		fmt.Fprintln(w, "| Feed | URL |")
		fmt.Fprintln(w, "| --- | --- |")
		for _, feedStats := range s.Feeds {
			name := feedStats.FeedTitle
			if name == "" {
				name = feedStats.SourceURL
			}
			for _, link := range feedStats.Duplicates {
				fmt.Fprintf(w, "| %s | %s |\n", name, link)
			}
		}
	}

	failed := s.FailedFeeds()
	if len(failed) > 0 {
		fmt.Fprintf(w, "\n## Failed Feeds\n\n")
		fmt.Fprintln(w, "| Feed | Error |")
		fmt.Fprintln(w, "| --- | --- |")
		for _, feedStats := range failed {
			fmt.Fprintf(w, "| %s | %s |\n", feedStats.SourceURL, feedStats.FetchErr)
		}
	}

	return nil
}

// Emit publishes the markdown summary when running under GitHub Actions:
// appended to $GITHUB_STEP_SUMMARY when set, printed to stdout otherwise.
// Outside CI it does nothing.
func Emit(s *tracker.Summary) error {
	if os.Getenv("GITHUB_ACTIONS") != "true" {
		return nil
	}

	path := os.Getenv("GITHUB_STEP_SUMMARY")
	if path == "" {
		return Render(os.Stdout, s)
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open step summary: %w", err)
	}
	defer file.Close()

	return Render(file, s)
}
