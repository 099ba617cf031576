package feed

import (
	"fmt"
	"os"
	"strings"
)

// ReadLinks loads the feed URL list: one URL per line, blank lines and
// lines starting with # skipped. The list order is preserved, it drives
// the delivery order later.
func ReadLinks(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read links file: %w", err)
	}

	var links []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		links = append(links, line)
	}

	if len(links) == 0 {
		return nil, fmt.Errorf("no feed links found in %s", path)
	}

	return links, nil
}
