// Package pack loads curated vocabulary word lists.
package pack

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strings"
)

// Load reads a newline-separated word list. Lines are trimmed, blanks
// dropped, duplicates collapsed; the result is sorted so admission order is
// stable across loads.
func Load(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pack file: %w", err)
	}
	defer f.Close()

	seen := make(map[string]struct{})
	var words []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		word := strings.TrimSpace(scanner.Text())
		if word == "" {
			continue
		}
		if _, dup := seen[word]; dup {
			continue
		}
		seen[word] = struct{}{}
		words = append(words, word)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read pack file: %w", err)
	}

	sort.Strings(words)
	return words, nil
}
