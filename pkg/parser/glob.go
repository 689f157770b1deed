package parser

import (
	"fmt"
	"path/filepath"
	"sort"
)

// ExpandInputs expands file paths and glob patterns into a deduplicated,
// sorted list of files. Patterns matching nothing are kept as literal paths
// so the open error names them. StdinName is rejected here; callers handle
// stdin before expanding.
func ExpandInputs(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var result []string

	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			result = append(result, p)
		}
	}

	for _, pattern := range patterns {
		if pattern == StdinName {
			return nil, fmt.Errorf("stdin (%q) cannot be combined with file inputs", StdinName)
		}

		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid glob pattern %q: %w", pattern, err)
		}

		if len(matches) == 0 {
			add(pattern)
			continue
		}
		for _, match := range matches {
			add(match)
		}
	}

	sort.Strings(result)

	return result, nil
}

// OpenSource returns a LineSource for the given inputs. An empty list, or a
// single StdinName, uses the source built by stdin.
func OpenSource(inputs []string, stdin func() LineSource) (LineSource, []string, error) {
	if len(inputs) == 0 || (len(inputs) == 1 && inputs[0] == StdinName) {
		return stdin(), []string{StdinName}, nil
	}

	files, err := ExpandInputs(inputs)
	if err != nil {
		return nil, nil, err
	}
	if len(files) == 0 {
		return nil, nil, fmt.Errorf("no input files matched %v", inputs)
	}
	return NewFileSource(files), files, nil
}
