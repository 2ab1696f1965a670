package writer

import (
	"fmt"
	"strings"

	"github.com/stackforge-labs/stackforge/internal/registry"
)

// mergeBlock replaces the marker-delimited block in existing with content.
// The markers must appear exactly once each, begin before end; anything else
// fails rather than guessing where to insert. Content is expected to carry
// its own marker lines.
func mergeBlock(existing []byte, block string, content []byte) ([]byte, error) {
	begin := registry.BlockBegin(block)
	end := registry.BlockEnd(block)

	lines := strings.Split(string(existing), "\n")
	beginIdx, endIdx := -1, -1
	beginCount, endCount := 0, 0
	for i, line := range lines {
		switch strings.TrimSpace(line) {
		case begin:
			beginCount++
			beginIdx = i
		case end:
			endCount++
			endIdx = i
		}
	}

	switch {
	case beginCount == 0 || endCount == 0:
		return nil, fmt.Errorf("block %q markers not found", block)
	case beginCount > 1 || endCount > 1:
		return nil, fmt.Errorf("block %q markers duplicated", block)
	case endIdx < beginIdx:
		return nil, fmt.Errorf("block %q end marker precedes begin marker", block)
	}

	blockLines := strings.Split(strings.TrimSuffix(string(content), "\n"), "\n")

	merged := make([]string, 0, len(lines)-(endIdx-beginIdx+1)+len(blockLines))
	merged = append(merged, lines[:beginIdx]...)
	merged = append(merged, blockLines...)
	merged = append(merged, lines[endIdx+1:]...)
	return []byte(strings.Join(merged, "\n")), nil
}
