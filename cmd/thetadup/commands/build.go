// Package commands implements CLI command handlers for thetadup.
package commands

import (
	"bufio"
	"fmt"
	"os"

	"github.com/sawmills/thetadup"
)

func buildFromFile(path string, lgK uint8, seed uint64) (*thetadup.UpdateSketch, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	sketch, err := thetadup.NewBuilder().
		WithLgK(lgK).
		WithSeed(seed).
		Build()
	if err != nil {
		return nil, 0, fmt.Errorf("build sketch: %w", err)
	}

	lines := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		sketch.UpdateString(line)
		lines++
	}
	if err := scanner.Err(); err != nil {
		return nil, 0, fmt.Errorf("read %s: %w", path, err)
	}
	return sketch, lines, nil
}
