package terrain

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Parse reads a text map: one character per tile, every line the same
// width. Unknown characters become water.
func Parse(r io.Reader) (*Map, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	width := -1
	var data []Terrain
	line := 0
	for sc.Scan() {
		line++
		row := []rune(sc.Text())
		if width < 0 {
			width = len(row)
		} else if len(row) != width {
			return nil, fmt.Errorf("%w: line %d has %d tiles, want %d", ErrRaggedMap, line, len(row), width)
		}
		for _, ch := range row {
			data = append(data, FromSymbol(ch))
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading terrain map: %w", err)
	}
	if width <= 0 {
		return nil, ErrEmptyMap
	}
	return New(width, len(data)/width, data)
}

// Load reads a map file. Files ending in .civ5map are decoded as Civilization
// V maps, anything else as a text map.
func Load(path string) (*Map, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open terrain map: %w", err)
	}
	defer f.Close()

	var m *Map
	if strings.EqualFold(filepath.Ext(path), ".civ5map") {
		m, err = DecodeCiv5(bufio.NewReader(f))
	} else {
		m, err = Parse(f)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if m.name == "" {
		m.name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return m, nil
}
