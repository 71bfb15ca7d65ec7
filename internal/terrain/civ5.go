package terrain

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrCiv5Format is returned for malformed .civ5map data.
var ErrCiv5Format = errors.New("malformed civ5map")

const (
	civ5MaxString = 1 << 20
	civ5MaxTiles  = 1 << 22
)

type civ5Header struct {
	Version     uint8
	Width       uint32
	Height      uint32
	Players     uint8
	Flags       uint32
	TerrainLen  uint32
	Feature1Len uint32
	Feature2Len uint32
	ResourceLen uint32
	Reserved    uint32
	NameLen     uint32
	DescLen     uint32
}

type civ5Tile struct {
	TerrainID  uint8
	ResourceID uint8
	Feature1ID uint8
	RiverFlags uint8
	Elevation  uint8 // 0 flat, 1 hill, 2 mountain
	Unknown1   uint8
	Feature2ID uint8
	Unknown2   uint8
}

var civ5Terrain = map[string]Terrain{
	"TERRAIN_COAST":  Water,
	"TERRAIN_OCEAN":  Water,
	"TERRAIN_GRASS":  Grassland,
	"TERRAIN_PLAINS": Plain,
	"TERRAIN_DESERT": Desert,
}

// DecodeCiv5 reads the terrain layer of a Civilization V map. Elevation wins
// over the base terrain; unknown base terrains become desert.
func DecodeCiv5(r io.Reader) (*Map, error) {
	var h civ5Header
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return nil, fmt.Errorf("%w: header: %w", ErrCiv5Format, err)
	}

	terrains, err := readCiv5List(r, h.TerrainLen)
	if err != nil {
		return nil, fmt.Errorf("terrain list: %w", err)
	}
	for _, n := range []uint32{h.Feature1Len, h.Feature2Len, h.ResourceLen} {
		if _, err := readCiv5String(r, n); err != nil {
			return nil, err
		}
	}
	name, err := readCiv5String(r, h.NameLen)
	if err != nil {
		return nil, fmt.Errorf("map name: %w", err)
	}
	if _, err := readCiv5String(r, h.DescLen); err != nil {
		return nil, fmt.Errorf("map description: %w", err)
	}
	var extraLen uint32
	if err := binary.Read(r, binary.LittleEndian, &extraLen); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCiv5Format, err)
	}
	if _, err := readCiv5String(r, extraLen); err != nil {
		return nil, err
	}

	count := uint64(h.Width) * uint64(h.Height)
	if count == 0 || count > civ5MaxTiles {
		return nil, fmt.Errorf("%w: %dx%d tiles", ErrCiv5Format, h.Width, h.Height)
	}
	tiles := make([]civ5Tile, count)
	if err := binary.Read(r, binary.LittleEndian, tiles); err != nil {
		return nil, fmt.Errorf("%w: tiles: %w", ErrCiv5Format, err)
	}

	data := make([]Terrain, len(tiles))
	for i, tile := range tiles {
		switch tile.Elevation {
		case 1:
			data[i] = Hill
		case 2:
			data[i] = Mountain
		default:
			if int(tile.TerrainID) >= len(terrains) {
				return nil, fmt.Errorf("%w: tile %d has terrain id %d", ErrCiv5Format, i, tile.TerrainID)
			}
			t, ok := civ5Terrain[terrains[tile.TerrainID]]
			if !ok {
				t = Desert
			}
			data[i] = t
		}
	}

	m, err := New(int(h.Width), int(h.Height), data)
	if err != nil {
		return nil, err
	}
	m.name = strings.TrimRight(name, "\x00")
	return m, nil
}

func readCiv5String(r io.Reader, n uint32) (string, error) {
	if n > civ5MaxString {
		return "", fmt.Errorf("%w: string of %d bytes", ErrCiv5Format, n)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", fmt.Errorf("%w: %w", ErrCiv5Format, err)
	}
	return string(buf), nil
}

func readCiv5List(r io.Reader, n uint32) ([]string, error) {
	s, err := readCiv5String(r, n)
	if err != nil {
		return nil, err
	}
	return strings.Split(s, "\x00"), nil
}
