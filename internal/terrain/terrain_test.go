package terrain

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hexfront/tactics/pkg/hex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTerrainProperties(t *testing.T) {
	tests := []struct {
		terrain  Terrain
		passable bool
		cost     int
		defense  int
	}{
		{Plain, true, 1, 0},
		{Grassland, true, 1, 0},
		{Desert, true, 1, 0},
		{Hill, true, 2, 25},
		{Mountain, false, 1, 0},
		{Water, false, 1, 0},
		{OutOfBounds, false, 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.terrain.Name(), func(t *testing.T) {
			assert.Equal(t, tt.passable, tt.terrain.IsPassable())
			assert.Equal(t, tt.cost, tt.terrain.MovementCost())
			assert.Equal(t, tt.defense, tt.terrain.DefenseModifier())
		})
	}
}

func TestSymbolRoundTrip(t *testing.T) {
	for _, ter := range All {
		assert.Equal(t, ter, FromSymbol(ter.Symbol()), ter.Name())
	}
	assert.Equal(t, Water, FromSymbol('x'))
}

func TestNewRejectsInconsistentData(t *testing.T) {
	_, err := New(3, 2, make([]Terrain, 5))
	assert.ErrorIs(t, err, ErrInconsistentMap)
	_, err = New(0, 0, nil)
	assert.ErrorIs(t, err, ErrInconsistentMap)
}

func TestParse(t *testing.T) {
	m, err := Parse(strings.NewReader("'\"^\n A~\n"))
	require.NoError(t, err)
	assert.Equal(t, 3, m.Width())
	assert.Equal(t, 2, m.Height())

	at := func(col, row int) Terrain {
		return m.At(hex.OffsetPos{Col: col, Row: row}.Position())
	}
	assert.Equal(t, Plain, at(0, 0))
	assert.Equal(t, Grassland, at(1, 0))
	assert.Equal(t, Hill, at(2, 0))
	assert.Equal(t, Desert, at(0, 1))
	assert.Equal(t, Mountain, at(1, 1))
	assert.Equal(t, Water, at(2, 1))
	assert.Equal(t, OutOfBounds, at(3, 0))
	assert.Equal(t, OutOfBounds, at(0, -1))
	assert.Equal(t, "'\"^\n A~\n", m.String())
}

func TestParseWindowsLineEndings(t *testing.T) {
	m, err := Parse(strings.NewReader("''\r\n^^\r\n"))
	require.NoError(t, err)
	assert.Equal(t, 2, m.Width())
	assert.Equal(t, 2, m.Height())
}

func TestParseErrors(t *testing.T) {
	_, err := Parse(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrEmptyMap)

	_, err = Parse(strings.NewReader("'''\n''\n"))
	assert.ErrorIs(t, err, ErrRaggedMap)
}

func TestOutOfBoundsIsImpassable(t *testing.T) {
	m := Filled(2, 2, Plain)
	off := hex.OffsetPos{Col: -1, Row: 0}.Position()
	assert.False(t, m.IsPassable(off))
	assert.True(t, m.IsPassable(hex.Origin()))
}

func TestFirstPassable(t *testing.T) {
	m, err := Parse(strings.NewReader("~~A\n~'^\n"))
	require.NoError(t, err)
	pos, ok := m.FirstPassable()
	require.True(t, ok)
	assert.Equal(t, hex.OffsetPos{Col: 1, Row: 1}, pos.Offset())

	_, ok = Filled(2, 2, Water).FirstPassable()
	assert.False(t, ok)
}

func TestPathCost(t *testing.T) {
	m := Filled(4, 4, Plain)
	o := hex.OffsetPos{Col: 1, Row: 1}.Position()
	south := o.Neighbor(hex.South)
	require.True(t, m.Set(south, Hill))
	// the origin cell is free
	require.True(t, m.Set(o, Hill))

	p := hex.PathOf(o, south, south.Neighbor(hex.South))
	assert.Equal(t, 3, m.PathCost(p))
	assert.Equal(t, 0, m.PathCost(hex.NewPath(o)))
}

func TestTilesVisitsEveryCellOnce(t *testing.T) {
	m := Filled(3, 4, Grassland)
	seen := map[hex.Position]bool{}
	for pos, ter := range m.Tiles() {
		assert.Equal(t, Grassland, ter)
		assert.True(t, m.Contains(pos))
		seen[pos] = true
	}
	assert.Len(t, seen, 12)
}

func TestLoadTextFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "valley.txt")
	require.NoError(t, os.WriteFile(path, []byte("''\n^^\n"), 0644))

	m, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "valley", m.Name())
	assert.Equal(t, Hill, m.At(hex.OffsetPos{Col: 0, Row: 1}.Position()))

	_, err = Load(filepath.Join(dir, "missing.txt"))
	assert.Error(t, err)
}

func encodeCiv5(t *testing.T, width, height uint32, terrains []string, name string, tiles []civ5Tile) []byte {
	t.Helper()
	var buf bytes.Buffer
	list := strings.Join(terrains, "\x00")
	h := civ5Header{
		Version:    12,
		Width:      width,
		Height:     height,
		Players:    2,
		TerrainLen: uint32(len(list)),
		NameLen:    uint32(len(name)),
	}
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, h))
	buf.WriteString(list)
	buf.WriteString(name)
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, uint32(0)))
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, tiles))
	return buf.Bytes()
}

func TestDecodeCiv5(t *testing.T) {
	terrains := []string{"TERRAIN_GRASS", "TERRAIN_OCEAN", "TERRAIN_SNOW", "TERRAIN_PLAINS"}
	tiles := []civ5Tile{
		{TerrainID: 0},
		{TerrainID: 1},
		{TerrainID: 2},
		{TerrainID: 3},
		{TerrainID: 0, Elevation: 1},
		{TerrainID: 1, Elevation: 2},
	}
	m, err := DecodeCiv5(bytes.NewReader(encodeCiv5(t, 3, 2, terrains, "Pangaea", tiles)))
	require.NoError(t, err)
	assert.Equal(t, "Pangaea", m.Name())
	assert.Equal(t, "\"~ \n'^A\n", m.String())
}

func TestDecodeCiv5Errors(t *testing.T) {
	_, err := DecodeCiv5(bytes.NewReader([]byte{1, 2, 3}))
	assert.ErrorIs(t, err, ErrCiv5Format)

	tiles := []civ5Tile{{TerrainID: 9}}
	_, err = DecodeCiv5(bytes.NewReader(encodeCiv5(t, 1, 1, []string{"TERRAIN_GRASS"}, "", tiles)))
	assert.ErrorIs(t, err, ErrCiv5Format)

	_, err = DecodeCiv5(bytes.NewReader(encodeCiv5(t, 2, 2, []string{"TERRAIN_GRASS"}, "", tiles)))
	assert.ErrorIs(t, err, ErrCiv5Format)
}
