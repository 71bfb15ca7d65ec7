package memory

import (
	"compress/gzip"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hexfront/tactics/internal/config"
	"github.com/hexfront/tactics/pkg/core"
	"github.com/hexfront/tactics/pkg/hex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportFileName(t *testing.T) {
	start := time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC)
	tests := []struct {
		name     string
		compress bool
		want     string
	}{
		{"Border Clash", false, "Border_Clash_20260115_103000.json"},
		{"a:b/c", true, "a_b_c_20260115_103000.json.gz"},
		{"", false, "match_20260115_103000.json"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, exportFileName(tt.name, start, tt.compress))
		})
	}
}

func recordSample(t *testing.T, b *Backend) {
	t.Helper()
	require.NoError(t, b.RecordMove(&core.MoveEvent{
		Turn:     1,
		UnitName: "Scout",
		Owner:    "blue",
		Path:     cells([2]int{0, 0}, [2]int{1, 0}, [2]int{2, 0}),
		Cost:     2,
		Deducted: 2,
	}))
	require.NoError(t, b.RecordCombat(&core.CombatEvent{
		Turn: 3,
		Attacker: core.CombatSide{
			Name: "Warrior", Owner: "blue", Pos: hex.OffsetPos{Col: 2, Row: 0}.Position(),
			Strength: 8, StartHP: 100, FinalHP: 60, DamageMin: 40, DamageMax: 70, Damage: 40,
		},
		Defender: core.CombatSide{
			Name: "Spearman", Owner: "red", Pos: hex.OffsetPos{Col: 3, Row: 0}.Position(),
			Strength: 8, StartHP: 50, FinalHP: 0, DamageMin: 40, DamageMax: 70, Damage: 55,
		},
		Captured: true,
		Verdict:  "Decisive Victory",
	}))
}

func TestBuildExport(t *testing.T) {
	b := startedBackend(t, config.MemoryConfig{})
	recordSample(t, b)

	export := b.buildExport()
	assert.Equal(t, "Test Match", export.Name)
	assert.Equal(t, uint64(99), export.Seed)
	assert.Equal(t, 3, export.Turns)

	require.Len(t, export.Moves, 1)
	assert.Equal(t, []CellJSON{{0, 0}, {1, 0}, {2, 0}}, export.Moves[0].Path)

	require.Len(t, export.Engagements, 1)
	e := export.Engagements[0]
	assert.Equal(t, CellJSON{Col: 3, Row: 0}, e.Defender.Cell)
	assert.Equal(t, [2]int{50, 0}, e.Defender.HP)
	assert.Equal(t, [2]int{40, 70}, e.Attacker.Range)
	assert.True(t, e.Captured)
}

func TestEndMatch_WritesJSON(t *testing.T) {
	dir := t.TempDir()
	b := startedBackend(t, config.MemoryConfig{OutputDir: dir, CompressOutput: false})
	recordSample(t, b)

	require.NoError(t, b.EndMatch())
	path := b.ExportedFilePath()
	assert.Equal(t, filepath.Join(dir, "Test_Match_20260115_103000.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var export MatchExport
	require.NoError(t, json.Unmarshal(data, &export))
	assert.Equal(t, "plains", export.MapName)
	assert.Len(t, export.Moves, 1)
	assert.False(t, export.EndTime.IsZero())

	// the match is closed
	assert.ErrorIs(t, b.RecordMove(&core.MoveEvent{}), ErrNoMatch)
}

func TestEndMatch_WritesGzip(t *testing.T) {
	dir := t.TempDir()
	b := startedBackend(t, config.MemoryConfig{OutputDir: dir, CompressOutput: true})
	recordSample(t, b)
	require.NoError(t, b.EndMatch())

	f, err := os.Open(b.ExportedFilePath())
	require.NoError(t, err)
	defer f.Close()
	gz, err := gzip.NewReader(f)
	require.NoError(t, err)

	var export MatchExport
	require.NoError(t, json.NewDecoder(gz).Decode(&export))
	require.Len(t, export.Engagements, 1)
	assert.Equal(t, "Decisive Victory", export.Engagements[0].Verdict)
}

func TestEndMatch_OutputDirError(t *testing.T) {
	file := filepath.Join(t.TempDir(), "occupied")
	require.NoError(t, os.WriteFile(file, nil, 0644))

	b := startedBackend(t, config.MemoryConfig{OutputDir: filepath.Join(file, "sub")})
	err := b.EndMatch()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create output directory")
}
