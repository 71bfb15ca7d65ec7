package memory

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hexfront/tactics/pkg/core"
	"github.com/hexfront/tactics/pkg/hex"
)

// MatchExport is the root JSON structure
type MatchExport struct {
	Name        string           `json:"name"`
	MapName     string           `json:"mapName"`
	MapWidth    int              `json:"mapWidth"`
	MapHeight   int              `json:"mapHeight"`
	StartTime   time.Time        `json:"startTime"`
	EndTime     time.Time        `json:"endTime"`
	Seed        uint64           `json:"seed"`
	Turns       int              `json:"turns"`
	Moves       []MoveJSON       `json:"moves"`
	Engagements []EngagementJSON `json:"engagements"`
}

// CellJSON is an offset map position
type CellJSON struct {
	Col int `json:"col"`
	Row int `json:"row"`
}

// MoveJSON is one recorded move
type MoveJSON struct {
	Turn      int        `json:"turn"`
	Unit      string     `json:"unit"`
	Owner     string     `json:"owner"`
	Path      []CellJSON `json:"path"`
	Cost      int        `json:"cost"`
	Deducted  int        `json:"deducted"`
	Exhausted bool       `json:"exhausted,omitempty"`
}

// SideJSON is one participant of an engagement
type SideJSON struct {
	Unit      string                `json:"unit"`
	Owner     string                `json:"owner"`
	Cell      CellJSON              `json:"cell"`
	Strength  float64               `json:"strength"`
	HP        [2]int                `json:"hp"`     // [start, final]
	Range     [2]int                `json:"range"`  // [min, max] damage taken
	Damage    int                   `json:"damage"` // damage taken
	Modifiers []core.CombatModifier `json:"modifiers,omitempty"`
}

// EngagementJSON is one resolved combat
type EngagementJSON struct {
	Turn     int      `json:"turn"`
	Ranged   bool     `json:"ranged,omitempty"`
	Attacker SideJSON `json:"attacker"`
	Defender SideJSON `json:"defender"`
	Captured bool     `json:"captured,omitempty"`
	Verdict  string   `json:"verdict"`
}

func cellOf(pos hex.Position) CellJSON {
	o := pos.Offset()
	return CellJSON{Col: o.Col, Row: o.Row}
}

func sideOf(s core.CombatSide) SideJSON {
	return SideJSON{
		Unit:      s.Name,
		Owner:     string(s.Owner),
		Cell:      cellOf(s.Pos),
		Strength:  s.Strength,
		HP:        [2]int{s.StartHP, s.FinalHP},
		Range:     [2]int{s.DamageMin, s.DamageMax},
		Damage:    s.Damage,
		Modifiers: s.Modifiers,
	}
}

// exportFileName builds the file name from the match name and start time.
func exportFileName(name string, start time.Time, compress bool) string {
	name = strings.NewReplacer(" ", "_", ":", "_", "/", "_", `\`, "_").Replace(name)
	if name == "" {
		name = "match"
	}
	ext := ".json"
	if compress {
		ext = ".json.gz"
	}
	return fmt.Sprintf("%s_%s%s", name, start.Format("20060102_150405"), ext)
}

// exportJSON writes the match to a (optionally gzipped) JSON file
func (b *Backend) exportJSON() error {
	export := b.buildExport()

	if err := os.MkdirAll(b.cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	outputPath := filepath.Join(b.cfg.OutputDir, exportFileName(b.match.Name, b.match.StartTime, b.cfg.CompressOutput))

	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	if err := writeExport(f, export, b.cfg.CompressOutput); err != nil {
		return fmt.Errorf("failed to write %s: %w", outputPath, err)
	}

	b.lastExportPath = outputPath
	return nil
}

func writeExport(w io.Writer, export MatchExport, compress bool) error {
	if !compress {
		return json.NewEncoder(w).Encode(export)
	}
	gz := gzip.NewWriter(w)
	if err := json.NewEncoder(gz).Encode(export); err != nil {
		gz.Close()
		return err
	}
	return gz.Close()
}

func (b *Backend) buildExport() MatchExport {
	export := MatchExport{
		Name:        b.match.Name,
		MapName:     b.match.MapName,
		MapWidth:    b.match.MapWidth,
		MapHeight:   b.match.MapHeight,
		StartTime:   b.match.StartTime,
		EndTime:     b.ended,
		Seed:        b.match.Seed,
		Turns:       b.turns,
		Moves:       make([]MoveJSON, 0, len(b.moves)),
		Engagements: make([]EngagementJSON, 0, len(b.combats)),
	}

	for _, m := range b.moves {
		path := make([]CellJSON, len(m.Path))
		for i, pos := range m.Path {
			path[i] = cellOf(pos)
		}
		export.Moves = append(export.Moves, MoveJSON{
			Turn:      m.Turn,
			Unit:      m.UnitName,
			Owner:     string(m.Owner),
			Path:      path,
			Cost:      m.Cost,
			Deducted:  m.Deducted,
			Exhausted: m.Exhausted,
		})
	}

	for _, c := range b.combats {
		export.Engagements = append(export.Engagements, EngagementJSON{
			Turn:     c.Turn,
			Ranged:   c.Ranged,
			Attacker: sideOf(c.Attacker),
			Defender: sideOf(c.Defender),
			Captured: c.Captured,
			Verdict:  c.Verdict,
		})
	}

	return export
}
