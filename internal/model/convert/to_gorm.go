// Package convert turns journal events into GORM models and back
package convert

import (
	"encoding/json"
	"fmt"

	"github.com/hexfront/tactics/internal/geo"
	"github.com/hexfront/tactics/internal/model"
	"github.com/hexfront/tactics/pkg/core"
	"github.com/hexfront/tactics/pkg/hex"
	geom "github.com/peterstace/simplefeatures/geom"
	"gorm.io/datatypes"
)

// cell is the stored form of a position: offset column and row.
type cell struct {
	Col int `json:"col"`
	Row int `json:"row"`
}

// pathToJSON converts a path to datatypes.JSON for DB storage.
func pathToJSON(path []hex.Position) datatypes.JSON {
	if len(path) == 0 {
		return datatypes.JSON("[]")
	}
	cells := make([]cell, len(path))
	for i, pos := range path {
		o := pos.Offset()
		cells[i] = cell{Col: o.Col, Row: o.Row}
	}
	data, _ := json.Marshal(cells)
	return datatypes.JSON(data)
}

// modifiersToJSON converts combat modifiers to datatypes.JSON for DB storage.
func modifiersToJSON(mods []core.CombatModifier) datatypes.JSON {
	if len(mods) == 0 {
		return datatypes.JSON("[]")
	}
	data, _ := json.Marshal(mods)
	return datatypes.JSON(data)
}

// pathToLineString converts a path to a geom.LineString, empty for paths
// shorter than two cells.
func pathToLineString(path []hex.Position) (geom.LineString, error) {
	if len(path) < 2 {
		return geom.LineString{}, nil
	}
	return geo.Route(path, geo.DefaultSize)
}

// CoreToMatch converts a core.Match to a GORM model.Match.
func CoreToMatch(m core.Match) model.Match {
	return model.Match{
		Name:      m.Name,
		MapName:   m.MapName,
		MapWidth:  m.MapWidth,
		MapHeight: m.MapHeight,
		StartTime: m.StartTime,
		Seed:      int64(m.Seed),
	}
}

// CoreToMove converts a core.MoveEvent to a GORM model.Move.
func CoreToMove(e core.MoveEvent) (model.Move, error) {
	route, err := pathToLineString(e.Path)
	if err != nil {
		return model.Move{}, err
	}
	out := model.Move{
		Time:      e.Time,
		Turn:      e.Turn,
		UnitID:    uint(e.UnitID),
		UnitName:  e.UnitName,
		Owner:     string(e.Owner),
		Cost:      e.Cost,
		Deducted:  e.Deducted,
		Exhausted: e.Exhausted,
		Path:      pathToJSON(e.Path),
		Route:     route,
	}
	if len(e.Path) > 0 {
		from, to := e.From().Offset(), e.To().Offset()
		out.FromCol, out.FromRow = from.Col, from.Row
		out.ToCol, out.ToRow = to.Col, to.Row
		out.Steps = len(e.Path) - 1
	}
	return out, nil
}

// coreToSide converts one side of an engagement.
func coreToSide(s core.CombatSide) (model.Side, error) {
	point, err := geo.Center(s.Pos, geo.DefaultSize)
	if err != nil {
		return model.Side{}, err
	}
	o := s.Pos.Offset()
	return model.Side{
		UnitID:    uint(s.UnitID),
		Name:      s.Name,
		Owner:     string(s.Owner),
		Col:       o.Col,
		Row:       o.Row,
		Position:  point,
		Strength:  s.Strength,
		StartHP:   s.StartHP,
		FinalHP:   s.FinalHP,
		DamageMin: s.DamageMin,
		DamageMax: s.DamageMax,
		Damage:    s.Damage,
		Modifiers: modifiersToJSON(s.Modifiers),
	}, nil
}

// CoreToEngagement converts a core.CombatEvent to a GORM model.Engagement.
func CoreToEngagement(e core.CombatEvent) (model.Engagement, error) {
	attacker, err := coreToSide(e.Attacker)
	if err != nil {
		return model.Engagement{}, fmt.Errorf("attacker: %w", err)
	}
	defender, err := coreToSide(e.Defender)
	if err != nil {
		return model.Engagement{}, fmt.Errorf("defender: %w", err)
	}
	return model.Engagement{
		Time:     e.Time,
		Turn:     e.Turn,
		Ranged:   e.Ranged,
		Attacker: attacker,
		Defender: defender,
		Captured: e.Captured,
		Verdict:  e.Verdict,
	}, nil
}

// MovePath decodes the stored path of a move.
func MovePath(m model.Move) ([]hex.Position, error) {
	var cells []cell
	if err := json.Unmarshal(m.Path, &cells); err != nil {
		return nil, fmt.Errorf("failed to decode move path: %w", err)
	}
	out := make([]hex.Position, len(cells))
	for i, c := range cells {
		out[i] = hex.OffsetPos{Col: c.Col, Row: c.Row}.Position()
	}
	return out, nil
}

// SideModifiers decodes the stored modifiers of an engagement side.
func SideModifiers(s model.Side) ([]core.CombatModifier, error) {
	var mods []core.CombatModifier
	if err := json.Unmarshal(s.Modifiers, &mods); err != nil {
		return nil, fmt.Errorf("failed to decode modifiers: %w", err)
	}
	return mods, nil
}
