package model

import (
	"database/sql"
	"time"

	geom "github.com/peterstace/simplefeatures/geom"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

////////////////////////
// DATABASE STRUCTURES //
////////////////////////

// DatabaseModels is a list of all the structs exported here which represent tables in the database schema
var DatabaseModels = []interface{}{
	&Match{},
	&Move{},
	&Engagement{},
}

////////////////////////
// JOURNAL MODELS
////////////////////////

// Match is one recorded skirmish
type Match struct {
	gorm.Model
	Name      string       `json:"name" gorm:"size:127"`
	MapName   string       `json:"mapName" gorm:"size:127"`
	MapWidth  int          `json:"mapWidth"`
	MapHeight int          `json:"mapHeight"`
	StartTime time.Time    `json:"startTime" gorm:"index:idx_match_start_time"`
	EndTime   sql.NullTime `json:"endTime"`
	Turns     int          `json:"turns"`
	// Seed keeps the bit pattern of the uint64 RNG seed; SQLite has no
	// unsigned 64-bit column.
	Seed        int64        `json:"seed"`
	Moves       []Move       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Engagements []Engagement `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

func (*Match) TableName() string {
	return "matches"
}

// Move is a completed non-combat move
type Move struct {
	ID        uint            `json:"id" gorm:"primarykey;autoIncrement;"`
	MatchID   uint            `json:"matchId" gorm:"index:idx_move_match_id"`
	Time      time.Time       `json:"time" gorm:"index:idx_move_time"`
	Turn      int             `json:"turn"`
	UnitID    uint            `json:"unitId" gorm:"index:idx_move_unit_id"`
	UnitName  string          `json:"unitName" gorm:"size:64"`
	Owner     string          `json:"owner" gorm:"size:32"`
	FromCol   int             `json:"fromCol"`
	FromRow   int             `json:"fromRow"`
	ToCol     int             `json:"toCol"`
	ToRow     int             `json:"toRow"`
	Steps     int             `json:"steps"`
	Cost      int             `json:"cost"`
	Deducted  int             `json:"deducted"`
	Exhausted bool            `json:"exhausted"`
	Path      datatypes.JSON  `json:"path"`                       // offset cells [{col,row},...] including the origin
	Route     geom.LineString `json:"route" gorm:"type:geometry"` // cell centers of Path
}

func (*Move) TableName() string {
	return "moves"
}

// Side is one participant of an engagement, embedded twice with a prefix
type Side struct {
	UnitID    uint           `json:"unitId"`
	Name      string         `json:"name" gorm:"size:64"`
	Owner     string         `json:"owner" gorm:"size:32"`
	Col       int            `json:"col"`
	Row       int            `json:"row"`
	Position  geom.Point     `json:"position" gorm:"type:geometry"`
	Strength  float64        `json:"strength"`
	StartHP   int            `json:"startHp"`
	FinalHP   int            `json:"finalHp"`
	DamageMin int            `json:"damageMin"`
	DamageMax int            `json:"damageMax"`
	Damage    int            `json:"damage"`
	Modifiers datatypes.JSON `json:"modifiers"`
}

// Engagement is a resolved combat
type Engagement struct {
	ID       uint      `json:"id" gorm:"primarykey;autoIncrement;"`
	MatchID  uint      `json:"matchId" gorm:"index:idx_engagement_match_id"`
	Time     time.Time `json:"time" gorm:"index:idx_engagement_time"`
	Turn     int       `json:"turn"`
	Ranged   bool      `json:"ranged"`
	Attacker Side      `json:"attacker" gorm:"embedded;embeddedPrefix:attacker_"`
	Defender Side      `json:"defender" gorm:"embedded;embeddedPrefix:defender_"`
	Captured bool      `json:"captured"`
	Verdict  string    `json:"verdict" gorm:"size:32"`
}

func (*Engagement) TableName() string {
	return "engagements"
}
