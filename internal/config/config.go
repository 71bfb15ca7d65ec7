package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// FileName is the configuration file looked up in the config directory.
const FileName = "skirmish.cfg.json"

// MemoryConfig holds in-memory/JSON storage backend settings
type MemoryConfig struct {
	OutputDir      string `json:"outputDir" mapstructure:"outputDir"`
	CompressOutput bool   `json:"compressOutput" mapstructure:"compressOutput"`
}

// SQLiteConfig holds SQLite journal settings. An empty path keeps the
// database in memory and dumps it on close.
type SQLiteConfig struct {
	Path     string `json:"path" mapstructure:"path"`
	DumpPath string `json:"dumpPath" mapstructure:"dumpPath"`
}

// StorageConfig selects and configures the event journal.
type StorageConfig struct {
	Type      string       `json:"type" mapstructure:"type"`
	BatchSize int          `json:"batchSize" mapstructure:"batchSize"`
	Memory    MemoryConfig `json:"memory" mapstructure:"memory"`
	SQLite    SQLiteConfig `json:"sqlite" mapstructure:"sqlite"`
}

// DBConfig holds Postgres connection settings.
type DBConfig struct {
	Host     string `json:"host" mapstructure:"host"`
	Port     string `json:"port" mapstructure:"port"`
	Username string `json:"username" mapstructure:"username"`
	Password string `json:"password" mapstructure:"password"`
	Database string `json:"database" mapstructure:"database"`
}

// DSN returns the Postgres connection string.
func (c DBConfig) DSN() string {
	return fmt.Sprintf(`host=%s port=%s user=%s password=%s dbname=%s sslmode=disable`,
		c.Host, c.Port, c.Username, c.Password, c.Database)
}

// CombatConfig holds the damage model constants.
type CombatConfig struct {
	BaseMin       float64 `json:"baseMin" mapstructure:"baseMin"`
	RangedBaseMin float64 `json:"rangedBaseMin" mapstructure:"rangedBaseMin"`
	BaseSpread    float64 `json:"baseSpread" mapstructure:"baseSpread"`
	FlankBonus    int     `json:"flankBonus" mapstructure:"flankBonus"`
	PenaltyBand   int     `json:"penaltyBand" mapstructure:"penaltyBand"`
	PenaltyStep   float64 `json:"penaltyStep" mapstructure:"penaltyStep"`
}

// RulesConfig holds game rule settings.
type RulesConfig struct {
	MovementPoints int          `json:"movementPoints" mapstructure:"movementPoints"`
	MaxSearchDepth int          `json:"maxSearchDepth" mapstructure:"maxSearchDepth"`
	Seed           uint64       `json:"seed" mapstructure:"seed"`
	Combat         CombatConfig `json:"combat" mapstructure:"combat"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level          string `json:"logLevel" mapstructure:"logLevel"`
	Dir            string `json:"logsDir" mapstructure:"logsDir"`
	GraylogEnabled bool   `json:"graylogEnabled" mapstructure:"graylogEnabled"`
	GraylogAddress string `json:"graylogAddress" mapstructure:"graylogAddress"`
}

// InfluxConfig holds InfluxDB settings.
type InfluxConfig struct {
	Enabled    bool   `json:"enabled" mapstructure:"enabled"`
	Host       string `json:"host" mapstructure:"host"`
	Port       string `json:"port" mapstructure:"port"`
	Protocol   string `json:"protocol" mapstructure:"protocol"`
	Token      string `json:"token" mapstructure:"token"`
	Org        string `json:"org" mapstructure:"org"`
	Bucket     string `json:"bucket" mapstructure:"bucket"`
	BackupPath string `json:"backupPath" mapstructure:"backupPath"`
}

// URL returns the server address.
func (c InfluxConfig) URL() string {
	return fmt.Sprintf("%s://%s:%s", c.Protocol, c.Host, c.Port)
}

// OTelConfig holds OpenTelemetry settings.
type OTelConfig struct {
	Enabled     bool   `json:"enabled" mapstructure:"enabled"`
	ServiceName string `json:"serviceName" mapstructure:"serviceName"`
}

// SetDefaults registers every default value.
func SetDefaults() {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./skirmishlogs")

	viper.SetDefault("graylog.enabled", false)
	viper.SetDefault("graylog.address", "localhost:12201")

	viper.SetDefault("rules.movementPoints", 2)
	viper.SetDefault("rules.maxSearchDepth", 8)
	viper.SetDefault("rules.seed", 0)
	viper.SetDefault("rules.combat.baseMin", 40)
	viper.SetDefault("rules.combat.rangedBaseMin", 20)
	viper.SetDefault("rules.combat.baseSpread", 30)
	viper.SetDefault("rules.combat.flankBonus", 10)
	viper.SetDefault("rules.combat.penaltyBand", 20)
	viper.SetDefault("rules.combat.penaltyStep", 0.1)

	viper.SetDefault("storage.type", "memory")
	viper.SetDefault("storage.batchSize", 500)
	viper.SetDefault("storage.memory.outputDir", "./journals")
	viper.SetDefault("storage.memory.compressOutput", true)
	viper.SetDefault("storage.sqlite.path", "")
	viper.SetDefault("storage.sqlite.dumpPath", "./journals/skirmish.db")

	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", "5432")
	viper.SetDefault("db.username", "postgres")
	viper.SetDefault("db.password", "postgres")
	viper.SetDefault("db.database", "skirmish")

	viper.SetDefault("influx.enabled", false)
	viper.SetDefault("influx.host", "localhost")
	viper.SetDefault("influx.port", "8086")
	viper.SetDefault("influx.protocol", "http")
	viper.SetDefault("influx.token", "supersecrettoken")
	viper.SetDefault("influx.org", "skirmish")
	viper.SetDefault("influx.bucket", "battles")
	viper.SetDefault("influx.backupPath", "./journals/influx_backup.lp.gz")

	viper.SetDefault("otel.enabled", false)
	viper.SetDefault("otel.serviceName", "skirmish")
}

// Load reads configuration from JSON file and sets default values.
// configDir is the directory containing the config file.
func Load(configDir string) error {
	SetDefaults()

	viper.SetConfigName(FileName)
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}

	return nil
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetRulesConfig returns the game rules.
func GetRulesConfig() RulesConfig {
	return RulesConfig{
		MovementPoints: viper.GetInt("rules.movementPoints"),
		MaxSearchDepth: viper.GetInt("rules.maxSearchDepth"),
		Seed:           viper.GetUint64("rules.seed"),
		Combat: CombatConfig{
			BaseMin:       viper.GetFloat64("rules.combat.baseMin"),
			RangedBaseMin: viper.GetFloat64("rules.combat.rangedBaseMin"),
			BaseSpread:    viper.GetFloat64("rules.combat.baseSpread"),
			FlankBonus:    viper.GetInt("rules.combat.flankBonus"),
			PenaltyBand:   viper.GetInt("rules.combat.penaltyBand"),
			PenaltyStep:   viper.GetFloat64("rules.combat.penaltyStep"),
		},
	}
}

// GetLogConfig returns logging settings.
func GetLogConfig() LogConfig {
	return LogConfig{
		Level:          viper.GetString("logLevel"),
		Dir:            viper.GetString("logsDir"),
		GraylogEnabled: viper.GetBool("graylog.enabled"),
		GraylogAddress: viper.GetString("graylog.address"),
	}
}

// GetStorageConfig returns the journal backend settings.
func GetStorageConfig() StorageConfig {
	return StorageConfig{
		Type:      viper.GetString("storage.type"),
		BatchSize: viper.GetInt("storage.batchSize"),
		Memory: MemoryConfig{
			OutputDir:      viper.GetString("storage.memory.outputDir"),
			CompressOutput: viper.GetBool("storage.memory.compressOutput"),
		},
		SQLite: SQLiteConfig{
			Path:     viper.GetString("storage.sqlite.path"),
			DumpPath: viper.GetString("storage.sqlite.dumpPath"),
		},
	}
}

// GetDBConfig returns Postgres settings.
func GetDBConfig() DBConfig {
	return DBConfig{
		Host:     viper.GetString("db.host"),
		Port:     viper.GetString("db.port"),
		Username: viper.GetString("db.username"),
		Password: viper.GetString("db.password"),
		Database: viper.GetString("db.database"),
	}
}

// GetInfluxConfig returns InfluxDB settings.
func GetInfluxConfig() InfluxConfig {
	return InfluxConfig{
		Enabled:    viper.GetBool("influx.enabled"),
		Host:       viper.GetString("influx.host"),
		Port:       viper.GetString("influx.port"),
		Protocol:   viper.GetString("influx.protocol"),
		Token:      viper.GetString("influx.token"),
		Org:        viper.GetString("influx.org"),
		Bucket:     viper.GetString("influx.bucket"),
		BackupPath: viper.GetString("influx.backupPath"),
	}
}

// GetOTelConfig returns OpenTelemetry settings.
func GetOTelConfig() OTelConfig {
	return OTelConfig{
		Enabled:     viper.GetBool("otel.enabled"),
		ServiceName: viper.GetString("otel.serviceName"),
	}
}
