package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Dungeon  DungeonConfig  `mapstructure:"dungeon"`
}

type ServerConfig struct {
	HTTPAddress    string `mapstructure:"http_address"`
	RPCAddress     string `mapstructure:"rpc_address"`
	MetricsAddress string `mapstructure:"metrics_address"`
}

// Database drivers accepted in DatabaseConfig.Driver.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverGorm     = "gorm"
	DriverBolt     = "bolt"
)

type DatabaseConfig struct {
	Driver   string         `mapstructure:"driver"`
	Postgres PostgresConfig `mapstructure:"postgres"`
	Bolt     BoltConfig     `mapstructure:"bolt"`
}

type BoltConfig struct {
	Path string `mapstructure:"path"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
}

// DSN renders the connection string understood by both lib/pq and the gorm
// postgres driver.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		p.Host, p.Port, p.User, p.Password, p.DBName)
}

type DungeonConfig struct {
	Seed             int64         `mapstructure:"seed"`
	MaxRows          int           `mapstructure:"max_rows"`
	MaxCols          int           `mapstructure:"max_cols"`
	MinSubgraph      int           `mapstructure:"min_subgraph"`
	StartFloor       int           `mapstructure:"start_floor"`
	TickInterval     time.Duration `mapstructure:"tick_interval"`
	PlayerWidth      int           `mapstructure:"player_width"`
	PlayerHeight     int           `mapstructure:"player_height"`
	OccupantCapacity int           `mapstructure:"occupant_capacity"`
	OccupantLifetime int           `mapstructure:"occupant_lifetime"`
	FloorTexture     string        `mapstructure:"floor_texture"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.http_address", ":8080")
	v.SetDefault("server.rpc_address", ":8081")
	v.SetDefault("server.metrics_address", ":9090")

	v.SetDefault("database.driver", DriverMemory)
	v.SetDefault("database.postgres.host", "localhost")
	v.SetDefault("database.postgres.port", 5432)
	v.SetDefault("database.postgres.dbname", "dungeon")
	v.SetDefault("database.bolt.path", "floors.db")

	v.SetDefault("dungeon.seed", 0)
	v.SetDefault("dungeon.max_rows", 20)
	v.SetDefault("dungeon.max_cols", 20)
	v.SetDefault("dungeon.min_subgraph", 2)
	v.SetDefault("dungeon.start_floor", 0)
	v.SetDefault("dungeon.tick_interval", 100*time.Millisecond)
	v.SetDefault("dungeon.player_width", 64)
	v.SetDefault("dungeon.player_height", 64)
	v.SetDefault("dungeon.occupant_capacity", 100)
	v.SetDefault("dungeon.occupant_lifetime", 150)
	v.SetDefault("dungeon.floor_texture", "")
}

// LoadConfig reads config.yaml from path. A missing file is not an error;
// defaults and DUNGEON_* environment variables still apply.
func LoadConfig(path string) (config *Config, err error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetEnvPrefix("dungeon")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err = v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	err = v.Unmarshal(&config)
	return
}
