package config

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/pelletier/go-toml/v2"
)

func LoadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err = toml.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type Config struct {
	Log    LogConfig    `toml:"log"`
	Web    WebConfig    `toml:"web"`
	DB     DBConfig     `toml:"db"`
	Spaces SpacesConfig `toml:"spaces"`
	Mongo  MongoConfig  `toml:"mongo"`
}

type LogConfig struct {
	Level     slog.Level `toml:"level"`
	Format    string     `toml:"format"`
	AddSource bool       `toml:"add_source"`
}

type WebConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

type DBConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	Database string `toml:"database"`
	PoolSize int    `toml:"pool_size"`
}

type SpacesConfig struct {
	Key      string `toml:"key"`
	Secret   string `toml:"secret"`
	Region   string `toml:"region"`
	Bucket   string `toml:"bucket"`
	IconRoot string `toml:"iconroot"`
}

// MongoConfig points at the pre-rewrite datastore, only used by the
// one-shot legacy importer.
type MongoConfig struct {
	URI      string `toml:"uri"`
	Database string `toml:"database"`
}
