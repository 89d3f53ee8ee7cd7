package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
	Council   CouncilConfig   `yaml:"council"`
	Storage   StorageConfig   `yaml:"storage"`
	Retention RetentionConfig `yaml:"retention"`
	Auth      AuthConfig      `yaml:"auth"`
	Users     []User          `yaml:"users"`
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// CouncilConfig points at the external analysis backend. Analyzing a single
// contract can take up to ten minutes, so no request timeout is enforced
// unless one is configured.
type CouncilConfig struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutMinutes int    `yaml:"timeout_minutes"` // 0 means no timeout
}

// StorageConfig locates durable local state: in-flight job snapshots and
// the persisted settings.
type StorageConfig struct {
	DataDir string `yaml:"data_dir"`
}

// RetentionConfig configures optional object storage for original uploads,
// so annotated exports keep working after a restart.
type RetentionConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`
}

type AuthConfig struct {
	JWTSecret        string `yaml:"jwt_secret"`
	TokenExpireHours int    `yaml:"token_expire_hours"`
}

type User struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

var GlobalConfig *Config

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	// Set defaults
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Council.BaseURL == "" {
		cfg.Council.BaseURL = "http://localhost:8000"
	}
	if cfg.Storage.DataDir == "" {
		cfg.Storage.DataDir = "./data"
	}
	if cfg.Auth.TokenExpireHours == 0 {
		cfg.Auth.TokenExpireHours = 24
	}

	// Environment wins over file for the backend address, so deployments
	// can point at a remote council without editing the config file.
	if url := os.Getenv("COUNCIL_BASE_URL"); url != "" {
		cfg.Council.BaseURL = url
	}

	GlobalConfig = &cfg
	return &cfg, nil
}

// FindUser finds a user by username
func (c *Config) FindUser(username string) *User {
	for i := range c.Users {
		if c.Users[i].Username == username {
			return &c.Users[i]
		}
	}
	return nil
}
