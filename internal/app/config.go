package app

import (
	"fmt"
	"os"
	"regexp"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/shrimpsizemoose/trekker/logger"
)

var envRefRegex = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnvRefs substitutes ${VAR} references only; a bare $ is kept as is.
func expandEnvRefs(s string) string {
	return envRefRegex.ReplaceAllStringFunc(s, func(ref string) string {
		return os.Getenv(envRefRegex.FindStringSubmatch(ref)[1])
	})
}

type Config struct {
	Server struct {
		Port string `toml:"port" env:"PORT" validate:"required"`
	} `toml:"server" envPrefix:"EDITATHONS_"`

	Database struct {
		DSN           string `toml:"dsn" env:"DSN" validate:"required"`
		MigrationsDir string `toml:"migrations_dir" env:"MIGRATIONS_DIR"`
	} `toml:"database" envPrefix:"EDITATHONS_"`

	Display struct {
		DateFormat string `toml:"date_format" env:"DATE_FORMAT"`
	} `toml:"display" envPrefix:"EDITATHONS_"`

	Metrics struct {
		Enabled bool   `toml:"enabled" env:"METRICS_ENABLED"`
		Path    string `toml:"path" env:"METRICS_PATH"`
	} `toml:"metrics" envPrefix:"EDITATHONS_"`
}

// LoadConfig reads a TOML file, expanding ${VAR} references from the
// environment (and .env, if present), then applies EDITATHONS_* overrides.
func LoadConfig(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Debug.Printf("Skipping .env: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal([]byte(expandEnvRefs(string(data))), &config); err != nil {
		return nil, fmt.Errorf(
			"error reading config file %s\n> Error: %w\n> Content:\n%s",
			path,
			err,
			string(data),
		)
	}

	if err := env.Parse(&config); err != nil {
		return nil, fmt.Errorf("error reading environment overrides: %w", err)
	}

	config.setDefaults()

	if err := validator.New().Struct(&config); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	logger.Debug.Printf("Loaded config: port=%s db=%s", config.Server.Port, DetectDBType(config.Database.DSN))

	return &config, nil
}

func (c *Config) setDefaults() {
	if c.Database.MigrationsDir == "" {
		c.Database.MigrationsDir = "./migrations"
	}
	if c.Display.DateFormat == "" {
		c.Display.DateFormat = "2006-01-02"
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
}
