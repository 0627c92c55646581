package config

import (
	"fmt"
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config carries the process configuration, populated from the environment.
type Config struct {
	Port     string `env:"PORT" envDefault:"8080"`
	Env      string `env:"ENV" envDefault:"development"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	JWTSecret string        `env:"JWT_SECRET" envDefault:"supersecretjwtkey"`
	TokenTTL  time.Duration `env:"TOKEN_TTL" envDefault:"72h"`

	PostgresConnStr string `env:"POSTGRES_CONN_STR,required"`
	MongoURI        string `env:"MONGO_URI,required"`
	MongoDatabase   string `env:"MONGO_DATABASE" envDefault:"wavelink"`

	FirebaseCredentialsPath string `env:"FIREBASE_CREDENTIALS_PATH" envDefault:"./firebase_credentials.json"`
}

// Load reads the configuration from the environment, with .env as an
// optional local override.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, assuming environment variables are set.")
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}
	return cfg, nil
}
