package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config enthält alle Konfigurationsparameter aus Umgebungsvariablen.
type Config struct {
	DBHost     string `envconfig:"DB_HOST" required:"true"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" required:"true"`
	DBPassword string `envconfig:"DB_PASSWORD" required:"true"`
	DBName     string `envconfig:"DB_NAME" default:"pid_manager"`

	HTTPPort     string `envconfig:"HTTP_PORT" default:"4243"`
	APISecretKey string `envconfig:"API_SECRET_KEY"`

	// Format des pid v3: Länge und Zeichensatz sind historisch gewachsen
	// und dürfen nicht hart codiert werden.
	V3Length  int    `envconfig:"V3_LENGTH" default:"23"`
	V3Charset string `envconfig:"V3_CHARSET" default:"abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"`

	// Similarity-Schwellwerte für die Best-Match-Auswahl. Heuristisch,
	// pro Korpus nachjustierbar.
	BestMinRatio     float64 `envconfig:"BEST_MIN_RATIO" default:"0.9"`
	RunnerUpMaxRatio float64 `envconfig:"RUNNER_UP_MAX_RATIO" default:"0.6"`

	// Paginierung für Dokumentsuchen
	PageSize int `envconfig:"PAGE_SIZE" default:"50"`

	// Zeitplan für den Integritäts-Audit
	AuditCronSchedule string `envconfig:"AUDIT_CRON_SCHEDULE" default:"0 3 * * *"`
}

// DSN gibt den Data Source Name für die PostgreSQL-Verbindung zurück.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort)
}

// Load lädt die Konfiguration aus den Umgebungsvariablen.
func Load() (*Config, error) {
	_ = godotenv.Load()
	var c Config
	err := envconfig.Process("", &c)
	return &c, err
}
