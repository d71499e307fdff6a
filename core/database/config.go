package database

import (
	"fmt"
	"net/url"
	"strings"
)

// Config holds database connection settings.
type Config struct {
	// URL takes precedence over the discrete fields when set,
	// e.g. postgres://bot:secret@db:5432/advent?sslmode=disable.
	URL            string `yaml:"url" envconfig:"DATABASE_URL"`
	Host           string `yaml:"host" envconfig:"DB_HOST"`
	Port           string `yaml:"port" envconfig:"DB_PORT"`
	User           string `yaml:"user" envconfig:"DB_USER"`
	Password       string `yaml:"password" envconfig:"DB_PASSWORD"`
	Name           string `yaml:"name" envconfig:"DB_NAME"`
	SSLMode        string `yaml:"sslmode" envconfig:"DB_SSLMODE"`
	MaxConnections int    `yaml:"max_connections" envconfig:"DB_MAX_CONNECTIONS"`
}

// DSN renders the connection string in URL form accepted by both lib/pq and
// golang-migrate.
func (c Config) DSN() string {
	if strings.TrimSpace(c.URL) != "" {
		return strings.TrimSpace(c.URL)
	}
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     c.Host + ":" + c.Port,
		Path:     "/" + c.Name,
		RawQuery: url.Values{"sslmode": {sslMode}}.Encode(),
	}
	return u.String()
}

// Target describes the database for logs without credentials.
func (c Config) Target() (host, port, name string) {
	u, err := url.Parse(c.DSN())
	if err != nil {
		return c.Host, c.Port, c.Name
	}
	return u.Hostname(), u.Port(), strings.TrimPrefix(u.Path, "/")
}

// Validate reports missing connection settings.
func (c Config) Validate() error {
	if strings.TrimSpace(c.URL) != "" {
		if _, err := url.Parse(c.URL); err != nil {
			return fmt.Errorf("database.url: %w", err)
		}
		return nil
	}
	if c.Host == "" || c.Port == "" || c.Name == "" || c.User == "" {
		return fmt.Errorf("database: url or host, port, name and user are required")
	}
	if c.MaxConnections < 0 {
		return fmt.Errorf("database.max_connections must be >= 0")
	}
	return nil
}
