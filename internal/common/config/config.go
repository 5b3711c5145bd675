package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/url"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvConfig names a config file and wins over every search path.
const EnvConfig = "FLOOR_CONFIG"

type DB struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Pass     string `yaml:"password"`
	Name     string `yaml:"database"`
	SSLMode  string `yaml:"sslmode"`
	MaxConns int    `yaml:"max_conns"`
}

// DSN is the pgx connection string.
func (d DB) DSN() string {
	q := url.Values{}
	q.Set("sslmode", d.SSLMode)
	q.Set("pool_max_conns", strconv.Itoa(d.MaxConns))
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Pass),
		Host:     net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
		Path:     "/" + d.Name,
		RawQuery: q.Encode(),
	}
	return u.String()
}

type MQ struct {
	Enabled bool   `yaml:"enabled"`
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
	User    string `yaml:"user"`
	Pass    string `yaml:"password"`
	VHost   string `yaml:"vhost"`
	UseTLS  bool   `yaml:"tls"`
}

type HTTP struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type Floor struct {
	// Seed is a floor file; empty means the built-in floor.
	Seed string `yaml:"seed"`
	// TimeZone decides which calendar day "today" is.
	TimeZone string `yaml:"timezone"`
}

// Location resolves TimeZone, falling back to the process local zone.
func (f Floor) Location() (*time.Location, error) {
	if f.TimeZone == "" || f.TimeZone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(f.TimeZone)
}

type App struct {
	Database DB    `yaml:"database"`
	Rabbit   MQ    `yaml:"rabbitmq"`
	HTTP     HTTP  `yaml:"http"`
	Floor    Floor `yaml:"floor"`
}

// Default is the configuration used for every key a file leaves out.
func Default() App {
	return App{
		Database: DB{Port: 5432, SSLMode: "disable", MaxConns: 10},
		Rabbit:   MQ{Port: 5672, VHost: "/"},
		HTTP: HTTP{
			Port:            3000,
			ReadTimeout:     5 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 5 * time.Second,
		},
	}
}

func Load(path string) (App, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return App{}, err
	}
	return Parse(b)
}

func Parse(b []byte) (App, error) {
	a := Default()
	if err := yaml.Unmarshal(b, &a); err != nil {
		return App{}, fmt.Errorf("invalid config: %w", err)
	}
	if _, err := a.Floor.Location(); err != nil {
		return App{}, fmt.Errorf("invalid config: floor.timezone: %w", err)
	}
	return a, nil
}

// RequireDatabase reports whether the database section can be dialled.
func (a App) RequireDatabase() error {
	if a.Database.Host == "" || a.Database.User == "" || a.Database.Name == "" {
		return errors.New("invalid config: database host, user and database are required")
	}
	return nil
}

// RequireRabbit reports whether the rabbitmq section can be dialled.
func (a App) RequireRabbit() error {
	if a.Rabbit.Host == "" || a.Rabbit.User == "" {
		return errors.New("invalid config: rabbitmq host and user are required")
	}
	return nil
}

// FindConfig returns $FLOOR_CONFIG if set, else the first existing candidate.
func FindConfig() (string, error) {
	if p := os.Getenv(EnvConfig); p != "" {
		return p, nil
	}
	candidates := []string{"config.yaml", "deploy/config.example.yaml"}
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", fs.ErrNotExist
}
