package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/PratikDhanave/paid-events-service/internal/records"
)

// Environment selects per-environment defaults such as CORS origins.
type Environment string

const (
	Dev  Environment = "dev"
	Prod Environment = "prod"
)

const (
	BackendDynamo   = "dynamo"
	BackendPostgres = "postgres"
)

// AnonymousUser is the caller recorded for requests without a known API key.
const AnonymousUser = "public@acm.illinois.edu"

// Config contains runtime configuration required by the service.
type Config struct {
	Environment Environment `yaml:"environment"`
	Port        string      `yaml:"port"`
	LogLevel    string      `yaml:"log_level"`

	StoreBackend string `yaml:"store_backend"`
	DBURL        string `yaml:"db_url"`

	AWSRegion      string `yaml:"aws_region"`
	DynamoEndpoint string `yaml:"dynamo_endpoint"`
	// Static credentials are only filled in for a local DynamoDB endpoint
	// when none are present in the environment.
	DynamoAccessKeyID     string `yaml:"-"`
	DynamoSecretAccessKey string `yaml:"-"`

	TicketEventsTable string `yaml:"ticket_events_table"`
	MerchEventsTable  string `yaml:"merch_events_table"`

	// ExtraCORSOrigins are added to the environment defaults.
	// Entries wrapped in slashes, like /\.example\.dev$/, are regular expressions.
	ExtraCORSOrigins []string `yaml:"cors_origins"`

	// APIKeys maps username -> API key in the file; Load inverts it to key -> username.
	APIKeys map[string]string `yaml:"api_keys"`

	Level slog.Level `yaml:"-"`
}

var defaultCORSOrigins = map[Environment][]string{
	Dev: {
		"http://localhost:3000",
		`/^https?://[a-z0-9-]+\.acmuiuc\.pages\.dev$/`,
	},
	Prod: {
		"https://acm.illinois.edu",
		"https://www.acm.illinois.edu",
		`/^https?://[a-z0-9-]+\.acmuiuc\.pages\.dev$/`,
	},
}

func defaults() Config {
	return Config{
		Environment:       Prod,
		Port:              "8080",
		LogLevel:          "info",
		StoreBackend:      BackendDynamo,
		AWSRegion:         "us-east-1",
		TicketEventsTable: "infra-events-tickets-metadata",
		MerchEventsTable:  "infra-merchstore-metadata",
		APIKeys:           map[string]string{},
	}
}

// Load builds the configuration from defaults, then the YAML file named by
// CONFIG_FILE (if any), then environment variables.
//
// API_KEYS format: "username:key,username:key"
// VALID_CORS_ORIGINS format: "https://a.example,/regex/"
func Load() (Config, error) {
	cfg := defaults()

	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	setString(&cfg.Environment, "RUN_ENVIRONMENT")
	setString(&cfg.Port, "PORT")
	setString(&cfg.LogLevel, "LOG_LEVEL")
	setString(&cfg.StoreBackend, "STORE_BACKEND")
	setString(&cfg.DBURL, "DB_URL")
	setString(&cfg.AWSRegion, "AWS_REGION")
	setString(&cfg.DynamoEndpoint, "DYNAMO_ENDPOINT")
	setString(&cfg.TicketEventsTable, "TICKET_EVENTS_TABLE")
	setString(&cfg.MerchEventsTable, "MERCH_EVENTS_TABLE")

	if raw := strings.TrimSpace(os.Getenv("VALID_CORS_ORIGINS")); raw != "" {
		cfg.ExtraCORSOrigins = append(cfg.ExtraCORSOrigins, splitCSV(raw)...)
	}

	if raw := strings.TrimSpace(os.Getenv("API_KEYS")); raw != "" {
		for _, p := range splitCSV(raw) {
			parts := strings.SplitN(p, ":", 2)
			if len(parts) != 2 {
				return Config{}, errors.New(`API_KEYS must be "username:key,username:key"`)
			}
			user := strings.TrimSpace(parts[0])
			key := strings.TrimSpace(parts[1])
			if user == "" || key == "" {
				return Config{}, errors.New(`API_KEYS must be "username:key,username:key"`)
			}
			cfg.APIKeys[user] = key
		}
	}

	if cfg.DynamoEndpoint != "" && os.Getenv("AWS_ACCESS_KEY_ID") == "" {
		cfg.DynamoAccessKeyID = "local"
		cfg.DynamoSecretAccessKey = "local"
	}

	if err := cfg.finish(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.APIKeys == nil {
		cfg.APIKeys = map[string]string{}
	}
	return nil
}

// finish validates cfg and derives the computed fields.
func (c *Config) finish() error {
	switch c.Environment {
	case Dev, Prod:
	default:
		return fmt.Errorf("RUN_ENVIRONMENT must be %q or %q, got %q", Dev, Prod, c.Environment)
	}

	if err := c.Level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return fmt.Errorf("LOG_LEVEL: %w", err)
	}

	switch c.StoreBackend {
	case BackendDynamo:
		if c.AWSRegion == "" {
			return errors.New("AWS_REGION required")
		}
	case BackendPostgres:
		if c.DBURL == "" {
			return errors.New("DB_URL required for postgres backend")
		}
	default:
		return fmt.Errorf("STORE_BACKEND must be %q or %q, got %q", BackendDynamo, BackendPostgres, c.StoreBackend)
	}

	if c.TicketEventsTable == "" || c.MerchEventsTable == "" {
		return errors.New("table names must not be empty")
	}
	if c.Port == "" {
		return errors.New("PORT must not be empty")
	}

	if _, _, err := ParseOrigins(c.CORSOrigins()); err != nil {
		return err
	}

	byKey := make(map[string]string, len(c.APIKeys))
	for user, key := range c.APIKeys {
		if _, dup := byKey[key]; dup {
			return fmt.Errorf("API key for %q is shared with another user", user)
		}
		byKey[key] = user
	}
	c.APIKeys = byKey

	return nil
}

// CORSOrigins returns the environment defaults plus the extra origins.
func (c Config) CORSOrigins() []string {
	out := append([]string{}, defaultCORSOrigins[c.Environment]...)
	return append(out, c.ExtraCORSOrigins...)
}

// Collections returns the record collections served by the API.
func (c Config) Collections() []records.Collection {
	return []records.Collection{
		{Name: records.TicketEvents, Table: c.TicketEventsTable, IdentityAttribute: records.TicketIdentity},
		{Name: records.MerchEvents, Table: c.MerchEventsTable, IdentityAttribute: records.MerchIdentity},
	}
}

// ParseOrigins splits origin entries into exact matches and compiled
// regular expressions (entries written as /expr/).
func ParseOrigins(entries []string) ([]string, []*regexp.Regexp, error) {
	var exact []string
	var patterns []*regexp.Regexp
	for _, e := range entries {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		if len(e) > 2 && strings.HasPrefix(e, "/") && strings.HasSuffix(e, "/") {
			re, err := regexp.Compile(e[1 : len(e)-1])
			if err != nil {
				return nil, nil, fmt.Errorf("cors origin %s: %w", e, err)
			}
			patterns = append(patterns, re)
			continue
		}
		exact = append(exact, e)
	}
	return exact, patterns, nil
}

func setString[T ~string](dst *T, env string) {
	if v := strings.TrimSpace(os.Getenv(env)); v != "" {
		*dst = T(v)
	}
}

func splitCSV(input string) []string {
	parts := strings.Split(input, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}
