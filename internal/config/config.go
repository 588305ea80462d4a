package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/carson-networks/budget-ledger/internal/aggregate"
)

const (
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

type Config struct {
	PostgresAddress  string
	PostgresPort     string
	PostgresDB       string
	PostgresUsername string
	PostgresPassword string

	Port           string
	StorageBackend string
	LogLevel       string

	OperatorWorkers        int
	MaterializeConcurrency int
	VarianceConvention     string
	OmitUncategorized      bool
	Currency               string
	AggregateCacheSize     int

	// AggregateCacheTTL caps how long a cached summary can lag writes made by
	// other processes sharing the database.
	AggregateCacheTTL time.Duration

	AMQPURL        string
	AMQPExchange   string
	AMQPRoutingKey string
}

// ProcessEnvironmentVariables reads an optional .env file and then the process
// environment. Unset variables keep the docker compose defaults.
func ProcessEnvironmentVariables() (*Config, error) {
	_ = godotenv.Load()

	// In all cases the default behavior should be for the docker compose setup
	env := Config{
		PostgresAddress:  "localhost",
		PostgresPort:     "5433",
		PostgresDB:       "postgres",
		PostgresUsername: "postgres",
		PostgresPassword: "testpassword",

		Port:           "9446",
		StorageBackend: BackendPostgres,
		LogLevel:       "info",

		OperatorWorkers:        4,
		MaterializeConcurrency: 4,
		VarianceConvention:     aggregate.TargetMinusActual.String(),
		Currency:               "USD",
		AggregateCacheSize:     1024,
		AggregateCacheTTL:      5 * time.Minute,

		AMQPExchange:   "ledger",
		AMQPRoutingKey: "ledger.changed",
	}

	setString(&env.PostgresAddress, "POSTGRES_ADDRESS")
	setString(&env.PostgresPort, "POSTGRES_PORT")
	setString(&env.PostgresDB, "POSTGRES_DB")
	setString(&env.PostgresUsername, "POSTGRES_USERNAME")
	setString(&env.PostgresPassword, "POSTGRES_PASSWORD")

	setString(&env.Port, "PORT")
	setString(&env.StorageBackend, "STORAGE_BACKEND")
	setString(&env.LogLevel, "LOG_LEVEL")
	setString(&env.VarianceConvention, "VARIANCE_CONVENTION")
	setString(&env.Currency, "CURRENCY")
	setString(&env.AMQPURL, "AMQP_URL")
	setString(&env.AMQPExchange, "AMQP_EXCHANGE")
	setString(&env.AMQPRoutingKey, "AMQP_ROUTING_KEY")

	var problems []string
	for key, dst := range map[string]*int{
		"OPERATOR_WORKERS":        &env.OperatorWorkers,
		"MATERIALIZE_CONCURRENCY": &env.MaterializeConcurrency,
		"AGGREGATE_CACHE_SIZE":    &env.AggregateCacheSize,
	} {
		if err := setInt(dst, key); err != nil {
			problems = append(problems, err.Error())
		}
	}
	if err := setBool(&env.OmitUncategorized, "OMIT_UNCATEGORIZED"); err != nil {
		problems = append(problems, err.Error())
	}
	if err := setDuration(&env.AggregateCacheTTL, "AGGREGATE_CACHE_TTL"); err != nil {
		problems = append(problems, err.Error())
	}
	if len(problems) > 0 {
		return nil, fmt.Errorf("configuration parsing failed:\n- %s", strings.Join(problems, "\n- "))
	}

	return &env, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var problems []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		problems = append(problems, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch c.StorageBackend {
	case BackendPostgres:
		if c.PostgresAddress == "" || c.PostgresDB == "" {
			problems = append(problems, "postgres address and database are required for the postgres backend")
		}
	case BackendMemory:
	default:
		problems = append(problems, fmt.Sprintf("invalid storage backend '%s': must be one of [%s %s]",
			c.StorageBackend, BackendPostgres, BackendMemory))
	}

	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		problems = append(problems, fmt.Sprintf("invalid log level '%s'", c.LogLevel))
	}
	if c.OperatorWorkers < 1 {
		problems = append(problems, fmt.Sprintf("invalid operator workers %d: must be at least 1", c.OperatorWorkers))
	}
	if c.MaterializeConcurrency < 1 {
		problems = append(problems, fmt.Sprintf("invalid materialize concurrency %d: must be at least 1", c.MaterializeConcurrency))
	}
	if c.AggregateCacheSize < 1 {
		problems = append(problems, fmt.Sprintf("invalid aggregate cache size %d: must be at least 1", c.AggregateCacheSize))
	}
	if c.AggregateCacheTTL < 0 {
		problems = append(problems, fmt.Sprintf("invalid aggregate cache ttl %s: must not be negative", c.AggregateCacheTTL))
	}
	if _, err := aggregate.ParseVarianceConvention(c.VarianceConvention); err != nil {
		problems = append(problems, err.Error())
	}
	if len(c.Currency) != 3 {
		problems = append(problems, fmt.Sprintf("invalid currency '%s': must be an ISO 4217 code", c.Currency))
	}

	if c.AMQPURL != "" {
		if parsed, err := url.Parse(c.AMQPURL); err != nil {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsed.Scheme != "amqp" && parsed.Scheme != "amqps" {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsed.Scheme))
		}
		if c.AMQPExchange == "" {
			problems = append(problems, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}

// PostgresDSN builds the lib/pq connection string.
func (c *Config) PostgresDSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.PostgresUsername, c.PostgresPassword),
		Host:     c.PostgresAddress + ":" + c.PostgresPort,
		Path:     "/" + c.PostgresDB,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); len(v) != 0 {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v := os.Getenv(key)
	if len(v) == 0 {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s must be a number, got '%s'", key, v)
	}
	*dst = n
	return nil
}

func setBool(dst *bool, key string) error {
	v := os.Getenv(key)
	if len(v) == 0 {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("%s must be a boolean, got '%s'", key, v)
	}
	*dst = b
	return nil
}

func setDuration(dst *time.Duration, key string) error {
	v := os.Getenv(key)
	if len(v) == 0 {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s must be a duration such as 5m, got '%s'", key, v)
	}
	*dst = d
	return nil
}
