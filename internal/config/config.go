package config

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	RatesSourceStatic   = "static"
	RatesSourcePostgres = "postgres"
)

type Config struct {
	Engine     EngineConfig
	Simulation SimulationConfig
	Rates      RatesConfig
	DB         DBConfig
	Kafka      KafkaConfig
	Mongo      MongoConfig
	Events     EventsConfig
	LogLevel   string        `envconfig:"LOG_LEVEL" default:"info"`
	LogFile    string        `envconfig:"LOG_FILE" default:"engine.log"`
	Shutdown   time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

type EngineConfig struct {
	WorkersPerBank    int           `envconfig:"WORKERS_PER_BANK" default:"4"`
	ProcessingLatency time.Duration `envconfig:"PROCESSING_LATENCY" default:"30ms"`
}

type SimulationConfig struct {
	Duration          time.Duration `envconfig:"SIM_DURATION" default:"5s"`
	AccountsPerBank   int           `envconfig:"SIM_ACCOUNTS_PER_BANK" default:"10"`
	GeneratorsPerBank int           `envconfig:"SIM_GENERATORS_PER_BANK" default:"1"`
	Interval          time.Duration `envconfig:"SIM_INTERVAL" default:"10ms"`
	MaxAmount         int64         `envconfig:"SIM_MAX_AMOUNT" default:"100000"`
	MaxBalance        int64         `envconfig:"SIM_MAX_BALANCE" default:"1000000"`
	MaxOverdraft      int64         `envconfig:"SIM_MAX_OVERDRAFT" default:"50000"`
	ReserveBalance    int64         `envconfig:"SIM_RESERVE_BALANCE" default:"100000000"`
	// InternationalShare is the fraction of generated transfers that cross banks.
	InternationalShare float64 `envconfig:"SIM_INTERNATIONAL_SHARE" default:"0.5"`
	Seed               int64   `envconfig:"SIM_SEED" default:"0"`
}

type RatesConfig struct {
	Source string `envconfig:"RATES_SOURCE" default:"static"`
	// Static overrides the built-in table, e.g. "USD:1,EUR:0.92".
	Static string `envconfig:"RATES_STATIC"`
}

type DBConfig struct {
	Host           string `envconfig:"POSTGRES_HOST"`
	Port           string `envconfig:"POSTGRES_PORT"     default:"5432"`
	User           string `envconfig:"POSTGRES_USER"`
	Password       string `envconfig:"POSTGRES_PASSWORD"`
	DBName         string `envconfig:"POSTGRES_DB"`
	SSLMode        string `envconfig:"POSTGRES_SSLMODE"  default:"disable"`
	MigrationsPath string `envconfig:"MIGRATIONS_PATH"   default:"migrations"`
}

type KafkaConfig struct {
	Brokers []string `envconfig:"KAFKA_BROKERS" default:"localhost:9092"`
	Topic   string   `envconfig:"KAFKA_TOPIC" default:"transfer-events"`
	Enabled bool     `envconfig:"KAFKA_ENABLED" default:"false"`
}

type MongoConfig struct {
	Enabled    bool          `envconfig:"MONGO_ENABLED" default:"false"`
	URI        string        `envconfig:"MONGO_URI" default:"mongodb://localhost:27017"`
	Database   string        `envconfig:"MONGO_DATABASE" default:"payments"`
	Collection string        `envconfig:"MONGO_COLLECTION" default:"transfers"`
	Timeout    time.Duration `envconfig:"MONGO_TIMEOUT" default:"10s"`
}

type EventsConfig struct {
	Buffer         int           `envconfig:"EVENTS_BUFFER" default:"1000"`
	Workers        int           `envconfig:"EVENTS_WORKERS" default:"4"`
	PublishTimeout time.Duration `envconfig:"EVENTS_PUBLISH_TIMEOUT" default:"5s"`
}

func NewConfig() (*Config, error) {
	envFile := "config.env"

	if err := godotenv.Load(envFile); err != nil {
		log.Printf("warning: не удалось загрузить файл %s, используются только системные переменные окружения: %v", envFile, err)
	}

	return Load()
}

// Load reads the configuration from the process environment only.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("ошибка парсинга конфигурации: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error

	if c.Engine.WorkersPerBank <= 0 {
		errs = append(errs, errors.New("WORKERS_PER_BANK must be positive"))
	}
	if c.Engine.ProcessingLatency < 0 {
		errs = append(errs, errors.New("PROCESSING_LATENCY must not be negative"))
	}
	if c.Simulation.AccountsPerBank < 2 {
		errs = append(errs, errors.New("SIM_ACCOUNTS_PER_BANK must be at least 2"))
	}
	if c.Simulation.MaxAmount <= 0 {
		errs = append(errs, errors.New("SIM_MAX_AMOUNT must be positive"))
	}
	if c.Simulation.InternationalShare < 0 || c.Simulation.InternationalShare > 1 {
		errs = append(errs, errors.New("SIM_INTERNATIONAL_SHARE must be within [0, 1]"))
	}

	switch c.Rates.Source {
	case RatesSourceStatic:
	case RatesSourcePostgres:
		if c.DB.Host == "" || c.DB.User == "" || c.DB.DBName == "" {
			errs = append(errs, errors.New("POSTGRES_HOST, POSTGRES_USER and POSTGRES_DB are required for the postgres rates source"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown RATES_SOURCE %q", c.Rates.Source))
	}

	if c.Kafka.Enabled && (len(c.Kafka.Brokers) == 0 || c.Kafka.Topic == "") {
		errs = append(errs, errors.New("KAFKA_BROKERS and KAFKA_TOPIC are required when kafka is enabled"))
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}
func (d *DBConfig) MigrationURL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}
