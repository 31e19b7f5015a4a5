package robotDataAgent

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultPollInterval = 10 * time.Second
	defaultHTTPTimeout  = 30 * time.Second
)

type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	APIURL          string
	PollInterval    time.Duration
	PollImmediately bool
	// HTTPTimeout of zero disables the per-request deadline.
	HTTPTimeout    time.Duration
	SchemaRequired bool

	KafkaBroker string
	KafkaTopic  string

	TgToken  string
	TgChatID int64

	MetricsAddr string
	LogLevel    string
}

// fileConfig mirrors the keys accepted in the YAML config file.
type fileConfig struct {
	Host                string `yaml:"host"`
	Port                string `yaml:"port"`
	Database            string `yaml:"database"`
	User                string `yaml:"user"`
	Password            string `yaml:"password"`
	APIURL              string `yaml:"apiUrl"`
	PollIntervalSeconds *int   `yaml:"pollIntervalSeconds"`
	HTTPTimeoutSeconds  *int   `yaml:"httpTimeoutSeconds"`
	PollImmediately     *bool  `yaml:"pollImmediately"`
	SchemaRequired      *bool  `yaml:"schemaRequired"`
	KafkaBroker         string `yaml:"kafkaBroker"`
	KafkaTopic          string `yaml:"kafkaTopic"`
	TelegramToken       string `yaml:"telegramToken"`
	TelegramChatID      int64  `yaml:"telegramChatId"`
	MetricsAddr         string `yaml:"metricsAddr"`
	LogLevel            string `yaml:"logLevel"`
}

// LoadConfig builds the configuration from defaults, an optional YAML file and
// the environment, in that order of precedence. A .env file in the working
// directory is loaded into the environment first. path may be empty, in which
// case CONFIG_FILE is consulted.
func LoadConfig(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DBHost:       "localhost",
		DBPort:       "5432",
		DBUser:       "postgres",
		DBName:       "robot_data_db",
		PollInterval: defaultPollInterval,
		HTTPTimeout:  defaultHTTPTimeout,
		LogLevel:     "info",
	}

	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	if path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	setString(&c.DBHost, fc.Host)
	setString(&c.DBPort, fc.Port)
	setString(&c.DBName, fc.Database)
	setString(&c.DBUser, fc.User)
	setString(&c.DBPassword, fc.Password)
	setString(&c.APIURL, fc.APIURL)
	setString(&c.KafkaBroker, fc.KafkaBroker)
	setString(&c.KafkaTopic, fc.KafkaTopic)
	setString(&c.TgToken, fc.TelegramToken)
	setString(&c.MetricsAddr, fc.MetricsAddr)
	setString(&c.LogLevel, fc.LogLevel)

	if fc.PollIntervalSeconds != nil {
		c.PollInterval = time.Duration(*fc.PollIntervalSeconds) * time.Second
	}
	if fc.HTTPTimeoutSeconds != nil {
		c.HTTPTimeout = time.Duration(*fc.HTTPTimeoutSeconds) * time.Second
	}
	if fc.PollImmediately != nil {
		c.PollImmediately = *fc.PollImmediately
	}
	if fc.SchemaRequired != nil {
		c.SchemaRequired = *fc.SchemaRequired
	}
	if fc.TelegramChatID != 0 {
		c.TgChatID = fc.TelegramChatID
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.DBHost = getEnv("DB_HOST", c.DBHost)
	c.DBPort = getEnv("DB_PORT", c.DBPort)
	c.DBUser = getEnv("DB_USER", c.DBUser)
	c.DBPassword = getEnv("DB_PASSWORD", c.DBPassword)
	c.DBName = getEnv("DB_NAME", c.DBName)
	c.APIURL = getEnv("API_URL", c.APIURL)
	c.KafkaBroker = getEnv("KAFKA_BROKER", c.KafkaBroker)
	c.KafkaTopic = getEnv("KAFKA_TOPIC", c.KafkaTopic)
	c.TgToken = getEnv("TG_TOKEN", c.TgToken)
	c.MetricsAddr = getEnv("METRICS_ADDR", c.MetricsAddr)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)

	var err error
	if c.PollInterval, err = getEnvSeconds("POLL_INTERVAL_SECONDS", c.PollInterval); err != nil {
		return err
	}
	if c.HTTPTimeout, err = getEnvSeconds("HTTP_TIMEOUT_SECONDS", c.HTTPTimeout); err != nil {
		return err
	}
	if c.PollImmediately, err = getEnvBool("POLL_IMMEDIATELY", c.PollImmediately); err != nil {
		return err
	}
	if c.SchemaRequired, err = getEnvBool("SCHEMA_REQUIRED", c.SchemaRequired); err != nil {
		return err
	}
	if v := os.Getenv("TG_CHAT_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("TG_CHAT_ID: %w", err)
		}
		c.TgChatID = id
	}
	return nil
}

func (c *Config) Validate() error {
	if c.APIURL == "" {
		return errors.New("api url is not set (API_URL or apiUrl)")
	}
	u, err := url.Parse(c.APIURL)
	if err != nil {
		return fmt.Errorf("api url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("api url %q must be an absolute http(s) url", c.APIURL)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %s", c.PollInterval)
	}
	if c.HTTPTimeout < 0 {
		return fmt.Errorf("http timeout must not be negative, got %s", c.HTTPTimeout)
	}
	if (c.KafkaBroker == "") != (c.KafkaTopic == "") {
		return errors.New("kafka broker and topic must be set together")
	}
	return nil
}

// DSN returns the connection string for the given database name.
func (c *Config) DSN(dbName string) string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, dbName)
}

func (c *Config) KafkaEnabled() bool {
	return c.KafkaBroker != "" && c.KafkaTopic != ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvSeconds(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return time.Duration(n) * time.Second, nil
}

func getEnvBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
