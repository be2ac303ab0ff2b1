package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App       AppConfig
	HTTP      HTTPConfig
	DB        DBConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	Relay     RelayConfig
	Events    EventsConfig
	GCP       GCPConfig
	Devices   DevicesConfig
	Password  PasswordConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Relay.Mode {
	case RelayModeEmbedded, RelayModeDisabled:
	case RelayModeRemote:
		if strings.TrimSpace(c.Relay.URL) == "" {
			return fmt.Errorf("%s is required when %s=%s", EnvRelayURL, EnvRelayMode, RelayModeRemote)
		}
	default:
		return fmt.Errorf("unsupported %s %q", EnvRelayMode, c.Relay.Mode)
	}
	switch c.Devices.Strategy {
	case DeviceStrategyCounting, DeviceStrategyInsert:
	default:
		return fmt.Errorf("unsupported %s %q", EnvDeviceStrategy, c.Devices.Strategy)
	}
	switch c.Password.Storage {
	case PasswordStoragePlaintext, PasswordStorageArgon2id:
	default:
		return fmt.Errorf("unsupported %s %q", EnvPasswordStorage, c.Password.Storage)
	}
	if c.Events.PubSubTopic != "" && strings.TrimSpace(c.GCP.ProjectID) == "" {
		return fmt.Errorf("%s is required when %s is set", EnvGCPProjectID, EnvEventsPubSubTopic)
	}
	return nil
}

type AppConfig struct {
	Env          string `envconfig:"DASHBOARD_APP_ENV" default:"dev"`
	Port         string `envconfig:"DASHBOARD_APP_PORT" default:"3001"`
	LogLevel     string `envconfig:"DASHBOARD_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"DASHBOARD_LOG_WARN_STACK" default:"false"`
	AutoMigrate  bool   `envconfig:"DASHBOARD_AUTO_MIGRATE" default:"true"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type HTTPConfig struct {
	MaxBodyBytes   int64    `envconfig:"DASHBOARD_HTTP_MAX_BODY_BYTES" default:"52428800"`
	AllowedOrigins []string `envconfig:"DASHBOARD_HTTP_ALLOWED_ORIGINS" default:"*"`
}

type DBConfig struct {
	DSN    string `envconfig:"DASHBOARD_DB_DSN"`
	Driver string `envconfig:"DASHBOARD_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"DASHBOARD_DB_HOST"`
	LegacyPort     int    `envconfig:"DASHBOARD_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"DASHBOARD_DB_USER"`
	LegacyPassword string `envconfig:"DASHBOARD_DB_PASSWORD"`
	LegacyName     string `envconfig:"DASHBOARD_DB_NAME"`
	LegacySSLMode  string `envconfig:"DASHBOARD_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"DASHBOARD_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"DASHBOARD_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"DASHBOARD_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"DASHBOARD_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the store runs on the embedded sqlite driver.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(db.Driver, DBDriverSQLite)
}

type RedisConfig struct {
	URL          string        `envconfig:"DASHBOARD_REDIS_URL"`
	Address      string        `envconfig:"DASHBOARD_REDIS_ADDR"`
	Password     string        `envconfig:"DASHBOARD_REDIS_PASSWORD"`
	DB           int           `envconfig:"DASHBOARD_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"DASHBOARD_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"DASHBOARD_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"DASHBOARD_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"DASHBOARD_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"DASHBOARD_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether a redis endpoint was configured.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type RateLimitConfig struct {
	CheckUserWindow     time.Duration `envconfig:"DASHBOARD_RATE_LIMIT_CHECK_USER_WINDOW" default:"1m"`
	CheckUserIPLimit    int           `envconfig:"DASHBOARD_RATE_LIMIT_CHECK_USER_IP_LIMIT" default:"60"`
	CheckUserEmailLimit int           `envconfig:"DASHBOARD_RATE_LIMIT_CHECK_USER_EMAIL_LIMIT" default:"30"`
	SignUpWindow        time.Duration `envconfig:"DASHBOARD_RATE_LIMIT_SIGNUP_WINDOW" default:"5m"`
	SignUpIPLimit       int           `envconfig:"DASHBOARD_RATE_LIMIT_SIGNUP_IP_LIMIT" default:"20"`
	SignUpEmailLimit    int           `envconfig:"DASHBOARD_RATE_LIMIT_SIGNUP_EMAIL_LIMIT" default:"10"`
}

type RelayConfig struct {
	Mode    string        `envconfig:"DASHBOARD_RELAY_MODE" default:"embedded"`
	URL     string        `envconfig:"DASHBOARD_RELAY_URL"`
	Port    string        `envconfig:"DASHBOARD_RELAY_PORT" default:"3002"`
	Timeout time.Duration `envconfig:"DASHBOARD_RELAY_TIMEOUT" default:"0s"`
}

type EventsConfig struct {
	Enabled     bool   `envconfig:"DASHBOARD_EVENTS_ENABLED" default:"true"`
	PubSubTopic string `envconfig:"DASHBOARD_EVENTS_PUBSUB_TOPIC"`
}

type GCPConfig struct {
	ProjectID string `envconfig:"DASHBOARD_GCP_PROJECT_ID"`
}

type DevicesConfig struct {
	Strategy string `envconfig:"DASHBOARD_DEVICE_STRATEGY" default:"counting"`
}

type PasswordConfig struct {
	Storage          string `envconfig:"DASHBOARD_PASSWORD_STORAGE" default:"plaintext"`
	ArgonMemoryKB    int    `envconfig:"DASHBOARD_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int    `envconfig:"DASHBOARD_ARGON_TIME" default:"3"`
	ArgonParallelism int    `envconfig:"DASHBOARD_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int    `envconfig:"DASHBOARD_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int    `envconfig:"DASHBOARD_ARGON_KEY_LEN" default:"32"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.IsSQLite() {
		db.DSN = "file:dashboard.db?cache=shared"
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
