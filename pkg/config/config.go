package config

import "time"

type Config struct {
	App            AppConfig            `mapstructure:"app"`
	HTTP           HTTPConfig           `mapstructure:"http"`
	OCPP           OCPPConfig           `mapstructure:"ocpp"`
	Database       DatabaseConfig       `mapstructure:"database"`
	Redis          RedisConfig          `mapstructure:"redis"`
	NATS           NATSConfig           `mapstructure:"nats"`
	RabbitMQ       RabbitMQConfig       `mapstructure:"rabbitmq"`
	JWT            JWTConfig            `mapstructure:"jwt"`
	OpenTelemetry  OpenTelemetryConfig  `mapstructure:"opentelemetry"`
	Prometheus     PrometheusConfig     `mapstructure:"prometheus"`
	Logging        LoggingConfig        `mapstructure:"logging"`
	RateLimiting   RateLimitingConfig   `mapstructure:"rate_limiting"`
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"`
	CORS           CORSConfig           `mapstructure:"cors"`
	Security       SecurityConfig       `mapstructure:"security"`
	Cache          CacheConfig          `mapstructure:"cache"`
	Limits         LimitsConfig         `mapstructure:"limits"`
	Tenant         TenantConfig         `mapstructure:"tenant"`
	Tariff         TariffConfig         `mapstructure:"tariff"`
	Reaper         ReaperConfig         `mapstructure:"reaper"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type HTTPConfig struct {
	Port           int           `mapstructure:"port"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
}

type OCPPConfig struct {
	Port16                int           `mapstructure:"port_16"`
	Port201               int           `mapstructure:"port_201"`
	HeartbeatInterval     int           `mapstructure:"heartbeat_interval"`
	WebsocketPingInterval time.Duration `mapstructure:"websocket_ping_interval"`
	CallTimeout           time.Duration `mapstructure:"call_timeout"`
	Security              OCPPSecurity  `mapstructure:"security"`
}

type OCPPSecurity struct {
	Enabled    bool   `mapstructure:"enabled"`
	TLSCert    string `mapstructure:"tls_cert"`
	TLSKey     string `mapstructure:"tls_key"`
	ClientAuth bool   `mapstructure:"client_auth"`
}

type DatabaseConfig struct {
	URL             string        `mapstructure:"url"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
	LogQueries      bool          `mapstructure:"log_queries"`
}

type RedisConfig struct {
	URL          string        `mapstructure:"url"`
	MaxRetries   int           `mapstructure:"max_retries"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	PoolTimeout  time.Duration `mapstructure:"pool_timeout"`
}

type NATSConfig struct {
	URL           string        `mapstructure:"url"`
	MaxReconnects int           `mapstructure:"max_reconnects"`
	ReconnectWait time.Duration `mapstructure:"reconnect_wait"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

type RabbitMQConfig struct {
	URL          string `mapstructure:"url"`
	Exchange     string `mapstructure:"exchange"`
	ExchangeType string `mapstructure:"exchange_type"`
}

type JWTConfig struct {
	Secret               string        `mapstructure:"secret"`
	AccessTokenDuration  time.Duration `mapstructure:"access_token_duration"`
	RefreshTokenDuration time.Duration `mapstructure:"refresh_token_duration"`
	Issuer               string        `mapstructure:"issuer"`
	Audience             string        `mapstructure:"audience"`
}

type OpenTelemetryConfig struct {
	Enabled     bool              `mapstructure:"enabled"`
	Jaeger      JaegerConfig      `mapstructure:"jaeger"`
	ServiceName string            `mapstructure:"service_name"`
	Attributes  map[string]string `mapstructure:"attributes"`
}

type JaegerConfig struct {
	Endpoint     string  `mapstructure:"endpoint"`
	SamplerType  string  `mapstructure:"sampler_type"`
	SamplerParam float64 `mapstructure:"sampler_param"`
}

type PrometheusConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
	Port    int    `mapstructure:"port"`
}

type LoggingConfig struct {
	Level    string          `mapstructure:"level"`
	Format   string          `mapstructure:"format"`
	Output   string          `mapstructure:"output"`
	Sampling LoggingSampling `mapstructure:"sampling"`
}

type LoggingSampling struct {
	Enabled    bool `mapstructure:"enabled"`
	Initial    int  `mapstructure:"initial"`
	Thereafter int  `mapstructure:"thereafter"`
}

type RateLimitingConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	MaxRequests int           `mapstructure:"max_requests"`
	Window      time.Duration `mapstructure:"window"`
	ByUser      bool          `mapstructure:"by_user"`
}

type CircuitBreakerConfig struct {
	Enabled          bool          `mapstructure:"enabled"`
	MaxRequests      int           `mapstructure:"max_requests"`
	Interval         time.Duration `mapstructure:"interval"`
	Timeout          time.Duration `mapstructure:"timeout"`
	FailureThreshold float64       `mapstructure:"failure_threshold"`
}

type CORSConfig struct {
	Enabled        bool     `mapstructure:"enabled"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers"`
	ExposeHeaders  []string `mapstructure:"expose_headers"`
	MaxAge         int      `mapstructure:"max_age"`
	Credentials    bool     `mapstructure:"credentials"`
}

type SecurityConfig struct {
	EnableHTTPS bool   `mapstructure:"enable_https"`
	TLSCertPath string `mapstructure:"tls_cert_path"`
	TLSKeyPath  string `mapstructure:"tls_key_path"`
	EnableMTLS  bool   `mapstructure:"enable_mtls"`
	CACertPath  string `mapstructure:"ca_cert_path"`
}

type CacheConfig struct {
	StationStatusTTL time.Duration `mapstructure:"station_status_ttl"`
	SessionTTL       time.Duration `mapstructure:"session_ttl"`
	TokenBlacklistTTL time.Duration `mapstructure:"token_blacklist_ttl"`
}

type LimitsConfig struct {
	MaxActiveSessionsPerStation int           `mapstructure:"max_active_sessions_per_station"`
	MaxTransactionDuration      time.Duration `mapstructure:"max_transaction_duration"`
	MaxRequestBodySize          string        `mapstructure:"max_request_body_size"`
}

// TenantConfig carries the platform-wide tenant resolution defaults (spec.md
// §4.1): the fallback tenant for bare stationIds and the header/subdomain
// toggles, not the per-tenant TenantConfig embedded in domain.Tenant.
type TenantConfig struct {
	DefaultTenantCode     string `mapstructure:"default_tenant_code"`
	HeaderResolutionEnabled bool `mapstructure:"header_resolution_enabled"`
	SubdomainResolutionEnabled bool `mapstructure:"subdomain_resolution_enabled"`
}

type TariffConfig struct {
	DefaultCurrency      string `mapstructure:"default_currency"`
	BillingIncrementSecs int    `mapstructure:"billing_increment_secs"`
	TaxRatePercent       float64 `mapstructure:"tax_rate_percent"`
}

// ReaperConfig: SweepInterval sets the reservation-expiry sweep's ticker in
// cmd/server. The session-liveness reaper (spec.md §4.3) runs on its own
// fixed 60s ticker and reads neither field; SessionStaleAfter is not read
// anywhere.
type ReaperConfig struct {
	SweepInterval       time.Duration `mapstructure:"sweep_interval"`
	SessionStaleAfter   time.Duration `mapstructure:"session_stale_after"`
}
