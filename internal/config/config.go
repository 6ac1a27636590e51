package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server       ServerConfig       `mapstructure:"server"       validate:"required"`
	Database     DatabaseConfig     `mapstructure:"database"     validate:"required"`
	Auth         AuthConfig         `mapstructure:"auth"         validate:"required"`
	Encryption   EncryptionConfig   `mapstructure:"encryption"   validate:"required"`
	Broker       BrokerConfig       `mapstructure:"broker"       validate:"required"`
	Mail         MailConfig         `mapstructure:"mail"         validate:"required"`
	Notification NotificationConfig `mapstructure:"notification" validate:"required"`
	Telemetry    TelemetryConfig    `mapstructure:"telemetry"    validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	// Driver selects the SQL backend: "postgres" for deployments, "sqlite" for local runs.
	Driver       string `mapstructure:"driver"         validate:"required,oneof=postgres sqlite"`
	URL          string `mapstructure:"url"            validate:"required"`
	MaxOpenConns int    `mapstructure:"max_open_conns" validate:"gte=0"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret" validate:"required,min=32"`
	// TokenLifetimeMinutes of zero issues tokens without an exp claim.
	TokenLifetimeMinutes int `mapstructure:"token_lifetime_minutes" validate:"gte=0"`
	BcryptCost           int `mapstructure:"bcrypt_cost"            validate:"gte=4,lte=31"`
}

// EncryptionConfig holds the pre-shared AES-256-CBC key and IV used for task summaries.
type EncryptionConfig struct {
	Key string `mapstructure:"key" validate:"required,len=32"`
	IV  string `mapstructure:"iv"  validate:"required,len=16"`
}

// BrokerConfig contains the AMQP settings shared by the publisher and the consumer.
type BrokerConfig struct {
	URL             string `mapstructure:"url"              validate:"required"`
	EmailQueue      string `mapstructure:"email_queue"      validate:"required"`
	PublishAttempts int    `mapstructure:"publish_attempts" validate:"gte=1"`
	// MaxRedeliveries of zero requeues failed deliveries without limit.
	MaxRedeliveries int  `mapstructure:"max_redeliveries" validate:"gte=0"`
	Prefetch        int  `mapstructure:"prefetch"         validate:"gte=0"`
	ConsumerEnabled bool `mapstructure:"consumer_enabled"`
}

// MailConfig contains the outbound SMTP settings.
type MailConfig struct {
	Host     string `mapstructure:"host"     validate:"required"`
	Port     int    `mapstructure:"port"     validate:"required,gt=0,lt=65536"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"     validate:"required,email"`
	TLSMode  string `mapstructure:"tls_mode" validate:"required,oneof=implicit starttls none"`
}

// NotificationConfig sizes the in-process dispatcher feeding the publisher.
type NotificationConfig struct {
	WorkerCount int `mapstructure:"worker_count" validate:"gte=1"`
	QueueSize   int `mapstructure:"queue_size"   validate:"gte=1"`
}

// TelemetryConfig selects how pipeline metrics are exported.
type TelemetryConfig struct {
	MetricsExporter       string `mapstructure:"metrics_exporter"        validate:"required,oneof=none stdout"`
	ExportIntervalSeconds int    `mapstructure:"export_interval_seconds" validate:"gt=0"`
}
