package config

import "strings"

// Драйверы хранилища заметок
const (
	DriverFile     = "file"
	DriverMemory   = "memory"
	DriverS3       = "s3"
	DriverPostgres = "postgres"
)

// ConfigLogger настройки логирования
type ConfigLogger struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // text или json
}

// ConfigServer настройки сервера
type ConfigServer struct {
	UseReflection           bool   `mapstructure:"use_reflection"`
	PortGRPC                int    `mapstructure:"port_grpc"`
	PortHTTP                int    `mapstructure:"port_http"`
	HTTPReadTimeout         int    `mapstructure:"http_read_timeout"`
	HTTPWriteTimeout        int    `mapstructure:"http_write_timeout"`
	HTTPIdleTimeout         int    `mapstructure:"http_idle_timeout"`
	HTTPReadHeaderTimeout   int    `mapstructure:"http_read_header_timeout"`
	GracefulShutdownTimeout int    `mapstructure:"graceful_shutdown_timeout"`
	AuthToken               string `mapstructure:"auth_token"` // пустой токен отключает авторизацию gRPC
}

// ConfigHTTP настройки REST API
type ConfigHTTP struct {
	CORSAllowedOrigins string `mapstructure:"cors_allowed_origins"`
	CORSMaxAge         int    `mapstructure:"cors_max_age"`
	RateLimitRPS       int    `mapstructure:"rate_limit_rps"`
	RateLimitBurst     int    `mapstructure:"rate_limit_burst"`
}

// ConfigFileStorage настройки файлового хранилища
type ConfigFileStorage struct {
	Path string `mapstructure:"path"`
}

// ConfigS3Storage настройки хранилища в объекте S3
type ConfigS3Storage struct {
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	Bucket          string `mapstructure:"bucket"`
	Key             string `mapstructure:"key"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	UsePathStyle    bool   `mapstructure:"use_path_style"`
}

// ConfigPostgresStorage настройки PostgreSQL
type ConfigPostgresStorage struct {
	DSN string `mapstructure:"dsn"`
}

// ConfigStorage выбор и настройки хранилища
type ConfigStorage struct {
	Driver   string                 `mapstructure:"driver"`
	File     *ConfigFileStorage     `mapstructure:"file"`
	S3       *ConfigS3Storage       `mapstructure:"s3"`
	Postgres *ConfigPostgresStorage `mapstructure:"postgres"`
}

// ConfigKafka настройки издателя событий в Kafka
type ConfigKafka struct {
	Enabled bool   `mapstructure:"enabled"`
	Brokers string `mapstructure:"brokers"` // через запятую
	Topic   string `mapstructure:"topic"`

	Partitions        int `mapstructure:"partitions"`
	ReplicationFactor int `mapstructure:"replication_factor"`
}

// BrokerList разбирает список брокеров
func (c *ConfigKafka) BrokerList() []string {
	var brokers []string
	for _, b := range strings.Split(c.Brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

// ConfigEvents настройки публикации событий
type ConfigEvents struct {
	Kafka *ConfigKafka `mapstructure:"kafka"`
}

// ConfigMetrics настройки метрик Prometheus
type ConfigMetrics struct {
	Enabled bool `mapstructure:"enabled"`
}

// Config основная структура конфигурации
type Config struct {
	Logger  *ConfigLogger  `mapstructure:"logger"`
	Server  *ConfigServer  `mapstructure:"server"`
	HTTP    *ConfigHTTP    `mapstructure:"http"`
	Storage *ConfigStorage `mapstructure:"storage"`
	Events  *ConfigEvents  `mapstructure:"events"`
	Metrics *ConfigMetrics `mapstructure:"metrics"`
}

// SetDefaults заполняет отсутствующие секции и нулевые значения
func (c *Config) SetDefaults() {
	if c.Logger == nil {
		c.Logger = &ConfigLogger{}
	}
	if c.Logger.Level == "" {
		c.Logger.Level = "info"
	}
	if c.Logger.Format == "" {
		c.Logger.Format = "text"
	}

	if c.Server == nil {
		c.Server = &ConfigServer{}
	}
	if c.Server.PortGRPC == 0 {
		c.Server.PortGRPC = 50051
	}
	if c.Server.PortHTTP == 0 {
		c.Server.PortHTTP = 8080
	}
	if c.Server.HTTPReadTimeout == 0 {
		c.Server.HTTPReadTimeout = 15
	}
	if c.Server.HTTPWriteTimeout == 0 {
		c.Server.HTTPWriteTimeout = 15
	}
	if c.Server.HTTPIdleTimeout == 0 {
		c.Server.HTTPIdleTimeout = 60
	}
	if c.Server.HTTPReadHeaderTimeout == 0 {
		c.Server.HTTPReadHeaderTimeout = 5
	}
	if c.Server.GracefulShutdownTimeout == 0 {
		c.Server.GracefulShutdownTimeout = 10
	}

	if c.HTTP == nil {
		c.HTTP = &ConfigHTTP{}
	}
	if c.HTTP.CORSAllowedOrigins == "" {
		c.HTTP.CORSAllowedOrigins = "*"
	}
	if c.HTTP.CORSMaxAge == 0 {
		c.HTTP.CORSMaxAge = 300
	}

	if c.Storage == nil {
		c.Storage = &ConfigStorage{}
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = DriverFile
	}
	if c.Storage.File == nil {
		c.Storage.File = &ConfigFileStorage{}
	}
	if c.Storage.S3 == nil {
		c.Storage.S3 = &ConfigS3Storage{}
	}
	if c.Storage.Postgres == nil {
		c.Storage.Postgres = &ConfigPostgresStorage{}
	}

	if c.Events == nil {
		c.Events = &ConfigEvents{}
	}
	if c.Events.Kafka == nil {
		c.Events.Kafka = &ConfigKafka{}
	}
	if c.Events.Kafka.Topic == "" {
		c.Events.Kafka.Topic = "notes-events"
	}
	if c.Events.Kafka.Partitions <= 0 {
		c.Events.Kafka.Partitions = 1
	}
	if c.Events.Kafka.ReplicationFactor <= 0 {
		c.Events.Kafka.ReplicationFactor = 1
	}

	if c.Metrics == nil {
		c.Metrics = &ConfigMetrics{}
	}
}
