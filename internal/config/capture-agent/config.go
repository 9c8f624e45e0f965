package capture_agent_config

import (
	"time"

	"github.com/NordCoder/NotifyCapture/internal/obs"
	kafkax "github.com/NordCoder/NotifyCapture/internal/repository/kafka"
)

const (
	SourceHTTP  = "http"
	SourceKafka = "kafka"
)

type App struct {
	Name    string `mapstructure:"name"`
	Env     string `mapstructure:"env"`
	Version string `mapstructure:"version"`
}

type Capture struct {
	TargetPackage string `mapstructure:"target_package"`
	AutoStart     bool   `mapstructure:"auto_start"`
}

type KafkaIn struct {
	Brokers       []string `mapstructure:"brokers"`
	Topic         string   `mapstructure:"topic"`
	GroupID       string   `mapstructure:"group_id"`
	FromBeginning bool     `mapstructure:"from_beginning"`
}

func (k *KafkaIn) AsConsumerConfig() *kafkax.ConsumerConfig {
	return &kafkax.ConsumerConfig{
		Brokers:       k.Brokers,
		GroupID:       k.GroupID,
		Topic:         k.Topic,
		FromBeginning: k.FromBeginning,
	}
}

type Source struct {
	Kind          string  `mapstructure:"kind"`
	AccessGranted bool    `mapstructure:"access_granted"`
	Kafka         KafkaIn `mapstructure:"kafka"`
}

type KafkaOut struct {
	Enable   bool          `mapstructure:"enable"`
	Brokers  []string      `mapstructure:"brokers"`
	Topic    string        `mapstructure:"topic"`
	Buffer   int           `mapstructure:"buffer"`
	Timeout  time.Duration `mapstructure:"timeout"`
	Attempts int           `mapstructure:"attempts"`
}

type Stream struct {
	Enable bool `mapstructure:"enable"`
	Buffer int  `mapstructure:"buffer"`
}

type Sink struct {
	Kafka  KafkaOut `mapstructure:"kafka"`
	Stream Stream   `mapstructure:"stream"`
}

type Server struct {
	HTTPAddr        string        `mapstructure:"http_addr"`
	MetricsAddr     string        `mapstructure:"metrics_addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	GracefulTimeout time.Duration `mapstructure:"graceful_timeout"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
	// bcrypt hash of the bearer token required on /v1; empty disables the check
	TokenHash string `mapstructure:"token_hash"`
}

type OTEL struct {
	Enable       bool    `mapstructure:"enable"`
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	ServiceName  string  `mapstructure:"service_name"`
	SampleRatio  float64 `mapstructure:"sample_ratio"`
}

func (oc *OTEL) AsOTELConfig() *obs.OTELConfig {
	return &obs.OTELConfig{
		Enable:      oc.Enable,
		Endpoint:    oc.OTLPEndpoint,
		ServiceName: oc.ServiceName,
		SampleRatio: oc.SampleRatio,
	}
}

type Log struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

type Config struct {
	App     App     `mapstructure:"app"`
	Capture Capture `mapstructure:"capture"`
	Source  Source  `mapstructure:"source"`
	Sink    Sink    `mapstructure:"sink"`
	Server  Server  `mapstructure:"server"`
	OTEL    OTEL    `mapstructure:"otel"`
	Log     Log     `mapstructure:"log"`
}

func (c *Config) AsLoggerConfig() obs.LogConfig {
	return obs.LogConfig{
		Level:  c.Log.Level,
		Pretty: c.Log.Pretty,
		App:    c.App.Name,
		Env:    c.App.Env,
		Ver:    c.App.Version,
	}
}

type ErrConfig string

func (e ErrConfig) Error() string { return string(e) }
