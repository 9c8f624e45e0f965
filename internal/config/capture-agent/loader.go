package capture_agent_config

import (
	"strings"

	"github.com/spf13/viper"
)

// DefaultTargetPackage is the wallet app the agent was first deployed for.
const DefaultTargetPackage = "br.com.xp.carteira"

func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
		_ = v.ReadInConfig()
	}

	v.SetDefault("app.name", "capture-agent")
	v.SetDefault("app.env", "dev")
	v.SetDefault("app.version", "")

	v.SetDefault("capture.target_package", DefaultTargetPackage)
	v.SetDefault("capture.auto_start", false)

	v.SetDefault("source.kind", SourceHTTP)
	v.SetDefault("source.access_granted", true)
	v.SetDefault("source.kafka.brokers", []string{"localhost:9094"})
	v.SetDefault("source.kafka.topic", "capture.notifications.raw")
	v.SetDefault("source.kafka.group_id", "capture-agent")
	v.SetDefault("source.kafka.from_beginning", false)

	v.SetDefault("sink.kafka.enable", false)
	v.SetDefault("sink.kafka.brokers", []string{"localhost:9094"})
	v.SetDefault("sink.kafka.topic", "capture.notifications.received")
	v.SetDefault("sink.kafka.buffer", 256)
	v.SetDefault("sink.kafka.timeout", "3s")
	v.SetDefault("sink.kafka.attempts", 3)
	v.SetDefault("sink.stream.enable", true)
	v.SetDefault("sink.stream.buffer", 32)

	v.SetDefault("server.http_addr", ":8090")
	v.SetDefault("server.metrics_addr", ":8091")
	v.SetDefault("server.read_timeout", "5s")
	v.SetDefault("server.write_timeout", "5s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("server.graceful_timeout", "10s")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:5173"})
	v.SetDefault("server.token_hash", "")

	v.SetDefault("otel.enable", false)
	v.SetDefault("otel.service_name", "capture-agent")
	v.SetDefault("otel.sample_ratio", 1.0)
	v.SetDefault("otel.otlp_endpoint", "localhost:4317")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	c.Capture.TargetPackage = strings.TrimSpace(c.Capture.TargetPackage)
	if c.Capture.TargetPackage == "" {
		return ErrConfig("capture.target_package must not be empty")
	}
	switch c.Source.Kind {
	case SourceHTTP:
	case SourceKafka:
		if len(c.Source.Kafka.Brokers) == 0 || c.Source.Kafka.Topic == "" {
			return ErrConfig("source.kafka needs brokers and topic")
		}
	default:
		return ErrConfig("source.kind must be http or kafka, got " + c.Source.Kind)
	}
	if c.Sink.Kafka.Enable && (len(c.Sink.Kafka.Brokers) == 0 || c.Sink.Kafka.Topic == "") {
		return ErrConfig("sink.kafka needs brokers and topic")
	}
	if c.Sink.Kafka.Buffer <= 0 {
		c.Sink.Kafka.Buffer = 1
	}
	if c.Sink.Stream.Buffer <= 0 {
		c.Sink.Stream.Buffer = 1
	}
	return nil
}
