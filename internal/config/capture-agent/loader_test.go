package capture_agent_config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, DefaultTargetPackage, cfg.Capture.TargetPackage)
	assert.Equal(t, SourceHTTP, cfg.Source.Kind)
	assert.True(t, cfg.Source.AccessGranted)
	assert.False(t, cfg.Sink.Kafka.Enable)
	assert.Equal(t, 3*time.Second, cfg.Sink.Kafka.Timeout)
	assert.Equal(t, ":8090", cfg.Server.HTTPAddr)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "capture-agent.yaml")
	err := os.WriteFile(path, []byte(`
capture:
  target_package: com.nubank.app
  auto_start: true
source:
  kind: kafka
  kafka:
    brokers: ["kafka:9092"]
    topic: raw
sink:
  kafka:
    enable: true
    topic: out
`), 0o644)
	require.NoError(t, err)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "com.nubank.app", cfg.Capture.TargetPackage)
	assert.True(t, cfg.Capture.AutoStart)
	assert.Equal(t, SourceKafka, cfg.Source.Kind)
	assert.Equal(t, []string{"kafka:9092"}, cfg.Source.Kafka.Brokers)
	assert.Equal(t, "raw", cfg.Source.Kafka.Topic)
	assert.True(t, cfg.Sink.Kafka.Enable)
	assert.Equal(t, "out", cfg.Sink.Kafka.Topic)
}

func TestLoadEnvOverridesTarget(t *testing.T) {
	t.Setenv("CAPTURE_TARGET_PACKAGE", "com.other.bank")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "com.other.bank", cfg.Capture.TargetPackage)
}

func TestValidateRejectsBadConfig(t *testing.T) {
	cfg := Config{Capture: Capture{TargetPackage: "  "}, Source: Source{Kind: SourceHTTP}}
	var cerr ErrConfig
	require.ErrorAs(t, cfg.Validate(), &cerr)

	cfg = Config{Capture: Capture{TargetPackage: "a.b"}, Source: Source{Kind: "carrier-pigeon"}}
	require.ErrorAs(t, cfg.Validate(), &cerr)
	assert.Contains(t, string(cerr), "carrier-pigeon")
}
