//go:build integration

package integration

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"google.golang.org/protobuf/proto"
)

/********** ENV CONFIG **********/

type Cfg struct {
	KafkaBootstrap string
	RawTopic       string
	ReceivedTopic  string
	AgentBaseURL   string
	AgentToken     string
}

func LoadCfg() Cfg {
	return Cfg{
		KafkaBootstrap: getenv("IT_BOOTSTRAP", "127.0.0.1:19092"),
		RawTopic:       getenv("IT_RAW_TOPIC", "capture.notifications.raw"),
		ReceivedTopic:  getenv("IT_RECEIVED_TOPIC", "capture.notifications.received"),
		AgentBaseURL:   getenv("IT_AGENT_BASE", "http://127.0.0.1:8090"),
		AgentToken:     os.Getenv("IT_AGENT_TOKEN"),
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func TCPReachable(addr string, timeout time.Duration) error {
	d := net.Dialer{Timeout: timeout}
	c, err := d.Dial("tcp", addr)
	if err != nil {
		return err
	}
	_ = c.Close()
	return nil
}

func WaitTCP(t *testing.T, name, addr string, timeout time.Duration) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	var last error
	for time.Now().Before(deadline) {
		if err := TCPReachable(addr, 1500*time.Millisecond); err == nil {
			t.Logf("[it] %s ready at %s", name, addr)
			return
		} else {
			last = err
			time.Sleep(300 * time.Millisecond)
		}
	}
	t.Fatalf("[it] %s not reachable at %s: %v", name, addr, last)
}

func WaitHealthz(t *testing.T, url string, timeout time.Duration) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		resp, err := http.Get(url)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				t.Logf("[it] healthz OK: %s", url)
				return
			}
		}
		time.Sleep(500 * time.Millisecond)
	}
	t.Fatalf("[it] healthz failed: %s", url)
}

func HTTPDoJSON(t *testing.T, method, url, token string, body []byte, want int) []byte {
	t.Helper()
	var rd io.Reader
	if body != nil {
		rd = strings.NewReader(string(body))
	}
	req, _ := http.NewRequest(method, url, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("[http] %s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != want {
		t.Fatalf("[http] %s %s: got %d want %d, body=%s", method, url, resp.StatusCode, want, string(b))
	}
	return b
}

func EnsureTopic(t *testing.T, bootstrap, topic string) {
	t.Helper()
	WaitTCP(t, "kafka", bootstrap, 60*time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()
	conn, err := kafka.DialContext(ctx, "tcp", bootstrap)
	if err != nil {
		t.Fatalf("[kafka] dial: %v", err)
	}
	defer conn.Close()

	if err := conn.CreateTopics(kafka.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}); err != nil && !errors.Is(err, kafka.TopicAlreadyExists) {
		t.Fatalf("[kafka] create topic %q: %v", topic, err)
	}
	parts, err := conn.ReadPartitions(topic)
	if err != nil || len(parts) == 0 {
		t.Fatalf("[kafka] partitions for %q: %v, len=%d", topic, err, len(parts))
	}
	t.Logf("[kafka] topic=%q partitions=%d", topic, len(parts))
}

func PublishRaw(t *testing.T, bootstrap, topic string, key, value []byte) {
	t.Helper()
	if err := TCPReachable(bootstrap, 2*time.Second); err != nil {
		t.Fatalf("[kafka] broker unreachable %s: %v", bootstrap, err)
	}
	w := &kafka.Writer{
		Addr:         kafka.TCP(bootstrap),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
	}
	defer func() {
		if err := w.Close(); err != nil {
			t.Logf("[kafka] writer close: %v", err)
		}
	}()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := w.WriteMessages(ctx, kafka.Message{Key: key, Value: value}); err != nil {
		t.Fatalf("[kafka] write: %v", err)
	}
	t.Logf("[kafka] publish ok topic=%s key=%s len=%d", topic, string(key), len(value))
}

// ReadProtoWithKey reads from topic until a message keyed by key arrives or
// timeout passes.
func ReadProtoWithKey[T proto.Message](t *testing.T, bootstrap, topic, group, key string, timeout time.Duration, dst T) (T, bool) {
	t.Helper()
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     []string{bootstrap},
		GroupID:     group,
		Topic:       topic,
		MinBytes:    1,
		MaxBytes:    10e6,
		StartOffset: kafka.FirstOffset,
	})
	defer r.Close()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	for {
		msg, err := r.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				var zero T
				return zero, false
			}
			t.Fatalf("[kafka] read %s: %v", topic, err)
		}
		if string(msg.Key) != key {
			continue
		}
		if err := proto.Unmarshal(msg.Value, dst); err != nil {
			t.Fatalf("[kafka] unmarshal: %v", err)
		}
		return dst, true
	}
}
