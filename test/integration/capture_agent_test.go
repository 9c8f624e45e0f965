//go:build integration

package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/structpb"
)

// Expects a capture agent running against IT_BOOTSTRAP with
// source.kind=kafka, source.kafka.from_beginning=true and sink.kafka enabled.
func TestCaptureAgent_KafkaInKafkaOut(t *testing.T) {
	c := LoadCfg()
	EnsureTopic(t, c.KafkaBootstrap, c.RawTopic)
	EnsureTopic(t, c.KafkaBootstrap, c.ReceivedTopic)
	WaitHealthz(t, c.AgentBaseURL+"/healthz", 60*time.Second)

	b := HTTPDoJSON(t, http.MethodPost, c.AgentBaseURL+"/v1/capture/start", c.AgentToken, nil, http.StatusOK)
	var ack struct {
		Success bool `json:"success"`
	}
	require.NoError(t, json.Unmarshal(b, &ack))
	require.True(t, ack.Success)

	key := fmt.Sprintf("it-%d", time.Now().UnixNano())
	ev, err := json.Marshal(map[string]any{
		"key":         key,
		"packageName": "br.com.xp.carteira",
		"postTime":    1700000000000,
		"isOngoing":   false,
		"notification": map[string]any{
			"extras": map[string]any{
				"android.title": "Pix recebido",
				"android.text":  "R$ 50,00 de Maria",
			},
		},
	})
	require.NoError(t, err)

	other, err := json.Marshal(map[string]any{
		"key":         key + "-other",
		"packageName": "com.whatsapp",
		"postTime":    1700000000001,
	})
	require.NoError(t, err)

	PublishRaw(t, c.KafkaBootstrap, c.RawTopic, []byte(key+"-other"), other)
	PublishRaw(t, c.KafkaBootstrap, c.RawTopic, []byte(key), ev)

	group := "it-capture-" + key
	got, ok := ReadProtoWithKey(t, c.KafkaBootstrap, c.ReceivedTopic, group, key, 45*time.Second, &structpb.Struct{})
	require.True(t, ok, "no record for %s on %s", key, c.ReceivedTopic)

	m := got.AsMap()
	require.Equal(t, key, m["id"])
	require.Equal(t, "br.com.xp.carteira", m["packageName"])
	require.Equal(t, "Pix recebido", m["title"])
	require.Equal(t, "R$ 50,00 de Maria", m["text"])
	require.Nil(t, m["subText"])
	require.EqualValues(t, 1700000000000, m["timestamp"])
	require.Equal(t, false, m["isNew"])
	require.NotNil(t, m["extras"])

	_, leaked := ReadProtoWithKey(t, c.KafkaBootstrap, c.ReceivedTopic, group+"-other", key+"-other", 5*time.Second, &structpb.Struct{})
	require.False(t, leaked, "record from another package reached %s", c.ReceivedTopic)
}
