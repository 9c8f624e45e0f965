//go:build e2e

package e2e

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type cfg struct {
	APIBase   string // http://localhost:8090
	Token     string
	WaitEvent time.Duration
}

func loadCfg() cfg {
	return cfg{
		APIBase:   getenv("E2E_API_BASE", "http://localhost:8090"),
		Token:     os.Getenv("E2E_TOKEN"),
		WaitEvent: mustParseDur(getenv("E2E_WAIT_EVENT", "15s")),
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func mustParseDur(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		panic(err)
	}
	return d
}

type ackResp struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// --- helpers

func postJSON(t *testing.T, url string, in any, out any, bearer string, want int) {
	t.Helper()
	var rd io.Reader
	if in != nil {
		b, _ := json.Marshal(in)
		rd = bytes.NewReader(b)
	}
	req, _ := http.NewRequest(http.MethodPost, url, rd)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	require.Equal(t, want, resp.StatusCode, "POST %s: %s", url, string(body))
	if out != nil {
		require.NoError(t, json.Unmarshal(body, out), "body=%s", string(body))
	}
}

func waitHealthy(t *testing.T, base string) {
	t.Helper()
	deadline := time.Now().Add(60 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := http.Get(base + "/healthz")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(time.Second)
	}
	t.Fatalf("capture agent not healthy at %s", base)
}

// readEvents forwards data lines of notificationReceived events to out.
func readEvents(body io.Reader, out chan<- map[string]any) {
	sc := bufio.NewScanner(body)
	event := ""
	for sc.Scan() {
		line := sc.Text()
		switch {
		case strings.HasPrefix(line, "event: "):
			event = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: ") && event == "notificationReceived":
			var p map[string]any
			if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &p); err == nil {
				out <- p
			}
		case line == "":
			event = ""
		}
	}
	close(out)
}

// --- the test

func Test_PostedNotification_ReachesStream(t *testing.T) {
	c := loadCfg()
	waitHealthy(t, c.APIBase)

	var ack ackResp
	postJSON(t, c.APIBase+"/v1/capture/start", nil, &ack, c.Token, http.StatusOK)
	require.True(t, ack.Success, ack.Error)

	ctx, cancel := context.WithTimeout(context.Background(), c.WaitEvent)
	defer cancel()

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, c.APIBase+"/v1/notifications/stream", nil)
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	events := make(chan map[string]any, 8)
	go readEvents(resp.Body, events)

	key := fmt.Sprintf("e2e-%d", time.Now().UnixNano())
	postJSON(t, c.APIBase+"/v1/notifications/posted", map[string]any{
		"key":         key + "-other",
		"packageName": "com.whatsapp",
		"postTime":    1700000000000,
	}, nil, c.Token, http.StatusAccepted)
	postJSON(t, c.APIBase+"/v1/notifications/posted", map[string]any{
		"key":         key,
		"packageName": "br.com.xp.carteira",
		"postTime":    1700000000001,
		"isOngoing":   true,
		"notification": map[string]any{
			"extras": map[string]any{
				"android.title":   "Pix recebido",
				"android.text":    "R$ 50,00 de Maria",
				"android.subText": "Conta corrente",
			},
		},
	}, nil, c.Token, http.StatusAccepted)

	for {
		select {
		case p, ok := <-events:
			require.True(t, ok, "stream closed before event arrived")
			require.NotEqual(t, key+"-other", p["id"], "record from another package was streamed")
			if p["id"] != key {
				continue
			}
			require.Equal(t, "br.com.xp.carteira", p["packageName"])
			require.Equal(t, "Pix recebido", p["title"])
			require.Equal(t, "R$ 50,00 de Maria", p["text"])
			require.Equal(t, "Conta corrente", p["subText"])
			require.EqualValues(t, 1700000000001, p["timestamp"])
			require.Equal(t, true, p["isNew"])
			return
		case <-ctx.Done():
			t.Fatalf("no notificationReceived for %s within %s", key, c.WaitEvent)
		}
	}
}
