package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/cutgame/internal/model"
	"github.com/mcoot/cutgame/internal/protocol"
)

func TestReadSSE(t *testing.T) {
	stream := strings.Join([]string{
		"event: connected",
		`data: {"status":"connected"}`,
		"",
		": keepalive",
		"",
		"event: message",
		"data: first",
		"data: second",
		"",
		"data: orphan",
		"",
	}, "\n")

	type event struct{ name, data string }
	var got []event
	err := readSSE(strings.NewReader(stream), func(name, data string) {
		got = append(got, event{name, data})
	})

	require.NoError(t, err)
	assert.Equal(t, []event{
		{"connected", `{"status":"connected"}`},
		{"message", "first\nsecond"},
	}, got)
}

func TestSpectatorLine(t *testing.T) {
	encode := func(p model.Payload) string {
		b, err := protocol.EncodeNotification(model.NewNotification("1234", p))
		require.NoError(t, err)
		return string(b)
	}

	tests := []struct {
		name    string
		event   string
		data    string
		verbose bool
		want    string
	}{
		{"stream opened", "connected", `{"status":"connected"}`, false, "Watching room 1234"},
		{"turn is never yours", "turn-changed", encode(model.TurnChangedPayload{PlayerID: "p1", PlayerName: "Ann"}), false, "Ann's turn"},
		{"cut", "cut-result", encode(model.CutResultPayload{Number: 4, Saved: []string{"Bob"}}), false, "4 was cut. Saved: Bob"},
		{"early countdown hidden", "countdown-tick", encode(model.CountdownPayload{Seconds: 12}), false, ""},
		{"early countdown verbose", "countdown-tick", encode(model.CountdownPayload{Seconds: 12}), true, "12..."},
		{"not an envelope", "mystery", "plain text", false, "mystery: plain text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, spectatorLine("1234", tt.event, tt.data, tt.verbose))
		})
	}
}

func TestPrintEventJSON(t *testing.T) {
	var buf bytes.Buffer
	printEventJSON(&buf, "message", `{"type":"message"}`)
	printEventJSON(&buf, "odd", "not json")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var first, second map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))

	assert.Equal(t, "message", first["event"])
	assert.Equal(t, map[string]any{"type": "message"}, first["data"])
	assert.Equal(t, "not json", second["data"])
}
