package protocol

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/cutgame/internal/model"
)

func TestDecodeActionKnownTypes(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  model.Action
	}{
		{
			name:  "create room",
			input: `{"type":"create-room","payload":{"name":"Ann"}}`,
			want:  model.CreateRoom{Name: "Ann"},
		},
		{
			name:  "join room",
			input: `{"type":"join-room","payload":{"name":"Ben","room_code":"1234"}}`,
			want:  model.JoinRoom{Name: "Ben", RoomCode: "1234"},
		},
		{
			name:  "set range",
			input: `{"type":"set-range","payload":{"room_code":"1234","range":30}}`,
			want:  model.SetRange{RoomCode: "1234", Range: 30},
		},
		{
			name:  "select secret",
			input: `{"type":"select-secret","payload":{"room_code":"1234","number":7}}`,
			want:  model.SelectSecret{RoomCode: "1234", Number: 7},
		},
		{
			name:  "start game",
			input: `{"type":"start-game","payload":{"room_code":"1234"}}`,
			want:  model.StartGame{RoomCode: "1234"},
		},
		{
			name:  "cut number",
			input: `{"type":"cut-number","payload":{"room_code":"1234","number":3}}`,
			want:  model.CutNumber{RoomCode: "1234", Number: 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeAction([]byte(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeActionRejectsUnknownType(t *testing.T) {
	_, err := DecodeAction([]byte(`{"type":"disconnect","payload":{}}`))
	assert.ErrorIs(t, err, ErrUnknownAction)

	_, err = DecodeAction([]byte(`{"type":"fly","payload":{}}`))
	assert.ErrorIs(t, err, ErrUnknownAction)
}

func TestDecodeActionRejectsMalformedInput(t *testing.T) {
	inputs := []string{
		``,
		`not json`,
		`{"type":"cut-number"}`,
		`{"type":"cut-number","payload":{"number":"three"}}`,
	}
	for _, input := range inputs {
		_, err := DecodeAction([]byte(input))
		assert.ErrorIs(t, err, ErrMalformedPayload, input)
	}
}

func TestEncodeNotification(t *testing.T) {
	n := model.NewNotification("1234", model.CutResultPayload{Number: 3, Saved: []string{"A", "C"}})

	b, err := EncodeNotification(n)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(b, &decoded))
	assert.Equal(t, "cut-result", decoded["type"])
	assert.Equal(t, "1234", decoded["room_code"])
	assert.Equal(t, map[string]any{"number": float64(3), "saved": []any{"A", "C"}}, decoded["payload"])
}

func TestEncodeActionDecodesBack(t *testing.T) {
	b, err := EncodeAction(model.CutNumber{RoomCode: "1234", Number: 9})
	require.NoError(t, err)

	got, err := DecodeAction(b)
	require.NoError(t, err)
	assert.Equal(t, model.CutNumber{RoomCode: "1234", Number: 9}, got)
}
