// Package protocol is the JSON wire format shared by the server and the CLI
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mcoot/cutgame/internal/model"
)

var (
	// ErrUnknownAction is returned for an envelope type that is not an action
	ErrUnknownAction = errors.New("unknown action")
	// ErrMalformedPayload is returned for bytes that do not decode
	ErrMalformedPayload = errors.New("malformed payload")
)

// Envelope is the frame every message travels in
type Envelope struct {
	Type     string          `json:"type"`
	RoomCode model.RoomCode  `json:"room_code,omitempty"`
	Payload  json.RawMessage `json:"payload,omitempty"`
}

// Encode wraps a payload in an envelope
func Encode(typ string, code model.RoomCode, payload any) ([]byte, error) {
	if typ == "" {
		return nil, fmt.Errorf("encode envelope: empty type")
	}
	var raw json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		raw = b
	}
	return json.Marshal(Envelope{Type: typ, RoomCode: code, Payload: raw})
}

// DecodeEnvelope reads the outer frame without looking at the payload
func DecodeEnvelope(b []byte) (Envelope, error) {
	if len(b) == 0 {
		return Envelope{}, fmt.Errorf("%w: empty message", ErrMalformedPayload)
	}
	var env Envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return env, nil
}

// DecodePayload unmarshals an envelope's payload into T
func DecodePayload[T any](env Envelope) (T, error) {
	var out T
	if len(env.Payload) == 0 {
		return out, fmt.Errorf("%w: empty payload for type %q", ErrMalformedPayload, env.Type)
	}
	if err := json.Unmarshal(env.Payload, &out); err != nil {
		return out, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return out, nil
}

// DecodeAction turns an inbound frame into an action. Disconnect is never
// accepted from the wire.
func DecodeAction(b []byte) (model.Action, error) {
	env, err := DecodeEnvelope(b)
	if err != nil {
		return nil, err
	}

	switch model.ActionType(env.Type) {
	case model.ActionCreateRoom:
		return decodeAction[model.CreateRoom](env)
	case model.ActionJoinRoom:
		return decodeAction[model.JoinRoom](env)
	case model.ActionSetRange:
		return decodeAction[model.SetRange](env)
	case model.ActionSelectSecret:
		return decodeAction[model.SelectSecret](env)
	case model.ActionStartGame:
		return decodeAction[model.StartGame](env)
	case model.ActionCutNumber:
		return decodeAction[model.CutNumber](env)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, env.Type)
	}
}

func decodeAction[T model.Action](env Envelope) (model.Action, error) {
	a, err := DecodePayload[T](env)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// EncodeAction frames an outbound action, as a client sends it
func EncodeAction(a model.Action) ([]byte, error) {
	return Encode(string(a.ActionType()), "", a)
}

// EncodeNotification frames a notification for delivery
func EncodeNotification(n model.Notification) ([]byte, error) {
	return Encode(string(n.Type), n.RoomCode, n.Payload)
}
