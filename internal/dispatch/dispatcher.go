// Package dispatch routes inbound player actions to the registry and the
// round controller, turning rejected actions into notifications.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mcoot/cutgame/internal/model"
	"github.com/mcoot/cutgame/internal/notify"
	"github.com/mcoot/cutgame/internal/protocol"
	"github.com/mcoot/cutgame/internal/services/registry"
	"github.com/mcoot/cutgame/internal/services/round"
)

// Error codes sent in error notifications
const (
	CodeInvalidRange     = "invalid_range"
	CodeNumberOutOfRange = "number_out_of_range"
	CodeNoRoomCode       = "no_room_code"
	CodeRateLimited      = "rate_limited"
	CodeBadRequest       = "bad_request"
	CodeInternal         = "internal_error"
)

// Dispatcher handles actions from connected participants
type Dispatcher struct {
	registry *registry.Registry
	rounds   *round.Controller
	notifier notify.Notifier
	logger   *slog.Logger
}

// New creates a new Dispatcher
func New(registry *registry.Registry, rounds *round.Controller, notifier notify.Notifier, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		rounds:   rounds,
		notifier: notifier,
		logger:   logger.With(slog.String("component", "dispatch")),
	}
}

// Handle applies an action on behalf of sender. Errors are reported to the
// sender or dropped; none escape. Only a join is told that its room does not
// exist; in-room actions naming an unknown room are dropped.
func (d *Dispatcher) Handle(ctx context.Context, sender model.PlayerID, action model.Action) {
	err := d.route(ctx, sender, action)
	if err == nil {
		return
	}
	if _, joining := action.(model.JoinRoom); !joining && errors.Is(err, model.ErrRoomNotFound) {
		d.logger.Debug("action for unknown room dropped",
			slog.String("player_id", string(sender)),
			slog.String("action", string(action.ActionType())),
		)
		return
	}
	d.Reject(sender, err)
}

func (d *Dispatcher) route(ctx context.Context, sender model.PlayerID, action model.Action) error {
	switch a := action.(type) {
	case model.CreateRoom:
		_, err := d.registry.CreateRoom(ctx, sender, a.Name)
		return err
	case model.JoinRoom:
		return d.registry.JoinRoom(ctx, a.RoomCode, sender, a.Name)
	case model.SetRange:
		return d.rounds.SetRange(ctx, a.RoomCode, sender, a.Range)
	case model.SelectSecret:
		return d.rounds.SelectSecret(ctx, a.RoomCode, sender, a.Number)
	case model.StartGame:
		return d.rounds.StartGame(ctx, a.RoomCode, sender)
	case model.CutNumber:
		return d.rounds.CutNumber(ctx, a.RoomCode, sender, a.Number)
	case model.Disconnect:
		err := d.registry.RemoveParticipant(ctx, sender)
		if errors.Is(err, model.ErrNotInRoom) {
			return nil
		}
		return err
	default:
		return fmt.Errorf("%w: %T", protocol.ErrUnknownAction, action)
	}
}

// Reject reports a failed action to its sender
func (d *Dispatcher) Reject(sender model.PlayerID, err error) {
	switch {
	case errors.Is(err, model.ErrRoomNotFound):
		d.notifier.Send(sender, model.NewNotification("", model.InvalidRoomPayload{
			Message: "Room does not exist",
		}))
	case errors.Is(err, model.ErrDuplicateSecret):
		d.notifier.Send(sender, model.NewNotification("", model.SecretErrorPayload{
			Message: "That number is already taken, pick another",
		}))
	case errors.Is(err, model.ErrNotHost),
		errors.Is(err, model.ErrNotYourTurn),
		errors.Is(err, model.ErrInvalidPhase),
		errors.Is(err, model.ErrNotInRoom):
		d.logger.Debug("action ignored",
			slog.String("player_id", string(sender)),
			slog.String("error", err.Error()),
		)
	case errors.Is(err, model.ErrInvalidRange):
		d.sendError(sender, CodeInvalidRange, err)
	case errors.Is(err, model.ErrNumberOutOfRange):
		d.sendError(sender, CodeNumberOutOfRange, err)
	case errors.Is(err, model.ErrNoRoomCodeAvailable):
		d.sendError(sender, CodeNoRoomCode, err)
	case errors.Is(err, model.ErrRateLimited):
		d.sendError(sender, CodeRateLimited, err)
	case errors.Is(err, protocol.ErrUnknownAction), errors.Is(err, protocol.ErrMalformedPayload):
		d.sendError(sender, CodeBadRequest, err)
	default:
		d.logger.Error("action failed",
			slog.String("player_id", string(sender)),
			slog.String("error", err.Error()),
		)
		d.notifier.Send(sender, model.NewNotification("", model.ErrorPayload{
			Code:    CodeInternal,
			Message: "internal error",
		}))
	}
}

func (d *Dispatcher) sendError(sender model.PlayerID, code string, err error) {
	d.notifier.Send(sender, model.NewNotification("", model.ErrorPayload{
		Code:    code,
		Message: err.Error(),
	}))
}
