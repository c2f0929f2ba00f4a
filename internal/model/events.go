package model

// NotificationType identifies the type of outbound notification
type NotificationType string

const (
	// Connection and registry notifications
	NotificationConnected    NotificationType = "connected"
	NotificationRoomCreated  NotificationType = "room-created"
	NotificationRoomJoined   NotificationType = "room-joined"
	NotificationInvalidRoom  NotificationType = "invalid-room"
	NotificationRoster       NotificationType = "roster-updated"
	NotificationHostAssigned NotificationType = "host-assigned"

	// Round notifications
	NotificationRangeSet        NotificationType = "range-set"
	NotificationSecretError     NotificationType = "secret-selection-error"
	NotificationAllSecretsReady NotificationType = "all-secrets-ready"
	NotificationGameStarted     NotificationType = "game-started"
	NotificationTurnChanged     NotificationType = "turn-changed"
	NotificationCountdown       NotificationType = "countdown-tick"
	NotificationCutResult       NotificationType = "cut-result"
	NotificationRoundOver       NotificationType = "round-over"
	NotificationNewRound        NotificationType = "new-round-started"

	// Generic notifications
	NotificationMessage NotificationType = "message"
	NotificationError   NotificationType = "error"
)

// Payload is implemented by every notification payload type
type Payload interface {
	NotificationType() NotificationType
}

// Notification is a typed outbound event, scoped to a room where relevant
type Notification struct {
	Type     NotificationType
	RoomCode RoomCode // Empty for connection-level notifications
	Payload  Payload
}

// NewNotification wraps a payload, deriving the type from it
func NewNotification(code RoomCode, payload Payload) Notification {
	return Notification{
		Type:     payload.NotificationType(),
		RoomCode: code,
		Payload:  payload,
	}
}

// ConnectedPayload tells a participant the identity assigned to its connection
type ConnectedPayload struct {
	ParticipantID PlayerID `json:"participant_id"`
}

// RoomCreatedPayload contains data for room created notifications
type RoomCreatedPayload struct {
	RoomCode RoomCode `json:"room_code"`
}

// RoomJoinedPayload contains data for room joined notifications
type RoomJoinedPayload struct {
	RoomCode RoomCode `json:"room_code"`
	IsHost   bool     `json:"is_host"`
}

// InvalidRoomPayload reports an unknown room code to the sender
type InvalidRoomPayload struct {
	Message string `json:"message"`
}

// RosterPayload carries the full public player list
type RosterPayload struct {
	Players []PlayerView `json:"players"`
}

// HostAssignedPayload is sent to a player promoted to host
type HostAssignedPayload struct {
	RoomCode RoomCode `json:"room_code"`
}

// RangeSetPayload contains the chosen secret range
type RangeSetPayload struct {
	Range int `json:"range"`
}

// SecretErrorPayload reports a rejected secret to the sender
type SecretErrorPayload struct {
	Message string `json:"message"`
}

// AllSecretsReadyPayload is sent to the host once every player has a secret
type AllSecretsReadyPayload struct{}

// GameStartedPayload contains data for game started notifications
type GameStartedPayload struct {
	Range           int      `json:"range"`
	Round           int      `json:"round"`
	FirstPlayerID   PlayerID `json:"first_player_id"`
	FirstPlayerName string   `json:"first_player_name"`
}

// TurnChangedPayload names the player whose turn it now is
type TurnChangedPayload struct {
	PlayerID   PlayerID `json:"player_id"`
	PlayerName string   `json:"player_name"`
}

// CountdownPayload carries the seconds remaining in the current turn
type CountdownPayload struct {
	Seconds int `json:"seconds"`
}

// CutResultPayload reports a cut and the players it made safe
type CutResultPayload struct {
	Number int      `json:"number"`
	Saved  []string `json:"saved"`
}

// RoundOverPayload contains data for round over notifications
type RoundOverPayload struct {
	Outcome Outcome  `json:"outcome"`
	Message string   `json:"message"`
	Losers  []string `json:"losers"`
}

// NewRoundPayload announces that secret selection has reopened
type NewRoundPayload struct {
	Range int `json:"range"`
	Round int `json:"round"`
}

// MessagePayload is a free-form informational message
type MessagePayload struct {
	Text string `json:"text"`
}

// ErrorPayload reports a rejected action to the sender
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (ConnectedPayload) NotificationType() NotificationType       { return NotificationConnected }
func (RoomCreatedPayload) NotificationType() NotificationType     { return NotificationRoomCreated }
func (RoomJoinedPayload) NotificationType() NotificationType      { return NotificationRoomJoined }
func (InvalidRoomPayload) NotificationType() NotificationType     { return NotificationInvalidRoom }
func (RosterPayload) NotificationType() NotificationType          { return NotificationRoster }
func (HostAssignedPayload) NotificationType() NotificationType    { return NotificationHostAssigned }
func (RangeSetPayload) NotificationType() NotificationType        { return NotificationRangeSet }
func (SecretErrorPayload) NotificationType() NotificationType     { return NotificationSecretError }
func (AllSecretsReadyPayload) NotificationType() NotificationType { return NotificationAllSecretsReady }
func (GameStartedPayload) NotificationType() NotificationType     { return NotificationGameStarted }
func (TurnChangedPayload) NotificationType() NotificationType     { return NotificationTurnChanged }
func (CountdownPayload) NotificationType() NotificationType       { return NotificationCountdown }
func (CutResultPayload) NotificationType() NotificationType       { return NotificationCutResult }
func (RoundOverPayload) NotificationType() NotificationType       { return NotificationRoundOver }
func (NewRoundPayload) NotificationType() NotificationType        { return NotificationNewRound }
func (MessagePayload) NotificationType() NotificationType         { return NotificationMessage }
func (ErrorPayload) NotificationType() NotificationType           { return NotificationError }
