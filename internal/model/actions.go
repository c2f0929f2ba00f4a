package model

// ActionType identifies an inbound player action
type ActionType string

const (
	ActionCreateRoom   ActionType = "create-room"
	ActionJoinRoom     ActionType = "join-room"
	ActionSetRange     ActionType = "set-range"
	ActionSelectSecret ActionType = "select-secret"
	ActionStartGame    ActionType = "start-game"
	ActionCutNumber    ActionType = "cut-number"
	ActionDisconnect   ActionType = "disconnect"
)

// Action is an inbound player action. The concrete types below form a closed set.
type Action interface {
	ActionType() ActionType
}

// CreateRoom asks for a new room hosted by the sender
type CreateRoom struct {
	Name string `json:"name"`
}

// JoinRoom asks to join an existing room
type JoinRoom struct {
	Name     string   `json:"name"`
	RoomCode RoomCode `json:"room_code"`
}

// SetRange is the host choosing the secret range
type SetRange struct {
	RoomCode RoomCode `json:"room_code"`
	Range    int      `json:"range"`
}

// SelectSecret is a player choosing their secret number
type SelectSecret struct {
	RoomCode RoomCode `json:"room_code"`
	Number   int      `json:"number"`
}

// StartGame is the host starting the round
type StartGame struct {
	RoomCode RoomCode `json:"room_code"`
}

// CutNumber is the current-turn player naming a number
type CutNumber struct {
	RoomCode RoomCode `json:"room_code"`
	Number   int      `json:"number"`
}

// Disconnect is raised by the transport when a participant goes away
type Disconnect struct{}

func (CreateRoom) ActionType() ActionType   { return ActionCreateRoom }
func (JoinRoom) ActionType() ActionType     { return ActionJoinRoom }
func (SetRange) ActionType() ActionType     { return ActionSetRange }
func (SelectSecret) ActionType() ActionType { return ActionSelectSecret }
func (StartGame) ActionType() ActionType    { return ActionStartGame }
func (CutNumber) ActionType() ActionType    { return ActionCutNumber }
func (Disconnect) ActionType() ActionType   { return ActionDisconnect }
