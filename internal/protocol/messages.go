package protocol

// HELLO (client -> server)
type HelloMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	PlayerName      string `json:"player_name"`
	Auth            *Auth  `json:"auth,omitempty"`
}

type Auth struct {
	Token string `json:"token,omitempty"`
}

// WELCOME (server -> client)
type WelcomeMsg struct {
	Type            string      `json:"type"`
	ProtocolVersion string      `json:"protocol_version"`
	PlayerID        string      `json:"player_id"`
	WorldParams     WorldParams `json:"world_params"`
}

type WorldParams struct {
	Height   int   `json:"height"`
	SeaLevel int   `json:"sea_level"`
	Seed     int64 `json:"seed"`
}

// POS (client -> server): the player's current block position.
type PosMsg struct {
	Type string `json:"type"`
	X    int    `json:"x"`
	Y    int    `json:"y"`
	Z    int    `json:"z"`
}

// CMD (client -> server): a chat command line without the leading slash,
// e.g. "earthquake test 5".
type CmdMsg struct {
	Type string `json:"type"`
	ID   string `json:"id,omitempty"`
	Line string `json:"line"`
}

// CMD_RESULT (server -> client)
type CmdResultMsg struct {
	Type    string `json:"type"`
	ID      string `json:"id,omitempty"`
	OK      bool   `json:"ok"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}
