package ws

const (
	// client - server
	MsgJoinChannel      = "join_channel"
	MsgMakeMove         = "make_move"
	MsgLeaveGame        = "leave_game"
	MsgRegisterPresence = "register_presence"
	MsgRequestLobby     = "request_lobby"
	MsgPing             = "ping"

	// server - client
	MsgGameUpdate         = "game_update"
	MsgGameError          = "game_error"
	MsgPlayerDisconnected = "player_disconnected"
	MsgRoomsUpdate        = "rooms_update"
)
