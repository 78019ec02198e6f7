package network

// Client -> server messages.
const (
	MsgTypeHeartbeat    = 1
	MsgTypeCreateGame   = 101
	MsgTypeJoinGame     = 102
	MsgTypeLeaveGame    = 103
	MsgTypeStartGame    = 104
	MsgTypeSubmitAnswer = 105
)

// Server -> client messages.
const (
	MsgTypeAvailableGames    = 201
	MsgTypeGameCreated       = 202
	MsgTypeNewGameAvailable  = 203
	MsgTypeGameUpdated       = 204
	MsgTypeJoinedGame        = 205
	MsgTypeJoinedAsSpectator = 206
	MsgTypePlayerJoined      = 207
	MsgTypeSpectatorJoined   = 208
	MsgTypePlayerLeft        = 209
	MsgTypeGameStarted       = 210
	MsgTypeNewQuestion       = 211
	MsgTypeQuestionEnded     = 212
	MsgTypeLeaderboardUpdate = 213
	MsgTypeAnswerResult      = 214
	MsgTypeEliminated        = 215
	MsgTypePlayerEliminated  = 216
	MsgTypeGameFinished      = 217
	MsgTypeError             = 299
)
