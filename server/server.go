package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	gorpc "net/rpc"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"

	"github.com/Rodevv972/Le-gros-cerveau-de-la-squad/auth"
	"github.com/Rodevv972/Le-gros-cerveau-de-la-squad/broadcast"
	"github.com/Rodevv972/Le-gros-cerveau-de-la-squad/catalog"
	"github.com/Rodevv972/Le-gros-cerveau-de-la-squad/config"
	"github.com/Rodevv972/Le-gros-cerveau-de-la-squad/logger"
	"github.com/Rodevv972/Le-gros-cerveau-de-la-squad/monitor"
	"github.com/Rodevv972/Le-gros-cerveau-de-la-squad/network"
	"github.com/Rodevv972/Le-gros-cerveau-de-la-squad/persistence"
	"github.com/Rodevv972/Le-gros-cerveau-de-la-squad/quiz"
	"github.com/Rodevv972/Le-gros-cerveau-de-la-squad/rpc"
	"github.com/Rodevv972/Le-gros-cerveau-de-la-squad/session"
	"github.com/Rodevv972/Le-gros-cerveau-de-la-squad/timer"
)

const catalogFetchTimeout = 5 * time.Second

type GameServer struct {
	addr         string
	upgrader     websocket.Upgrader
	sessions     *session.Manager
	store        *quiz.Store
	coordinator  *quiz.Coordinator
	catalog      catalog.Catalog
	authn        auth.Authenticator
	monitor      *monitor.Monitor
	timers       *timer.Manager
	rpcServer    *rpc.Server
	shutdownChan chan struct{}
}

func NewGameServer(cfg *config.Config, db persistence.Database, cat catalog.Catalog, authn auth.Authenticator, mon *monitor.Monitor) *GameServer {
	s := &GameServer{
		addr:         cfg.Server.HTTPAddress,
		sessions:     session.NewManager(),
		store:        quiz.NewStore(),
		catalog:      cat,
		authn:        authn,
		monitor:      mon,
		timers:       timer.NewManager(clockwork.NewRealClock()),
		shutdownChan: make(chan struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // browser clients connect from a separate origin
			},
		},
	}

	bc := broadcast.NewGameBroadcaster(s.sessions)
	sequencer := quiz.NewSequencer(s.store, bc, db, s.timers, quiz.Timing{
		LeadIn:          time.Duration(cfg.Game.LeadInSeconds) * time.Second,
		InterRoundPause: time.Duration(cfg.Game.InterRoundPauseSeconds) * time.Second,
	})
	s.coordinator = quiz.NewCoordinator(s.store, bc, db, sequencer, quiz.Settings{
		QuestionTimer:          cfg.Game.QuestionTimerSeconds,
		LivesPerPlayer:         cfg.Game.LivesPerPlayer,
		PointsPerCorrectAnswer: cfg.Game.PointsPerCorrectAnswer,
		BonusPointsForSpeed:    cfg.Game.BonusPointsForSpeed,
	}, cfg.Game.DefaultMaxPlayers)

	rpcServer, err := rpc.NewServer(cfg.Server.RPCAddress)
	if err != nil {
		logger.Log.Fatalf("Failed to create RPC server: %v", err)
	}
	s.rpcServer = rpcServer
	gorpc.Register(rpc.NewStatsService(s.store, db))

	// Keep the registry gauge fresh even between client actions.
	s.timers.AddTimer(5*time.Second, 5*time.Second, func() {
		mon.SetActiveGames(s.store.Count())
	})

	return s
}

func (s *GameServer) Start() error {
	go s.rpcServer.Start()

	http.HandleFunc("/ws", s.handleWebSocket)
	logger.Log.Infof("Quiz server listening on %s", s.addr)
	return http.ListenAndServe(s.addr, nil)
}

func (s *GameServer) Shutdown() {
	close(s.shutdownChan)
	s.timers.Stop()
	s.rpcServer.Stop()
}

func (s *GameServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	user, err := s.authn.Verify(r.URL.Query().Get("token"))
	if err != nil {
		http.Error(w, "authentication failed", http.StatusUnauthorized)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Infof("Failed to upgrade connection: %v", err)
		return
	}
	s.handleConnection(conn, user)
}

func (s *GameServer) handleConnection(conn *websocket.Conn, user auth.UserInfo) {
	wsConn := network.NewWSConnection(conn)
	sess := session.NewSession(uuid.New().String(), wsConn)
	sess.UserID = user.UserID
	sess.Username = user.Username
	sess.Avatar = user.Avatar
	sess.Role = user.Role
	s.sessions.Add(sess)
	s.monitor.IncConnectedClients()

	logger.Log.Infof("User %s connected from %s, session ID: %s", user.Username, wsConn.RemoteAddr(), sess.GetID())

	defer func() {
		logger.Log.Infof("User %s disconnected, session ID: %s", user.Username, sess.GetID())
		if gameID, _ := sess.CurrentGame(); gameID != "" {
			s.coordinator.LeaveGame(gameID, sess.UserID)
		}
		s.sessions.Remove(sess.GetID())
		s.monitor.DecConnectedClients()
		wsConn.Close()
	}()

	// A fresh connection lands in the lobby and sees what is joinable.
	sess.SendJSON(network.MsgTypeAvailableGames, map[string]interface{}{
		"games": s.coordinator.AvailableGames(),
	})

	for {
		select {
		case <-s.shutdownChan:
			return
		default:
			packet, err := wsConn.ReadPacket()
			if err != nil {
				return
			}
			s.handlePacket(sess, packet)
		}
	}
}

func (s *GameServer) handlePacket(sess *session.Session, packet *network.Packet) {
	switch packet.MsgID {
	case network.MsgTypeHeartbeat:
		sess.LastActive = time.Now()
	case network.MsgTypeCreateGame:
		s.handleCreateGame(sess, packet)
	case network.MsgTypeJoinGame:
		s.handleJoinGame(sess, packet)
	case network.MsgTypeStartGame:
		s.handleStartGame(sess, packet)
	case network.MsgTypeSubmitAnswer:
		s.handleSubmitAnswer(sess, packet)
	case network.MsgTypeLeaveGame:
		s.handleLeaveGame(sess)
	default:
		logger.Log.Infof("Unknown message type: %d", packet.MsgID)
	}
}

func (s *GameServer) userInfo(sess *session.Session) quiz.UserInfo {
	return quiz.UserInfo{
		UserID:   sess.UserID,
		Username: sess.Username,
		Avatar:   sess.Avatar,
		Admin:    sess.Role == auth.RoleAdmin,
	}
}

// sendError unicasts the failure to the offending connection only. The game
// and the other participants are never affected.
func (s *GameServer) sendError(sess *session.Session, err error) {
	sess.SendJSON(network.MsgTypeError, map[string]string{"message": err.Error()})
}

type createGameRequest struct {
	Name          string `json:"name"`
	Category      string `json:"category"`
	MaxPlayers    int    `json:"maxPlayers"`
	QuestionCount int    `json:"questionCount"`
	Difficulty    string `json:"difficulty"`
}

func (s *GameServer) handleCreateGame(sess *session.Session, packet *network.Packet) {
	var req createGameRequest
	if err := decode(packet, &req); err != nil {
		s.sendError(sess, err)
		return
	}
	if req.QuestionCount <= 0 {
		req.QuestionCount = 10
	}

	ctx, cancel := context.WithTimeout(context.Background(), catalogFetchTimeout)
	defer cancel()

	questions, err := s.catalog.FetchQuestions(ctx, req.Category, req.QuestionCount, req.Difficulty)
	if err != nil {
		logger.Log.Errorf("Question fetch failed for category %q: %v", req.Category, err)
		s.sendError(sess, err)
		return
	}

	game, err := s.coordinator.CreateGame(s.userInfo(sess), quiz.CreateGameRequest{
		Name:       req.Name,
		Category:   req.Category,
		MaxPlayers: req.MaxPlayers,
		Questions:  questions,
	})
	if err != nil {
		s.sendError(sess, err)
		return
	}

	s.monitor.SetActiveGames(s.store.Count())
	sess.SendJSON(network.MsgTypeGameCreated, map[string]string{"gameId": game.ID})
}

type joinGameRequest struct {
	GameID string `json:"gameId"`
}

func (s *GameServer) handleJoinGame(sess *session.Session, packet *network.Packet) {
	var req joinGameRequest
	if err := decode(packet, &req); err != nil {
		s.sendError(sess, err)
		return
	}

	result, err := s.coordinator.JoinGame(req.GameID, s.userInfo(sess))
	if err != nil {
		s.sendError(sess, err)
		return
	}

	spectator := result.Role == quiz.RoleSpectator
	sess.EnterGame(req.GameID, spectator)

	if spectator {
		sess.SendJSON(network.MsgTypeJoinedAsSpectator, result)
	} else {
		sess.SendJSON(network.MsgTypeJoinedGame, result)
	}
}

type startGameRequest struct {
	GameID string `json:"gameId"`
}

func (s *GameServer) handleStartGame(sess *session.Session, packet *network.Packet) {
	var req startGameRequest
	if err := decode(packet, &req); err != nil {
		s.sendError(sess, err)
		return
	}

	if err := s.coordinator.StartGame(req.GameID, s.userInfo(sess)); err != nil {
		s.sendError(sess, err)
	}
}

type submitAnswerRequest struct {
	GameID         string `json:"gameId"`
	QuestionID     string `json:"questionId"`
	SelectedOption int    `json:"selectedOption"`
	ResponseTimeMs int64  `json:"responseTime"`
}

func (s *GameServer) handleSubmitAnswer(sess *session.Session, packet *network.Packet) {
	var req submitAnswerRequest
	if err := decode(packet, &req); err != nil {
		s.sendError(sess, err)
		return
	}

	began := time.Now()
	s.monitor.IncAnswersReceived()

	result, err := s.coordinator.SubmitAnswer(req.GameID, sess.UserID, quiz.SubmitAnswerRequest{
		QuestionID:     req.QuestionID,
		SelectedOption: req.SelectedOption,
		ResponseTimeMs: req.ResponseTimeMs,
	})
	s.monitor.ObserveAnswerLatency(time.Since(began))
	if err != nil {
		s.sendError(sess, err)
		return
	}

	sess.SendJSON(network.MsgTypeAnswerResult, result)
}

func (s *GameServer) handleLeaveGame(sess *session.Session) {
	gameID, _ := sess.CurrentGame()
	if gameID == "" {
		return
	}

	if err := s.coordinator.LeaveGame(gameID, sess.UserID); err != nil {
		s.sendError(sess, err)
		return
	}
	sess.LeaveGame()
}

// decode unmarshals a packet payload. An empty payload decodes to the zero
// request so parameterless messages stay valid.
func decode(packet *network.Packet, v interface{}) error {
	if len(packet.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(packet.Data, v); err != nil {
		return fmt.Errorf("malformed request payload: %w", err)
	}
	return nil
}
