package rpc

import (
	"net"
	"net/rpc"

	"github.com/Rodevv972/Le-gros-cerveau-de-la-squad/logger"
	"github.com/Rodevv972/Le-gros-cerveau-de-la-squad/persistence"
	"github.com/Rodevv972/Le-gros-cerveau-de-la-squad/quiz"
)

// Server manages the RPC listener for the admin tooling.
type Server struct {
	listener net.Listener
	address  string
}

func NewServer(addr string) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Server{
		listener: listener,
		address:  addr,
	}, nil
}

func (s *Server) Start() {
	logger.Log.Infof("RPC server listening on %s", s.address)
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if _, ok := err.(*net.OpError); ok {
				logger.Log.Info("RPC server listener closed.")
				return
			}
			logger.Log.Errorf("RPC server accept error: %v", err)
			continue
		}
		go rpc.ServeConn(conn)
	}
}

func (s *Server) Stop() {
	if s.listener != nil {
		logger.Log.Info("Stopping RPC server.")
		s.listener.Close()
	}
}

// StatsService exposes game statistics to admin dashboards over net/rpc.
// Live games are served from the in-memory registry; finished ones from the
// durable archive.
type StatsService struct {
	store *quiz.Store
	db    persistence.Database
}

func NewStatsService(store *quiz.Store, db persistence.Database) *StatsService {
	return &StatsService{store: store, db: db}
}

type GameStatsArgs struct {
	GameID string
}

type GameStatsReply struct {
	Stats quiz.GameStatsView
}

func (s *StatsService) GetGameStats(args *GameStatsArgs, reply *GameStatsReply) error {
	if game, exists := s.store.Get(args.GameID); exists {
		reply.Stats = game.StatsView()
		return nil
	}

	snapshot, err := s.db.LoadGame(args.GameID)
	if err != nil {
		return err
	}

	active := 0
	for _, p := range snapshot.Players {
		if p.IsActive && !p.IsSpectator {
			active++
		}
	}
	leaderboard := snapshot.Leaderboard
	if len(leaderboard) > 10 {
		leaderboard = leaderboard[:10]
	}
	reply.Stats = quiz.GameStatsView{
		TotalPlayers:    len(snapshot.Players),
		ActivePlayers:   active,
		Spectators:      len(snapshot.Spectators),
		CurrentQuestion: snapshot.CurrentQuestionIndex + 1,
		TotalQuestions:  snapshot.TotalQuestions,
		Leaderboard:     leaderboard,
	}
	return nil
}

type ListGamesArgs struct{}

type ListGamesReply struct {
	Games []quiz.LobbyInfo
}

// ListGames returns the joinable games, the same listing the lobby sees.
func (s *StatsService) ListGames(_ *ListGamesArgs, reply *ListGamesReply) error {
	reply.Games = s.store.WaitingGames()
	return nil
}
