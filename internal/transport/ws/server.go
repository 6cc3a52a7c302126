// Package ws carries quake notifications and operator commands between the
// simulation and connected players.
package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"quakecraft.ai/internal/protocol"
	"quakecraft.ai/internal/sim/command"
	"quakecraft.ai/internal/sim/entity"
	"quakecraft.ai/internal/sim/voxel"
)

// Poster hands a callback to the simulation goroutine.
type Poster interface {
	Post(fn func()) bool
}

type Commands interface {
	Execute(c command.Caller, line string) (string, error)
}

type Config struct {
	Poster   Poster
	Commands Commands
	// OnJoin runs on the simulation goroutine after WELCOME is sent.
	OnJoin func(p entity.Player)
	World  protocol.WorldParams
	// AdminToken, when set, is required in HELLO auth to run commands.
	AdminToken string
	// QueueSize bounds each player's outbound queue; notifications to a full queue are dropped.
	QueueSize int
	Logger    *log.Logger
}

type session struct {
	mu     sync.Mutex
	player entity.Player
	admin  bool
	out    chan []byte
}

func (s *session) snapshot() entity.Player {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.player
}

// Server is the player hub. It implements entity.Roster and the quake
// notifier interfaces; those methods are safe to call from any goroutine.
type Server struct {
	cfg Config
	log *log.Logger

	upgrader websocket.Upgrader

	mu       sync.RWMutex
	sessions map[string]*session
	nextID   atomic.Uint64
	dropped  atomic.Uint64
}

func NewServer(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = log.New(io.Discard, "", 0)
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 32
	}
	return &Server{
		cfg: cfg,
		log: cfg.Logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 4 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
		sessions: map[string]*session{},
	}
}

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		sess := s.handshake(conn)
		if sess == nil {
			return
		}
		id := sess.player.ID
		defer s.leave(id)

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		// Writer goroutine.
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case b, ok := <-sess.out:
					if !ok {
						return
					}
					_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						cancel()
						return
					}
				}
			}
		}()

		if s.cfg.OnJoin != nil {
			p := sess.snapshot()
			s.post(func() { s.cfg.OnJoin(p) })
		}

		// Reader loop.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				cancel()
				break
			}
			s.dispatch(sess, msg)
		}
	}
}

func (s *Server) dispatch(sess *session, msg []byte) {
	base, err := protocol.DecodeBase(msg)
	if err != nil {
		return
	}
	switch base.Type {
	case protocol.TypePos:
		var pos protocol.PosMsg
		if err := json.Unmarshal(msg, &pos); err != nil {
			return
		}
		sess.mu.Lock()
		sess.player.Pos = voxel.Vec3i{X: pos.X, Y: pos.Y, Z: pos.Z}
		sess.mu.Unlock()
	case protocol.TypeCmd:
		var cmd protocol.CmdMsg
		if err := json.Unmarshal(msg, &cmd); err != nil {
			return
		}
		s.runCommand(sess, cmd)
	}
}

func (s *Server) runCommand(sess *session, cmd protocol.CmdMsg) {
	reply := func(msg string, err error) {
		res := protocol.CmdResultMsg{Type: protocol.TypeCmdResult, ID: cmd.ID, OK: err == nil, Message: msg}
		if err != nil {
			res.Code = command.Code(err)
			res.Message = command.PlayerMessage(err)
		}
		s.enqueue(sess, res)
	}
	if s.cfg.Commands == nil {
		reply("", command.ErrUnknownCommand(firstWord(cmd.Line)))
		return
	}
	sess.mu.Lock()
	admin := sess.admin
	sess.mu.Unlock()
	if !admin {
		reply("", command.ErrNoPermission(firstWord(cmd.Line)))
		return
	}
	p := sess.snapshot()
	caller := command.Caller{PlayerID: p.ID, Pos: p.Pos}
	if !s.post(func() { reply(s.cfg.Commands.Execute(caller, cmd.Line)) }) {
		reply("", command.Internal(firstWord(cmd.Line), fmt.Errorf("simulation stopped")))
	}
}

func (s *Server) post(fn func()) bool {
	if s.cfg.Poster == nil {
		fn()
		return true
	}
	return s.cfg.Poster.Post(fn)
}

func firstWord(line string) string {
	f := strings.Fields(strings.TrimPrefix(strings.TrimSpace(line), "/"))
	if len(f) == 0 {
		return ""
	}
	return strings.ToLower(f[0])
}

func (s *Server) handshake(conn *websocket.Conn) *session {
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return nil
	}

	base, err := protocol.DecodeBase(msg)
	if err != nil || base.Type != protocol.TypeHello {
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "expected HELLO"), time.Now().Add(time.Second))
		return nil
	}

	var hello protocol.HelloMsg
	if err := json.Unmarshal(msg, &hello); err != nil {
		return nil
	}
	if hello.ProtocolVersion != protocol.Version {
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "bad protocol_version"), time.Now().Add(time.Second))
		return nil
	}
	name := strings.TrimSpace(hello.PlayerName)
	if name == "" {
		name = "player"
	}
	token := ""
	if hello.Auth != nil {
		token = strings.TrimSpace(hello.Auth.Token)
	}

	sess := &session{
		player: entity.Player{ID: fmt.Sprintf("P%06d", s.nextID.Add(1)), Name: name},
		admin:  s.cfg.AdminToken == "" || token == s.cfg.AdminToken,
		out:    make(chan []byte, s.cfg.QueueSize),
	}

	welcome := protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		PlayerID:        sess.player.ID,
		WorldParams:     s.cfg.World,
	}
	if err := writeJSON(conn, welcome); err != nil {
		return nil
	}

	s.mu.Lock()
	s.sessions[sess.player.ID] = sess
	s.mu.Unlock()
	s.log.Printf("ws: join %s (%s) admin=%v", sess.player.ID, name, sess.admin)
	return sess
}

func (s *Server) leave(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	s.log.Printf("ws: leave %s", id)
}

// OnlinePlayers returns the connected players ordered by id.
func (s *Server) OnlinePlayers() []entity.Player {
	s.mu.RLock()
	out := make([]entity.Player, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, sess.snapshot())
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Server) Broadcast(n protocol.Notification) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sess := range s.sessions {
		s.enqueue(sess, protocol.NewQuakeMsg(n))
	}
}

func (s *Server) Send(playerID string, n protocol.Notification) {
	s.mu.RLock()
	sess := s.sessions[playerID]
	s.mu.RUnlock()
	if sess != nil {
		s.enqueue(sess, protocol.NewQuakeMsg(n))
	}
}

// Dropped counts messages discarded because a player's queue was full.
func (s *Server) Dropped() uint64 { return s.dropped.Load() }

func (s *Server) enqueue(sess *session, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		s.log.Printf("ws: marshal %T: %v", v, err)
		return
	}
	select {
	case sess.out <- b:
	default:
		s.dropped.Add(1)
	}
}

func writeJSON(conn *websocket.Conn, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return conn.WriteMessage(websocket.TextMessage, b)
}
