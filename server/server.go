package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/wfunc/dungeonfloor/broadcast"
	"github.com/wfunc/dungeonfloor/logger"
	"github.com/wfunc/dungeonfloor/monitor"
	"github.com/wfunc/dungeonfloor/network"
	"github.com/wfunc/dungeonfloor/room"
	dungeon_rpc "github.com/wfunc/dungeonfloor/rpc"
	"github.com/wfunc/dungeonfloor/services"
	"github.com/wfunc/dungeonfloor/session"
)

const heartbeatInterval = 30 * time.Second

// DungeonServer serves a run to websocket spectators and RPC clients.
type DungeonServer struct {
	addr           string
	rpcAddr        string
	upgrader       websocket.Upgrader
	sessionManager *session.Manager
	broadcaster    broadcast.Broadcaster
	run            *services.RunService
	monitor        *monitor.Monitor
	rpcServer      *dungeon_rpc.Server
	httpServer     *http.Server
	shutdownChan   chan struct{}
}

// NewDungeonServer wires the server to run and registers it as the run's
// listener. An empty rpcAddr disables RPC.
func NewDungeonServer(addr, rpcAddr string, run *services.RunService, mon *monitor.Monitor) *DungeonServer {
	s := &DungeonServer{
		addr:           addr,
		rpcAddr:        rpcAddr,
		sessionManager: session.NewManager(),
		run:            run,
		monitor:        mon,
		shutdownChan:   make(chan struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // 允许所有跨域请求
			},
		},
	}

	// 初始化广播器
	s.broadcaster = broadcast.NewSessionBroadcaster(s.sessionManager)
	run.SetListener(s)
	return s
}

// Handler exposes the websocket endpoint and the JSON views of the run.
func (s *DungeonServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/floor", s.handleFloor)
	mux.HandleFunc("/floor/history", s.handleHistory)
	return mux
}

func (s *DungeonServer) Start() error {
	if s.rpcAddr != "" {
		// 初始化RPC服务器
		rpcServer, err := dungeon_rpc.NewServer(s.rpcAddr)
		if err != nil {
			return err
		}
		if err := rpcServer.Register(dungeon_rpc.NewFloorService(s.run)); err != nil {
			rpcServer.Stop()
			return err
		}
		s.rpcServer = rpcServer
		go s.rpcServer.Start()
	}

	s.httpServer = &http.Server{Addr: s.addr, Handler: s.Handler()}
	logger.Log.Infof("Dungeon server listening on %s", s.addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *DungeonServer) Shutdown(ctx context.Context) error {
	close(s.shutdownChan)
	if s.rpcServer != nil {
		s.rpcServer.Stop()
	}
	s.sessionManager.CloseAll()
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// RoomChanged implements services.Listener.
func (s *DungeonServer) RoomChanged(snap services.Snapshot) {
	s.publish(network.MsgTypeRoomChange, snap)
}

// FloorChanged implements services.Listener.
func (s *DungeonServer) FloorChanged(snap services.Snapshot) {
	s.publish(network.MsgTypeFloorChange, snap)
}

func (s *DungeonServer) publish(msgID uint16, snap services.Snapshot) {
	data, err := network.Encode(snap)
	if err != nil {
		logger.Log.Errorf("Failed to encode snapshot: %v", err)
		return
	}
	if err := s.broadcaster.BroadcastToSubscribers(msgID, data); err != nil {
		logger.Log.Warnf("Broadcast %d incomplete: %v", msgID, err)
	}
}

func (s *DungeonServer) handleFloor(w http.ResponseWriter, r *http.Request) {
	snap, err := s.run.Snapshot()
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, snap)
}

func (s *DungeonServer) handleHistory(w http.ResponseWriter, r *http.Request) {
	records, summary, err := s.run.History()
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	writeJSON(w, map[string]interface{}{
		"summary": summary,
		"floors":  records,
	})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.Warnf("Failed to write response: %v", err)
	}
}

func (s *DungeonServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Infof("Failed to upgrade connection: %v", err)
		return
	}
	s.handleConnection(conn)
}

func (s *DungeonServer) handleConnection(conn *websocket.Conn) {
	wsConn := network.NewWSConnection(conn)
	wsConn.SetHeartbeat(heartbeatInterval)
	sess := session.NewSession(uuid.New().String(), wsConn)
	s.sessionManager.Add(sess)
	if s.monitor != nil {
		s.monitor.IncSpectators()
	}

	logger.Log.Infof("New connection from %s, session ID: %s", wsConn.RemoteAddr(), sess.GetID())

	defer func() {
		logger.Log.Infof("Connection closed from %s, session ID: %s", wsConn.RemoteAddr(), sess.GetID())
		s.sessionManager.Remove(sess.GetID())
		if s.monitor != nil {
			s.monitor.DecSpectators()
		}
		wsConn.Close()
	}()

	for {
		select {
		case <-s.shutdownChan:
			return
		default:
			packet, err := wsConn.ReadPacket()
			if err != nil {
				return
			}
			if s.monitor != nil {
				s.monitor.IncMessagesReceived()
			}
			s.handlePacket(sess, packet)
		}
	}
}

func (s *DungeonServer) handlePacket(sess *session.Session, packet *network.Packet) {
	var err error
	switch packet.MsgID {
	case network.MsgTypeHeartbeat:
		sess.Touch()
		err = sess.Send(network.MsgTypeHeartbeat, nil)
	case network.MsgTypeSubscribe:
		sess.SetSubscribed(true)
		err = s.sendSnapshot(sess)
	case network.MsgTypeUnsubscribe:
		sess.SetSubscribed(false)
	case network.MsgTypeSnapshot:
		err = s.sendSnapshot(sess)
	case network.MsgTypeWalk:
		err = s.handleWalk(sess, packet)
	case network.MsgTypeClearRoom:
		_, err = s.run.ClearRoom()
	default:
		logger.Log.Infof("Unknown message type: %d", packet.MsgID)
		return
	}

	if err != nil {
		logger.Log.Warnf("Session %s message %d failed: %v", sess.GetID(), packet.MsgID, err)
		s.sendError(sess, packet.MsgID, err)
	}
}

func (s *DungeonServer) handleWalk(sess *session.Session, packet *network.Packet) error {
	var req network.WalkRequest
	if err := packet.Decode(&req); err != nil {
		return err
	}
	dir, err := room.ParseDirection(req.Direction)
	if err != nil {
		return err
	}
	if err := s.run.Walk(dir); err != nil {
		return err
	}
	logger.Log.Debugf("Session %s walked the player %s", sess.GetID(), dir)
	return nil
}

func (s *DungeonServer) sendSnapshot(sess *session.Session) error {
	snap, err := s.run.Snapshot()
	if err != nil {
		return err
	}
	data, err := network.Encode(snap)
	if err != nil {
		return err
	}
	return sess.Send(network.MsgTypeSnapshot, data)
}

func (s *DungeonServer) sendError(sess *session.Session, msgID uint16, cause error) {
	data, err := network.Encode(network.ErrorReply{MsgID: msgID, Error: cause.Error()})
	if err != nil {
		return
	}
	if err := sess.Send(network.MsgTypeError, data); err != nil {
		logger.Log.Debugf("Session %s: error reply lost: %v", sess.GetID(), err)
	}
}
