package rpc

import (
	"errors"
	"fmt"
	"net"
	"net/rpc"

	"github.com/wfunc/dungeonfloor/logger"
	"github.com/wfunc/dungeonfloor/models"
	"github.com/wfunc/dungeonfloor/services"
)

// Server manages the RPC listener.
type Server struct {
	listener net.Listener
	address  string
	rpc      *rpc.Server
}

// NewServer creates a new RPC server listening on addr.
func NewServer(addr string) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Server{
		listener: listener,
		address:  listener.Addr().String(),
		rpc:      rpc.NewServer(),
	}, nil
}

// Register publishes the exported methods of rcvr on this server.
func (s *Server) Register(rcvr interface{}) error {
	return s.rpc.Register(rcvr)
}

func (s *Server) Addr() string {
	return s.address
}

// Start begins listening for RPC requests.
func (s *Server) Start() {
	logger.Log.Infof("RPC server listening on %s", s.address)
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			// Check if the error is due to the listener being closed.
			if errors.Is(err, net.ErrClosed) {
				logger.Log.Info("RPC server listener closed.")
				return
			}
			logger.Log.Errorf("RPC server accept error: %v", err)
			continue
		}
		go s.rpc.ServeConn(conn)
	}
}

// Stop closes the RPC listener.
func (s *Server) Stop() {
	if s.listener != nil {
		logger.Log.Info("Stopping RPC server.")
		s.listener.Close()
	}
}

// FloorService is the struct that exposes RPC methods.
type FloorService struct {
	run *services.RunService
}

// NewFloorService creates a new FloorService.
func NewFloorService(run *services.RunService) *FloorService {
	return &FloorService{run: run}
}

var ErrUnknownRun = errors.New("unknown run")

// RunArgs selects the run a call is about. An empty RunID means the run
// this server is playing.
type RunArgs struct {
	RunID string
}

func (fs *FloorService) check(args *RunArgs) error {
	if args.RunID != "" && args.RunID != fs.run.ID() {
		return fmt.Errorf("%w: %s", ErrUnknownRun, args.RunID)
	}
	return nil
}

// Methods follow the net/rpc signature: exported method, exported arguments,
// second argument is a pointer, return type is error.
type SnapshotArgs = RunArgs

type SnapshotReply struct {
	Snapshot services.Snapshot
}

func (fs *FloorService) Snapshot(args *SnapshotArgs, reply *SnapshotReply) error {
	if err := fs.check(args); err != nil {
		return err
	}
	snap, err := fs.run.Snapshot()
	if err != nil {
		return err
	}
	reply.Snapshot = snap
	return nil
}

type HistoryArgs = RunArgs

type HistoryReply struct {
	Records []models.FloorRecord
	Summary models.RunSummary
}

func (fs *FloorService) History(args *HistoryArgs, reply *HistoryReply) error {
	if err := fs.check(args); err != nil {
		return err
	}
	records, summary, err := fs.run.History()
	if err != nil {
		return err
	}
	reply.Records = records
	reply.Summary = summary
	return nil
}

type DescendArgs = RunArgs

type DescendReply struct {
	Floor int
}

// Descend skips the run to the next floor.
func (fs *FloorService) Descend(args *DescendArgs, reply *DescendReply) error {
	if err := fs.check(args); err != nil {
		return err
	}
	if err := fs.run.Descend(); err != nil {
		return err
	}
	snap, err := fs.run.Snapshot()
	if err != nil {
		return err
	}
	reply.Floor = snap.Floor
	return nil
}
