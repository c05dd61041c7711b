package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/wfunc/dungeonfloor/floor"
	"github.com/wfunc/dungeonfloor/monitor"
	"github.com/wfunc/dungeonfloor/network"
	"github.com/wfunc/dungeonfloor/persistence"
	"github.com/wfunc/dungeonfloor/rng"
	"github.com/wfunc/dungeonfloor/room"
	"github.com/wfunc/dungeonfloor/services"
)

func newTestServer(t *testing.T) (*httptest.Server, *services.RunService, *monitor.Monitor) {
	t.Helper()
	gen := floor.NewGenerator(floor.DefaultOptions(), rng.New(21), nil)
	run := services.NewRunService(gen, 21, persistence.NewMemory(), nil, services.RunOptions{})
	if err := run.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	reg := prometheus.NewRegistry()
	mon := monitor.NewMonitorWithRegistry("dungeon", reg, reg)
	s := NewDungeonServer("", "", run, mon)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts, run, mon
}

func dial(t *testing.T, ts *httptest.Server) *network.WSConnection {
	t.Helper()
	conn, err := network.Dial("ws" + strings.TrimPrefix(ts.URL, "http") + "/ws")
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	conn.SetHeartbeat(2 * time.Second)
	return conn
}

func send(t *testing.T, conn *network.WSConnection, msgID uint16, v interface{}) {
	t.Helper()
	var data []byte
	if v != nil {
		var err error
		if data, err = network.Encode(v); err != nil {
			t.Fatal(err)
		}
	}
	if err := conn.Send(msgID, data); err != nil {
		t.Fatalf("Send %d failed: %v", msgID, err)
	}
}

func expect(t *testing.T, conn *network.WSConnection, msgID uint16, v interface{}) {
	t.Helper()
	p, err := conn.ReadPacket()
	if err != nil {
		t.Fatalf("ReadPacket failed: %v", err)
	}
	if p.MsgID != msgID {
		t.Fatalf("Expected message %d, got %d: %s", msgID, p.MsgID, p.Data)
	}
	if v != nil {
		if err := p.Decode(v); err != nil {
			t.Fatalf("Decode failed: %v", err)
		}
	}
}

func TestServer_SubscribeAndRoomChange(t *testing.T) {
	ts, run, mon := newTestServer(t)
	conn := dial(t, ts)

	send(t, conn, network.MsgTypeSubscribe, nil)
	var snap services.Snapshot
	expect(t, conn, network.MsgTypeSnapshot, &snap)
	if snap.RunID != run.ID() || snap.Role != room.RoleStart.String() {
		t.Fatalf("Unexpected snapshot %+v", snap)
	}
	if got := testutil.ToFloat64(mon.Metrics().Spectators); got != 1 {
		t.Errorf("Expected 1 spectator, got %v", got)
	}

	var door room.Direction = -1
	for _, d := range room.Directions {
		if err := run.Walk(d); err == nil {
			door = d
			break
		}
	}
	if door < 0 {
		t.Fatal("Start room has no door")
	}
	if err := run.Tick(); err != nil {
		t.Fatalf("Tick failed: %v", err)
	}

	var changed services.Snapshot
	expect(t, conn, network.MsgTypeRoomChange, &changed)
	want := room.Coord{Row: snap.Row, Col: snap.Col}.Step(door)
	if changed.Row != want.Row || changed.Col != want.Col {
		t.Errorf("Expected room %v, got (%d,%d)", want, changed.Row, changed.Col)
	}
}

func TestServer_WalkErrors(t *testing.T) {
	ts, _, _ := newTestServer(t)
	conn := dial(t, ts)

	send(t, conn, network.MsgTypeWalk, network.WalkRequest{Direction: "up"})
	var reply network.ErrorReply
	expect(t, conn, network.MsgTypeError, &reply)
	if reply.MsgID != network.MsgTypeWalk || !strings.Contains(reply.Error, "unknown direction") {
		t.Errorf("Unexpected error reply %+v", reply)
	}

	send(t, conn, network.MsgTypeHeartbeat, nil)
	expect(t, conn, network.MsgTypeHeartbeat, nil)
}

func TestServer_FloorEndpoints(t *testing.T) {
	ts, run, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/floor")
	if err != nil {
		t.Fatalf("GET /floor failed: %v", err)
	}
	var snap services.Snapshot
	err = json.NewDecoder(resp.Body).Decode(&snap)
	resp.Body.Close()
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if snap.RunID != run.ID() || snap.Dump == "" {
		t.Errorf("Unexpected snapshot %+v", snap)
	}

	resp, err = http.Get(ts.URL + "/floor/history")
	if err != nil {
		t.Fatalf("GET /floor/history failed: %v", err)
	}
	defer resp.Body.Close()
	var history struct {
		Summary struct {
			Floors int `json:"floors"`
		} `json:"summary"`
		Floors []json.RawMessage `json:"floors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&history); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if history.Summary.Floors != 1 || len(history.Floors) != 1 {
		t.Errorf("Expected one floor in history, got %+v", history)
	}
}
