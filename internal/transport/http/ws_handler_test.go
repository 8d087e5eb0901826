package http

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/parlorchat/parlor-server/internal/config"
	"github.com/parlorchat/parlor-server/internal/core"
	"github.com/parlorchat/parlor-server/internal/proto"
)

func startTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	hub := core.NewHub(nil, 0)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	cfg := config.Default()
	cfg.Addr = ":0"
	server := NewServer(hub, cfg, testLogger())

	ts := httptest.NewServer(server.Handler)
	t.Cleanup(ts.Close)
	return ts
}

func dialWS(t *testing.T, ctx context.Context, ts *httptest.Server) *websocket.Conn {
	t.Helper()

	wsURL := strings.Replace(ts.URL, "http", "ws", 1) + "/ws"
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", wsURL, err)
	}
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "done") })
	return conn
}

func send(t *testing.T, ctx context.Context, conn *websocket.Conn, request string, data any) {
	t.Helper()

	env, err := proto.Wrap(request, data)
	if err != nil {
		t.Fatalf("wrap %s: %v", request, err)
	}
	if err := wsjson.Write(ctx, conn, env); err != nil {
		t.Fatalf("write %s: %v", request, err)
	}
}

// awaitEvent reads envelopes until one carries the wanted tag,
// discarding everything else.
func awaitEvent(t *testing.T, ctx context.Context, conn *websocket.Conn, request string) json.RawMessage {
	t.Helper()

	for {
		var env proto.Envelope
		if err := wsjson.Read(ctx, conn, &env); err != nil {
			t.Fatalf("read while waiting for %s: %v", request, err)
		}
		if env.Request == request {
			return env.Data
		}
	}
}

func TestHealthEndpoint(t *testing.T) {
	ts := startTestServer(t)

	resp, err := ts.Client().Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("health request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}
}

func TestConnectAssignsUsername(t *testing.T) {
	ts := startTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn := dialWS(t, ctx, ts)

	raw := awaitEvent(t, ctx, conn, proto.EvtUsername)
	var data proto.UsernameData
	if err := json.Unmarshal(raw, &data); err != nil {
		t.Fatalf("unmarshal username data: %v", err)
	}
	if data.Username == "" {
		t.Fatal("expected a generated username")
	}
}

func TestCreateJoinAndChatAcrossConnections(t *testing.T) {
	ts := startTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	connA := dialWS(t, ctx, ts)
	connB := dialWS(t, ctx, ts)

	awaitEvent(t, ctx, connA, proto.EvtUsername)
	awaitEvent(t, ctx, connB, proto.EvtUsername)

	send(t, ctx, connA, proto.ReqSetUsername, proto.SetUsernameData{Username: "alice"})
	send(t, ctx, connA, proto.ReqCreateRoom, proto.CreateRoomData{Public: true, Name: "Test"})

	var attempt proto.CodeData
	if err := json.Unmarshal(awaitEvent(t, ctx, connA, proto.EvtAttemptJoin), &attempt); err != nil {
		t.Fatalf("unmarshal attempt_join: %v", err)
	}

	// B sees the announcement too.
	var announced proto.PublicRoomData
	if err := json.Unmarshal(awaitEvent(t, ctx, connB, proto.EvtNewPublicRoom), &announced); err != nil {
		t.Fatalf("unmarshal new_public_room: %v", err)
	}
	if announced.Name != "Test" || announced.Code != attempt.Code {
		t.Fatalf("unexpected announcement: %+v", announced)
	}

	send(t, ctx, connB, proto.ReqJoinRoom, proto.JoinRoomData{Code: attempt.Code})
	var joined proto.CodeData
	if err := json.Unmarshal(awaitEvent(t, ctx, connB, proto.EvtJoinRoom), &joined); err != nil {
		t.Fatalf("unmarshal join_room: %v", err)
	}
	if joined.Code != attempt.Code {
		t.Fatalf("join confirmed with %q, want %q", joined.Code, attempt.Code)
	}

	// send_message data is a bare string.
	send(t, ctx, connA, proto.ReqSendMessage, "hi")

	var msg proto.MessageData
	if err := json.Unmarshal(awaitEvent(t, ctx, connB, proto.EvtMessage), &msg); err != nil {
		t.Fatalf("unmarshal message: %v", err)
	}
	if msg.Username != "alice" || msg.Message != "hi" {
		t.Fatalf("unexpected message: %+v", msg)
	}
}

func TestOwnerDisconnectTearsDownRoomOnWire(t *testing.T) {
	ts := startTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	connA := dialWS(t, ctx, ts)
	connB := dialWS(t, ctx, ts)

	awaitEvent(t, ctx, connA, proto.EvtUsername)
	awaitEvent(t, ctx, connB, proto.EvtUsername)

	send(t, ctx, connA, proto.ReqCreateRoom, proto.CreateRoomData{Public: true})
	var attempt proto.CodeData
	if err := json.Unmarshal(awaitEvent(t, ctx, connA, proto.EvtAttemptJoin), &attempt); err != nil {
		t.Fatalf("unmarshal attempt_join: %v", err)
	}

	send(t, ctx, connB, proto.ReqJoinRoom, proto.JoinRoomData{Code: attempt.Code})
	awaitEvent(t, ctx, connB, proto.EvtJoinRoom)

	connA.Close(websocket.StatusNormalClosure, "bye")

	awaitEvent(t, ctx, connB, proto.EvtDeletePublicRoom)
	awaitEvent(t, ctx, connB, proto.EvtLeaveRoom)
}

// A frame that is not JSON, or an envelope the server does not
// understand, is dropped without killing the connection.
func TestBadFramesAreToleratedAndUnanswered(t *testing.T) {
	ts := startTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conn := dialWS(t, ctx, ts)
	awaitEvent(t, ctx, conn, proto.EvtUsername)

	if err := conn.Write(ctx, websocket.MessageText, []byte("not json at all")); err != nil {
		t.Fatalf("write garbage: %v", err)
	}
	if err := conn.Write(ctx, websocket.MessageText, []byte(`{"request":"client::warp_drive","data":{}}`)); err != nil {
		t.Fatalf("write unknown request: %v", err)
	}
	if err := conn.Write(ctx, websocket.MessageText, []byte(`{"request":"client::send_message"}`)); err != nil {
		t.Fatalf("write dataless request: %v", err)
	}

	// The connection still works: a real request gets a real answer.
	send(t, ctx, conn, proto.ReqGetPublicRooms, struct{}{})
	raw := awaitEvent(t, ctx, conn, proto.EvtPublicRooms)

	var rooms []proto.PublicRoomData
	if err := json.Unmarshal(raw, &rooms); err != nil {
		t.Fatalf("unmarshal public rooms: %v", err)
	}
	if len(rooms) != 0 {
		t.Fatalf("expected empty listing, got %+v", rooms)
	}
}

func TestPublicRoomsRESTEndpoint(t *testing.T) {
	ts := startTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conn := dialWS(t, ctx, ts)
	awaitEvent(t, ctx, conn, proto.EvtUsername)

	send(t, ctx, conn, proto.ReqCreateRoom, proto.CreateRoomData{Public: true, Name: "Lobby"})
	awaitEvent(t, ctx, conn, proto.EvtAttemptJoin)

	resp, err := ts.Client().Get(ts.URL + "/api/rooms")
	if err != nil {
		t.Fatalf("rooms request failed: %v", err)
	}
	defer resp.Body.Close()

	var rooms []RoomResponse
	if err := json.NewDecoder(resp.Body).Decode(&rooms); err != nil {
		t.Fatalf("decode rooms: %v", err)
	}
	if len(rooms) != 1 || rooms[0].Name != "Lobby" {
		t.Fatalf("unexpected listing: %+v", rooms)
	}
}
