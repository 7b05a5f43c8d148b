package ws

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/websocket"

	"shortkat/internal/models"
)

func TestHubAddAndRemoveChatClient(t *testing.T) {
	hub := NewHub()

	hub.AddChatClient("alice:bob", nil, ConnInfo{UserID: "alice"})
	if len(hub.chatRooms) != 1 {
		t.Fatalf("expected chat room to be created")
	}

	hub.RemoveChatClient("alice:bob", nil)
	if len(hub.chatRooms) != 0 {
		t.Fatalf("expected chat room to be removed")
	}
}

func TestHubConnInfoTracksRoomMembership(t *testing.T) {
	hub := NewHub()

	hub.AddChatClient("alice:bob", nil, ConnInfo{UserID: "alice", ConnID: "c1"})

	info, ok := hub.getConnInfo("alice:bob", nil)
	if !ok {
		t.Fatalf("expected conn info to be tracked")
	}
	if info.ConnID != "c1" {
		t.Fatalf("expected conn id c1, got %s", info.ConnID)
	}

	hub.RemoveChatClient("alice:bob", nil)
	if _, ok := hub.getConnInfo("alice:bob", nil); ok {
		t.Fatalf("expected conn info to be dropped with the room")
	}
}

// newConnPairs upgrades n websocket connections over a loopback server and
// returns the server side (registered in the hub) and the client side
// (read end).
func newConnPairs(t *testing.T, n int) (server, client []*websocket.Conn, cleanup func()) {
	t.Helper()

	up := websocket.Upgrader{}
	connCh := make(chan *websocket.Conn, n)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := up.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		connCh <- conn
	}))

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	for i := 0; i < n; i++ {
		conn, _, err := websocket.DefaultDialer.Dial(url, nil)
		if err != nil {
			srv.Close()
			t.Fatalf("dial failed: %v", err)
		}
		client = append(client, conn)
		server = append(server, <-connCh)
	}

	cleanup = func() {
		for _, conn := range client {
			conn.Close()
		}
		for _, conn := range server {
			conn.Close()
		}
		srv.Close()
	}
	return server, client, cleanup
}

func TestBroadcastChatMessageDeliversToRoom(t *testing.T) {
	hub := NewHub()
	server, client, cleanup := newConnPairs(t, 1)
	defer cleanup()

	hub.AddChatClient("alice:bob", server[0], ConnInfo{UserID: "bob"})

	msg := models.Message{ID: "m1", ChatID: "alice:bob", SenderID: "alice", Text: "hi"}
	hub.BroadcastChatMessage("alice:bob", msg, models.Streak{Count: 2, LastDate: "2024-03-02"})

	var event models.ChatEvent
	if err := client[0].ReadJSON(&event); err != nil {
		t.Fatalf("read broadcast failed: %v", err)
	}
	if event.Type != "message" {
		t.Fatalf("expected message event, got %s", event.Type)
	}
	if event.Message == nil || event.Message.ID != "m1" {
		t.Fatalf("expected message m1 in event")
	}
	if event.Streak == nil || event.Streak.Count != 2 {
		t.Fatalf("expected streak count 2 in event")
	}
}

func TestBroadcastChatMessageWhileClientsJoin(t *testing.T) {
	hub := NewHub()
	server, client, cleanup := newConnPairs(t, 3)
	defer cleanup()

	hub.AddChatClient("alice:bob", server[0], ConnInfo{UserID: "bob"})

	// drain the read ends so broadcasts never block
	for _, conn := range client {
		go func(conn *websocket.Conn) {
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}(conn)
	}

	msg := models.Message{ID: "m1", ChatID: "alice:bob", Text: "hi"}
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			hub.BroadcastChatMessage("alice:bob", msg, models.Streak{Count: 1})
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			hub.AddChatClient("alice:bob", server[1], ConnInfo{UserID: "alice"})
			hub.AddChatClient("alice:bob", server[2], ConnInfo{UserID: "alice"})
			hub.RemoveChatClient("alice:bob", server[1])
			hub.RemoveChatClient("alice:bob", server[2])
		}
	}()
	wg.Wait()
}
