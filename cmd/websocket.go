package main

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"goaltips/internal/models"
)

const (
	wsReadLimit     = 1 << 20
	wsReadDeadline  = 120 * time.Second
	wsWriteDeadline = 5 * time.Second
	wsPingInterval  = 15 * time.Second
)

// TipFeedHub fans published tips out to connected clients. It is
// broadcast-only: clients never send application messages, they just hold
// the socket open and receive tips as they go live. All access to conns
// happens on the Run goroutine.
type TipFeedHub struct {
	conns      map[*websocket.Conn]struct{}
	broadcast  chan models.Tip
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
}

func NewTipFeedHub() *TipFeedHub {
	return &TipFeedHub{
		conns:      make(map[*websocket.Conn]struct{}),
		broadcast:  make(chan models.Tip),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
	}
}

// Broadcast hands a published tip to the hub without blocking the caller.
func (hub *TipFeedHub) Broadcast(tip models.Tip) {
	go func() {
		hub.broadcast <- tip
	}()
}

func (hub *TipFeedHub) Run() {
	for {
		select {
		case conn := <-hub.register:
			hub.conns[conn] = struct{}{}
			log.Printf("WS register, clients=%d", len(hub.conns))

		case conn := <-hub.unregister:
			if _, ok := hub.conns[conn]; ok {
				_ = conn.Close()
				delete(hub.conns, conn)
				log.Printf("WS unregister, clients=%d", len(hub.conns))
			}

		case tip := <-hub.broadcast:
			for conn := range hub.conns {
				_ = conn.SetWriteDeadline(time.Now().Add(wsWriteDeadline))
				if err := conn.WriteJSON(tip); err != nil {
					log.Printf("tip broadcast error: %v", err)
					_ = conn.Close()
					delete(hub.conns, conn)
				}
			}
		}
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin:       func(r *http.Request) bool { return true },
	ReadBufferSize:    1024,
	WriteBufferSize:   1024,
	EnableCompression: true,
}

func (app *application) TipFeedWebSocketHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("WebSocket upgrade error:", err)
		return
	}

	conn.SetReadLimit(wsReadLimit)
	conn.SetReadDeadline(time.Now().Add(wsReadDeadline))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(wsReadDeadline))
		return nil
	})

	app.tipFeedHub.register <- conn

	go pingLoop(app.tipFeedHub, conn)
	go drainMessages(app.tipFeedHub, conn)
}

func pingLoop(hub *TipFeedHub, conn *websocket.Conn) {
	t := time.NewTicker(wsPingInterval)
	defer t.Stop()
	for range t.C {
		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteDeadline))
		if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
			hub.unregister <- conn
			return
		}
	}
}

// drainMessages keeps the read side alive for control frames and drops
// anything the client sends; it also detects disconnects.
func drainMessages(hub *TipFeedHub, conn *websocket.Conn) {
	defer func() {
		hub.unregister <- conn
	}()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
