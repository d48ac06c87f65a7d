package proto

import (
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/websocket"
	"github.com/keminar/prefork/config"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next message from the peer.
	readWait = 60 * time.Second

	// Maximum message size allowed from peer.
	maxMessageSize = 64 << 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// ServeHTTP echoes every websocket message back with the same type.
func (e *Echo) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println(os.Getpid(), "websocket upgrade", r.RemoteAddr, err)
		return
	}
	defer conn.Close()
	log.Println("PID:", os.Getpid(), "accepted a new websocket from", r.RemoteAddr)

	conn.SetReadLimit(maxMessageSize)
	for {
		conn.SetReadDeadline(time.Now().Add(readWait))
		mt, p, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Println(os.Getpid(), "websocket read", r.RemoteAddr, err)
			}
			return
		}
		e.in.Add(int64(len(p)))
		if config.DebugLevel() >= config.LevelDebug {
			log.Println(os.Getpid(), "websocket message", mt, len(p))
		}
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err = conn.WriteMessage(mt, p); err != nil {
			log.Println(os.Getpid(), "websocket write", r.RemoteAddr, err)
			return
		}
		e.out.Add(int64(len(p)))
	}
}

// WebSocketServer serves e on every path.
func WebSocketServer(e *Echo) *http.Server {
	return &http.Server{
		Handler:           e,
		ReadHeaderTimeout: readWait,
	}
}
