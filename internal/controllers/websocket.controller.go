package controllers

import (
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"diskwatch/internal/middleware"
	"diskwatch/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// token auth guards the feed; origins are not restricted
		return true
	},
}

var clientSeq atomic.Uint64

// clientMessage is what viewers may send on the socket
type clientMessage struct {
	Type string `json:"type"` // "ping", "unsubscribe"
}

// HandleWebSocket upgrades an authenticated request and streams cycle results
func (a *API) HandleWebSocket(c *gin.Context) {
	token := bearerToken(c)
	if token == "" {
		middleware.LogFailedAuth(a.Log, c.ClientIP(), "missing token")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	claims, err := a.Auth.ValidateToken(token)
	if err != nil {
		middleware.LogFailedAuth(a.Log, c.ClientIP(), "invalid token: "+err.Error())
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		a.Log.WithError(err).Warn("websocket upgrade failed")
		return
	}

	clientID := fmt.Sprintf("%s-%s-%d", c.ClientIP(), claims.Viewer, clientSeq.Add(1))
	client := services.NewClientConnection(clientID, ws)
	log := a.Log.WithField("client", clientID)

	if !a.Hub.Register(client) {
		_ = ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"))
		ws.Close()
		return
	}

	pings := make(chan struct{}, 1)
	go a.readPump(client, pings, log)
	go a.writePump(client, pings, log)
}

func bearerToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return c.Query("token")
}

// readPump reads viewer messages until the connection fails or the viewer unsubscribes
func (a *API) readPump(client *services.ClientConnection, pings chan<- struct{}, log *logrus.Entry) {
	defer func() {
		a.Hub.Unregister(client.ID)
		client.Conn.Close()
	}()

	client.Conn.SetReadLimit(4096)

	for {
		var msg clientMessage
		if err := client.Conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.WithError(err).Warn("websocket read error")
			}
			return
		}

		switch msg.Type {
		case "ping":
			select {
			case pings <- struct{}{}:
			default:
			}
		case "unsubscribe":
			return
		default:
			log.WithField("type", msg.Type).Debug("unknown message type")
		}
	}
}

// writePump sends the last cycle, then every broadcast, until the hub closes the queue
func (a *API) writePump(client *services.ClientConnection, pings <-chan struct{}, log *logrus.Entry) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		client.Conn.Close()
	}()

	write := func(msg services.WebSocketMessage) bool {
		_ = client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := client.Conn.WriteJSON(msg); err != nil {
			log.WithError(err).Debug("websocket write failed")
			return false
		}
		return true
	}

	if last, ok := a.Monitor.LastCycle(); ok {
		if !write(services.WebSocketMessage{Type: "cycle", Timestamp: time.Now(), Data: last}) {
			return
		}
	}

	for {
		select {
		case msg, ok := <-client.Send:
			if !ok {
				_ = client.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if !write(msg) {
				return
			}

		case <-pings:
			if !write(services.WebSocketMessage{Type: "pong", Timestamp: time.Now()}) {
				return
			}

		case <-ticker.C:
			_ = client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
