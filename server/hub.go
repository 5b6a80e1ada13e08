package server

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	log "gopkg.in/inconshreveable/log15.v2"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8192
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Request is one client->server websocket message, shaped after the
// teacher's hub request envelope: an object name, an action, and a
// free-form data payload, correlated back to the caller by ID.
type Request struct {
	ID     int                    `json:"id"`
	Object string                 `json:"object"`
	Action string                 `json:"action"`
	Data   map[string]interface{} `json:"data,omitempty"`
}

// Response is the server->client reply to a Request, or an unsolicited
// push (ID 0) such as a conflict/adjustment notification.
type Response struct {
	ID     int         `json:"id"`
	Status string      `json:"status"`
	Object string      `json:"object,omitempty"`
	Data   interface{} `json:"data,omitempty"`
	Error  string      `json:"error,omitempty"`
}

func newOkResponse(id int, data interface{}) Response {
	return Response{ID: id, Status: "ok", Data: data}
}

func newErrorResponse(id int, err error) Response {
	return Response{ID: id, Status: "error", Error: err.Error()}
}

func newPushResponse(object string, data interface{}) Response {
	return Response{Status: "ok", Object: object, Data: data}
}

// hubObject dispatches requests addressed to one named object
// ("conflicts", "schedules", "realtime", ...), mirroring the teacher's
// hubObject interface in hub_simulation.go/hub_suggestions.go.
type hubObject interface {
	dispatch(h *Hub, req Request, conn *connection)
}

// Hub owns the set of connected clients and the registered dispatch
// objects, and fans out pushed events to every client.
type Hub struct {
	objects    map[string]hubObject
	register   chan *connection
	unregister chan *connection
	broadcast  chan Response
	clients    map[*connection]bool
	logger     log.Logger
	events     *eventLog
}

func newHub(events *eventLog, logger log.Logger) *Hub {
	return &Hub{
		objects:    make(map[string]hubObject),
		register:   make(chan *connection),
		unregister: make(chan *connection),
		broadcast:  make(chan Response, 256),
		clients:    make(map[*connection]bool),
		logger:     logger.New("module", "hub"),
		events:     events,
	}
}

func (h *Hub) registerObject(obj string, o hubObject) {
	h.objects[obj] = o
}

func (h *Hub) run() {
	for {
		select {
		case conn := <-h.register:
			h.clients[conn] = true
		case conn := <-h.unregister:
			if _, ok := h.clients[conn]; ok {
				delete(h.clients, conn)
				close(conn.pushChan)
			}
		case resp := <-h.broadcast:
			for conn := range h.clients {
				select {
				case conn.pushChan <- resp:
				default:
					delete(h.clients, conn)
					close(conn.pushChan)
				}
			}
		}
	}
}

// push broadcasts an unsolicited Response to every connected client.
func (h *Hub) push(object string, data interface{}) {
	select {
	case h.broadcast <- newPushResponse(object, data):
	default:
		h.logger.Warn("dropped broadcast, channel full", "object", object)
	}
}

// connection wraps one client websocket with a buffered outbound channel,
// so a slow reader cannot block the hub's broadcast loop.
type connection struct {
	ws       *websocket.Conn
	pushChan chan Response
	hub      *Hub
}

func (c *connection) readLoop() {
	defer func() {
		c.hub.unregister <- c
		c.ws.Close()
	}()
	c.ws.SetReadLimit(maxMessageSize)
	c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		c.ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		var req Request
		if err := c.ws.ReadJSON(&req); err != nil {
			return
		}
		obj, ok := c.hub.objects[req.Object]
		if !ok {
			c.pushChan <- newErrorResponse(req.ID, errUnknownObject(req.Object))
			continue
		}
		obj.dispatch(c.hub, req, c)
	}
}

func (c *connection) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.ws.Close()
	}()
	for {
		select {
		case resp, ok := <-c.pushChan:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.ws.WriteJSON(resp); err != nil {
				return
			}
		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *Hub) serveWS(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", "error", err)
		return
	}
	conn := &connection{ws: ws, pushChan: make(chan Response, 256), hub: h}
	h.register <- conn
	go conn.writeLoop()
	conn.readLoop()
}

func errUnknownObject(name string) error {
	return &unknownObjectError{name: name}
}

type unknownObjectError struct{ name string }

func (e *unknownObjectError) Error() string { return "unknown object: " + e.name }
