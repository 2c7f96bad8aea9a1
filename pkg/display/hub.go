package display

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"battle-display/pkg/arena"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	SEND_BUFFER   = 32
	WRITE_TIMEOUT = 5 * time.Second
)

type hubMsg interface{ isHubMsg() }

type join struct{ c *client }
type leave struct{ c *client }
type broadcast struct{ payload []byte }
type count struct{ reply chan int }

// direct is a reply to one client
type direct struct {
	c       *client
	payload []byte
}

func (join) isHubMsg()      {}
func (leave) isHubMsg()     {}
func (broadcast) isHubMsg() {}
func (count) isHubMsg()     {}
func (direct) isHubMsg()    {}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans arena events out to websocket clients. The client set is owned
// by the loop goroutine.
type Hub struct {
	inbox    chan hubMsg
	clients  map[*client]struct{}
	ctx      context.Context
	upgrader websocket.Upgrader
	log      *zap.Logger
}

func NewHub(ctx context.Context, log *zap.Logger) *Hub {
	h := &Hub{
		inbox:   make(chan hubMsg, 64),
		clients: make(map[*client]struct{}),
		ctx:     ctx,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		log: log.Named("hub"),
	}
	go h.loop()
	return h
}

func (h *Hub) loop() {
	for {
		select {
		case <-h.ctx.Done():
			for c := range h.clients {
				close(c.send)
			}
			clear(h.clients)
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case join:
				h.clients[msg.c] = struct{}{}
				h.log.Debug("client joined", zap.Int("clients", len(h.clients)))

			case leave:
				if _, ok := h.clients[msg.c]; ok {
					delete(h.clients, msg.c)
					close(msg.c.send)
					h.log.Debug("client left", zap.Int("clients", len(h.clients)))
				}

			case broadcast:
				for c := range h.clients {
					select {
					case c.send <- msg.payload:
					default:
						// slow reader
						delete(h.clients, c)
						close(c.send)
						h.log.Warn("dropped slow client")
					}
				}

			case direct:
				if _, ok := h.clients[msg.c]; ok {
					select {
					case msg.c.send <- msg.payload:
					default:
					}
				}

			case count:
				msg.reply <- len(h.clients)
			}
		}
	}
}

func (h *Hub) post(m hubMsg) bool {
	select {
	case h.inbox <- m:
		return true
	case <-h.ctx.Done():
		return false
	}
}

// Broadcast never blocks: it runs on the tick goroutine, so a full inbox
// drops the event.
func (h *Hub) Broadcast(ev arena.Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		h.log.Error("marshal event", zap.Error(err))
		return
	}
	select {
	case h.inbox <- broadcast{payload: payload}:
	default:
		h.log.Warn("event dropped", zap.String("type", string(ev.Type)))
	}
}

// Clients is the number of connected clients
func (h *Hub) Clients() int {
	reply := make(chan int, 1)
	if !h.post(count{reply: reply}) {
		return 0
	}
	select {
	case n := <-reply:
		return n
	case <-h.ctx.Done():
		return 0
	}
}

type turnReply struct {
	Type     string `json:"type"`
	Accepted bool   `json:"accepted"`
}

// Serve upgrades the request and streams events until the client goes away.
// A "turn" text message from the client calls onTurn with the hub's context
// and answers with {"type":"turn","accepted":...}.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, onTurn func(context.Context) bool) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade", zap.Error(err))
		return
	}

	c := &client{conn: conn, send: make(chan []byte, SEND_BUFFER)}
	if !h.post(join{c: c}) {
		conn.Close()
		return
	}

	go c.writePump()
	c.readPump(h, onTurn)
}

func (c *client) readPump(h *Hub, onTurn func(context.Context) bool) {
	defer func() {
		h.post(leave{c: c})
		c.conn.Close()
	}()

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		if string(data) != "turn" {
			continue
		}

		payload, _ := json.Marshal(turnReply{Type: "turn", Accepted: onTurn(h.ctx)})
		h.post(direct{c: c, payload: payload})
	}
}

func (c *client) writePump() {
	defer c.conn.Close()
	for payload := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(WRITE_TIMEOUT))
		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}
