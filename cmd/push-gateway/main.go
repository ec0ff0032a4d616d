package main

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"voyage/internal/pkg/bootstrap"
	"voyage/internal/pkg/logger"
	"voyage/internal/pkg/mq"
)

// The push gateway fans trip notifications out to connected browsers. Each
// customer opens a websocket at /ws?customerId=N; trip events published by the
// travel service arrive over Kafka keyed by customer id and are forwarded to
// that customer's socket.

const serviceName = "push-gateway"

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
)

var (
	nodeID   = serviceName + "-" + uuid.New().String()[:8]
	upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     func(r *http.Request) bool { return true },
	}
)

// Hub tracks live connections keyed by customer id.
type Hub struct {
	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client
	lock       sync.RWMutex
}

func newHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

func (h *Hub) run() {
	for {
		select {
		case client := <-h.register:
			h.lock.Lock()
			if old, ok := h.clients[client.customerID]; ok {
				close(old.send)
			}
			h.clients[client.customerID] = client
			h.lock.Unlock()
			log.Info().Str("customer_id", client.customerID).Str("node", nodeID).Msg("client registered")
		case client := <-h.unregister:
			h.lock.Lock()
			if current, ok := h.clients[client.customerID]; ok && current == client {
				delete(h.clients, client.customerID)
				close(client.send)
			}
			h.lock.Unlock()
			log.Info().Str("customer_id", client.customerID).Msg("client unregistered")
		}
	}
}

// deliver pushes a payload to the customer's socket if one is connected on
// this node. Messages for absent customers are dropped. The send happens under
// the read lock: run closes a replaced client's channel under the write lock,
// so the channel cannot close mid-send.
func (h *Hub) deliver(customerID string, payload []byte) bool {
	h.lock.RLock()
	defer h.lock.RUnlock()
	client, ok := h.clients[customerID]
	if !ok {
		return false
	}
	select {
	case client.send <- payload:
		return true
	default:
		// Slow consumer, drop rather than block the consumer loop.
		return false
	}
}

// Client is one websocket connection.
type Client struct {
	hub        *Hub
	conn       *websocket.Conn
	send       chan []byte
	customerID string
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case payload, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func serveWs(hub *Hub, w http.ResponseWriter, r *http.Request) {
	customerID := r.URL.Query().Get("customerId")
	if customerID == "" {
		http.Error(w, "customerId is required", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := &Client{hub: hub, conn: conn, send: make(chan []byte, 256), customerID: customerID}
	hub.register <- client

	go client.writePump()
	go client.readPump()
}

// consumeNotifications reads trip events from Kafka and routes each to the
// websocket of the customer it is keyed by.
func consumeNotifications(ctx context.Context, hub *Hub, brokers []string, topic string) {
	// Every gateway node gets its own group so each one sees all events;
	// customers may be connected to any node.
	reader := mq.NewReader(brokers, topic, nodeID)
	defer reader.Close()

	log.Info().Str("topic", topic).Str("group", nodeID).Msg("consuming trip notifications")
	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Error().Err(err).Msg("could not read notification, retrying")
			time.Sleep(5 * time.Second)
			continue
		}

		msgCtx := logger.WithTrace(mq.ExtractContext(ctx, msg))
		customerID := string(msg.Key)
		if hub.deliver(customerID, msg.Value) {
			logger.Ctx(msgCtx).Debug().Str("customer_id", customerID).Msg("notification pushed")
		} else {
			logger.Ctx(msgCtx).Debug().Str("customer_id", customerID).Msg("customer not connected here, dropped")
		}
	}
}

func main() {
	hub := newHub()
	go hub.run()

	ctx, cancel := context.WithCancel(context.Background())

	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: serviceName,
		Port:        8088,
		RegisterHandlers: func(appCtx bootstrap.AppCtx) {
			cfg := bootstrap.GetCurrentConfig()
			go consumeNotifications(ctx, hub, cfg.Infra.Kafka.Brokers, cfg.Infra.Kafka.Topics.TripNotifications)

			appCtx.Mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
			appCtx.Mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
				serveWs(hub, w, r)
			})
		},
		Cleanup: func(context.Context) { cancel() },
	})
}
