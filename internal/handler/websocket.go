package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"campusbus/internal/domain"
	"campusbus/internal/hub"
	"campusbus/internal/resolver"
	"campusbus/internal/store"
)

type WSHandler struct {
	hub    *hub.Hub
	store  *store.Store
	logger *slog.Logger
}

func NewWSHandler(h *hub.Hub, s *store.Store, logger *slog.Logger) *WSHandler {
	return &WSHandler{hub: h, store: s, logger: logger}
}

type WSMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type SubscribePayload struct {
	Directions []string `json:"directions"`
}

type PongMessage struct {
	Type string `json:"type"`
}

func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		h.logger.Error("websocket accept failed", "error", err)
		return
	}

	clientID := uuid.New().String()
	client := hub.NewClient(clientID, 64)

	h.hub.Register(client)
	ServerStats.IncWSConnections()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	go h.writeLoop(ctx, conn, client)

	h.readLoop(ctx, conn, client)
}

func (h *WSHandler) readLoop(ctx context.Context, conn *websocket.Conn, client *hub.Client) {
	defer func() {
		h.hub.Unregister(client)
		ServerStats.DecWSConnections()
		conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		msgType, data, err := conn.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) != websocket.StatusNormalClosure {
				h.logger.Debug("websocket read error", "client_id", client.ID, "error", err)
			}
			return
		}

		if msgType != websocket.MessageText {
			continue
		}

		var msg WSMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			h.logger.Debug("invalid message format", "client_id", client.ID, "error", err)
			continue
		}

		switch msg.Type {
		case "subscribe":
			dirs, ok := h.parseDirections(msg.Payload)
			if ok && len(dirs) > 0 {
				h.hub.Subscribe(client, dirs)
				h.sendCurrentNext(client, dirs)
			}

		case "unsubscribe":
			dirs, ok := h.parseDirections(msg.Payload)
			if ok && len(dirs) > 0 {
				h.hub.Unsubscribe(client, dirs)
			}

		case "ping":
			h.sendPong(client)
		}
	}
}

func (h *WSHandler) parseDirections(payload json.RawMessage) ([]domain.Direction, bool) {
	var sub SubscribePayload
	if err := json.Unmarshal(payload, &sub); err != nil {
		return nil, false
	}
	dirs := make([]domain.Direction, 0, len(sub.Directions))
	for _, raw := range sub.Directions {
		dir, ok := domain.ParseDirection(raw)
		if !ok {
			continue
		}
		dirs = append(dirs, dir)
	}
	return dirs, true
}

// sendCurrentNext pushes the current resolver state for the freshly
// subscribed directions so the client does not wait for the next tick.
func (h *WSHandler) sendCurrentNext(client *hub.Client, dirs []domain.Direction) {
	schedules := h.store.Snapshot()
	now := time.Now()

	payload := make([]resolver.NextDeparture, 0, len(dirs))
	for _, dir := range dirs {
		payload = append(payload, resolver.Next(schedules, dir, now))
	}

	data, err := json.Marshal(hub.NextMessage{Type: "next", Payload: payload})
	if err != nil {
		return
	}
	h.hub.Deliver(client, data)
}

func (h *WSHandler) sendPong(client *hub.Client) {
	data, err := json.Marshal(PongMessage{Type: "pong"})
	if err != nil {
		return
	}
	h.hub.Deliver(client, data)
}

func (h *WSHandler) writeLoop(ctx context.Context, conn *websocket.Conn, client *hub.Client) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case msg, ok := <-client.Send:
			if !ok {
				return
			}
			writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err := conn.Write(writeCtx, websocket.MessageText, msg)
			cancel()
			if err != nil {
				return
			}

		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err := conn.Ping(pingCtx)
			cancel()
			if err != nil {
				return
			}
		}
	}
}
