// Package spectate streams a session's events to read-only websocket viewers.
package spectate

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/samdwyer/dualcrawl/internal/event"
	"github.com/samdwyer/dualcrawl/internal/world"
)

// ErrBackpressure is returned when a viewer's queue is full.
var ErrBackpressure = errors.New("spectator queue full")

const queueSize = 64

// Message is one frame on the wire.
type Message struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

type moveData struct {
	From       world.Position `json:"from"`
	To         world.Position `json:"to"`
	Mode       string         `json:"mode"`
	Transition bool           `json:"transition,omitempty"`
}

type levelData struct {
	Number int            `json:"number"`
	Start  world.Position `json:"start"`
	Rows   []string       `json:"rows,omitempty"`
}

type attackData struct {
	Attacker string `json:"attacker"`
	Name     string `json:"name"`
	Target   string `json:"target"`
	Hit      bool   `json:"hit"`
	Damage   int    `json:"damage"`
	Killed   bool   `json:"killed,omitempty"`
}

type defeatData struct {
	Enemy    string         `json:"enemy"`
	Position world.Position `json:"position"`
	Treasure int            `json:"treasure"`
}

type stateData struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Reason string `json:"reason,omitempty"`
}

type endData struct {
	Victory bool   `json:"victory"`
	Level   int    `json:"level"`
	Reason  string `json:"reason"`
}

type client struct {
	id     uuid.UUID
	sendCh chan []byte
}

// Hub fans session events out to connected viewers. Slow viewers lose frames
// rather than stalling the game loop.
type Hub struct {
	mu      sync.Mutex
	clients map[uuid.UUID]*client
	logger  *slog.Logger
}

// NewHub creates a hub with no viewers.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		clients: make(map[uuid.UUID]*client),
		logger:  logger.With("component", "spectate"),
	}
}

// Attach subscribes the hub to the notifier's public event kinds.
func (h *Hub) Attach(n *event.Notifier) {
	for _, kind := range []event.Kind{
		event.KindLevelGenerated,
		event.KindCharacterMoved,
		event.KindAttackPerformed,
		event.KindEnemyDefeated,
		event.KindStateChanged,
		event.KindGameEnded,
	} {
		n.Subscribe(kind, h)
	}
}

// Handle encodes ev and queues it for every viewer.
func (h *Hub) Handle(ctx context.Context, ev event.Event) error {
	msg, ok := Encode(ev)
	if !ok {
		return nil
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	h.Broadcast(ctx, data)
	return nil
}

// Broadcast queues data for every viewer, dropping it for full queues.
func (h *Hub) Broadcast(ctx context.Context, data []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, c := range h.clients {
		if err := c.send(data); err != nil {
			h.logger.WarnContext(ctx, "frame dropped", "client", c.id, "error", err)
		}
	}
}

// Len returns the number of connected viewers.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (c *client) send(data []byte) error {
	select {
	case c.sendCh <- data:
		return nil
	default:
		return ErrBackpressure
	}
}

func (h *Hub) register() *client {
	c := &client{id: uuid.New(), sendCh: make(chan []byte, queueSize)}
	h.mu.Lock()
	h.clients[c.id] = c
	h.mu.Unlock()
	return c
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	delete(h.clients, c.id)
	h.mu.Unlock()
}

// ServeHTTP upgrades the request and streams frames until the viewer leaves.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: true})
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to accept", "err", err)
		return
	}
	defer conn.CloseNow()

	c := h.register()
	defer h.unregister(c)
	h.logger.InfoContext(ctx, "spectator joined", "client", c.id, "remote", r.RemoteAddr)

	// Viewers are read-only; CloseRead handles control frames and cancels
	// ctx when the peer goes away.
	ctx = conn.CloseRead(ctx)
	for {
		select {
		case <-ctx.Done():
			h.logger.InfoContext(ctx, "spectator left", "client", c.id)
			return
		case data := <-c.sendCh:
			if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
				h.logger.WarnContext(ctx, "spectator write failed", "client", c.id, "err", err)
				return
			}
		}
	}
}

// Encode converts ev to its wire form. Kinds viewers do not see report false.
func Encode(ev event.Event) (Message, bool) {
	switch e := ev.(type) {
	case event.LevelGenerated:
		d := levelData{Number: e.Number, Start: e.Start}
		if e.Level != nil && e.Level.Dungeon != nil {
			d.Rows = e.Level.Dungeon.Rows()
		}
		return Message{Type: "level", Data: d}, true
	case event.CharacterMoved:
		return Message{Type: "move", Data: moveData{
			From: e.From, To: e.To, Mode: e.Mode.String(), Transition: e.Transition,
		}}, true
	case event.AttackPerformed:
		return Message{Type: "attack", Data: attackData{
			Attacker: e.Attacker.String(), Name: e.Name, Target: e.Target,
			Hit: e.Hit, Damage: e.Damage, Killed: e.Killed,
		}}, true
	case event.EnemyDefeated:
		return Message{Type: "defeat", Data: defeatData{
			Enemy: e.Enemy.Name, Position: e.Enemy.Position, Treasure: e.Treasure.Value,
		}}, true
	case event.StateChanged:
		return Message{Type: "state", Data: stateData{
			From: e.From.String(), To: e.To.String(), Reason: e.Reason,
		}}, true
	case event.GameEnded:
		return Message{Type: "end", Data: endData{
			Victory: e.Victory, Level: e.Level, Reason: e.Reason,
		}}, true
	default:
		return Message{}, false
	}
}
