package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"golang.org/x/time/rate"

	"pentrypal-go/internal/config"
	"pentrypal-go/internal/domain/shopping"
	"pentrypal-go/internal/events"
	"pentrypal-go/internal/metrics"
	"pentrypal-go/pkg/logger"
)

// FeedServer exposes the live-updates feed over WebSocket. Each connection
// subscribes to one list's event stream; frames are JSON envelopes with a
// type discriminator. Writes are rate-limited per connection; a connection
// whose bus subscription is dropped for falling behind is closed and expected
// to reconnect and re-fetch the list.
type FeedServer struct {
	bus          *events.Bus
	writeTimeout time.Duration
	writeEvery   time.Duration
	writeBurst   int
	log          logger.Logger
}

func NewFeedServer(bus *events.Bus, cfg config.FeedConfig, log logger.Logger) *FeedServer {
	writeTimeout := cfg.WriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = 5 * time.Second
	}
	writeEvery := cfg.PublishRate
	if writeEvery <= 0 {
		writeEvery = 100 * time.Millisecond
	}
	writeBurst := cfg.PublishBurst
	if writeBurst <= 0 {
		writeBurst = 8
	}
	return &FeedServer{
		bus:          bus,
		writeTimeout: writeTimeout,
		writeEvery:   writeEvery,
		writeBurst:   writeBurst,
		log:          log,
	}
}

type itemFrame struct {
	Type   string      `json:"type"`
	ListID string      `json:"list_id"`
	Item   itemPayload `json:"item"`
}

type listFrame struct {
	Type string      `json:"type"`
	List listPayload `json:"list"`
}

type itemPayload struct {
	ID              string   `json:"id"`
	ListID          string   `json:"list_id"`
	Name            string   `json:"name"`
	Quantity        float64  `json:"quantity"`
	Unit            string   `json:"unit"`
	Price           float64  `json:"price"`
	Completed       bool     `json:"completed"`
	AssignedTo      *string  `json:"assigned_to"`
	PurchasedAmount *float64 `json:"purchased_amount"`
}

type listPayload struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	OwnerID string `json:"owner_id"`
	Status  string `json:"status"`
}

func toItemPayload(item shopping.ShoppingItem) itemPayload {
	return itemPayload{
		ID:              item.ID,
		ListID:          item.ListID,
		Name:            item.Name,
		Quantity:        item.Quantity,
		Unit:            item.Unit,
		Price:           item.Price,
		Completed:       item.Completed,
		AssignedTo:      item.AssignedTo,
		PurchasedAmount: item.PurchasedAmount,
	}
}

func (s *FeedServer) Subscribe(w http.ResponseWriter, r *http.Request) {
	listID := r.URL.Query().Get("list_id")
	if listID == "" {
		http.Error(w, "list_id is required", http.StatusBadRequest)
		return
	}

	err := s.subscribe(r.Context(), w, r, listID)
	if errors.Is(err, context.Canceled) {
		return
	}
	if websocket.CloseStatus(err) == websocket.StatusNormalClosure ||
		websocket.CloseStatus(err) == websocket.StatusGoingAway {
		return
	}
	if err != nil {
		s.log.Debug("ws: subscription ended", "list_id", listID, "err", err)
	}
}

func (s *FeedServer) subscribe(ctx context.Context, w http.ResponseWriter, r *http.Request, listID string) error {
	ch, cancel := s.bus.Subscribe(listID)
	defer cancel()

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		return err
	}
	defer conn.CloseNow()

	metrics.FeedConnections.Inc()
	defer metrics.FeedConnections.Dec()

	// The feed is write-only; CloseRead still surfaces control frames and
	// cancels the context when the client goes away.
	ctx = conn.CloseRead(ctx)

	limiter := rate.NewLimiter(rate.Every(s.writeEvery), s.writeBurst)

	for {
		select {
		case event, ok := <-ch:
			if !ok {
				// Dropped by the bus for falling behind.
				return conn.Close(websocket.StatusPolicyViolation, "too slow, re-sync required")
			}
			if err := limiter.Wait(ctx); err != nil {
				return err
			}
			frame, err := encodeFrame(event)
			if err != nil {
				s.log.InternalError("ws: encode frame failed", err, "list_id", listID)
				continue
			}
			if err := s.writeTimeoutFrame(ctx, conn, frame); err != nil {
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (s *FeedServer) writeTimeoutFrame(ctx context.Context, conn *websocket.Conn, frame []byte) error {
	ctx, cancel := context.WithTimeout(ctx, s.writeTimeout)
	defer cancel()
	return conn.Write(ctx, websocket.MessageText, frame)
}

func encodeFrame(event events.Event) ([]byte, error) {
	switch event.Type {
	case events.TypeItemChanged:
		return json.Marshal(itemFrame{Type: string(event.Type), ListID: event.ListID, Item: toItemPayload(*event.Item)})
	case events.TypeListChanged:
		return json.Marshal(listFrame{Type: string(event.Type), List: listPayload{
			ID:      event.List.ID,
			Name:    event.List.Name,
			OwnerID: event.List.OwnerID,
			Status:  event.List.Status,
		}})
	default:
		return json.Marshal(map[string]string{"type": string(event.Type), "list_id": event.ListID})
	}
}
