package ws

import (
	"encoding/json"
	"testing"

	"pentrypal-go/internal/domain/shopping"
	"pentrypal-go/internal/events"
)

func TestEncodeItemFrame(t *testing.T) {
	amount := 2.15
	frame, err := encodeFrame(events.Event{
		Type:   events.TypeItemChanged,
		ListID: "list-1",
		Item: &shopping.ShoppingItem{
			ID:              "item-1",
			ListID:          "list-1",
			Name:            "Milk",
			Quantity:        1,
			Price:           1.80,
			Completed:       true,
			PurchasedAmount: &amount,
		},
	})
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	var decoded struct {
		Type   string `json:"type"`
		ListID string `json:"list_id"`
		Item   struct {
			ID              string   `json:"id"`
			Completed       bool     `json:"completed"`
			PurchasedAmount *float64 `json:"purchased_amount"`
		} `json:"item"`
	}
	if err := json.Unmarshal(frame, &decoded); err != nil {
		t.Fatalf("frame is not valid JSON: %v", err)
	}
	if decoded.Type != "item_changed" || decoded.ListID != "list-1" {
		t.Fatalf("unexpected envelope: %+v", decoded)
	}
	if decoded.Item.ID != "item-1" || !decoded.Item.Completed || decoded.Item.PurchasedAmount == nil {
		t.Fatalf("unexpected item payload: %+v", decoded.Item)
	}
}

func TestEncodeListFrame(t *testing.T) {
	frame, err := encodeFrame(events.Event{
		Type:   events.TypeListChanged,
		ListID: "list-1",
		List: &shopping.ShoppingList{
			ID:      "list-1",
			Name:    "Weekly groceries",
			OwnerID: "owner-1",
			Status:  shopping.StatusArchived,
		},
	})
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	var decoded struct {
		Type string `json:"type"`
		List struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		} `json:"list"`
	}
	if err := json.Unmarshal(frame, &decoded); err != nil {
		t.Fatalf("frame is not valid JSON: %v", err)
	}
	if decoded.Type != "list_changed" || decoded.List.Status != shopping.StatusArchived {
		t.Fatalf("unexpected frame: %+v", decoded)
	}
}
