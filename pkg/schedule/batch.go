package schedule

import "fmt"

// Item is one queued notification entering batch composition.
type Item struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Notification is a composed message ready for a delivery channel.
type Notification struct {
	Title string         `json:"title"`
	Body  string         `json:"body"`
	Data  map[string]any `json:"data,omitempty"`
}

// CreateBatchedNotification folds N queued notifications into one message.
// A single item keeps its own title and body; several items synthesize a
// summary and carry the item IDs for client-side deep-linking.
func CreateBatchedNotification(items []Item) Notification {
	if len(items) == 0 {
		return Notification{}
	}
	if len(items) == 1 {
		return Notification{
			Title: items[0].Title,
			Body:  items[0].Body,
			Data:  map[string]any{"itemIds": []string{items[0].ID}},
		}
	}

	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ID)
	}
	return Notification{
		Title: fmt.Sprintf("Time to review %d paused items!", len(items)),
		Body:  fmt.Sprintf("You have %d items ready for thoughtful decisions.", len(items)),
		Data:  map[string]any{"itemIds": ids},
	}
}
