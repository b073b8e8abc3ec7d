package state

import (
	"context"
	"time"

	"github.com/asaidimu/go-colfilter/core/filter"
)

// EventType identifies a filter state change.
type EventType string

// Events emitted by FilterState.
const (
	FilterSet       EventType = "filter:set"
	FiltersCleared  EventType = "filter:cleared"
	FiltersRestored EventType = "filter:restored"
)

// Event describes one change to a table's filter state.
type Event struct {
	Type      EventType    `json:"type"`
	TableID   string       `json:"tableId"`
	Timestamp int64        `json:"timestamp"`
	Column    *int         `json:"column,omitempty"` // Set only for FilterSet.
	Spec      *filter.Spec `json:"spec,omitempty"`   // Set only for FilterSet.
	Specs     filter.Specs `json:"specs,omitempty"`  // State after a restore.
}

// EventCallbackFunction handles a filter state event.
type EventCallbackFunction func(ctx context.Context, event Event) error

// RegisterSubscriptionOptions describes a subscription to register.
type RegisterSubscriptionOptions struct {
	Event       EventType
	Label       *string
	Description *string
	Callback    EventCallbackFunction
}

// SubscriptionInfo describes a registered subscription.
type SubscriptionInfo struct {
	Id          *string   `json:"id"`
	Event       EventType `json:"event"`
	Label       *string   `json:"label,omitempty"`
	Description *string   `json:"description,omitempty"`
	Unsubscribe func()    `json:"-"`
}

func newEvent(eventType EventType, tableID string) Event {
	return Event{
		Type:      eventType,
		TableID:   tableID,
		Timestamp: time.Now().UnixMilli(),
	}
}
