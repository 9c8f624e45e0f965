package notification

import (
	"encoding/json"
	"fmt"
)

// EventReceived is the only event name subscribers can listen to.
const EventReceived = "notificationReceived"

// Payload keys, as seen by subscribers.
const (
	KeyID          = "id"
	KeyPackageName = "packageName"
	KeyTitle       = "title"
	KeyText        = "text"
	KeySubText     = "subText"
	KeyTimestamp   = "timestamp"
	KeyIsNew       = "isNew"
	KeyExtras      = "extras"
)

// RawEvent is a notification event as handed over by the device.
type RawEvent struct {
	Key          string           `json:"key"`
	PackageName  string           `json:"packageName"`
	Notification *RawNotification `json:"notification,omitempty"`
	PostTime     int64            `json:"postTime"`
	IsOngoing    bool             `json:"isOngoing"`
}

type RawNotification struct {
	Extras map[string]any `json:"extras"`
}

func DecodeRawEvent(b []byte) (RawEvent, error) {
	var ev RawEvent
	if err := json.Unmarshal(b, &ev); err != nil {
		return RawEvent{}, fmt.Errorf("decode raw event: %w", err)
	}
	return ev, nil
}

// Record is the normalized form of one captured notification. It is built
// per event and passed by value.
type Record struct {
	ID        string
	SourceApp string
	Title     string
	Body      string
	SubText   *string
	PostedAt  int64
	IsOngoing bool
	RawExtras *string
}

// Payload is the flat key/value form delivered to subscribers.
type Payload map[string]any

// Payload flattens the record. Absent optional fields map to nil.
// isNew carries the ongoing flag.
func (r Record) Payload() Payload {
	return Payload{
		KeyID:          r.ID,
		KeyPackageName: r.SourceApp,
		KeyTitle:       r.Title,
		KeyText:        r.Body,
		KeySubText:     optional(r.SubText),
		KeyTimestamp:   r.PostedAt,
		KeyIsNew:       r.IsOngoing,
		KeyExtras:      optional(r.RawExtras),
	}
}

func optional(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
