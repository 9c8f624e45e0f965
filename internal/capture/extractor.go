package capture

import (
	"encoding/json"
	"fmt"

	"github.com/NordCoder/NotifyCapture/internal/domain/notification"
)

// Extras keys read from the notification bag.
const (
	ExtraTitle   = "android.title"
	ExtraText    = "android.text"
	ExtraSubText = "android.subText"
)

// Extract builds a record from ev when it was posted by target. Events with
// no package name never match. Missing or non-string text extras fall back
// to "" (title, text) or nil (subText).
func Extract(target string, ev notification.RawEvent) (notification.Record, bool) {
	if ev.PackageName == "" || ev.PackageName != target {
		return notification.Record{}, false
	}

	var extras map[string]any
	if ev.Notification != nil {
		extras = ev.Notification.Extras
	}

	rec := notification.Record{
		ID:        ev.Key,
		SourceApp: ev.PackageName,
		Title:     stringExtra(extras, ExtraTitle),
		Body:      stringExtra(extras, ExtraText),
		PostedAt:  ev.PostTime,
		IsOngoing: ev.IsOngoing,
	}
	if s, ok := extras[ExtraSubText].(string); ok {
		rec.SubText = &s
	}
	if extras != nil {
		rec.RawExtras = serializeExtras(extras)
	}
	return rec, true
}

func stringExtra(extras map[string]any, key string) string {
	s, _ := extras[key].(string)
	return s
}

// serializeExtras renders the bag as a JSON object. encoding/json sorts map
// keys, so equal bags always produce the same string. Values JSON cannot
// carry (NaN, channels) fall back to the fmt rendering, which sorts keys too.
func serializeExtras(extras map[string]any) *string {
	var s string
	if b, err := json.Marshal(extras); err == nil {
		s = string(b)
	} else {
		s = fmt.Sprint(extras)
	}
	return &s
}
