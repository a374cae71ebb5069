package kafkax

import (
	"strings"

	"github.com/segmentio/kafka-go"
)

// EventMeta identifies one booking event on the wire. EventID is the outbox
// row's uuid and is what inbox dedupe keys on; EventType doubles as the topic
// name.
type EventMeta struct {
	EventID   string
	EventType string
}

// ExtractEventMeta reads the event_id and event_type headers the outbox
// publisher sets. Messages from other producers fall back to the message key
// and topic, so dedupe still has something stable to key on.
func ExtractEventMeta(msg kafka.Message) EventMeta {
	meta := EventMeta{
		EventID:   headerValue(msg.Headers, "event_id"),
		EventType: headerValue(msg.Headers, "event_type"),
	}
	if meta.EventID == "" {
		meta.EventID = string(msg.Key)
	}
	if meta.EventType == "" {
		meta.EventType = msg.Topic
	}
	return meta
}

func headerValue(headers []kafka.Header, key string) string {
	for _, h := range headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

// SplitBrokers parses a comma-separated broker list from the environment.
func SplitBrokers(raw string) []string {
	var brokers []string
	for _, b := range strings.Split(raw, ",") {
		b = strings.TrimSpace(b)
		if b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}
