package domain

import "time"

// InboundMessage is a record consumed from the POS broker.
type InboundMessage struct {
	Topic     string
	Key       string
	Value     []byte
	Timestamp time.Time
}
