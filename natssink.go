package treelog

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/wayneeseguin/treelog/pkg/types"
)

// NATSSink publishes records as JSON messages on a NATS subject, for
// shipping logs off-host to a central collector.
type NATSSink struct {
	conn    *nats.Conn
	subject string
	owned   bool
}

// natsRecord is the wire shape of one published record.
type natsRecord struct {
	Time        time.Time              `json:"time"`
	Level       string                 `json:"level"`
	Name        string                 `json:"name,omitempty"`
	Message     string                 `json:"message"`
	Context     string                 `json:"context,omitempty"`
	Indentation int                    `json:"indentation,omitempty"`
	Fields      map[string]interface{} `json:"fields,omitempty"`
}

// NewNATSSink connects to the NATS server at url and publishes to subject.
func NewNATSSink(url, subject string, options ...nats.Option) (*NATSSink, error) {
	conn, err := nats.Connect(url, options...)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS: %w", err)
	}
	return &NATSSink{conn: conn, subject: subject, owned: true}, nil
}

// NewNATSSinkWithConn publishes to subject over an existing connection,
// which stays open after Close.
func NewNATSSinkWithConn(conn *nats.Conn, subject string) *NATSSink {
	return &NATSSink{conn: conn, subject: subject}
}

// Emit publishes one record.
func (s *NATSSink) Emit(record *types.Record) error {
	payload, err := json.Marshal(natsRecord{
		Time:        record.Time,
		Level:       record.Level.String(),
		Name:        record.Name,
		Message:     record.Message,
		Context:     record.Context,
		Indentation: record.Indentation,
		Fields:      record.Fields,
	})
	if err != nil {
		return fmt.Errorf("marshaling record: %w", err)
	}
	if err := s.conn.Publish(s.subject, payload); err != nil {
		return fmt.Errorf("publishing record: %w", err)
	}
	return nil
}

// Console reports that NATS is not the console.
func (s *NATSSink) Console() bool { return false }

// Close drains and closes the connection when the sink owns it.
func (s *NATSSink) Close() error {
	if !s.owned {
		return nil
	}
	if err := s.conn.Drain(); err != nil {
		s.conn.Close()
		return fmt.Errorf("draining NATS connection: %w", err)
	}
	return nil
}
