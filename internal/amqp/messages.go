package amqp

import (
	"encoding/json"
	"time"
)

// WriteMessage tells the sync worker a journaled write is ready. It carries
// only the journal id; the worker reads the payload from the journal so the
// queue never holds stale copies of the data.
type WriteMessage struct {
	WriteID   int64     `json:"writeId"`
	Timestamp time.Time `json:"timestamp"`
}

func NewWriteMessage(writeID int64) *WriteMessage {
	return &WriteMessage{
		WriteID:   writeID,
		Timestamp: time.Now(),
	}
}

func (m *WriteMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func WriteMessageFromJSON(data []byte) (*WriteMessage, error) {
	var msg WriteMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
