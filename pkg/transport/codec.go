package transport

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/golang/snappy"
)

// Wire topics. Every frame is "<topic>:" followed by the body.
const (
	TopicInstructions = "instructions"
	TopicSnapshot     = "snapshot"
	TopicPosition     = "position"
	TopicExecution    = "execution"
	TopicExecute      = "execute"
	TopicResult       = "result"
)

// snappyMarker starts a compressed body. It can never begin a JSON text.
const snappyMarker byte = 0xff

// ErrUnexpectedTopic is returned when a frame carries another topic.
var ErrUnexpectedTopic = errors.New("transport: unexpected topic")

// Codec turns values into topic-prefixed frames of JSON, optionally
// snappy-compressed. Decoding accepts both forms regardless of Compress.
type Codec struct {
	Compress bool
}

// Encode marshals v into a frame for topic.
func (c Codec) Encode(topic string, v any) ([]byte, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", topic, err)
	}

	frame := make([]byte, 0, len(topic)+2+len(body))
	frame = append(frame, topic...)
	frame = append(frame, ':')
	if c.Compress {
		frame = append(frame, snappyMarker)
		return append(frame, snappy.Encode(nil, body)...), nil
	}
	return append(frame, body...), nil
}

// Split separates a frame into its topic and raw JSON body, decompressing
// if needed.
func (c Codec) Split(frame []byte) (string, json.RawMessage, error) {
	i := bytes.IndexByte(frame, ':')
	if i <= 0 {
		return "", nil, fmt.Errorf("decode frame: missing topic prefix")
	}
	topic, body := string(frame[:i]), frame[i+1:]

	if len(body) > 0 && body[0] == snappyMarker {
		plain, err := snappy.Decode(nil, body[1:])
		if err != nil {
			return topic, nil, fmt.Errorf("decode %s: %w", topic, err)
		}
		body = plain
	}
	return topic, json.RawMessage(body), nil
}

// Decode reads a frame that must carry topic into v.
func (c Codec) Decode(topic string, frame []byte, v any) error {
	got, body, err := c.Split(frame)
	if err != nil {
		return err
	}
	if got != topic {
		return fmt.Errorf("%w: got %q, want %q", ErrUnexpectedTopic, got, topic)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decode %s: %w", topic, err)
	}
	return nil
}

// Prefix returns the subscription filter for topic.
func Prefix(topic string) []byte {
	return []byte(topic + ":")
}
