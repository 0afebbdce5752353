package clients

import "encoding/json"

// jsonCodec marshals request and response payloads as plain JSON. The
// downstream contracts are status-and-message shaped, so no generated
// schema types are involved.
type jsonCodec struct{}

func (jsonCodec) Name() string { return "json" }

func (jsonCodec) Marshal(message any) ([]byte, error) {
	return json.Marshal(message)
}

func (jsonCodec) Unmarshal(data []byte, message any) error {
	return json.Unmarshal(data, message)
}
