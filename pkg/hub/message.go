// Package hub is a goroutine-safe websocket broadcast fan-out. The
// monitor server uses one hub per stream: alert decisions as JSON and
// annotated preview frames as binary JPEG.
package hub

// MessageType indicates the websocket message format.
type MessageType int

const (
	// JSONMessage is a JSON-encoded message.
	JSONMessage MessageType = iota
	// BinaryMessage is raw binary data such as JPEG frames.
	BinaryMessage
)

// Message is one payload broadcast to every connected client.
type Message struct {
	Type MessageType
	Data []byte
}
