package websocket

import (
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeDeadline = 10 * time.Second
	// Clients are expected to ping well within this window; an idle
	// connection past it is treated as gone.
	readDeadline = 5 * time.Minute
)

// Send writes an event payload with a bounded write deadline.
func Send(conn *websocket.Conn, v interface{}) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeDeadline)); err != nil {
		return err
	}
	return conn.WriteJSON(v)
}

// SendError reports a stream-level error to the client.
func SendError(conn *websocket.Conn, msg string) error {
	return Send(conn, ErrorResponse{Event: EventError, Error: msg})
}

// Receive decodes the next client message, refreshing the idle deadline.
func Receive(conn *websocket.Conn, v interface{}) error {
	if err := conn.SetReadDeadline(time.Now().Add(readDeadline)); err != nil {
		return err
	}
	return conn.ReadJSON(v)
}
