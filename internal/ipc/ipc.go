// Package ipc is the local control channel: friday-ctl talks to the
// daemon over a unix socket with one JSON message per connection.
package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"strings"
)

const DefaultSocketPath = "/tmp/friday.sock"

// ControlMessage is one command. Text carries the payload for commands
// that need one, like "say".
type ControlMessage struct {
	Cmd  string `json:"cmd"`
	Text string `json:"text,omitempty"`
}

// StartServer listens on socketPath and calls handler for every decoded
// message. The handler may reply by returning a string; empty means no
// response body.
func StartServer(socketPath string, handler func(ControlMessage) string) error {
	if socketPath == "" {
		socketPath = DefaultSocketPath
	}
	os.Remove(socketPath)

	ln, err := net.Listen("unix", socketPath)
	if err != nil {
		return fmt.Errorf("ipc listen: %w", err)
	}

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				continue
			}
			go handleConn(conn, handler)
		}
	}()
	return nil
}

func handleConn(conn net.Conn, handler func(ControlMessage) string) {
	defer conn.Close()

	var msg ControlMessage
	if err := json.NewDecoder(conn).Decode(&msg); err != nil {
		return
	}
	if reply := handler(msg); reply != "" {
		fmt.Fprintln(conn, reply)
	}
}

// Send delivers one command and returns the daemon's reply line, if
// any.
func Send(socketPath string, msg ControlMessage) (string, error) {
	if socketPath == "" {
		socketPath = DefaultSocketPath
	}
	conn, err := net.Dial("unix", socketPath)
	if err != nil {
		return "", err
	}
	defer conn.Close()

	if err := json.NewEncoder(conn).Encode(msg); err != nil {
		return "", err
	}

	reply, _ := bufio.NewReader(conn).ReadString('\n')
	return strings.TrimSpace(reply), nil
}
