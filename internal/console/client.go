package console

import (
	"encoding/json"
	"time"

	ws "github.com/gorilla/websocket"
)

// Client is the typed-console side of the mirror.
type Client struct {
	conn *ws.Conn
	url  string
}

func Dial(url string) (*Client, error) {
	conn, _, err := ws.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, err
	}
	return &Client{conn: conn, url: url}, nil
}

func (c *Client) Close() error { return c.conn.Close() }

// Send delivers one typed utterance to the daemon.
func (c *Client) Send(text string) error {
	data, err := json.Marshal(Input{Text: text})
	if err != nil {
		return err
	}
	return c.conn.WriteMessage(ws.TextMessage, data)
}

// Read blocks for the next event, redialing on a closed connection.
func (c *Client) Read() (Event, error) {
	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if !isClosed(err) {
				return Event{}, err
			}
			c.redial()
			continue
		}
		var e Event
		if err := json.Unmarshal(msg, &e); err != nil {
			continue
		}
		return e, nil
	}
}

func (c *Client) redial() {
	for {
		conn, _, err := ws.DefaultDialer.Dial(c.url, nil)
		if err == nil {
			c.conn = conn
			return
		}
		time.Sleep(time.Second)
	}
}

func isClosed(err error) bool {
	return ws.IsCloseError(err,
		ws.CloseNormalClosure,
		ws.CloseGoingAway,
		ws.CloseAbnormalClosure)
}
