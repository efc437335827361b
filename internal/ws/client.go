package ws

import (
	"log"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 30 * time.Second
	pingPeriod = 25 * time.Second
)

type Client struct {
	PlayerID string
	Name     string
	Conn     *websocket.Conn
	Send     chan []byte

	Hub   *Hub
	Ready chan struct{}
	Done  chan struct{}
}

func NewClient(playerID, name string, conn *websocket.Conn, hub *Hub) *Client {
	return &Client{
		PlayerID: playerID,
		Name:     name,
		Conn:     conn,
		Send:     make(chan []byte, 256),
		Hub:      hub,
		Ready:    make(chan struct{}),
		Done:     make(chan struct{}),
	}
}

func (c *Client) Run() {
	// запускаем writer первым, чтобы регистрация могла сразу слать состояние
	go c.writePump()
	close(c.Ready)

	// явный хендшейк готовности, чтобы тесты/клиенты могли его дождаться
	readyMsg := []byte(`{"type":"ready"}`)
	select {
	case c.Send <- readyMsg:
		log.Printf("Client.Run: игрок=%s сообщение о готовности поставлено в очередь", c.PlayerID)
	case <-time.After(500 * time.Millisecond):
		log.Printf("Client.Run: таймаут постановки в очередь ready для игрока=%s", c.PlayerID)
	}

	// регистрация синхронная: реконнект в лобби/сессию отрабатывает
	// до первого прочитанного сообщения
	c.Hub.Register(c)

	c.readPump()
	<-c.Done
}

// read
func (c *Client) readPump() {
	defer func() {
		c.disconnect()
		close(c.Done)
	}()

	c.Conn.SetReadLimit(4096)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, msg, err := c.Conn.ReadMessage()
		if err != nil {
			log.Println("ошибка чтения:", err)
			break
		}
		log.Printf("Client.readPump: игрок=%s получил %d байт: %s", c.PlayerID, len(msg), string(msg))
		c.Hub.HandleMessage(c, msg)
	}
}

// write
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				log.Printf("Client.writePump: игрок=%s ошибка записи: %v", c.PlayerID, err)
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// disconnect
func (c *Client) disconnect() {
	c.Hub.OnDisconnect(c)
	_ = c.Conn.Close()
}
