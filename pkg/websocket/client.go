package websocket

import (
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// Дашборд ничего не пишет в ленту, входящие кадры только служебные.
	maxInboundSize = 512
	sendBuffer     = 256
)

// Client - одно соединение дашборда. Создается только через Hub.Attach.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	userID uint64
}

// Attach регистрирует соединение пользователя в ленте и запускает его чтение и запись.
// Если hub уже остановлен, соединение закрывается и возвращается ErrHubClosed.
func (h *Hub) Attach(conn *websocket.Conn, userID uint64) (*Client, error) {
	client := &Client{
		hub:    h,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		userID: userID,
	}
	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return nil, ErrHubClosed
	}
	go client.writeLoop()
	go client.readLoop()
	return client, nil
}

func (c *Client) UserID() uint64 { return c.userID }

// readLoop держит дедлайн по pong и замечает закрытие соединения.
func (c *Client) readLoop() {
	defer func() {
		c.hub.leave(c)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxInboundSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error { return c.conn.SetReadDeadline(time.Now().Add(pongWait)) })
	for {
		kind, _, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warn("Лента: соединение оборвано", zap.Uint64("userID", c.userID), zap.Error(err))
			}
			return
		}
		if kind == websocket.TextMessage || kind == websocket.BinaryMessage {
			c.hub.logger.Debug("Лента: входящий кадр проигнорирован", zap.Uint64("userID", c.userID))
		}
	}
}

// writeLoop отдает кадры из send и пингует клиента. Закрытый send - сигнал hub-а отключиться.
func (c *Client) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case frame, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "лента остановлена"))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
