package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 5 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	// DefaultReadLimit 单条入站消息上限，需容纳携带全部外观帧的加入结果
	DefaultReadLimit = 32 << 20 // 32MB
)

// inboundFrame 读协程收到的一条原始文本消息
type inboundFrame struct {
	data []byte
}

// connClosed 连接读端结束（对端关闭或网络错误）
type connClosed struct {
	err error
}

// Conn 客户端 WebSocket 连接：发送队列 + 独立读写协程
type Conn struct {
	ws        *websocket.Conn
	send      chan []byte
	readLimit int64

	done      chan struct{}
	closeOnce sync.Once
	started   bool

	metrics *SessionMetrics
}

// Dial 连接服务端；readLimit <= 0 时使用 DefaultReadLimit
func Dial(ctx context.Context, rawURL string, readLimit int64) (*Conn, error) {
	ws, _, err := websocket.DefaultDialer.DialContext(ctx, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", rawURL, err)
	}
	return NewConn(ws, readLimit), nil
}

func NewConn(ws *websocket.Conn, readLimit int64) *Conn {
	if readLimit <= 0 {
		readLimit = DefaultReadLimit
	}
	return &Conn{
		ws:        ws,
		send:      make(chan []byte, 64),
		readLimit: readLimit,
		done:      make(chan struct{}),
	}
}

// Send 编码意图并压入发送队列（非阻塞，满则返回 ErrSendQueueFull）
func (c *Conn) Send(in Intent) error {
	b, err := EncodeIntent(in)
	if err != nil {
		c.countFailed()
		return err
	}
	select {
	case <-c.done:
		c.countFailed()
		return ErrSessionClosed
	default:
	}
	select {
	case c.send <- b:
		if c.metrics != nil {
			c.metrics.IncIntentSent()
		}
		return nil
	default:
		c.countFailed()
		return ErrSendQueueFull
	}
}

func (c *Conn) countFailed() {
	if c.metrics != nil {
		c.metrics.IncIntentFailed()
	}
}

// Start 启动读写协程；收到的消息与断开通知都通过 post 投递
func (c *Conn) Start(post func(any)) {
	c.started = true
	go c.writePump()
	go c.readPump(post)
}

// Close 关闭连接（可重复调用）；写协程负责发送关闭帧，WS 只允许一个写者
func (c *Conn) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		if !c.started {
			_ = c.ws.Close()
		}
	})
}

// writePump 独立协程，负责从 send 队列写出到 WS，并定期 ping
func (c *Conn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-c.done:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.ws.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			_ = c.ws.Close()
			return
		case msg := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, msg); err != nil {
				Log.Warnf("write: %v", err)
				_ = c.ws.Close()
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				_ = c.ws.Close()
				return
			}
		}
	}
}

// readPump 读取服务端推送，原样投递给会话逻辑线程解析
func (c *Conn) readPump(post func(any)) {
	c.ws.SetReadLimit(c.readLimit)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, payload, err := c.ws.ReadMessage()
		if err != nil {
			post(connClosed{err: err})
			return
		}
		_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
		post(inboundFrame{data: payload})
	}
}
