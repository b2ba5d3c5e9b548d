package realtime

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"
)

// PostEvent 帖子变更广播：Post 在 create/update 时是整个帖子，delete 时只有 id
type PostEvent struct {
	Action string `json:"action"` // create / update / delete
	Post   any    `json:"post"`
}

// Hub 管理所有在线连接，广播是 fire-and-forget：
// 没有 ack、没有重发，掉线期间的事件就是丢了
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	log        *zap.Logger
}

func NewHub(l *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		log:        l,
	}
}

// Run 单 goroutine 串行管理 clients，避免加锁
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				close(c.send)
				delete(h.clients, c)
			}
			return
		case c := <-h.register:
			h.clients[c] = true
		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
		case msg := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					// 写不动的慢客户端直接踢掉
					delete(h.clients, c)
					close(c.send)
				}
			}
		}
	}
}

// BroadcastPosts 持久化成功后调用；序列化失败只记日志
func (h *Hub) BroadcastPosts(ev PostEvent) {
	b, err := json.Marshal(ev)
	if err != nil {
		h.log.Error("marshal post event", zap.Error(err))
		return
	}
	select {
	case h.broadcast <- b:
	default:
		h.log.Warn("broadcast queue full, event dropped", zap.String("action", ev.Action))
	}
}
