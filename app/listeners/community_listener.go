package listeners

import (
	"context"
	"fmt"

	"market/pkg/event"
	"market/pkg/notify"
)

// CommunityListener 订阅社区互动事件，通知帖子作者
type CommunityListener struct {
	sink notify.Sink
}

// NewCommunityListener 创建社区事件订阅方
func NewCommunityListener(sink notify.Sink) *CommunityListener {
	return &CommunityListener{sink: sink}
}

// Attach 以 "community.#" 模式挂到总线上
func (l *CommunityListener) Attach(bus *event.Bus) {
	bus.Subscribe("community-notify", "community.#", l.Handle)
}

// Handle 处理一条社区事件
// 自己给自己的帖子点赞评论不发通知。
func (l *CommunityListener) Handle(ctx context.Context, e *event.Event) error {
	if e.Community == nil {
		return nil
	}

	c := e.Community
	if c.OperatorID == c.AuthorID {
		return nil
	}

	var title string
	switch c.Action {
	case "like":
		title = "你的帖子收到了新的点赞"
	case "comment":
		title = "你的帖子收到了新的评论"
	case "favorite":
		title = "你的帖子被收藏了"
	default:
		return nil
	}

	return l.sink.Send(ctx, &notify.Message{
		ReceiverID: c.AuthorID,
		Title:      title,
		Content:    fmt.Sprintf("帖子 %d 有新的互动", c.PostID),
		Type:       notify.TypeCommunity,
		BusinessID: fmt.Sprintf("%d", c.PostID),
	})
}
