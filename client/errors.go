package client

import "errors"

var (
	// ErrMalformedEvent 入站消息缺字段或字段非法，整条丢弃
	ErrMalformedEvent = errors.New("malformed event")
	// ErrJoinRejected 服务端拒绝加入，本次会话终止
	ErrJoinRejected = errors.New("join rejected")
	// ErrAlreadyJoined 同一连接上重复的加入确认
	ErrAlreadyJoined = errors.New("already joined")
	// ErrDisconnected 连接已断开（不会重连）
	ErrDisconnected = errors.New("disconnected")
	// ErrSendQueueFull 发送队列已满，意图被丢弃
	ErrSendQueueFull = errors.New("send queue full")
	// ErrSessionClosed 会话已关闭，不再接受出站意图
	ErrSessionClosed = errors.New("session closed")
)
