package client

import (
	"sync/atomic"

	"github.com/dustin/go-humanize"
)

// SessionMetrics 记录会话运行期的关键指标（用于调试接口输出）
type SessionMetrics struct {
	EventsApplied int64 // 成功对账的入站事件数
	EventsDropped int64 // 因格式错误被丢弃的事件数
	EventsIgnored int64 // 未识别 action 被忽略的事件数
	IntentsSent   int64 // 已入队的出站意图数
	IntentsFailed int64 // 编码失败或队列满而丢弃的意图数
	SpritesLoaded int64
	SpritesFailed int64
	SpriteBytes   int64 // 已就绪精灵的解码后像素字节数（RGBA），缓存不淘汰，只增不减
	RenderCount   int64 // 绘制次数
	TotalRenderNs int64 // 绘制累计耗时（纳秒）
}

func (m *SessionMetrics) IncApplied() { atomic.AddInt64(&m.EventsApplied, 1) }
func (m *SessionMetrics) IncDropped() { atomic.AddInt64(&m.EventsDropped, 1) }
func (m *SessionMetrics) IncIgnored() { atomic.AddInt64(&m.EventsIgnored, 1) }
func (m *SessionMetrics) IncIntentSent() { atomic.AddInt64(&m.IntentsSent, 1) }
func (m *SessionMetrics) IncIntentFailed() { atomic.AddInt64(&m.IntentsFailed, 1) }
func (m *SessionMetrics) IncSpriteLoaded() { atomic.AddInt64(&m.SpritesLoaded, 1) }
func (m *SessionMetrics) IncSpriteFailed() { atomic.AddInt64(&m.SpritesFailed, 1) }
func (m *SessionMetrics) AddSpriteBytes(n int64) { atomic.AddInt64(&m.SpriteBytes, n) }
func (m *SessionMetrics) AddRender(ns int64) {
	atomic.AddInt64(&m.RenderCount, 1)
	atomic.AddInt64(&m.TotalRenderNs, ns)
}

// Snapshot 返回只读副本，便于 HTTP 输出
func (m *SessionMetrics) Snapshot() map[string]any {
	renders := atomic.LoadInt64(&m.RenderCount)
	total := atomic.LoadInt64(&m.TotalRenderNs)
	spriteBytes := atomic.LoadInt64(&m.SpriteBytes)
	var avgMs float64
	if renders > 0 {
		avgMs = float64(total) / float64(renders) / 1e6
	}
	return map[string]any{
		"events_applied": atomic.LoadInt64(&m.EventsApplied),
		"events_dropped": atomic.LoadInt64(&m.EventsDropped),
		"events_ignored": atomic.LoadInt64(&m.EventsIgnored),
		"intents_sent":   atomic.LoadInt64(&m.IntentsSent),
		"intents_failed": atomic.LoadInt64(&m.IntentsFailed),
		"sprites_loaded": atomic.LoadInt64(&m.SpritesLoaded),
		"sprites_failed": atomic.LoadInt64(&m.SpritesFailed),
		"sprite_bytes":   spriteBytes,
		"sprite_memory":  humanize.Bytes(uint64(spriteBytes)),
		"render_count":   renders,
		"avg_render_ms":  avgMs,
	}
}
