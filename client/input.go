package client

// IntentSink 出站意图的接收方（通常是网络连接）
type IntentSink interface {
	Send(Intent) error
}

// InputController 方向键状态机：按下立即发送 move，按住期间由计时器重复发送，
// 全部松开时停止计时器并发送一次 stop。
// 计时器运行当且仅当 held 非空。
type InputController struct {
	sink       IntentSink
	startTimer TimerFunc

	held     []KeyCode // 有序集合，按按下顺序
	stopTick func()
	gen      uint64
}

func NewInputController(sink IntentSink, startTimer TimerFunc) *InputController {
	return &InputController{sink: sink, startTimer: startTimer}
}

// KeyDown 处理按下；非方向键与已按住键的自动重复都是空操作
func (c *InputController) KeyDown(code KeyCode) {
	dir, ok := DirectionFor(code)
	if !ok || c.isHeld(code) {
		return
	}
	c.emit(Move{Direction: dir})
	c.held = append(c.held, code)
	c.ensureTimer()
}

// KeyUp 处理松开；集合变空时先停计时器再发送唯一一次 stop
func (c *InputController) KeyUp(code KeyCode) {
	idx := c.indexOf(code)
	if idx < 0 {
		return
	}
	c.held = append(c.held[:idx], c.held[idx+1:]...)
	if len(c.held) > 0 {
		return
	}
	c.haltTimer()
	c.emit(Stop{})
}

// Tick 计时器触发：为每个按住的方向重发 move（心跳式续发，不是新动作）
func (c *InputController) Tick(gen uint64) {
	if c.stopTick == nil || gen != c.gen {
		return
	}
	for _, code := range c.held {
		if dir, ok := DirectionFor(code); ok {
			c.emit(Move{Direction: dir})
		}
	}
}

// Reset 丢弃所有按键并停止计时器，不发送任何意图（会话拆除时使用）
func (c *InputController) Reset() {
	c.held = nil
	c.haltTimer()
}

// Held 当前按住的按键（副本）
func (c *InputController) Held() []KeyCode {
	out := make([]KeyCode, len(c.held))
	copy(out, c.held)
	return out
}

// TimerRunning 计时器是否处于运行状态
func (c *InputController) TimerRunning() bool { return c.stopTick != nil }

func (c *InputController) ensureTimer() {
	if c.stopTick != nil {
		return
	}
	c.gen++
	c.stopTick = c.startTimer(c.gen)
}

func (c *InputController) haltTimer() {
	if c.stopTick == nil {
		return
	}
	c.stopTick()
	c.stopTick = nil
}

func (c *InputController) emit(in Intent) {
	if err := c.sink.Send(in); err != nil {
		Log.Warnf("send %s intent: %v", in.Action(), err)
	}
}

func (c *InputController) isHeld(code KeyCode) bool { return c.indexOf(code) >= 0 }

func (c *InputController) indexOf(code KeyCode) int {
	for i, k := range c.held {
		if k == code {
			return i
		}
	}
	return -1
}
