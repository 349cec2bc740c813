package client

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// KeyEvent 键盘事件（由窗口层投递或直接交给 HandleKey）
type KeyEvent struct {
	Code KeyCode
	Down bool
}

// SessionOptions 会话构造参数
type SessionOptions struct {
	ViewportWidth  float64
	ViewportHeight float64
	SpriteSize     float64
	// Background 世界背景图，其像素尺寸即世界大小
	Background Image
	// Decode 精灵帧解码；为空时使用 DecodeImageSource
	Decode       DecodeFunc
	AssetWorkers int
	// Surface 不为空时，每次状态变化后立即在同一轮中重绘到该表面（无窗口模式）
	Surface Surface
	// Timer 重复计时器工厂；为空时使用 RepeatInterval 周期的真实计时器
	Timer TimerFunc
	// ReadLimit 单条入站消息字节上限；<= 0 时使用 DefaultReadLimit
	ReadLimit int64
}

// StateSummary 供调试接口读取的只读快照（逻辑线程写，HTTP 协程读）
type StateSummary struct {
	SessionID string   `json:"session"`
	SelfID    PlayerID `json:"selfId,omitempty"`
	Joined    bool     `json:"joined"`
	Players   int      `json:"players"`
	Sprites   int      `json:"sprites"`
	CameraX   float64  `json:"cameraX"`
	CameraY   float64  `json:"cameraY"`
	HeldKeys  int      `json:"heldKeys"`
}

// Session 一次连接的全部客户端状态：世界镜像、精灵缓存、相机、输入与渲染。
// 连接时创建，断开时拆除。除 inbox 外所有状态只在逻辑线程（Run 或 Pump 的调用方）上访问。
type Session struct {
	ID string

	sink IntentSink
	conn *Conn

	store    *Store
	sprites  *SpriteCache
	camera   *Camera
	input    *InputController
	renderer *Renderer
	loader   *AssetLoader
	surface  Surface

	metrics *SessionMetrics
	summary atomic.Pointer[StateSummary]
	log     *zap.SugaredLogger

	inbox     chan any
	done      chan struct{}
	closeOnce sync.Once
	err       error
}

// NewSession 创建会话；sink 为出站意图的去向
func NewSession(sink IntentSink, opts SessionOptions) *Session {
	id := uuid.NewString()
	s := &Session{
		ID:      id,
		sink:    sink,
		store:   NewStore(),
		sprites: NewSpriteCache(),
		camera:  NewCamera(opts.ViewportWidth, opts.ViewportHeight),
		surface: opts.Surface,
		metrics: &SessionMetrics{},
		log:     Log.With("session", id),
		inbox:   make(chan any, 256),
		done:    make(chan struct{}),
	}
	timer := opts.Timer
	if timer == nil {
		timer = NewRepeatTicker(RepeatInterval, s.post)
	}
	decode := opts.Decode
	if decode == nil {
		decode = func(src string) (Image, error) { return DecodeImageSource(src) }
	}
	s.input = NewInputController(sink, timer)
	s.renderer = NewRenderer(s.store, s.camera, s.sprites, opts.Background, opts.SpriteSize)
	s.renderer.metrics = s.metrics
	s.loader = NewAssetLoader(opts.AssetWorkers, decode, s.post)
	s.publishSummary()
	return s
}

// Connect 建立连接、启动读写协程并发送加入请求
func Connect(ctx context.Context, url, username string, opts SessionOptions) (*Session, error) {
	conn, err := Dial(ctx, url, opts.ReadLimit)
	if err != nil {
		return nil, err
	}
	s := NewSession(conn, opts)
	s.conn = conn
	conn.metrics = s.metrics
	conn.Start(s.post)
	if err := s.Join(username); err != nil {
		s.Close()
		return nil, err
	}
	s.log.Infof("connected to %s as %q", url, username)
	return s, nil
}

// Join 发送加入请求；加入结果以 join_game 事件异步到达
func (s *Session) Join(username string) error {
	return s.sink.Send(JoinGame{Username: username})
}

// Post 向逻辑线程投递一个事件；会话关闭后丢弃
func (s *Session) Post(ev any) { s.post(ev) }

func (s *Session) post(ev any) {
	select {
	case s.inbox <- ev:
	case <-s.done:
	}
}

// Run 无窗口模式的逻辑线程：逐个处理收件箱事件，直到 ctx 取消或会话终止
func (s *Session) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-s.done:
			return s.err
		case ev := <-s.inbox:
			s.handleSafe(ev)
		}
	}
}

// Pump 非阻塞地处理当前所有待处理事件（窗口模式下每帧调用）
func (s *Session) Pump() error {
	for {
		select {
		case <-s.done:
			return s.err
		case ev := <-s.inbox:
			s.handleSafe(ev)
		default:
			return nil
		}
	}
}

// HandleKey 在逻辑线程上直接处理一次按键
func (s *Session) HandleKey(code KeyCode, down bool) {
	if down {
		s.input.KeyDown(code)
	} else {
		s.input.KeyUp(code)
	}
	s.publishSummary()
}

// Draw 将当前状态绘制到 dst
func (s *Session) Draw(dst Surface) {
	s.renderer.Draw(dst)
}

// Close 拆除会话：停止重复计时器（不发送 stop）、关闭连接；可重复调用。
// 会操作输入状态，只能在逻辑线程上调用（或在 Run/Pump 已经返回之后）。
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.input.Reset()
		close(s.done)
		if s.conn != nil {
			s.conn.Close()
		}
		s.log.Info("session closed")
	})
}

// Done 会话终止时关闭
func (s *Session) Done() <-chan struct{} { return s.done }

// Err 终止原因（加入被拒或连接断开）；正常关闭为 nil
func (s *Session) Err() error { return s.err }

func (s *Session) Store() *Store { return s.store }
func (s *Session) Camera() *Camera { return s.camera }
func (s *Session) Sprites() *SpriteCache { return s.sprites }
func (s *Session) Input() *InputController { return s.input }
func (s *Session) Metrics() *SessionMetrics { return s.metrics }
func (s *Session) Summary() StateSummary { return *s.summary.Load() }

// handleSafe 事件处理边界：任何单个事件的失败都不能中断后续事件
func (s *Session) handleSafe(ev any) {
	defer func() {
		if r := recover(); r != nil {
			s.metrics.IncDropped()
			s.log.Errorf("handler panic on %T: %v", ev, r)
		}
	}()
	s.handle(ev)
}

func (s *Session) handle(ev any) {
	switch e := ev.(type) {
	case inboundFrame:
		s.handleFrame(e.data)
	case assetLoaded:
		if s.sprites.Complete(e.key, e.img, e.err) {
			b := e.img.Bounds()
			s.metrics.IncSpriteLoaded()
			s.metrics.AddSpriteBytes(int64(b.Dx()) * int64(b.Dy()) * 4)
			s.changed()
		} else if e.err != nil || e.img == nil {
			s.metrics.IncSpriteFailed()
		}
	case repeatTick:
		s.input.Tick(e.gen)
	case KeyEvent:
		s.HandleKey(e.Code, e.Down)
	case connClosed:
		s.log.Warnf("connection closed: %v", e.err)
		s.fail(fmt.Errorf("%w: %v", ErrDisconnected, e.err))
	default:
		s.log.Debugf("ignoring %T", ev)
	}
}

func (s *Session) handleFrame(data []byte) {
	ev, err := DecodeEvent(data)
	if err != nil {
		s.metrics.IncDropped()
		s.log.Warnf("drop inbound frame: %v", err)
		return
	}
	s.apply(ev)
}

// apply 对账一个已校验的事件；每个事件要么整体生效，要么完全不生效
func (s *Session) apply(ev Event) {
	switch e := ev.(type) {
	case JoinResult:
		if !e.Success {
			s.log.Errorf("join rejected: %s", e.Error)
			s.fail(fmt.Errorf("%w: %s", ErrJoinRejected, e.Error))
			return
		}
		if err := s.store.ApplyJoin(e.PlayerID, e.Players, e.Avatars); err != nil {
			s.metrics.IncDropped()
			s.log.Warnf("drop %s: %v", e.Action(), err)
			return
		}
		s.log.Infof("joined as %s, %d players", e.PlayerID, s.store.Len())
		s.store.Avatars(s.preload)
	case PlayersMoved:
		s.store.ApplyMove(e.Players)
	case PlayerJoined:
		s.store.ApplyPlayerJoined(e.Player, e.Avatar)
		s.preload(e.Player.AvatarID, e.Avatar)
		s.log.Debugf("player %s (%s) joined", e.Player.ID, e.Player.Username)
	case PlayerLeft:
		if !s.store.ApplyPlayerLeft(e.PlayerID) {
			s.log.Debugf("player_left for unknown player %s", e.PlayerID)
		}
	default:
		s.metrics.IncIgnored()
		s.log.Debugf("ignoring action %q", ev.Action())
		return
	}
	s.metrics.IncApplied()
	s.changed()
}

func (s *Session) preload(id AvatarID, a Avatar) {
	s.loader.Load(s.sprites.Preload(id, a))
}

// changed 状态变化后：重算相机，并在无窗口模式下立即重绘
func (s *Session) changed() {
	worldW, worldH := s.renderer.WorldSize()
	s.camera.Recompute(s.store, worldW, worldH)
	if s.surface != nil {
		s.renderer.Draw(s.surface)
	}
	s.publishSummary()
}

func (s *Session) fail(err error) {
	if s.err == nil {
		s.err = err
	}
	s.Close()
}

func (s *Session) publishSummary() {
	self, joined := s.store.SelfID()
	s.summary.Store(&StateSummary{
		SessionID: s.ID,
		SelfID:    self,
		Joined:    joined,
		Players:   s.store.Len(),
		Sprites:   s.sprites.Len(),
		CameraX:   s.camera.X,
		CameraY:   s.camera.Y,
		HeldKeys:  len(s.input.held),
	})
}
