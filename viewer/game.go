// Package viewer 是 ebiten 窗口层：轮询键盘、驱动会话逻辑线程、把渲染结果画到屏幕。
package viewer

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"worldview/client"
)

// keyCodes ebiten 按键到逻辑按键编码的映射
var keyCodes = map[ebiten.Key]client.KeyCode{
	ebiten.KeyArrowUp:    client.KeyArrowUp,
	ebiten.KeyArrowDown:  client.KeyArrowDown,
	ebiten.KeyArrowLeft:  client.KeyArrowLeft,
	ebiten.KeyArrowRight: client.KeyArrowRight,
}

// Game 实现 ebiten.Game。Update 与 Draw 由 ebiten 在同一循环中调用，
// 即会话的单一逻辑线程。
type Game struct {
	session *client.Session
	surface *Surface
	width   int
	height  int

	pressed  []ebiten.Key
	released []ebiten.Key
}

func NewGame(s *client.Session, width, height int) (*Game, error) {
	surface, err := NewSurface()
	if err != nil {
		return nil, err
	}
	return &Game{session: s, surface: surface, width: width, height: height}, nil
}

func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	g.pressed = inpututil.AppendJustPressedKeys(g.pressed[:0])
	for _, k := range g.pressed {
		if code, ok := keyCodes[k]; ok {
			g.session.HandleKey(code, true)
		}
	}
	g.released = inpututil.AppendJustReleasedKeys(g.released[:0])
	for _, k := range g.released {
		if code, ok := keyCodes[k]; ok {
			g.session.HandleKey(code, false)
		}
	}

	if err := g.session.Pump(); err != nil {
		return err
	}
	select {
	case <-g.session.Done():
		return ebiten.Termination
	default:
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.surface.screen = screen
	g.session.Draw(g.surface)
}

func (g *Game) Layout(_, _ int) (int, int) {
	return g.width, g.height
}

// Run 打开窗口并阻塞直到关闭
func Run(s *client.Session, title string, width, height int) error {
	g, err := NewGame(s, width, height)
	if err != nil {
		return err
	}
	ebiten.SetWindowSize(width, height)
	ebiten.SetWindowTitle(title)
	ebiten.SetTPS(60)
	return ebiten.RunGame(g)
}
