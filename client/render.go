package client

import (
	"image/color"
	"time"
)

// Rect 浮点矩形
type Rect struct {
	X, Y, W, H float64
}

// TextStyle 名字标签样式：先描边再填充，保证在任意背景上可读
type TextStyle struct {
	Size         float64
	Fill         color.Color
	Outline      color.Color
	OutlineWidth float64
}

// Surface 不透明的 2D 绘制面（ebiten 窗口或离屏栅格）
type Surface interface {
	Clear()
	// DrawImage 将 img 的 src 区域绘制到 dst 区域
	DrawImage(img Image, src, dst Rect)
	// DrawText 以 (cx, bottom) 为底边中点绘制文本
	DrawText(s string, cx, bottom float64, style TextStyle)
}

const (
	DefaultSpriteSize = 64
	labelGap          = 4
)

// DefaultLabelStyle 白字黑边
var DefaultLabelStyle = TextStyle{
	Size:         14,
	Fill:         color.White,
	Outline:      color.Black,
	OutlineWidth: 2,
}

// Renderer 每次绘制：清屏 → 背景按相机偏移滚动 → 逐个可见玩家绘制精灵与名字
type Renderer struct {
	store   *Store
	camera  *Camera
	sprites *SpriteCache

	background Image
	spriteSize float64
	labelStyle TextStyle

	metrics *SessionMetrics
}

func NewRenderer(store *Store, camera *Camera, sprites *SpriteCache, background Image, spriteSize float64) *Renderer {
	if spriteSize <= 0 {
		spriteSize = DefaultSpriteSize
	}
	return &Renderer{
		store:      store,
		camera:     camera,
		sprites:    sprites,
		background: background,
		spriteSize: spriteSize,
		labelStyle: DefaultLabelStyle,
	}
}

// WorldSize 背景图的像素尺寸即世界大小；没有背景时为 0
func (r *Renderer) WorldSize() (float64, float64) {
	if r.background == nil {
		return 0, 0
	}
	b := r.background.Bounds()
	return float64(b.Dx()), float64(b.Dy())
}

func (r *Renderer) Draw(dst Surface) {
	start := time.Now()
	dst.Clear()

	vw, vh := r.camera.ViewportW, r.camera.ViewportH
	if r.background != nil {
		dst.DrawImage(r.background,
			Rect{X: r.camera.X, Y: r.camera.Y, W: vw, H: vh},
			Rect{W: vw, H: vh})
	}

	half := r.spriteSize / 2
	r.store.Each(func(p Player) {
		sx, sy := r.camera.WorldToScreen(p.X, p.Y)
		if !r.camera.IsVisible(sx-half, sy-half, r.spriteSize, r.spriteSize) {
			return
		}
		img, ok := r.sprites.Resolve(p.AvatarID, p.Facing, p.AnimationFrame)
		if !ok {
			return
		}
		b := img.Bounds()
		dst.DrawImage(img,
			Rect{X: float64(b.Min.X), Y: float64(b.Min.Y), W: float64(b.Dx()), H: float64(b.Dy())},
			Rect{X: sx - half, Y: sy - half, W: r.spriteSize, H: r.spriteSize})
		dst.DrawText(p.Username, sx, sy-half-labelGap, r.labelStyle)
	})

	if r.metrics != nil {
		r.metrics.AddRender(time.Since(start).Nanoseconds())
	}
}
