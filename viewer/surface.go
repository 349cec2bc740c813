package viewer

import (
	"bytes"
	"image"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	text "github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/gofont/goregular"

	"worldview/client"
)

// Surface 基于 ebiten 屏幕图像的绘制面；screen 在每帧 Draw 时设置
type Surface struct {
	screen *ebiten.Image
	source *text.GoTextFaceSource
	faces  map[float64]*text.GoTextFace
}

func NewSurface() (*Surface, error) {
	src, err := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
	if err != nil {
		return nil, err
	}
	return &Surface{source: src, faces: make(map[float64]*text.GoTextFace)}, nil
}

func (s *Surface) Clear() {
	s.screen.Clear()
}

// DrawImage 将 src 区域缩放到 dst；src 超出图片边界的部分裁掉并相应平移
func (s *Surface) DrawImage(img client.Image, src, dst client.Rect) {
	eimg, ok := img.(*ebiten.Image)
	if !ok || src.W <= 0 || src.H <= 0 {
		return
	}
	want := image.Rect(int(math.Floor(src.X)), int(math.Floor(src.Y)),
		int(math.Floor(src.X+src.W)), int(math.Floor(src.Y+src.H)))
	clipped := want.Intersect(eimg.Bounds())
	if clipped.Empty() {
		return
	}
	sx := dst.W / src.W
	sy := dst.H / src.H
	sub := eimg.SubImage(clipped).(*ebiten.Image)

	op := &ebiten.DrawImageOptions{Filter: ebiten.FilterNearest}
	op.GeoM.Scale(sx, sy)
	op.GeoM.Translate(
		dst.X+float64(clipped.Min.X-want.Min.X)*sx,
		dst.Y+float64(clipped.Min.Y-want.Min.Y)*sy)
	s.screen.DrawImage(sub, op)
}

// DrawText 底边居中；先按描边宽度向八个方向绘制描边色，再绘制填充色
func (s *Surface) DrawText(str string, cx, bottom float64, style client.TextStyle) {
	face := s.face(style.Size)
	draw := func(dx, dy float64, c color.Color) {
		op := &text.DrawOptions{}
		op.PrimaryAlign = text.AlignCenter
		op.SecondaryAlign = text.AlignEnd
		op.GeoM.Translate(cx+dx, bottom+dy)
		op.ColorScale.ScaleWithColor(c)
		text.Draw(s.screen, str, face, op)
	}
	if style.Outline != nil && style.OutlineWidth > 0 {
		o := style.OutlineWidth
		for _, off := range [][2]float64{{-o, -o}, {0, -o}, {o, -o}, {-o, 0}, {o, 0}, {-o, o}, {0, o}, {o, o}} {
			draw(off[0], off[1], style.Outline)
		}
	}
	if style.Fill != nil {
		draw(0, 0, style.Fill)
	}
}

func (s *Surface) face(size float64) *text.GoTextFace {
	if size <= 0 {
		size = client.DefaultLabelStyle.Size
	}
	if f, ok := s.faces[size]; ok {
		return f
	}
	f := &text.GoTextFace{Source: s.source, Size: size}
	s.faces[size] = f
	return f
}
