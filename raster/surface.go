// Package raster 提供基于 image.RGBA 的离屏绘制面，用于无窗口模式与快照输出。
package raster

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"worldview/client"
)

// Surface 实现 client.Surface；只绘制 image.Image 类型的句柄，其余忽略
type Surface struct {
	img   *image.RGBA
	clear color.Color

	font  *opentype.Font
	faces map[float64]font.Face
}

func New(w, h int) *Surface {
	s := &Surface{
		img:   image.NewRGBA(image.Rect(0, 0, w, h)),
		clear: color.Black,
		faces: make(map[float64]font.Face),
	}
	if f, err := opentype.Parse(goregular.TTF); err == nil {
		s.font = f
	} else {
		client.Log.Warnf("raster: parse goregular: %v, falling back to basicfont", err)
	}
	return s
}

// Image 当前帧
func (s *Surface) Image() *image.RGBA { return s.img }

func (s *Surface) Clear() {
	draw.Draw(s.img, s.img.Bounds(), image.NewUniform(s.clear), image.Point{}, draw.Src)
}

func (s *Surface) DrawImage(img client.Image, src, dst client.Rect) {
	m, ok := img.(image.Image)
	if !ok {
		return
	}
	sr := toRect(src)
	dr := toRect(dst)
	if sr.Dx() == dr.Dx() && sr.Dy() == dr.Dy() {
		// 等尺寸：纯平移拷贝，源区域超出图片的部分保持清屏色
		draw.Copy(s.img, dr.Min, m, sr, draw.Over, nil)
		return
	}
	draw.NearestNeighbor.Scale(s.img, dr, m, sr, draw.Over, nil)
}

func (s *Surface) DrawText(text string, cx, bottom float64, style client.TextStyle) {
	face := s.face(style.Size)
	d := &font.Drawer{Dst: s.img, Face: face}
	width := d.MeasureString(text)
	x := fixed.Int26_6(math.Round(cx*64)) - width/2
	y := fixed.Int26_6(math.Round(bottom*64)) - face.Metrics().Descent

	if style.Outline != nil && style.OutlineWidth > 0 {
		d.Src = image.NewUniform(style.Outline)
		o := fixed.Int26_6(math.Round(style.OutlineWidth * 64))
		for _, off := range [][2]fixed.Int26_6{
			{-o, -o}, {0, -o}, {o, -o},
			{-o, 0}, {o, 0},
			{-o, o}, {0, o}, {o, o},
		} {
			d.Dot = fixed.Point26_6{X: x + off[0], Y: y + off[1]}
			d.DrawString(text)
		}
	}
	fill := style.Fill
	if fill == nil {
		fill = color.White
	}
	d.Src = image.NewUniform(fill)
	d.Dot = fixed.Point26_6{X: x, Y: y}
	d.DrawString(text)
}

func (s *Surface) face(size float64) font.Face {
	if s.font == nil || size <= 0 {
		return basicfont.Face7x13
	}
	if f, ok := s.faces[size]; ok {
		return f
	}
	f, err := opentype.NewFace(s.font, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		client.Log.Warnf("raster: face size %.1f: %v", size, err)
		return basicfont.Face7x13
	}
	s.faces[size] = f
	return f
}

// WritePNG 将当前帧写为 PNG 文件
func (s *Surface) WritePNG(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, s.img); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

func toRect(r client.Rect) image.Rectangle {
	x0 := int(math.Floor(r.X))
	y0 := int(math.Floor(r.Y))
	return image.Rect(x0, y0, x0+int(math.Round(r.W)), y0+int(math.Round(r.H)))
}
