package client

import (
	"fmt"
	"image"
)

type fakeSink struct {
	sent []Intent
	err  error
}

func (f *fakeSink) Send(in Intent) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, in)
	return nil
}

func (f *fakeSink) count(a Action) int {
	n := 0
	for _, in := range f.sent {
		if in.Action() == a {
			n++
		}
	}
	return n
}

func (f *fakeSink) reset() { f.sent = nil }

// fakeTimer 记录启动与停止，触发由测试手动调用 InputController.Tick
type fakeTimer struct {
	starts  int
	stops   int
	running bool
	gen     uint64
}

func (t *fakeTimer) start(gen uint64) func() {
	t.starts++
	t.running = true
	t.gen = gen
	return func() {
		t.stops++
		t.running = false
	}
}

type fakeImage struct {
	name string
	w, h int
}

func (f fakeImage) Bounds() image.Rectangle { return image.Rect(0, 0, f.w, f.h) }

type drawCall struct {
	kind string // "clear", "image", "text"
	img  Image
	src  Rect
	dst  Rect
	text string
	x, y float64
}

type recordingSurface struct {
	calls []drawCall
}

func (r *recordingSurface) Clear() {
	r.calls = append(r.calls[:0], drawCall{kind: "clear"})
}

func (r *recordingSurface) DrawImage(img Image, src, dst Rect) {
	r.calls = append(r.calls, drawCall{kind: "image", img: img, src: src, dst: dst})
}

func (r *recordingSurface) DrawText(s string, cx, bottom float64, _ TextStyle) {
	r.calls = append(r.calls, drawCall{kind: "text", text: s, x: cx, y: bottom})
}

func (r *recordingSurface) sprites() []drawCall {
	var out []drawCall
	for _, c := range r.calls {
		if c.kind == "image" {
			if _, ok := c.img.(fakeImage); ok {
				out = append(out, c)
			}
		}
	}
	return out
}

func (r *recordingSurface) labels() []string {
	var out []string
	for _, c := range r.calls {
		if c.kind == "text" {
			out = append(out, c.text)
		}
	}
	return out
}

// fakeDecode 将图片源原样作为名字，"bad" 开头的源解码失败
func fakeDecode(src string) (Image, error) {
	if len(src) >= 3 && src[:3] == "bad" {
		return nil, fmt.Errorf("cannot decode %q", src)
	}
	return fakeImage{name: src, w: 32, h: 32}, nil
}
