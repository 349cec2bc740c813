package client

import (
	"image"
	"testing"
)

type renderFixture struct {
	store   *Store
	camera  *Camera
	sprites *SpriteCache
	r       *Renderer
	bg      *image.RGBA
}

func newRenderFixture(world int) *renderFixture {
	f := &renderFixture{
		store:   NewStore(),
		camera:  NewCamera(800, 600),
		sprites: NewSpriteCache(),
		bg:      image.NewRGBA(image.Rect(0, 0, world, world)),
	}
	f.r = NewRenderer(f.store, f.camera, f.sprites, f.bg, 64)
	return f
}

// ready 预加载并立即完成所有帧
func (f *renderFixture) ready(id AvatarID, a Avatar) {
	for _, req := range f.sprites.Preload(id, a) {
		f.sprites.Complete(req.Key, fakeImage{name: req.Source, w: 32, h: 32}, nil)
	}
}

func TestRenderJoinScenario(t *testing.T) {
	f := newRenderFixture(2000)
	av := Avatar{Name: "a1", Frames: map[Facing][]string{FacingDown: {"img0"}}}
	_ = f.store.ApplyJoin("p1", map[PlayerID]Player{
		"p1": {ID: "p1", Username: "Summer", X: 100, Y: 100, Facing: FacingDown, AvatarID: "a1"},
	}, map[AvatarID]Avatar{"a1": av})
	f.ready("a1", av)
	f.camera.Recompute(f.store, 2000, 2000)

	surf := &recordingSurface{}
	f.r.Draw(surf)

	if surf.calls[0].kind != "clear" {
		t.Fatalf("first call should clear, got %#v", surf.calls[0])
	}
	bg := surf.calls[1]
	if bg.kind != "image" || bg.src != (Rect{X: 0, Y: 0, W: 800, H: 600}) || bg.dst != (Rect{W: 800, H: 600}) {
		t.Fatalf("unexpected background blit %#v", bg)
	}
	sprites := surf.sprites()
	if len(sprites) != 1 {
		t.Fatalf("expected 1 sprite, got %d", len(sprites))
	}
	// 相机钳制在 (0,0)，玩家屏幕位置 (100,100)，精灵以此为中心
	if want := (Rect{X: 68, Y: 68, W: 64, H: 64}); sprites[0].dst != want {
		t.Fatalf("sprite dst = %#v, want %#v", sprites[0].dst, want)
	}
	if sprites[0].img.(fakeImage).name != "img0" {
		t.Fatalf("wrong frame drawn: %#v", sprites[0].img)
	}
	labels := surf.labels()
	if len(labels) != 1 || labels[0] != "Summer" {
		t.Fatalf("labels = %v", labels)
	}
	last := surf.calls[len(surf.calls)-1]
	if last.x != 100 || last.y >= 68 {
		t.Fatalf("label should be centered above the sprite, got (%v,%v)", last.x, last.y)
	}
}

func TestRenderCentersLocalPlayerInLargeWorld(t *testing.T) {
	f := newRenderFixture(4000)
	av := Avatar{Frames: map[Facing][]string{FacingUp: {"u0"}}}
	_ = f.store.ApplyJoin("me", map[PlayerID]Player{
		"me": {ID: "me", Username: "me", X: 2000, Y: 1500, Facing: FacingUp, AvatarID: "a1"},
	}, map[AvatarID]Avatar{"a1": av})
	f.ready("a1", av)
	f.camera.Recompute(f.store, 4000, 4000)

	surf := &recordingSurface{}
	f.r.Draw(surf)
	sprites := surf.sprites()
	if len(sprites) != 1 {
		t.Fatalf("expected 1 sprite, got %d", len(sprites))
	}
	if want := (Rect{X: 400 - 32, Y: 300 - 32, W: 64, H: 64}); sprites[0].dst != want {
		t.Fatalf("sprite dst = %#v, want screen centre %#v", sprites[0].dst, want)
	}
	if bg := surf.calls[1]; bg.src.X != 1600 || bg.src.Y != 1200 {
		t.Fatalf("background not scrolled by camera: %#v", bg.src)
	}
}

func TestRenderCullsOffscreenPlayers(t *testing.T) {
	f := newRenderFixture(10000)
	av := Avatar{Frames: map[Facing][]string{FacingDown: {"d0"}}}
	_ = f.store.ApplyJoin("me", map[PlayerID]Player{
		"me":  {ID: "me", Username: "me", X: 400, Y: 300, Facing: FacingDown, AvatarID: "a1"},
		"far": {ID: "far", Username: "far", X: 9000, Y: 9000, Facing: FacingDown, AvatarID: "a1"},
	}, map[AvatarID]Avatar{"a1": av})
	f.ready("a1", av)
	f.camera.Recompute(f.store, 10000, 10000)

	surf := &recordingSurface{}
	f.r.Draw(surf)
	if len(surf.sprites()) != 1 {
		t.Fatalf("expected only the local player drawn, got %d sprites", len(surf.sprites()))
	}
	for _, l := range surf.labels() {
		if l == "far" {
			t.Fatalf("off-screen player was drawn")
		}
	}
}

func TestRenderSkipsUnresolvedSprites(t *testing.T) {
	f := newRenderFixture(2000)
	_ = f.store.ApplyJoin("me", map[PlayerID]Player{
		"me":      {ID: "me", Username: "me", X: 100, Y: 100, Facing: FacingDown, AvatarID: "a1"},
		"noavtr":  {ID: "noavtr", Username: "noavtr", X: 150, Y: 150, Facing: FacingDown, AvatarID: "missing"},
		"badfrm":  {ID: "badfrm", Username: "badfrm", X: 200, Y: 200, Facing: FacingDown, AvatarID: "a1", AnimationFrame: 5},
		"nofacng": {ID: "nofacng", Username: "nofacng", X: 250, Y: 250, Facing: FacingLeft, AvatarID: "a1"},
	}, map[AvatarID]Avatar{"a1": {Frames: map[Facing][]string{FacingDown: {"d0"}}}})
	f.ready("a1", Avatar{Frames: map[Facing][]string{FacingDown: {"d0"}}})

	surf := &recordingSurface{}
	f.r.Draw(surf)
	labels := surf.labels()
	if len(surf.sprites()) != 1 || len(labels) != 1 || labels[0] != "me" {
		t.Fatalf("expected only 'me' drawn, got sprites=%d labels=%v", len(surf.sprites()), labels)
	}
}

func TestRenderWithoutBackground(t *testing.T) {
	r := NewRenderer(NewStore(), NewCamera(800, 600), NewSpriteCache(), nil, 0)
	surf := &recordingSurface{}
	r.Draw(surf)
	if len(surf.calls) != 1 || surf.calls[0].kind != "clear" {
		t.Fatalf("expected only clear, got %#v", surf.calls)
	}
	if w, h := r.WorldSize(); w != 0 || h != 0 {
		t.Fatalf("WorldSize without background = %v,%v", w, h)
	}
}
