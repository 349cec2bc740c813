package client

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"
)

func knight() Avatar {
	return Avatar{Name: "knight", Frames: map[Facing][]string{
		FacingDown: {"d0", "d1"},
		FacingUp:   {"u0"},
	}}
}

func TestPreloadIsIdempotent(t *testing.T) {
	c := NewSpriteCache()
	first := c.Preload("a1", knight())
	if len(first) != 3 {
		t.Fatalf("expected 3 load requests, got %d", len(first))
	}
	second := c.Preload("a1", knight())
	if len(second) != 0 {
		t.Fatalf("re-preload requested %d frames again", len(second))
	}
	if c.Len() != 3 {
		t.Fatalf("expected 3 entries, got %d", c.Len())
	}
}

func TestResolveOnlyReadyFrames(t *testing.T) {
	c := NewSpriteCache()
	reqs := c.Preload("a1", knight())

	if _, ok := c.Resolve("a1", FacingDown, 0); ok {
		t.Fatalf("pending frame resolved")
	}
	for _, r := range reqs {
		var err error
		var img Image = fakeImage{name: r.Source, w: 8, h: 8}
		if r.Source == "d1" {
			err, img = errors.New("boom"), nil
		}
		c.Complete(r.Key, img, err)
	}

	img, ok := c.Resolve("a1", FacingDown, 0)
	if !ok || img.(fakeImage).name != "d0" {
		t.Fatalf("Resolve(d0) = %#v, %v", img, ok)
	}
	if _, ok := c.Resolve("a1", FacingDown, 1); ok {
		t.Fatalf("failed frame resolved")
	}
	if _, ok := c.Resolve("a1", FacingLeft, 0); ok {
		t.Fatalf("never-preloaded frame resolved")
	}
	if reqs := c.Preload("a1", knight()); len(reqs) != 0 {
		t.Fatalf("failed frame must not be retried, got %d requests", len(reqs))
	}
}

func TestCompleteIgnoresUnknownAndRepeatedKeys(t *testing.T) {
	c := NewSpriteCache()
	if c.Complete(SpriteKey{Avatar: "x", Facing: FacingUp}, fakeImage{}, nil) {
		t.Fatalf("completion for an unknown key reported drawable")
	}
	reqs := c.Preload("a1", Avatar{Frames: map[Facing][]string{FacingUp: {"u0"}}})
	if !c.Complete(reqs[0].Key, fakeImage{name: "first"}, nil) {
		t.Fatalf("first completion should be drawable")
	}
	if c.Complete(reqs[0].Key, fakeImage{name: "second"}, nil) {
		t.Fatalf("second completion must not replace the entry")
	}
	img, _ := c.Resolve("a1", FacingUp, 0)
	if img.(fakeImage).name != "first" {
		t.Fatalf("entry replaced: %#v", img)
	}
}

func TestAssetLoaderPostsCompletions(t *testing.T) {
	got := make(chan any, 8)
	l := NewAssetLoader(2, fakeDecode, func(ev any) { got <- ev })
	l.Load([]LoadRequest{
		{Key: SpriteKey{Avatar: "a1", Facing: FacingUp, Frame: 0}, Source: "u0"},
		{Key: SpriteKey{Avatar: "a1", Facing: FacingUp, Frame: 1}, Source: "bad-frame"},
	})

	results := map[int]assetLoaded{}
	timeout := time.After(time.Second)
	for len(results) < 2 {
		select {
		case ev := <-got:
			al := ev.(assetLoaded)
			results[al.key.Frame] = al
		case <-timeout:
			t.Fatalf("timed out waiting for asset completions, have %d", len(results))
		}
	}
	if results[0].err != nil || results[0].img == nil {
		t.Fatalf("frame 0 should decode: %#v", results[0])
	}
	if results[1].err == nil {
		t.Fatalf("frame 1 should fail")
	}
	l.Wait()
}

func TestDecodeImageSourceDataURI(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 3, 2))
	src.Set(1, 1, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, src); err != nil {
		t.Fatalf("encode: %v", err)
	}
	uri := "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())

	img, err := DecodeImageSource(uri)
	if err != nil {
		t.Fatalf("DecodeImageSource: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 3 || b.Dy() != 2 {
		t.Fatalf("bounds = %v", b)
	}

	for _, bad := range []string{"", "data:image/png;base64", "data:image/png;base64,!!!", "data:text/plain,hello"} {
		if _, err := DecodeImageSource(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}
