package client

import "image"

// Image 可绘制的图片句柄；*ebiten.Image 与 image.Image 均满足
type Image interface {
	Bounds() image.Rectangle
}

// SpriteKey 精灵缓存键
type SpriteKey struct {
	Avatar AvatarID
	Facing Facing
	Frame  int
}

type spriteState uint8

const (
	spritePending spriteState = iota
	spriteReady
	spriteFailed
)

type spriteEntry struct {
	state spriteState
	img   Image
}

// LoadRequest 需要解码的一帧
type LoadRequest struct {
	Key    SpriteKey
	Source string
}

// SpriteCache 惰性填充的精灵缓存。
// 每个键最多创建一次，进程生命周期内不淘汰；加载失败的键保持失败，不重试。
type SpriteCache struct {
	entries map[SpriteKey]*spriteEntry
}

func NewSpriteCache() *SpriteCache {
	return &SpriteCache{entries: make(map[SpriteKey]*spriteEntry)}
}

// Preload 为外观定义中尚未缓存的每一帧创建待加载条目，并返回对应的加载请求。
// 重复预加载相同数据不会产生新的请求。
func (c *SpriteCache) Preload(id AvatarID, a Avatar) []LoadRequest {
	var reqs []LoadRequest
	for _, f := range []Facing{FacingUp, FacingDown, FacingLeft, FacingRight} {
		for i, src := range a.Frames[f] {
			key := SpriteKey{Avatar: id, Facing: f, Frame: i}
			if _, ok := c.entries[key]; ok {
				continue
			}
			c.entries[key] = &spriteEntry{state: spritePending}
			reqs = append(reqs, LoadRequest{Key: key, Source: src})
		}
	}
	return reqs
}

// Complete 记录一帧的加载结果；返回 true 表示有新的可绘制帧
func (c *SpriteCache) Complete(key SpriteKey, img Image, err error) bool {
	e, ok := c.entries[key]
	if !ok || e.state != spritePending {
		return false
	}
	if err != nil || img == nil {
		e.state = spriteFailed
		return false
	}
	e.state = spriteReady
	e.img = img
	return true
}

// Resolve 查询已就绪的帧；未预加载、加载中或加载失败都返回 false，调用方跳过绘制即可
func (c *SpriteCache) Resolve(id AvatarID, f Facing, frame int) (Image, bool) {
	e, ok := c.entries[SpriteKey{Avatar: id, Facing: f, Frame: frame}]
	if !ok || e.state != spriteReady {
		return nil, false
	}
	return e.img, true
}

// Len 已创建的条目数（含加载中与失败）
func (c *SpriteCache) Len() int { return len(c.entries) }
