package client

import "fmt"

// PlayerID 表示玩家唯一标识（服务端分配，客户端只透传）
type PlayerID string

// AvatarID 表示角色外观定义的标识
type AvatarID string

// Facing 角色朝向，同时也是移动意图的方向
type Facing string

const (
	FacingUp    Facing = "up"
	FacingDown  Facing = "down"
	FacingLeft  Facing = "left"
	FacingRight Facing = "right"
)

// Valid 判断朝向是否为四个合法值之一
func (f Facing) Valid() bool {
	switch f {
	case FacingUp, FacingDown, FacingLeft, FacingRight:
		return true
	}
	return false
}

// Player 服务端权威的玩家状态（客户端镜像，整条记录覆盖，不做字段级合并）
type Player struct {
	ID             PlayerID `json:"id"`
	Username       string   `json:"username"`
	X              float64  `json:"x"`
	Y              float64  `json:"y"`
	Facing         Facing   `json:"facing"`
	AvatarID       AvatarID `json:"avatarId"`
	AnimationFrame int      `json:"animationFrame"`
}

// validate 检查必填字段；key 为所在映射的键，可为空
func (p *Player) validate(key PlayerID) error {
	if p.ID == "" {
		p.ID = key
	}
	if p.ID == "" {
		return fmt.Errorf("%w: player without id", ErrMalformedEvent)
	}
	if key != "" && p.ID != key {
		return fmt.Errorf("%w: player id %q stored under key %q", ErrMalformedEvent, p.ID, key)
	}
	if p.AvatarID == "" {
		return fmt.Errorf("%w: player %q without avatarId", ErrMalformedEvent, p.ID)
	}
	if !p.Facing.Valid() {
		return fmt.Errorf("%w: player %q facing %q", ErrMalformedEvent, p.ID, p.Facing)
	}
	if p.AnimationFrame < 0 {
		return fmt.Errorf("%w: player %q animationFrame %d", ErrMalformedEvent, p.ID, p.AnimationFrame)
	}
	return nil
}

// Avatar 角色外观：每个朝向对应一组按顺序排列的动画帧图片源
// 收到后不可变，多个玩家可共享同一个 Avatar
type Avatar struct {
	Name   string              `json:"name"`
	Frames map[Facing][]string `json:"frames"`
}

func (a *Avatar) validate(id AvatarID) error {
	if id == "" {
		return fmt.Errorf("%w: avatar without id", ErrMalformedEvent)
	}
	if a.Frames == nil {
		return fmt.Errorf("%w: avatar %q without frames", ErrMalformedEvent, id)
	}
	return nil
}
