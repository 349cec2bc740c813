package client

// Camera 视口原点（世界坐标），以本地玩家为中心并钳制在世界边界内
type Camera struct {
	X, Y float64

	ViewportW, ViewportH float64
}

func NewCamera(viewportW, viewportH float64) *Camera {
	return &Camera{ViewportW: viewportW, ViewportH: viewportH}
}

// Recompute 根据本地玩家位置重新计算相机。
// 本地身份未设置或玩家尚不在镜像中时保持原值。
// 世界某一维小于视口时，该维固定为 0（不产生反向区间）。
func (c *Camera) Recompute(s *Store, worldW, worldH float64) {
	self, ok := s.Self()
	if !ok {
		return
	}
	c.X = clampAxis(self.X-c.ViewportW/2, worldW-c.ViewportW)
	c.Y = clampAxis(self.Y-c.ViewportH/2, worldH-c.ViewportH)
}

func clampAxis(v, max float64) float64 {
	if max <= 0 || v < 0 {
		return 0
	}
	if v > max {
		return max
	}
	return v
}

// WorldToScreen 世界坐标转屏幕坐标
func (c *Camera) WorldToScreen(x, y float64) (float64, float64) {
	return x - c.X, y - c.Y
}

// IsVisible 屏幕空间矩形与视口 [0,0,w,h] 是否相交（仅接触边界不算）
func (c *Camera) IsVisible(x, y, w, h float64) bool {
	return x < c.ViewportW && x+w > 0 && y < c.ViewportH && y+h > 0
}
