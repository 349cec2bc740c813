package client

// KeyCode 逻辑按键编码（与具体窗口库无关，由 viewer 负责映射）
type KeyCode string

const (
	KeyArrowUp    KeyCode = "ArrowUp"
	KeyArrowDown  KeyCode = "ArrowDown"
	KeyArrowLeft  KeyCode = "ArrowLeft"
	KeyArrowRight KeyCode = "ArrowRight"
)

// directions 唯一的按键→朝向查表，所有处理器共用
var directions = map[KeyCode]Facing{
	KeyArrowUp:    FacingUp,
	KeyArrowDown:  FacingDown,
	KeyArrowLeft:  FacingLeft,
	KeyArrowRight: FacingRight,
}

// DirectionFor 查询按键对应的移动方向；非移动键返回 false
func DirectionFor(code KeyCode) (Facing, bool) {
	f, ok := directions[code]
	return f, ok
}
