package client

import (
	"sync"
	"time"
)

// RepeatInterval 按住方向键时重复发送移动意图的周期
const RepeatInterval = 100 * time.Millisecond

// repeatTick 计时器触发，gen 用于识别已停止实例遗留的触发
type repeatTick struct {
	gen uint64
}

// TimerFunc 启动一个重复计时器实例（编号 gen），返回其停止函数
type TimerFunc func(gen uint64) (stop func())

// NewRepeatTicker 每个周期向 post 投递一次 repeatTick，直到停止。
// 触发只投递到会话收件箱，由逻辑线程处理，计时器本身不读取按键状态。
func NewRepeatTicker(period time.Duration, post func(any)) TimerFunc {
	return func(gen uint64) func() {
		done := make(chan struct{})
		go func() {
			ticker := time.NewTicker(period)
			defer ticker.Stop()
			for {
				select {
				case <-done:
					return
				case <-ticker.C:
					post(repeatTick{gen: gen})
				}
			}
		}()
		var once sync.Once
		return func() { once.Do(func() { close(done) }) }
	}
}
