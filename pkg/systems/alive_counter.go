package systems

import (
	"log"
	"sync/atomic"
)

// AliveCounter 存活单位计数器
//
// Increment 在每次生成被接受后调用一次，Decrement 在每次销毁信号到达时调用一次。
// 销毁信号可能来自任意 goroutine，因此计数使用原子操作。
//
// 计数器本身不去重：同一单位重复上报属于协作方违约。
// 此时计数被钳制在 0 并记录违约次数，不会中断波次循环。
type AliveCounter struct {
	count      atomic.Int64
	violations atomic.Int64
}

// NewAliveCounter 创建计数器
func NewAliveCounter() *AliveCounter {
	return &AliveCounter{}
}

// Increment 存活数 +1
func (c *AliveCounter) Increment() {
	c.count.Add(1)
}

// Decrement 存活数 -1，不会低于 0
func (c *AliveCounter) Decrement() {
	for {
		current := c.count.Load()
		if current <= 0 {
			n := c.violations.Add(1)
			log.Printf("[AliveCounter] WARNING: destroy signal with no live units (duplicate notification?), violations=%d", n)
			return
		}
		if c.count.CompareAndSwap(current, current-1) {
			return
		}
	}
}

// IsZero 是否没有存活单位
func (c *AliveCounter) IsZero() bool {
	return c.count.Load() == 0
}

// Count 当前存活数
func (c *AliveCounter) Count() int {
	return int(c.count.Load())
}

// Violations 被钳制的重复销毁信号次数
func (c *AliveCounter) Violations() int {
	return int(c.violations.Load())
}

// Reset 会话重启时清零
func (c *AliveCounter) Reset() {
	c.count.Store(0)
	c.violations.Store(0)
}
