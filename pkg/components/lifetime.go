package components

// LifetimeComponent 管理实体的生命周期
// 敌人沿路径行进，存在时间达到 MaxLifetime 即视为到达终点并被移除
type LifetimeComponent struct {
	MaxLifetime     float64 // 最大生命周期(秒)，即走完路径所需时间
	CurrentLifetime float64 // 当前已存在时间(秒)
	IsExpired       bool    // 是否已过期
}

// Progress 返回行进进度 [0, 1]
func (c *LifetimeComponent) Progress() float64 {
	if c.MaxLifetime <= 0 {
		return 1
	}
	p := c.CurrentLifetime / c.MaxLifetime
	if p > 1 {
		return 1
	}
	return p
}
