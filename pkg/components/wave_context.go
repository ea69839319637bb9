package components

import "github.com/decker502/wavesched/pkg/types"

// WaveContextComponent 波次上下文组件
// 存储 WaveScheduler 的全部可变状态，会话开始时创建一次，之后原地修改
//
// 存活数量不在此处：它由 AliveCounter 维护，因为销毁信号可能来自其他 goroutine
type WaveContextComponent struct {
	// State 当前波次状态（间歇 / 生成）
	State types.WaveState

	// WaveIndex 当前波次号（从 1 开始，单调递增，会话内不重置）
	WaveIndex int

	// EnemiesRemainingToSpawn 本波尚未生成的普通敌人数量
	EnemiesRemainingToSpawn int

	// BossesRemainingToSpawn 本波首领数量（奇数波恒为 0）
	// 波次结束时移交给首领子计划，随后清零
	BossesRemainingToSpawn int

	// CurrentSpawnIntervalSeconds 本波生成间隔（秒）
	// 仅在波次开始时计算，整波内冻结
	CurrentSpawnIntervalSeconds float64

	// SpawnTimer 距上次生成的计时器
	SpawnTimer SpawnTimer

	// IntermissionElapsed 间歇阶段已累积的时间（秒）
	IntermissionElapsed float64

	// IsPaused 是否暂停
	// 暂停时 Advance 不推进任何计时
	IsPaused bool

	// IsStopped 是否已停止（会话结束）
	// 停止后所有首领子计划被取消，Advance 不再生效，直到 Reset
	IsStopped bool
}

// SpawnTimer 生成计时器
// 累积自上次生成以来的时间，判断下一次生成是否到期
//
// IsDue 本身不重置：由调用方在消费一次生成后调用 Reset，
// 重置时丢弃超出的时间（固定节奏，而非追赶节奏）
type SpawnTimer struct {
	// Elapsed 距上次生成的时间（秒）
	Elapsed float64
}

// Reset 将计时归零
func (t *SpawnTimer) Reset() {
	t.Elapsed = 0
}

// Advance 累积经过的时间
func (t *SpawnTimer) Advance(deltaSeconds float64) {
	if deltaSeconds <= 0 {
		return
	}
	t.Elapsed += deltaSeconds
}

// IsDue 判断是否到达生成间隔
func (t *SpawnTimer) IsDue(intervalSeconds float64) bool {
	return t.Elapsed >= intervalSeconds
}
