package types

// WaveState 波次状态
// 任一时刻恰好处于其中一个状态
type WaveState int

const (
	// WaveIntermission 波次间歇（等待固定时长后进入生成阶段）
	WaveIntermission WaveState = iota

	// WaveSpawning 生成阶段（按间隔生成普通敌人，并检测波次结束）
	WaveSpawning
)

// String 返回状态名称
func (s WaveState) String() string {
	switch s {
	case WaveIntermission:
		return "Intermission"
	case WaveSpawning:
		return "Spawning"
	default:
		return "Unknown"
	}
}
