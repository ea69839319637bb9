package app

import (
	"fmt"
	"log"
)

// Summary 无界面运行的汇总结果
type Summary struct {
	Elapsed            float64
	WavesStarted       int
	WavesCompleted     int
	LastCompletedWave  int
	TotalSpawned       int
	TotalBossesSpawned int
	RejectedSpawns     int
	CounterViolations  int
}

// String 返回可读的汇总文本
func (s Summary) String() string {
	return fmt.Sprintf("elapsed=%.1fs waves started=%d completed=%d (last=%d) spawned=%d bosses=%d rejected=%d violations=%d",
		s.Elapsed, s.WavesStarted, s.WavesCompleted, s.LastCompletedWave,
		s.TotalSpawned, s.TotalBossesSpawned, s.RejectedSpawns, s.CounterViolations)
}

// RunHeadless 以固定步长驱动应用，不创建窗口
//
// 参数：
//   - step: 每帧时长（秒），必须 > 0
//   - duration: 总模拟时长（秒）
func (a *App) RunHeadless(step, duration float64) (Summary, error) {
	if !(step > 0) {
		return Summary{}, fmt.Errorf("invalid headless step: %v", step)
	}

	frames := int(duration / step)
	for i := 0; i < frames; i++ {
		a.Step(step)
	}

	summary := a.Summary()
	log.Printf("[App] Headless run finished: %s", summary)
	return summary, nil
}

// Summary 返回当前会话的汇总
func (a *App) Summary() Summary {
	return Summary{
		Elapsed:            a.elapsed,
		WavesStarted:       a.progress.started,
		WavesCompleted:     a.progress.completed,
		LastCompletedWave:  a.progress.lastEnded,
		TotalSpawned:       a.scheduler.TotalSpawned(),
		TotalBossesSpawned: a.scheduler.TotalBossesSpawned(),
		RejectedSpawns:     a.scheduler.RejectedSpawns(),
		CounterViolations:  a.alive.Violations(),
	}
}
