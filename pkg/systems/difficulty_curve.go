package systems

import (
	"errors"
	"math"

	"github.com/decker502/wavesched/pkg/config"
)

// ErrInvalidWaveIndex 波次号必须 >= 1
var ErrInvalidWaveIndex = errors.New("wave index must be >= 1")

// DifficultyCurve 难度曲线
// 无状态的纯函数集合：给定波次号和难度参数，计算敌人数量、首领数量和生成速率
//
// 取整采用四舍六入五成双（math.RoundToEven）
type DifficultyCurve struct {
	config *config.DifficultyConfig
}

// NewDifficultyCurve 创建难度曲线
func NewDifficultyCurve(cfg *config.DifficultyConfig) *DifficultyCurve {
	return &DifficultyCurve{config: cfg}
}

// EnemyCountForWave 计算某波的普通敌人数量
// 公式: round(baseEnemies * waveIndex^enemyExponent)
func (c *DifficultyCurve) EnemyCountForWave(waveIndex int) (int, error) {
	if waveIndex < 1 {
		return 0, ErrInvalidWaveIndex
	}
	scaled := float64(c.config.BaseEnemies) * math.Pow(float64(waveIndex), c.config.EnemyExponent)
	return int(math.RoundToEven(scaled)), nil
}

// BossCountForWave 计算某波的首领数量
// 公式: max(1, round(waveIndex * baseBosses - 1))
//
// 调度器只在偶数波调用，奇数波首领数为 0
func (c *DifficultyCurve) BossCountForWave(waveIndex int) (int, error) {
	if waveIndex < 1 {
		return 0, ErrInvalidWaveIndex
	}
	return max(1, waveIndex*c.config.BaseBosses-1), nil
}

// SpawnRateForWave 计算某波的生成速率（个/秒）
// 公式: clamp(baseSpawnRate * waveIndex^enemyExponent, 0, spawnRateCap)
func (c *DifficultyCurve) SpawnRateForWave(waveIndex int) (float64, error) {
	if waveIndex < 1 {
		return 0, ErrInvalidWaveIndex
	}
	rate := c.config.BaseSpawnRate * math.Pow(float64(waveIndex), c.config.EnemyExponent)
	return clamp(rate, 0, c.config.SpawnRateCap), nil
}

// SpawnIntervalForWave 计算某波的生成间隔（秒），即 1 / 生成速率
// 速率为 0 时返回 +Inf（永不到期）
func (c *DifficultyCurve) SpawnIntervalForWave(waveIndex int) (float64, error) {
	rate, err := c.SpawnRateForWave(waveIndex)
	if err != nil {
		return 0, err
	}
	if rate <= 0 {
		return math.Inf(1), nil
	}
	return 1 / rate, nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
