package config

import (
	"fmt"
	"math"
	"os"

	"github.com/decker502/wavesched/pkg/types"
	"gopkg.in/yaml.v3"
)

// DifficultyConfig 难度参数配置
// 整个会话期间不可变，由 WaveScheduler 在构造时校验
type DifficultyConfig struct {
	BaseEnemies           int            `yaml:"baseEnemies"`           // 第1波普通敌人基数
	BaseBosses            int            `yaml:"baseBosses"`            // 首领基数（偶数波使用）
	BaseSpawnRate         float64        `yaml:"baseSpawnRate"`         // 基础生成速率（个/秒）
	SpawnRateCap          float64        `yaml:"spawnRateCap"`          // 生成速率上限（个/秒）
	EnemyExponent         float64        `yaml:"enemyExponent"`         // 普通敌人难度指数
	BossExponent          float64        `yaml:"bossExponent"`          // 首领难度指数（数值越大首领越多）
	IntermissionSeconds   float64        `yaml:"intermissionSeconds"`   // 波次间歇时长（秒）
	BossSpawnDelaySeconds float64        `yaml:"bossSpawnDelaySeconds"` // 首领生成间隔（秒）
	SpawnPoint            types.Position `yaml:"spawnPoint"`            // 路径起点（所有单位的生成位置）
	Variants              []UnitVariant  `yaml:"variants"`              // 单位变体（可选，供工厂随机选择）
}

// UnitVariant 单位变体
// 由工厂在生成时随机选取
type UnitVariant struct {
	Name          string  `yaml:"name"`          // 变体名称
	Kind          string  `yaml:"kind"`          // 单位类别：standard / boss
	Health        int     `yaml:"health"`        // 生命值
	TravelSeconds float64 `yaml:"travelSeconds"` // 走完路径所需时间（秒），到达终点即视为销毁
}

// ConfigurationError 配置错误
// 构造时发现的非法参数，属于致命错误，会话中途不可恢复
type ConfigurationError struct {
	Field  string
	Reason string
}

// Error 实现 error 接口
func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

// DefaultDifficultyConfig 返回默认难度参数
// 数值为推荐的初始难度
func DefaultDifficultyConfig() *DifficultyConfig {
	return &DifficultyConfig{
		BaseEnemies:           8,
		BaseBosses:            1,
		BaseSpawnRate:         0.5,
		SpawnRateCap:          15,
		EnemyExponent:         0.75,
		BossExponent:          1.5,
		IntermissionSeconds:   5,
		BossSpawnDelaySeconds: 2,
		SpawnPoint:            types.Position{X: 40, Y: 240},
		Variants: []UnitVariant{
			{Name: "grunt", Kind: "standard", Health: 3, TravelSeconds: 9},
			{Name: "runner", Kind: "standard", Health: 1, TravelSeconds: 6},
			{Name: "brute", Kind: "boss", Health: 20, TravelSeconds: 15},
		},
	}
}

// LoadDifficultyConfig 从 YAML 文件加载难度参数
func LoadDifficultyConfig(filePath string) (*DifficultyConfig, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read difficulty config file: %w", err)
	}
	return ParseDifficultyConfig(data)
}

// ParseDifficultyConfig 解析 YAML 数据
// 未出现的字段保留默认值
func ParseDifficultyConfig(data []byte) (*DifficultyConfig, error) {
	cfg := DefaultDifficultyConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse difficulty config YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid difficulty config: %w", err)
	}

	return cfg, nil
}

// Validate 验证配置的有效性
//
// 规则：
//   - 数量基数可以为 0（退化配置，仅用于测试）
//   - 速率、上限、时长必须为正数
//   - 难度指数必须 >= 0
//
// 返回：
//   - error: *ConfigurationError，配置合法时为 nil
func (c *DifficultyConfig) Validate() error {
	if c.BaseEnemies < 0 {
		return &ConfigurationError{Field: "baseEnemies", Reason: fmt.Sprintf("must be >= 0, got %d", c.BaseEnemies)}
	}
	if c.BaseBosses < 0 {
		return &ConfigurationError{Field: "baseBosses", Reason: fmt.Sprintf("must be >= 0, got %d", c.BaseBosses)}
	}

	positives := []struct {
		field string
		value float64
	}{
		{"baseSpawnRate", c.BaseSpawnRate},
		{"spawnRateCap", c.SpawnRateCap},
		{"intermissionSeconds", c.IntermissionSeconds},
		{"bossSpawnDelaySeconds", c.BossSpawnDelaySeconds},
	}
	for _, p := range positives {
		// NaN 与 Inf 同样拒绝
		if !(p.value > 0) || math.IsInf(p.value, 1) {
			return &ConfigurationError{Field: p.field, Reason: fmt.Sprintf("must be a finite value > 0, got %v", p.value)}
		}
	}

	if !(c.EnemyExponent >= 0) || math.IsInf(c.EnemyExponent, 1) {
		return &ConfigurationError{Field: "enemyExponent", Reason: fmt.Sprintf("must be a finite value >= 0, got %v", c.EnemyExponent)}
	}
	if !(c.BossExponent >= 0) || math.IsInf(c.BossExponent, 1) {
		return &ConfigurationError{Field: "bossExponent", Reason: fmt.Sprintf("must be a finite value >= 0, got %v", c.BossExponent)}
	}

	for i, v := range c.Variants {
		field := fmt.Sprintf("variants[%d]", i)
		if v.Name == "" {
			return &ConfigurationError{Field: field + ".name", Reason: "cannot be empty"}
		}
		if _, ok := types.ParseUnitKind(v.Kind); !ok {
			return &ConfigurationError{Field: field + ".kind", Reason: fmt.Sprintf("must be standard or boss, got %q", v.Kind)}
		}
		if v.Health < 0 {
			return &ConfigurationError{Field: field + ".health", Reason: fmt.Sprintf("must be >= 0, got %d", v.Health)}
		}
		if !(v.TravelSeconds > 0) {
			return &ConfigurationError{Field: field + ".travelSeconds", Reason: fmt.Sprintf("must be > 0, got %v", v.TravelSeconds)}
		}
	}

	return nil
}

// VariantsOf 返回指定类别的所有变体
func (c *DifficultyConfig) VariantsOf(kind types.UnitKind) []UnitVariant {
	result := make([]UnitVariant, 0, len(c.Variants))
	for _, v := range c.Variants {
		if k, ok := types.ParseUnitKind(v.Kind); ok && k == kind {
			result = append(result, v)
		}
	}
	return result
}
