package components

import "github.com/decker502/wavesched/pkg/types"

// EnemyComponent 敌人单位组件
// 由 EnemyFactory 在生成时创建
type EnemyComponent struct {
	// Kind 单位类别（普通 / 首领）
	Kind types.UnitKind

	// Variant 变体名称（来自难度配置）
	Variant string

	// Health 当前生命值，<= 0 时由 UnitCleanupSystem 回收
	Health int

	// MaxHealth 最大生命值
	MaxHealth int

	// OnDestroyed 销毁回调
	// 工厂保证每个单位最多触发一次，对应调度器的 NotifyUnitDestroyed
	OnDestroyed func()
}

// PositionComponent 位置组件（世界坐标）
type PositionComponent struct {
	X, Y float64
}
