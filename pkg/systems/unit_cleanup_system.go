package systems

import (
	"log"

	"github.com/decker502/wavesched/pkg/components"
	"github.com/decker502/wavesched/pkg/ecs"
)

// UnitCleanupSystem 回收生命值耗尽的敌人
// 触发销毁回调后标记删除，实际删除由 EntityManager.RemoveMarkedEntities 完成
type UnitCleanupSystem struct {
	entityManager *ecs.EntityManager
	verbose       bool
}

// NewUnitCleanupSystem 创建回收系统
func NewUnitCleanupSystem(em *ecs.EntityManager) *UnitCleanupSystem {
	return &UnitCleanupSystem{entityManager: em}
}

// Update 检查所有敌人的生命值
//
// 返回：
//   - int: 本帧被击杀的敌人数量
func (s *UnitCleanupSystem) Update() int {
	killed := 0
	entities := ecs.GetEntitiesWith1[*components.EnemyComponent](s.entityManager)

	for _, id := range entities {
		if s.entityManager.IsMarkedForDestruction(id) {
			continue
		}

		enemy, ok := ecs.GetComponent[*components.EnemyComponent](s.entityManager, id)
		if !ok || enemy.Health > 0 {
			continue
		}

		notifyDestroyed(s.entityManager, id)
		s.entityManager.DestroyEntity(id)
		killed++

		if s.verbose {
			log.Printf("[UnitCleanupSystem] %s unit %s (ID: %d) killed", enemy.Kind, enemy.Variant, id)
		}
	}

	return killed
}

// SetVerbose 设置是否输出详细日志
func (s *UnitCleanupSystem) SetVerbose(verbose bool) {
	s.verbose = verbose
}
