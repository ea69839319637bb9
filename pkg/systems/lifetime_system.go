package systems

import (
	"github.com/decker502/wavesched/pkg/components"
	"github.com/decker502/wavesched/pkg/ecs"
)

// LifetimeSystem 管理实体的生命周期
// 敌人走完路径（生命周期耗尽）时触发销毁回调并标记删除
type LifetimeSystem struct {
	entityManager *ecs.EntityManager
}

// NewLifetimeSystem 创建一个新的生命周期系统
func NewLifetimeSystem(em *ecs.EntityManager) *LifetimeSystem {
	return &LifetimeSystem{
		entityManager: em,
	}
}

// Update 更新所有拥有生命周期组件的实体
//
// 返回：
//   - int: 本帧过期的实体数量
func (s *LifetimeSystem) Update(deltaTime float64) int {
	expired := 0
	entities := ecs.GetEntitiesWith1[*components.LifetimeComponent](s.entityManager)

	for _, id := range entities {
		if s.entityManager.IsMarkedForDestruction(id) {
			continue
		}

		lifetime, ok := ecs.GetComponent[*components.LifetimeComponent](s.entityManager, id)
		if !ok {
			continue
		}

		// 增加当前生命时间
		lifetime.CurrentLifetime += deltaTime

		// 检查是否过期
		if lifetime.CurrentLifetime >= lifetime.MaxLifetime {
			lifetime.IsExpired = true
		}

		// 如果已过期,通知销毁并标记实体待删除
		if lifetime.IsExpired {
			notifyDestroyed(s.entityManager, id)
			s.entityManager.DestroyEntity(id)
			expired++
		}
	}

	return expired
}

// notifyDestroyed 触发敌人组件上的销毁回调（如果有）
func notifyDestroyed(em *ecs.EntityManager, id ecs.EntityID) {
	enemy, ok := ecs.GetComponent[*components.EnemyComponent](em, id)
	if !ok || enemy.OnDestroyed == nil {
		return
	}
	enemy.OnDestroyed()
}
