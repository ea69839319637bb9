package entities

import (
	"log"
	"math/rand"
	"sync"

	"github.com/decker502/wavesched/pkg/components"
	"github.com/decker502/wavesched/pkg/config"
	"github.com/decker502/wavesched/pkg/ecs"
	"github.com/decker502/wavesched/pkg/types"
)

// 未配置变体时使用的默认属性
var (
	defaultStandardVariant = config.UnitVariant{Name: "standard", Kind: "standard", Health: 1, TravelSeconds: 10}
	defaultBossVariant     = config.UnitVariant{Name: "boss", Kind: "boss", Health: 10, TravelSeconds: 20}
)

// EnemyFactory 敌人工厂
// 实现 systems.SpawnSink：在世界中创建敌人实体，并为每个单位安装一次性的销毁回调
//
// 回调在单位首次被销毁时调用 onDestroyed（通常是 WaveScheduler.NotifyUnitDestroyed），
// 同一单位再次销毁不会重复通知
type EnemyFactory struct {
	entityManager *ecs.EntityManager
	onDestroyed   func()
	rng           *rand.Rand

	standardVariants []config.UnitVariant
	bossVariants     []config.UnitVariant

	// maxUnits 场上单位上限，0 表示不限制
	// 达到上限时拒绝生成（返回 InvalidUnitHandle）
	maxUnits int
}

// NewEnemyFactory 创建敌人工厂
//
// 参数：
//   - em: 实体管理器
//   - cfg: 难度配置（读取单位变体）
//   - onDestroyed: 单位销毁时调用，可为 nil
//   - seed: 变体随机选择的种子
func NewEnemyFactory(em *ecs.EntityManager, cfg *config.DifficultyConfig, onDestroyed func(), seed int64) *EnemyFactory {
	f := &EnemyFactory{
		entityManager: em,
		onDestroyed:   onDestroyed,
		rng:           rand.New(rand.NewSource(seed)),
	}
	if cfg != nil {
		f.standardVariants = cfg.VariantsOf(types.UnitStandard)
		f.bossVariants = cfg.VariantsOf(types.UnitBoss)
	}
	return f
}

// SetMaxUnits 设置场上单位上限
func (f *EnemyFactory) SetMaxUnits(n int) {
	f.maxUnits = max(0, n)
}

// SpawnUnit 在指定位置创建一个单位
//
// 返回：
//   - types.UnitHandle: 新实体ID；达到单位上限时返回 types.InvalidUnitHandle
func (f *EnemyFactory) SpawnUnit(kind types.UnitKind, at types.Position) types.UnitHandle {
	if f.maxUnits > 0 && f.UnitCount() >= f.maxUnits {
		log.Printf("[EnemyFactory] Unit cap %d reached, rejecting %s unit", f.maxUnits, kind)
		return types.InvalidUnitHandle
	}

	variant := f.pickVariant(kind)

	id := f.entityManager.CreateEntity()
	ecs.AddComponent(f.entityManager, id, &components.EnemyComponent{
		Kind:        kind,
		Variant:     variant.Name,
		Health:      variant.Health,
		MaxHealth:   variant.Health,
		OnDestroyed: f.destroyedOnce(),
	})
	ecs.AddComponent(f.entityManager, id, &components.PositionComponent{X: at.X, Y: at.Y})
	ecs.AddComponent(f.entityManager, id, &components.LifetimeComponent{MaxLifetime: variant.TravelSeconds})

	return types.UnitHandle(id)
}

// destroyedOnce 返回只生效一次的销毁回调
func (f *EnemyFactory) destroyedOnce() func() {
	if f.onDestroyed == nil {
		return nil
	}
	var once sync.Once
	notify := f.onDestroyed
	return func() {
		once.Do(notify)
	}
}

// pickVariant 随机选择指定类别的变体
func (f *EnemyFactory) pickVariant(kind types.UnitKind) config.UnitVariant {
	variants := f.standardVariants
	fallback := defaultStandardVariant
	if kind == types.UnitBoss {
		variants = f.bossVariants
		fallback = defaultBossVariant
	}

	if len(variants) == 0 {
		return fallback
	}

	v, ok := variantAt(variants, f.rng.Intn(len(variants)))
	if !ok {
		return fallback
	}
	return v
}

// variantAt 按索引取变体，越界时返回 ok=false
func variantAt(variants []config.UnitVariant, index int) (config.UnitVariant, bool) {
	if index < 0 || index >= len(variants) {
		return config.UnitVariant{}, false
	}
	return variants[index], true
}

// Damage 对单位造成伤害
// 生命值降到 0 后由 UnitCleanupSystem 回收
//
// 返回：
//   - bool: 单位是否存在
func (f *EnemyFactory) Damage(handle types.UnitHandle, amount int) bool {
	id := ecs.EntityID(handle)
	if f.entityManager.IsMarkedForDestruction(id) {
		return false
	}
	enemy, ok := ecs.GetComponent[*components.EnemyComponent](f.entityManager, id)
	if !ok {
		return false
	}
	enemy.Health = max(0, enemy.Health-amount)
	return true
}

// UnitCount 场上未被标记删除的单位数量
func (f *EnemyFactory) UnitCount() int {
	n := 0
	for _, id := range ecs.GetEntitiesWith1[*components.EnemyComponent](f.entityManager) {
		if !f.entityManager.IsMarkedForDestruction(id) {
			n++
		}
	}
	return n
}

// Clear 移除所有单位（会话重启使用），不触发销毁回调
//
// 返回：
//   - int: 移除的单位数量
func (f *EnemyFactory) Clear() int {
	ids := ecs.GetEntitiesWith1[*components.EnemyComponent](f.entityManager)
	for _, id := range ids {
		f.entityManager.DestroyEntity(id)
	}
	return len(ids)
}
