package entities

import (
	"testing"

	"github.com/decker502/wavesched/pkg/components"
	"github.com/decker502/wavesched/pkg/config"
	"github.com/decker502/wavesched/pkg/ecs"
	"github.com/decker502/wavesched/pkg/types"
)

// newTestFactory 创建使用默认配置的工厂，返回销毁回调计数
func newTestFactory(cfg *config.DifficultyConfig) (*EnemyFactory, *ecs.EntityManager, *int) {
	em := ecs.NewEntityManager()
	notified := 0
	f := NewEnemyFactory(em, cfg, func() { notified++ }, 42)
	return f, em, &notified
}

func TestSpawnUnit_CreatesComponents(t *testing.T) {
	f, em, _ := newTestFactory(config.DefaultDifficultyConfig())

	at := types.Position{X: 10, Y: 20}
	handle := f.SpawnUnit(types.UnitStandard, at)
	if handle == types.InvalidUnitHandle {
		t.Fatal("Expected a valid handle")
	}

	id := ecs.EntityID(handle)
	enemy, ok := ecs.GetComponent[*components.EnemyComponent](em, id)
	if !ok {
		t.Fatal("EnemyComponent missing")
	}
	if enemy.Kind != types.UnitStandard {
		t.Errorf("Expected standard unit, got %v", enemy.Kind)
	}
	if enemy.Variant != "grunt" && enemy.Variant != "runner" {
		t.Errorf("Expected a configured standard variant, got %q", enemy.Variant)
	}
	if enemy.Health != enemy.MaxHealth || enemy.Health <= 0 {
		t.Errorf("Expected full positive health, got %d/%d", enemy.Health, enemy.MaxHealth)
	}

	pos, ok := ecs.GetComponent[*components.PositionComponent](em, id)
	if !ok || pos.X != 10 || pos.Y != 20 {
		t.Errorf("Expected position (10, 20), got %+v", pos)
	}

	lifetime, ok := ecs.GetComponent[*components.LifetimeComponent](em, id)
	if !ok || lifetime.MaxLifetime <= 0 {
		t.Errorf("Expected positive lifetime, got %+v", lifetime)
	}
}

func TestSpawnUnit_BossVariant(t *testing.T) {
	f, em, _ := newTestFactory(config.DefaultDifficultyConfig())

	handle := f.SpawnUnit(types.UnitBoss, types.Position{})
	enemy, _ := ecs.GetComponent[*components.EnemyComponent](em, ecs.EntityID(handle))
	if enemy.Kind != types.UnitBoss || enemy.Variant != "brute" {
		t.Errorf("Expected boss variant brute, got %v %q", enemy.Kind, enemy.Variant)
	}
	if enemy.Health != 20 {
		t.Errorf("Expected brute health 20, got %d", enemy.Health)
	}
}

// TestSpawnUnit_FallbackVariant 未配置变体时使用默认属性
func TestSpawnUnit_FallbackVariant(t *testing.T) {
	cfg := config.DefaultDifficultyConfig()
	cfg.Variants = nil
	f, em, _ := newTestFactory(cfg)

	std := f.SpawnUnit(types.UnitStandard, types.Position{})
	boss := f.SpawnUnit(types.UnitBoss, types.Position{})

	stdEnemy, _ := ecs.GetComponent[*components.EnemyComponent](em, ecs.EntityID(std))
	if stdEnemy.Variant != defaultStandardVariant.Name {
		t.Errorf("Expected fallback standard variant, got %q", stdEnemy.Variant)
	}
	bossEnemy, _ := ecs.GetComponent[*components.EnemyComponent](em, ecs.EntityID(boss))
	if bossEnemy.Variant != defaultBossVariant.Name {
		t.Errorf("Expected fallback boss variant, got %q", bossEnemy.Variant)
	}
}

// TestSpawnUnit_AllVariantsReachable 随机选择覆盖所有变体
func TestSpawnUnit_AllVariantsReachable(t *testing.T) {
	f, em, _ := newTestFactory(config.DefaultDifficultyConfig())

	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		handle := f.SpawnUnit(types.UnitStandard, types.Position{})
		enemy, _ := ecs.GetComponent[*components.EnemyComponent](em, ecs.EntityID(handle))
		seen[enemy.Variant] = true
	}

	if !seen["grunt"] || !seen["runner"] {
		t.Errorf("Expected both standard variants, got %v", seen)
	}
}

func TestVariantAt(t *testing.T) {
	variants := []config.UnitVariant{{Name: "a"}, {Name: "b"}}

	tests := []struct {
		index int
		ok    bool
		name  string
	}{
		{0, true, "a"},
		{1, true, "b"},
		{2, false, ""},
		{-1, false, ""},
	}

	for _, tt := range tests {
		v, ok := variantAt(variants, tt.index)
		if ok != tt.ok || v.Name != tt.name {
			t.Errorf("variantAt(%d) = (%q, %v), expected (%q, %v)", tt.index, v.Name, ok, tt.name, tt.ok)
		}
	}
}

// TestOnDestroyed_FiresOnce 同一单位的销毁回调只生效一次
func TestOnDestroyed_FiresOnce(t *testing.T) {
	f, em, notified := newTestFactory(config.DefaultDifficultyConfig())

	a := f.SpawnUnit(types.UnitStandard, types.Position{})
	b := f.SpawnUnit(types.UnitStandard, types.Position{})

	enemyA, _ := ecs.GetComponent[*components.EnemyComponent](em, ecs.EntityID(a))
	enemyB, _ := ecs.GetComponent[*components.EnemyComponent](em, ecs.EntityID(b))

	enemyA.OnDestroyed()
	enemyA.OnDestroyed()
	enemyA.OnDestroyed()
	if *notified != 1 {
		t.Errorf("Expected 1 notification for unit A, got %d", *notified)
	}

	enemyB.OnDestroyed()
	if *notified != 2 {
		t.Errorf("Expected independent callback for unit B, got %d", *notified)
	}
}

func TestOnDestroyed_NilNotifier(t *testing.T) {
	em := ecs.NewEntityManager()
	f := NewEnemyFactory(em, nil, nil, 1)

	handle := f.SpawnUnit(types.UnitStandard, types.Position{})
	enemy, _ := ecs.GetComponent[*components.EnemyComponent](em, ecs.EntityID(handle))
	if enemy.OnDestroyed != nil {
		t.Error("Expected nil callback without notifier")
	}
}

// TestSpawnUnit_MaxUnits 达到上限时拒绝生成
func TestSpawnUnit_MaxUnits(t *testing.T) {
	f, em, _ := newTestFactory(config.DefaultDifficultyConfig())
	f.SetMaxUnits(2)

	first := f.SpawnUnit(types.UnitStandard, types.Position{})
	f.SpawnUnit(types.UnitStandard, types.Position{})

	if h := f.SpawnUnit(types.UnitStandard, types.Position{}); h != types.InvalidUnitHandle {
		t.Errorf("Expected rejection at cap, got handle %d", h)
	}

	// 标记删除的单位不占用名额
	em.DestroyEntity(ecs.EntityID(first))
	if h := f.SpawnUnit(types.UnitStandard, types.Position{}); h == types.InvalidUnitHandle {
		t.Error("Expected spawn to succeed after a unit was removed")
	}

	f.SetMaxUnits(-5)
	if f.maxUnits != 0 {
		t.Errorf("Negative cap should mean unlimited, got %d", f.maxUnits)
	}
}

func TestDamage(t *testing.T) {
	f, em, _ := newTestFactory(config.DefaultDifficultyConfig())

	handle := f.SpawnUnit(types.UnitBoss, types.Position{})

	if !f.Damage(handle, 5) {
		t.Fatal("Expected damage to apply")
	}
	enemy, _ := ecs.GetComponent[*components.EnemyComponent](em, ecs.EntityID(handle))
	if enemy.Health != 15 {
		t.Errorf("Expected health 15, got %d", enemy.Health)
	}

	f.Damage(handle, 100)
	if enemy.Health != 0 {
		t.Errorf("Health must not go below 0, got %d", enemy.Health)
	}

	if f.Damage(types.UnitHandle(999), 1) {
		t.Error("Expected false for unknown unit")
	}

	em.DestroyEntity(ecs.EntityID(handle))
	if f.Damage(handle, 1) {
		t.Error("Expected false for unit marked for destruction")
	}
}

func TestClear(t *testing.T) {
	f, em, notified := newTestFactory(config.DefaultDifficultyConfig())

	for i := 0; i < 5; i++ {
		f.SpawnUnit(types.UnitStandard, types.Position{})
	}

	if n := f.Clear(); n != 5 {
		t.Errorf("Expected 5 cleared units, got %d", n)
	}
	if f.UnitCount() != 0 {
		t.Errorf("Expected 0 units after Clear, got %d", f.UnitCount())
	}
	if *notified != 0 {
		t.Errorf("Clear must not notify destruction, got %d", *notified)
	}

	em.RemoveMarkedEntities()
	if em.EntityCount() != 0 {
		t.Errorf("Expected empty world, got %d entities", em.EntityCount())
	}
}
