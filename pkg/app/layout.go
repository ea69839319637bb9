package app

import (
	"github.com/decker502/wavesched/pkg/components"
	"github.com/decker502/wavesched/pkg/ecs"
	"github.com/decker502/wavesched/pkg/types"
)

// 路径布局常量
const (
	pathEndX       = ScreenWidth - 40
	markerSize     = 14.0
	bossMarkerSize = 24.0
	laneSpread     = 12.0 // 同一位置的单位按实体ID上下错开
)

// unitMarker 单位在屏幕上的绘制信息
type unitMarker struct {
	handle      types.UnitHandle
	kind        types.UnitKind
	x, y        float64
	size        float64
	healthRatio float64
}

// unitMarkers 计算所有存活单位的屏幕位置
// 单位沿直线路径从生成点移动到终点，进度由生命周期决定
func (a *App) unitMarkers() []unitMarker {
	ids := ecs.GetEntitiesWith3[*components.EnemyComponent, *components.PositionComponent, *components.LifetimeComponent](a.entityManager)
	markers := make([]unitMarker, 0, len(ids))

	for _, id := range ids {
		if a.entityManager.IsMarkedForDestruction(id) {
			continue
		}
		enemy, _ := ecs.GetComponent[*components.EnemyComponent](a.entityManager, id)
		pos, _ := ecs.GetComponent[*components.PositionComponent](a.entityManager, id)

		lifetime, _ := ecs.GetComponent[*components.LifetimeComponent](a.entityManager, id)
		progress := lifetime.Progress()

		size := markerSize
		if enemy.Kind == types.UnitBoss {
			size = bossMarkerSize
		}

		x := pos.X + progress*(pathEndX-pos.X)
		y := pos.Y + float64(int(id)%5-2)*laneSpread

		markers = append(markers, unitMarker{
			handle:      types.UnitHandle(id),
			kind:        enemy.Kind,
			x:           x - size/2,
			y:           y - size/2,
			size:        size,
			healthRatio: enemyHealthRatio(enemy),
		})
	}

	return markers
}

// UnitAt 返回覆盖屏幕坐标 (x, y) 的单位
// 多个单位重叠时返回最后绘制（最上层）的那个
func (a *App) UnitAt(x, y float64) (types.UnitHandle, bool) {
	markers := a.unitMarkers()
	for i := len(markers) - 1; i >= 0; i-- {
		m := markers[i]
		if x >= m.x && x <= m.x+m.size && y >= m.y && y <= m.y+m.size {
			return m.handle, true
		}
	}
	return types.InvalidUnitHandle, false
}
