package game

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// Stage 一个可运行的关卡（靶场、测试地图等）
//
// 与 Scene 协作者不同，Stage 是窗口层看到的整体：每帧 Update 一次、Draw 一次。
type Stage interface {
	// Update 推进关卡逻辑，deltaTime 为秒
	Update(deltaTime float64)

	// Draw 把关卡绘制到 screen
	Draw(screen *ebiten.Image)
}

// Saveable 可选接口：关卡在退出时保存状态
//
// 实现此接口的关卡会在以下时机被调用 SaveOnExit()：
//   - 游戏窗口关闭
//   - 切换到其它关卡之前
type Saveable interface {
	// SaveOnExit 保存玩家设置并关闭战斗日志
	// 返回 false 表示保存失败（程序仍会正常退出）
	SaveOnExit() bool
}
