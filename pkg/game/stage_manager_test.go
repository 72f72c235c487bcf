package game

import (
	"errors"
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
)

// mockStage 记录调用情况
type mockStage struct {
	updateCalled bool
	drawCalled   bool
	deltaTime    float64
	saved        int
	saveResult   bool
}

func (m *mockStage) Update(deltaTime float64) {
	m.updateCalled = true
	m.deltaTime = deltaTime
}

func (m *mockStage) Draw(screen *ebiten.Image) {
	m.drawCalled = true
}

func (m *mockStage) SaveOnExit() bool {
	m.saved++
	return m.saveResult
}

func TestNewStageManager(t *testing.T) {
	sm := NewStageManager()
	if stage, name := sm.Current(); stage != nil || name != "" {
		t.Error("Expected no active stage initially")
	}
	// 没有关卡时调用是安全的
	sm.Update(0.016)
	sm.Draw(nil)
	if !sm.SaveOnExit() {
		t.Error("SaveOnExit with no stage should succeed")
	}
}

func TestStageManagerUpdateAndDraw(t *testing.T) {
	sm := NewStageManager()
	stage := &mockStage{}
	sm.SwitchTo("range", stage)

	sm.Update(0.016)
	sm.Draw(nil)

	if !stage.updateCalled || stage.deltaTime != 0.016 {
		t.Errorf("Update not forwarded: called=%v dt=%v", stage.updateCalled, stage.deltaTime)
	}
	if !stage.drawCalled {
		t.Error("Draw not forwarded")
	}
}

func TestStageManagerSwitchSavesPrevious(t *testing.T) {
	sm := NewStageManager()
	first := &mockStage{saveResult: true}
	second := &mockStage{saveResult: true}

	sm.SwitchTo("a", first)
	sm.SwitchTo("a", first)
	if first.saved != 0 {
		t.Errorf("re-selecting the same stage must not save, got %d", first.saved)
	}

	sm.SwitchTo("b", second)
	if first.saved != 1 {
		t.Errorf("Expected previous stage saved once, got %d", first.saved)
	}
	if _, name := sm.Current(); name != "b" {
		t.Errorf("Expected current stage b, got %q", name)
	}
}

func TestStageManagerLoad(t *testing.T) {
	sm := NewStageManager()
	if err := sm.Load("range"); !errors.Is(err, ErrNoStageFactory) {
		t.Fatalf("Expected ErrNoStageFactory, got %v", err)
	}

	errUnknown := errors.New("unknown stage")
	sm.SetStageFactory(func(name string) (Stage, error) {
		if name != "range" {
			return nil, errUnknown
		}
		return &mockStage{}, nil
	})

	if err := sm.Load("range"); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	before, _ := sm.Current()

	if err := sm.Load("missing"); !errors.Is(err, errUnknown) {
		t.Errorf("Expected factory error, got %v", err)
	}
	if after, name := sm.Current(); after != before || name != "range" {
		t.Error("failed load must keep the current stage")
	}
}

func TestStageManagerSaveOnExitFailure(t *testing.T) {
	sm := NewStageManager()
	sm.SwitchTo("range", &mockStage{saveResult: false})
	if sm.SaveOnExit() {
		t.Error("Expected SaveOnExit to report failure")
	}
}
