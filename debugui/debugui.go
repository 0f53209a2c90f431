// Package debugui draws a Dear ImGui overlay from ECS entities. Each entity
// with an ImguiItem contributes one render function per frame.
package debugui

import (
	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/tilebloom/ecs"
)

// ImguiItem holds a function that issues ImGui calls.
type ImguiItem struct {
	Render func()
}

// ImguiInputState records whether ImGui wants the mouse or keyboard this frame.
type ImguiInputState struct {
	WantCaptureMouse    bool
	WantCaptureKeyboard bool
}

// ImguiSystem defers every item's Render until the end of the frame, inside
// the backend's Begin/End pair.
type ImguiSystem struct {
	Items      ecs.Query[struct{ *ImguiItem }]
	InputState ecs.Singleton[ImguiInputState]
}

func (i *ImguiSystem) Execute(frame *ecs.UpdateFrame) {
	state := i.InputState.Get()
	state.WantCaptureMouse = imgui.CurrentIO().WantCaptureMouse()
	state.WantCaptureKeyboard = imgui.CurrentIO().WantCaptureKeyboard()

	for item := range i.Items.Values() {
		frame.Commands.Defer(item.ImguiItem.Render)
	}
}

// Install registers ImguiItem on the storage, adds the input state singleton
// and appends an ImguiSystem to scheduler.
func Install(storage *ecs.Storage, scheduler *ecs.Scheduler) {
	ecs.RegisterComponent[ImguiItem](storage.Registry())
	ecs.NewSingleton[ImguiInputState](storage)
	scheduler.Register(&ImguiSystem{})
}
