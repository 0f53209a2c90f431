package debugui

import (
	"fmt"
	"time"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/AllenDang/cimgui-go/implot"
	"github.com/plus3/tilebloom/bloom"
	"github.com/plus3/tilebloom/ecs"
	"github.com/plus3/tilebloom/scene"
)

// BloomPanel shows frame timing, storage and scheduler statistics, and the
// live camera bloom, whose static parameters can be edited in place.
type BloomPanel struct {
	storage   *ecs.Storage
	scheduler *ecs.Scheduler
	systems   *scene.Systems
	cameras   *ecs.View[struct {
		*scene.Camera
		*bloom.Settings
	}]

	timer         *FrameTimer
	historyFrames int
	frameHistory  []float32
	frameIndex    int

	intensityHistory []float32
	boostHistory     []float32
}

func NewBloomPanel(storage *ecs.Storage, scheduler *ecs.Scheduler, systems *scene.Systems, historyFrames int) *BloomPanel {
	return &BloomPanel{
		storage:   storage,
		scheduler: scheduler,
		systems:   systems,
		cameras: ecs.NewView[struct {
			*scene.Camera
			*bloom.Settings
		}](storage),
		timer:         NewFrameTimer(),
		historyFrames: historyFrames,
		frameHistory:  make([]float32, historyFrames),

		intensityHistory: make([]float32, historyFrames),
		boostHistory:     make([]float32, historyFrames),
	}
}

// Spawn adds the panel to storage as an ImguiItem.
func (p *BloomPanel) Spawn() ecs.EntityId {
	return p.storage.Spawn(ImguiItem{Render: p.Render})
}

func (p *BloomPanel) Render() {
	p.frameHistory[p.frameIndex] = p.timer.GetDeltaTime() * 1000.0
	for camera := range p.cameras.Values() {
		p.intensityHistory[p.frameIndex] = camera.Settings.Intensity
		p.boostHistory[p.frameIndex] = camera.Settings.LowFrequencyBoost
	}
	p.frameIndex = (p.frameIndex + 1) % p.historyFrames

	imgui.SetNextWindowPosV(imgui.NewVec2(10, 10), imgui.CondOnce, imgui.NewVec2(0, 0))
	imgui.SetNextWindowSizeV(imgui.NewVec2(320, 420), imgui.CondOnce)
	if !imgui.BeginV("tilebloom", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	var avgFrameTime float32
	for _, ft := range p.frameHistory {
		avgFrameTime += ft
	}
	avgFrameTime /= float32(p.historyFrames)
	imgui.Text(fmt.Sprintf("Avg Frame Time: %.2f ms (%.0f FPS)", avgFrameTime, 1000.0/avgFrameTime))
	imgui.PlotLinesFloatPtr("##frametime", &p.frameHistory[0], int32(len(p.frameHistory)))

	stats := p.storage.CollectStats()
	imgui.Text(fmt.Sprintf("Entities: %d in %d archetypes", stats.TotalEntityCount, stats.ArchetypeCount))
	imgui.Text(fmt.Sprintf("Frame: %d  Elapsed: %.1fs", p.scheduler.Frames(), p.scheduler.Elapsed()))

	if shots := p.systems.Screenshot; shots != nil {
		done := min(shots.Counter.Value(), shots.Limit)
		var fraction float32
		if shots.Limit > 0 {
			fraction = float32(done) / float32(shots.Limit)
		}
		imgui.ProgressBarV(fraction, imgui.NewVec2(-1, 0), fmt.Sprintf("%d/%d screenshots", done, shots.Limit))
	}

	imgui.Separator()
	for camera := range p.cameras.Values() {
		imgui.Text(fmt.Sprintf("Pulse: %.3f", p.systems.Bloom.Last))
		imgui.Text(fmt.Sprintf("Intensity: %.3f", camera.Settings.Intensity))
		imgui.Text(fmt.Sprintf("Low Frequency Boost: %.3f", camera.Settings.LowFrequencyBoost))
		imgui.Text(fmt.Sprintf("Tonemapping: %s  Mode: %s", camera.Camera.Tonemapping, camera.Settings.CompositeMode))
		imgui.Checkbox("HDR", &camera.Camera.HDR)
		imgui.InputFloat("Threshold", &camera.Settings.Prefilter.Threshold)
		imgui.InputFloat("Softness", &camera.Settings.Prefilter.ThresholdSoftness)
		imgui.InputFloat("High Pass", &camera.Settings.HighPassFrequency)
	}

	if imgui.TreeNodeStr("Bloom Over Time") {
		if implot.BeginPlotV("Bloom", imgui.NewVec2(-1, 160), 0) {
			implot.SetupAxesV("Frame", "Value", 0, implot.AxisFlagsAutoFit)
			implot.PlotLineFloatPtrInt("Intensity", &p.intensityHistory[0], int32(len(p.intensityHistory)))
			implot.PlotLineFloatPtrInt("Low Frequency Boost", &p.boostHistory[0], int32(len(p.boostHistory)))
			implot.EndPlot()
		}
		imgui.TreePop()
	}

	if imgui.TreeNodeStr("Systems") {
		const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg
		if imgui.BeginTableV("SystemsTable", 3, tableFlags, imgui.NewVec2(0, 0), 0) {
			imgui.TableSetupColumn("System")
			imgui.TableSetupColumn("Runs")
			imgui.TableSetupColumn("Avg")
			imgui.TableHeadersRow()

			for _, sys := range p.scheduler.GetStats().Systems {
				imgui.TableNextRow()
				imgui.TableNextColumn()
				imgui.Text(sys.Name)
				imgui.TableNextColumn()
				imgui.Text(fmt.Sprintf("%d", sys.ExecutionCount))
				imgui.TableNextColumn()
				imgui.Text(sys.AvgDuration.String())
			}
			imgui.EndTable()
		}
		imgui.TreePop()
	}

	if imgui.TreeNodeStr("Singletons") {
		for _, singletonType := range stats.SingletonTypes {
			imgui.BulletText(singletonType)
		}
		imgui.TreePop()
	}

	imgui.End()
}

type FrameTimer struct {
	lastFrameTime time.Time
}

func NewFrameTimer() *FrameTimer {
	return &FrameTimer{
		lastFrameTime: time.Now(),
	}
}

func (ft *FrameTimer) GetDeltaTime() float32 {
	now := time.Now()
	delta := float32(now.Sub(ft.lastFrameTime).Seconds())
	ft.lastFrameTime = now
	return delta
}
