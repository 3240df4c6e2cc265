package engine

import (
	"log/slog"
	"sync"

	"github.com/Carmen-Shannon/oxy-frame/common"
	"github.com/Carmen-Shannon/oxy-frame/engine/camera"
	"github.com/Carmen-Shannon/oxy-frame/engine/config"
	"github.com/Carmen-Shannon/oxy-frame/engine/renderer"
	"github.com/Carmen-Shannon/oxy-frame/engine/renderer/device"
	"github.com/Carmen-Shannon/oxy-frame/engine/renderer/render_pass"
	"github.com/Carmen-Shannon/oxy-frame/engine/scene"
	"github.com/Carmen-Shannon/oxy-frame/engine/task_splitter"
	"github.com/Carmen-Shannon/oxy-frame/engine/world"
)

// Context carries the collaborators every frame subsystem is built from.
//
// Engine packages log through the process-wide common.Logger. A context installs its
// logger there on creation and owns that slot until Close, so only one context should be
// live at a time; contexts that do overlap must be closed in reverse order.
type Context struct {
	Device   device.Device
	Logger   *slog.Logger
	Splitter task_splitter.Splitter
	Config   config.Config

	previousLogger *slog.Logger
	closeOnce      *sync.Once
}

// NewContext creates a Context on dev configured by cfg and installs logger as the engine
// logger. A nil logger keeps the engine silent.
//
// Parameters:
//   - dev: the graphics device
//   - cfg: the engine configuration
//   - logger: the logger, may be nil
//
// Returns:
//   - *Context: the context, to be released with Close
func NewContext(dev device.Device, cfg config.Config, logger *slog.Logger) *Context {
	installed, previous := common.ReplaceLogger(logger)

	opts := []task_splitter.SplitterBuilderOption{
		task_splitter.WithChunkThreshold(cfg.Splitter.ChunkThreshold),
		task_splitter.WithPersistentWorkers(true),
	}
	if cfg.Splitter.Workers > 0 {
		opts = append(opts, task_splitter.WithWorkers(cfg.Splitter.Workers))
	}

	return &Context{
		Device:         dev,
		Logger:         installed,
		Splitter:       task_splitter.NewSplitter(opts...),
		Config:         cfg,
		previousLogger: previous,
		closeOnce:      &sync.Once{},
	}
}

// Close stops the splitter's worker pool and reinstates the engine logger that was current
// before NewContext, unless another context has replaced it since. Scenes built from the
// context keep working with per-call goroutines. Safe to call more than once.
func (c *Context) Close() {
	c.closeOnce.Do(func() {
		c.Splitter.Close()
		if !common.RestoreLogger(c.Logger, c.previousLogger) {
			c.Logger.Debug("engine: context closed while another context owns the logger")
		}
	})
}

// NewScene creates a scene culling on the context's splitter.
//
// Parameters:
//   - w: the object graph
//   - cam: the camera
//   - options: further scene options
//
// Returns:
//   - scene.Scene: the scene
func (c *Context) NewScene(w *world.World, cam camera.Camera, options ...scene.SceneBuilderOption) scene.Scene {
	opts := append([]scene.SceneBuilderOption{scene.WithSplitter(c.Splitter)}, options...)
	return scene.NewScene(w, cam, opts...)
}

// NewRenderer creates a renderer on the context's device whose default pass follows the
// configured extent and clear values.
//
// Parameters:
//   - options: further renderer options, e.g. renderer.WithPassFactory
//
// Returns:
//   - renderer.Renderer: the renderer
func (c *Context) NewRenderer(options ...renderer.RendererBuilderOption) renderer.Renderer {
	passFactory := renderer.DefaultPassFactory(
		render_pass.WithClearColour(c.Config.Render.ClearColour),
		render_pass.WithDepthClear(c.Config.Render.DepthClear),
	)
	opts := append([]renderer.RendererBuilderOption{
		renderer.WithPassFactory(passFactory),
		renderer.WithExtent(uint32(c.Config.Window.Width), uint32(c.Config.Window.Height)),
	}, options...)
	return renderer.NewRenderer(c.Device, opts...)
}
