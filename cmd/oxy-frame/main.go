// Command oxy-frame opens a window, builds a grid of cubes and runs the frame pipeline
// against a Vulkan device: culling, queue building, uniform staging and queue replay.
package main

import (
	_ "embed"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/Carmen-Shannon/oxy-frame/common"
	"github.com/Carmen-Shannon/oxy-frame/engine"
	"github.com/Carmen-Shannon/oxy-frame/engine/camera"
	"github.com/Carmen-Shannon/oxy-frame/engine/config"
	"github.com/Carmen-Shannon/oxy-frame/engine/drawable"
	"github.com/Carmen-Shannon/oxy-frame/engine/render_queue"
	"github.com/Carmen-Shannon/oxy-frame/engine/renderer/device"
	"github.com/Carmen-Shannon/oxy-frame/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-frame/engine/renderer/render_pass"
	"github.com/Carmen-Shannon/oxy-frame/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-frame/engine/scene"
	"github.com/Carmen-Shannon/oxy-frame/engine/window"
	"github.com/Carmen-Shannon/oxy-frame/engine/world"
	vk "github.com/vulkan-go/vulkan"
)

//go:embed shaders/lit.wgsl
var litShader string

const cubeSpacing = 3.0

func main() {
	configPath := flag.String("config", "", "path to a YAML engine configuration")
	frames := flag.Uint64("frames", 0, "stop after this many frames (0 = until the window closes)")
	grid := flag.Int("grid", 32, "cubes per side of the grid")
	flag.Parse()

	if err := run(*configPath, *frames, *grid); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath string, frames uint64, grid int) error {
	cfg := config.Default()
	if configPath != "" {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			return err
		}
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Level()}))

	win, err := window.NewWindow(
		window.WithTitle(cfg.Window.Title),
		window.WithSize(cfg.Window.Width, cfg.Window.Height),
	)
	if err != nil {
		return err
	}
	defer win.Close()

	vkCtx, err := device.NewVulkanContext(win.InstanceProcAddr(), win.RequiredInstanceExtensions(),
		device.WithApplicationName(cfg.Window.Title),
	)
	if err != nil {
		return err
	}
	defer vkCtx.Destroy()

	width, height := win.Size()
	cfg.Window.Width, cfg.Window.Height = width, height
	ctx := engine.NewContext(vkCtx.Device(), cfg, logger)
	defer ctx.Close()

	program, err := shader.Compile(ctx.Device, "lit", litShader)
	if err != nil {
		return err
	}
	defer program.Destroy()

	layout := pipeline.NewLayout(ctx.Device,
		pipeline.WithReflectedSets(program.Reflection()),
		pipeline.WithPushConstant(vk.ShaderStageFlags(vk.ShaderStageVertexBit), 0, 4),
	)
	defer layout.Destroy()

	r := ctx.NewRenderer()
	defer r.Destroy()
	if err := r.Prepare(); err != nil {
		return err
	}
	err = r.RegisterPipelineFactory(render_queue.QueueColour, func(dev device.Device, pass render_pass.Pass) (pipeline.Pipeline, error) {
		return pipeline.Build(dev, pass, program,
			pipeline.WithLayout(layout),
			pipeline.WithDepthWriteEnabled(true),
			pipeline.WithDynamicViewport(),
		)
	})
	if err != nil {
		return err
	}

	w, err := buildGrid(grid)
	if err != nil {
		return err
	}
	cam := camera.NewCamera(
		camera.WithPosition(0, cubeSpacing*float32(grid)/2, cubeSpacing*float32(grid)),
		camera.WithTarget(0, 0, 0),
		camera.WithAspect(float32(width)/float32(height)),
	)

	var draws int
	s := ctx.NewScene(w, cam, scene.WithDrawFunc(func(render_queue.DrawContext, *render_queue.Renderable) error {
		draws++
		return nil
	}))

	eng := engine.NewEngine(ctx, engine.WithWindow(win), engine.WithMaxFrames(frames))
	win.SetKeyDownCallback(func(key uint32) {
		// GLFW key codes match ASCII for letters
		if key == 'Q' {
			eng.Quit()
		}
	})

	err = eng.Run(s, r)
	common.Logger().Info("demo finished", "frames", eng.Frames(), "draws", draws)
	return err
}

// buildGrid places grid*grid unit cubes on the XZ plane under one root, cycling through
// four materials and marking every third cube as skinned.
func buildGrid(grid int) (*world.World, error) {
	w := world.New(world.WithCapacity(grid*grid + 1))
	root, err := w.AddNode(world.NoParent)
	if err != nil {
		return nil, fmt.Errorf("grid root: %w", err)
	}

	offset := cubeSpacing * float32(grid-1) / 2
	cube := common.AABB{Min: [3]float32{-0.5, -0.5, -0.5}, Max: [3]float32{0.5, 0.5, 0.5}}
	for i := range grid * grid {
		d := drawable.Drawable{
			LocalBox:   cube,
			MaterialID: uint32(i % 4),
			Variant:    drawable.VariantHasNormal,
		}
		if i%3 == 0 {
			d.Variant |= drawable.VariantHasSkin
		}
		dh, err := w.Drawables().Add(d)
		if err != nil {
			return nil, fmt.Errorf("cube %d: %w", i, err)
		}

		var m [16]float32
		x := float32(i%grid)*cubeSpacing - offset
		z := float32(i/grid)*cubeSpacing - offset
		common.BuildModelMatrix(m[:], x, 0, z, 0, 0, 0, 1, 1, 1)
		h, err := w.AddNode(root, world.WithTransform(m))
		if err != nil {
			return nil, fmt.Errorf("cube %d: %w", i, err)
		}
		if err := w.AttachDrawable(h, dh); err != nil {
			return nil, fmt.Errorf("cube %d: %w", i, err)
		}
	}
	w.UpdateTransforms()
	return w, nil
}
