package scene

import (
	"github.com/Carmen-Shannon/oxy-frame/engine/render_queue"
	"github.com/Carmen-Shannon/oxy-frame/engine/task_splitter"
)

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options.
type SceneBuilderOption func(s *scene)

// WithName sets the scene's identifier.
//
// Parameters:
//   - name: the scene name
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithName(name string) SceneBuilderOption {
	return func(s *scene) {
		s.name = name
	}
}

// WithSplitter sets the splitter used for the visibility fan-out. Defaults to a splitter
// with one worker per CPU.
//
// Parameters:
//   - splitter: the splitter to use
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithSplitter(splitter task_splitter.Splitter) SceneBuilderOption {
	return func(s *scene) {
		s.splitter = splitter
	}
}

// WithAmbientColor sets the ambient color written into the light buffer header.
//
// Parameters:
//   - color: the ambient RGB color
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithAmbientColor(color [3]float32) SceneBuilderOption {
	return func(s *scene) {
		s.ambientColor = color
	}
}

// WithQueueType sets the queue type the scene rebuilds each frame. Defaults to
// render_queue.QueueColour.
//
// Parameters:
//   - t: the queue type
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithQueueType(t render_queue.QueueType) SceneBuilderOption {
	return func(s *scene) {
		s.queueType = t
	}
}

// WithDrawFunc sets the draw callback stored in every queue entry.
//
// Parameters:
//   - fn: the draw callback
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithDrawFunc(fn render_queue.DrawFunc) SceneBuilderOption {
	return func(s *scene) {
		s.drawFunc = fn
	}
}

// WithArenaCapacity preallocates the frame arena.
//
// Parameters:
//   - n: expected renderable count per frame
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithArenaCapacity(n int) SceneBuilderOption {
	return func(s *scene) {
		s.arena = render_queue.NewFrameArena(n)
	}
}
