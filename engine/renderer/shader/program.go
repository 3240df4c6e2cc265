package shader

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-frame/common"
	"github.com/Carmen-Shannon/oxy-frame/engine/renderer/device"
	"github.com/gogpu/naga"
	vk "github.com/vulkan-go/vulkan"
)

var (
	// ErrCompile wraps WGSL to SPIR-V failures.
	ErrCompile = errors.New("shader: compile failed")

	// ErrNoVertexEntry is returned for source without a @vertex entry point.
	ErrNoVertexEntry = errors.New("shader: no vertex entry point")
)

// ShaderType is the pipeline stage a module entry point runs in.
type ShaderType int

const (
	// ShaderTypeVertex is the vertex stage.
	ShaderTypeVertex ShaderType = iota

	// ShaderTypeFragment is the fragment stage.
	ShaderTypeFragment
)

// StageBit returns the Vulkan stage bit.
func (t ShaderType) StageBit() vk.ShaderStageFlagBits {
	if t == ShaderTypeFragment {
		return vk.ShaderStageFragmentBit
	}
	return vk.ShaderStageVertexBit
}

// Stage is one entry point of a shader module.
type Stage struct {
	Type       ShaderType
	Module     vk.ShaderModule
	EntryPoint string
}

type program struct {
	key          string
	stages       []Stage
	inputs       []InputBinding
	reflection   Reflection
	declarations []Annotation

	dev     device.Device
	modules []vk.ShaderModule
	once    *sync.Once
}

// Program is a set of compiled stages plus the vertex input they expect. Immutable.
type Program interface {
	// Key returns the program name.
	Key() string

	// Stages returns the stages in pipeline order.
	Stages() []Stage

	// Stage looks up one stage.
	//
	// Parameters:
	//   - t: the stage type
	//
	// Returns:
	//   - Stage: the stage
	//   - bool: false if the program has no such stage
	Stage(t ShaderType) (Stage, bool)

	// Inputs returns the vertex input bindings, in declaration order.
	Inputs() []InputBinding

	// Reflection returns what was reflected from the source. Empty for programs built
	// with NewProgram.
	Reflection() Reflection

	// Declarations returns the @oxy:group declarations of the source.
	Declarations() []Annotation

	// Destroy releases the shader modules the program compiled. Modules handed to
	// NewProgram stay with the caller.
	Destroy()
}

var _ Program = &program{}

// NewProgram wraps already created shader modules.
//
// Parameters:
//   - key: the program name
//   - stages: the stages
//   - inputs: the vertex input bindings
//
// Returns:
//   - Program: the program
func NewProgram(key string, stages []Stage, inputs []InputBinding) Program {
	return &program{
		key:    key,
		stages: append([]Stage(nil), stages...),
		inputs: append([]InputBinding(nil), inputs...),
		once:   &sync.Once{},
	}
}

// Compile pre-processes WGSL source, reflects it, compiles it to SPIR-V and creates one
// shader module serving the vertex stage and, when present, the fragment stage.
//
// Parameters:
//   - dev: the device
//   - key: the program name
//   - source: WGSL source, may contain @oxy: annotations
//
// Returns:
//   - Program: the program, owning its module
//   - error: an annotation error, ErrNoVertexEntry, ErrCompile, ErrUnsupportedVertexFormat
//     or a device error
func Compile(dev device.Device, key, source string) (Program, error) {
	pp := NewPreProcessor()
	processed, err := pp.Process(source)
	if err != nil {
		return nil, fmt.Errorf("shader %s: %w", key, err)
	}

	reflection := Reflect(processed)
	if reflection.VertexEntry == "" {
		return nil, fmt.Errorf("shader %s: %w", key, ErrNoVertexEntry)
	}
	inputs, err := InputBindings(reflection.VertexLayouts)
	if err != nil {
		return nil, fmt.Errorf("shader %s: %w", key, err)
	}

	code, err := compileSPIRV(processed)
	if err != nil {
		return nil, fmt.Errorf("shader %s: %w", key, err)
	}
	module, err := dev.CreateShaderModule(code)
	if err != nil {
		return nil, fmt.Errorf("shader %s: %w", key, err)
	}

	stages := []Stage{{Type: ShaderTypeVertex, Module: module, EntryPoint: reflection.VertexEntry}}
	if reflection.FragmentEntry != "" {
		stages = append(stages, Stage{Type: ShaderTypeFragment, Module: module, EntryPoint: reflection.FragmentEntry})
	}
	common.Logger().Debug("shader compiled",
		"key", key,
		"words", len(code),
		"inputs", len(inputs),
		"bindings", len(reflection.Bindings),
	)

	return &program{
		key:          key,
		stages:       stages,
		inputs:       inputs,
		reflection:   reflection,
		declarations: pp.Declarations(),
		dev:          dev,
		modules:      []vk.ShaderModule{module},
		once:         &sync.Once{},
	}, nil
}

// compileSPIRV compiles WGSL with naga and returns little-endian SPIR-V words.
func compileSPIRV(source string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(source)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCompile, err)
	}
	if len(spirvBytes)%4 != 0 {
		return nil, fmt.Errorf("%w: %d bytes is not a whole number of words", ErrCompile, len(spirvBytes))
	}

	words := make([]uint32, len(spirvBytes)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(spirvBytes[i*4:])
	}
	return words, nil
}

func (p *program) Key() string {
	return p.key
}

func (p *program) Stages() []Stage {
	return append([]Stage(nil), p.stages...)
}

func (p *program) Stage(t ShaderType) (Stage, bool) {
	for _, s := range p.stages {
		if s.Type == t {
			return s, true
		}
	}
	return Stage{}, false
}

func (p *program) Inputs() []InputBinding {
	return append([]InputBinding(nil), p.inputs...)
}

func (p *program) Reflection() Reflection {
	return p.reflection
}

func (p *program) Declarations() []Annotation {
	return append([]Annotation(nil), p.declarations...)
}

func (p *program) Destroy() {
	p.once.Do(func() {
		if p.dev == nil {
			return
		}
		for _, m := range p.modules {
			p.dev.DestroyShaderModule(m)
		}
	})
}
