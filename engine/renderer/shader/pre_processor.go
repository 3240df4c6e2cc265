package shader

import (
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-frame/engine/camera"
	"github.com/Carmen-Shannon/oxy-frame/engine/light"
)

// transformSource is one entry of the per-drawable transform buffers.
const transformSource = `struct Transform {
    model: mat4x4<f32>,
}`

// registryEntry pairs an injected WGSL struct declaration with its type name.
type registryEntry struct {
	Source string
	Type   string
}

type preProcessor struct {
	structRegistry       map[AnnotationArg]registryEntry
	addressSpaceRegistry map[AnnotationArg]string
	declarations         []Annotation
}

// PreProcessor expands @oxy: annotations in WGSL source.
type PreProcessor interface {
	// Process replaces include annotations with struct declarations and group annotations
	// with @group/@binding declarations. The declarations list is reset on every call.
	//
	// Parameters:
	//   - source: WGSL source with annotations
	//
	// Returns:
	//   - string: plain WGSL
	//   - error: a malformed annotation, with its line number
	Process(source string) (string, error)

	// Declarations returns the group annotations of the last Process call in source order.
	Declarations() []Annotation
}

var _ PreProcessor = &preProcessor{}

// NewPreProcessor creates a pre-processor that knows the engine uniform structs.
//
// Returns:
//   - PreProcessor: the pre-processor
func NewPreProcessor() PreProcessor {
	return &preProcessor{
		structRegistry: map[AnnotationArg]registryEntry{
			AnnotationArgCamera:      {Source: camera.GPUCameraUniformSource, Type: "CameraUniform"},
			AnnotationArgLight:       {Source: light.GPULightSource, Type: "Light"},
			AnnotationArgLightHeader: {Source: light.GPULightHeaderSource, Type: "LightHeader"},
			AnnotationArgTransform:   {Source: transformSource, Type: "Transform"},
		},
		addressSpaceRegistry: map[AnnotationArg]string{
			annotationArgStorageTypeUniform:   "var<uniform>",
			annotationArgStorageTypeRead:      "var<storage, read>",
			annotationArgStorageTypeReadWrite: "var<storage, read_write>",
		},
	}
}

func (p *preProcessor) Process(source string) (string, error) {
	p.declarations = p.declarations[:0]

	lines := strings.Split(source, "\n")
	out := make([]string, 0, len(lines))
	for i, line := range lines {
		a, err := parseAnnotation(line, i+1)
		if err != nil {
			return "", err
		}
		if a == nil {
			out = append(out, line)
			continue
		}

		switch a.Type {
		case annotationTypeInclude:
			out = append(out, p.structRegistry[a.Args[0]].Source)
		case AnnotationTypeBindingGroup:
			wgslType := p.structRegistry[a.Args[2]].Type
			if inner, ok := strings.CutPrefix(string(a.Args[2]), "array<"); ok {
				wgslType = fmt.Sprintf("array<%s>", p.structRegistry[AnnotationArg(strings.TrimSuffix(inner, ">"))].Type)
			}
			out = append(out, fmt.Sprintf("@group(%d) @binding(%d) %s %s: %s;",
				*a.Group, *a.Binding, p.addressSpaceRegistry[a.Args[0]], a.VarName(), wgslType))
			p.declarations = append(p.declarations, *a)
		}
	}
	return strings.Join(out, "\n"), nil
}

func (p *preProcessor) Declarations() []Annotation {
	return append([]Annotation(nil), p.declarations...)
}
