package shader

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
	vk "github.com/vulkan-go/vulkan"
)

// wgslVertexFormatMap maps WGSL vertex input types to their wgpu vertex format and byte size.
var wgslVertexFormatMap = map[string]vertexFormatInfo{
	"f32":       {wgpu.VertexFormatFloat32, 4},
	"vec2f":     {wgpu.VertexFormatFloat32x2, 8},
	"vec2<f32>": {wgpu.VertexFormatFloat32x2, 8},
	"vec3f":     {wgpu.VertexFormatFloat32x3, 12},
	"vec3<f32>": {wgpu.VertexFormatFloat32x3, 12},
	"vec4f":     {wgpu.VertexFormatFloat32x4, 16},
	"vec4<f32>": {wgpu.VertexFormatFloat32x4, 16},
	"i32":       {wgpu.VertexFormatSint32, 4},
	"vec2i":     {wgpu.VertexFormatSint32x2, 8},
	"vec2<i32>": {wgpu.VertexFormatSint32x2, 8},
	"vec3i":     {wgpu.VertexFormatSint32x3, 12},
	"vec3<i32>": {wgpu.VertexFormatSint32x3, 12},
	"vec4i":     {wgpu.VertexFormatSint32x4, 16},
	"vec4<i32>": {wgpu.VertexFormatSint32x4, 16},
	"u32":       {wgpu.VertexFormatUint32, 4},
	"vec2u":     {wgpu.VertexFormatUint32x2, 8},
	"vec2<u32>": {wgpu.VertexFormatUint32x2, 8},
	"vec3u":     {wgpu.VertexFormatUint32x3, 12},
	"vec3<u32>": {wgpu.VertexFormatUint32x3, 12},
	"vec4u":     {wgpu.VertexFormatUint32x4, 16},
	"vec4<u32>": {wgpu.VertexFormatUint32x4, 16},
	"vec2<f16>": {wgpu.VertexFormatFloat16x2, 4},
	"vec2h":     {wgpu.VertexFormatFloat16x2, 4},
	"vec4<f16>": {wgpu.VertexFormatFloat16x4, 8},
	"vec4h":     {wgpu.VertexFormatFloat16x4, 8},
}

var (
	// structBlockRegex matches struct declarations and captures the name and body
	structBlockRegex = regexp.MustCompile(`struct\s+(\w+)\s*\{([^}]*)\}`)

	// locationRegex matches @location(N) attributes
	locationRegex = regexp.MustCompile(`@location\((\d+)\)`)

	// builtinRegex matches @builtin(...) attributes
	builtinRegex = regexp.MustCompile(`@builtin\(\w+\)`)

	// fieldRegex captures the name and type of a struct field after its attributes.
	fieldRegex = regexp.MustCompile(`(?:(?:@\w+\([^)]*\)\s*)*)*\s*(\w+)\s*:\s*(.+)`)

	vertexEntryRegex   = regexp.MustCompile(`(?s)@vertex\b.*?\bfn\s+(\w+)`)
	fragmentEntryRegex = regexp.MustCompile(`(?s)@fragment\b.*?\bfn\s+(\w+)`)

	// bindingDeclRegex captures group, binding, optional address space, variable name and type
	// from declarations like: @group(0) @binding(0) var<uniform> camera: CameraUniform;
	bindingDeclRegex = regexp.MustCompile(`@group\((\d+)\)\s*@binding\((\d+)\)\s*var(?:<([^>]*)>)?\s+(\w+)\s*:\s*([^;]+?)\s*;`)
)

// Binding is one resource declared with @group/@binding.
type Binding struct {
	Group   uint32
	Binding uint32
	Name    string
	Type    vk.DescriptorType
	// Size is the byte size of the bound buffer type, or of one element for runtime-sized
	// arrays. Zero for textures and samplers.
	Size   uint64
	Stages vk.ShaderStageFlags
}

// Reflection is what the engine reads out of WGSL source to build pipelines.
type Reflection struct {
	VertexEntry   string
	FragmentEntry string

	// VertexLayouts holds one layout per vertex input struct, in declaration order. The
	// index of a layout is its vertex buffer binding.
	VertexLayouts []wgpu.VertexBufferLayout

	// Bindings is sorted by group then binding.
	Bindings []Binding
}

// DescriptorSetLayoutBindings returns the bindings of one group as Vulkan descriptor set
// layout bindings.
//
// Parameters:
//   - group: the @group index
//
// Returns:
//   - []vk.DescriptorSetLayoutBinding: the bindings, nil if the group is unused
func (r Reflection) DescriptorSetLayoutBindings(group uint32) []vk.DescriptorSetLayoutBinding {
	var out []vk.DescriptorSetLayoutBinding
	for _, b := range r.Bindings {
		if b.Group != group {
			continue
		}
		out = append(out, vk.DescriptorSetLayoutBinding{
			Binding:         b.Binding,
			DescriptorType:  b.Type,
			DescriptorCount: 1,
			StageFlags:      b.Stages,
		})
	}
	return out
}

// SetCount returns how many descriptor sets a pipeline layout needs to cover every group,
// including unused groups below the highest one.
func (r Reflection) SetCount() uint32 {
	var n uint32
	for _, b := range r.Bindings {
		if b.Group+1 > n {
			n = b.Group + 1
		}
	}
	return n
}

// Binding looks up a binding by variable name.
//
// Parameters:
//   - name: the WGSL variable name
//
// Returns:
//   - Binding: the binding
//   - bool: false if no binding has that name
func (r Reflection) Binding(name string) (Binding, bool) {
	for _, b := range r.Bindings {
		if b.Name == name {
			return b, true
		}
	}
	return Binding{}, false
}

// Reflect parses entry points, vertex input layouts and resource bindings out of WGSL source.
// Structs holding @location fields and no @builtin field are vertex inputs; structs with a
// type that has no vertex format are skipped.
//
// Parameters:
//   - source: the WGSL source, after pre-processing
//
// Returns:
//   - Reflection: the reflected interface
func Reflect(source string) Reflection {
	cleaned := stripComments(source)
	structs := parseStructBlocks(cleaned)

	return Reflection{
		VertexEntry:   parseEntryPoint(cleaned, vertexEntryRegex),
		FragmentEntry: parseEntryPoint(cleaned, fragmentEntryRegex),
		VertexLayouts: parseVertexLayouts(structs),
		Bindings:      parseBindings(cleaned, computeStructSizes(structs)),
	}
}

func parseVertexLayouts(structs []parsedStruct) []wgpu.VertexBufferLayout {
	var layouts []wgpu.VertexBufferLayout
	for _, ps := range structs {
		if !isVertexInputStruct(ps) {
			continue
		}
		if layout, ok := buildVertexBufferLayout(ps); ok {
			layouts = append(layouts, layout)
		}
	}
	return layouts
}

func parseBindings(source string, structSizes map[string]wgslTypeLayout) []Binding {
	var out []Binding
	for _, match := range bindingDeclRegex.FindAllStringSubmatch(source, -1) {
		group, _ := strconv.Atoi(match[1])
		binding, _ := strconv.Atoi(match[2])
		addressSpace := strings.TrimSpace(match[3])
		typeName := strings.TrimSpace(match[5])

		descriptorType, ok := classifyResource(addressSpace, typeName)
		if !ok {
			continue
		}
		b := Binding{
			Group:   uint32(group),
			Binding: uint32(binding),
			Name:    strings.TrimSpace(match[4]),
			Type:    descriptorType,
			Stages:  vk.ShaderStageFlags(vk.ShaderStageVertexBit | vk.ShaderStageFragmentBit),
		}
		if addressSpace != "" {
			if layout, ok := resolveTypeLayout(typeName, structSizes); ok {
				b.Size = layout.size
			}
		}
		out = append(out, b)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Group != out[j].Group {
			return out[i].Group < out[j].Group
		}
		return out[i].Binding < out[j].Binding
	})
	return out
}

func parseEntryPoint(source string, re *regexp.Regexp) string {
	if match := re.FindStringSubmatch(source); match != nil {
		return match[1]
	}
	return ""
}

func parseStructBlocks(source string) []parsedStruct {
	matches := structBlockRegex.FindAllStringSubmatch(source, -1)
	structs := make([]parsedStruct, 0, len(matches))
	for _, match := range matches {
		structs = append(structs, parsedStruct{
			name:   match[1],
			fields: parseStructFields(match[2]),
		})
	}
	return structs
}

func parseStructFields(body string) []parsedField {
	lines := splitAtTopLevelCommas(body)
	fields := make([]parsedField, 0, len(lines))

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		fm := fieldRegex.FindStringSubmatch(line)
		if fm == nil {
			continue
		}
		field := parsedField{
			name:      fm[1],
			typeName:  strings.TrimSpace(fm[2]),
			location:  -1,
			isBuiltin: builtinRegex.MatchString(line),
		}
		if loc := locationRegex.FindStringSubmatch(line); loc != nil {
			if n, err := strconv.Atoi(loc[1]); err == nil {
				field.location = n
			}
		}
		fields = append(fields, field)
	}
	return fields
}
