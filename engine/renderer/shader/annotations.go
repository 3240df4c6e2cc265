// annotations.go defines the @oxy: annotations understood by the pre-processor. An annotation
// is a single-line WGSL comment:
//
//	//@oxy:include <struct_type>
//	//@oxy:group <group> <binding> <address_space> <var_name> <struct_type | array<struct_type>>
//
// include injects the WGSL declaration of an engine uniform struct; group emits the matching
// @group/@binding declaration and is recorded so the renderer can match bindings to the
// uniform payloads the scene produces.
package shader

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

const annotationPrefix = "@oxy:"

// AnnotationType identifies the kind of annotation.
type AnnotationType string

const (
	annotationTypeInclude AnnotationType = "include"

	// AnnotationTypeBindingGroup emits a @group/@binding declaration and is kept in the
	// declarations list.
	AnnotationTypeBindingGroup AnnotationType = "group"
)

// AnnotationArg is an annotation argument.
type AnnotationArg string

// Struct types that can be included or bound.
const (
	AnnotationArgCamera      AnnotationArg = "camera"
	AnnotationArgLight       AnnotationArg = "light"
	AnnotationArgLightHeader AnnotationArg = "light_header"
	AnnotationArgTransform   AnnotationArg = "transform"
)

// Address spaces accepted by group annotations.
const (
	annotationArgStorageTypeUniform   AnnotationArg = "storage_uniform"
	annotationArgStorageTypeRead      AnnotationArg = "storage_read"
	annotationArgStorageTypeReadWrite AnnotationArg = "storage_read_write"
)

var validStructTypes = []AnnotationArg{
	AnnotationArgCamera,
	AnnotationArgLight,
	AnnotationArgLightHeader,
	AnnotationArgTransform,
}

var validAddressSpaces = []AnnotationArg{
	annotationArgStorageTypeUniform,
	annotationArgStorageTypeRead,
	annotationArgStorageTypeReadWrite,
}

// Annotation is one parsed annotation.
type Annotation struct {
	Type AnnotationType

	// Args holds, for include: [0] struct type. For group: [0] address space, [1] variable
	// name, [2] struct type.
	Args []AnnotationArg

	// Line is the 1-based source line.
	Line int

	// Group and Binding are set for group annotations only.
	Group   *int
	Binding *int
}

// VarName returns the variable name of a group annotation.
//
// Returns:
//   - string: the variable name, empty for other annotation types
func (a Annotation) VarName() string {
	if a.Type != AnnotationTypeBindingGroup || len(a.Args) < 2 {
		return ""
	}
	return string(a.Args[1])
}

// parseAnnotation parses line. It returns nil, nil for lines that are not annotations.
func parseAnnotation(line string, lineNum int) (*Annotation, error) {
	trimmed := strings.TrimSpace(line)
	rest, ok := strings.CutPrefix(trimmed, "//")
	if !ok {
		return nil, nil
	}
	_, after, ok := strings.Cut(strings.TrimSpace(rest), annotationPrefix)
	if !ok {
		return nil, nil
	}

	args := strings.Fields(after)
	if len(args) == 0 {
		return nil, fmt.Errorf("line %d: empty @oxy annotation", lineNum)
	}

	switch AnnotationType(args[0]) {
	case annotationTypeInclude:
		if len(args) != 2 {
			return nil, fmt.Errorf("line %d: @oxy:include takes exactly one argument", lineNum)
		}
		if !slices.Contains(validStructTypes, AnnotationArg(args[1])) {
			return nil, fmt.Errorf("line %d: unknown struct type %q in @oxy:include", lineNum, args[1])
		}
		return &Annotation{
			Type: annotationTypeInclude,
			Args: []AnnotationArg{AnnotationArg(args[1])},
			Line: lineNum,
		}, nil

	case AnnotationTypeBindingGroup:
		if len(args) != 6 {
			return nil, fmt.Errorf("line %d: @oxy:group takes group, binding, address space, name and type", lineNum)
		}
		group, err := strconv.Atoi(args[1])
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid group %q: %w", lineNum, args[1], err)
		}
		binding, err := strconv.Atoi(args[2])
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid binding %q: %w", lineNum, args[2], err)
		}
		if !slices.Contains(validAddressSpaces, AnnotationArg(args[3])) {
			return nil, fmt.Errorf("line %d: unknown address space %q", lineNum, args[3])
		}
		elem := args[5]
		if inner, ok := strings.CutPrefix(elem, "array<"); ok {
			elem = strings.TrimSuffix(inner, ">")
		}
		if !slices.Contains(validStructTypes, AnnotationArg(elem)) {
			return nil, fmt.Errorf("line %d: unknown struct type %q in @oxy:group", lineNum, args[5])
		}
		return &Annotation{
			Type:    AnnotationTypeBindingGroup,
			Args:    []AnnotationArg{AnnotationArg(args[3]), AnnotationArg(args[4]), AnnotationArg(args[5])},
			Line:    lineNum,
			Group:   &group,
			Binding: &binding,
		}, nil
	}

	return nil, fmt.Errorf("line %d: unknown @oxy annotation type %q", lineNum, args[0])
}
