package engine

import (
	"fmt"
	"strings"

	v3 "github.com/deadsy/sdfx/vec/v3"
	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/voxelforge/voxelforge/pkg/mesh"
	"github.com/voxelforge/voxelforge/pkg/mesher"
	"github.com/voxelforge/voxelforge/pkg/voxel"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms DSL source code before passing it to
// zygomys. It performs two transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals,
//     which would conflict with user-defined variables of the same
//     name.
//
//  2. Kebab-case to underscore: remove-voxel -> remove_voxel
//     zygomys does not allow hyphens in identifiers (it interprets
//     them as the subtraction operator).
//
// Both transformations respect string literal boundaries and line
// comments.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Skip backtick-quoted string literals.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Convert ; line comments to // comments for zygomys.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Transform :keyword to "__kw_keyword".
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				kwName := string(b[i+1 : j])
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, []byte(kwName)...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Transform kebab-case identifiers: alpha-alpha -> alpha_alpha.
		// Only when hyphen sits between identifier characters (not a
		// minus operator).
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isIdentStartChar(c byte) bool {
	return isLetter(c)
}

// ---------------------------------------------------------------------------
// Custom Sexp types
// ---------------------------------------------------------------------------

// sexpVec3 wraps a vector so it can be passed between builtins.
type sexpVec3 struct {
	vec v3.Vec
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %.1f %.1f %.1f)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string. Returns the
// keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword
// argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				// Keyword at end with no value: treat as flag with nil.
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toBool extracts a boolean from a Sexp.
func toBool(s zygo.Sexp) (bool, error) {
	if b, ok := s.(*zygo.SexpBool); ok {
		return b.Val, nil
	}
	return false, fmt.Errorf("expected bool, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString extracts a keyword name or plain string from a Sexp.
// Handles both preprocessed keywords (__kw_center) and plain strings
// ("center").
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %T (%s)", s, s.SexpString(nil))
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], nil
	}
	return str.S, nil
}

// toAnchor converts a keyword or string to a voxel.Anchor.
func toAnchor(s zygo.Sexp) (voxel.Anchor, error) {
	name, err := toKeywordString(s)
	if err != nil {
		return 0, fmt.Errorf("expected anchor keyword: %w", err)
	}
	a, err := voxel.ParseAnchor(name)
	if err != nil {
		return 0, fmt.Errorf("invalid anchor %q: %w", name, err)
	}
	return a, nil
}

// toVec3 extracts a vector from a sexpVec3.
func toVec3(s zygo.Sexp) (v3.Vec, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return v3.Vec{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go
// slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

// ---------------------------------------------------------------------------
// Evaluation state
// ---------------------------------------------------------------------------

// evalState carries the model being built through one evaluation.
type evalState struct {
	model     *voxel.Model
	warnings  []voxel.Warning
	triangles []mesh.Triangle // from the last (mesh ...) form
}

func newEvalState() *evalState {
	return &evalState{}
}

// setTriangles keeps the output of the most recent (mesh ...) form.
func (st *evalState) setTriangles(tris []mesh.Triangle) {
	st.triangles = tris
}

// ensureModel lazily creates the default model: unit spacing, Y-up.
func (st *evalState) ensureModel() error {
	if st.model != nil {
		return nil
	}
	m, err := voxel.New(voxel.Dims{X: 1, Y: 1, Z: 1}, voxel.FrameYUp,
		voxel.WithWarningHandler(st.record))
	if err != nil {
		return err
	}
	st.model = m
	return nil
}

func (st *evalState) record(w voxel.Warning) {
	st.warnings = append(st.warnings, w)
}

func (st *evalState) result() *EvalResult {
	return &EvalResult{
		Model:     st.model,
		Triangles: st.triangles,
		Warnings:  st.warnings,
	}
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the voxel DSL builtins into a zygomys
// environment. The builtins mutate the evaluation state's model.
//
// Source code must be preprocessed with preprocessSource() before
// evaluation so that :keyword tokens are converted to recognizable
// string literals.
func registerBuiltins(env *zygo.Zlisp, st *evalState) {

	// -----------------------------------------------------------------------
	// (vec3 1 2 3)
	// -----------------------------------------------------------------------
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}
		x, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: x: %w", err)
		}
		y, err := toFloat64(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: y: %w", err)
		}
		z, err := toFloat64(args[2])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: z: %w", err)
		}
		return &sexpVec3{vec: v3.Vec{X: x, Y: y, Z: z}}, nil
	})

	// -----------------------------------------------------------------------
	// (model :spacing (vec3 1 1 1) :up :z-up)
	// Must appear before any voxel forms; it replaces the default model.
	// -----------------------------------------------------------------------
	env.AddFunction("model", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if st.model != nil && !st.model.Empty() {
			return zygo.SexpNull, fmt.Errorf("model: must be declared before any voxels")
		}
		pa := parseArgs(args)

		spacing := voxel.Dims{X: 1, Y: 1, Z: 1}
		if v, ok := pa.kw["spacing"]; ok {
			vec, err := toVec3(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("model: spacing: %w", err)
			}
			spacing = voxel.Dims{X: vec.X, Y: vec.Y, Z: vec.Z}
		}

		frame := voxel.FrameYUp
		if v, ok := pa.kw["up"]; ok {
			s, err := toKeywordString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("model: up: %w", err)
			}
			frame, err = voxel.ParseFrame(s)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("model: up: %w", err)
			}
		}

		m, err := voxel.New(spacing, frame, voxel.WithWarningHandler(st.record))
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("model: %w", err)
		}
		st.model = m
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (voxel 0 0 0 :anchor :center :dims (vec3 2 1 1))
	// -----------------------------------------------------------------------
	env.AddFunction("voxel", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if err := st.ensureModel(); err != nil {
			return zygo.SexpNull, err
		}
		pa := parseArgs(args)
		if len(pa.positional) != 3 {
			return zygo.SexpNull, fmt.Errorf("voxel requires x y z, got %d positional arguments", len(pa.positional))
		}

		var p [3]float64
		for i, a := range pa.positional {
			f, err := toFloat64(a)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("voxel: coordinate %d: %w", i, err)
			}
			p[i] = f
		}

		anchor := voxel.AnchorCornerNeg
		if v, ok := pa.kw["anchor"]; ok {
			a, err := toAnchor(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("voxel: %w", err)
			}
			anchor = a
		}

		if v, ok := pa.kw["dims"]; ok {
			vec, err := toVec3(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("voxel: dims: %w", err)
			}
			err = st.model.AddVoxelSized(p[0], p[1], p[2], anchor, voxel.Dims{X: vec.X, Y: vec.Y, Z: vec.Z})
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("voxel: %w", err)
			}
			return zygo.SexpNull, nil
		}

		if err := st.model.AddVoxel(p[0], p[1], p[2], anchor); err != nil {
			return zygo.SexpNull, fmt.Errorf("voxel: %w", err)
		}
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (voxels (list (vec3 0 0 0) (vec3 1 0 0)) :anchor :corner-neg
	//         :dims (vec3 1 2 1))
	// -----------------------------------------------------------------------
	env.AddFunction("voxels", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if err := st.ensureModel(); err != nil {
			return zygo.SexpNull, err
		}
		pa := parseArgs(args)
		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("voxels requires a list of points")
		}

		items, err := sexpListToSlice(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("voxels: %w", err)
		}
		points := make([]v3.Vec, 0, len(items))
		for i, item := range items {
			vec, err := toVec3(item)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("voxels: point %d: %w", i, err)
			}
			points = append(points, vec)
		}

		anchor := voxel.AnchorCornerNeg
		if v, ok := pa.kw["anchor"]; ok {
			a, err := toAnchor(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("voxels: %w", err)
			}
			anchor = a
		}

		if v, ok := pa.kw["dims"]; ok {
			vec, err := toVec3(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("voxels: dims: %w", err)
			}
			err = st.model.AddVoxelsSized(points, anchor, voxel.Dims{X: vec.X, Y: vec.Y, Z: vec.Z})
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("voxels: %w", err)
			}
			return zygo.SexpNull, nil
		}

		if err := st.model.AddVoxels(points, anchor); err != nil {
			return zygo.SexpNull, fmt.Errorf("voxels: %w", err)
		}
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (remove-voxel 0 0 0 :anchor :center)
	//
	// Registered as "remove_voxel"; the preprocessor converts the
	// kebab-case spelling in user source.
	// -----------------------------------------------------------------------
	env.AddFunction("remove_voxel", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if err := st.ensureModel(); err != nil {
			return zygo.SexpNull, err
		}
		pa := parseArgs(args)
		if len(pa.positional) != 3 {
			return zygo.SexpNull, fmt.Errorf("remove-voxel requires x y z, got %d positional arguments", len(pa.positional))
		}

		var p [3]float64
		for i, a := range pa.positional {
			f, err := toFloat64(a)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("remove-voxel: coordinate %d: %w", i, err)
			}
			p[i] = f
		}

		anchor := voxel.AnchorCornerNeg
		if v, ok := pa.kw["anchor"]; ok {
			a, err := toAnchor(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("remove-voxel: %w", err)
			}
			anchor = a
		}

		if err := st.model.RemoveVoxel(p[0], p[1], p[2], anchor); err != nil {
			return zygo.SexpNull, fmt.Errorf("remove-voxel: %w", err)
		}
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (clear)
	// -----------------------------------------------------------------------
	env.AddFunction("clear", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if err := st.ensureModel(); err != nil {
			return zygo.SexpNull, err
		}
		st.model.Clear()
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (mesh :optimize true)
	// Generates the mesh and returns the triangle count.
	// -----------------------------------------------------------------------
	env.AddFunction("mesh", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if err := st.ensureModel(); err != nil {
			return zygo.SexpNull, err
		}
		pa := parseArgs(args)

		optimize := true
		if v, ok := pa.kw["optimize"]; ok {
			b, err := toBool(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("mesh: optimize: %w", err)
			}
			optimize = b
		}

		tris := mesher.Generate(st.model, optimize)
		st.setTriangles(tris)
		return &zygo.SexpInt{Val: int64(len(tris))}, nil
	})
}
