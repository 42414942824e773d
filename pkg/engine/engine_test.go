package engine

import (
	"strings"
	"sync"
	"testing"
)

func TestEvaluateEmptyString(t *testing.T) {
	eng := NewEngine()

	res, evalErrs, err := eng.Evaluate("")
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("unexpected eval errors: %v", evalErrs)
	}
	if res == nil || res.Model == nil {
		t.Fatal("expected non-nil result with a default model")
	}
	if !res.Model.Empty() {
		t.Errorf("expected empty model, got %d voxels", res.Model.Len())
	}
	if res.Triangles != nil {
		t.Errorf("expected no triangles, got %d", len(res.Triangles))
	}
}

func TestEvaluateWhitespaceOnly(t *testing.T) {
	eng := NewEngine()

	res, evalErrs, err := eng.Evaluate("   \n\t  \n  ")
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("unexpected eval errors: %v", evalErrs)
	}
	if res == nil || res.Model == nil || !res.Model.Empty() {
		t.Fatal("expected an empty default model")
	}
}

func TestEvaluateArithmetic(t *testing.T) {
	eng := NewEngine()

	// Plain Lisp that touches no builtin still evaluates and yields an
	// empty model.
	res, evalErrs, err := eng.Evaluate("(+ 1 2)")
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("unexpected eval errors: %v", evalErrs)
	}
	if res == nil || res.Model == nil || !res.Model.Empty() {
		t.Fatal("expected an empty default model")
	}
}

func TestEvaluateParseError(t *testing.T) {
	eng := NewEngine()

	res, evalErrs, err := eng.Evaluate("(voxel 0 0")
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if len(evalErrs) == 0 {
		t.Fatal("expected eval errors for unbalanced source")
	}
	if res != nil {
		t.Errorf("expected nil result on parse failure, got %+v", res)
	}
}

func TestEvaluateRuntimeError(t *testing.T) {
	eng := NewEngine()

	_, evalErrs, err := eng.Evaluate("(vec3 1 2)")
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if len(evalErrs) == 0 {
		t.Fatal("expected eval errors for bad arity")
	}
	if !strings.Contains(evalErrs[0].Message, "vec3") {
		t.Errorf("error does not mention the failing form: %q", evalErrs[0].Message)
	}
}

func TestEvaluateIndependentRuns(t *testing.T) {
	eng := NewEngine()

	if _, _, err := eng.Evaluate("(voxel 0 0 0)"); err != nil {
		t.Fatal(err)
	}
	res, evalErrs, err := eng.Evaluate("")
	if err != nil || len(evalErrs) > 0 {
		t.Fatalf("second evaluation failed: %v %v", err, evalErrs)
	}
	// Each evaluation starts from a fresh sandbox and model.
	if !res.Model.Empty() {
		t.Errorf("state leaked between evaluations: %d voxels", res.Model.Len())
	}
}

func TestEvaluateConcurrent(t *testing.T) {
	// Concurrent evaluations must not race; some may be reported as
	// superseded by a newer generation, which counts as a clean outcome.
	eng := NewEngine()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, evalErrs, err := eng.Evaluate("(voxel 0 0 0) (mesh)")
			if err != nil {
				if strings.Contains(err.Error(), "superseded") {
					return
				}
				t.Errorf("fatal error: %v", err)
				return
			}
			if len(evalErrs) > 0 {
				t.Errorf("eval errors: %v", evalErrs)
				return
			}
			if res.Model.Len() != 1 || len(res.Triangles) != 12 {
				t.Errorf("got %d voxels / %d triangles", res.Model.Len(), len(res.Triangles))
			}
		}()
	}
	wg.Wait()
}

func TestParseZygomysErrorLineExtraction(t *testing.T) {
	errs := parseZygomysError(errInput("Error on line 3: unexpected token"))
	if len(errs) != 1 || errs[0].Line != 3 {
		t.Fatalf("got %+v, want one error on line 3", errs)
	}
	if errs[0].Message != "unexpected token" {
		t.Errorf("message = %q", errs[0].Message)
	}

	errs = parseZygomysError(errInput("something opaque went wrong"))
	if len(errs) != 1 || errs[0].Line != 0 {
		t.Fatalf("got %+v, want one line-less error", errs)
	}
}

// errInput wraps a string as an error for parse tests.
type errInput string

func (e errInput) Error() string { return string(e) }
