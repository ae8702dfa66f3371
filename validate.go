package stream

import (
	"fmt"
	"math"
	"strings"
)

// Expectation is what validation compares the arrays against: either one
// value per array (canonical seeding) or one value per element.
type Expectation[T Float] struct {
	Const    ReferenceState
	A, B, C  []T
	elements bool
}

// ConstantExpectation expects every element of each array to equal ref.
func ConstantExpectation[T Float](ref ReferenceState) Expectation[T] {
	return Expectation[T]{Const: ref}
}

// ElementwiseExpectation expects the arrays to equal a, b and c index by index.
func ElementwiseExpectation[T Float](a, b, c []T) Expectation[T] {
	return Expectation[T]{A: a, B: b, C: c, elements: true}
}

// Elementwise reports whether the expectation carries per-element values.
func (e Expectation[T]) Elementwise() bool {
	return e.elements
}

// Offender is an element whose relative error exceeds epsilon.
type Offender struct {
	Index    int     `json:"index"`
	Observed float64 `json:"observed"`
	Expected float64 `json:"expected"`
	RelErr   float64 `json:"rel_err"`
}

// ArrayError is the error summary of one working array.
type ArrayError struct {
	Name      string     `json:"name"`
	Expected  float64    `json:"expected"` // zero for per-element expectations
	SumAbsErr float64    `json:"sum_abs_err"`
	AvgAbsErr float64    `json:"avg_abs_err"`
	AvgRelErr float64    `json:"avg_rel_err"`
	Errors    int        `json:"errors"`
	Offenders []Offender `json:"offenders,omitempty"`
	Failed    bool       `json:"failed"`
}

// ValidationResult is the outcome of validating A, B and C.
type ValidationResult struct {
	Arrays  [NumArrays]ArrayError `json:"arrays"`
	Epsilon float64               `json:"epsilon"`
	Passed  bool                  `json:"passed"`
}

// Err returns a validation failure describing the failed arrays, or nil.
func (r *ValidationResult) Err() error {
	if r.Passed {
		return nil
	}
	var failed []string
	for _, a := range r.Arrays {
		if a.Failed {
			failed = append(failed, fmt.Sprintf("%s avg rel err %e", a.Name, a.AvgRelErr))
		}
	}
	return NewValidationFailure("Validate",
		fmt.Sprintf("%s exceeds epsilon %g", strings.Join(failed, ", "), r.Epsilon), r)
}

// Validate compares the arrays with the expectation. An array fails when its
// average relative error exceeds the precision's epsilon. Independently, every
// element is checked and those above epsilon are counted, with at most
// maxOffenders of them listed, so an outlier hidden by averaging is still
// reported on a passing run.
func Validate[T Float](a, b, c []T, exp Expectation[T], p Precision, maxOffenders int) (ValidationResult, error) {
	if !p.Valid() {
		return ValidationResult{}, ErrUnsupportedPrecision
	}
	if len(a) == 0 || len(a) != len(b) || len(a) != len(c) {
		return ValidationResult{}, NewConfigurationError("Validate",
			fmt.Sprintf("array lengths differ or are zero: %d, %d, %d", len(a), len(b), len(c)))
	}
	if exp.elements && (len(exp.A) != len(a) || len(exp.B) != len(a) || len(exp.C) != len(a)) {
		return ValidationResult{}, NewConfigurationError("Validate", "expectation length does not match arrays")
	}

	eps := p.Epsilon()
	res := ValidationResult{Epsilon: eps, Passed: true}

	names := [NumArrays]string{"a", "b", "c"}
	obs := [NumArrays][]T{a, b, c}
	consts := [NumArrays]float64{exp.Const.A, exp.Const.B, exp.Const.C}
	elems := [NumArrays][]T{exp.A, exp.B, exp.C}

	for i := 0; i < NumArrays; i++ {
		var ae ArrayError
		if exp.elements {
			ae = checkElements(obs[i], elems[i], eps, maxOffenders)
		} else {
			ae = checkConstant(obs[i], T(consts[i]), eps, maxOffenders)
		}
		ae.Name = names[i]
		ae.Failed = !(ae.AvgRelErr <= eps)
		if ae.Failed {
			res.Passed = false
		}
		res.Arrays[i] = ae
	}
	return res, nil
}

// relErr is |obs/exp - 1|, or |obs| when exp is zero.
func relErr(obs, exp float64) float64 {
	if exp == 0 {
		return math.Abs(obs)
	}
	return math.Abs(obs/exp - 1)
}

func (ae *ArrayError) offend(idx int, obs, exp, eps float64, maxOffenders int) {
	r := relErr(obs, exp)
	if r > eps || math.IsNaN(r) {
		ae.Errors++
		if len(ae.Offenders) < maxOffenders {
			ae.Offenders = append(ae.Offenders, Offender{Index: idx, Observed: obs, Expected: exp, RelErr: r})
		}
	}
}

func checkConstant[T Float](obs []T, exp T, eps float64, maxOffenders int) ArrayError {
	e := float64(exp)
	ae := ArrayError{Expected: e}
	for j, v := range obs {
		o := float64(v)
		ae.SumAbsErr += math.Abs(o - e)
		ae.offend(j, o, e, eps, maxOffenders)
	}
	ae.AvgAbsErr = ae.SumAbsErr / float64(len(obs))
	if e != 0 {
		ae.AvgRelErr = ae.AvgAbsErr / math.Abs(e)
	} else {
		ae.AvgRelErr = ae.AvgAbsErr
	}
	return ae
}

func checkElements[T Float](obs, exp []T, eps float64, maxOffenders int) ArrayError {
	var ae ArrayError
	var sumExp float64
	exp = exp[:len(obs)]
	for j, v := range obs {
		o, e := float64(v), float64(exp[j])
		ae.SumAbsErr += math.Abs(o - e)
		sumExp += math.Abs(e)
		ae.offend(j, o, e, eps, maxOffenders)
	}
	ae.AvgAbsErr = ae.SumAbsErr / float64(len(obs))
	if sumExp != 0 {
		ae.AvgRelErr = ae.SumAbsErr / sumExp
	} else {
		ae.AvgRelErr = ae.AvgAbsErr
	}
	return ae
}
