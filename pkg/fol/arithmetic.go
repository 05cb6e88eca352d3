package fol

import "strconv"

// arithComparisons is the table of arithmetic comparison predicates
// translated to host numeric comparison when arithmetic is enabled
// (spec §4.3, §4.4.2).
var arithComparisons = map[string]func(a, b float64) bool{
	"lt": func(a, b float64) bool { return a < b },
	"gt": func(a, b float64) bool { return a > b },
	"le": func(a, b float64) bool { return a <= b },
	"ge": func(a, b float64) bool { return a >= b },
}

// arithFunctions is the table of arithmetic functions translated to the
// host evaluator's `is`/`computes` relation.
var arithFunctions = map[string]func(a, b float64) float64{
	"plus":  func(a, b float64) float64 { return a + b },
	"minus": func(a, b float64) float64 { return a - b },
	"times": func(a, b float64) float64 { return a * b },
}

// IsArithmeticComparison reports whether name is a known arithmetic
// comparison predicate.
func IsArithmeticComparison(name string) bool {
	_, ok := arithComparisons[name]
	return ok
}

// IsArithmeticFunction reports whether name is a known arithmetic
// function symbol.
func IsArithmeticFunction(name string) bool {
	_, ok := arithFunctions[name]
	return ok
}

// EvalComparison evaluates a two-argument arithmetic comparison
// predicate against two numeric constants, reporting whether name was
// recognised and whether it held.
func EvalComparison(name string, a, b *Node) (holds bool, recognized bool) {
	fn, ok := arithComparisons[name]
	if !ok {
		return false, false
	}
	av, aok := NumericValue(a)
	bv, bok := NumericValue(b)
	if !aok || !bok {
		return false, true
	}
	return fn(av, bv), true
}

// EvalFunction evaluates a two-argument arithmetic function against two
// numeric constants, returning the result as a fresh constant node.
func EvalFunction(name string, a, b *Node) (result *Node, ok bool) {
	fn, known := arithFunctions[name]
	if !known {
		return nil, false
	}
	av, aok := NumericValue(a)
	bv, bok := NumericValue(b)
	if !aok || !bok {
		return nil, false
	}
	return Const(formatNumber(fn(av, bv))), true
}

// NumericValue parses a constant node's name as a float64, reporting
// whether it is numeric.
func NumericValue(n *Node) (float64, bool) {
	if n == nil || n.Kind != KindConstant {
		return 0, false
	}
	v, err := strconv.ParseFloat(n.Name, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func formatNumber(v float64) string {
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
