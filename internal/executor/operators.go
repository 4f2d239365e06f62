package executor

import (
	"regexp"
	"sort"

	"github.com/coredb/coredb/internal/model"
	"github.com/coredb/coredb/internal/query"
)

// Matches reports whether actual satisfies operator op against expected,
// per spec.md §4.6's cross-type comparison rules: Lt/Le/Gt/Ge compare
// Int-Int, Float-Float, and Int/Float with numeric promotion, and
// String-String lexicographically; any other type pairing is false.
func Matches(op query.Operator, actual, expected model.Value) bool {
	switch op {
	case query.OpEq:
		return actual.Equal(expected)
	case query.OpNe:
		return !actual.Equal(expected)
	case query.OpLt:
		return orderedCompare(actual, expected, func(c int) bool { return c < 0 })
	case query.OpLe:
		return orderedCompare(actual, expected, func(c int) bool { return c <= 0 })
	case query.OpGt:
		return orderedCompare(actual, expected, func(c int) bool { return c > 0 })
	case query.OpGe:
		return orderedCompare(actual, expected, func(c int) bool { return c >= 0 })
	case query.OpLike:
		return matchesLike(actual, expected)
	case query.OpIn:
		return matchesIn(actual, expected)
	case query.OpIsNull:
		return actual.IsNull()
	case query.OpIsNotNull:
		return !actual.IsNull()
	default:
		return false
	}
}

// orderedCompare reports whether a numeric/string ordering comparison
// between a and b, as classified by numericOrStringCompare, holds. Incomparable kinds
// (e.g. Bool vs String) never satisfy an ordering operator.
func orderedCompare(a, b model.Value, accept func(cmp int) bool) bool {
	c, ok := numericOrStringCompare(a, b)
	if !ok {
		return false
	}
	return accept(c)
}

func numericOrStringCompare(a, b model.Value) (int, bool) {
	if ai, ok := a.AsInt(); ok {
		if bi, ok := b.AsInt(); ok {
			return compareInt(ai, bi), true
		}
		if bf, ok := b.AsFloat(); ok {
			return compareFloat(float64(ai), bf), true
		}
		return 0, false
	}
	if af, ok := a.AsFloat(); ok {
		if bf, ok := b.AsFloat(); ok {
			return compareFloat(af, bf), true
		}
		if bi, ok := b.AsInt(); ok {
			return compareFloat(af, float64(bi)), true
		}
		return 0, false
	}
	if as, ok := a.AsString(); ok {
		if bs, ok := b.AsString(); ok {
			switch {
			case as < bs:
				return -1, true
			case as > bs:
				return 1, true
			default:
				return 0, true
			}
		}
		return 0, false
	}
	return 0, false
}

func compareInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func matchesLike(actual, pattern model.Value) bool {
	as, ok := actual.AsString()
	if !ok {
		return false
	}
	ps, ok := pattern.AsString()
	if !ok {
		return false
	}
	re, err := regexp.Compile(ps)
	if err != nil {
		return false
	}
	return re.MatchString(as)
}

func matchesIn(actual, set model.Value) bool {
	arr, ok := set.AsArray()
	if !ok {
		return false
	}
	for _, v := range arr {
		if actual.Equal(v) {
			return true
		}
	}
	return false
}

// CompareValues orders a against b for sorting: Null sorts before every
// other value; Int/Float compare numerically with promotion, Strings
// lexicographically, and Bools false before true. Any other cross-kind
// pairing (e.g. Int vs String, Array vs Object) compares equal, matching
// the teacher's stable-sort fallback.
func CompareValues(a, b model.Value) int {
	if a.IsNull() && b.IsNull() {
		return 0
	}
	if a.IsNull() {
		return -1
	}
	if b.IsNull() {
		return 1
	}
	if c, ok := numericOrStringCompare(a, b); ok {
		return c
	}
	if ab, ok := a.AsBool(); ok {
		if bb, ok := b.AsBool(); ok {
			switch {
			case !ab && bb:
				return -1
			case ab && !bb:
				return 1
			default:
				return 0
			}
		}
	}
	return 0
}

// sortNodesByField sorts nodes in place by the named field (falling
// back to id/type for those pinned columns), descending if requested.
// The sort is stable so ties preserve prior ordering (e.g. from a
// previous ORDER BY clause already applied).
func sortNodesByField(nodes []*model.Node, field string, descending bool) {
	sort.SliceStable(nodes, func(i, j int) bool {
		vi := fieldValue(nodes[i], field)
		vj := fieldValue(nodes[j], field)
		c := CompareValues(vi, vj)
		if descending {
			return c > 0
		}
		return c < 0
	})
}

func fieldValue(n *model.Node, field string) model.Value {
	switch field {
	case "id":
		return model.String(n.ID.String())
	case "type":
		return model.String(n.Type)
	default:
		v, ok := n.Get(field)
		if !ok {
			return model.Null
		}
		return v
	}
}
