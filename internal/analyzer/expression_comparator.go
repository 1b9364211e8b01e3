package analyzer

// ContainsDuplicatedRun reports whether two sequences hold two consecutive,
// identically positioned equal expressions.
//
// The scan is strictly positional: index i of a is only compared with index i
// of b, up to the shorter length. A block shifted by one position in either
// method is missed, and two unrelated but equal expressions that happen to
// line up are reported. The result does not depend on argument order.
func ContainsDuplicatedRun(a, b ExpressionSequence) bool {
	n := min(len(a), len(b))

	prevEqual := false
	for i := 0; i < n; i++ {
		equal := a[i].Equal(b[i])
		if prevEqual && equal {
			return true
		}
		prevEqual = equal
	}
	return false
}
