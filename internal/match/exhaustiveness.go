package match

import (
	"fmt"
	"strings"

	"github.com/ziontype/zinfer/internal/ast"
	zerrors "github.com/ziontype/zinfer/internal/errors"
)

// Result is the outcome of checking one match expression's arms.
type Result struct {
	Exhaustive  bool
	Missing     []string // witness patterns not covered by any arm
	Unreachable []int    // indices of arms fully subsumed by earlier arms
}

// Check walks arms in order, accumulating lattice coverage, and reports
// any arm whose own coverage adds nothing beyond what came before it
// (unreachable, EXH002) plus whatever the accumulated coverage still
// lacks once every arm has run (non-exhaustive, EXH001).
func Check(l *Lattice, scrutTypeName string, arms []ast.MatchArm) *Result {
	res := &Result{Exhaustive: true}
	covered := Pattern(Nothing{})
	for i, arm := range arms {
		thisArm := l.FromPredicate(scrutTypeName, arm.Predicate)
		if l.IsNothing(l.Difference(thisArm, covered)) && i > 0 {
			res.Unreachable = append(res.Unreachable, i)
		}
		covered = l.Union(covered, thisArm)
	}
	missing := l.Difference(AllOf{TypeName: scrutTypeName}, covered)
	if !l.IsNothing(missing) {
		res.Exhaustive = false
		res.Missing = l.Witnesses(missing)
	}
	return res
}

// Report converts a Result into zero or more structured diagnostics, or
// nil if the match needed none.
func Report(res *Result, loc ast.Pos) []*zerrors.Report {
	var reports []*zerrors.Report
	if !res.Exhaustive {
		reports = append(reports, zerrors.New(zerrors.EXH001, loc,
			fmt.Sprintf("non-exhaustive match, missing: %s", strings.Join(res.Missing, ", "))))
	}
	for _, idx := range res.Unreachable {
		reports = append(reports, zerrors.New(zerrors.EXH002, loc,
			fmt.Sprintf("arm %d is unreachable: already covered by preceding arms", idx)))
	}
	return reports
}
