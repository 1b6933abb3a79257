package smt

// dpll is a small, deliberately unoptimized DPLL SAT search: unit
// propagation plus branching, no clause learning. Correctness, not
// performance, is the goal here; the search layer only ever asks this
// solver to decide small, already-pruned equivalence queries.
type dpll struct {
	steps int
	limit int
}

// solve returns (satisfiable, timedOut). On timedOut the caller must treat
// the query as Unknown, never as Unsat.
func (d *dpll) solve(clauses [][]Lit, assign map[int32]bool, numVars int32) (bool, bool) {
	return d.search(clauses, assign)
}

func (d *dpll) search(clauses [][]Lit, assign map[int32]bool) (bool, bool) {
	if d.limit > 0 {
		d.steps++
		if d.steps > d.limit {
			return false, true
		}
	}

	// unitPropagate works on a clone; satisfying assignments are copied back
	// into the caller's map so Solver.Model sees the full model.
	clauses, propagated, ok, timedOut := d.unitPropagate(clauses, assign)
	if timedOut {
		return false, true
	}
	if !ok {
		return false, false // conflict
	}

	lit, found := pickUnassigned(clauses, propagated)
	if !found {
		for k, v := range propagated {
			assign[k] = v
		}
		return true, false // every clause satisfied, no unassigned literal left
	}

	// Try lit = true, then lit = false.
	for _, tryTrue := range []bool{true, false} {
		trial := cloneAssign(propagated)
		v := int32(lit)
		if v < 0 {
			v = -v
		}
		trial[v] = (lit > 0) == tryTrue
		sat, timedOut := d.search(clauses, trial)
		if timedOut {
			return false, true
		}
		if sat {
			for k, v := range trial {
				assign[k] = v
			}
			return true, false
		}
	}
	return false, false
}

func cloneAssign(assign map[int32]bool) map[int32]bool {
	out := make(map[int32]bool, len(assign)+1)
	for k, v := range assign {
		out[k] = v
	}
	return out
}

// unitPropagate repeatedly satisfies unit clauses until a fixpoint, a
// conflict (false), or the step budget is exhausted (timedOut).
func (d *dpll) unitPropagate(clauses [][]Lit, assign map[int32]bool) ([][]Lit, map[int32]bool, bool, bool) {
	assign = cloneAssign(assign)
	for {
		if d.limit > 0 {
			d.steps++
			if d.steps > d.limit {
				return clauses, assign, true, true
			}
		}
		changed := false
		for _, cl := range clauses {
			status, unit := evalClause(cl, assign)
			switch status {
			case clauseFalse:
				return clauses, assign, false, false
			case clauseUnit:
				v := int32(unit)
				if v < 0 {
					v = -v
				}
				assign[v] = unit > 0
				changed = true
			}
		}
		if !changed {
			return clauses, assign, true, false
		}
	}
}

type clauseStatus int

const (
	clauseSat clauseStatus = iota
	clauseFalse
	clauseUnit
	clauseUndetermined
)

// evalClause reports the clause's status and, if exactly one literal is
// unassigned and the rest are false, returns that literal as the unit.
func evalClause(cl []Lit, assign map[int32]bool) (clauseStatus, Lit) {
	var unassigned Lit
	unassignedCount := 0
	for _, lit := range cl {
		v := int32(lit)
		neg := v < 0
		if v < 0 {
			v = -v
		}
		val, known := assign[v]
		if !known {
			unassignedCount++
			unassigned = lit
			continue
		}
		if val != neg {
			return clauseSat, 0
		}
	}
	if unassignedCount == 0 {
		return clauseFalse, 0
	}
	if unassignedCount == 1 {
		return clauseUnit, unassigned
	}
	return clauseUndetermined, 0
}

// pickUnassigned finds a literal from the first not-yet-satisfied clause
// whose variable has no assignment yet.
func pickUnassigned(clauses [][]Lit, assign map[int32]bool) (Lit, bool) {
	for _, cl := range clauses {
		status, _ := evalClause(cl, assign)
		if status == clauseSat {
			continue
		}
		for _, lit := range cl {
			v := int32(lit)
			if v < 0 {
				v = -v
			}
			if _, known := assign[v]; !known {
				return lit, true
			}
		}
	}
	return 0, false
}
