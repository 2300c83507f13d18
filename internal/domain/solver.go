package domain

import (
	"math"
	"sort"
)

// FindBestExpression searches every legally constructible expression
// for the hand and returns the one whose value is closest to target.
// Ties keep the first candidate found (strict less-than), so results
// are deterministic for identical inputs. When the hand carries
// special-card requirements, a candidate exhausting all of them is
// preferred. If nothing valid exists, a constructive fallback layout
// is returned instead.
//
// All search state lives in a per-call struct; concurrent calls share
// nothing.
func FindBestExpression(h *Hand, target int) *Expression {
	if h == nil || len(h.Numbers) == 0 {
		return &Expression{}
	}

	count := len(h.Numbers)
	slots := count - 1
	avail := h.AvailableOperators()
	muls := h.RequiredMultiplies()

	// No arrangement can fill the gaps: too many mandatory multiplies,
	// or too few operator cards for the remaining gaps.
	if muls > slots || slots-muls > len(avail) {
		return &Expression{}
	}

	s := &search{
		hand:            h,
		target:          float64(target),
		roots:           h.RequiredRoots(),
		muls:            muls,
		slots:           slots,
		counts:          make(map[int]int),
		perm:            make([]int, count),
		rooted:          make([]bool, count),
		ops:             make([]Operator, slots),
		avail:           avail,
		availUsed:       make([]bool, len(avail)),
		bestDist:        math.Inf(1),
		prioritizedDist: math.Inf(1),
	}
	for _, v := range h.NumberValues() {
		if s.counts[v] == 0 {
			s.values = append(s.values, v)
		}
		s.counts[v]++
	}
	sort.Ints(s.values)

	s.permute(0)

	result := s.best
	if (s.roots > 0 || s.muls > 0) && s.prioritized != nil {
		result = s.prioritized
	}
	if result == nil || !Validate(result, h).IsValid {
		return FallbackExpression(h)
	}
	return result.Clone()
}

// search holds the working state for one FindBestExpression call.
type search struct {
	hand   *Hand
	target float64
	roots  int // required root applications
	muls   int // required Multiply operators
	slots  int

	counts    map[int]int // distinct number value -> remaining uses
	values    []int       // distinct values, ascending
	perm      []int
	rooted    []bool
	ops       []Operator
	avail     []Operator
	availUsed []bool

	best            *Expression
	bestDist        float64
	prioritized     *Expression
	prioritizedDist float64
}

// permute fills perm with every distinct ordering of the hand's number
// values. Duplicate values share a remaining-use counter so identical
// orderings are generated once.
func (s *search) permute(depth int) {
	if depth == len(s.perm) {
		s.placeRoots(0, 0)
		return
	}
	for _, v := range s.values {
		if s.counts[v] == 0 {
			continue
		}
		s.counts[v]--
		s.perm[depth] = v
		s.permute(depth + 1)
		s.counts[v]++
	}
}

// placeRoots decides, left to right, which positions receive the root
// modifier, pruning branches that can no longer land on the exact
// required count.
func (s *search) placeRoots(idx, used int) {
	if idx == len(s.perm) {
		if used == s.roots {
			s.assignOperators(0, 0)
		}
		return
	}

	remaining := s.roots - used
	positionsLeft := len(s.perm) - idx
	lower := remaining - (positionsLeft - 1)
	if lower < 0 {
		lower = 0
	}
	upper := 1
	if remaining < 1 {
		upper = remaining
	}
	if lower > upper {
		return
	}

	for take := lower; take <= upper; take++ {
		s.rooted[idx] = take == 1
		s.placeRoots(idx+1, used+take)
	}
	s.rooted[idx] = false
}

// assignOperators fills each gap between consecutive numbers, trying
// the mandatory Multiply first (it does not consume a held card), then
// each unconsumed held operator. A candidate is complete only when all
// gaps are filled and the multiply count matches exactly.
func (s *search) assignOperators(gap, mulsUsed int) {
	if s.muls-mulsUsed > s.slots-gap {
		return
	}
	if gap == s.slots {
		if mulsUsed == s.muls {
			s.consider()
		}
		return
	}

	if mulsUsed < s.muls {
		s.ops[gap] = OpMultiply
		s.assignOperators(gap+1, mulsUsed+1)
	}

	for i, op := range s.avail {
		if s.availUsed[i] {
			continue
		}
		s.availUsed[i] = true
		s.ops[gap] = op
		s.assignOperators(gap+1, mulsUsed)
		s.availUsed[i] = false
	}
}

// consider builds the current assignment into an expression, checks it,
// and records it if it beats the running best.
func (s *search) consider() {
	candidate := &Expression{}
	for i, v := range s.perm {
		candidate.AddNumber(float64(v), s.rooted[i])
		if i < s.slots {
			candidate.AddOperator(s.ops[i])
		}
	}

	// Construction already enforces the counts; a failure here is an
	// internal inconsistency and the candidate is skipped silently.
	if !Validate(candidate, s.hand).IsValid {
		return
	}
	res := Evaluate(candidate)
	if !res.OK {
		return
	}

	dist := math.Abs(res.Value - s.target)
	if dist < s.bestDist {
		s.best = candidate.Clone()
		s.bestDist = dist
	}

	if s.roots == 0 && s.muls == 0 {
		return
	}
	// Defensive filter: by construction every candidate exhausts the
	// special-card requirements, but only such candidates may become
	// the prioritized best.
	if !s.exhaustsSpecials(candidate) {
		return
	}
	if dist < s.prioritizedDist {
		s.prioritized = candidate.Clone()
		s.prioritizedDist = dist
	}
}

func (s *search) exhaustsSpecials(e *Expression) bool {
	roots := 0
	for _, t := range e.Terms {
		if t.Rooted {
			roots++
		}
	}
	muls := 0
	for _, op := range e.Ops {
		if op == OpMultiply {
			muls++
		}
	}
	return roots == s.roots && muls == s.muls
}

// FallbackExpression lays the hand out deterministically: numbers in
// held order, roots on the leading numbers, then Multiply for each
// forced-multiply requirement, then the held operator cards in order,
// then Add. Degenerate hands can still fail validation afterwards;
// callers treat that as a reportable anomaly, not a fatal error.
func FallbackExpression(h *Hand) *Expression {
	e := &Expression{}
	if h == nil || len(h.Numbers) == 0 {
		return e
	}

	roots := h.RequiredRoots()
	slots := len(h.Numbers) - 1
	muls := h.RequiredMultiplies()
	if muls > slots {
		muls = slots
	}

	for i, c := range h.Numbers {
		e.AddNumber(float64(c.Value), i < roots)
	}

	opIdx := 0
	for gap := 0; gap < slots; gap++ {
		switch {
		case gap < muls:
			e.AddOperator(OpMultiply)
		case opIdx < len(h.Operators):
			e.AddOperator(h.Operators[opIdx].Op)
			opIdx++
		default:
			e.AddOperator(OpAdd)
		}
	}
	return e
}
