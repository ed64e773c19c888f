package assign

import (
	"math/rand/v2"
	"testing"

	"github.com/google/uuid"
)

// seqRand отдаёт заранее заданную последовательность значений.
type seqRand struct {
	values []int
	pos    int
}

func (r *seqRand) IntN(n int) int {
	v := r.values[r.pos%len(r.values)] % n
	r.pos++
	return v
}

func TestPick_EmptySet(t *testing.T) {
	e := NewEngine(&seqRand{values: []int{0}})
	if id, ok := e.Pick(nil); ok || id != uuid.Nil {
		t.Fatalf("expected (Nil, false) for empty set, got (%v, %v)", id, ok)
	}
}

func TestPick_HighestTierWins(t *testing.T) {
	senior := uuid.New()
	junior1 := uuid.New()
	junior2 := uuid.New()

	free := []Candidate{
		{StaffID: junior1, Priority: 1},
		{StaffID: senior, Priority: 10},
		{StaffID: junior2, Priority: 1},
	}

	// Какой бы ни была случайность, побеждает ярус с приоритетом 10.
	for _, v := range []int{0, 1, 2, 7} {
		e := NewEngine(&seqRand{values: []int{v}})
		id, ok := e.Pick(free)
		if !ok {
			t.Fatalf("expected a pick")
		}
		if id != senior {
			t.Fatalf("expected senior staff, got %v", id)
		}
	}
}

func TestPick_FallsToLowerTier(t *testing.T) {
	junior := uuid.New()
	free := []Candidate{{StaffID: junior, Priority: -5}}

	e := NewEngine(&seqRand{values: []int{0}})
	id, ok := e.Pick(free)
	if !ok || id != junior {
		t.Fatalf("single low-priority candidate must win, got (%v, %v)", id, ok)
	}
}

func TestPick_DeterministicWithFixedSource(t *testing.T) {
	a := uuid.New()
	b := uuid.New()
	free := []Candidate{
		{StaffID: a, Priority: 3},
		{StaffID: b, Priority: 3},
	}

	e := NewEngine(&seqRand{values: []int{0, 1, 1, 0}})
	want := []uuid.UUID{a, b, b, a}
	for i, w := range want {
		id, ok := e.Pick(free)
		if !ok || id != w {
			t.Fatalf("pick %d: expected %v, got (%v, %v)", i, w, id, ok)
		}
	}
}

type pcgRand struct{ r *rand.Rand }

func (p pcgRand) IntN(n int) int { return p.r.IntN(n) }

func TestPick_FairWithinTier(t *testing.T) {
	a := uuid.New()
	b := uuid.New()
	free := []Candidate{
		{StaffID: a, Priority: 10},
		{StaffID: b, Priority: 10},
		{StaffID: uuid.New(), Priority: 1},
	}

	e := NewEngine(pcgRand{rand.New(rand.NewPCG(42, 1))})

	const n = 10000
	counts := map[uuid.UUID]int{}
	for i := 0; i < n; i++ {
		id, ok := e.Pick(free)
		if !ok {
			t.Fatalf("expected a pick")
		}
		counts[id]++
	}

	if counts[a]+counts[b] != n {
		t.Fatalf("lower tier must never be picked: %v", counts)
	}
	// Равные по приоритету должны выбираться примерно поровну:
	// при фиксированном зерне допуска в 5% от n более чем достаточно.
	if diff := counts[a] - counts[b]; diff > n/20 || diff < -n/20 {
		t.Fatalf("unfair split: a=%d b=%d", counts[a], counts[b])
	}
}
