package assign

import (
	"math/rand/v2"

	"github.com/google/uuid"
)

// Rand — инжектируемый источник случайности, чтобы честность выбора
// внутри яруса проверялась детерминированно в тестах.
type Rand interface {
	IntN(n int) int
}

type mathRand struct{}

func (mathRand) IntN(n int) int { return rand.IntN(n) }

// Candidate — свободный сотрудник с его ярусом назначения.
type Candidate struct {
	StaffID  uuid.UUID
	Priority int
}

// Engine выбирает одного сотрудника из набора свободных.
// Чистая функция без побочных эффектов: порядок ярусов (по убыванию
// приоритета) детерминирован, случайность — только внутри яруса.
type Engine struct {
	rnd Rand
}

// NewEngine создаёт движок назначения. При rnd == nil используется
// общий источник math/rand/v2.
func NewEngine(rnd Rand) *Engine {
	if rnd == nil {
		rnd = mathRand{}
	}
	return &Engine{rnd: rnd}
}

// Pick выбирает сотрудника: сначала ярус с наибольшим приоритетом,
// внутри яруса — равномерно случайно. Пустой набор — (Nil, false):
// вызывающий обязан отклонить бронирование, а не назначить кого-то
// молча.
func (e *Engine) Pick(free []Candidate) (uuid.UUID, bool) {
	if len(free) == 0 {
		return uuid.Nil, false
	}

	top := free[0].Priority
	for _, c := range free[1:] {
		if c.Priority > top {
			top = c.Priority
		}
	}

	// Внутри выигравшего яруса может быть много сотрудников; равные
	// по приоритету разыгрываются случайно, а не по порядку в срезе,
	// иначе один и тот же сотрудник перегружался бы систематически.
	var tier []uuid.UUID
	for _, c := range free {
		if c.Priority == top {
			tier = append(tier, c.StaffID)
		}
	}
	return tier[e.rnd.IntN(len(tier))], true
}
