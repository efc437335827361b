package game

import (
	"errors"
	"math/rand"
)

// ErrGeneration возвращается создателю сессии, когда за отведенное число
// попыток не удалось собрать решаемый пул подсказок. Игроки этого не видят.
var ErrGeneration = errors.New("не удалось сгенерировать решаемое поле в пределах бюджета")

// Параметры генерации пазла. Значения по умолчанию повторяют поведение
// исторического генератора (доля вакуумных условий 0.15).
type GeneratorConfig struct {
	VacuousRatio float64 // доля условных подсказок с ложным условием
	SurplusClues int     // избыточные подсказки сверх решающего ядра
	ClueBudget   int     // максимум подсказок в решающем ядре, 0 = 3*N*N
	MaxAttempts  int     // перегенераций поля до отказа
	RootClues    int     // явные корневые подсказки, с которых начинаются цепочки
}

func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		VacuousRatio: 0.15,
		SurplusClues: 6,
		MaxAttempts:  8,
		RootClues:    2,
	}
}

func (c GeneratorConfig) budget(size int) int {
	if c.ClueBudget > 0 {
		return c.ClueBudget
	}
	return 3 * size * size
}

// GeneratePuzzle строит случайное поле и пул подсказок, совокупность которых
// однозначно определяет оба атрибута каждой ячейки. Детерминирована по seed.
// Внутренний цикл перегенерации ограничен MaxAttempts.
func GeneratePuzzle(size int, seed int64, cfg GeneratorConfig) (*Board, []Clue, error) {
	rng := rand.New(rand.NewSource(seed))

	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		board, err := GenerateBoard(size, rng)
		if err != nil {
			return nil, nil, err
		}
		clues, ok := buildClueSet(board, rng, cfg)
		if !ok {
			continue
		}
		for i := range clues {
			clues[i].ID = i
		}
		return board, clues, nil
	}
	return nil, nil, ErrGeneration
}

// buildClueSet жадно накапливает пул: кандидат остается, только если
// распространение показывает, что он определяет хотя бы один новый атрибут.
func buildClueSet(board *Board, rng *rand.Rand, cfg GeneratorConfig) ([]Clue, bool) {
	budget := cfg.budget(board.Size)
	candidates := candidateClues(board, rng, cfg)

	d := newDeducer(board.Size)
	var pool []Clue

	keep := func(cl Clue) bool {
		trial := d.clone()
		if !trial.Apply(append(pool[:len(pool):len(pool)], cl)) {
			return false
		}
		if trial.DeterminedCount() <= d.DeterminedCount() {
			return false
		}
		cl.Determines = newlyDetermined(d, trial, board.Size)
		pool = append(pool, cl)
		d = trial
		return true
	}

	// корневые явные подсказки, от которых расходятся цепочки вывода
	roots := cfg.RootClues
	if cells := board.Size * board.Size; roots > cells {
		roots = cells
	}
	for _, p := range rng.Perm(board.Size * board.Size)[:roots] {
		pos := Position{Row: p / board.Size, Col: p % board.Size}
		keep(explicitClueAt(board, pos, randomAttribute(rng)))
		if len(pool) > budget {
			return nil, false
		}
	}

	used := make(map[int]bool)
	for i, cl := range candidates {
		if d.Determined() {
			break
		}
		if len(pool) >= budget {
			break
		}
		if keep(cl) {
			used[i] = true
		}
	}

	// гарантия полноты: добиваем неопределенные атрибуты явными фактами
	for _, pos := range board.Positions() {
		shapeDone, numberDone := d.determinedAt(pos)
		if !shapeDone {
			keep(explicitClueAt(board, pos, AttrShape))
		}
		if !numberDone {
			keep(explicitClueAt(board, pos, AttrNumber))
		}
	}
	if len(pool) > budget || !d.Determined() {
		return nil, false
	}

	// контрольная проверка: пул с нуля восстанавливает ровно исходное поле
	check := newDeducer(board.Size)
	if !check.Apply(pool) {
		return nil, false
	}
	solved, ok := check.Solution()
	if !ok {
		return nil, false
	}
	for _, p := range board.Positions() {
		if solved.At(p) != board.At(p) {
			return nil, false
		}
	}

	// избыточные подсказки для живости игры; каждая обязана быть истинной
	surplus := 0
	for i, cl := range candidates {
		if surplus >= cfg.SurplusClues {
			break
		}
		if used[i] || !cl.Holds(board) {
			continue
		}
		pool = append(pool, cl)
		surplus++
	}

	return pool, true
}

func (d *deducer) clone() *deducer {
	cells := make([]cellDomain, len(d.cells))
	copy(cells, d.cells)
	return &deducer{size: d.size, cells: cells}
}

func newlyDetermined(before, after *deducer, size int) []Position {
	var out []Position
	for r := 0; r < size; r++ {
		for c := 0; c < size; c++ {
			p := Position{Row: r, Col: c}
			bs, bn := before.determinedAt(p)
			as, an := after.determinedAt(p)
			if (as && !bs) || (an && !bn) {
				out = append(out, p)
			}
		}
	}
	return out
}

func randomAttribute(rng *rand.Rand) Attribute {
	if rng.Intn(2) == 0 {
		return AttrShape
	}
	return AttrNumber
}

func explicitClueAt(b *Board, p Position, attr Attribute) Clue {
	c := b.At(p)
	return NewExplicitClue(Fact{Position: p, Attribute: attr, Shape: c.Shape, Number: c.Number})
}

func trueFactAt(b *Board, p Position, rng *rand.Rand) Fact {
	c := b.At(p)
	return Fact{Position: p, Attribute: randomAttribute(rng), Shape: c.Shape, Number: c.Number}
}

// falseFactAt подбирает значение атрибута, заведомо неверное для ячейки.
func falseFactAt(b *Board, p Position, rng *rand.Rand) Fact {
	c := b.At(p)
	if randomAttribute(rng) == AttrShape {
		for {
			s := Shapes[rng.Intn(len(Shapes))]
			if s != c.Shape {
				return Fact{Position: p, Attribute: AttrShape, Shape: s}
			}
		}
	}
	for {
		n := rng.Intn(b.Size) + 1
		if n != c.Number {
			return Fact{Position: p, Attribute: AttrNumber, Number: n}
		}
	}
}

// candidateClues строит перемешанный пул кандидатов: сначала условные и общие
// (интереснее для игры), затем явные как заполнитель.
func candidateClues(b *Board, rng *rand.Rand, cfg GeneratorConfig) []Clue {
	var rich []Clue

	// условные: по умолчанию истинное условие и истинное следствие,
	// с вероятностью VacuousRatio - ложное условие (вакуумная истина)
	positions := b.Positions()
	pairs := 3 * b.Size * b.Size
	for i := 0; i < pairs; i++ {
		from := positions[rng.Intn(len(positions))]
		to := positions[rng.Intn(len(positions))]
		if from == to {
			continue
		}
		if rng.Float64() < cfg.VacuousRatio {
			rich = append(rich, NewConditionalClue(falseFactAt(b, from, rng), falseFactAt(b, to, rng)))
		} else {
			rich = append(rich, NewConditionalClue(trueFactAt(b, from, rng), trueFactAt(b, to, rng)))
		}
	}

	// общие: точное число вхождений каждого значения в каждой строке/столбце,
	// включая редкие утверждения об отсутствии (count = 0)
	for _, scope := range []Scope{ScopeRow, ScopeCol} {
		for idx := 0; idx < b.Size; idx++ {
			cells := make([]Cell, 0, b.Size)
			for _, p := range scopePositions(b.Size, scope, idx) {
				cells = append(cells, b.At(p))
			}
			for _, s := range Shapes {
				n := 0
				for _, c := range cells {
					if c.Shape == s {
						n++
					}
				}
				if n > 0 || rng.Float64() < 0.2 {
					rich = append(rich, NewGeneralClue(scope, idx, AttrShape, s, 0, n))
				}
			}
			for _, num := range b.Numbers() {
				n := 0
				for _, c := range cells {
					if c.Number == num {
						n++
					}
				}
				if n > 0 || rng.Float64() < 0.2 {
					rich = append(rich, NewGeneralClue(scope, idx, AttrNumber, "", num, n))
				}
			}
		}
	}

	rng.Shuffle(len(rich), func(i, j int) { rich[i], rich[j] = rich[j], rich[i] })

	var plain []Clue
	for _, p := range positions {
		plain = append(plain, explicitClueAt(b, p, AttrShape))
		plain = append(plain, explicitClueAt(b, p, AttrNumber))
	}
	rng.Shuffle(len(plain), func(i, j int) { plain[i], plain[j] = plain[j], plain[i] })

	return append(rich, plain...)
}
