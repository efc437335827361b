package game

import "math/bits"

// Дедукция над пространством возможных полей. Каждая ячейка держит битовые
// маски еще возможных фигур и чисел; подсказки сужают маски до неподвижной
// точки. Атрибут "определен", когда его маска сжалась до одного бита -
// т.е. все поля, совместимые с пулом подсказок, согласны в этом атрибуте.
type cellDomain struct {
	shapes  uint8 // бит i: Shapes[i] возможна
	numbers uint8 // бит i: число i+1 возможно
}

type deducer struct {
	size  int
	cells []cellDomain
}

func shapeBit(s Shape) uint8 {
	for i, sh := range Shapes {
		if sh == s {
			return 1 << i
		}
	}
	return 0
}

func numberBit(n, size int) uint8 {
	if n < 1 || n > size {
		return 0
	}
	return 1 << (n - 1)
}

// newDeducer строит решатель с полными доменами для поля size x size.
func newDeducer(size int) *deducer {
	full := cellDomain{
		shapes:  1<<len(Shapes) - 1,
		numbers: 1<<size - 1,
	}
	cells := make([]cellDomain, size*size)
	for i := range cells {
		cells[i] = full
	}
	return &deducer{size: size, cells: cells}
}

func (d *deducer) at(p Position) *cellDomain {
	return &d.cells[p.Row*d.size+p.Col]
}

func (d *deducer) factMask(f Fact) (cur *uint8, bit uint8) {
	dom := d.at(f.Position)
	if f.Attribute == AttrShape {
		return &dom.shapes, shapeBit(f.Shape)
	}
	return &dom.numbers, numberBit(f.Number, d.size)
}

// restrict сужает домен атрибута до одного значения.
// Возвращает (изменился ли домен, осталась ли система непротиворечивой).
func (d *deducer) restrict(f Fact) (changed, ok bool) {
	cur, bit := d.factMask(f)
	next := *cur & bit
	if next == 0 {
		return false, false
	}
	if next == *cur {
		return false, true
	}
	*cur = next
	return true, true
}

// exclude исключает одно значение из домена атрибута.
func (d *deducer) exclude(f Fact) (changed, ok bool) {
	cur, bit := d.factMask(f)
	next := *cur &^ bit
	if next == 0 {
		return false, false
	}
	if next == *cur {
		return false, true
	}
	*cur = next
	return true, true
}

// forced: домен атрибута уже совпадает со значением факта.
func (d *deducer) forced(f Fact) bool {
	cur, bit := d.factMask(f)
	return *cur == bit
}

// possible: значение факта еще допустимо.
func (d *deducer) possible(f Fact) bool {
	cur, bit := d.factMask(f)
	return *cur&bit != 0
}

func (cl Clue) generalFact(p Position) Fact {
	return Fact{Position: p, Attribute: cl.Attribute, Shape: cl.Shape, Number: cl.Number}
}

// applyClue выполняет один шаг распространения для подсказки.
func (d *deducer) applyClue(cl Clue) (changed, ok bool) {
	switch cl.Kind {
	case ClueExplicit:
		if cl.Fact == nil {
			return false, true
		}
		return d.restrict(*cl.Fact)

	case ClueGeneral:
		if cl.Count == nil {
			return false, true
		}
		count := *cl.Count
		var forcedPs, openPs []Position
		for _, p := range scopePositions(d.size, cl.Scope, cl.ScopeIndex) {
			f := cl.generalFact(p)
			switch {
			case d.forced(f):
				forcedPs = append(forcedPs, p)
			case d.possible(f):
				openPs = append(openPs, p)
			}
		}
		if len(forcedPs) > count || len(forcedPs)+len(openPs) < count {
			return false, false
		}
		// все вхождения найдены: значение исключается из остальных ячеек
		if len(forcedPs) == count {
			for _, p := range openPs {
				ch, o := d.exclude(cl.generalFact(p))
				if !o {
					return changed, false
				}
				changed = changed || ch
			}
			return changed, true
		}
		// кандидатов ровно столько, сколько нужно: все они обязаны иметь значение
		if len(forcedPs)+len(openPs) == count {
			for _, p := range openPs {
				ch, o := d.restrict(cl.generalFact(p))
				if !o {
					return changed, false
				}
				changed = changed || ch
			}
		}
		return changed, true

	case ClueConditional:
		if cl.Condition == nil || cl.Consequence == nil {
			return false, true
		}
		// modus ponens: условие неизбежно -> следствие становится фактом
		if d.forced(*cl.Condition) {
			return d.restrict(*cl.Consequence)
		}
		// контрапозиция: следствие невозможно -> условие ложно
		if !d.possible(*cl.Consequence) {
			return d.exclude(*cl.Condition)
		}
		return false, true
	}
	return false, true
}

// Apply прогоняет пул подсказок до неподвижной точки.
// false означает противоречие (невозможно для истинных подсказок одного поля).
func (d *deducer) Apply(clues []Clue) bool {
	for {
		changed := false
		for _, cl := range clues {
			ch, ok := d.applyClue(cl)
			if !ok {
				return false
			}
			changed = changed || ch
		}
		if !changed {
			return true
		}
	}
}

func singleton(mask uint8) bool {
	return bits.OnesCount8(mask) == 1
}

// determinedAt сообщает, определены ли фигура и число ячейки.
func (d *deducer) determinedAt(p Position) (shape, number bool) {
	dom := d.at(p)
	return singleton(dom.shapes), singleton(dom.numbers)
}

// DeterminedCount - число определенных атрибутов (0..2*N*N).
func (d *deducer) DeterminedCount() int {
	n := 0
	for i := range d.cells {
		if singleton(d.cells[i].shapes) {
			n++
		}
		if singleton(d.cells[i].numbers) {
			n++
		}
	}
	return n
}

// Determined: оба атрибута каждой ячейки однозначны.
func (d *deducer) Determined() bool {
	return d.DeterminedCount() == 2*d.size*d.size
}

// Solution восстанавливает единственное поле, если оно полностью определено.
func (d *deducer) Solution() (*Board, bool) {
	if !d.Determined() {
		return nil, false
	}
	b := &Board{Size: d.size, cells: make([]Cell, d.size*d.size)}
	for i, dom := range d.cells {
		b.cells[i] = Cell{
			Shape:  Shapes[bits.TrailingZeros8(dom.shapes)],
			Number: bits.TrailingZeros8(dom.numbers) + 1,
		}
	}
	return b, true
}
