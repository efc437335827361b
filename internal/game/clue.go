package game

import "fmt"

// Вид подсказки. Числовые значения совпадают с историческим протоколом клиента.
type ClueKind int

const (
	ClueExplicit    ClueKind = 1 // "Cell (r,c) has number 3"
	ClueGeneral     ClueKind = 2 // "Row 2 has 2 stars"
	ClueConditional ClueKind = 3 // "If X then Y"
)

type Scope string

const (
	ScopeRow Scope = "row"
	ScopeCol Scope = "col"
)

// Fact - одно утверждение об одном атрибуте одной ячейки.
// Используется как явная подсказка и как стороны импликации.
type Fact struct {
	Position  Position  `json:"position"`
	Attribute Attribute `json:"attribute"`
	Shape     Shape     `json:"shape,omitempty"`
	Number    int       `json:"number,omitempty"`
}

// Holds сообщает, истинен ли факт на данном поле.
func (f Fact) Holds(b *Board) bool {
	c := b.At(f.Position)
	if f.Attribute == AttrShape {
		return c.Shape == f.Shape
	}
	return c.Number == f.Number
}

func (f Fact) valueString() string {
	if f.Attribute == AttrShape {
		return string(f.Shape)
	}
	return fmt.Sprintf("%d", f.Number)
}

func (f Fact) String() string {
	return fmt.Sprintf("Cell %s has %s=%s", f.Position, f.Attribute, f.valueString())
}

// Clue - помеченное объединение трех видов подсказок. Поля заполняются
// в зависимости от Kind, ветвление всегда исчерпывающее по Kind.
type Clue struct {
	ID   int      `json:"id"`
	Kind ClueKind `json:"clue_type"`

	// явная подсказка
	Fact *Fact `json:"fact,omitempty"`

	// общая подсказка: ровно Count ячеек в строке/столбце имеют значение
	Scope      Scope     `json:"scope,omitempty"`
	ScopeIndex int       `json:"scope_index,omitempty"`
	Attribute  Attribute `json:"attribute,omitempty"`
	Shape      Shape     `json:"shape,omitempty"`
	Number     int       `json:"number,omitempty"`
	Count      *int      `json:"count,omitempty"`

	// условная подсказка: импликация между двумя фактами
	Condition   *Fact `json:"condition,omitempty"`
	Consequence *Fact `json:"consequence,omitempty"`

	// позиции, которые подсказка помогла определить при генерации;
	// служит весом полезности при раздаче игрокам
	Determines []Position `json:"-"`
}

func NewExplicitClue(f Fact) Clue {
	fc := f
	return Clue{Kind: ClueExplicit, Fact: &fc}
}

func NewGeneralClue(scope Scope, index int, attr Attribute, shape Shape, number, count int) Clue {
	n := count
	return Clue{
		Kind:       ClueGeneral,
		Scope:      scope,
		ScopeIndex: index,
		Attribute:  attr,
		Shape:      shape,
		Number:     number,
		Count:      &n,
	}
}

func NewConditionalClue(condition, consequence Fact) Clue {
	cond, cons := condition, consequence
	return Clue{Kind: ClueConditional, Condition: &cond, Consequence: &cons}
}

// scopePositions перечисляет позиции строки или столбца index.
func scopePositions(size int, scope Scope, index int) []Position {
	out := make([]Position, size)
	for i := 0; i < size; i++ {
		if scope == ScopeRow {
			out[i] = Position{Row: index, Col: i}
		} else {
			out[i] = Position{Row: i, Col: index}
		}
	}
	return out
}

func (cl Clue) matchesCell(c Cell) bool {
	if cl.Attribute == AttrShape {
		return c.Shape == cl.Shape
	}
	return c.Number == cl.Number
}

// Holds проверяет истинность подсказки на данном поле. Каждая сгенерированная
// подсказка обязана быть истинной на породившем ее поле; условная с ложным
// условием истинна вакуумно.
func (cl Clue) Holds(b *Board) bool {
	switch cl.Kind {
	case ClueExplicit:
		return cl.Fact != nil && cl.Fact.Holds(b)
	case ClueGeneral:
		if cl.Count == nil {
			return false
		}
		n := 0
		for _, p := range scopePositions(b.Size, cl.Scope, cl.ScopeIndex) {
			if cl.matchesCell(b.At(p)) {
				n++
			}
		}
		return n == *cl.Count
	case ClueConditional:
		if cl.Condition == nil || cl.Consequence == nil {
			return false
		}
		return !cl.Condition.Holds(b) || cl.Consequence.Holds(b)
	}
	return false
}

func (cl Clue) valueString() string {
	if cl.Attribute == AttrShape {
		return string(cl.Shape)
	}
	return fmt.Sprintf("%d", cl.Number)
}

// String - детерминированное текстовое представление подсказки,
// формат совместим с историческими сообщениями клиента.
func (cl Clue) String() string {
	switch cl.Kind {
	case ClueExplicit:
		if cl.Fact != nil {
			return cl.Fact.String()
		}
	case ClueGeneral:
		if cl.Count != nil {
			scope := "Row"
			if cl.Scope == ScopeCol {
				scope = "Col"
			}
			return fmt.Sprintf("%s %d has %d %ss", scope, cl.ScopeIndex, *cl.Count, cl.valueString())
		}
	case ClueConditional:
		if cl.Condition != nil && cl.Consequence != nil {
			return fmt.Sprintf("If (%s), then (%s)", cl.Condition, cl.Consequence)
		}
	}
	return "Unknown clue"
}
