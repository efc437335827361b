package game

import (
	"errors"
	"fmt"
	"math/rand"
)

// Атрибуты ячейки: фигура или число.
type Attribute string

const (
	AttrShape  Attribute = "shape"
	AttrNumber Attribute = "number"
)

type Shape string

const (
	ShapeCircle Shape = "circle"
	ShapeSquare Shape = "square"
	ShapeStar   Shape = "star"
	ShapeHeart  Shape = "heart"
)

// Shapes - фиксированный набор фигур, порядок стабилен для детерминированной генерации.
var Shapes = [4]Shape{ShapeCircle, ShapeSquare, ShapeStar, ShapeHeart}

// emoji для отображения фигур на клиенте
var shapeEmoji = map[Shape]string{
	ShapeCircle: "🟢",
	ShapeSquare: "🟦",
	ShapeStar:   "⭐",
	ShapeHeart:  "❤️",
}

// Emoji возвращает символ для фигуры (пустая строка для неизвестной).
func (s Shape) Emoji() string {
	return shapeEmoji[s]
}

type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
}

// Key возвращает ключ "r,c" для словарей снапшота.
func (p Position) Key() string {
	return fmt.Sprintf("%d,%d", p.Row, p.Col)
}

// Ячейка скрытого поля: одна фигура и одно число.
type Cell struct {
	Shape  Shape `json:"shape"`
	Number int   `json:"number"`
}

func (c Cell) String() string {
	return fmt.Sprintf("%d (%s)", c.Number, c.Shape)
}

const (
	MinBoardSize = 2
	// 4 фигуры x числа 1..N дают колоду 4N карт; поле N*N требует N <= 4
	MaxBoardSize = 4
)

var ErrBoardSize = errors.New("недопустимый размер поля")

// Board - скрытое поле истинных значений. Неизменяемо после генерации,
// им владеет исключительно GameSession.
type Board struct {
	Size  int
	cells []Cell
}

// GenerateBoard раздает поле из колоды всех пар (фигура, число) без повторов.
// Детерминирована при заданном rng.
func GenerateBoard(size int, rng *rand.Rand) (*Board, error) {
	if size < MinBoardSize || size > MaxBoardSize {
		return nil, ErrBoardSize
	}

	deck := make([]Cell, 0, len(Shapes)*size)
	for n := 1; n <= size; n++ {
		for _, s := range Shapes {
			deck = append(deck, Cell{Shape: s, Number: n})
		}
	}
	rng.Shuffle(len(deck), func(i, j int) { deck[i], deck[j] = deck[j], deck[i] })

	b := &Board{
		Size:  size,
		cells: make([]Cell, size*size),
	}
	copy(b.cells, deck[:size*size])
	return b, nil
}

// At возвращает истинное содержимое ячейки. Позиция должна быть в границах.
func (b *Board) At(p Position) Cell {
	return b.cells[p.Row*b.Size+p.Col]
}

// InBounds проверяет, что позиция лежит на поле.
func (b *Board) InBounds(p Position) bool {
	return p.Row >= 0 && p.Row < b.Size && p.Col >= 0 && p.Col < b.Size
}

// Positions перечисляет все позиции поля в порядке строк.
func (b *Board) Positions() []Position {
	out := make([]Position, 0, b.Size*b.Size)
	for r := 0; r < b.Size; r++ {
		for c := 0; c < b.Size; c++ {
			out = append(out, Position{Row: r, Col: c})
		}
	}
	return out
}

// Numbers возвращает допустимый диапазон чисел 1..Size.
func (b *Board) Numbers() []int {
	out := make([]int, b.Size)
	for i := range out {
		out[i] = i + 1
	}
	return out
}
