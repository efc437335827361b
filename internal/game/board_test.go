package game

import (
	"errors"
	"math/rand"
	"testing"
)

func TestGenerateBoardSizeBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for _, size := range []int{-1, 0, 1, 5, 10} {
		if _, err := GenerateBoard(size, rng); !errors.Is(err, ErrBoardSize) {
			t.Errorf("size=%d: ожидали ErrBoardSize, получили %v", size, err)
		}
	}
}

// поле раздается из колоды без повторов: все ячейки - уникальные пары
func TestGenerateBoardDealsDistinctCells(t *testing.T) {
	for size := MinBoardSize; size <= MaxBoardSize; size++ {
		for seed := int64(1); seed <= 5; seed++ {
			rng := rand.New(rand.NewSource(seed))
			b, err := GenerateBoard(size, rng)
			if err != nil {
				t.Fatalf("size=%d seed=%d: %v", size, seed, err)
			}

			seen := make(map[Cell]bool)
			for _, p := range b.Positions() {
				c := b.At(p)
				if seen[c] {
					t.Fatalf("size=%d seed=%d: повтор ячейки %v", size, seed, c)
				}
				seen[c] = true

				if c.Number < 1 || c.Number > size {
					t.Fatalf("size=%d: число %d вне диапазона 1..%d", size, c.Number, size)
				}
				if c.Shape.Emoji() == "" {
					t.Fatalf("size=%d: неизвестная фигура %q", size, c.Shape)
				}
			}
		}
	}
}

func TestGenerateBoardDeterministic(t *testing.T) {
	a, err := GenerateBoard(4, rand.New(rand.NewSource(99)))
	if err != nil {
		t.Fatal(err)
	}
	b, err := GenerateBoard(4, rand.New(rand.NewSource(99)))
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range a.Positions() {
		if a.At(p) != b.At(p) {
			t.Fatalf("одинаковый seed дал разные поля в %s: %v vs %v", p, a.At(p), b.At(p))
		}
	}
}

func TestPositionKey(t *testing.T) {
	p := Position{Row: 2, Col: 3}
	if p.Key() != "2,3" {
		t.Errorf("Key() = %q, ожидали %q", p.Key(), "2,3")
	}
	if p.String() != "(2,3)" {
		t.Errorf("String() = %q, ожидали %q", p.String(), "(2,3)")
	}
}
