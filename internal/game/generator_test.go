package game

import (
	"errors"
	"testing"
)

// свойство генератора: каждая подсказка истинна на породившем ее поле,
// а совокупный пул однозначно восстанавливает это поле с нуля
func TestGeneratePuzzleSolvableAndTruthful(t *testing.T) {
	for size := MinBoardSize; size <= MaxBoardSize; size++ {
		for seed := int64(1); seed <= 10; seed++ {
			board, clues, err := GeneratePuzzle(size, seed, DefaultGeneratorConfig())
			if err != nil {
				t.Fatalf("size=%d seed=%d: %v", size, seed, err)
			}
			if len(clues) == 0 {
				t.Fatalf("size=%d seed=%d: пустой пул подсказок", size, seed)
			}

			for i, cl := range clues {
				if cl.ID != i {
					t.Fatalf("size=%d seed=%d: подсказка %d имеет ID %d", size, seed, i, cl.ID)
				}
				if !cl.Holds(board) {
					t.Fatalf("size=%d seed=%d: ложная подсказка: %s", size, seed, cl)
				}
			}

			d := newDeducer(size)
			if !d.Apply(clues) {
				t.Fatalf("size=%d seed=%d: пул противоречив", size, seed)
			}
			if !d.Determined() {
				t.Fatalf("size=%d seed=%d: пул не определяет поле полностью", size, seed)
			}
			sol, ok := d.Solution()
			if !ok {
				t.Fatalf("size=%d seed=%d: Solution() не восстановилось", size, seed)
			}
			for _, p := range board.Positions() {
				if sol.At(p) != board.At(p) {
					t.Fatalf("size=%d seed=%d: ячейка %s восстановлена как %v, истина %v",
						size, seed, p, sol.At(p), board.At(p))
				}
			}
		}
	}
}

func TestGeneratePuzzleDeterministic(t *testing.T) {
	b1, c1, err := GeneratePuzzle(3, 42, DefaultGeneratorConfig())
	if err != nil {
		t.Fatal(err)
	}
	b2, c2, err := GeneratePuzzle(3, 42, DefaultGeneratorConfig())
	if err != nil {
		t.Fatal(err)
	}

	for _, p := range b1.Positions() {
		if b1.At(p) != b2.At(p) {
			t.Fatalf("одинаковый seed дал разные поля в %s", p)
		}
	}
	if len(c1) != len(c2) {
		t.Fatalf("одинаковый seed дал разное число подсказок: %d vs %d", len(c1), len(c2))
	}
	for i := range c1 {
		if c1[i].String() != c2[i].String() {
			t.Fatalf("подсказка %d различается: %q vs %q", i, c1[i], c2[i])
		}
	}
}

func TestGeneratePuzzleBadSize(t *testing.T) {
	if _, _, err := GeneratePuzzle(1, 1, DefaultGeneratorConfig()); !errors.Is(err, ErrBoardSize) {
		t.Errorf("ожидали ErrBoardSize, получили %v", err)
	}
}

// избыточные подсказки добавляются сверх решающего ядра
func TestGeneratePuzzleSurplus(t *testing.T) {
	cfg := DefaultGeneratorConfig()
	cfg.SurplusClues = 0
	_, lean, err := GeneratePuzzle(4, 7, cfg)
	if err != nil {
		t.Fatal(err)
	}

	cfg.SurplusClues = 6
	_, rich, err := GeneratePuzzle(4, 7, cfg)
	if err != nil {
		t.Fatal(err)
	}

	if len(rich) != len(lean)+6 {
		t.Errorf("ожидали %d подсказок с избытком, получили %d", len(lean)+6, len(rich))
	}
}
