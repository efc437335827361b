package game

import "testing"

// фиксированное поле 2x2 для проверок истинности:
//
//	circle/1  square/1
//	star/2    heart/2
func testBoard2() *Board {
	return &Board{Size: 2, cells: []Cell{
		{Shape: ShapeCircle, Number: 1}, {Shape: ShapeSquare, Number: 1},
		{Shape: ShapeStar, Number: 2}, {Shape: ShapeHeart, Number: 2},
	}}
}

func TestExplicitClueHolds(t *testing.T) {
	b := testBoard2()

	truth := NewExplicitClue(Fact{Position: Position{0, 0}, Attribute: AttrShape, Shape: ShapeCircle})
	if !truth.Holds(b) {
		t.Error("истинный явный факт признан ложным")
	}

	lie := NewExplicitClue(Fact{Position: Position{0, 0}, Attribute: AttrNumber, Number: 2})
	if lie.Holds(b) {
		t.Error("ложный явный факт признан истинным")
	}
}

func TestGeneralClueHolds(t *testing.T) {
	b := testBoard2()

	cases := []struct {
		clue Clue
		want bool
	}{
		{NewGeneralClue(ScopeRow, 0, AttrNumber, "", 1, 2), true},  // в строке 0 два числа 1
		{NewGeneralClue(ScopeRow, 0, AttrNumber, "", 1, 1), false},
		{NewGeneralClue(ScopeRow, 1, AttrShape, ShapeStar, 0, 1), true},
		{NewGeneralClue(ScopeCol, 0, AttrShape, ShapeCircle, 0, 1), true},
		{NewGeneralClue(ScopeCol, 1, AttrShape, ShapeCircle, 0, 0), true}, // отсутствие тоже факт
		{NewGeneralClue(ScopeCol, 1, AttrShape, ShapeCircle, 0, 1), false},
	}
	for i, tc := range cases {
		if got := tc.clue.Holds(b); got != tc.want {
			t.Errorf("случай %d (%s): Holds = %v, ожидали %v", i, tc.clue, got, tc.want)
		}
	}
}

func TestConditionalClueHolds(t *testing.T) {
	b := testBoard2()

	trueCond := Fact{Position: Position{0, 0}, Attribute: AttrShape, Shape: ShapeCircle}
	falseCond := Fact{Position: Position{0, 0}, Attribute: AttrShape, Shape: ShapeHeart}
	trueCons := Fact{Position: Position{1, 1}, Attribute: AttrNumber, Number: 2}
	falseCons := Fact{Position: Position{1, 1}, Attribute: AttrNumber, Number: 1}

	if !NewConditionalClue(trueCond, trueCons).Holds(b) {
		t.Error("истина -> истина должна выполняться")
	}
	if NewConditionalClue(trueCond, falseCons).Holds(b) {
		t.Error("истина -> ложь не должна выполняться")
	}
	// ложное условие делает импликацию вакуумно истинной
	if !NewConditionalClue(falseCond, falseCons).Holds(b) {
		t.Error("ложь -> ложь должна выполняться вакуумно")
	}
	if !NewConditionalClue(falseCond, trueCons).Holds(b) {
		t.Error("ложь -> истина должна выполняться")
	}
}

func TestClueString(t *testing.T) {
	explicit := NewExplicitClue(Fact{Position: Position{0, 1}, Attribute: AttrShape, Shape: ShapeStar})
	if got := explicit.String(); got != "Cell (0,1) has shape=star" {
		t.Errorf("explicit: %q", got)
	}

	general := NewGeneralClue(ScopeRow, 2, AttrShape, ShapeStar, 0, 2)
	if got := general.String(); got != "Row 2 has 2 stars" {
		t.Errorf("general: %q", got)
	}

	cond := NewConditionalClue(
		Fact{Position: Position{0, 0}, Attribute: AttrShape, Shape: ShapeCircle},
		Fact{Position: Position{1, 1}, Attribute: AttrNumber, Number: 2},
	)
	want := "If (Cell (0,0) has shape=circle), then (Cell (1,1) has number=2)"
	if got := cond.String(); got != want {
		t.Errorf("conditional: %q, ожидали %q", got, want)
	}
}
