package puzzle

import (
	"testing"

	"github.com/Brownie996/Bible-block/internal/models/puzzle"
)

// fillRow は指定行の [fromX, toX] 区間のマスを埋めます。
func fillRow(grid *puzzle.Grid, y, fromX, toX int) {
	for x := fromX; x <= toX; x++ {
		grid[y][x].Filled = true
		grid[y][x].Color = "#888888"
	}
}

// fillCol は指定列の [fromY, toY] 区間のマスを埋めます。
func fillCol(grid *puzzle.Grid, x, fromY, toY int) {
	for y := fromY; y <= toY; y++ {
		grid[y][x].Filled = true
		grid[y][x].Color = "#888888"
	}
}

// TestResolvePlacement_Rejected は衝突する配置が拒否され、盤面もコンボも
// 変化しないことをテストします。
func TestResolvePlacement_Rejected(t *testing.T) {
	grid := puzzle.NewGrid()
	grid[0][0].Filled = true
	piece := puzzle.NewPiece(puzzle.TypeO)

	result := ResolvePlacement(grid, piece, puzzle.Position{X: 0, Y: 0}, 3)

	if result.Accepted {
		t.Fatal("Expected placement onto a filled cell to be rejected.")
	}
	if result.Grid != grid {
		t.Error("Expected grid to be unchanged after a rejected placement.")
	}
	if result.NewCombo != 3 {
		t.Errorf("Expected combo to be preserved on rejection, got %d", result.NewCombo)
	}
	if result.ScoreDelta != 0 || result.LinesCleared != 0 || len(result.ClearedCharIndices) != 0 {
		t.Error("Expected a rejected placement to carry no score, lines or characters.")
	}

	// 範囲外も同様に拒否
	outOfBounds := ResolvePlacement(grid, piece, puzzle.Position{X: puzzle.Size - 1, Y: 0}, 0)
	if outOfBounds.Accepted {
		t.Error("Expected out-of-bounds placement to be rejected.")
	}
}

// TestResolvePlacement_NoLines はライン消去なしの配置が固定10点でコンボを
// リセットすることをテストします。
func TestResolvePlacement_NoLines(t *testing.T) {
	grid := puzzle.NewGrid()
	piece := puzzle.NewPiece(puzzle.TypeO)

	result := ResolvePlacement(grid, piece, puzzle.Position{X: 0, Y: 0}, 2)

	if !result.Accepted {
		t.Fatal("Expected placement on an empty grid to be accepted.")
	}
	if result.ScoreDelta != PlacementScore {
		t.Errorf("Expected score delta %d, got %d", PlacementScore, result.ScoreDelta)
	}
	if result.NewCombo != 0 {
		t.Errorf("Expected combo to reset to 0 without line clears, got %d", result.NewCombo)
	}
	if !result.Grid[0][0].Filled || !result.Grid[1][1].Filled {
		t.Error("Expected the O piece cells to be stamped onto the grid.")
	}
}

// TestResolvePlacement_ScoreTable は消去ライン数ごとのスコア
// (1→100, 2→400, 3→900, 4→1600) をテストします。
func TestResolvePlacement_ScoreTable(t *testing.T) {
	cases := []struct {
		lines int
		score int
	}{
		{1, 100},
		{2, 400},
		{3, 900},
		{4, 1600},
	}
	for _, c := range cases {
		grid := puzzle.NewGrid()
		// 下から c.lines 本の行を x=9 以外すべて埋め、縦Iで右端の列を
		// 差し込んで同時に完成させる（列9自体は y=0..5 が空のため完成しない）
		for i := 0; i < c.lines; i++ {
			y := puzzle.Size - 1 - i
			fillRow(&grid, y, 0, puzzle.Size-2)
		}
		piece := puzzle.NewPiece(puzzle.TypeI).Rotate() // 4x1 縦
		pos := puzzle.Position{X: puzzle.Size - 1, Y: puzzle.Size - 4}

		result := ResolvePlacement(grid, piece, pos, 0)
		if !result.Accepted {
			t.Fatalf("lines=%d: expected placement to be accepted", c.lines)
		}
		if result.LinesCleared != c.lines {
			t.Errorf("lines=%d: expected %d cleared lines, got %d", c.lines, c.lines, result.LinesCleared)
		}
		if result.ScoreDelta != c.score {
			t.Errorf("lines=%d: expected score %d, got %d", c.lines, c.score, result.ScoreDelta)
		}
		if result.NewCombo != 1 {
			t.Errorf("lines=%d: expected combo 1, got %d", c.lines, result.NewCombo)
		}
	}
}

// TestResolvePlacement_ComboDoublesScore は直前の配置でもライン消去していた場合に
// スコアが2倍になることをテストします。
func TestResolvePlacement_ComboDoublesScore(t *testing.T) {
	grid := puzzle.NewGrid()
	fillRow(&grid, puzzle.Size-1, 0, puzzle.Size-5) // x=6..9 を空ける
	piece := puzzle.NewPiece(puzzle.TypeI)          // 1x4
	pos := puzzle.Position{X: puzzle.Size - 4, Y: puzzle.Size - 1}

	result := ResolvePlacement(grid, piece, pos, 1)

	if result.LinesCleared != 1 {
		t.Fatalf("Expected 1 cleared line, got %d", result.LinesCleared)
	}
	if result.ScoreDelta != 200 {
		t.Errorf("Expected doubled score 200 with incoming combo, got %d", result.ScoreDelta)
	}
	if result.NewCombo != 2 {
		t.Errorf("Expected combo to increment to 2, got %d", result.NewCombo)
	}
}

// TestResolvePlacement_ClearedLinesAreEmpty は消去されたラインの全マスが空になり、
// 無関係なマスは変化しないことをテストします。
func TestResolvePlacement_ClearedLinesAreEmpty(t *testing.T) {
	grid := puzzle.NewGrid()
	fillRow(&grid, 9, 0, 5)
	grid[3][3].Filled = true // 無関係なブロック
	piece := puzzle.NewPiece(puzzle.TypeI)

	result := ResolvePlacement(grid, piece, puzzle.Position{X: 6, Y: 9}, 0)

	for x := 0; x < puzzle.Size; x++ {
		if result.Grid[9][x].Filled {
			t.Errorf("Expected cell (%d,9) to be empty after the line clear.", x)
		}
		if result.Grid[9][x].Color != "" {
			t.Errorf("Expected cell (%d,9) color to be cleared.", x)
		}
	}
	if !result.Grid[3][3].Filled {
		t.Error("Expected unrelated block at (3,3) to remain filled.")
	}
}

// TestResolvePlacement_RowAndColumnCross は1回の配置で行と列が同時に完成した場合、
// 交差マスの文字が1回だけ回収されることをテストします。
func TestResolvePlacement_RowAndColumnCross(t *testing.T) {
	grid := puzzle.NewGrid()
	fillCol(&grid, 0, 0, 5)             // 列0の上側 y=0..5
	fillRow(&grid, 9, 1, puzzle.Size-1) // 行9の x=1..9
	// 交差マス (0,9) に文字を置く
	grid[9][0].Char = "神"
	grid[9][0].CharIndex = 7
	// 行9の別のマスにも文字を置く
	grid[9][4].Char = "愛"
	grid[9][4].CharIndex = 2

	piece := puzzle.NewPiece(puzzle.TypeI).Rotate() // 4x1 縦
	result := ResolvePlacement(grid, piece, puzzle.Position{X: 0, Y: 6}, 0)

	if !result.Accepted {
		t.Fatal("Expected placement to be accepted.")
	}
	if result.LinesCleared != 2 {
		t.Fatalf("Expected 1 row + 1 column = 2 cleared lines, got %d", result.LinesCleared)
	}
	if result.ScoreDelta != 400 {
		t.Errorf("Expected score 400 for 2 simultaneous lines, got %d", result.ScoreDelta)
	}

	// 交差マスの文字は1回だけ
	counts := make(map[int]int)
	for _, idx := range result.ClearedCharIndices {
		counts[idx]++
	}
	if counts[7] != 1 {
		t.Errorf("Expected cross-cell character index 7 collected exactly once, got %d times", counts[7])
	}
	if counts[2] != 1 {
		t.Errorf("Expected character index 2 collected exactly once, got %d times", counts[2])
	}
	if len(result.ClearedCharIndices) != 2 {
		t.Errorf("Expected exactly 2 collected characters, got %v", result.ClearedCharIndices)
	}
}

// TestResolvePlacement_CollectedCharNotRecollected は回収済みマスの文字が
// 再び回収されないことをテストします。
func TestResolvePlacement_CollectedCharNotRecollected(t *testing.T) {
	grid := puzzle.NewGrid()
	fillRow(&grid, 9, 0, 5)
	grid[9][2].Char = "A"
	grid[9][2].CharIndex = 0
	grid[9][2].Collected = true // すでに回収済み

	piece := puzzle.NewPiece(puzzle.TypeI)
	result := ResolvePlacement(grid, piece, puzzle.Position{X: 6, Y: 9}, 0)

	if len(result.ClearedCharIndices) != 0 {
		t.Errorf("Expected no characters collected (already collected), got %v", result.ClearedCharIndices)
	}
}

// TestResolvePlacement_ThreePlacementSequence は3回の配置で1行を完成させる
// 一連の流れ（10点 → 10点 → 100点・コンボ1）をテストします。
func TestResolvePlacement_ThreePlacementSequence(t *testing.T) {
	grid := puzzle.NewGrid()
	combo := 0

	// 1手目: 横Iを行9の左端へ
	r1 := ResolvePlacement(grid, puzzle.NewPiece(puzzle.TypeI), puzzle.Position{X: 0, Y: 9}, combo)
	if !r1.Accepted || r1.ScoreDelta != 10 || r1.NewCombo != 0 {
		t.Fatalf("move 1: expected accepted, 10 points, combo 0; got %+v", r1)
	}
	grid, combo = r1.Grid, r1.NewCombo

	// 2手目: 横Iを続きへ
	r2 := ResolvePlacement(grid, puzzle.NewPiece(puzzle.TypeI), puzzle.Position{X: 4, Y: 9}, combo)
	if !r2.Accepted || r2.ScoreDelta != 10 || r2.NewCombo != 0 {
		t.Fatalf("move 2: expected accepted, 10 points, combo 0; got %+v", r2)
	}
	grid, combo = r2.Grid, r2.NewCombo

	// 3手目: Oで残り2マスを埋めて行9を完成させる
	r3 := ResolvePlacement(grid, puzzle.NewPiece(puzzle.TypeO), puzzle.Position{X: 8, Y: 8}, combo)
	if !r3.Accepted {
		t.Fatal("move 3: expected placement to be accepted")
	}
	if r3.LinesCleared != 1 {
		t.Errorf("move 3: expected 1 cleared line, got %d", r3.LinesCleared)
	}
	if r3.ScoreDelta != 100 {
		t.Errorf("move 3: expected 100 points, got %d", r3.ScoreDelta)
	}
	if r3.NewCombo != 1 {
		t.Errorf("move 3: expected combo 1, got %d", r3.NewCombo)
	}
	// 行9は空、行8のOの上半分は残る
	for x := 0; x < puzzle.Size; x++ {
		if r3.Grid[9][x].Filled {
			t.Errorf("move 3: expected row 9 cell (%d,9) to be cleared", x)
		}
	}
	if !r3.Grid[8][8].Filled || !r3.Grid[8][9].Filled {
		t.Error("move 3: expected the upper half of the O piece to remain on row 8.")
	}
}
