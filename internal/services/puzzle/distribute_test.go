package puzzle

import (
	"math/rand"
	"testing"

	"github.com/Brownie996/Bible-block/internal/models/puzzle"
)

// collectPlacedChars は盤面から文字インデックス→文字のマップを取り出します。
func collectPlacedChars(t *testing.T, grid puzzle.Grid) map[int]string {
	t.Helper()
	placed := make(map[int]string)
	for y := 0; y < puzzle.Size; y++ {
		for x := 0; x < puzzle.Size; x++ {
			cell := grid[y][x]
			if cell.CharIndex == puzzle.NoChar {
				if cell.Char != "" {
					t.Fatalf("Cell (%d,%d) has Char %q but no CharIndex", x, y, cell.Char)
				}
				continue
			}
			if _, dup := placed[cell.CharIndex]; dup {
				t.Fatalf("CharIndex %d assigned to more than one cell", cell.CharIndex)
			}
			placed[cell.CharIndex] = cell.Char
		}
	}
	return placed
}

// TestDistribute_ShortPhrase は短い聖句の全文字が重複なく配置されることをテストします。
func TestDistribute_ShortPhrase(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	phrase := "ABCDE"

	grid := Distribute(puzzle.NewGrid(), phrase, rng)
	placed := collectPlacedChars(t, grid)

	if len(placed) != len(phrase) {
		t.Fatalf("Expected %d characters placed, got %d", len(phrase), len(placed))
	}
	for i, r := range []rune(phrase) {
		if placed[i] != string(r) {
			t.Errorf("Expected CharIndex %d to carry %q, got %q", i, string(r), placed[i])
		}
	}
}

// TestDistribute_MultiBytePhrase はマルチバイト文字（日本語）がルーン単位で配置されることをテストします。
func TestDistribute_MultiBytePhrase(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	phrase := "はじめに神は"

	grid := Distribute(puzzle.NewGrid(), phrase, rng)
	placed := collectPlacedChars(t, grid)

	runes := []rune(phrase)
	if len(placed) != len(runes) {
		t.Fatalf("Expected %d runes placed, got %d", len(runes), len(placed))
	}
	for i, r := range runes {
		if placed[i] != string(r) {
			t.Errorf("Expected CharIndex %d to carry %q, got %q", i, string(r), placed[i])
		}
	}
}

// TestDistribute_EmptyPhrase は空文字列で何も配置されないことをテストします。
func TestDistribute_EmptyPhrase(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	grid := Distribute(puzzle.NewGrid(), "", rng)
	if placed := collectPlacedChars(t, grid); len(placed) != 0 {
		t.Errorf("Expected no characters placed for empty phrase, got %d", len(placed))
	}
}

// TestDistribute_DensityCap は1行・1列あたりの文字数が上限以下に抑えられることをテストします。
func TestDistribute_DensityCap(t *testing.T) {
	phrase := "In the beginning God created the heaven" // 39文字 → 上限 ceil(39/5)+1 = 9
	runes := []rune(phrase)
	half := puzzle.Size / 2
	maxPerLine := (len(runes)+half-1)/half + 1

	for seed := int64(0); seed < 10; seed++ {
		rng := rand.New(rand.NewSource(seed))
		grid := Distribute(puzzle.NewGrid(), phrase, rng)

		var rowCount, colCount [puzzle.Size]int
		for y := 0; y < puzzle.Size; y++ {
			for x := 0; x < puzzle.Size; x++ {
				if grid[y][x].CharIndex != puzzle.NoChar {
					rowCount[y]++
					colCount[x]++
				}
			}
		}
		for i := 0; i < puzzle.Size; i++ {
			if rowCount[i] > maxPerLine {
				t.Errorf("seed %d: row %d holds %d characters, exceeds cap %d", seed, i, rowCount[i], maxPerLine)
			}
			if colCount[i] > maxPerLine {
				t.Errorf("seed %d: column %d holds %d characters, exceeds cap %d", seed, i, colCount[i], maxPerLine)
			}
		}
	}
}

// TestDistribute_FullBoardPhrase は盤面サイズちょうどの100文字の聖句で
// 全マスに文字が行き渡ることをテストします（上限 21 > 10 のため制限は効きません）。
func TestDistribute_FullBoardPhrase(t *testing.T) {
	runes := make([]rune, puzzle.Size*puzzle.Size)
	for i := range runes {
		runes[i] = rune('a' + i%26)
	}
	rng := rand.New(rand.NewSource(99))

	grid := Distribute(puzzle.NewGrid(), string(runes), rng)
	placed := collectPlacedChars(t, grid)

	if len(placed) != len(runes) {
		t.Fatalf("Expected all %d characters placed on the full board, got %d", len(runes), len(placed))
	}
}

// TestDistribute_PreservesBlocksAndResetsChars は再配布でブロックの埋まり状態が
// 維持され、前の聖句の文字状態だけがリセットされることをテストします。
func TestDistribute_PreservesBlocksAndResetsChars(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	grid := Distribute(puzzle.NewGrid(), "OLD PHRASE", rng)

	// 前のラウンドで積まれたブロックを再現
	grid[4][4].Filled = true
	grid[4][4].Color = "#ff0000"
	// 回収済みフラグも残っている状態にする
	for y := 0; y < puzzle.Size; y++ {
		for x := 0; x < puzzle.Size; x++ {
			if grid[y][x].CharIndex != puzzle.NoChar {
				grid[y][x].Collected = true
			}
		}
	}

	redistributed := Distribute(grid, "NEW", rng)

	if !redistributed[4][4].Filled || redistributed[4][4].Color != "#ff0000" {
		t.Error("Expected block state (Filled/Color) to survive redistribution.")
	}
	for y := 0; y < puzzle.Size; y++ {
		for x := 0; x < puzzle.Size; x++ {
			if redistributed[y][x].Collected {
				t.Fatalf("Expected Collected flag at (%d,%d) to be reset by redistribution", x, y)
			}
		}
	}
	placed := collectPlacedChars(t, redistributed)
	if len(placed) != 3 {
		t.Fatalf("Expected exactly 3 characters of the new phrase, got %d", len(placed))
	}
}

// TestDistribute_DoesNotMutateInput は配布が呼び出し側の盤面を変更しないことをテストします。
func TestDistribute_DoesNotMutateInput(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	original := puzzle.NewGrid()
	_ = Distribute(original, "ABC", rng)

	if original != puzzle.NewGrid() {
		t.Error("Expected caller's grid to be unchanged (pass by value), but it was mutated.")
	}
}

// TestDistribute_SeededDeterminism は同じシードで同じ配置になることをテストします。
func TestDistribute_SeededDeterminism(t *testing.T) {
	a := Distribute(puzzle.NewGrid(), "DETERMINISM", rand.New(rand.NewSource(11)))
	b := Distribute(puzzle.NewGrid(), "DETERMINISM", rand.New(rand.NewSource(11)))
	if a != b {
		t.Error("Expected identical distributions for identical seeds.")
	}
}
