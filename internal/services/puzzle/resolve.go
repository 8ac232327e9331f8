package puzzle

import (
	"github.com/Brownie996/Bible-block/internal/models/puzzle"
)

// スコア定数。ライン消去なしの配置には固定の加点のみ入ります。
const (
	PlacementScore = 10  // ライン消去なしで配置だけ成立したときの加点
	LineBaseScore  = 100 // ライン消去の基礎点（消去ライン数の2乗に掛ける）
)

// PlacementResult は1回の配置試行の結果です。
// Accepted が false の場合、盤面は入力のまま変化せず、コンボも維持されます
// （拒否はエラーではなく通常の結果値で、呼び出し側はピースをトレイに戻すだけです）。
type PlacementResult struct {
	Accepted           bool        `json:"accepted"`             // 配置が受理されたか
	Grid               puzzle.Grid `json:"grid"`                 // 配置・消去後の盤面
	ClearedCharIndices []int       `json:"cleared_char_indices"` // このターンで新たに回収された文字のインデックス
	LinesCleared       int         `json:"lines_cleared"`        // 消去されたライン数（行+列）
	ScoreDelta         int         `json:"score_delta"`          // このターンの加点
	NewCombo           int         `json:"new_combo"`            // 配置後のコンボ値
}

// ResolvePlacement は1回の配置を検証・確定し、ライン消去と文字回収を行います。
// 入力に対して決定的な純粋関数で、受け取った盤面は変更せず結果の盤面を返します。
//
// 処理の流れ:
//  1. 範囲外または衝突なら拒否（盤面は変化しない）
//  2. 盤面のコピーにピースを固定する
//  3. 完成した行と列を独立に検出する（同じマスが行と列の両方に属してもよい）
//  4. 完成ラインの全マスを空にし、未回収の文字があれば回収する
//     （行と列で二重に消去されても文字の回収は1回だけ）
//  5. スコアとコンボを計算する
//
// スコア: 消去なしは固定 PlacementScore 点でコンボは0にリセット。
// n ライン消去は n²×100 点で、直前の配置でもライン消去していた（受け取った
// コンボが正の）場合は2倍。コンボは消去のたびに +1 されます。
//
// Parameters:
//   grid  : 現在の盤面
//   piece : 配置するピース
//   pos   : ピースの左上アンカーを置く座標（呼び出し側で整数座標に丸め済み）
//   combo : 現在のコンボ値
// Returns:
//   PlacementResult: 配置結果
func ResolvePlacement(grid puzzle.Grid, piece puzzle.Piece, pos puzzle.Position, combo int) PlacementResult {
	if grid.Collides(piece, pos) {
		return PlacementResult{
			Accepted: false,
			Grid:     grid,
			NewCombo: combo,
		}
	}

	// grid は値渡しなのでこのコピーに直接固定してよい
	grid.Stamp(piece, pos)

	// 完成した行と列を検出（消去前の盤面に対して両方を先に確定させる）
	var fullRows, fullCols []int
	for y := 0; y < puzzle.Size; y++ {
		complete := true
		for x := 0; x < puzzle.Size; x++ {
			if !grid[y][x].Filled {
				complete = false
				break
			}
		}
		if complete {
			fullRows = append(fullRows, y)
		}
	}
	for x := 0; x < puzzle.Size; x++ {
		complete := true
		for y := 0; y < puzzle.Size; y++ {
			if !grid[y][x].Filled {
				complete = false
				break
			}
		}
		if complete {
			fullCols = append(fullCols, x)
		}
	}

	// 完成ラインを消去し、文字を回収する。
	// Collected フラグを立ててから回収リストに積むため、同じマスが
	// 行と列の両方で消去されても二重回収にはなりません。
	var cleared []int
	clearCell := func(cell *puzzle.Cell) {
		cell.Filled = false
		cell.Color = ""
		if cell.CharIndex != puzzle.NoChar && !cell.Collected {
			cell.Collected = true
			cleared = append(cleared, cell.CharIndex)
		}
	}
	for _, y := range fullRows {
		for x := 0; x < puzzle.Size; x++ {
			clearCell(&grid[y][x])
		}
	}
	for _, x := range fullCols {
		for y := 0; y < puzzle.Size; y++ {
			clearCell(&grid[y][x])
		}
	}

	// スコアとコンボの更新
	linesCleared := len(fullRows) + len(fullCols)
	var scoreDelta, newCombo int
	if linesCleared == 0 {
		scoreDelta = PlacementScore
		newCombo = 0
	} else {
		scoreDelta = linesCleared * linesCleared * LineBaseScore
		if combo > 0 {
			scoreDelta *= 2 // 直前の配置でもライン消去していればコンボボーナスで2倍
		}
		newCombo = combo + 1
	}

	return PlacementResult{
		Accepted:           true,
		Grid:               grid,
		ClearedCharIndices: cleared,
		LinesCleared:       linesCleared,
		ScoreDelta:         scoreDelta,
		NewCombo:           newCombo,
	}
}
