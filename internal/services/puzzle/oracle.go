package puzzle

import (
	"github.com/Brownie996/Bible-block/internal/models/puzzle"
)

// CanPlaceAnywhere は指定されたピースを現在の盤面のどこかに合法に置けるかを
// 全探索で判定します。ゲームオーバー判定に使用されます。
//
// 最大4つの回転状態それぞれについて、ピースがはみ出さない全アンカー位置
// (0 ≤ y ≤ Size-行数, 0 ≤ x ≤ Size-列数) を走査し、衝突しない組み合わせが
// 1つでも見つかれば即座に true を返します。対称形（OやI）の重複回転は
// 除外しませんが、正しさには影響せず Size=10・最大4マスでは十分高速です。
//
// Parameters:
//   grid  : 現在の盤面
//   piece : 判定対象のピース
// Returns:
//   bool: 置ける場所が1つでもあればtrue
func CanPlaceAnywhere(grid puzzle.Grid, piece puzzle.Piece) bool {
	rotated := piece
	for r := 0; r < 4; r++ {
		for y := 0; y <= puzzle.Size-rotated.Rows(); y++ {
			for x := 0; x <= puzzle.Size-rotated.Cols(); x++ {
				if !grid.Collides(rotated, puzzle.Position{X: x, Y: y}) {
					return true
				}
			}
		}
		rotated = rotated.Rotate()
	}
	return false
}
