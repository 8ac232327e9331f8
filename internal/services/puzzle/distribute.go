package puzzle

import (
	"log"
	"math/rand"

	"github.com/Brownie996/Bible-block/internal/models/puzzle"
)

// Distribute は聖句の各文字を盤面のマスへ散りばめた新しい盤面を返します。
// 文字の割り当て状態（Char / CharIndex / Collected）は最初に全マスでリセットされますが、
// ブロックの埋まり状態（Filled / Color）はそのまま残ります。前のラウンドで積まれた
// ブロックの上から新しい聖句を配り直すためです。
//
// アルゴリズム:
//  1. 全 Size*Size マスのインデックスをFisher–Yatesでシャッフルする
//  2. 1行・1列あたりの文字数の上限 maxPerLine = ceil(文字数 / (Size/2)) + 1 を計算する
//  3. シャッフル順にマスを走査し、その行と列の文字数が両方とも上限未満なら
//     次の未配置文字（聖句の先頭から順）をそこへ割り当てる
//  4. 全文字を配り終えるか、マスを走査し尽くしたら終了する
//
// 密度上限によって配りきれなかった文字はそのまま未配置になります。その場合
// ラウンドは完全回収できなくなりますが、これは元の挙動を保存したものです
// （詳細は DESIGN.md 参照）。
//
// Parameters:
//   grid       : 配布先の盤面（値渡しのため呼び出し側の盤面は変更されない）
//   phraseText : 配る聖句のテキスト
//   rng        : シャッフルに使用する乱数生成器
// Returns:
//   puzzle.Grid: 文字が割り当てられた新しい盤面
func Distribute(grid puzzle.Grid, phraseText string, rng *rand.Rand) puzzle.Grid {
	// 前の聖句の文字状態を全マスでリセット
	for y := 0; y < puzzle.Size; y++ {
		for x := 0; x < puzzle.Size; x++ {
			grid[y][x].Char = ""
			grid[y][x].CharIndex = puzzle.NoChar
			grid[y][x].Collected = false
		}
	}

	chars := []rune(phraseText)
	if len(chars) == 0 {
		return grid
	}

	// 全マスのインデックスをシャッフル
	indices := make([]int, puzzle.Size*puzzle.Size)
	for i := range indices {
		indices[i] = i
	}
	rng.Shuffle(len(indices), func(i, j int) {
		indices[i], indices[j] = indices[j], indices[i]
	})

	// 1行・1列あたりの文字数の上限（文字が偏らないようにするための緩い制限）
	half := puzzle.Size / 2
	maxPerLine := (len(chars)+half-1)/half + 1

	var rowCount, colCount [puzzle.Size]int
	next := 0 // 次に配置する文字の聖句内インデックス
	for _, idx := range indices {
		if next >= len(chars) {
			break
		}
		x := idx % puzzle.Size
		y := idx / puzzle.Size
		if rowCount[y] >= maxPerLine || colCount[x] >= maxPerLine {
			continue // このマスの行か列は上限に達しているためスキップ
		}
		grid[y][x].Char = string(chars[next])
		grid[y][x].CharIndex = next
		rowCount[y]++
		colCount[x]++
		next++
	}

	if next < len(chars) {
		// 密度上限により配りきれなかった文字は未配置のまま（ラウンドは完全回収不能になる）
		log.Printf("[Distribute] 密度上限により %d / %d 文字が未配置のままです", len(chars)-next, len(chars))
	}

	return grid
}
