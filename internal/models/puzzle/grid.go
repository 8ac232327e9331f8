package puzzle

// Size は盤面の1辺のマス数です。盤面は常に Size×Size の正方形です。
const Size = 10

// NoChar はセルに聖句の文字が割り当てられていないことを示す CharIndex の値です。
const NoChar = -1

// Cell は盤面の1マスを表します。
// Char が空文字列のとき CharIndex は必ず NoChar で、Collected は必ず false です
// （文字のないセルが回収済みになることはありません）。
// CharIndex は文字が割り当てられている間、盤面全体で一意です。
type Cell struct {
	Filled    bool   `json:"filled"`               // ブロックで埋まっているか
	Color     string `json:"color,omitempty"`      // 埋めたピースの色
	Char      string `json:"char,omitempty"`       // 隠された聖句の1文字
	CharIndex int    `json:"char_index"`           // 聖句テキスト内での文字位置 (NoChar = 割り当てなし)
	Collected bool   `json:"collected"`            // ライン消去によって文字が回収済みか
}

// Position はピースの左上アンカーが置かれる盤面座標です。
type Position struct {
	X int `json:"x"` // 列 (0 = 左端)
	Y int `json:"y"` // 行 (0 = 上端)
}

// Grid は Size×Size の盤面です。Grid[y][x] でアクセスします。
// 配列型なので代入・引数渡しで値コピーされ、エンジンの各操作は
// 呼び出し側の盤面を書き換えずに新しい盤面を返せます。
type Grid [Size][Size]Cell

// NewGrid は全マスが空の新しい盤面を返します。
// CharIndex のゼロ値は有効な文字位置(0)と衝突するため、明示的に NoChar で初期化します。
func NewGrid() Grid {
	var g Grid
	for y := 0; y < Size; y++ {
		for x := 0; x < Size; x++ {
			g[y][x].CharIndex = NoChar
		}
	}
	return g
}

// Collides は指定されたピースを pos に置いたとき、盤面の外にはみ出すか、
// 既に埋まっているマスと重なるかを判定します。
// 配置バリデーションと全探索（配置可能判定）の両方で使用されます。
//
// Parameters:
//   piece : 判定対象のピース
//   pos   : ピースの左上アンカーを置く盤面座標
// Returns:
//   bool: はみ出しまたは重なりがある場合はtrue
func (g *Grid) Collides(piece Piece, pos Position) bool {
	for py, row := range piece.Shape {
		for px, occupied := range row {
			if !occupied {
				continue
			}
			x := pos.X + px
			y := pos.Y + py
			if x < 0 || x >= Size || y < 0 || y >= Size {
				return true // 盤面の外
			}
			if g[y][x].Filled {
				return true // 既存ブロックとの重なり
			}
		}
	}
	return false
}

// Stamp はピースを盤面に固定します。ピースの占有マスを Filled にし、
// ピースの色を書き込みます。呼び出し側が事前に Collides で検証している前提で、
// ここでは境界チェックを行いません。
func (g *Grid) Stamp(piece Piece, pos Position) {
	for py, row := range piece.Shape {
		for px, occupied := range row {
			if !occupied {
				continue
			}
			cell := &g[pos.Y+py][pos.X+px]
			cell.Filled = true
			cell.Color = piece.Color
		}
	}
}
