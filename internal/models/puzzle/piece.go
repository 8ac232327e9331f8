package puzzle

import "math/rand"

// PieceType はピースの種類を表します。
// 7種類の標準的なテトロミノ形状をそのまま使用します。
type PieceType int

const (
	TypeI PieceType = iota // 0: I-ピース (水色)
	TypeO                  // 1: O-ピース (黄色)
	TypeT                  // 2: T-ピース (紫)
	TypeS                  // 3: S-ピース (緑)
	TypeZ                  // 4: Z-ピース (赤)
	TypeJ                  // 5: J-ピース (青)
	TypeL                  // 6: L-ピース (オレンジ)
)

// PieceTypes は全ピース種類の一覧です。ランダム選択や全探索テストで使用します。
var PieceTypes = []PieceType{TypeI, TypeO, TypeT, TypeS, TypeZ, TypeJ, TypeL}

// pieceShapes は各PieceTypeの基本形状（回転前）を定義します。
// trueのマスがピースの占有セルで、行列の左上がアンカー（基準点）です。
// 回転状態はテーブルで持たず、Rotate による行列変換で生成します。
var pieceShapes = map[PieceType][][]bool{
	TypeI: {
		{true, true, true, true},
	},
	TypeO: {
		{true, true},
		{true, true},
	},
	TypeT: {
		{true, true, true},
		{false, true, false},
	},
	TypeS: {
		{false, true, true},
		{true, true, false},
	},
	TypeZ: {
		{true, true, false},
		{false, true, true},
	},
	TypeJ: {
		{true, false, false},
		{true, true, true},
	},
	TypeL: {
		{false, false, true},
		{true, true, true},
	},
}

// pieceColors は各PieceTypeの固定カラー（フロントエンドのセル描画用）です。
var pieceColors = map[PieceType]string{
	TypeI: "#38bdf8",
	TypeO: "#facc15",
	TypeT: "#a78bfa",
	TypeS: "#4ade80",
	TypeZ: "#f87171",
	TypeJ: "#60a5fa",
	TypeL: "#fb923c",
}

// Piece は1つの配置可能ピースを表す値型です。
// Shape はコピーごとに独立しており、回転しても元のピースは変更されません。
type Piece struct {
	Type  PieceType `json:"type"`
	Shape [][]bool  `json:"shape"`
	Color string    `json:"color"`
}

// NewPiece は指定された種類のピースを基本形状で生成します。
// 形状行列は常に新しいコピーを返すため、呼び出し側で自由に保持できます。
func NewPiece(t PieceType) Piece {
	base := pieceShapes[t]
	shape := make([][]bool, len(base))
	for r := range base {
		shape[r] = make([]bool, len(base[r]))
		copy(shape[r], base[r])
	}
	return Piece{
		Type:  t,
		Shape: shape,
		Color: pieceColors[t],
	}
}

// RandomPiece は7種類のピースから一様ランダムに1つ選んで返します。
//
// Parameters:
//   rng : ピース選択に使用する乱数生成器（テストで固定シードを注入できるようにする）
// Returns:
//   Piece: 新しく生成された独立したピース
func RandomPiece(rng *rand.Rand) Piece {
	return NewPiece(PieceTypes[rng.Intn(len(PieceTypes))])
}

// Rotate はピースを時計回りに90度回転させた新しいピースを返します。
// 変換は newShape[c][rows-1-r] = shape[r][c] で、元のピースは変更されません。
// グリッド座標とは無関係な純粋な形状変換のため、境界チェックは行いません。
func (p Piece) Rotate() Piece {
	rows := len(p.Shape)
	cols := len(p.Shape[0])
	rotated := make([][]bool, cols)
	for c := 0; c < cols; c++ {
		rotated[c] = make([]bool, rows)
		for r := 0; r < rows; r++ {
			rotated[c][rows-1-r] = p.Shape[r][c]
		}
	}
	return Piece{
		Type:  p.Type,
		Shape: rotated,
		Color: p.Color,
	}
}

// Rows はピース形状の行数を返します。
func (p Piece) Rows() int {
	return len(p.Shape)
}

// Cols はピース形状の列数を返します。
func (p Piece) Cols() int {
	return len(p.Shape[0])
}

// StringToPieceType は文字列のピースタイプ（"I", "O", "T"など）をPieceTypeに変換します。
func StringToPieceType(s string) (PieceType, bool) {
	switch s {
	case "I":
		return TypeI, true
	case "O":
		return TypeO, true
	case "T":
		return TypeT, true
	case "S":
		return TypeS, true
	case "Z":
		return TypeZ, true
	case "J":
		return TypeJ, true
	case "L":
		return TypeL, true
	default:
		return TypeI, false
	}
}

// PieceTypeToString はPieceTypeを文字列表現に変換します。
func PieceTypeToString(t PieceType) string {
	switch t {
	case TypeI:
		return "I"
	case TypeO:
		return "O"
	case TypeT:
		return "T"
	case TypeS:
		return "S"
	case TypeZ:
		return "Z"
	case TypeJ:
		return "J"
	case TypeL:
		return "L"
	default:
		return "I"
	}
}
