package puzzle

import (
	"math/rand"

	"github.com/Brownie996/Bible-block/internal/models"
	"github.com/Brownie996/Bible-block/internal/models/puzzle"
)

// TraySize はトレイのスロット数です。プレイヤーは常に最大3つのピースから選びます。
const TraySize = 3

// プレイヤー入力のアクション種別。
const (
	ActionPlace  = "place"  // トレイのピースを盤面に配置する
	ActionRotate = "rotate" // トレイのピースを時計回りに90度回転する
)

// GameState は1人のプレイヤーの全ゲーム状態を表す値型です。
// すべての更新は Apply / StartRound が新しい値を返すことで行われ、
// 既存の状態が書き換えられることはありません（ターンごとの状態は不変）。
type GameState struct {
	Grid       puzzle.Grid             `json:"grid"`
	Score      int                     `json:"score"`
	HighScore  int                     `json:"high_score"`
	Combo      int                     `json:"combo"`      // 連続でライン消去した配置の回数
	Tray       [TraySize]*puzzle.Piece `json:"tray"`       // nil = 空スロット
	Phrase     models.Phrase           `json:"phrase"`     // 現在のラウンドの聖句
	Collected  map[int]bool            `json:"collected"`  // 回収済み文字インデックスの集合
	Rounds     int                     `json:"rounds"`     // 回収し終えた聖句の数
	IsGameOver bool                    `json:"is_game_over"`
}

// PlayerInput はクライアントからの1回の操作入力です。
// WebSocket経由でJSONとして受信されます。
type PlayerInput struct {
	Action string `json:"action"` // "place" または "rotate"
	Slot   int    `json:"slot"`   // 対象のトレイスロット (0-2)
	X      int    `json:"x"`      // 配置先の列（placeのみ）
	Y      int    `json:"y"`      // 配置先の行（placeのみ）
}

// NewGameState は新しいゲーム状態を初期化して返します。
// 空の盤面に聖句を散りばめ、トレイを3つのランダムなピースで満たします。
//
// Parameters:
//   phrase : 最初のラウンドの聖句
//   rng    : ピース選択と文字配布に使用する乱数生成器
// Returns:
//   GameState: 初期化されたゲーム状態
func NewGameState(phrase models.Phrase, rng *rand.Rand) GameState {
	state := GameState{
		Grid:      Distribute(puzzle.NewGrid(), phrase.Text, rng),
		Phrase:    phrase,
		Collected: make(map[int]bool),
	}
	refillTray(&state, rng)
	return state
}

// Apply はプレイヤー入力を適用した新しいゲーム状態を返します。
// 状態 → 入力 → 新状態 の純粋なレデューサーで、乱数はトレイ補充の
// ピース選択にだけ使われます。不正な入力（範囲外スロット、空スロット、
// 衝突する配置）は状態を変えず Accepted=false の結果を返します。
//
// Parameters:
//   state : 現在のゲーム状態
//   input : プレイヤーの操作入力
//   rng   : トレイ補充に使用する乱数生成器
// Returns:
//   GameState:       入力適用後のゲーム状態
//   PlacementResult: 配置の結果（rotateや不正入力の場合は Accepted=false）
func Apply(state GameState, input PlayerInput, rng *rand.Rand) (GameState, PlacementResult) {
	rejected := PlacementResult{Accepted: false, Grid: state.Grid, NewCombo: state.Combo}
	if state.IsGameOver {
		return state, rejected
	}
	if input.Slot < 0 || input.Slot >= TraySize || state.Tray[input.Slot] == nil {
		return state, rejected
	}

	switch input.Action {
	case ActionRotate:
		rotated := state.Tray[input.Slot].Rotate()
		state.Tray[input.Slot] = &rotated
		return state, rejected

	case ActionPlace:
		piece := *state.Tray[input.Slot]
		result := ResolvePlacement(state.Grid, piece, puzzle.Position{X: input.X, Y: input.Y}, state.Combo)
		if !result.Accepted {
			// 拒否された配置は状態を変えない（ピースはトレイに残る）
			return state, result
		}

		state.Grid = result.Grid
		state.Score += result.ScoreDelta
		state.Combo = result.NewCombo
		if state.Score > state.HighScore {
			state.HighScore = state.Score
		}

		// 回収した文字をラウンドの集合へ合流させる（コピーして元の状態を保護）
		collected := make(map[int]bool, len(state.Collected)+len(result.ClearedCharIndices))
		for idx := range state.Collected {
			collected[idx] = true
		}
		for _, idx := range result.ClearedCharIndices {
			collected[idx] = true
		}
		state.Collected = collected

		// 使用したスロットを空にし、3スロットすべてが空になったときだけ一括補充する
		state.Tray[input.Slot] = nil
		if trayEmpty(state) {
			refillTray(&state, rng)
		}

		// 残っているどのピースも置けなければゲームオーバー
		// （補充直後を含め、トレイが空のままゲームオーバーになることはない）
		state.IsGameOver = !anyPlaceable(state)

		return state, result
	}

	return state, rejected
}

// StartRound は次の聖句でラウンドを開始した新しいゲーム状態を返します。
// 現在の盤面のブロックはそのままに、文字だけを配り直します。
//
// Parameters:
//   state  : 現在のゲーム状態（直前のラウンドが回収完了していること）
//   phrase : 次のラウンドの聖句
//   rng    : 文字配布に使用する乱数生成器
// Returns:
//   GameState: 新しいラウンドのゲーム状態
func StartRound(state GameState, phrase models.Phrase, rng *rand.Rand) GameState {
	state.Grid = Distribute(state.Grid, phrase.Text, rng)
	state.Phrase = phrase
	state.Collected = make(map[int]bool)
	state.Rounds++
	return state
}

// RoundComplete は現在の聖句の全文字が回収済みかどうかを返します。
// 配布時に密度上限で未配置になった文字があるラウンドは完了しません。
func RoundComplete(state GameState) bool {
	total := len([]rune(state.Phrase.Text))
	if total == 0 {
		return false
	}
	return len(state.Collected) >= total
}

// trayEmpty はトレイの3スロットがすべて空かどうかを返します。
func trayEmpty(state GameState) bool {
	for _, p := range state.Tray {
		if p != nil {
			return false
		}
	}
	return true
}

// refillTray はトレイの3スロットを新しいランダムなピースで一括補充します。
// 部分的な補充は行いません（全スロットが空のときにのみ呼ばれます）。
func refillTray(state *GameState, rng *rand.Rand) {
	for i := 0; i < TraySize; i++ {
		p := puzzle.RandomPiece(rng)
		state.Tray[i] = &p
	}
}

// anyPlaceable はトレイに残っているピースのうち、盤面のどこかに置けるものが
// 1つでもあるかを返します。トレイが空の場合もtrueを返します（補充待ちの
// 空トレイでゲームオーバーにしないため）。
func anyPlaceable(state GameState) bool {
	empty := true
	for _, p := range state.Tray {
		if p == nil {
			continue
		}
		empty = false
		if CanPlaceAnywhere(state.Grid, *p) {
			return true
		}
	}
	return empty
}
