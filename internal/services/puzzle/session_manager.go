package puzzle

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/Brownie996/Bible-block/internal/database"
	"github.com/Brownie996/Bible-block/internal/services/phrase"
)

// Client はWebSocket接続を持つ単一のクライアントを表します。
type Client struct {
	UserID    string          // このクライアントに紐づくユーザーのID
	SessionID string          // このクライアントがプレイ中のセッションのID
	Conn      *websocket.Conn // クライアントとの実際のWebSocketコネクション
	Send      chan []byte     // クライアントへメッセージを送信するためのバッファ付きチャネル
	closed    bool            // チャネルが閉じられたかどうかのフラグ
	mu        sync.Mutex      // closedフラグ保護用
}

// SafeSend は安全にチャネルにメッセージを送信します（closedチェック付き）。
func (c *Client) SafeSend(message []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}
	select {
	case c.Send <- message:
		return true
	default:
		return false // チャネルがフル
	}
}

// SafeClose は安全にチャネルを閉じます。
func (c *Client) SafeClose() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		close(c.Send)
		c.closed = true
	}
}

// GameSession は1人のプレイヤーのプレイ中セッションです。
type GameSession struct {
	ID        string    `json:"id"`         // セッションID (UUID)
	UserID    string    `json:"user_id"`    // プレイヤーのユーザーID
	State     GameState `json:"state"`      // 現在のゲーム状態
	Status    string    `json:"status"`     // "playing", "finished"
	StartedAt time.Time `json:"started_at"` // セッション開始日時
	rng       *rand.Rand
}

// PlayerInputEvent はクライアントからの操作入力イベントです。
// readPump が受信メッセージをパースし、クライアントの識別情報を付けて積みます。
type PlayerInputEvent struct {
	UserID    string
	SessionID string
	Input     PlayerInput
}

// SessionManager はゲームセッションとWebSocketクライアント接続の全体を管理します。
// アプリケーション内でシングルトンとして動作することが想定されます。
type SessionManager struct {
	sessions    map[string]*GameSession // sessionID -> GameSession
	clients     map[string]*Client      // sessionID -> Client（1セッションにつき1接続）
	register    chan *Client            // 新しいクライアント接続の登録リクエスト用チャネル
	unregister  chan *Client            // クライアント切断の登録解除リクエスト用チャネル
	inputEvents chan PlayerInputEvent   // クライアントからの操作入力を受け取るチャネル
	quit        chan struct{}           // シャットダウン用チャネル
	mu          sync.RWMutex            // sessions と clients マップへのアクセス保護用

	phraseService *phrase.Service
	resultRepo    database.ResultRepository
	sessionRepo   database.SessionRepository
}

// NewSessionManager は新しい SessionManager インスタンスを作成し、
// そのメインイベントループをバックグラウンドで開始します。
//
// Parameters:
//   phraseService : 聖句の選択・補完サービス
//   resultRepo    : プレイ結果リポジトリ
//   sessionRepo   : 中断セッションリポジトリ
// Returns:
//   *SessionManager: 初期化されたセッションマネージャーのポインタ
func NewSessionManager(phraseService *phrase.Service, resultRepo database.ResultRepository, sessionRepo database.SessionRepository) *SessionManager {
	sm := &SessionManager{
		sessions:      make(map[string]*GameSession),
		clients:       make(map[string]*Client),
		register:      make(chan *Client),
		unregister:    make(chan *Client),
		inputEvents:   make(chan PlayerInputEvent, 256),
		quit:          make(chan struct{}),
		phraseService: phraseService,
		resultRepo:    resultRepo,
		sessionRepo:   sessionRepo,
	}
	go sm.Run()
	return sm
}

// Run は SessionManager のメインイベントループです。
// クライアントの登録/解除と操作入力の適用をすべてこのゴルーチンで直列に処理するため、
// ゲーム状態の更新にロックは不要です（エンジン自体も純粋関数です）。
func (sm *SessionManager) Run() {
	for {
		select {
		case client := <-sm.register:
			sm.mu.Lock()
			sm.clients[client.SessionID] = client
			sm.mu.Unlock()
			log.Printf("[SessionManager] Client registered: %s (Session: %s)", client.UserID, client.SessionID)
			sm.broadcastState(client.SessionID)

		case client := <-sm.unregister:
			sm.mu.Lock()
			if registered, ok := sm.clients[client.SessionID]; ok && registered == client {
				registered.SafeClose()
				delete(sm.clients, client.SessionID)
				log.Printf("[SessionManager] Client unregistered: %s (Session: %s)", client.UserID, client.SessionID)
			}
			sm.mu.Unlock()
			// 切断時に途中状態を保存しておき、後から再開できるようにする
			sm.snapshotSession(client.SessionID)

		case event := <-sm.inputEvents:
			sm.handleInput(event)

		case <-sm.quit:
			log.Printf("[SessionManager] シャットダウンシグナルを受信、メインループを終了します")
			return
		}
	}
}

// handleInput は1件の操作入力をセッションに適用し、結果をクライアントへ送信します。
// ラウンドの完了（次の聖句の開始）とゲームオーバー（結果保存）もここで処理します。
func (sm *SessionManager) handleInput(event PlayerInputEvent) {
	sm.mu.RLock()
	session, ok := sm.sessions[event.SessionID]
	sm.mu.RUnlock()

	if !ok || session.Status != "playing" {
		log.Printf("[SessionManager] Received input for non-existent or finished session %s from user %s", event.SessionID, event.UserID)
		return
	}
	if session.UserID != event.UserID {
		log.Printf("[SessionManager] Input from user %s does not match session owner %s", event.UserID, session.UserID)
		return
	}

	newState, result := Apply(session.State, event.Input, session.rng)
	session.State = newState

	if event.Input.Action == ActionPlace && !result.Accepted {
		// 拒否された配置もクライアントへ返す（ピースをトレイへ戻す表示のため）
		sm.broadcastState(session.ID)
		return
	}

	// 聖句をすべて回収したら次のラウンドを開始する
	if RoundComplete(session.State) {
		sm.advanceRound(session)
	}

	if session.State.IsGameOver {
		sm.finishSession(session)
	} else {
		sm.snapshotSession(session.ID)
	}

	sm.broadcastState(session.ID)
}

// advanceRound は回収し終えた聖句を記録し、次の聖句でラウンドを開始します。
func (sm *SessionManager) advanceRound(session *GameSession) {
	if err := sm.phraseService.MarkCompleted(session.UserID, session.State.Phrase.ID); err != nil {
		log.Printf("[SessionManager] Failed to mark phrase %s completed for user %s: %v", session.State.Phrase.ID, session.UserID, err)
	}

	next, err := sm.phraseService.NextPhrase(session.UserID)
	if err != nil {
		// 次の聖句が選べなくてもプレイは続行させる（現在の聖句を配り直す）
		log.Printf("[SessionManager] Failed to pick next phrase for user %s: %v", session.UserID, err)
		next = &session.State.Phrase
	}
	session.State = StartRound(session.State, *next, session.rng)
	log.Printf("[SessionManager] Session %s advanced to round %d (%s)", session.ID, session.State.Rounds, next.Reference)
}

// finishSession はゲームオーバーしたセッションを確定させ、結果を保存します。
func (sm *SessionManager) finishSession(session *GameSession) {
	session.Status = "finished"
	log.Printf("[SessionManager] Session %s game over. User: %s, Final Score: %d, Rounds: %d",
		session.ID, session.UserID, session.State.Score, session.State.Rounds)

	if _, err := sm.resultRepo.SaveResult(nil, session.UserID, session.State.Score); err != nil {
		log.Printf("[SessionManager] Failed to save result for user %s: %v", session.UserID, err)
	}
	// 終了したプレイの再開用スナップショットは不要になる
	if err := sm.sessionRepo.DeleteSnapshot(session.UserID); err != nil {
		log.Printf("[SessionManager] Failed to delete snapshot for user %s: %v", session.UserID, err)
	}
}

// snapshotSession は現在のゲーム状態を再開用スナップショットとして保存します。
func (sm *SessionManager) snapshotSession(sessionID string) {
	sm.mu.RLock()
	session, ok := sm.sessions[sessionID]
	sm.mu.RUnlock()
	if !ok || session.Status != "playing" {
		return
	}

	stateJSON, err := json.Marshal(session.State)
	if err != nil {
		log.Printf("[SessionManager] Failed to marshal state for session %s: %v", sessionID, err)
		return
	}
	if err := sm.sessionRepo.SaveSnapshot(session.UserID, stateJSON); err != nil {
		log.Printf("[SessionManager] Failed to save snapshot for user %s: %v", session.UserID, err)
	}
}

// CreateSession は新しいゲームセッションを作成します。
//
// Parameters:
//   userID : プレイヤーのユーザーID
// Returns:
//   string: 作成されたセッションのID
//   error : 聖句の選択などに失敗した場合
func (sm *SessionManager) CreateSession(userID string) (string, error) {
	firstPhrase, err := sm.phraseService.NextPhrase(userID)
	if err != nil {
		return "", fmt.Errorf("failed to pick first phrase: %w", err)
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	state := NewGameState(*firstPhrase, rng)

	// ベストスコアをHUD用にゲーム状態へ引き継ぐ
	if best, err := sm.resultRepo.GetUserBestScore(userID); err != nil {
		log.Printf("[SessionManager] Failed to load best score for user %s: %v", userID, err)
	} else if best != nil {
		state.HighScore = best.Score
	}

	sessionID := uuid.New().String()
	session := &GameSession{
		ID:        sessionID,
		UserID:    userID,
		State:     state,
		Status:    "playing",
		StartedAt: time.Now(),
		rng:       rng,
	}

	sm.mu.Lock()
	sm.sessions[sessionID] = session
	sm.mu.Unlock()

	log.Printf("[SessionManager] Created new game session: %s for user %s (phrase: %s)", sessionID, userID, firstPhrase.Reference)
	return sessionID, nil
}

// ResumeSession は保存済みスナップショットから新しいセッションを復元します。
// スナップショットが壊れている場合はエラーを返し、エンジンには渡しません。
//
// Parameters:
//   userID : プレイヤーのユーザーID
// Returns:
//   string: 復元されたセッションのID
//   error : スナップショットが存在しない、または不正な場合
func (sm *SessionManager) ResumeSession(userID string) (string, error) {
	saved, err := sm.sessionRepo.LoadSnapshot(userID)
	if err != nil {
		return "", fmt.Errorf("failed to load snapshot: %w", err)
	}
	if saved == nil {
		return "", errors.New("no saved session")
	}

	var state GameState
	if err := json.Unmarshal(saved.State, &state); err != nil {
		return "", fmt.Errorf("saved session is corrupted: %w", err)
	}
	if err := validateSnapshot(&state); err != nil {
		return "", fmt.Errorf("saved session is invalid: %w", err)
	}
	if state.Collected == nil {
		state.Collected = make(map[int]bool)
	}

	sessionID := uuid.New().String()
	session := &GameSession{
		ID:        sessionID,
		UserID:    userID,
		State:     state,
		Status:    "playing",
		StartedAt: time.Now(),
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	sm.mu.Lock()
	sm.sessions[sessionID] = session
	sm.mu.Unlock()

	log.Printf("[SessionManager] Resumed session %s for user %s (score: %d)", sessionID, userID, state.Score)
	return sessionID, nil
}

// validateSnapshot は復元したゲーム状態がエンジンの前提を満たすかを検証します。
// エンジン自体は入力が整形済みであることを仮定するため、境界はここです。
func validateSnapshot(state *GameState) error {
	if state.Phrase.Text == "" {
		return errors.New("snapshot has no phrase text")
	}
	if state.IsGameOver {
		return errors.New("snapshot is already game over")
	}
	for i, p := range state.Tray {
		if p == nil {
			continue
		}
		if len(p.Shape) == 0 {
			return fmt.Errorf("tray slot %d has empty shape", i)
		}
		width := len(p.Shape[0])
		if width == 0 {
			return fmt.Errorf("tray slot %d has empty shape row", i)
		}
		for _, row := range p.Shape {
			if len(row) != width {
				return fmt.Errorf("tray slot %d has non-rectangular shape", i)
			}
		}
	}
	return nil
}

// GetGameSession は指定されたIDのセッションを返します。
func (sm *SessionManager) GetGameSession(sessionID string) (*GameSession, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	session, ok := sm.sessions[sessionID]
	return session, ok
}

// RegisterClient はWebSocket接続をセッションに紐づけ、送受信ゴルーチンを開始します。
//
// Parameters:
//   sessionID : 接続先のセッションID
//   userID    : 接続したユーザーのID
//   conn      : アップグレード済みのWebSocketコネクション
// Returns:
//   error: セッションが存在しない、または他人のセッションの場合
func (sm *SessionManager) RegisterClient(sessionID, userID string, conn *websocket.Conn) error {
	sm.mu.RLock()
	session, ok := sm.sessions[sessionID]
	sm.mu.RUnlock()
	if !ok {
		return errors.New("session not found")
	}
	if session.UserID != userID {
		return errors.New("session belongs to another user")
	}

	client := &Client{
		UserID:    userID,
		SessionID: sessionID,
		Conn:      conn,
		Send:      make(chan []byte, 64),
	}
	sm.register <- client

	go sm.readPump(client)
	go client.writePump()
	return nil
}

// broadcastState はセッションの現在状態をJSONにして、そのセッションのクライアントへ送信します。
func (sm *SessionManager) broadcastState(sessionID string) {
	sm.mu.RLock()
	session, sessionOK := sm.sessions[sessionID]
	client, clientOK := sm.clients[sessionID]
	sm.mu.RUnlock()

	if !sessionOK || !clientOK {
		return
	}

	stateJSON, err := json.Marshal(session)
	if err != nil {
		log.Printf("[SessionManager] Error marshaling game state for session %s: %v", sessionID, err)
		return
	}
	if !client.SafeSend(stateJSON) {
		log.Printf("[SessionManager] Failed to send to client %s (channel closed or full)", client.UserID)
	}
}

// readPump はクライアントからのWebSocketメッセージを読み込み、inputEvents チャネルに積みます。
func (sm *SessionManager) readPump(client *Client) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[SessionManager] Panic in readPump for user %s: %v", client.UserID, r)
		}
		sm.unregister <- client
		if err := client.Conn.Close(); err != nil {
			log.Printf("[SessionManager] Error closing WebSocket connection for user %s: %v", client.UserID, err)
		}
	}()

	client.Conn.SetReadLimit(512)
	client.Conn.SetReadDeadline(time.Now().Add(300 * time.Second))
	client.Conn.SetPongHandler(func(string) error {
		client.Conn.SetReadDeadline(time.Now().Add(300 * time.Second))
		return nil
	})

	for {
		_, message, err := client.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[SessionManager] WebSocket unexpected close for user %s: %v", client.UserID, err)
			}
			return
		}
		if len(message) == 0 {
			continue
		}

		var input PlayerInput
		if err := json.Unmarshal(message, &input); err != nil {
			log.Printf("[SessionManager] Failed to unmarshal input from %s: %v, message: %s", client.UserID, err, message)
			continue
		}

		// クライアントの識別情報はコネクション登録時のものを使う（なりすまし防止）
		event := PlayerInputEvent{
			UserID:    client.UserID,
			SessionID: client.SessionID,
			Input:     input,
		}
		select {
		case sm.inputEvents <- event:
		default:
			log.Printf("[SessionManager] Input events channel is full, dropping message from user %s", client.UserID)
		}
	}
}

// writePump は Client の Send チャネルからのメッセージをWebSocketコネクションに書き込みます。
// クライアントごとにこのゴルーチンが動作します。
func (c *Client) writePump() {
	ticker := time.NewTicker(60 * time.Second)
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Client] Panic in writePump for user %s: %v", c.UserID, r)
		}
		ticker.Stop()
		if err := c.Conn.Close(); err != nil {
			log.Printf("[Client] Error closing WebSocket connection for user %s: %v", c.UserID, err)
		}
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				// マネージャーがチャネルを閉じた場合（登録解除時など）
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("[Client] Error writing message for user %s: %v", c.UserID, err)
				return
			}

		case <-ticker.C:
			// 定期的にピングを送信してコネクションの生存確認
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Printf("[Client] Error sending ping for user %s: %v", c.UserID, err)
				return
			}
		}
	}
}

// Shutdown はメインイベントループを停止します。
func (sm *SessionManager) Shutdown() {
	close(sm.quit)
}
