package bibleapi

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// BibleService は外部の聖書本文API (bible-api.com) から聖句テキストを取得するサービスです。
// phrasesテーブルに出典だけ登録されていて本文が空の聖句を、起動後にオンデマンドで補完します。
type BibleService struct {
	baseURL     string
	translation string
	httpClient  *http.Client
}

// NewBibleService は新しいBibleServiceを作成します。
//
// Parameters:
//   translation : 使用する訳 (空文字の場合はAPIのデフォルト訳)
// Returns:
//   *BibleService: 新しいBibleServiceのポインタ
func NewBibleService(translation string) *BibleService {
	return &BibleService{
		baseURL:     "https://bible-api.com",
		translation: translation,
		httpClient:  &http.Client{Timeout: 15 * time.Second},
	}
}

// verseResponse はbible-api.comのレスポンスボディの構造です。
type verseResponse struct {
	Reference string `json:"reference"`
	Text      string `json:"text"`
}

// FetchVerseText は出典（例: "John 3:16"）から聖句本文を取得します。
// 改行や連続スペースは1つのスペースに正規化して返します。
//
// Parameters:
//   reference : 聖句の出典
// Returns:
//   string: 正規化された聖句本文
//   error : 取得またはパースに失敗した場合
func (s *BibleService) FetchVerseText(reference string) (string, error) {
	endpoint := s.baseURL + "/" + url.PathEscape(reference)
	if s.translation != "" {
		endpoint += "?translation=" + url.QueryEscape(s.translation)
	}

	resp, err := s.httpClient.Get(endpoint)
	if err != nil {
		return "", fmt.Errorf("聖書APIへのリクエストに失敗しました: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("聖書APIレスポンスの読み込みに失敗しました: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		log.Printf("BibleService Error: APIがステータス %d を返しました: %s", resp.StatusCode, string(body))
		return "", fmt.Errorf("聖書APIがステータス %d を返しました", resp.StatusCode)
	}

	var verse verseResponse
	if err := json.Unmarshal(body, &verse); err != nil {
		return "", fmt.Errorf("聖書APIレスポンスのパースに失敗しました: %w", err)
	}
	if verse.Text == "" {
		return "", fmt.Errorf("聖書APIのレスポンスに本文が含まれていません (reference: %s)", reference)
	}

	// 改行・連続スペースを正規化（盤面には1文字ずつ配るため）
	normalized := strings.Join(strings.Fields(verse.Text), " ")
	return normalized, nil
}
