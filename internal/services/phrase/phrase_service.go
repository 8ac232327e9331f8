package phrase

import (
	"fmt"
	"log"

	"github.com/Brownie996/Bible-block/internal/database"
	"github.com/Brownie996/Bible-block/internal/models"
	"github.com/Brownie996/Bible-block/internal/services/bibleapi"
)

// Service は聖句の選択と本文の補完をまとめたサービスです。
// リポジトリから未回収の聖句を選び、本文が空なら外部の聖書APIで補完します。
type Service struct {
	phraseRepo database.PhraseRepository
	bible      *bibleapi.BibleService // nilの場合は本文補完を行わない
}

// NewService は新しいServiceインスタンスを作成します。
func NewService(phraseRepo database.PhraseRepository, bible *bibleapi.BibleService) *Service {
	return &Service{
		phraseRepo: phraseRepo,
		bible:      bible,
	}
}

// NextPhrase は指定ユーザーの次のラウンドで使う聖句を返します。
// DBの本文が空の場合は出典から外部APIで本文を取得して埋めます。
//
// Parameters:
//   userID : プレイヤーのユーザーID
// Returns:
//   *models.Phrase: 本文の入った聖句
//   error : 聖句が選べない、または本文を補完できない場合
func (s *Service) NextPhrase(userID string) (*models.Phrase, error) {
	phrase, err := s.phraseRepo.GetRandomUncompletedPhrase(userID)
	if err != nil {
		return nil, fmt.Errorf("次の聖句の選択に失敗しました: %w", err)
	}

	if phrase.Text == "" {
		if s.bible == nil {
			return nil, fmt.Errorf("聖句 %s の本文が未登録で、聖書APIも無効です", phrase.ID)
		}
		text, err := s.bible.FetchVerseText(phrase.Reference)
		if err != nil {
			return nil, fmt.Errorf("聖句 %s の本文取得に失敗しました: %w", phrase.Reference, err)
		}
		log.Printf("[PhraseService] 聖句 %s の本文を聖書APIから補完しました (%d文字)", phrase.Reference, len([]rune(text)))
		phrase.Text = text
	}

	return phrase, nil
}

// MarkCompleted は聖句の回収完了を記録します。
func (s *Service) MarkCompleted(userID, phraseID string) error {
	if err := s.phraseRepo.MarkPhraseCompleted(nil, userID, phraseID); err != nil {
		return fmt.Errorf("聖句の回収記録に失敗しました: %w", err)
	}
	return nil
}
