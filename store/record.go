package store

import (
	"time"

	"github.com/stsysd/gameshelf/model"
)

// purchaseDateLayout はpurchase_date列のISO-8601表現です（UTC、ミリ秒付き）。
const purchaseDateLayout = "2006-01-02T15:04:05.000Z"

// GameRecord はgamesテーブルの1行を表すストレージ用DTOです。
type GameRecord struct {
	ID           string
	Title        string
	Description  string
	Platform     string
	Format       string
	PurchaseDate *string
	Status       string
}

// ToRecord はGameをGameRecordに変換します。
func ToRecord(g *model.Game) GameRecord {
	rec := GameRecord{
		ID:          g.ID(),
		Title:       g.Title(),
		Description: g.Description(),
		Platform:    g.Platform(),
		Format:      g.Format(),
		Status:      string(g.Status()),
	}
	if d := g.PurchaseDate(); d != nil {
		s := d.UTC().Format(purchaseDateLayout)
		rec.PurchaseDate = &s
	}
	return rec
}

// FromRecord はGameRecordからGameを再構築します。
// すべての値オブジェクトを再検証し、失敗した場合はCorruptRecordErrorを返します。
func FromRecord(rec GameRecord) (*model.Game, error) {
	var purchaseDate *time.Time
	if rec.PurchaseDate != nil {
		t, err := parsePurchaseDate(*rec.PurchaseDate)
		if err != nil {
			return nil, &CorruptRecordError{ID: rec.ID, Field: "purchaseDate", Reason: err.Error()}
		}
		purchaseDate = &t
	}

	r := model.NewGame(model.GameProps{
		ID:           rec.ID,
		Title:        rec.Title,
		Description:  rec.Description,
		Platform:     rec.Platform,
		Format:       rec.Format,
		PurchaseDate: purchaseDate,
		Status:       rec.Status,
	})
	if r.IsErr() {
		fe := r.UnwrapErr()
		return nil, &CorruptRecordError{ID: rec.ID, Field: fe.Field, Reason: fe.Message}
	}
	return r.Unwrap(), nil
}

// parsePurchaseDate は保存形式を優先し、ミリ秒のない RFC3339 も受け付けます。
func parsePurchaseDate(s string) (time.Time, error) {
	if t, err := time.Parse(purchaseDateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
