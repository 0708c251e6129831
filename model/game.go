// Package model は、アプリケーションのドメインモデル定義を提供します。
package model

import (
	"time"

	"github.com/stsysd/gameshelf/result"
)

// GameProps はGameを生成するためのプリミティブな入力値です。
type GameProps struct {
	ID           string
	Title        string
	Description  string
	Platform     string
	Format       string
	PurchaseDate *time.Time // ウィッシュリストの場合はnil
	Status       string
}

// Game はコレクション内のゲームを表すエンティティです。
// プラットフォームとフォーマットは生成後に変更できません。
type Game struct {
	id           GameID
	title        GameTitle
	description  GameDescription
	platform     Platform
	format       Format
	purchaseDate *time.Time
	status       Status
}

// NewGame はプリミティブな値からGameを生成します。
// 検証は id → title → description → platform → format → status の順に行い、
// 最初に失敗したフィールドのエラーをそのまま返します。
func NewGame(p GameProps) result.Result[*Game, FieldError] {
	id := NewGameID(p.ID)
	if id.IsErr() {
		return result.Err[*Game](id.UnwrapErr())
	}

	title := NewGameTitle(p.Title)
	if title.IsErr() {
		return result.Err[*Game](title.UnwrapErr())
	}

	description := NewGameDescription(p.Description)
	if description.IsErr() {
		return result.Err[*Game](description.UnwrapErr())
	}

	platform := NewPlatform(p.Platform)
	if platform.IsErr() {
		return result.Err[*Game](platform.UnwrapErr())
	}

	format := NewFormat(p.Format)
	if format.IsErr() {
		return result.Err[*Game](format.UnwrapErr())
	}

	status := NewStatus(p.Status)
	if status.IsErr() {
		return result.Err[*Game](status.UnwrapErr())
	}

	return result.Ok[*Game, FieldError](&Game{
		id:           id.Unwrap(),
		title:        title.Unwrap(),
		description:  description.Unwrap(),
		platform:     platform.Unwrap(),
		format:       format.Unwrap(),
		purchaseDate: copyTime(p.PurchaseDate),
		status:       status.Unwrap(),
	})
}

// ID はゲームIDを返します。
func (g *Game) ID() string { return g.id.String() }

// Title はタイトルを返します。
func (g *Game) Title() string { return g.title.String() }

// Description は説明を返します。
func (g *Game) Description() string { return g.description.String() }

// Platform はプラットフォーム名を返します。
func (g *Game) Platform() string { return g.platform.String() }

// Format はフォーマット名を返します。
func (g *Game) Format() string { return g.format.String() }

// PurchaseDate は購入日を返します。未購入の場合はnilです。
func (g *Game) PurchaseDate() *time.Time { return copyTime(g.purchaseDate) }

// Status はステータスを返します。
func (g *Game) Status() StatusType { return g.status.Type() }

// UpdateTitle はタイトルを更新します。検証に失敗した場合は何も変更しません。
func (g *Game) UpdateTitle(title string) result.Result[result.Void, FieldError] {
	r := NewGameTitle(title)
	if r.IsErr() {
		return result.Err[result.Void](r.UnwrapErr())
	}
	g.title = r.Unwrap()
	return result.OkVoid[FieldError]()
}

// UpdateDescription は説明を更新します。検証に失敗した場合は何も変更しません。
func (g *Game) UpdateDescription(description string) result.Result[result.Void, FieldError] {
	r := NewGameDescription(description)
	if r.IsErr() {
		return result.Err[result.Void](r.UnwrapErr())
	}
	g.description = r.Unwrap()
	return result.OkVoid[FieldError]()
}

// UpdateStatus はステータスを更新します。検証に失敗した場合は何も変更しません。
func (g *Game) UpdateStatus(status string) result.Result[result.Void, FieldError] {
	r := NewStatus(status)
	if r.IsErr() {
		return result.Err[result.Void](r.UnwrapErr())
	}
	g.status = r.Unwrap()
	return result.OkVoid[FieldError]()
}

// UpdatePurchaseDate は購入日を更新します（検証なし、nilも可）。
func (g *Game) UpdatePurchaseDate(date *time.Time) {
	g.purchaseDate = copyTime(date)
}

// IsPurchasedAfter は指定日時より後に購入されたかどうかを返します。
func (g *Game) IsPurchasedAfter(t time.Time) bool {
	if g.purchaseDate == nil {
		return false
	}
	return g.purchaseDate.After(t)
}

// IsInWishlist はウィッシュリストに入っているかどうかを返します。
func (g *Game) IsInWishlist() bool {
	return g.status.Type() == StatusWishlist
}

// IsOwned は所有中かどうかを返します。
func (g *Game) IsOwned() bool {
	return g.status.Type() == StatusOwned
}

// copyTime は外部から購入日を書き換えられないようにコピーを返します。
func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
