// Package adapters はinvestmentsフィーチャーのリポジトリ実装と外部サービス連携を提供します。
package adapters

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"portfolio_tracker/internal/feature/investments/domain"
	"portfolio_tracker/internal/feature/investments/domain/entity"
	"portfolio_tracker/internal/feature/investments/usecase"
	"portfolio_tracker/internal/platform/db"
)

// investmentGorm はInvestmentRepositoryのGORM実装です。PostgresとSQLiteの両方で動作します。
type investmentGorm struct {
	db *gorm.DB
}

var _ usecase.InvestmentRepository = (*investmentGorm)(nil)

// NewInvestmentRepository は指定されたgorm.DB接続でリポジトリを生成します。
func NewInvestmentRepository(db *gorm.DB) *investmentGorm {
	return &investmentGorm{db: db}
}

// InvestmentModel は investments テーブルの行です。
type InvestmentModel struct {
	ID             string          `gorm:"primaryKey;size:36"`
	PortfolioID    string          `gorm:"size:64;not null;index"`
	TickerSymbol   string          `gorm:"size:20;not null;index"`
	InstrumentType string          `gorm:"size:32;not null"`
	Quantity       decimal.Decimal `gorm:"type:decimal(24,8);not null"`
	PurchasePrice  decimal.Decimal `gorm:"type:decimal(24,8);not null"`
	PurchaseDate   time.Time       `gorm:"not null"`

	CurrentPrice    decimal.NullDecimal `gorm:"type:decimal(24,8)"`
	LastUpdated     *time.Time
	CurrentValue    decimal.Decimal `gorm:"type:decimal(28,8);not null;default:0"`
	GainLoss        decimal.Decimal `gorm:"type:decimal(28,8);not null;default:0"`
	GainLossPercent decimal.Decimal `gorm:"type:decimal(20,8);not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (InvestmentModel) TableName() string {
	return "investments"
}

func toModel(e entity.Investment) InvestmentModel {
	m := InvestmentModel{
		ID:              e.ID,
		PortfolioID:     e.PortfolioID,
		TickerSymbol:    e.TickerSymbol,
		InstrumentType:  string(e.InstrumentType),
		Quantity:        e.Quantity,
		PurchasePrice:   e.PurchasePrice,
		PurchaseDate:    e.PurchaseDate,
		LastUpdated:     e.LastUpdated,
		CurrentValue:    e.CurrentValue,
		GainLoss:        e.GainLoss,
		GainLossPercent: e.GainLossPercent,
		CreatedAt:       e.CreatedAt,
		UpdatedAt:       e.UpdatedAt,
	}
	if e.CurrentPrice != nil {
		m.CurrentPrice = decimal.NewNullDecimal(*e.CurrentPrice)
	}
	return m
}

func toEntity(m InvestmentModel) entity.Investment {
	e := entity.Investment{
		ID:              m.ID,
		PortfolioID:     m.PortfolioID,
		TickerSymbol:    m.TickerSymbol,
		InstrumentType:  entity.InstrumentType(m.InstrumentType),
		Quantity:        m.Quantity,
		PurchasePrice:   m.PurchasePrice,
		PurchaseDate:    m.PurchaseDate.UTC(),
		LastUpdated:     m.LastUpdated,
		CurrentValue:    m.CurrentValue,
		GainLoss:        m.GainLoss,
		GainLossPercent: m.GainLossPercent,
		CreatedAt:       m.CreatedAt.UTC(),
		UpdatedAt:       m.UpdatedAt.UTC(),
	}
	if m.CurrentPrice.Valid {
		p := m.CurrentPrice.Decimal
		e.CurrentPrice = &p
	}
	return e
}

func toEntities(rows []InvestmentModel) []entity.Investment {
	out := make([]entity.Investment, 0, len(rows))
	for _, m := range rows {
		out = append(out, toEntity(m))
	}
	return out
}

// Create は投資を追加します。IDが重複する場合は domain.ErrInvestmentExists を返します。
func (r *investmentGorm) Create(ctx context.Context, inv entity.Investment) error {
	m := toModel(inv)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		if db.IsUniqueViolation(err) {
			return domain.ErrInvestmentExists
		}
		return err
	}
	return nil
}

// FindByID はIDで投資を取得します。存在しない場合は domain.ErrInvestmentNotFound を返します。
func (r *investmentGorm) FindByID(ctx context.Context, id string) (entity.Investment, error) {
	var m InvestmentModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entity.Investment{}, domain.ErrInvestmentNotFound
		}
		return entity.Investment{}, err
	}
	return toEntity(m), nil
}

// List は作成日時の新しい順に最大 limit 件を返します。
func (r *investmentGorm) List(ctx context.Context, limit int) ([]entity.Investment, error) {
	var rows []InvestmentModel
	q := r.db.WithContext(ctx).Order("created_at DESC").Order("id")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return toEntities(rows), nil
}

// ListByPortfolio はポートフォリオ内の全投資を返します。
func (r *investmentGorm) ListByPortfolio(ctx context.Context, portfolioID string) ([]entity.Investment, error) {
	var rows []InvestmentModel
	if err := r.db.WithContext(ctx).
		Where("portfolio_id = ?", portfolioID).
		Order("created_at").Order("id").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toEntities(rows), nil
}

// ListByTicker は指定ティッカーを保有する全投資を返します。
func (r *investmentGorm) ListByTicker(ctx context.Context, ticker string) ([]entity.Investment, error) {
	var rows []InvestmentModel
	if err := r.db.WithContext(ctx).
		Where("ticker_symbol = ?", ticker).
		Order("id").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toEntities(rows), nil
}

// UniqueTickers は保有中の重複のないティッカー一覧を返します。
func (r *investmentGorm) UniqueTickers(ctx context.Context) ([]string, error) {
	var out []string
	if err := r.db.WithContext(ctx).
		Model(&InvestmentModel{}).
		Distinct("ticker_symbol").
		Order("ticker_symbol").
		Pluck("ticker_symbol", &out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// Update は編集可能な項目と派生項目を上書きします。
func (r *investmentGorm) Update(ctx context.Context, inv entity.Investment) error {
	m := toModel(inv)
	return r.updateColumns(ctx, inv.ID, map[string]any{
		"quantity":          m.Quantity,
		"purchase_price":    m.PurchasePrice,
		"purchase_date":     m.PurchaseDate,
		"current_value":     m.CurrentValue,
		"gain_loss":         m.GainLoss,
		"gain_loss_percent": m.GainLossPercent,
		"updated_at":        m.UpdatedAt,
	})
}

// UpdatePrice は現在値と評価額関連の項目のみを上書きします（楽観的上書き）。
func (r *investmentGorm) UpdatePrice(ctx context.Context, inv entity.Investment) error {
	m := toModel(inv)
	return r.updateColumns(ctx, inv.ID, map[string]any{
		"current_price":     m.CurrentPrice,
		"last_updated":      m.LastUpdated,
		"current_value":     m.CurrentValue,
		"gain_loss":         m.GainLoss,
		"gain_loss_percent": m.GainLossPercent,
		"updated_at":        m.UpdatedAt,
	})
}

func (r *investmentGorm) updateColumns(ctx context.Context, id string, cols map[string]any) error {
	res := r.db.WithContext(ctx).Model(&InvestmentModel{}).Where("id = ?", id).Updates(cols)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrInvestmentNotFound
	}
	return nil
}

// Delete はIDで投資を削除します。存在しない場合は domain.ErrInvestmentNotFound を返します。
func (r *investmentGorm) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&InvestmentModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrInvestmentNotFound
	}
	return nil
}
