// Package adapters はportfoliosフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"portfolio_tracker/internal/feature/portfolios/domain"
	"portfolio_tracker/internal/feature/portfolios/domain/entity"
	"portfolio_tracker/internal/feature/portfolios/usecase"
	"portfolio_tracker/internal/platform/db"
)

// portfolioGorm はPortfolioRepositoryのGORM実装です。
type portfolioGorm struct {
	db *gorm.DB
}

var _ usecase.PortfolioRepository = (*portfolioGorm)(nil)

// NewPortfolioRepository は指定されたgorm.DB接続でリポジトリを生成します。
func NewPortfolioRepository(db *gorm.DB) *portfolioGorm {
	return &portfolioGorm{db: db}
}

// PortfolioModel は portfolios テーブルの行です。
type PortfolioModel struct {
	ID              string          `gorm:"primaryKey;size:36"`
	CustomerID      string          `gorm:"size:64;not null;index"`
	Name            string          `gorm:"size:100;not null"`
	Type            string          `gorm:"size:32;not null"`
	Description     *string         `gorm:"size:500"`
	TotalValue      decimal.Decimal `gorm:"type:decimal(28,8);not null;default:0"`
	InvestmentCount int             `gorm:"not null;default:0"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (PortfolioModel) TableName() string {
	return "portfolios"
}

func toModel(e entity.Portfolio) PortfolioModel {
	return PortfolioModel{
		ID:              e.ID,
		CustomerID:      e.CustomerID,
		Name:            e.Name,
		Type:            string(e.Type),
		Description:     e.Description,
		TotalValue:      e.TotalValue,
		InvestmentCount: e.InvestmentCount,
		CreatedAt:       e.CreatedAt,
		UpdatedAt:       e.UpdatedAt,
	}
}

func toEntity(m PortfolioModel) entity.Portfolio {
	return entity.Portfolio{
		ID:              m.ID,
		CustomerID:      m.CustomerID,
		Name:            m.Name,
		Type:            entity.PortfolioType(m.Type),
		Description:     m.Description,
		TotalValue:      m.TotalValue,
		InvestmentCount: m.InvestmentCount,
		CreatedAt:       m.CreatedAt.UTC(),
		UpdatedAt:       m.UpdatedAt.UTC(),
	}
}

func toEntities(rows []PortfolioModel) []entity.Portfolio {
	out := make([]entity.Portfolio, 0, len(rows))
	for _, m := range rows {
		out = append(out, toEntity(m))
	}
	return out
}

// Create はポートフォリオを追加します。IDが重複する場合は domain.ErrPortfolioExists を返します。
func (r *portfolioGorm) Create(ctx context.Context, p entity.Portfolio) error {
	m := toModel(p)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		if db.IsUniqueViolation(err) {
			return domain.ErrPortfolioExists
		}
		return err
	}
	return nil
}

// FindByID はIDでポートフォリオを取得します。
func (r *portfolioGorm) FindByID(ctx context.Context, id string) (entity.Portfolio, error) {
	var m PortfolioModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entity.Portfolio{}, domain.ErrPortfolioNotFound
		}
		return entity.Portfolio{}, err
	}
	return toEntity(m), nil
}

// List は作成日時の新しい順に最大 limit 件を返します。
func (r *portfolioGorm) List(ctx context.Context, limit int) ([]entity.Portfolio, error) {
	var rows []PortfolioModel
	q := r.db.WithContext(ctx).Order("created_at DESC").Order("id")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return toEntities(rows), nil
}

// ListByCustomer は顧客の全ポートフォリオを作成順に返します。
func (r *portfolioGorm) ListByCustomer(ctx context.Context, customerID string) ([]entity.Portfolio, error) {
	var rows []PortfolioModel
	if err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at").Order("id").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toEntities(rows), nil
}

// Update は名前・種別・説明を上書きします。
func (r *portfolioGorm) Update(ctx context.Context, p entity.Portfolio) error {
	return r.updateColumns(ctx, p.ID, map[string]any{
		"name":        p.Name,
		"type":        string(p.Type),
		"description": p.Description,
		"updated_at":  p.UpdatedAt,
	})
}

// UpdateValue は評価額と保有銘柄数を上書きします。
func (r *portfolioGorm) UpdateValue(ctx context.Context, id string, totalValue decimal.Decimal, investmentCount int, at time.Time) error {
	return r.updateColumns(ctx, id, map[string]any{
		"total_value":      totalValue,
		"investment_count": investmentCount,
		"updated_at":       at,
	})
}

func (r *portfolioGorm) updateColumns(ctx context.Context, id string, cols map[string]any) error {
	res := r.db.WithContext(ctx).Model(&PortfolioModel{}).Where("id = ?", id).Updates(cols)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrPortfolioNotFound
	}
	return nil
}

// Delete はIDでポートフォリオを削除します。
func (r *portfolioGorm) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&PortfolioModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrPortfolioNotFound
	}
	return nil
}
