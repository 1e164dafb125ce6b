// Package adapters はcustomersフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"portfolio_tracker/internal/feature/customers/domain"
	"portfolio_tracker/internal/feature/customers/domain/entity"
	"portfolio_tracker/internal/feature/customers/usecase"
	"portfolio_tracker/internal/platform/db"
)

// customerGorm はCustomerRepositoryのGORM実装です。
type customerGorm struct {
	db *gorm.DB
}

var _ usecase.CustomerRepository = (*customerGorm)(nil)

// NewCustomerRepository は指定されたgorm.DB接続でリポジトリを生成します。
func NewCustomerRepository(db *gorm.DB) *customerGorm {
	return &customerGorm{db: db}
}

// AddressModel は customers テーブルに埋め込まれる住所カラムです。
type AddressModel struct {
	Street  string `gorm:"size:255"`
	City    string `gorm:"size:100"`
	State   string `gorm:"size:100"`
	ZipCode string `gorm:"size:20"`
	Country string `gorm:"size:100"`
}

// CustomerModel は customers テーブルの行です。email は一意です。
type CustomerModel struct {
	ID        string       `gorm:"primaryKey;size:36"`
	FirstName string       `gorm:"size:100;not null"`
	LastName  string       `gorm:"size:100;not null"`
	Email     string       `gorm:"size:255;not null;uniqueIndex"`
	Phone     string       `gorm:"size:50"`
	Address   AddressModel `gorm:"embedded;embeddedPrefix:address_"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (CustomerModel) TableName() string {
	return "customers"
}

func toModel(e entity.Customer) CustomerModel {
	return CustomerModel{
		ID:        e.ID,
		FirstName: e.FirstName,
		LastName:  e.LastName,
		Email:     e.Email,
		Phone:     e.Phone,
		Address:   AddressModel(e.Address),
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

func toEntity(m CustomerModel) entity.Customer {
	return entity.Customer{
		ID:        m.ID,
		FirstName: m.FirstName,
		LastName:  m.LastName,
		Email:     m.Email,
		Phone:     m.Phone,
		Address:   entity.Address(m.Address),
		CreatedAt: m.CreatedAt.UTC(),
		UpdatedAt: m.UpdatedAt.UTC(),
	}
}

// Create は顧客を追加します。メールアドレスが重複する場合は domain.ErrEmailExists を返します。
func (r *customerGorm) Create(ctx context.Context, c entity.Customer) error {
	m := toModel(c)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		if db.IsUniqueViolation(err) {
			return domain.ErrEmailExists
		}
		return err
	}
	return nil
}

// FindByID はIDで顧客を取得します。
func (r *customerGorm) FindByID(ctx context.Context, id string) (entity.Customer, error) {
	return r.first(ctx, "id = ?", id)
}

// FindByEmail はメールアドレスで顧客を取得します。
func (r *customerGorm) FindByEmail(ctx context.Context, email string) (entity.Customer, error) {
	return r.first(ctx, "email = ?", email)
}

func (r *customerGorm) first(ctx context.Context, query string, arg any) (entity.Customer, error) {
	var m CustomerModel
	if err := r.db.WithContext(ctx).Where(query, arg).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entity.Customer{}, domain.ErrCustomerNotFound
		}
		return entity.Customer{}, err
	}
	return toEntity(m), nil
}

// List は作成日時の新しい順に最大 limit 件を返します。
func (r *customerGorm) List(ctx context.Context, limit int) ([]entity.Customer, error) {
	var rows []CustomerModel
	q := r.db.WithContext(ctx).Order("created_at DESC").Order("id")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]entity.Customer, 0, len(rows))
	for _, m := range rows {
		out = append(out, toEntity(m))
	}
	return out, nil
}

// Update は作成日時以外の全項目を上書きします。
func (r *customerGorm) Update(ctx context.Context, c entity.Customer) error {
	m := toModel(c)
	res := r.db.WithContext(ctx).Model(&CustomerModel{}).Where("id = ?", c.ID).Updates(map[string]any{
		"first_name":       m.FirstName,
		"last_name":        m.LastName,
		"email":            m.Email,
		"phone":            m.Phone,
		"address_street":   m.Address.Street,
		"address_city":     m.Address.City,
		"address_state":    m.Address.State,
		"address_zip_code": m.Address.ZipCode,
		"address_country":  m.Address.Country,
		"updated_at":       m.UpdatedAt,
	})
	if res.Error != nil {
		if db.IsUniqueViolation(res.Error) {
			return domain.ErrEmailExists
		}
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrCustomerNotFound
	}
	return nil
}

// Delete はIDで顧客を削除します。
func (r *customerGorm) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&CustomerModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrCustomerNotFound
	}
	return nil
}
