package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio_tracker/internal/feature/customers/domain"
	"portfolio_tracker/internal/feature/customers/domain/entity"
)

// mockCustomerRepository はCustomerRepositoryのインメモリモックです。
type mockCustomerRepository struct {
	byID map[string]entity.Customer

	FindByEmailFunc func(ctx context.Context, email string) (entity.Customer, error)

	CreateCalls int
	UpdateCalls int
	ListLimit   int
}

var _ CustomerRepository = (*mockCustomerRepository)(nil)

func newMockRepo(cs ...entity.Customer) *mockCustomerRepository {
	m := &mockCustomerRepository{byID: map[string]entity.Customer{}}
	for _, c := range cs {
		m.byID[c.ID] = c
	}
	return m
}

func (m *mockCustomerRepository) Create(_ context.Context, c entity.Customer) error {
	m.CreateCalls++
	m.byID[c.ID] = c
	return nil
}

func (m *mockCustomerRepository) FindByID(_ context.Context, id string) (entity.Customer, error) {
	c, ok := m.byID[id]
	if !ok {
		return entity.Customer{}, domain.ErrCustomerNotFound
	}
	return c, nil
}

func (m *mockCustomerRepository) FindByEmail(ctx context.Context, email string) (entity.Customer, error) {
	if m.FindByEmailFunc != nil {
		return m.FindByEmailFunc(ctx, email)
	}
	for _, c := range m.byID {
		if c.Email == email {
			return c, nil
		}
	}
	return entity.Customer{}, domain.ErrCustomerNotFound
}

func (m *mockCustomerRepository) List(_ context.Context, limit int) ([]entity.Customer, error) {
	m.ListLimit = limit
	return nil, nil
}

func (m *mockCustomerRepository) Update(_ context.Context, c entity.Customer) error {
	m.UpdateCalls++
	m.byID[c.ID] = c
	return nil
}

func (m *mockCustomerRepository) Delete(_ context.Context, id string) error {
	if _, ok := m.byID[id]; !ok {
		return domain.ErrCustomerNotFound
	}
	delete(m.byID, id)
	return nil
}

var fixedNow = time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)

func newTestUsecase(repo CustomerRepository) *CustomerUsecase {
	uc := NewCustomerUsecase(repo)
	uc.now = func() time.Time { return fixedNow }
	uc.newID = func() string { return "cust-1" }
	return uc
}

func validInput() CreateInput {
	return CreateInput{
		FirstName: "Jane",
		LastName:  "Doe",
		Email:     "Jane.Doe@Example.com",
		Phone:     "555-0100",
		Address: entity.Address{
			Street: "1 Main St", City: "Springfield", State: "IL", ZipCode: "62701", Country: "USA",
		},
	}
}

func strPtr(s string) *string { return &s }

func TestCustomerUsecase_Create(t *testing.T) {
	repo := newMockRepo()
	uc := newTestUsecase(repo)

	c, err := uc.Create(context.Background(), validInput())
	require.NoError(t, err)
	assert.Equal(t, "cust-1", c.ID)
	assert.Equal(t, "jane.doe@example.com", c.Email)
	assert.Equal(t, fixedNow, c.CreatedAt)
	assert.Equal(t, 1, repo.CreateCalls)
}

func TestCustomerUsecase_Create_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(in *CreateInput)
	}{
		{"invalid email", func(in *CreateInput) { in.Email = "not-an-email" }},
		{"display name email", func(in *CreateInput) { in.Email = "Jane <jane@example.com>" }},
		{"missing first name", func(in *CreateInput) { in.FirstName = " " }},
		{"missing phone", func(in *CreateInput) { in.Phone = "" }},
		{"missing country", func(in *CreateInput) { in.Address.Country = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMockRepo()
			uc := newTestUsecase(repo)
			in := validInput()
			tt.mutate(&in)

			_, err := uc.Create(context.Background(), in)
			assert.ErrorIs(t, err, domain.ErrInvalidCustomer)
			assert.Zero(t, repo.CreateCalls)
		})
	}
}

func TestCustomerUsecase_Create_DuplicateEmail(t *testing.T) {
	repo := newMockRepo(entity.Customer{ID: "other", Email: "jane.doe@example.com"})
	uc := newTestUsecase(repo)

	_, err := uc.Create(context.Background(), validInput())
	assert.ErrorIs(t, err, domain.ErrEmailExists)
	assert.Zero(t, repo.CreateCalls)
}

func TestCustomerUsecase_Create_LookupError(t *testing.T) {
	repo := newMockRepo()
	repo.FindByEmailFunc = func(ctx context.Context, email string) (entity.Customer, error) {
		return entity.Customer{}, errors.New("db down")
	}
	uc := newTestUsecase(repo)

	_, err := uc.Create(context.Background(), validInput())
	assert.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrEmailExists)
}

func TestCustomerUsecase_GetByEmail_Normalizes(t *testing.T) {
	repo := newMockRepo(entity.Customer{ID: "c1", Email: "jane@example.com"})
	uc := newTestUsecase(repo)

	c, err := uc.GetByEmail(context.Background(), " JANE@example.com ")
	require.NoError(t, err)
	assert.Equal(t, "c1", c.ID)

	_, err = uc.GetByEmail(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, domain.ErrCustomerNotFound)
}

func TestCustomerUsecase_List_DefaultLimit(t *testing.T) {
	repo := newMockRepo()
	uc := newTestUsecase(repo)

	_, err := uc.List(context.Background(), -1)
	require.NoError(t, err)
	assert.Equal(t, DefaultListLimit, repo.ListLimit)
}

func TestCustomerUsecase_Update(t *testing.T) {
	ctx := context.Background()
	existing := entity.Customer{ID: "c1", FirstName: "Jane", LastName: "Doe", Email: "jane@example.com", Phone: "1"}

	t.Run("partial update", func(t *testing.T) {
		repo := newMockRepo(existing)
		uc := newTestUsecase(repo)

		got, err := uc.Update(ctx, "c1", UpdateInput{Phone: strPtr("2"), Address: &entity.Address{City: "Paris"}})
		require.NoError(t, err)
		assert.Equal(t, "2", got.Phone)
		assert.Equal(t, "Jane", got.FirstName)
		assert.Equal(t, "Paris", got.Address.City)
		assert.Equal(t, fixedNow, got.UpdatedAt)
	})

	t.Run("same email is allowed", func(t *testing.T) {
		repo := newMockRepo(existing)
		uc := newTestUsecase(repo)

		_, err := uc.Update(ctx, "c1", UpdateInput{Email: strPtr("JANE@example.com")})
		require.NoError(t, err)
	})

	t.Run("email taken by another customer", func(t *testing.T) {
		repo := newMockRepo(existing, entity.Customer{ID: "c2", Email: "john@example.com"})
		uc := newTestUsecase(repo)

		_, err := uc.Update(ctx, "c1", UpdateInput{Email: strPtr("john@example.com")})
		assert.ErrorIs(t, err, domain.ErrEmailExists)
		assert.Zero(t, repo.UpdateCalls)
	})

	t.Run("empty update is a no-op", func(t *testing.T) {
		repo := newMockRepo(existing)
		uc := newTestUsecase(repo)

		got, err := uc.Update(ctx, "c1", UpdateInput{})
		require.NoError(t, err)
		assert.Equal(t, existing, got)
		assert.Zero(t, repo.UpdateCalls)
	})

	t.Run("not found", func(t *testing.T) {
		uc := newTestUsecase(newMockRepo())

		_, err := uc.Update(ctx, "missing", UpdateInput{Phone: strPtr("2")})
		assert.ErrorIs(t, err, domain.ErrCustomerNotFound)
	})
}

func TestCustomerUsecase_Delete(t *testing.T) {
	uc := newTestUsecase(newMockRepo(entity.Customer{ID: "c1"}))

	require.NoError(t, uc.Delete(context.Background(), "c1"))
	assert.ErrorIs(t, uc.Delete(context.Background(), "c1"), domain.ErrCustomerNotFound)
}
