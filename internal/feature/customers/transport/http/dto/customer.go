// Package dto defines data transfer objects for the customers feature's HTTP transport layer.
package dto

import (
	"time"

	"portfolio_tracker/internal/feature/customers/domain/entity"
	"portfolio_tracker/internal/feature/customers/usecase"
)

// AddressDTO is the wire form of a postal address.
type AddressDTO struct {
	Street  string `json:"street" binding:"required"`
	City    string `json:"city" binding:"required"`
	State   string `json:"state" binding:"required"`
	ZipCode string `json:"zip_code" binding:"required"`
	Country string `json:"country" binding:"required"`
}

func (a AddressDTO) toEntity() entity.Address {
	return entity.Address{Street: a.Street, City: a.City, State: a.State, ZipCode: a.ZipCode, Country: a.Country}
}

// CreateCustomerRequest is the body of POST /customers.
type CreateCustomerRequest struct {
	FirstName string     `json:"first_name" binding:"required"`
	LastName  string     `json:"last_name" binding:"required"`
	Email     string     `json:"email" binding:"required,email"`
	Phone     string     `json:"phone" binding:"required"`
	Address   AddressDTO `json:"address"`
}

// ToInput converts the request into a usecase input.
func (r CreateCustomerRequest) ToInput() usecase.CreateInput {
	return usecase.CreateInput{
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Email:     r.Email,
		Phone:     r.Phone,
		Address:   r.Address.toEntity(),
	}
}

// UpdateCustomerRequest is the body of PUT /customers/:id. Omitted fields are left unchanged.
type UpdateCustomerRequest struct {
	FirstName *string     `json:"first_name"`
	LastName  *string     `json:"last_name"`
	Email     *string     `json:"email" binding:"omitempty,email"`
	Phone     *string     `json:"phone"`
	Address   *AddressDTO `json:"address"`
}

// ToInput converts the request into a usecase input.
func (r UpdateCustomerRequest) ToInput() usecase.UpdateInput {
	in := usecase.UpdateInput{
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Email:     r.Email,
		Phone:     r.Phone,
	}
	if r.Address != nil {
		a := r.Address.toEntity()
		in.Address = &a
	}
	return in
}

// CustomerResponse は顧客のレスポンスDTOです。
type CustomerResponse struct {
	CustomerID string          `json:"customer_id"`
	FirstName  string          `json:"first_name"`
	LastName   string          `json:"last_name"`
	Email      string          `json:"email"`
	Phone      string          `json:"phone"`
	Address    AddressResponse `json:"address"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// AddressResponse は住所のレスポンスDTOです。
type AddressResponse struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zip_code"`
	Country string `json:"country"`
}

// NewCustomerResponse converts a customer into its wire form.
func NewCustomerResponse(c entity.Customer) CustomerResponse {
	return CustomerResponse{
		CustomerID: c.ID,
		FirstName:  c.FirstName,
		LastName:   c.LastName,
		Email:      c.Email,
		Phone:      c.Phone,
		Address:    AddressResponse(c.Address),
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
}

// NewCustomerResponses converts customers, always returning a non-nil slice.
func NewCustomerResponses(cs []entity.Customer) []CustomerResponse {
	out := make([]CustomerResponse, 0, len(cs))
	for _, c := range cs {
		out = append(out, NewCustomerResponse(c))
	}
	return out
}
