package usecase_test

import (
	"context"

	"app/internal/domain/model"
	"app/internal/payment"
	"app/internal/repository"

	"github.com/stretchr/testify/mock"
)

type productRepositoryMock struct {
	mock.Mock
}

func (m *productRepositoryMock) ListAvailable(ctx context.Context, q repository.ProductListQuery) ([]model.Product, int64, error) {
	args := m.Called(ctx, q)
	return args.Get(0).([]model.Product), args.Get(1).(int64), args.Error(2)
}

func (m *productRepositoryMock) FindByID(ctx context.Context, id int64) (model.Product, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Product), args.Error(1)
}

func (m *productRepositoryMock) FindBySlug(ctx context.Context, slug string) (model.Product, error) {
	args := m.Called(ctx, slug)
	return args.Get(0).(model.Product), args.Error(1)
}

func (m *productRepositoryMock) ListByIDs(ctx context.Context, ids []int64) (map[int64]model.Product, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(map[int64]model.Product), args.Error(1)
}

func (m *productRepositoryMock) ListVariants(ctx context.Context, productID int64) ([]model.ProductVariant, error) {
	args := m.Called(ctx, productID)
	return args.Get(0).([]model.ProductVariant), args.Error(1)
}

type categoryRepositoryMock struct {
	mock.Mock
}

func (m *categoryRepositoryMock) List(ctx context.Context) ([]model.Category, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.Category), args.Error(1)
}

func (m *categoryRepositoryMock) FindBySlug(ctx context.Context, slug string) (model.Category, error) {
	args := m.Called(ctx, slug)
	return args.Get(0).(model.Category), args.Error(1)
}

type orderRepositoryMock struct {
	mock.Mock
}

func (m *orderRepositoryMock) CreateWithItems(ctx context.Context, order model.Order, items []model.OrderItem) (model.Order, error) {
	args := m.Called(ctx, order, items)
	return args.Get(0).(model.Order), args.Error(1)
}

func (m *orderRepositoryMock) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).(model.Order), args.Error(1)
}

func (m *orderRepositoryMock) FindByAuthority(ctx context.Context, authority string) (model.Order, bool, error) {
	args := m.Called(ctx, authority)
	return args.Get(0).(model.Order), args.Bool(1), args.Error(2)
}

func (m *orderRepositoryMock) ListItemsByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).([]model.OrderItem), args.Error(1)
}

func (m *orderRepositoryMock) List(ctx context.Context, page int, limit int) ([]model.Order, int64, error) {
	args := m.Called(ctx, page, limit)
	return args.Get(0).([]model.Order), args.Get(1).(int64), args.Error(2)
}

type gatewayMock struct {
	mock.Mock
}

func (m *gatewayMock) Request(ctx context.Context, in payment.RequestInput) (string, error) {
	args := m.Called(ctx, in)
	return args.String(0), args.Error(1)
}

func (m *gatewayMock) Verify(ctx context.Context, amount int64, authority string) (string, error) {
	args := m.Called(ctx, amount, authority)
	return args.String(0), args.Error(1)
}

func (m *gatewayMock) StartPayURL(authority string) string {
	args := m.Called(authority)
	return args.String(0)
}
