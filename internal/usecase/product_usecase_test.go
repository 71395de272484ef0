package usecase_test

import (
	"context"
	"net/http"
	"testing"

	"app/internal/domain/model"
	"app/internal/repository"
	"app/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestProductUsecase_ListProducts(t *testing.T) {
	products := new(productRepositoryMock)
	uc := usecase.NewProductUsecase(products, new(categoryRepositoryMock))

	products.On("ListAvailable", mock.Anything, repository.ProductListQuery{Page: 1, Limit: 20, Q: "shoe"}).
		Return([]model.Product{{ID: 1, Name: "Running Shoe"}}, int64(1), nil)

	out, err := uc.ListProducts(context.Background(), usecase.ListProductsInput{Page: 1, Limit: 20, Q: " shoe "})
	require.NoError(t, err)
	assert.Equal(t, int64(1), out.Total)
	require.Len(t, out.Items, 1)
}

func TestProductUsecase_ListProducts_InvalidPaging(t *testing.T) {
	uc := usecase.NewProductUsecase(new(productRepositoryMock), new(categoryRepositoryMock))

	cases := []usecase.ListProductsInput{
		{Page: 0, Limit: 20},
		{Page: 1, Limit: 0},
		{Page: 1, Limit: 101},
	}
	for _, in := range cases {
		_, err := uc.ListProducts(context.Background(), in)
		httpErr, ok := usecase.AsHTTPError(err)
		require.True(t, ok)
		assert.Equal(t, http.StatusBadRequest, httpErr.Status)
	}
}

func TestProductUsecase_GetProductDetail(t *testing.T) {
	products := new(productRepositoryMock)
	uc := usecase.NewProductUsecase(products, new(categoryRepositoryMock))

	p := model.Product{ID: 1, Name: "Running Shoe", Slug: "running-shoe", Price: 100000, Stock: 5, Available: true}
	products.On("FindBySlug", mock.Anything, "running-shoe").Return(p, nil)
	products.On("ListVariants", mock.Anything, int64(1)).Return([]model.ProductVariant{}, nil)

	out, err := uc.GetProductDetail(context.Background(), "running-shoe")
	require.NoError(t, err)
	assert.True(t, out.InStock)
	assert.Equal(t, "Running Shoe", out.Product.Name)
}

func TestProductUsecase_GetProductDetail_StockFollowsVariants(t *testing.T) {
	products := new(productRepositoryMock)
	uc := usecase.NewProductUsecase(products, new(categoryRepositoryMock))

	//本体在庫はあるが、バリエーションが全て品切れ
	p := model.Product{ID: 1, Slug: "running-shoe", Stock: 5, Available: true}
	products.On("FindBySlug", mock.Anything, "running-shoe").Return(p, nil)
	products.On("ListVariants", mock.Anything, int64(1)).Return([]model.ProductVariant{
		{ID: 1, ProductID: 1, Color: "black", Quantity: 0},
		{ID: 2, ProductID: 1, Color: "white", Quantity: 0},
	}, nil)

	out, err := uc.GetProductDetail(context.Background(), "running-shoe")
	require.NoError(t, err)
	assert.False(t, out.InStock)
}

func TestProductUsecase_GetProductDetail_HiddenProductIsNotFound(t *testing.T) {
	products := new(productRepositoryMock)
	uc := usecase.NewProductUsecase(products, new(categoryRepositoryMock))

	products.On("FindBySlug", mock.Anything, "old-bag").
		Return(model.Product{ID: 4, Slug: "old-bag", Available: false}, nil)

	_, err := uc.GetProductDetail(context.Background(), "old-bag")
	httpErr, ok := usecase.AsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, httpErr.Status)
}

func TestProductUsecase_GetProductDetail_NotFound(t *testing.T) {
	products := new(productRepositoryMock)
	uc := usecase.NewProductUsecase(products, new(categoryRepositoryMock))

	products.On("FindBySlug", mock.Anything, "none").
		Return(model.Product{}, repository.ErrNotFound)

	_, err := uc.GetProductDetail(context.Background(), "none")
	httpErr, ok := usecase.AsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, httpErr.Status)
}
