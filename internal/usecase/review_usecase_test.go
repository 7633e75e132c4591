package usecase_test

import (
	"context"
	"testing"

	"shopverse/internal/domain/model"
	repo "shopverse/internal/repository"
	"shopverse/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestReviewUsecase_SubmitReview_InvalidRating(t *testing.T) {
	tx := &txManagerStub{repos: newTxReposStub()}
	uc := usecase.NewReviewUsecase(tx, new(ProductRepoMock), new(UserRepoMock))

	_, err := uc.SubmitReview(context.Background(), 42, "lamp", usecase.SubmitReviewInput{Rating: 0})
	assertHTTPStatus(t, err, 400)

	_, err = uc.SubmitReview(context.Background(), 42, "lamp", usecase.SubmitReviewInput{Rating: 6})
	assertHTTPStatus(t, err, 400)
}

func TestReviewUsecase_SubmitReview_ProductNotFound(t *testing.T) {
	tx := &txManagerStub{repos: newTxReposStub()}
	productRepo := new(ProductRepoMock)
	uc := usecase.NewReviewUsecase(tx, productRepo, new(UserRepoMock))

	productRepo.On("FindBySlug", mock.Anything, "ghost").
		Return(model.Product{}, repo.ErrNotFound)

	_, err := uc.SubmitReview(context.Background(), 42, "ghost", usecase.SubmitReviewInput{Rating: 4})
	assertHTTPStatus(t, err, 404)
}

func TestReviewUsecase_SubmitReview_CreateAndRecalculate(t *testing.T) {
	tx := &txManagerStub{repos: newTxReposStub()}
	productRepo := new(ProductRepoMock)
	userRepo := new(UserRepoMock)
	uc := usecase.NewReviewUsecase(tx, productRepo, userRepo)

	productRepo.On("FindBySlug", mock.Anything, "lamp").
		Return(model.Product{ID: 1, Slug: "lamp"}, nil)
	userRepo.On("FindByID", mock.Anything, int64(42)).
		Return(&model.User{ID: 42, Name: "Alex"}, nil)

	tx.repos.reviews.On("FindByProductAndUser", mock.Anything, int64(1), int64(42)).
		Return(model.Review{}, repo.ErrNotFound)
	tx.repos.reviews.On("Create", mock.Anything, mock.MatchedBy(func(r model.Review) bool {
		return r.ProductID == 1 && r.UserID == 42 && r.Rating == 4 && r.Reviewer == "Alex"
	})).Return(model.Review{ID: 9, ProductID: 1, UserID: 42, Rating: 4, Comment: "Nice", Reviewer: "Alex"}, nil)

	//投稿後に平均を反映
	tx.repos.reviews.On("AverageRating", mock.Anything, int64(1)).Return(4.5, int64(2), nil)
	tx.repos.products.On("UpdateRating", mock.Anything, int64(1), 4.5).Return(nil)

	out, err := uc.SubmitReview(context.Background(), 42, "lamp", usecase.SubmitReviewInput{
		Rating:  4,
		Comment: "Nice",
	})

	assert.NoError(t, err)
	assert.Equal(t, int64(9), out.ID)
	assert.Equal(t, 4, out.Rating)

	tx.repos.reviews.AssertExpectations(t)
	tx.repos.products.AssertExpectations(t)
}

// 再投稿は新規作成でなく上書き
func TestReviewUsecase_SubmitReview_UpdateExisting(t *testing.T) {
	tx := &txManagerStub{repos: newTxReposStub()}
	productRepo := new(ProductRepoMock)
	userRepo := new(UserRepoMock)
	uc := usecase.NewReviewUsecase(tx, productRepo, userRepo)

	productRepo.On("FindBySlug", mock.Anything, "lamp").
		Return(model.Product{ID: 1, Slug: "lamp"}, nil)
	userRepo.On("FindByID", mock.Anything, int64(42)).
		Return(&model.User{ID: 42, Name: "Alex"}, nil)

	tx.repos.reviews.On("FindByProductAndUser", mock.Anything, int64(1), int64(42)).
		Return(model.Review{ID: 9, ProductID: 1, UserID: 42, Rating: 2, Comment: "meh"}, nil)
	tx.repos.reviews.On("Update", mock.Anything, mock.MatchedBy(func(r model.Review) bool {
		return r.ID == 9 && r.Rating == 5 && r.Comment == "Actually great"
	})).Return(nil)
	tx.repos.reviews.On("AverageRating", mock.Anything, int64(1)).Return(5.0, int64(1), nil)
	tx.repos.products.On("UpdateRating", mock.Anything, int64(1), 5.0).Return(nil)

	out, err := uc.SubmitReview(context.Background(), 42, "lamp", usecase.SubmitReviewInput{
		Rating:  5,
		Comment: "Actually great",
	})

	assert.NoError(t, err)
	assert.Equal(t, 5, out.Rating)

	tx.repos.reviews.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}
