package usecase

import (
	"context"
	"net/http"

	"shopverse/internal/domain/model"
	repo "shopverse/internal/repository"
)

// レビュー投稿。(product, user) につき1件のUpsertで、
// 投稿のたびに商品の平均レーティングを再計算する。
type ReviewUsecase struct {
	tx       repo.TransactionManager
	products repo.ProductRepository
	users    repo.UserRepository
}

func NewReviewUsecase(tx repo.TransactionManager, products repo.ProductRepository, users repo.UserRepository) *ReviewUsecase {
	return &ReviewUsecase{tx: tx, products: products, users: users}
}

type SubmitReviewInput struct {
	Rating  int
	Comment string
}

func (u *ReviewUsecase) SubmitReview(ctx context.Context, userID int64, slug string, in SubmitReviewInput) (ReviewDTO, error) {
	if userID <= 0 {
		return ReviewDTO{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if in.Rating < 1 || in.Rating > 5 {
		return ReviewDTO{}, NewHTTPError(http.StatusBadRequest, "rating must be between 1 and 5")
	}

	p, err := u.products.FindBySlug(ctx, slug)
	if err == repo.ErrNotFound {
		return ReviewDTO{}, NewHTTPError(http.StatusNotFound, "product not found")
	}
	if err != nil {
		return ReviewDTO{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	user, err := u.users.FindByID(ctx, userID)
	if err != nil || user == nil {
		return ReviewDTO{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	var saved model.Review

	//Upsertと平均反映は1トランザクション
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		existing, err := r.Reviews().FindByProductAndUser(ctx, p.ID, userID)
		if err != nil && err != repo.ErrNotFound {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if err == nil {
			//再投稿は上書き
			existing.Rating = in.Rating
			existing.Comment = in.Comment
			existing.Reviewer = user.Name
			if err := r.Reviews().Update(ctx, existing); err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			saved = existing
		} else {
			created, err := r.Reviews().Create(ctx, model.Review{
				ProductID: p.ID,
				UserID:    userID,
				Rating:    in.Rating,
				Comment:   in.Comment,
				Reviewer:  user.Name,
			})
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			saved = created
		}

		//商品レーティング＝全レビューの算術平均
		avg, count, err := r.Reviews().AverageRating(ctx, p.ID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if count > 0 {
			if err := r.Products().UpdateRating(ctx, p.ID, avg); err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
		}
		return nil
	})

	if err != nil {
		return ReviewDTO{}, err
	}

	return ReviewDTO{
		ID:        saved.ID,
		Rating:    saved.Rating,
		Comment:   saved.Comment,
		Reviewer:  saved.Reviewer,
		CreatedAt: saved.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}, nil
}
