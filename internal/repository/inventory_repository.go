package repository

import "context"

type InventoryRepository interface {
	// 在庫が足りるときだけ減算する。足りなければ false。
	// チェックアウトのトランザクション内で呼ぶこと（同時注文の売り越し防止）。
	DecrementIfEnough(ctx context.Context, productID int64, qty int64) (bool, error)

	// 在庫戻し（キャンセルなど）
	Increment(ctx context.Context, productID int64, qty int64) error
}
