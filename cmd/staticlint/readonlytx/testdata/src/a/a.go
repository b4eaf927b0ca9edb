package a

import "context"

type user struct{ ID int64 }

type dao struct{}

func (dao) Save(ctx context.Context, u *user) error { return nil }
func (dao) FindAll(ctx context.Context) ([]*user, error) { return nil, nil }
func (dao) UpdateUser(ctx context.Context, u *user) error { return nil }
func (dao) DeleteByID(ctx context.Context, id int64) error { return nil }

type manager struct{}

func (manager) ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (manager) ReadWrite(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func reads(ctx context.Context, tx manager, d dao) error {
	return tx.ReadOnly(ctx, func(ctx context.Context) error {
		_, err := d.FindAll(ctx)
		return err
	})
}

func writesInReadOnly(ctx context.Context, tx manager, d dao) error {
	return tx.ReadOnly(ctx, func(ctx context.Context) error {
		if err := d.Save(ctx, &user{}); err != nil { // want "Save called inside a ReadOnly transaction is never persisted"
			return err
		}
		return d.DeleteByID(ctx, 1) // want "DeleteByID called inside a ReadOnly transaction is never persisted"
	})
}

func writesInReadWrite(ctx context.Context, tx manager, d dao) error {
	return tx.ReadWrite(ctx, func(ctx context.Context) error {
		return d.UpdateUser(ctx, &user{})
	})
}

func nestedReadWrite(ctx context.Context, tx manager, d dao) error {
	return tx.ReadOnly(ctx, func(ctx context.Context) error {
		return tx.ReadWrite(ctx, func(ctx context.Context) error {
			return d.UpdateUser(ctx, &user{}) // want "UpdateUser called inside a ReadOnly transaction is never persisted"
		})
	})
}
