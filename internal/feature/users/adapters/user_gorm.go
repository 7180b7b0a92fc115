// Package adapters はusersフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"user_registry/internal/feature/users/domain/entity"
	"user_registry/internal/feature/users/usecase"
)

// pgUniqueViolation はPostgreSQLのユニーク制約違反のSQLSTATEです。
const pgUniqueViolation = "23505"

// userGorm はUserRepositoryインターフェースのGORM実装です。
// SQLite / PostgreSQL のどちらの接続でも動作します。
type userGorm struct {
	db *gorm.DB
}

// userGormがUserRepositoryを実装していることをコンパイル時に検証します。
var _ usecase.UserRepository = (*userGorm)(nil)

// NewUserRepository は指定されたgorm.DB接続でuserGormの新しいインスタンスを生成します。
func NewUserRepository(db *gorm.DB) *userGorm {
	return &userGorm{db: db}
}

// List は date_added の昇順（同時刻はID順）でユーザーを返します。
func (r *userGorm) List(ctx context.Context) ([]entity.User, error) {
	var users []entity.User
	if err := r.db.WithContext(ctx).
		Order("date_added ASC").
		Order("id ASC").
		Find(&users).Error; err != nil {
		return nil, persistenceError("list users", err)
	}
	return users, nil
}

// Count は登録済みユーザー数を返します。
func (r *userGorm) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&entity.User{}).Count(&n).Error; err != nil {
		return 0, persistenceError("count users", err)
	}
	return n, nil
}

// FindByEmail はメールアドレスでユーザーを取得します。
// ユーザーが存在しない場合、usecase.ErrUserNotFoundを返します。
func (r *userGorm) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	var u entity.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrUserNotFound
		}
		return nil, persistenceError("find user by email", err)
	}
	return &u, nil
}

// FindByID はIDでユーザーを取得します。
// ユーザーが存在しない場合、usecase.ErrUserNotFoundを返します。
func (r *userGorm) FindByID(ctx context.Context, id uint) (*entity.User, error) {
	var u entity.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrUserNotFound
		}
		return nil, persistenceError("find user by id", err)
	}
	return &u, nil
}

// Create はユーザーをデータベースに追加します。
// ユニーク制約違反の場合、usecase.ErrDuplicateEmailを返します。
func (r *userGorm) Create(ctx context.Context, u *entity.User) error {
	if u == nil {
		return fmt.Errorf("%w: nil user", usecase.ErrPersistence)
	}
	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		if isUniqueViolation(err) {
			return usecase.ErrDuplicateEmail
		}
		return persistenceError("create user", err)
	}
	return nil
}

// UpdateProfile は name / email / badge を上書きします。
// 空文字の badge も反映するため、map で更新します。
func (r *userGorm) UpdateProfile(ctx context.Context, id uint, name, email, badge string) error {
	result := r.db.WithContext(ctx).
		Model(&entity.User{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"name":  name,
			"email": email,
			"badge": badge,
		})
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return usecase.ErrDuplicateEmail
		}
		return persistenceError("update user", result.Error)
	}
	if result.RowsAffected == 0 {
		return usecase.ErrUserNotFound
	}
	return nil
}

// Delete はユーザーを物理削除します。
func (r *userGorm) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.User{})
	if result.Error != nil {
		return persistenceError("delete user", result.Error)
	}
	if result.RowsAffected == 0 {
		return usecase.ErrUserNotFound
	}
	return nil
}

// isUniqueViolation はドライバーを問わずユニーク制約違反を判定します。
// gorm.Config.TranslateError が有効な場合は gorm.ErrDuplicatedKey、
// 無効な場合でも PostgreSQL の SQLSTATE 23505 を検出します。
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

func persistenceError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", usecase.ErrPersistence, op, err)
}
