package usecase

import (
	"context"
	"errors"
	"fmt"

	"user_registry/internal/feature/users/domain/entity"

	"golang.org/x/crypto/bcrypt"
)

// UserRepository はユーザーエンティティの永続化層を抽象化します。
// Goの慣例に従い、インターフェースはプロバイダー（adapters）ではなくコンシューマー（usecase）が定義します。
type UserRepository interface {
	// List は date_added の昇順ですべてのユーザーを返します。
	List(ctx context.Context) ([]entity.User, error)

	// Count は登録済みユーザー数を返します。
	Count(ctx context.Context) (int64, error)

	// FindByEmail はメールアドレスに一致するユーザーを返します。
	// 存在しない場合は ErrUserNotFound を返します。
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// FindByID はIDに一致するユーザーを返します。
	// 存在しない場合は ErrUserNotFound を返します。
	FindByID(ctx context.Context, id uint) (*entity.User, error)

	// Create は新しいユーザーを永続化し、ID と DateAdded を設定します。
	// ユニーク制約違反の場合は ErrDuplicateEmail を返します。
	Create(ctx context.Context, user *entity.User) error

	// UpdateProfile は name / email / badge の3項目を上書きします。
	// 存在しない場合は ErrUserNotFound を返します。
	UpdateProfile(ctx context.Context, id uint, name, email, badge string) error

	// Delete はユーザーを物理削除します。
	// 存在しない場合は ErrUserNotFound を返します。
	Delete(ctx context.Context, id uint) error
}

// UserUsecase はユーザー管理のビジネスロジックを提供します。
type UserUsecase struct {
	users     UserRepository
	hashCost  int
	dummyHash []byte
}

// NewUserUsecase は UserUsecase の新しいインスタンスを生成します。
func NewUserUsecase(users UserRepository) *UserUsecase {
	return NewUserUsecaseWithCost(users, bcrypt.DefaultCost)
}

// NewUserUsecaseWithCost はbcryptのコストを指定して UserUsecase を生成します。
// テストでは bcrypt.MinCost を渡して高速化します。
func NewUserUsecaseWithCost(users UserRepository, cost int) *UserUsecase {
	return &UserUsecase{
		users:     users,
		hashCost:  cost,
		dummyHash: []byte("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"),
	}
}

// ListUsers は登録日時の昇順でユーザー一覧を返します。
func (u *UserUsecase) ListUsers(ctx context.Context) ([]entity.User, error) {
	return u.users.List(ctx)
}

// CountUsers は登録済みユーザー数を返します。
func (u *UserUsecase) CountUsers(ctx context.Context) (int64, error) {
	return u.users.Count(ctx)
}

// GetUser はIDでユーザーを取得します。
func (u *UserUsecase) GetUser(ctx context.Context, id uint) (*entity.User, error) {
	return u.users.FindByID(ctx, id)
}

// FindByEmail はメールアドレスでユーザーを取得します。
func (u *UserUsecase) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return u.users.FindByEmail(ctx, email)
}

// CreateUser はパスワードをハッシュ化して新規ユーザーを登録します。
// 同じメールアドレスのユーザーが既に存在する場合は ErrDuplicateEmail を返します。
func (u *UserUsecase) CreateUser(ctx context.Context, name, email, badge, password string) (*entity.User, error) {
	existing, err := u.users.FindByEmail(ctx, email)
	switch {
	case err == nil && existing != nil:
		return nil, ErrDuplicateEmail
	case err != nil && !errors.Is(err, ErrUserNotFound):
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), u.hashCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &entity.User{
		Name:         name,
		Email:        email,
		Badge:        badge,
		PasswordHash: string(hashed),
	}
	if err := u.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateUser は name / email / badge を更新し、更新後のユーザーを返します。
// メールアドレスの重複チェックはアプリケーション側では行いません（ストレージのユニーク制約に委ねます）。
func (u *UserUsecase) UpdateUser(ctx context.Context, id uint, name, email, badge string) (*entity.User, error) {
	if err := u.users.UpdateProfile(ctx, id, name, email, badge); err != nil {
		return nil, err
	}
	return u.users.FindByID(ctx, id)
}

// DeleteUser はユーザーを削除します。
func (u *UserUsecase) DeleteUser(ctx context.Context, id uint) error {
	return u.users.Delete(ctx, id)
}

// VerifyPassword は平文パスワードが保存済みハッシュと一致する場合に true を返します。
func (u *UserUsecase) VerifyPassword(user *entity.User, plaintext string) bool {
	if user == nil || user.PasswordHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(plaintext)) == nil
}

// CheckPassword はメールアドレスでユーザーを検索し、パスワードを照合します。
// タイミング差を抑えるため、ユーザーが存在しない場合もダミーハッシュで比較を実行します。
func (u *UserUsecase) CheckPassword(ctx context.Context, email, plaintext string) (*entity.User, bool, error) {
	user, err := u.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			_ = bcrypt.CompareHashAndPassword(u.dummyHash, []byte(plaintext))
		}
		return nil, false, err
	}
	return user, u.VerifyPassword(user, plaintext), nil
}
