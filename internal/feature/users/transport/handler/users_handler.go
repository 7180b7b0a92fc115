// Package handler はusersフィーチャーのHTMLハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"user_registry/internal/feature/users/domain/entity"
	"user_registry/internal/feature/users/transport/http/dto"
	"user_registry/internal/feature/users/usecase"
	"user_registry/internal/platform/csrf"
	"user_registry/internal/platform/session"
	"user_registry/internal/platform/validation"
	"user_registry/internal/platform/view"
)

// フラッシュメッセージの文言
const (
	MsgFormSubmitted  = "Form Submitted Successfully!"
	MsgUserAdded      = "User Added Successfully!"
	MsgDuplicateEmail = "A user with that email already exists."
	MsgUserUpdated    = "User Updated Successfully!"
	MsgUpdateFailed   = "Error! Looks like there was a problem...try again!"
	MsgUserDeleted    = "User Deleted Successfully!!"
	MsgDeleteFailed   = "Whoops! There was a problem deleting user, try again..."
	MsgUnknownEmail   = "No user is registered with that email."
)

// indexStuff はトップページで表示するデモ文字列です。テンプレートでエスケープされます。
const indexStuff = `Trigger <script>alert("You have been hacked!");</script>`

var indexPizzas = []string{"peporoni", "beef pizza", "dominos"}

// UserUsecase はユーザー管理のユースケースを定義します。
// Goの慣例に従い、インターフェースはプロバイダー（usecase）ではなくコンシューマー（handler）が定義します。
type UserUsecase interface {
	ListUsers(ctx context.Context) ([]entity.User, error)
	GetUser(ctx context.Context, id uint) (*entity.User, error)
	CreateUser(ctx context.Context, name, email, badge, password string) (*entity.User, error)
	UpdateUser(ctx context.Context, id uint, name, email, badge string) (*entity.User, error)
	DeleteUser(ctx context.Context, id uint) error
	CheckPassword(ctx context.Context, email, plaintext string) (*entity.User, bool, error)
}

// UserHandler はユーザー登録アプリのHTMLリクエストを処理します。
// 各ハンドラーはフォーム検証、ユースケース呼び出し、ページ描画を1リクエスト内で完結させます。
type UserHandler struct {
	users   UserUsecase
	flashes session.FlashStore
}

// NewUserHandler はUserHandlerの新しいインスタンスを生成します。
func NewUserHandler(users UserUsecase, flashes session.FlashStore) *UserHandler {
	return &UserHandler{users: users, flashes: flashes}
}

// Index はトップページを表示します。
func (h *UserHandler) Index(c *gin.Context) {
	users, err := h.users.ListUsers(c.Request.Context())
	if err != nil {
		h.fail(c, "list users failed", err)
		return
	}
	h.render(c, http.StatusOK, "index.html", gin.H{
		"Stuff":  indexStuff,
		"Pizzas": indexPizzas,
		"Users":  users,
	})
}

// UserProfile はパスパラメータの名前を表示します。
func (h *UserHandler) UserProfile(c *gin.Context) {
	h.render(c, http.StatusOK, "user.html", gin.H{"UserName": c.Param("name")})
}

// Name は名前入力フォームを処理します。
// - GET: 空のフォームを表示
// - POST: 検証成功時に名前を表示し、フォームをクリアしてフラッシュを追加
func (h *UserHandler) Name(c *gin.Context) {
	data := gin.H{}
	if c.Request.Method == http.MethodPost {
		var req dto.NameReq
		if !h.bind(c, &req) {
			return
		}
		cleaned, errs := dto.NamerForm.Validate(req.Fields())
		if errs != nil {
			h.render(c, http.StatusOK, "name.html", formData(dto.NamerForm, req.Fields(), errs))
			return
		}
		h.flash(c, session.CategorySuccess, MsgFormSubmitted)
		data["Name"] = cleaned["name"]
	}
	data["Fields"] = view.Fields(dto.NamerForm, nil, nil)
	h.render(c, http.StatusOK, "name.html", data)
}

// TestPassword はメールアドレスとパスワードの照合フォームを処理します。
// 未登録のメールアドレスはフラッシュで通知し、フォームを再表示します。
func (h *UserHandler) TestPassword(c *gin.Context) {
	if c.Request.Method != http.MethodPost {
		h.render(c, http.StatusOK, "test_password.html", formData(dto.PasswordForm, nil, nil))
		return
	}

	var req dto.PasswordReq
	if !h.bind(c, &req) {
		return
	}
	cleaned, errs := dto.PasswordForm.Validate(req.Fields())
	if errs != nil {
		h.render(c, http.StatusOK, "test_password.html", formData(dto.PasswordForm, req.Fields(), errs))
		return
	}

	user, passed, err := h.users.CheckPassword(c.Request.Context(), cleaned["email"], cleaned["password_hash"])
	switch {
	case errors.Is(err, usecase.ErrUserNotFound):
		h.flash(c, session.CategoryWarning, MsgUnknownEmail)
		h.render(c, http.StatusOK, "test_password.html", formData(dto.PasswordForm, req.Fields(), nil))
		return
	case err != nil:
		h.fail(c, "check password failed", err)
		return
	}

	slog.Info("password checked", "user_id", user.ID, "passed", passed, "remote_addr", c.ClientIP())
	h.render(c, http.StatusOK, "test_password.html", gin.H{
		"Email":  cleaned["email"],
		"Found":  user,
		"Passed": passed,
	})
}

// AddUser はユーザー登録フォームと登録済みユーザー一覧を処理します。
// - メール重複時は警告フラッシュを表示し、レコードは作成しない
// - 成功時はフォームをクリアして成功フラッシュを表示
func (h *UserHandler) AddUser(c *gin.Context) {
	ctx := c.Request.Context()
	data := formData(dto.UserForm, nil, nil)

	if c.Request.Method == http.MethodPost {
		var req dto.UserReq
		if !h.bind(c, &req) {
			return
		}
		cleaned, errs := dto.UserForm.Validate(req.Fields())
		if errs != nil {
			data = formData(dto.UserForm, req.Fields(), errs)
		} else {
			user, err := h.users.CreateUser(ctx, cleaned["name"], cleaned["email"], cleaned["badge"], cleaned["password_hash"])
			switch {
			case errors.Is(err, usecase.ErrDuplicateEmail):
				slog.Warn("add user rejected: duplicate email", "email", cleaned["email"], "remote_addr", c.ClientIP())
				h.flash(c, session.CategoryWarning, MsgDuplicateEmail)
				data = formData(dto.UserForm, req.Fields(), nil)
			case err != nil:
				slog.Error("add user failed", "error", err, "remote_addr", c.ClientIP())
				h.flash(c, session.CategoryDanger, MsgUpdateFailed)
				data = formData(dto.UserForm, req.Fields(), nil)
			default:
				slog.Info("user added", "user_id", user.ID, "remote_addr", c.ClientIP())
				h.flash(c, session.CategorySuccess, MsgUserAdded)
				data["Added"] = user.Name
			}
		}
	}

	users, err := h.users.ListUsers(ctx)
	if err != nil {
		h.fail(c, "list users failed", err)
		return
	}
	data["Users"] = users
	h.render(c, http.StatusOK, "add_user.html", data)
}

// UpdateUser はユーザー更新フォームを処理します。
// - 存在しないIDは404
// - GET: 現在の値でフォームを表示
// - POST: 成功時は更新後の値で再表示、失敗時はエラーフラッシュと入力値で再表示
func (h *UserHandler) UpdateUser(c *gin.Context) {
	ctx := c.Request.Context()
	id, ok := parseID(c.Param("id"))
	if !ok {
		h.NotFound(c)
		return
	}
	current, err := h.users.GetUser(ctx, id)
	if err != nil {
		h.lookupFailed(c, err)
		return
	}

	if c.Request.Method != http.MethodPost {
		h.render(c, http.StatusOK, "update.html", updateData(id, userValues(current), nil))
		return
	}

	var req dto.UserReq
	if !h.bind(c, &req) {
		return
	}
	cleaned, errs := dto.UpdateForm.Validate(req.Fields())
	if errs != nil {
		h.render(c, http.StatusOK, "update.html", updateData(id, req.Fields(), errs))
		return
	}

	updated, err := h.users.UpdateUser(ctx, id, cleaned["name"], cleaned["email"], cleaned["badge"])
	switch {
	case errors.Is(err, usecase.ErrUserNotFound):
		h.NotFound(c)
		return
	case err != nil:
		slog.Warn("update user failed", "user_id", id, "error", err, "remote_addr", c.ClientIP())
		h.flash(c, session.CategoryDanger, MsgUpdateFailed)
		h.render(c, http.StatusOK, "update.html", updateData(id, req.Fields(), nil))
		return
	}

	slog.Info("user updated", "user_id", id, "remote_addr", c.ClientIP())
	h.flash(c, session.CategorySuccess, MsgUserUpdated)
	h.render(c, http.StatusOK, "update.html", updateData(id, userValues(updated), nil))
}

// DeleteUser はユーザーを削除して /user/add にリダイレクトします。
// 存在しないIDは404を返します。
func (h *UserHandler) DeleteUser(c *gin.Context) {
	ctx := c.Request.Context()
	id, ok := parseID(c.Param("id"))
	if !ok {
		h.NotFound(c)
		return
	}
	if _, err := h.users.GetUser(ctx, id); err != nil {
		h.lookupFailed(c, err)
		return
	}

	err := h.users.DeleteUser(ctx, id)
	switch {
	case errors.Is(err, usecase.ErrUserNotFound):
		h.NotFound(c)
		return
	case err != nil:
		slog.Error("delete user failed", "user_id", id, "error", err, "remote_addr", c.ClientIP())
		h.flash(c, session.CategoryDanger, MsgDeleteFailed)
	default:
		slog.Info("user deleted", "user_id", id, "remote_addr", c.ClientIP())
		h.flash(c, session.CategorySuccess, MsgUserDeleted)
	}
	c.Redirect(http.StatusFound, "/user/add")
}

// NotFound は404ページを表示します。ルーターの NoRoute にも使用します。
func (h *UserHandler) NotFound(c *gin.Context) {
	h.render(c, http.StatusNotFound, "404.html", gin.H{})
}

// Recover はパニックを500ページに変換します。gin.CustomRecovery に渡します。
func (h *UserHandler) Recover(c *gin.Context, recovered any) {
	slog.Error("panic recovered", "panic", recovered, "path", c.Request.URL.Path)
	h.render(c, http.StatusInternalServerError, "500.html", gin.H{})
	c.Abort()
}

// CSRFFailure はリクエスト偽造トークンの検証失敗時に400ページを表示します。
func (h *UserHandler) CSRFFailure(c *gin.Context) {
	slog.Warn("csrf check failed", "error", csrf.Err(c), "path", c.Request.URL.Path, "remote_addr", c.ClientIP())
	c.HTML(http.StatusBadRequest, "400.html", gin.H{})
}

// render はフラッシュとCSRFトークンを付与してページを描画します。
func (h *UserHandler) render(c *gin.Context, status int, page string, data gin.H) {
	flashes, err := h.flashes.Pop(c.Request.Context(), session.ID(c))
	if err != nil {
		slog.Warn("pop flashes failed", "error", err)
	}
	data["Flashes"] = flashes
	data["CSRFToken"] = csrf.Token(c)
	c.HTML(status, page, data)
}

func (h *UserHandler) flash(c *gin.Context, category, message string) {
	f := session.Flash{Category: category, Message: message}
	if err := h.flashes.Add(c.Request.Context(), session.ID(c), f); err != nil {
		slog.Warn("add flash failed", "error", err, "message", message)
	}
}

// fail は予期しないエラーをログに記録し、500ページを表示します。
func (h *UserHandler) fail(c *gin.Context, msg string, err error) {
	slog.Error(msg, "error", err, "path", c.Request.URL.Path, "remote_addr", c.ClientIP())
	h.render(c, http.StatusInternalServerError, "500.html", gin.H{})
}

func (h *UserHandler) lookupFailed(c *gin.Context, err error) {
	if errors.Is(err, usecase.ErrUserNotFound) {
		h.NotFound(c)
		return
	}
	h.fail(c, "get user failed", err)
}

func (h *UserHandler) bind(c *gin.Context, req any) bool {
	if err := c.ShouldBind(req); err != nil {
		slog.Warn("form binding failed", "error", err, "remote_addr", c.ClientIP())
		c.HTML(http.StatusBadRequest, "400.html", gin.H{})
		return false
	}
	return true
}

func formData(form validation.Form, values map[string]string, errs validation.Errors) gin.H {
	return gin.H{"Fields": view.Fields(form, values, errs)}
}

func updateData(id uint, values map[string]string, errs validation.Errors) gin.H {
	data := formData(dto.UpdateForm, values, errs)
	data["ID"] = id
	return data
}

func userValues(u *entity.User) map[string]string {
	return map[string]string{"name": u.Name, "email": u.Email, "badge": u.Badge}
}

// parseID は数値以外や0を無効なIDとして扱います。
func parseID(raw string) (uint, bool) {
	id, err := strconv.ParseUint(raw, 10, strconv.IntSize)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
