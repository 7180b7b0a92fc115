// Package dto defines the HTML form payloads and validation rules for the users feature.
package dto

import "user_registry/internal/platform/validation"

// NamerForm asks for a name only.
var NamerForm = validation.Form{
	{Field: "name", Label: "What's your Name", Required: true},
}

// UserForm is submitted on /user/add.
var UserForm = validation.Form{
	{Field: "name", Label: "Name", Required: true},
	{Field: "email", Label: "Email", Required: true},
	{Field: "badge", Label: "Badge"},
	{Field: "password_hash", Label: "Password", Required: true, EqualTo: "password_hash2", Message: "Passwords Must Match!"},
	{Field: "password_hash2", Label: "Confirm Password", Required: true},
}

// UpdateForm is submitted on /update/:id. The password cannot be changed here.
var UpdateForm = validation.Form{
	{Field: "name", Label: "Name", Required: true},
	{Field: "email", Label: "Email", Required: true},
	{Field: "badge", Label: "Badge"},
}

// PasswordForm is submitted on /test_password.
var PasswordForm = validation.Form{
	{Field: "email", Label: "What's your Email", Required: true},
	{Field: "password_hash", Label: "What's your Password", Required: true},
}

// NameReq binds NamerForm.
type NameReq struct {
	Name string `form:"name"`
}

// Fields returns the submitted values keyed by field name.
func (r NameReq) Fields() map[string]string {
	return map[string]string{"name": r.Name}
}

// UserReq binds UserForm and UpdateForm.
type UserReq struct {
	Name      string `form:"name"`
	Email     string `form:"email"`
	Badge     string `form:"badge"`
	Password  string `form:"password_hash"`
	Password2 string `form:"password_hash2"`
}

// Fields returns the submitted values keyed by field name.
func (r UserReq) Fields() map[string]string {
	return map[string]string{
		"name":           r.Name,
		"email":          r.Email,
		"badge":          r.Badge,
		"password_hash":  r.Password,
		"password_hash2": r.Password2,
	}
}

// PasswordReq binds PasswordForm.
type PasswordReq struct {
	Email    string `form:"email"`
	Password string `form:"password_hash"`
}

// Fields returns the submitted values keyed by field name.
func (r PasswordReq) Fields() map[string]string {
	return map[string]string{"email": r.Email, "password_hash": r.Password}
}
