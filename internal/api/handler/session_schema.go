package handler

import (
	"time"

	"github.com/99minutos/admin-console/internal/core/domain"
)

type loginRequest struct {
	Username string `json:"username" form:"username" validate:"required,max=150"`
	Password string `json:"password" form:"password" validate:"required,max=256"`
}

type loginResponse struct {
	User     *domain.User    `json:"user"`
	Redirect string          `json:"redirect"`
	Notices  []domain.Notice `json:"notices"`
}

type loginPageResponse struct {
	View      string          `json:"view"`
	IsLoading bool            `json:"isLoading"`
	Notices   []domain.Notice `json:"notices"`
}

type sessionResponse struct {
	User            *domain.User        `json:"user"`
	IsAuthenticated bool                `json:"isAuthenticated"`
	IsLoading       bool                `json:"isLoading"`
	Permissions     []domain.Permission `json:"permissions"`
	Navigation      []navItem           `json:"navigation"`
	Notices         []domain.Notice     `json:"notices"`
}

type updateUserRequest struct {
	Username *string `json:"username,omitempty" validate:"omitempty,min=1,max=150"`
	Email    *string `json:"email,omitempty"    validate:"omitempty,email"`
}

type updateUserResponse struct {
	User    *domain.User    `json:"user"`
	Notices []domain.Notice `json:"notices"`
}

type activityItem struct {
	Type      string    `json:"type"`
	Path      string    `json:"path,omitempty"`
	Trigger   string    `json:"trigger,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type activityResponse struct {
	Items []activityItem `json:"items"`
}

type eventRequest struct {
	Type    string `json:"type"    validate:"required,oneof=mount route visibility popstate violation"`
	Path    string `json:"path"    validate:"omitempty,startswith=/,max=256"`
	Entry   string `json:"entry"   validate:"omitempty,max=64"`
	Visible *bool  `json:"visible"`
	Reason  string `json:"reason"  validate:"omitempty,max=256"`
}

type eventResponse struct {
	Valid    bool            `json:"valid"`
	Outcome  string          `json:"outcome"`
	Redirect string          `json:"redirect,omitempty"`
	Notices  []domain.Notice `json:"notices"`
}

type viewResponse struct {
	Path    string          `json:"path"`
	Title   string          `json:"title"`
	User    *domain.User    `json:"user"`
	Notices []domain.Notice `json:"notices"`
}
