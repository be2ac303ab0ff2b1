package controllers

import (
	"net/http"

	"github.com/angelmondragon/authdash-backend/api/responses"
	"github.com/angelmondragon/authdash-backend/api/validators"
	"github.com/angelmondragon/authdash-backend/internal/users"
	"github.com/angelmondragon/authdash-backend/pkg/db/models"
	"github.com/angelmondragon/authdash-backend/pkg/logger"
)

type checkUserRequest struct {
	Email string `json:"email"`
}

type checkUserResponse struct {
	Exists   bool         `json:"exists"`
	UserInfo *models.User `json:"userInfo,omitempty"`
}

// CheckUser reports whether a user with the posted email exists.
func CheckUser(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req checkUserRequest
		if err := validators.DecodeJSON(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ctx := logg.WithEmail(r.Context(), req.Email)

		user, err := svc.CheckUser(ctx, req.Email)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteJSON(w, http.StatusOK, checkUserResponse{Exists: user != nil, UserInfo: user})
	}
}

// StoreAuthInfo upserts the signed-in user's identity fields.
func StoreAuthInfo(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req users.AuthInfo
		if err := validators.DecodeJSON(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ctx := logg.WithEmail(r.Context(), req.Email)

		if err := svc.StoreAuthInfo(ctx, req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteMessage(w, "Auth info received and stored/updated.")
	}
}

func UpdateProfile(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req users.ProfileUpdate
		if err := validators.DecodeJSON(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ctx := logg.WithField(r.Context(), "user_id", req.ID)

		if err := svc.UpdateProfile(ctx, req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteMessage(w, "Profile updated successfully.")
	}
}

func UpdateCompanyInfo(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req users.CompanyUpdate
		if err := validators.DecodeJSON(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ctx := logg.WithEmail(r.Context(), req.Email)

		if err := svc.UpdateCompanyInfo(ctx, req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteMessage(w, "Company info updated successfully.")
	}
}

// FetchCompanyInfo serves {orgName, position} for the email in the path.
func FetchCompanyInfo(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		email, err := validators.PathParam(r, "email")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ctx := logg.WithEmail(r.Context(), email)

		info, err := svc.FetchCompanyInfo(ctx, email)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteJSON(w, http.StatusOK, info)
	}
}
