package controllers

import (
	"net/http"

	"github.com/angelmondragon/authdash-backend/api/responses"
	"github.com/angelmondragon/authdash-backend/api/validators"
	"github.com/angelmondragon/authdash-backend/internal/users"
	"github.com/angelmondragon/authdash-backend/pkg/logger"
)

type tokenRequest struct {
	Email string  `json:"email"`
	Token *string `json:"token"`
}

type tokenResponse struct {
	Token *string `json:"token"`
}

func StoreToken(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req tokenRequest
		if err := validators.DecodeJSON(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ctx := logg.WithEmail(r.Context(), req.Email)

		if err := svc.StoreToken(ctx, req.Email, req.Token); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteMessage(w, "Token stored successfully.")
	}
}

// FetchToken returns 404 only when no user row matches; a user without a
// token gets {"token":null}.
func FetchToken(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		email, err := validators.PathParam(r, "email")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ctx := logg.WithEmail(r.Context(), email)

		token, err := svc.FetchToken(ctx, email)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteJSON(w, http.StatusOK, tokenResponse{Token: token})
	}
}

func UpdateToken(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		email, err := validators.PathParam(r, "email")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req tokenResponse
		if err := validators.DecodeJSON(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ctx := logg.WithEmail(r.Context(), email)

		if err := svc.UpdateToken(ctx, email, req.Token); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteMessage(w, "Token updated successfully.")
	}
}
