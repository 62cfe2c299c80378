package onboarding

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/anyrent/shopkit/svc/registry"
)

// Handle returns the public signup routes. Mounted outside the tenant
// middleware: a merchant registering has no tenant yet.
func (s *Service) Handle() http.Handler {
	r := chi.NewRouter()
	r.Get("/plans", s.listPlans)
	r.Post("/signup", s.signup)
	return r
}

type signupRequest struct {
	Subdomain    string `json:"subdomain"`
	ShopName     string `json:"shop_name"`
	MerchantName string `json:"merchant_name"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	PlanID       string `json:"plan_id"`
}

func (s *Service) signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
		return
	}

	t, err := s.Register(r.Context(), RegisterParams{
		Subdomain:    req.Subdomain,
		ShopName:     req.ShopName,
		MerchantName: req.MerchantName,
		Email:        req.Email,
		Password:     req.Password,
		PlanID:       req.PlanID,
	})
	if err != nil {
		switch {
		case errors.Is(err, registry.ErrSubdomainTaken):
			writeError(w, http.StatusConflict, "SUBDOMAIN_TAKEN", "subdomain already taken")
		case errors.Is(err, registry.ErrEmailTaken):
			writeError(w, http.StatusConflict, "EMAIL_TAKEN", "email already registered")
		case errors.Is(err, ErrPlanNotAvailable):
			writeError(w, http.StatusBadRequest, "PLAN_NOT_AVAILABLE", "plan not available")
		default:
			s.log.ErrorContext(r.Context(), "signup failed", "error", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "registration failed")
		}
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(t)
}

func (s *Service) listPlans(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(s.catalog.Public())
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"code": code, "message": message})
}
