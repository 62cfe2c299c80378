package shop

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/anyrent/shopkit/pkg/pg"
	"github.com/anyrent/shopkit/pkg/tenantdb"
)

// Product is a rentable item in one shop's catalog. It lives in the
// tenant's isolated database, so no tenant column is needed.
type Product struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	DailyCents   int64     `json:"daily_cents"`
	DepositCents int64     `json:"deposit_cents"`
	Quantity     int32     `json:"quantity"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

const productColumns = `id, name, description, daily_cents, deposit_cents, quantity, created_at, updated_at`

func listProducts(w http.ResponseWriter, r *http.Request) {
	db := tenantdb.MustFromContext(r.Context())

	rows, err := db.Query(r.Context(),
		`SELECT `+productColumns+` FROM products ORDER BY created_at DESC`)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to list products")
		return
	}
	defer rows.Close()

	products := make([]Product, 0)
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.DailyCents,
			&p.DepositCents, &p.Quantity, &p.CreatedAt, &p.UpdatedAt); err != nil {
			writeErr(w, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to list products")
			return
		}
		products = append(products, p)
	}
	if rows.Err() != nil {
		writeErr(w, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to list products")
		return
	}

	writeJSON(w, http.StatusOK, products)
}

type createProductRequest struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	DailyCents   int64  `json:"daily_cents"`
	DepositCents int64  `json:"deposit_cents"`
	Quantity     int32  `json:"quantity"`
}

func createProduct(w http.ResponseWriter, r *http.Request) {
	db := tenantdb.MustFromContext(r.Context())

	var req createProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
		return
	}
	if req.Name == "" {
		writeErr(w, http.StatusUnprocessableEntity, "NAME_REQUIRED", "product name is required")
		return
	}

	var p Product
	err := db.QueryRow(r.Context(),
		`INSERT INTO products (id, name, description, daily_cents, deposit_cents, quantity)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+productColumns,
		uuid.New(), req.Name, req.Description, req.DailyCents, req.DepositCents, req.Quantity,
	).Scan(&p.ID, &p.Name, &p.Description, &p.DailyCents,
		&p.DepositCents, &p.Quantity, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to create product")
		return
	}

	writeJSON(w, http.StatusCreated, p)
}

func getProduct(w http.ResponseWriter, r *http.Request) {
	db := tenantdb.MustFromContext(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "productID"))
	if err != nil {
		writeErr(w, http.StatusBadRequest, "INVALID_ID", "invalid product id")
		return
	}

	var p Product
	err = db.QueryRow(r.Context(),
		`SELECT `+productColumns+` FROM products WHERE id = $1`, id,
	).Scan(&p.ID, &p.Name, &p.Description, &p.DailyCents,
		&p.DepositCents, &p.Quantity, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if pg.IsNotFound(err) {
			writeErr(w, http.StatusNotFound, "PRODUCT_NOT_FOUND", "product not found")
			return
		}
		writeErr(w, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to load product")
		return
	}

	writeJSON(w, http.StatusOK, p)
}

func encodeJSON(w io.Writer, v any) {
	_ = json.NewEncoder(w).Encode(v)
}
