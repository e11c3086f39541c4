package api

import (
	"net/http"
	"strings"

	"clinic/m/domain"
)

// listCatalog returns drug catalog entries, optionally filtered by a name
// fragment and an exact category.
func (h *Handler) listCatalog(w http.ResponseWriter, r *http.Request) {
	var (
		args    []any
		clauses []string
	)
	if query := strings.TrimSpace(r.URL.Query().Get("query")); query != "" {
		args = append(args, "%"+strings.ToLower(query)+"%")
		clauses = append(clauses, "LOWER(name) LIKE ?")
	}
	if category := strings.TrimSpace(r.URL.Query().Get("category")); category != "" {
		args = append(args, category)
		clauses = append(clauses, "category = ?")
	}

	query := `SELECT id, name, category FROM drug_catalog`
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY name"

	entries := []domain.CatalogEntry{}
	if err := h.db.SelectContext(r.Context(), &entries, h.db.Rebind(query), args...); err != nil {
		h.log.Error().Err(err).Msg("catalog query failed")
		respondError(w, http.StatusInternalServerError, "unable to list catalog")
		return
	}
	respondJSON(w, http.StatusOK, entries)
}

type categorySummary struct {
	Category string `db:"category" json:"category"`
	Count    int64  `db:"count" json:"count"`
}

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	categories := []categorySummary{}
	if err := h.db.SelectContext(r.Context(), &categories,
		`SELECT category, COUNT(*) AS count FROM drug_catalog GROUP BY category ORDER BY category`); err != nil {
		h.log.Error().Err(err).Msg("category query failed")
		respondError(w, http.StatusInternalServerError, "unable to list categories")
		return
	}
	respondJSON(w, http.StatusOK, categories)
}

func (h *Handler) listSpecialties(w http.ResponseWriter, r *http.Request) {
	specialties := []domain.Specialty{}
	if err := h.db.SelectContext(r.Context(), &specialties, `SELECT id, name FROM specialties ORDER BY id`); err != nil {
		h.log.Error().Err(err).Msg("specialty query failed")
		respondError(w, http.StatusInternalServerError, "unable to list specialties")
		return
	}
	respondJSON(w, http.StatusOK, specialties)
}

// listInjectables returns each stock item with its lot count and the sum of
// its lot quantities.
func (h *Handler) listInjectables(w http.ResponseWriter, r *http.Request) {
	var args []any
	query := `SELECT s.id, s.name, s.unit, s.created_at,
                COUNT(l.id) AS lots, COALESCE(SUM(l.quantity), 0) AS quantity
                FROM injectable_stock s
                LEFT JOIN injectable_lots l ON l.stock_id = s.id`
	if name := strings.TrimSpace(r.URL.Query().Get("query")); name != "" {
		args = append(args, "%"+strings.ToLower(name)+"%")
		query += " WHERE LOWER(s.name) LIKE ?"
	}
	query += " GROUP BY s.id, s.name, s.unit, s.created_at ORDER BY s.name"

	balances := []domain.InjectableBalance{}
	if err := h.db.SelectContext(r.Context(), &balances, h.db.Rebind(query), args...); err != nil {
		h.log.Error().Err(err).Msg("injectable query failed")
		respondError(w, http.StatusInternalServerError, "unable to list injectables")
		return
	}
	respondJSON(w, http.StatusOK, balances)
}
