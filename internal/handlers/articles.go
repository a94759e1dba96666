package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"lavanderia/internal/apperr"
	"lavanderia/internal/models"
)

// msgNoChanges answers an update whose payload matches the stored row.
const msgNoChanges = "No hay cambios que aplicar"

type createArticleRequest struct {
	Name         string `json:"name" validate:"required,max=200"`
	CategoryName string `json:"categoryName" validate:"required,max=100"`
	BasePrice    *int64 `json:"basePrice" validate:"required,min=0"`
}

type updateArticleRequest struct {
	Name         *string `json:"name" validate:"omitnil,min=1,max=200"`
	CategoryName *string `json:"categoryName" validate:"omitnil,min=1,max=100"`
	BasePrice    *int64  `json:"basePrice" validate:"omitnil,min=0"`
}

func articleNotFound(id uuid.UUID) error {
	return apperr.NotFound(
		fmt.Sprintf("Artículo %s no encontrado", id),
		map[string]string{"articleId": id.String()},
	)
}

func clientNotFound(id uuid.UUID) error {
	return apperr.NotFound(
		fmt.Sprintf("Cliente %s no encontrado", id),
		map[string]string{"clientId": id.String()},
	)
}

// ListArticles returns the whole catalog.
func (a *API) ListArticles(w http.ResponseWriter, r *http.Request) {
	items, err := a.articles.List(r.Context())
	if err != nil {
		apperr.Write(w, r, err)
		return
	}
	respond(w, http.StatusOK, "Artículos obtenidos correctamente", "articles", items)
}

// ListClientArticles returns the catalog with the client's override price
// on each article, null where the client has none.
func (a *API) ListClientArticles(w http.ResponseWriter, r *http.Request) {
	clientID, err := pathID(r, "id")
	if err != nil {
		apperr.Write(w, r, err)
		return
	}
	client, err := a.clients.FindByID(r.Context(), clientID)
	if err != nil {
		apperr.Write(w, r, err)
		return
	}
	if client == nil {
		apperr.Write(w, r, clientNotFound(clientID))
		return
	}
	items, err := a.articles.ListForClient(r.Context(), clientID)
	if err != nil {
		apperr.Write(w, r, err)
		return
	}
	respond(w, http.StatusOK, "Artículos del cliente obtenidos correctamente", "articles", items)
}

// GetArticle returns a single article.
func (a *API) GetArticle(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		apperr.Write(w, r, err)
		return
	}
	art, err := a.articles.FindByID(r.Context(), id)
	if err != nil {
		apperr.Write(w, r, err)
		return
	}
	if art == nil {
		apperr.Write(w, r, articleNotFound(id))
		return
	}
	respond(w, http.StatusOK, "Artículo obtenido correctamente", "article", art)
}

// CreateArticle adds an article to the catalog. Its ART code is allocated
// by the server.
func (a *API) CreateArticle(w http.ResponseWriter, r *http.Request) {
	var req createArticleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		apperr.Write(w, r, err)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.CategoryName = strings.TrimSpace(req.CategoryName)
	if err := validateStruct(req); err != nil {
		apperr.Write(w, r, err)
		return
	}

	art, err := a.articles.Create(r.Context(), &models.Article{
		Name:         req.Name,
		CategoryName: req.CategoryName,
		BasePrice:    *req.BasePrice,
	})
	if err != nil {
		apperr.Write(w, r, err)
		return
	}
	respond(w, http.StatusCreated, "Artículo creado correctamente", "article", art)
}

// UpdateArticle applies a partial update. A payload that matches the
// stored values writes nothing and says so.
func (a *API) UpdateArticle(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		apperr.Write(w, r, err)
		return
	}
	var req updateArticleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		apperr.Write(w, r, err)
		return
	}
	trimPtr(req.Name)
	trimPtr(req.CategoryName)
	if err := validateStruct(req); err != nil {
		apperr.Write(w, r, err)
		return
	}

	current, err := a.articles.FindByID(r.Context(), id)
	if err != nil {
		apperr.Write(w, r, err)
		return
	}
	if current == nil {
		apperr.Write(w, r, articleNotFound(id))
		return
	}

	next, changed := current.Apply(models.ArticlePatch{
		Name:         req.Name,
		CategoryName: req.CategoryName,
		BasePrice:    req.BasePrice,
	})
	if !changed {
		respond(w, http.StatusOK, msgNoChanges, "article", current)
		return
	}

	updated, err := a.articles.Update(r.Context(), &next)
	if err != nil {
		apperr.Write(w, r, err)
		return
	}
	if updated == nil {
		apperr.Write(w, r, articleNotFound(id))
		return
	}
	respond(w, http.StatusOK, "Artículo actualizado correctamente", "article", updated)
}

// DeleteArticle removes an article. Orders keep their snapshot of it.
func (a *API) DeleteArticle(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		apperr.Write(w, r, err)
		return
	}
	art, err := a.articles.Delete(r.Context(), id)
	if err != nil {
		apperr.Write(w, r, err)
		return
	}
	if art == nil {
		apperr.Write(w, r, articleNotFound(id))
		return
	}
	respond(w, http.StatusOK, "Artículo eliminado correctamente", "article", art)
}
