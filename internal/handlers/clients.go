package handlers

import (
	"net/http"
	"strings"

	"lavanderia/internal/apperr"
	"lavanderia/internal/models"
	"lavanderia/internal/store"
)

type createClientRequest struct {
	Name        string `json:"name" validate:"required,max=200"`
	ContactName string `json:"contactName" validate:"required,max=200"`
	Phone       string `json:"phone" validate:"required,max=50"`
	Address     string `json:"address" validate:"max=300"`
	Email       string `json:"email" validate:"optemail,max=200"`
	Category    string `json:"category" validate:"max=100"`
}

type updateClientRequest struct {
	Name        *string `json:"name" validate:"omitnil,min=1,max=200"`
	ContactName *string `json:"contactName" validate:"omitnil,min=1,max=200"`
	Phone       *string `json:"phone" validate:"omitnil,min=1,max=50"`
	Address     *string `json:"address" validate:"omitnil,max=300"`
	Email       *string `json:"email" validate:"omitnil,optemail,max=200"`
	Category    *string `json:"category" validate:"omitnil,max=100"`
}

type setPriceRequest struct {
	Price *int64 `json:"price" validate:"required,min=0"`
}

// optional maps an empty string to nil.
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// ListClients returns clients, optionally filtered by ?search= (name or
// contact) and ?category=.
func (a *API) ListClients(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	items, err := a.clients.List(r.Context(), store.ClientFilter{
		Search:   q.Get("search"),
		Category: q.Get("category"),
	})
	if err != nil {
		apperr.Write(w, r, err)
		return
	}
	respond(w, http.StatusOK, "Clientes obtenidos correctamente", "clients", items)
}

// GetClient returns a client with its override prices.
func (a *API) GetClient(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		apperr.Write(w, r, err)
		return
	}
	c, err := a.clients.FindWithPrices(r.Context(), id)
	if err != nil {
		apperr.Write(w, r, err)
		return
	}
	if c == nil {
		apperr.Write(w, r, clientNotFound(id))
		return
	}
	respond(w, http.StatusOK, "Cliente obtenido correctamente", "client", c)
}

// CreateClient registers a client.
func (a *API) CreateClient(w http.ResponseWriter, r *http.Request) {
	var req createClientRequest
	if err := decodeJSON(w, r, &req); err != nil {
		apperr.Write(w, r, err)
		return
	}
	for _, p := range []*string{&req.Name, &req.ContactName, &req.Phone, &req.Address, &req.Email, &req.Category} {
		*p = strings.TrimSpace(*p)
	}
	if err := validateStruct(req); err != nil {
		apperr.Write(w, r, err)
		return
	}

	c, err := a.clients.Create(r.Context(), &models.Client{
		Name:        req.Name,
		ContactName: req.ContactName,
		Phone:       req.Phone,
		Address:     optional(req.Address),
		Email:       optional(req.Email),
		Category:    req.Category,
	})
	if err != nil {
		apperr.Write(w, r, err)
		return
	}
	respond(w, http.StatusCreated, "Cliente creado correctamente", "client", c)
}

// UpdateClient applies a partial update. An empty address or email clears
// it; a payload that matches the stored values writes nothing.
func (a *API) UpdateClient(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		apperr.Write(w, r, err)
		return
	}
	var req updateClientRequest
	if err := decodeJSON(w, r, &req); err != nil {
		apperr.Write(w, r, err)
		return
	}
	for _, p := range []*string{req.Name, req.ContactName, req.Phone, req.Address, req.Email, req.Category} {
		trimPtr(p)
	}
	if err := validateStruct(req); err != nil {
		apperr.Write(w, r, err)
		return
	}

	current, err := a.clients.FindByID(r.Context(), id)
	if err != nil {
		apperr.Write(w, r, err)
		return
	}
	if current == nil {
		apperr.Write(w, r, clientNotFound(id))
		return
	}

	next, changed := current.Apply(models.ClientPatch{
		Name:        req.Name,
		ContactName: req.ContactName,
		Address:     req.Address,
		Phone:       req.Phone,
		Email:       req.Email,
		Category:    req.Category,
	})
	if !changed {
		respond(w, http.StatusOK, msgNoChanges, "client", current)
		return
	}

	updated, err := a.clients.Update(r.Context(), &next)
	if err != nil {
		apperr.Write(w, r, err)
		return
	}
	if updated == nil {
		apperr.Write(w, r, clientNotFound(id))
		return
	}
	respond(w, http.StatusOK, "Cliente actualizado correctamente", "client", updated)
}

// DeleteClient removes a client. Clients with orders are kept (409).
func (a *API) DeleteClient(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		apperr.Write(w, r, err)
		return
	}
	c, err := a.clients.Delete(r.Context(), id)
	if err != nil {
		apperr.Write(w, r, err)
		return
	}
	if c == nil {
		apperr.Write(w, r, clientNotFound(id))
		return
	}
	respond(w, http.StatusOK, "Cliente eliminado correctamente", "client", c)
}

// SetClientPrice creates or replaces the client's price for an article.
func (a *API) SetClientPrice(w http.ResponseWriter, r *http.Request) {
	clientID, err := pathID(r, "id")
	if err != nil {
		apperr.Write(w, r, err)
		return
	}
	articleID, err := pathID(r, "articleId")
	if err != nil {
		apperr.Write(w, r, err)
		return
	}
	var req setPriceRequest
	if err := decodeJSON(w, r, &req); err != nil {
		apperr.Write(w, r, err)
		return
	}
	if err := validateStruct(req); err != nil {
		apperr.Write(w, r, err)
		return
	}

	p, err := a.clients.SetPrice(r.Context(), models.ClientPrice{
		ClientID:  clientID,
		ArticleID: articleID,
		Price:     *req.Price,
	})
	if err != nil {
		apperr.Write(w, r, err)
		return
	}
	respond(w, http.StatusOK, "Precio del cliente guardado correctamente", "price", p)
}

// DeleteClientPrice removes an override so the base price applies again.
func (a *API) DeleteClientPrice(w http.ResponseWriter, r *http.Request) {
	clientID, err := pathID(r, "id")
	if err != nil {
		apperr.Write(w, r, err)
		return
	}
	articleID, err := pathID(r, "articleId")
	if err != nil {
		apperr.Write(w, r, err)
		return
	}
	ok, err := a.clients.DeletePrice(r.Context(), clientID, articleID)
	if err != nil {
		apperr.Write(w, r, err)
		return
	}
	if !ok {
		apperr.Write(w, r, apperr.NotFound("El cliente no tiene precio propio para ese artículo", map[string]string{
			"clientId":  clientID.String(),
			"articleId": articleID.String(),
		}))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Precio del cliente eliminado correctamente"})
}
