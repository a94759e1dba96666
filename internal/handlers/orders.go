// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/google/uuid"

	"lavanderia/internal/apperr"
	"lavanderia/internal/code"
	"lavanderia/internal/models"
	"lavanderia/internal/store"
)

// maxListLimit caps ?limit= on the order list.
const maxListLimit = 500

type orderLineRequest struct {
	ArticleID string `json:"articleId" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"required,min=1,max=100000"`
}

type createOrderRequest struct {
	ClientID    string             `json:"clientId" validate:"required,uuid"`
	Observation *string            `json:"observation" validate:"omitnil,max=1000"`
	Status      string             `json:"status" validate:"omitempty,oneof=PENDING IN_PROGRESS COMPLETED CANCELLED"`
	Articles    []orderLineRequest `json:"articles" validate:"required,min=1,max=200,unique=ArticleID,dive"`
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=PENDING IN_PROGRESS COMPLETED CANCELLED"`
}

func orderNotFound(id uuid.UUID) error {
	return apperr.NotFound(
		fmt.Sprintf("Pedido %s no encontrado", id),
		map[string]string{"orderId": id.String()},
	)
}

// parseOrderFilter reads ?limit=&offset=&clientId=&status=&code=. Offset
// only applies together with limit.
func parseOrderFilter(q url.Values) (store.OrderFilter, error) {
	var f store.OrderFilter

	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxListLimit {
			return f, apperr.Validation(
				fmt.Sprintf("limit debe ser un entero entre 1 y %d", maxListLimit),
				map[string]string{"limit": raw},
			)
		}
		f.Limit = n

		if raw := q.Get("offset"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 0 {
				return f, apperr.Validation("offset debe ser un entero no negativo", map[string]string{"offset": raw})
			}
			f.Offset = n
		}
	}

	if raw := q.Get("clientId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return f, apperr.Validation("clientId inválido", map[string]string{"clientId": raw})
		}
		f.ClientID = &id
	}

	if raw := q.Get("status"); raw != "" {
		st := models.OrderStatus(raw)
		if !st.Valid() {
			return f, apperr.Validation("Estado de pedido inválido", map[string]string{"status": raw})
		}
		f.Status = st
	}

	if raw := q.Get("code"); raw != "" {
		kind, n, err := code.Parse(raw)
		if err != nil || kind != code.Order {
			return f, apperr.Validation("Código de pedido inválido", map[string]string{"code": raw})
		}
		f.Code, _ = code.Format(kind, n)
	}
	return f, nil
}

// ListOrders returns order summaries, newest first. The list view leaves
// out the article snapshot, the observation and timestamps.
func (a *API) ListOrders(w http.ResponseWriter, r *http.Request) {
	f, err := parseOrderFilter(r.URL.Query())
	if err != nil {
		apperr.Write(w, r, err)
		return
	}
	items, err := a.orders.List(r.Context(), f)
	if err != nil {
		apperr.Write(w, r, err)
		return
	}
	respond(w, http.StatusOK, "Pedidos obtenidos correctamente", "orders", items)
}

// GetOrder returns an order with its article snapshot.
func (a *API) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "orderId")
	if err != nil {
		apperr.Write(w, r, err)
		return
	}
	o, err := a.orders.FindByID(r.Context(), id)
	if err != nil {
		apperr.Write(w, r, err)
		return
	}
	if o == nil {
		apperr.Write(w, r, orderNotFound(id))
		return
	}
	respond(w, http.StatusOK, "Pedido obtenido correctamente", "order", o)
}

// CreateOrder validates the request and hands it to the order assembler.
func (a *API) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		apperr.Write(w, r, err)
		return
	}
	trimPtr(req.Observation)
	if err := validateStruct(req); err != nil {
		apperr.Write(w, r, err)
		return
	}

	in := store.CreateOrderInput{
		ClientID:    uuid.MustParse(req.ClientID),
		Observation: req.Observation,
		Status:      models.OrderStatus(req.Status),
		Lines:       make([]models.OrderLine, len(req.Articles)),
	}
	if in.Observation != nil && *in.Observation == "" {
		in.Observation = nil
	}
	for i, l := range req.Articles {
		in.Lines[i] = models.OrderLine{ArticleID: uuid.MustParse(l.ArticleID), Quantity: l.Quantity}
	}

	o, err := a.orders.Create(r.Context(), in)
	if err != nil {
		apperr.Write(w, r, err)
		return
	}
	respond(w, http.StatusCreated, "Pedido creado correctamente", "order", o)
}

// UpdateOrderStatus overwrites an order's status. Any status may follow
// any other.
func (a *API) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "orderId")
	if err != nil {
		apperr.Write(w, r, err)
		return
	}
	var req updateStatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		apperr.Write(w, r, err)
		return
	}
	if err := validateStruct(req); err != nil {
		apperr.Write(w, r, err)
		return
	}

	o, err := a.orders.UpdateStatus(r.Context(), id, models.OrderStatus(req.Status))
	if err != nil {
		apperr.Write(w, r, err)
		return
	}
	if o == nil {
		apperr.Write(w, r, orderNotFound(id))
		return
	}
	respond(w, http.StatusOK, "Estado del pedido actualizado correctamente", "order", o)
}

// ClientOrderStats returns the client's order counters and the total of
// orders completed in the current UTC month. The body is the bare stats
// object.
func (a *API) ClientOrderStats(w http.ResponseWriter, r *http.Request) {
	clientID, err := pathID(r, "clientId")
	if err != nil {
		apperr.Write(w, r, err)
		return
	}
	c, err := a.clients.FindByID(r.Context(), clientID)
	if err != nil {
		apperr.Write(w, r, err)
		return
	}
	if c == nil {
		apperr.Write(w, r, clientNotFound(clientID))
		return
	}
	st, err := a.orders.Stats(r.Context(), clientID, a.now())
	if err != nil {
		apperr.Write(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}
