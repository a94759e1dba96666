package models

import (
	"fmt"

	"github.com/google/uuid"

	"lavanderia/internal/apperr"
)

// PricedOrder is the outcome of pricing a set of order lines.
type PricedOrder struct {
	Articles      []OrderArticle
	ArticlesCount int
	TotalPrice    int64
}

// PriceOrder builds the article snapshot for an order. Each line is priced
// with the client's override when one exists, else the base price.
// ArticlesCount is the number of lines, not the summed quantity.
//
// Each article may appear on one line only.
// The first line whose article is absent from catalog fails the whole
// order with a NotFound error naming that article.
func PriceOrder(lines []OrderLine, catalog map[uuid.UUID]Article, overrides map[uuid.UUID]int64) (*PricedOrder, error) {
	if len(lines) == 0 {
		return nil, apperr.Validation("El pedido debe incluir al menos un artículo", nil)
	}

	out := &PricedOrder{Articles: make([]OrderArticle, 0, len(lines))}
	seen := make(map[uuid.UUID]struct{}, len(lines))
	for _, line := range lines {
		if _, dup := seen[line.ArticleID]; dup {
			return nil, apperr.Validation(
				"Artículo repetido en el pedido",
				map[string]string{"articleId": line.ArticleID.String()},
			)
		}
		seen[line.ArticleID] = struct{}{}
		if line.Quantity <= 0 {
			return nil, apperr.Validation(
				"La cantidad debe ser mayor que cero",
				map[string]string{"articleId": line.ArticleID.String()},
			)
		}
		art, ok := catalog[line.ArticleID]
		if !ok {
			return nil, apperr.NotFound(
				fmt.Sprintf("Artículo %s no encontrado", line.ArticleID),
				map[string]string{"articleId": line.ArticleID.String()},
			)
		}
		priced := ClientArticle{Article: art}
		if p, ok := overrides[line.ArticleID]; ok {
			priced.ClientPrice = &p
		}
		price := priced.EffectivePrice()
		snap := OrderArticle{
			ArticleID: art.ID,
			Name:      art.Name,
			Code:      art.Code,
			UnitPrice: price,
			Quantity:  line.Quantity,
		}
		out.Articles = append(out.Articles, snap)
		out.TotalPrice += snap.Subtotal()
	}
	out.ArticlesCount = len(out.Articles)
	return out, nil
}
