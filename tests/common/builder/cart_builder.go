//go:build unit || e2e

package builder

import (
	"time"

	"aurum-commerce/internal/domain/cart"
	"aurum-commerce/internal/domain/catalog"

	"github.com/google/uuid"
)

type CartBuilder struct {
	OwnerID string
	Now     time.Time
	TTL     time.Duration
	Items   []cart.LineItem
}

func NewCartBuilder() *CartBuilder {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	item, _ := cart.NewLineItem(
		uuid.New(), "RING-18K-DIA-001", catalog.Karat18, catalog.StoneDiamond,
		52000, 1, "", now,
	)
	return &CartBuilder{
		OwnerID: uuid.NewString(),
		Now:     now,
		TTL:     720 * time.Hour,
		Items:   []cart.LineItem{item},
	}
}

func (b *CartBuilder) With(mutate func(*CartBuilder)) *CartBuilder {
	mutate(b)
	return b
}

func (b *CartBuilder) WithItem(sku catalog.SKU, unitPrice int64, quantity int32) *CartBuilder {
	item, _ := cart.NewLineItem(
		uuid.New(), sku, catalog.Karat22, catalog.StoneNone,
		unitPrice, quantity, "", b.Now,
	)
	b.Items = append(b.Items, item)
	return b
}

func (b *CartBuilder) WithoutItems() *CartBuilder {
	b.Items = nil
	return b
}

func (b *CartBuilder) BuildDomain() *cart.Cart {
	c := cart.NewCart(b.OwnerID, b.Now, b.TTL)
	for _, item := range b.Items {
		c.AddItem(item)
	}
	return c
}
