package service

import (
	"context"
	"sort"
	"strings"

	"carrinho/internal/model"
)

const topN = 5

// ProductStat aggregates one product across a month's closed carts.
type ProductStat struct {
	ProductKey          string `json:"productKey"`
	ProductName         string `json:"productName"`
	TotalCents          int64  `json:"totalCents"`
	QuantityThousandths int64  `json:"quantityThousandths"`
	Purchases           int    `json:"purchases"`
}

// CategoryStat aggregates spending for one category.
type CategoryStat struct {
	Category   string `json:"category"`
	TotalCents int64  `json:"totalCents"`
}

// PricePoint is one unit-price observation for a product.
type PricePoint struct {
	Date           string `json:"date"`
	UnitPriceCents int64  `json:"unitPriceCents"`
}

// MonthInsights summarizes a month's closed carts.
type MonthInsights struct {
	Month         string                  `json:"month"`
	CartCount     int                     `json:"cartCount"`
	ItemCount     int                     `json:"itemCount"`
	TotalCents    int64                   `json:"totalCents"`
	TopByValue    []ProductStat           `json:"topByValue"`
	TopByQuantity []ProductStat           `json:"topByQuantity"`
	TopCategories []CategoryStat          `json:"topCategories"`
	PriceSeries   map[string][]PricePoint `json:"priceSeries"`
}

// History lists carts newest first. A non-empty monthPrefix ("2026-08")
// restricts the listing to that month.
func (s *Service) History(ctx context.Context, monthPrefix string) ([]model.Cart, error) {
	carts, err := s.store.AllCarts(ctx)
	if err != nil {
		return nil, err
	}

	out := []model.Cart{}
	for i := len(carts) - 1; i >= 0; i-- {
		if monthPrefix != "" && !strings.HasPrefix(carts[i].Date, monthPrefix) {
			continue
		}
		out = append(out, carts[i])
	}
	return out, nil
}

// Insights computes spending statistics over the month's CLOSED carts.
// Open carts are still in flux and stay out of the numbers.
func (s *Service) Insights(ctx context.Context, month string) (MonthInsights, error) {
	carts, err := s.store.AllCarts(ctx)
	if err != nil {
		return MonthInsights{}, err
	}
	itemsByCart, err := s.store.AllItems(ctx)
	if err != nil {
		return MonthInsights{}, err
	}

	ins := MonthInsights{
		Month:         month,
		TopByValue:    []ProductStat{},
		TopByQuantity: []ProductStat{},
		TopCategories: []CategoryStat{},
		PriceSeries:   map[string][]PricePoint{},
	}

	products := map[string]*ProductStat{}
	categories := map[string]int64{}

	for _, cart := range carts {
		if cart.Status != model.CartClosed {
			continue
		}
		if month != "" && !strings.HasPrefix(cart.Date, month) {
			continue
		}
		ins.CartCount++
		ins.TotalCents += cart.TotalCents

		for _, item := range itemsByCart[cart.ID] {
			ins.ItemCount++

			stat, ok := products[item.ProductKey]
			if !ok {
				stat = &ProductStat{ProductKey: item.ProductKey, ProductName: item.ProductName}
				products[item.ProductKey] = stat
			}
			stat.TotalCents += item.TotalCents
			stat.QuantityThousandths += item.QuantityThousandths
			stat.Purchases++

			category := item.Category
			if category == "" {
				category = "outros"
			}
			categories[category] += item.TotalCents

			ins.PriceSeries[item.ProductKey] = append(ins.PriceSeries[item.ProductKey], PricePoint{
				Date:           cart.Date,
				UnitPriceCents: item.UnitPriceCents,
			})
		}
	}

	ins.TopByValue = topProducts(products, func(a, b *ProductStat) bool {
		if a.TotalCents != b.TotalCents {
			return a.TotalCents > b.TotalCents
		}
		return a.ProductKey < b.ProductKey
	})
	ins.TopByQuantity = topProducts(products, func(a, b *ProductStat) bool {
		if a.QuantityThousandths != b.QuantityThousandths {
			return a.QuantityThousandths > b.QuantityThousandths
		}
		return a.ProductKey < b.ProductKey
	})

	for category, total := range categories {
		ins.TopCategories = append(ins.TopCategories, CategoryStat{Category: category, TotalCents: total})
	}
	sort.Slice(ins.TopCategories, func(i, j int) bool {
		a, b := ins.TopCategories[i], ins.TopCategories[j]
		if a.TotalCents != b.TotalCents {
			return a.TotalCents > b.TotalCents
		}
		return a.Category < b.Category
	})
	if len(ins.TopCategories) > topN {
		ins.TopCategories = ins.TopCategories[:topN]
	}

	return ins, nil
}

func topProducts(products map[string]*ProductStat, less func(a, b *ProductStat) bool) []ProductStat {
	stats := make([]*ProductStat, 0, len(products))
	for _, stat := range products {
		stats = append(stats, stat)
	}
	sort.Slice(stats, func(i, j int) bool { return less(stats[i], stats[j]) })
	if len(stats) > topN {
		stats = stats[:topN]
	}

	out := make([]ProductStat, len(stats))
	for i, stat := range stats {
		out[i] = *stat
	}
	return out
}
