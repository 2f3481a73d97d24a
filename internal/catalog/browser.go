package catalog

import (
	"context"
	"fmt"
	"strings"

	"boutique-catalog/internal/currency"
	"boutique-catalog/internal/domain"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// ProductSource lists products, optionally scoped to a category.
type ProductSource interface {
	List(ctx context.Context) ([]*domain.Product, error)
	ListByCategory(ctx context.Context, categoryID string) ([]*domain.Product, error)
}

// CollectionSource lists categories or lookbooks.
type CollectionSource interface {
	List(ctx context.Context) ([]*domain.Collection, error)
}

// Quoter resolves the display currency of a viewer.
type Quoter interface {
	Quote(ctx context.Context, ip, country string) currency.Quote
}

// Listing is a product as shown on the storefront.
type Listing struct {
	ID           string          `json:"_id"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price"`
	DisplayPrice string          `json:"display_price"`
	Quantity     int             `json:"quantity"`
	Sizes        []string        `json:"sizes"`
	IsAvailable  bool            `json:"isAvailable"`
	Image        string          `json:"image"`
	Images       []string        `json:"images"`
	CategoryID   string          `json:"category_id"`
	CategoryName string          `json:"category_name"`
	LookbookID   string          `json:"lookbook"`
	LookbookName string          `json:"lookbook_name"`
}

// BuildListings joins collection names and display prices onto products.
// Dangling references get an empty name.
func BuildListings(products []*domain.Product, categories, lookbooks []*domain.Collection, quote currency.Quote) []Listing {
	categoryNames := namesByID(categories)
	lookbookNames := namesByID(lookbooks)

	listings := make([]Listing, 0, len(products))
	for _, p := range products {
		sizes := p.Sizes()
		if sizes == nil {
			sizes = []string{}
		}
		images := p.Images
		if images == nil {
			images = []string{}
		}
		listings = append(listings, Listing{
			ID:           p.ID,
			Name:         p.Name,
			Description:  p.Description,
			Price:        p.Price,
			DisplayPrice: quote.Format(p.Price),
			Quantity:     p.Quantity,
			Sizes:        sizes,
			IsAvailable:  p.IsAvailable,
			Image:        p.PrimaryImage(),
			Images:       images,
			CategoryID:   p.CategoryID,
			CategoryName: categoryNames[p.CategoryID],
			LookbookID:   p.LookbookID,
			LookbookName: lookbookNames[p.LookbookID],
		})
	}
	return listings
}

func namesByID(collections []*domain.Collection) map[string]string {
	names := make(map[string]string, len(collections))
	for _, c := range collections {
		names[c.ID] = c.Name
	}
	return names
}

// PageRequest describes one storefront page load.
type PageRequest struct {
	CategoryID string
	ViewerIP   string
	Country    string
}

// Page is a loaded storefront page.
type Page struct {
	Products   []Listing            `json:"products"`
	Categories []*domain.Collection `json:"categories"`
	Lookbooks  []*domain.Collection `json:"lookbooks"`
	// Category is the selected category, nil when none is selected or the
	// id is unknown.
	Category *domain.Collection `json:"category"`
	Quote    currency.Quote     `json:"quote"`
}

// Browser loads storefront pages.
type Browser struct {
	products   ProductSource
	categories CollectionSource
	lookbooks  CollectionSource
	quoter     Quoter
}

// NewBrowser creates a Browser over the given sources.
func NewBrowser(products ProductSource, categories, lookbooks CollectionSource, quoter Quoter) *Browser {
	return &Browser{
		products:   products,
		categories: categories,
		lookbooks:  lookbooks,
		quoter:     quoter,
	}
}

// Load fetches products, both collection sets and the viewer's quote
// concurrently, then converts prices. A category id scopes the product
// fetch to that category.
func (b *Browser) Load(ctx context.Context, req PageRequest) (*Page, error) {
	var (
		page     Page
		products []*domain.Product
	)
	categoryID := strings.TrimSpace(req.CategoryID)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if categoryID != "" {
			products, err = b.products.ListByCategory(gctx, categoryID)
		} else {
			products, err = b.products.List(gctx)
		}
		if err != nil {
			return fmt.Errorf("load products: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if page.Categories, err = b.categories.List(gctx); err != nil {
			return fmt.Errorf("load categories: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if page.Lookbooks, err = b.lookbooks.List(gctx); err != nil {
			return fmt.Errorf("load lookbooks: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		page.Quote = b.quoter.Quote(gctx, req.ViewerIP, req.Country)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	page.Products = BuildListings(products, page.Categories, page.Lookbooks, page.Quote)
	if categoryID != "" {
		normalized := domain.NormalizeID(categoryID)
		for _, c := range page.Categories {
			if c.ID == normalized {
				page.Category = c
				break
			}
		}
	}
	return &page, nil
}
