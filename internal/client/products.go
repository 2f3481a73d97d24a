package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"boutique-catalog/internal/domain"
	"boutique-catalog/internal/storage"
)

// ProductsClient covers the product routes.
type ProductsClient struct {
	c *Client
}

func (p *ProductsClient) get(ctx context.Context, path string, out interface{}) error {
	return p.c.do(ctx, request{method: http.MethodGet, path: path, entity: "Product"}, out)
}

func (p *ProductsClient) List(ctx context.Context) ([]*domain.Product, error) {
	var products []*domain.Product
	if err := p.get(ctx, "/api/products", &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (p *ProductsClient) Get(ctx context.Context, id string) (*domain.Product, error) {
	var product domain.Product
	if err := p.get(ctx, "/api/products/"+url.PathEscape(id), &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (p *ProductsClient) ListByCategory(ctx context.Context, categoryID string) ([]*domain.Product, error) {
	var products []*domain.Product
	if err := p.get(ctx, "/api/products/category/"+url.PathEscape(categoryID), &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (p *ProductsClient) ListByLookbook(ctx context.Context, lookbookID string) ([]*domain.Product, error) {
	var products []*domain.Product
	if err := p.get(ctx, "/api/products/lookbook/"+url.PathEscape(lookbookID), &products); err != nil {
		return nil, err
	}
	return products, nil
}

// Create checks the required fields locally, then uploads the product
// with its image.
func (p *ProductsClient) Create(ctx context.Context, in domain.ProductInput, image *storage.Upload) (*domain.Product, error) {
	in.Normalize()
	if err := domain.ValidateProductInput(in, image != nil); err != nil {
		return nil, err
	}

	f := newForm()
	f.field("name", in.Name)
	f.field("description", in.Description)
	f.field("price", in.Price.String())
	f.field("category", in.CategoryID)
	f.field("lookbook", in.LookbookID)
	f.field("quantity", strconv.Itoa(*in.Quantity))
	f.field("size", in.Size)
	if in.IsAvailable != nil {
		f.field("availability", strconv.FormatBool(*in.IsAvailable))
	}
	f.image(image)

	return p.send(ctx, http.MethodPost, "/api/products", f)
}

// Update sends only the fields set in patch, plus the image when given.
func (p *ProductsClient) Update(ctx context.Context, id string, patch domain.ProductPatch, image *storage.Upload) (*domain.Product, error) {
	if err := domain.ValidateProductPatch(patch); err != nil {
		return nil, err
	}

	f := newForm()
	f.optional("name", patch.Name)
	f.optional("description", patch.Description)
	f.optional("category", patch.CategoryID)
	f.optional("lookbook", patch.LookbookID)
	f.optional("size", patch.Size)
	if patch.Price != nil {
		f.field("price", patch.Price.String())
	}
	if patch.Quantity != nil {
		f.field("quantity", strconv.Itoa(*patch.Quantity))
	}
	if patch.IsAvailable != nil {
		f.field("availability", strconv.FormatBool(*patch.IsAvailable))
	}
	if patch.Version != nil {
		f.field("version", strconv.Itoa(*patch.Version))
	}
	f.image(image)

	return p.send(ctx, http.MethodPut, "/api/products/"+url.PathEscape(id), f)
}

func (p *ProductsClient) send(ctx context.Context, method, path string, f *form) (*domain.Product, error) {
	body, contentType, err := f.encode()
	if err != nil {
		return nil, err
	}

	var product domain.Product
	if err := p.c.do(ctx, request{
		method:      method,
		path:        path,
		body:        body,
		contentType: contentType,
		auth:        true,
		entity:      "Product",
	}, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// QuantityUpdate is the stored state of a product after a quantity
// update.
type QuantityUpdate struct {
	ID       string `json:"id"`
	Quantity int    `json:"quantity"`
	Version  int    `json:"version"`
}

// UpdateQuantity sets the quantity of a product. The result carries the
// new version, which later edits of the product must send.
func (p *ProductsClient) UpdateQuantity(ctx context.Context, id string, quantity int) (*QuantityUpdate, error) {
	if err := domain.ValidateQuantity(quantity); err != nil {
		return nil, err
	}

	body, err := json.Marshal(map[string]int{"quantity": quantity})
	if err != nil {
		return nil, err
	}

	var result QuantityUpdate
	if err := p.c.do(ctx, request{
		method:      http.MethodPatch,
		path:        "/api/products/" + url.PathEscape(id) + "/quantity",
		body:        body,
		contentType: "application/json",
		auth:        true,
		entity:      "Product",
	}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (p *ProductsClient) Delete(ctx context.Context, id string) (*domain.Product, error) {
	var product domain.Product
	if err := p.c.do(ctx, request{
		method: http.MethodDelete,
		path:   "/api/products/" + url.PathEscape(id),
		auth:   true,
		entity: "Product",
	}, &product); err != nil {
		return nil, err
	}
	return &product, nil
}
