package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"boutique-catalog/internal/domain"
	"boutique-catalog/internal/storage"
)

// CollectionsClient covers the routes of one collection kind.
type CollectionsClient struct {
	c    *Client
	kind domain.Kind
	path string
}

// Kind returns the collection kind served by the client.
func (cc *CollectionsClient) Kind() domain.Kind {
	return cc.kind
}

func (cc *CollectionsClient) newRequest(method, path string) request {
	return request{method: method, path: path, entity: cc.kind.Label()}
}

func (cc *CollectionsClient) List(ctx context.Context) ([]*domain.Collection, error) {
	var collections []*domain.Collection
	if err := cc.c.do(ctx, cc.newRequest(http.MethodGet, cc.path), &collections); err != nil {
		return nil, err
	}
	return collections, nil
}

func (cc *CollectionsClient) Get(ctx context.Context, id string) (*domain.Collection, error) {
	var collection domain.Collection
	if err := cc.c.do(ctx, cc.newRequest(http.MethodGet, cc.path+"/"+url.PathEscape(id)), &collection); err != nil {
		return nil, err
	}
	return &collection, nil
}

func (cc *CollectionsClient) Create(ctx context.Context, in domain.CollectionInput, image *storage.Upload) (*domain.Collection, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := domain.ValidateCollectionInput(cc.kind, in, image != nil); err != nil {
		return nil, err
	}

	f := newForm()
	f.field("name", in.Name)
	f.field("description", in.Description)
	f.image(image)

	return cc.send(ctx, http.MethodPost, cc.path, f)
}

func (cc *CollectionsClient) Update(ctx context.Context, id string, patch domain.CollectionPatch, image *storage.Upload) (*domain.Collection, error) {
	if err := domain.ValidateCollectionPatch(cc.kind, patch); err != nil {
		return nil, err
	}

	f := newForm()
	f.optional("name", patch.Name)
	f.optional("description", patch.Description)
	if patch.Version != nil {
		f.field("version", strconv.Itoa(*patch.Version))
	}
	f.image(image)

	return cc.send(ctx, http.MethodPut, cc.path+"/"+url.PathEscape(id), f)
}

func (cc *CollectionsClient) send(ctx context.Context, method, path string, f *form) (*domain.Collection, error) {
	body, contentType, err := f.encode()
	if err != nil {
		return nil, err
	}

	req := cc.newRequest(method, path)
	req.body = body
	req.contentType = contentType
	req.auth = true

	var collection domain.Collection
	if err := cc.c.do(ctx, req, &collection); err != nil {
		return nil, err
	}
	return &collection, nil
}

func (cc *CollectionsClient) Delete(ctx context.Context, id string) (*domain.Collection, error) {
	req := cc.newRequest(http.MethodDelete, cc.path+"/"+url.PathEscape(id))
	req.auth = true

	var collection domain.Collection
	if err := cc.c.do(ctx, req, &collection); err != nil {
		return nil, err
	}
	return &collection, nil
}
