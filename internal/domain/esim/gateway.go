package esim

import "context"

// Gateway is the port to the eSIM provisioning provider.
type Gateway interface {
	// GetCatalog returns the plans available for an ISO country code.
	GetCatalog(ctx context.Context, country string) (Catalog, error)
	// CreateOrder purchases one eSIM for the requested package.
	CreateOrder(ctx context.Context, req OrderRequest) (Order, error)
}
