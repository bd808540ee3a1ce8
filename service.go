package fsmhelper

import (
	"slices"
	"time"
)

type (
	// Service describes a callable remote endpoint or sub-transaction.
	// Services are plain values: build them once, share them by copy.
	Service struct {
		// ID is the routing target handed to the engine.
		ID string `json:"id"`
		// Method names the operation invoked on the target.
		Method string `json:"method"`
		// Timeout bounds the wait for a response.
		Timeout time.Duration `json:"timeout"`
		// Retries is the retry budget armed by [RetryFacade.Call].
		Retries int `json:"retries"`
	}

	// Catalog is a fixed, named set of services supplied by the integration.
	Catalog struct {
		services map[string]Service
	}
)

// NewCatalog builds a catalog from named services. The map is copied.
func NewCatalog(services map[string]Service) *Catalog {
	c := &Catalog{services: make(map[string]Service, len(services))}
	for name, svc := range services {
		c.services[name] = svc
	}

	return c
}

// Lookup returns the service registered under name.
func (c *Catalog) Lookup(name string) (Service, bool) {
	svc, ok := c.services[name]
	return svc, ok
}

// MustLookup returns the service registered under name and panics when it
// is unknown. Intended for package-level catalogs wired at startup.
func (c *Catalog) MustLookup(name string) Service {
	svc, ok := c.services[name]
	if !ok {
		panic("fsmhelper: service " + name + " not found in catalog")
	}

	return svc
}

// Names returns the registered names in sorted order.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.services))
	for name := range c.services {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}

// Len returns the number of services.
func (c *Catalog) Len() int { return len(c.services) }
