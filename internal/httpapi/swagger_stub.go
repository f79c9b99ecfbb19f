//go:build !swagger

package httpapi

import "github.com/go-chi/chi/v5"

// MountSwagger is a no-op unless built with -tags=swagger, which mounts the
// generated OpenAPI UI under /docs.
func MountSwagger(r chi.Router) {}
