package preview

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// sandboxCSP is sent with every preview document. The sandbox directive
// without allow-same-origin gives the iframe an opaque origin, so
// generated script can run but can never reach the host application's
// storage or cookies. Popups stay allowed so cross-origin links can open
// in a new tab instead of navigating the sandbox away.
const sandboxCSP = "sandbox allow-scripts allow-popups allow-forms allow-modals"

// RegisterRoutes mounts the preview document endpoint. The studio iframe
// loads /preview/{docID} for whatever document ID the latest rendered
// event carried.
func RegisterRoutes(r chi.Router, registry *Registry) {
	r.Get("/preview/{docID}", func(w http.ResponseWriter, req *http.Request) {
		docID := chi.URLParam(req, "docID")
		doc, ok := registry.Get(docID)
		if !ok {
			http.Error(w, "preview document not found or already released", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Content-Security-Policy", sandboxCSP)
		w.Header().Set("Cache-Control", "no-store")
		w.Write([]byte(doc))
	})
}
