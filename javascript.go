package live

import (
	"net/http"

	"github.com/livelab/live/internal/embed"
)

// JavascriptPath is where Javascript expects to be mounted.
const JavascriptPath = "/live.js"

// Javascript handles serving the client side
// portion of live.
type Javascript struct {
}

// ServeHTTP.
func (j Javascript) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Add("Content-Type", "text/javascript")
	w.Write(embed.LiveJS)
}
