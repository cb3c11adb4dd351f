package lusha

import (
	"context"
	"log"
	"net/http"
	"time"

	"google.golang.org/api/idtoken"
)

// NewHTTPClient returns the HTTP client for provider calls. When audience is
// set the client attaches Google-signed ID tokens; if no credentials are
// available it falls back to a plain client.
func NewHTTPClient(ctx context.Context, audience string, timeout time.Duration) *http.Client {
	if audience == "" {
		return &http.Client{Timeout: timeout}
	}
	idc, err := idtoken.NewClient(ctx, audience)
	if err != nil {
		log.Printf("lusha id token client unavailable audience=%s err=%v", audience, err)
		return &http.Client{Timeout: timeout}
	}
	idc.Timeout = timeout
	return idc
}
