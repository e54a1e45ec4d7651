package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"leasemate-server/models"
)

// ContractRenderer turns a finalized lease into a binary contract document.
// It is read-only from the core's perspective: rendering never mutates lease
// state, and a rendering failure is reported to the caller as retryable.
type ContractRenderer interface {
	Render(ctx context.Context, lease *models.Lease) ([]byte, error)
}

// renderTimeout bounds the only long-running call adjacent to the core.
const renderTimeout = 30 * time.Second

// RenderContract fetches the lease on behalf of either party and runs the
// renderer under a timeout. Lease state is untouched whatever happens.
func (w *LeaseWorkflow) RenderContract(ctx context.Context, renderer ContractRenderer, callerID, leaseID uint) ([]byte, error) {
	lease, err := w.Get(ctx, callerID, leaseID)
	if err != nil {
		return nil, err
	}
	if lease.Status == models.LeaseRejected {
		return nil, &InvalidStateError{Entity: "lease", Reason: "rejected leases have no contract"}
	}

	rctx, cancel := context.WithTimeout(ctx, renderTimeout)
	defer cancel()

	doc, err := renderer.Render(rctx, lease)
	if err != nil {
		return nil, &CollaboratorError{Collaborator: "document renderer", Err: err}
	}
	return doc, nil
}

// HTTPContractRenderer posts the lease to an external rendering service and
// returns the response body (a PDF).
type HTTPContractRenderer struct {
	URL    string
	Client *http.Client
}

func NewHTTPContractRenderer(url string) *HTTPContractRenderer {
	return &HTTPContractRenderer{
		URL:    url,
		Client: &http.Client{Timeout: renderTimeout},
	}
}

func (r *HTTPContractRenderer) Render(ctx context.Context, lease *models.Lease) ([]byte, error) {
	body, err := json.Marshal(lease)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.URL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("renderer returned %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
