// Package backend is the client for the CivicSource collaborator API:
// procurement and proposal storage, business search and the chat assistant.
package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/civicsource/civicsource/internal/civic"
	"go.uber.org/zap"
)

const (
	DefaultAPIURL = "http://127.0.0.1:5000"
	userAgent     = "civicsource-portal"

	procurementsPath = "/api/procurements"
	proposalsPath    = "/api/proposals"
	searchPath       = "/api/search"
	chatPath         = "/chat"
)

// Failure classes of a remote call. Returned errors wrap exactly one of them.
var (
	ErrRemoteUnavailable = errors.New("remote unavailable")
	ErrRemoteRejected    = errors.New("remote rejected request")
	ErrMalformedResponse = errors.New("malformed response")
)

type Client struct {
	logger     *zap.Logger
	HTTPClient *http.Client
	UserAgent  string
	APIURL     string
}

func New(logger *zap.Logger, apiURL string) *Client {
	apiURL = strings.TrimRight(strings.TrimSpace(apiURL), "/")
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}

	return &Client{
		APIURL: apiURL,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger:    logger,
		UserAgent: userAgent,
	}
}

type procurementResponse struct {
	Procurement *civic.Procurement `json:"procurement"`
}

type procurementRequest struct {
	civic.Need
	PostedDate time.Time `json:"postedDate"`
}

// CreateProcurement posts a need and returns the stored procurement.
func (c *Client) CreateProcurement(ctx context.Context, need civic.Need, posted time.Time) (*civic.Procurement, error) {
	var resp procurementResponse
	if err := c.postJSON(ctx, procurementsPath, procurementRequest{Need: need, PostedDate: posted}, &resp); err != nil {
		return nil, err
	}

	if resp.Procurement == nil {
		return nil, fmt.Errorf("%w: procurement is missing", ErrMalformedResponse)
	}

	return resp.Procurement, nil
}

type successResponse struct {
	Success *bool  `json:"success"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// ok accepts both {"success": true} and the older {"status": "success"} shape.
func (r successResponse) ok() (bool, error) {
	if r.Success != nil {
		return *r.Success, nil
	}
	if r.Status != "" {
		return strings.EqualFold(r.Status, "success"), nil
	}
	return false, fmt.Errorf("%w: success flag is missing", ErrMalformedResponse)
}

// CreateProposal submits a bid.
func (c *Client) CreateProposal(ctx context.Context, proposal civic.Proposal) error {
	var resp successResponse
	if err := c.postJSON(ctx, proposalsPath, proposal, &resp); err != nil {
		return err
	}

	ok, err := resp.ok()
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrRemoteRejected, resp.Message)
	}

	return nil
}

type proposalsResponse struct {
	Proposals *[]civic.Proposal `json:"proposals"`
}

// ListProposals returns the bids stored for a procurement.
func (c *Client) ListProposals(ctx context.Context, procurementID string) ([]civic.Proposal, error) {
	path := fmt.Sprintf("%s/%s/proposals", procurementsPath, url.PathEscape(procurementID))

	var resp proposalsResponse
	if err := c.getJSON(ctx, path, nil, &resp); err != nil {
		return nil, err
	}

	if resp.Proposals == nil {
		return nil, fmt.Errorf("%w: proposals are missing", ErrMalformedResponse)
	}

	return *resp.Proposals, nil
}

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Reply string `json:"reply"`
}

// Chat sends a message to the assistant endpoint and returns the complete reply.
func (c *Client) Chat(ctx context.Context, message string) (string, error) {
	var resp chatResponse
	if err := c.postJSON(ctx, chatPath, chatRequest{Message: message}, &resp); err != nil {
		return "", err
	}

	if strings.TrimSpace(resp.Reply) == "" {
		return "", fmt.Errorf("%w: reply is empty", ErrMalformedResponse)
	}

	return resp.Reply, nil
}
