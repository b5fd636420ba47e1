package transport

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-errors/errors"
	"github.com/google/uuid"

	"github.com/ridh7/meshgate/forwarding"
	"github.com/ridh7/meshgate/topology"
)

// Client is the single outbound mTLS HTTP client shared by every subsystem
// that needs to call a peer: the link-state engine (PostLSA), the
// forwarding state machine (Relay) and the liveness prober (Ping). It
// mirrors lnd's pattern of one shared transport credential set serving
// every RPC the node makes outward.
type Client struct {
	http *http.Client
}

// NewClient builds a Client dialing peers with tlsConfig, which must already
// carry this node's identity certificate and the pinned CA pool.
func NewClient(tlsConfig *tls.Config) *Client {
	return &Client{
		http: &http.Client{
			Transport: &http.Transport{TLSClientConfig: tlsConfig},
			Timeout:   15 * time.Second,
		},
	}
}

// outgoingRequestID returns the correlation ID already attached to ctx so it
// propagates unchanged across hops, minting a fresh one only when ctx carries
// none (e.g. a locally originated request, not a relayed one).
func outgoingRequestID(ctx context.Context) string {
	if id := requestID(ctx); id != "" {
		return id
	}
	return uuid.NewString()
}

func (c *Client) do(ctx context.Context, addr topology.PeerAddress, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return errors.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	url := fmt.Sprintf("https://%s%s", addr, path)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, reader)
	if err != nil {
		return errors.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(RequestIDHeader, outgoingRequestID(ctx))

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Errorf("call %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("%s returned status %d", path, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Errorf("decode response from %s: %w", path, err)
	}
	return nil
}

// PostLSA implements discovery.Sender.
func (c *Client) PostLSA(ctx context.Context, addr topology.PeerAddress, lsa topology.LSA) error {
	var resp LSAResponse
	return c.do(ctx, addr, "/topology/lsa", lsaRequestFrom(lsa), &resp)
}

// Relay implements forwarding.Relayer.
func (c *Client) Relay(ctx context.Context, addr topology.PeerAddress, from, to topology.NodeID,
	content string, route []topology.NodeID) (forwarding.Response, error) {

	strRoute := make([]string, len(route))
	for i, n := range route {
		strRoute[i] = string(n)
	}

	req := ReceiveRequest{From: string(from), To: string(to), Content: content, Route: strRoute}
	var resp MessageResponse
	if err := c.do(ctx, addr, "/message/receive", req, &resp); err != nil {
		return forwarding.Response{}, err
	}
	return forwarding.Response{
		Status: forwarding.Status(resp.Status),
		Route:  nodeIDRoute(resp.Route),
	}, nil
}

// Ping implements health.Pinger.
func (c *Client) Ping(ctx context.Context, addr topology.PeerAddress) error {
	url := fmt.Sprintf("https://%s/health", addr)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errors.Errorf("build health request: %w", err)
	}
	req.Header.Set(RequestIDHeader, outgoingRequestID(ctx))

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("health check returned status %d", resp.StatusCode)
	}
	return nil
}
