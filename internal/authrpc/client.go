package authrpc

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"

	"github.com/movieon/auth-service/internal/authpb"
)

// DefaultTimeout bounds a single HasAccess round trip when the caller did
// not configure one.  Exceeding it is a transport failure and the gate
// treats it as a denial.
const DefaultTimeout = 2 * time.Second

// Client wraps the gRPC connection to the authorization service.  The
// channel is plaintext and must only cross a trusted private network
// segment.  The client never retries: a transient blip denies the request
// rather than risk granting access on a stale answer.
type Client struct {
	conn    *grpc.ClientConn
	api     authpb.AuthClient
	timeout time.Duration
}

// Dial connects to the authorization service at addr.  timeout bounds each
// HasAccess call; pass 0 for DefaultTimeout.
func Dial(addr string, timeout time.Duration) (*Client, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("dial auth service: %w", err)
	}
	return &Client{conn: conn, api: authpb.NewAuthClient(conn), timeout: timeout}, nil
}

// Close shuts down the underlying connection.
func (c *Client) Close() error { return c.conn.Close() }

// HasAccess asks the remote service for a verdict.  Remember the contract
// asymmetry: every role in roles is required (AND), unlike the local gate's
// shorthand-OR default.  The error return covers transport failures only;
// a clean denial comes back as (false, message, nil).
func (c *Client) HasAccess(ctx context.Context, tokenStr string, roles []string) (bool, string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.api.HasAccess(ctx, &authpb.HasAccessRequest{Token: tokenStr, Roles: roles})
	if err != nil {
		if st, ok := status.FromError(err); ok {
			return false, "", fmt.Errorf("auth service: %s", st.Message())
		}
		return false, "", fmt.Errorf("auth service: %w", err)
	}
	return resp.GetHasAccess(), resp.GetMessage(), nil
}
