// Package authrpc implements the remote half of the authorization gate:
// a gRPC service answering "does this token, with these required roles,
// have access?" for callers that do not hold the user store themselves,
// and the client wrapper those callers use.
package authrpc

import (
	"context"
	"errors"
	"log"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/movieon/auth-service/internal/access"
	"github.com/movieon/auth-service/internal/authpb"
	"github.com/movieon/auth-service/internal/model"
	"github.com/movieon/auth-service/internal/repository"
	"github.com/movieon/auth-service/internal/token"
)

// Messages returned in HasAccessResponse.  They are part of the wire
// contract: callers surface them to clients and the remote gate matches
// against them to pick a status code.
const (
	MsgSuccess       = "success"
	MsgNoToken       = "no access token"
	MsgBlocklisted   = "token is in the blocklist"
	MsgNotEnoughRole = "not enough permissions"
)

// UserStore is the slice of the user repository the server needs: current
// role names for a subject.  Unlike the local gate, the remote path never
// trusts the token's role snapshot.
type UserStore interface {
	GetRoles(ctx context.Context, userID string) ([]model.Role, error)
}

// Blocklist answers revocation checks.
type Blocklist interface {
	IsRevoked(ctx context.Context, userID string, jtis ...string) (bool, error)
}

// Server implements authpb.AuthServer.  Contract notes:
//
//   - required roles are evaluated as an AND group, not OR.  The HTTP
//     (local) gate defaults shorthand roles into an OR group; this endpoint
//     does not.  Callers wanting OR semantics must check locally.
//   - roles are re-derived from the store at check time, so a revoked role
//     takes effect here immediately instead of at token expiry.
type Server struct {
	authpb.UnimplementedAuthServer
	codec     *token.Codec
	users     UserStore
	blocklist Blocklist
}

func NewServer(codec *token.Codec, users UserStore, blocklist Blocklist) *Server {
	return &Server{codec: codec, users: users, blocklist: blocklist}
}

// HasAccess validates the token (signature, expiry, revocation) and, when
// roles are supplied, evaluates them against the user's current role set.
// Verdicts are carried in the response body; a gRPC error is returned only
// for infrastructure failures (store unreachable), which callers must
// treat as a denial (fail-closed).
func (s *Server) HasAccess(ctx context.Context, req *authpb.HasAccessRequest) (*authpb.HasAccessResponse, error) {
	raw := req.GetToken()
	if raw == "" {
		return deny(MsgNoToken), nil
	}

	claims, err := s.codec.Decode(raw)
	if err != nil {
		return deny(err.Error()), nil
	}

	jtis := []string{claims.ID}
	if claims.AccessJTI != "" {
		jtis = append(jtis, claims.AccessJTI)
	}
	revoked, err := s.blocklist.IsRevoked(ctx, claims.UserID, jtis...)
	if err != nil {
		log.Printf("authrpc: blocklist check failed: %v", err)
		return nil, status.Error(codes.Unavailable, "revocation store unreachable")
	}
	if revoked {
		return deny(MsgBlocklisted), nil
	}

	if len(req.GetRoles()) == 0 {
		return allow(), nil
	}

	roles, err := s.users.GetRoles(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return deny("user not found"), nil
		}
		log.Printf("authrpc: role lookup failed: %v", err)
		return nil, status.Error(codes.Unavailable, "user store unreachable")
	}

	held := make(access.RoleSet, len(roles))
	for _, r := range roles {
		held[access.Role(r.Name)] = struct{}{}
	}
	required := make([]access.Role, len(req.GetRoles()))
	for i, name := range req.GetRoles() {
		required[i] = access.Role(name)
	}

	if access.Allowed(held, access.Spec{All: required}) {
		return allow(), nil
	}
	return deny(MsgNotEnoughRole), nil
}

func allow() *authpb.HasAccessResponse {
	return &authpb.HasAccessResponse{HasAccess: true, Message: MsgSuccess}
}

func deny(msg string) *authpb.HasAccessResponse {
	return &authpb.HasAccessResponse{HasAccess: false, Message: msg}
}
