package grpc

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/simaogato/patrimony-backend/internal/metrics"
)

// Metadata keys read from every call
const (
	AuthorizationHeader = "authorization"
	OwnerHeader         = "x-owner-id"
)

type ownerKey struct{}

// WithOwner returns a context carrying the calling owner's id
func WithOwner(ctx context.Context, ownerID string) context.Context {
	return context.WithValue(ctx, ownerKey{}, ownerID)
}

// OwnerFromContext returns the calling owner's id set by AuthInterceptor
func OwnerFromContext(ctx context.Context) (string, bool) {
	ownerID, ok := ctx.Value(ownerKey{}).(string)
	return ownerID, ok && ownerID != ""
}

// AuthInterceptor returns a gRPC unary server interceptor that validates
// the authorization token from request metadata and identifies the caller.
// If the token or the owner id is missing or invalid, it returns status.Unauthenticated.
// If valid, it calls the handler with the owner id stored in the context.
// Calls to publicMethods (full method names) skip the checks.
func AuthInterceptor(validToken string, publicMethods ...string) grpc.UnaryServerInterceptor {
	public := make(map[string]bool, len(publicMethods))
	for _, method := range publicMethods {
		public[method] = true
	}

	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		if public[info.FullMethod] {
			return handler(ctx, req)
		}

		md, ok := metadata.FromIncomingContext(ctx)
		if !ok {
			return nil, status.Error(codes.Unauthenticated, "missing metadata")
		}

		authHeaders := md.Get(AuthorizationHeader)
		if len(authHeaders) == 0 {
			return nil, status.Error(codes.Unauthenticated, "missing authorization header")
		}

		if authHeaders[0] != validToken {
			return nil, status.Error(codes.Unauthenticated, "invalid token")
		}

		owners := md.Get(OwnerHeader)
		if len(owners) == 0 || owners[0] == "" {
			return nil, status.Error(codes.Unauthenticated, "missing owner id")
		}

		return handler(WithOwner(ctx, owners[0]), req)
	}
}

// LoggingInterceptor records the method, status code and duration of every call
func LoggingInterceptor(log zerolog.Logger, m *metrics.Metrics) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		elapsed := time.Since(start)

		code := status.Code(err)
		m.RPCRequestsTotal.WithLabelValues(info.FullMethod, code.String()).Inc()
		m.RPCRequestDuration.WithLabelValues(info.FullMethod).Observe(elapsed.Seconds())

		event := log.Debug()
		if code == codes.Internal || code == codes.Unknown {
			event = log.Error().Err(err)
		}
		event.
			Str("method", info.FullMethod).
			Str("code", code.String()).
			Dur("duration", elapsed).
			Msg("rpc handled")

		return resp, err
	}
}
