package jwtauth

import (
	"context"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// UnaryServerInterceptor returns a gRPC unary server interceptor guarding every
// method it wraps. Rejections are codes.Unauthenticated with the same reason
// as the HTTP adapters.
func (g *Gate) UnaryServerInterceptor() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		if _, ok := GetRequestID(ctx); !ok {
			ctx = WithRequestID(ctx, uuid.NewString())
		}

		md, ok := metadata.FromIncomingContext(ctx)
		if !ok {
			md = metadata.MD{}
		}

		token, err := extractTokenFromMetadata(md)
		claims, err := g.check(ctx, token, err)
		if err != nil {
			return nil, status.Error(codes.Unauthenticated, UnauthorizedReason)
		}

		return handler(WithClaims(ctx, claims), req)
	}
}
