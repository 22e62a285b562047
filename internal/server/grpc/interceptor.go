package grpc

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

const clientIDHeader = "x-client-id"

// loggingInterceptor logs every unary call with its outcome. Probes from
// callers may name their client in the x-client-id metadata key.
func (s *GRPCServer) loggingInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {

	start := time.Now()

	var clientID string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		values := md.Get(clientIDHeader)
		if len(values) > 0 {
			clientID = values[0]
		}
	}

	resp, err := handler(ctx, req)

	s.logger.Debug(ctx, "grpc call",
		"method", info.FullMethod,
		"code", status.Code(err).String(),
		"client_id", clientID,
		"duration", time.Since(start),
	)

	return resp, err
}
