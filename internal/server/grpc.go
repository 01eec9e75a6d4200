package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/kabir-fx/abhiraksha/constants"
	"github.com/kabir-fx/abhiraksha/internal/adjudicate"
	"github.com/kabir-fx/abhiraksha/internal/common"
)

const ClaimsServiceName = "claims.v1.ClaimsService"

// ClaimsServiceServer is the server API for claims.v1.ClaimsService.
// Requests and responses are google.protobuf.Struct.
type ClaimsServiceServer interface {
	Extract(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Analyze(context.Context, *structpb.Struct) (*structpb.Struct, error)
	LookupPolicy(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

func structHandler(method string, call func(ClaimsServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)) grpc.MethodDesc {
	fullMethod := "/" + ClaimsServiceName + "/" + method
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(ClaimsServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(ClaimsServiceServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

var ClaimsServiceDesc = grpc.ServiceDesc{
	ServiceName: ClaimsServiceName,
	HandlerType: (*ClaimsServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		structHandler("Extract", ClaimsServiceServer.Extract),
		structHandler("Analyze", ClaimsServiceServer.Analyze),
		structHandler("LookupPolicy", ClaimsServiceServer.LookupPolicy),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "claims/v1/claims.proto",
}

func RegisterClaimsServiceServer(s grpc.ServiceRegistrar, srv ClaimsServiceServer) {
	s.RegisterService(&ClaimsServiceDesc, srv)
}

type ClaimsService struct {
	claims ClaimService
	logger *slog.Logger
}

func NewClaimsService(claims ClaimService, logger *slog.Logger) *ClaimsService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ClaimsService{claims: claims, logger: logger}
}

// Extract takes {type, text} and returns the extraction result plus the
// strategy that produced it.
func (s *ClaimsService) Extract(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	fields := req.GetFields()
	doc, ok := constants.ParseDocumentType(fields["type"].GetStringValue())
	if !ok {
		return nil, common.InvalidArgumentError(invalidTypeMessage)
	}
	out, err := s.claims.ExtractText(ctx, doc, fields["text"].GetStringValue())
	if err != nil {
		return nil, s.toStatus(ctx, "Extract", err)
	}
	resp, err := toStruct(out)
	if err != nil {
		return nil, s.toStatus(ctx, "Extract", err)
	}
	resp.Fields["strategy"] = structpb.NewStringValue(string(s.claims.StrategyFor(doc)))
	return resp, nil
}

// Analyze takes {insurance, discharge, bill} and returns {success, verdict}.
func (s *ClaimsService) Analyze(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	raw, err := protojson.Marshal(req)
	if err != nil {
		return nil, common.InvalidArgumentError(badBodyMessage)
	}
	var in adjudicate.ClaimInput
	if err := json.Unmarshal(raw, &in); err != nil {
		return nil, common.InvalidArgumentError(badBodyMessage)
	}
	v, err := s.claims.Analyze(ctx, in)
	if err != nil {
		return nil, s.toStatus(ctx, "Analyze", err)
	}
	resp, err := toStruct(map[string]any{"success": true, "verdict": v})
	if err != nil {
		return nil, s.toStatus(ctx, "Analyze", err)
	}
	return resp, nil
}

// LookupPolicy takes {policy_number}.
func (s *ClaimsService) LookupPolicy(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	number := req.GetFields()["policy_number"].GetStringValue()
	res, err := s.claims.LookupPolicy(ctx, number)
	if err != nil {
		return nil, s.toStatus(ctx, "LookupPolicy", err)
	}
	resp, err := toStruct(res)
	if err != nil {
		return nil, s.toStatus(ctx, "LookupPolicy", err)
	}
	return resp, nil
}

func (s *ClaimsService) toStatus(ctx context.Context, method string, err error) error {
	st := common.ToGRPC(err)
	if code := status.Code(st); code == codes.Internal || code == codes.Unavailable {
		common.LoggerFromContext(ctx, s.logger).Error("grpc.handler.failed", "method", method, "err", err)
	}
	return st
}

// toStruct round-trips v through its JSON form so the wire shape matches the
// HTTP API.
func toStruct(v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode response: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return structpb.NewStruct(m)
}

// RequestIDInterceptor takes x-request-id from metadata or mints one, and
// logs each call.
func RequestIDInterceptor(logger *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		rid := ""
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if vals := md.Get(strings.ToLower(HeaderXRequestID)); len(vals) > 0 {
				rid = vals[0]
			}
		}
		if rid == "" {
			rid = uuid.New().String()
		}
		ctx = common.WithRequestID(ctx, rid)
		_ = grpc.SetHeader(ctx, metadata.Pairs(strings.ToLower(HeaderXRequestID), rid))

		start := time.Now()
		resp, err := handler(ctx, req)
		common.LoggerFromContext(ctx, logger).Info("grpc.request",
			"method", info.FullMethod,
			"code", status.Code(err).String(),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return resp, err
	}
}

// NewGRPCServer registers the claims service and the standard health service.
func NewGRPCServer(claims ClaimService, logger *slog.Logger, opts ...grpc.ServerOption) (*grpc.Server, *health.Server) {
	if logger == nil {
		logger = slog.Default()
	}
	opts = append(opts, grpc.ChainUnaryInterceptor(RequestIDInterceptor(logger)))
	srv := grpc.NewServer(opts...)

	RegisterClaimsServiceServer(srv, NewClaimsService(claims, logger))

	hs := health.NewServer()
	healthpb.RegisterHealthServer(srv, hs)
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(ClaimsServiceName, healthpb.HealthCheckResponse_SERVING)
	return srv, hs
}
