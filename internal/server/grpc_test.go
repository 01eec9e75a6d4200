package server

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/kabir-fx/abhiraksha/internal/llm/llmtest"
	"github.com/kabir-fx/abhiraksha/internal/metrics"
)

const bufSize = 1 << 20

func startGRPC(t *testing.T, gen *llmtest.Fake) *grpc.ClientConn {
	t.Helper()
	lis := bufconn.Listen(bufSize)
	srv, _ := NewGRPCServer(newProcessor(t, gen, metrics.New(metrics.Namespace)), nil)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func call(t *testing.T, conn *grpc.ClientConn, method string, in map[string]any, opts ...grpc.CallOption) (*structpb.Struct, error) {
	t.Helper()
	req, err := structpb.NewStruct(in)
	require.NoError(t, err)
	out := new(structpb.Struct)
	err = conn.Invoke(t.Context(), "/"+ClaimsServiceName+"/"+method, req, out, opts...)
	return out, err
}

func TestGRPC_Extract(t *testing.T) {
	conn := startGRPC(t, &llmtest.Fake{})

	var header metadata.MD
	out, err := call(t, conn, "Extract", map[string]any{"type": "bill", "text": billText}, grpc.Header(&header))
	require.NoError(t, err)

	assert.Equal(t, "regex", out.Fields["strategy"].GetStringValue())
	assert.True(t, out.Fields["success"].GetBoolValue())
	data := out.Fields["data"].GetStructValue().GetFields()
	assert.Equal(t, "B-77", data["bill_number"].GetStringValue())
	assert.NotEmpty(t, header.Get("x-request-id"))
}

func TestGRPC_ExtractErrors(t *testing.T) {
	conn := startGRPC(t, &llmtest.Fake{})

	_, err := call(t, conn, "Extract", map[string]any{"type": "receipt", "text": "x"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
	assert.Equal(t, invalidTypeMessage, status.Convert(err).Message())

	_, err = call(t, conn, "Extract", map[string]any{"type": "bill", "text": ""})
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))
}

func TestGRPC_Analyze(t *testing.T) {
	gen := &llmtest.Fake{Response: verdictJSON}
	conn := startGRPC(t, gen)

	out, err := call(t, conn, "Analyze", map[string]any{
		"discharge": map[string]any{"patient_name": "Rahul Verma"},
	})
	require.NoError(t, err)
	assert.True(t, out.Fields["success"].GetBoolValue())
	verdict := out.Fields["verdict"].GetStructValue().GetFields()
	assert.Equal(t, "Accepted", verdict["decision"].GetStringValue())
	assert.Equal(t, 88.0, verdict["confidence_score"].GetNumberValue())
	assert.Equal(t, 1, gen.Calls())

	_, err = call(t, conn, "Analyze", map[string]any{})
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))
	assert.Equal(t, 1, gen.Calls())
}

func TestGRPC_LookupPolicy(t *testing.T) {
	conn := startGRPC(t, &llmtest.Fake{})

	out, err := call(t, conn, "LookupPolicy", map[string]any{"policy_number": policyNumber})
	require.NoError(t, err)
	data := out.Fields["data"].GetStructValue().GetFields()
	assert.Equal(t, "Rahul Verma", data["insured_name"].GetStringValue())

	_, err = call(t, conn, "LookupPolicy", map[string]any{"policy_number": "NOPE"})
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestGRPC_Health(t *testing.T) {
	conn := startGRPC(t, &llmtest.Fake{})

	resp, err := healthpb.NewHealthClient(conn).Check(t.Context(), &healthpb.HealthCheckRequest{Service: ClaimsServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
}
