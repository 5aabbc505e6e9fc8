package server

import (
	"context"
	"net"
	"os"
	"testing"

	api "github.com/devnexus/commitlog/api/v1"
	"github.com/devnexus/commitlog/internal/log"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
)

// stubAuthorizer denies everyone except the subjects listed in allow, so the
// authorization path can be exercised without real ACL fixtures.
type stubAuthorizer struct {
	allow map[string]bool
}

func (s *stubAuthorizer) Authorize(subject, object, action string) error {
	if s.allow[subject] {
		return nil
	}
	return status.New(codes.PermissionDenied, subject+" not permitted").Err()
}

// TestServer runs every scenario against one client/server pair so setup
// cost is paid once per scenario, mirroring the teacher's table-driven
// layout.
func TestServer(t *testing.T) {
	for scenario, fn := range map[string]func(t *testing.T, rootClient, nobodyClient api.LogClient, config *Config){
		"produce/consume a message to/from the log succeeds": testProduceConsume,
		"consume stream succeeds":                             testConsumeStream,
		"consume past log boundary fails":                     testConsumePastBoundary,
		"unauthorized produce/consume fails":                  testUnauthorized,
	} {
		t.Run(scenario, func(t *testing.T) {
			rootClient, nobodyClient, config, teardown := setupTest(t)
			defer teardown()
			fn(t, rootClient, nobodyClient, config)
		})
	}
}

func setupTest(t *testing.T) (rootClient, nobodyClient api.LogClient, cfg *Config, teardown func()) {
	t.Helper()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	newClient := func() (*grpc.ClientConn, api.LogClient) {
		conn, err := grpc.NewClient(l.Addr().String(), grpc.WithTransportCredentials(insecure.NewCredentials()))
		require.NoError(t, err)
		return conn, api.NewLogClient(conn)
	}

	rootConn, rootClient := newClient()
	nobodyConn, nobodyClient := newClient()

	dir, err := os.MkdirTemp("", "server_test")
	require.NoError(t, err)

	clog, err := log.NewLog(dir, log.Config{})
	require.NoError(t, err)

	authorizer := &stubAuthorizer{allow: map[string]bool{"": true}}

	cfg = &Config{
		CommitLog:  clog,
		Authorizer: authorizer,
	}

	srv, err := NewGRPCServer(cfg)
	require.NoError(t, err)

	go func() { _ = srv.Serve(l) }()

	return rootClient, nobodyClient, cfg, func() {
		srv.Stop()
		rootConn.Close()
		nobodyConn.Close()
		l.Close()
		os.RemoveAll(dir)
	}
}

func testProduceConsume(t *testing.T, client, _ api.LogClient, _ *Config) {
	ctx := context.Background()
	want := &api.Record{Value: []byte("hello world")}

	produce, err := client.Produce(ctx, &api.ProduceRequest{Record: want})
	require.NoError(t, err)

	consume, err := client.Consume(ctx, &api.ConsumeRequest{Offset: produce.Offset})
	require.NoError(t, err)
	require.Equal(t, want.Value, consume.Record.Value)
	require.Equal(t, produce.Offset, *consume.Record.Offset)
}

func testConsumeStream(t *testing.T, client, _ api.LogClient, _ *Config) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	records := []*api.Record{
		{Value: []byte("first message")},
		{Value: []byte("second message")},
	}

	var offsets []uint64
	for _, r := range records {
		produce, err := client.Produce(ctx, &api.ProduceRequest{Record: r})
		require.NoError(t, err)
		offsets = append(offsets, produce.Offset)
	}

	stream, err := client.ConsumeStream(ctx, &api.ConsumeRequest{Offset: offsets[0]})
	require.NoError(t, err)

	for i := range records {
		res, err := stream.Recv()
		require.NoError(t, err)
		require.Equal(t, records[i].Value, res.Record.Value)
	}
}

func testConsumePastBoundary(t *testing.T, client, _ api.LogClient, _ *Config) {
	ctx := context.Background()

	produce, err := client.Produce(ctx, &api.ProduceRequest{Record: &api.Record{Value: []byte("hello world")}})
	require.NoError(t, err)

	consume, err := client.Consume(ctx, &api.ConsumeRequest{Offset: produce.Offset + 1})
	require.Nil(t, consume)
	require.Equal(t, codes.NotFound, status.Code(err))
}

func testUnauthorized(t *testing.T, _, client api.LogClient, cfg *Config) {
	ctx := context.Background()
	cfg.Authorizer = &stubAuthorizer{allow: map[string]bool{"root": true}}

	produce, err := client.Produce(ctx, &api.ProduceRequest{Record: &api.Record{Value: []byte("hello world")}})
	require.Nil(t, produce)
	require.Equal(t, codes.PermissionDenied, status.Code(err))

	consume, err := client.Consume(ctx, &api.ConsumeRequest{Offset: 0})
	require.Nil(t, consume)
	require.Equal(t, codes.PermissionDenied, status.Code(err))
}
