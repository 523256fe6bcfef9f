package plugin

import (
	"context"
	"errors"
	"net"
	"net/rpc"
	"testing"

	"github.com/felixgeelhaar/zenith/internal/emotion"
)

type mockEstimator struct{}

func (m *mockEstimator) Name() string { return "mock" }

func (m *mockEstimator) Estimate(ctx context.Context, text string) (emotion.Verdict, error) {
	if text == "fail" {
		return emotion.Verdict{}, errors.New("estimate failed")
	}
	return emotion.Verdict{Label: "positive", Score: 0.8}, nil
}

func newPipePair(t *testing.T) *estimatorRPC {
	t.Helper()

	server := rpc.NewServer()
	if err := server.RegisterName("Plugin", &estimatorRPCServer{impl: &mockEstimator{}}); err != nil {
		t.Fatalf("Failed to register server: %v", err)
	}

	hostConn, pluginConn := net.Pipe()
	go server.ServeConn(pluginConn)

	client := rpc.NewClient(hostConn)
	t.Cleanup(func() { client.Close() })

	return &estimatorRPC{client: client}
}

func TestEstimatorRPC(t *testing.T) {
	est := newPipePair(t)

	verdict, err := est.Estimate(context.Background(), "feeling good")
	if err != nil {
		t.Fatalf("Estimate failed: %v", err)
	}
	if verdict.Label != "positive" || verdict.Score != 0.8 {
		t.Errorf("Unexpected verdict: %+v", verdict)
	}

	if _, err := est.Estimate(context.Background(), "fail"); err == nil {
		t.Error("Expected propagated error")
	}

	if got := est.Name(); got != "mock" {
		t.Errorf("Expected mock, got %s", got)
	}
}

func TestEstimatorPluginDispense(t *testing.T) {
	p := &EstimatorPlugin{Impl: &mockEstimator{}}

	srv, err := p.Server(nil)
	if err != nil {
		t.Fatalf("Server failed: %v", err)
	}
	if _, ok := srv.(*estimatorRPCServer); !ok {
		t.Errorf("Unexpected server type %T", srv)
	}

	cli, err := p.Client(nil, nil)
	if err != nil {
		t.Fatalf("Client failed: %v", err)
	}
	if _, ok := cli.(emotion.Estimator); !ok {
		t.Errorf("Client %T does not implement the estimator interface", cli)
	}
}
