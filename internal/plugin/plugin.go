// Package plugin lets external binaries provide sentiment estimators.
// Plugins speak go-plugin's net/rpc protocol; a plugin binary calls
// Serve with its estimator and the host attaches with NewClient.
package plugin

import (
	"context"
	"fmt"
	"net/rpc"
	"os/exec"

	hcplugin "github.com/hashicorp/go-plugin"

	"github.com/felixgeelhaar/zenith/internal/emotion"
)

// Handshake is used to handshake between host and plugin.
var Handshake = hcplugin.HandshakeConfig{
	ProtocolVersion:  1,
	MagicCookieKey:   "ZENITH_PLUGIN_MAGIC_COOKIE",
	MagicCookieValue: "zenith-estimator",
}

// PluginMap is the map of plugins we can dispense.
var PluginMap = map[string]hcplugin.Plugin{
	"estimator": &EstimatorPlugin{},
}

// EstimatorPlugin is the hcplugin.Plugin implementation for estimators.
type EstimatorPlugin struct {
	Impl emotion.Estimator
}

func (p *EstimatorPlugin) Server(*hcplugin.MuxBroker) (interface{}, error) {
	return &estimatorRPCServer{impl: p.Impl}, nil
}

func (p *EstimatorPlugin) Client(b *hcplugin.MuxBroker, c *rpc.Client) (interface{}, error) {
	return &estimatorRPC{client: c}, nil
}

// EstimateArgs and EstimateReply are the wire types for the Estimate
// call. net/rpc carries no context, so deadlines stay host-side.
type EstimateArgs struct {
	Text string
}

type EstimateReply struct {
	Label string
	Score float64
}

// estimatorRPC is the host-side stub that talks over RPC.
type estimatorRPC struct {
	client *rpc.Client
}

func (e *estimatorRPC) Estimate(ctx context.Context, text string) (emotion.Verdict, error) {
	var reply EstimateReply
	if err := e.client.Call("Plugin.Estimate", EstimateArgs{Text: text}, &reply); err != nil {
		return emotion.Verdict{}, fmt.Errorf("plugin estimate failed: %w", err)
	}
	return emotion.Verdict{Label: reply.Label, Score: reply.Score}, nil
}

func (e *estimatorRPC) Name() string {
	var name string
	if err := e.client.Call("Plugin.Name", struct{}{}, &name); err != nil {
		return "plugin"
	}
	return name
}

// estimatorRPCServer runs inside the plugin process and calls the
// local implementation.
type estimatorRPCServer struct {
	impl emotion.Estimator
}

func (s *estimatorRPCServer) Estimate(args EstimateArgs, reply *EstimateReply) error {
	verdict, err := s.impl.Estimate(context.Background(), args.Text)
	if err != nil {
		return err
	}
	reply.Label = verdict.Label
	reply.Score = verdict.Score
	return nil
}

func (s *estimatorRPCServer) Name(_ struct{}, reply *string) error {
	*reply = s.impl.Name()
	return nil
}

// Client manages a plugin subprocess and exposes its estimator.
type Client struct {
	emotion.Estimator
	client *hcplugin.Client
}

// NewClient launches the plugin binary at path and dispenses its
// estimator. Callers must Close the client to reap the subprocess.
func NewClient(path string) (*Client, error) {
	client := hcplugin.NewClient(&hcplugin.ClientConfig{
		HandshakeConfig: Handshake,
		Plugins:         PluginMap,
		Cmd:             exec.Command(path),
	})

	rpcClient, err := client.Client()
	if err != nil {
		client.Kill()
		return nil, fmt.Errorf("failed to connect to plugin %s: %w", path, err)
	}

	raw, err := rpcClient.Dispense("estimator")
	if err != nil {
		client.Kill()
		return nil, fmt.Errorf("failed to dispense estimator: %w", err)
	}

	est, ok := raw.(emotion.Estimator)
	if !ok {
		client.Kill()
		return nil, fmt.Errorf("plugin %s does not implement the estimator interface", path)
	}

	return &Client{Estimator: est, client: client}, nil
}

// Close kills the plugin subprocess.
func (c *Client) Close() error {
	c.client.Kill()
	return nil
}

// Serve is called from a plugin binary's main to expose its estimator.
func Serve(impl emotion.Estimator) {
	hcplugin.Serve(&hcplugin.ServeConfig{
		HandshakeConfig: Handshake,
		Plugins: map[string]hcplugin.Plugin{
			"estimator": &EstimatorPlugin{Impl: impl},
		},
	})
}
