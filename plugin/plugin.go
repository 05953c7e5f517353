package plugin

import (
	"context"
	"net/rpc"

	goplugin "github.com/hashicorp/go-plugin"
)

// CredentialVerifier is the interface FTPGate dispenses to host code for
// this plugin. Implementations must be safe for concurrent use.
type CredentialVerifier interface {
	Verify(username string, password Secret) (*VerifyReply, error)
	Info() (*PluginInfo, error)
}

// VerifyArgs carries one credential pair across the plugin boundary. The
// password travels as a Secret so incidental logging of the args cannot
// leak it.
type VerifyArgs struct {
	Username string
	Password Secret
}

// VerifyReply is the wire form of a Verdict. Identity is set only on an
// allow with a local user mapping configured.
type VerifyReply struct {
	Status   VerdictStatus
	Reason   string
	Identity *LocalIdentity
}

// VerifierRPCServer serves a Verifier over net/rpc inside the plugin
// process.
type VerifierRPCServer struct {
	Impl *Verifier
}

// Verify handles one verification call from the host. net/rpc carries no
// context, so the call runs under the invoker's own timeout.
func (s *VerifierRPCServer) Verify(args *VerifyArgs, reply *VerifyReply) error {
	VerifyCalls.Inc()

	verdict := s.Impl.Verify(context.Background(), args.Username, args.Password)
	reply.Status = verdict.Status
	reply.Reason = verdict.Reason
	reply.Identity = verdict.Identity
	return nil
}

// Info returns the plugin description. FTPGate calls this once at plugin
// registration.
func (s *VerifierRPCServer) Info(_ interface{}, reply *PluginInfo) error {
	*reply = Info
	return nil
}

// VerifierRPCClient is the host-side stub implementing CredentialVerifier
// over the plugin connection.
type VerifierRPCClient struct {
	client *rpc.Client
}

// Verify submits one credential pair to the plugin process.
func (c *VerifierRPCClient) Verify(username string, password Secret) (*VerifyReply, error) {
	var reply VerifyReply
	args := VerifyArgs{Username: username, Password: password}
	if err := c.client.Call("Plugin.Verify", &args, &reply); err != nil {
		return nil, err
	}
	return &reply, nil
}

// Info fetches the plugin description from the plugin process.
func (c *VerifierRPCClient) Info() (*PluginInfo, error) {
	var reply PluginInfo
	if err := c.client.Call("Plugin.Info", new(interface{}), &reply); err != nil {
		return nil, err
	}
	return &reply, nil
}

// VerifierPlugin is the go-plugin glue for the verifier. The host side
// leaves Impl nil; the plugin binary fills it in before serving.
type VerifierPlugin struct {
	Impl *Verifier
}

// Server returns the RPC server for the plugin process.
func (p *VerifierPlugin) Server(*goplugin.MuxBroker) (interface{}, error) {
	return &VerifierRPCServer{Impl: p.Impl}, nil
}

// Client returns the host-side stub.
func (p *VerifierPlugin) Client(_ *goplugin.MuxBroker, c *rpc.Client) (interface{}, error) {
	return &VerifierRPCClient{client: c}, nil
}
