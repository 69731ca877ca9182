package agent

import (
	"context"
	"fmt"
)

// Agent provisions and tears down the machines of a deployment.
type Agent interface {
	// Name is the infrastructure name the agent is registered under.
	Name() string

	// AssertCredentials fails when the configured credentials cannot
	// authenticate against the provider.
	AssertCredentials(ctx context.Context, p Params) error

	// ConfigureSecurity creates the network, firewall and SSH key the
	// deployment's instances need. It returns true when anything was
	// created and false when everything already existed.
	ConfigureSecurity(ctx context.Context, p Params) (bool, error)

	// RunInstances starts count instances and waits until they are running.
	RunInstances(ctx context.Context, p Params, count int) (*Instances, error)

	// DescribeInstances lists the running instances of the deployment.
	DescribeInstances(ctx context.Context, p Params) (*Instances, error)

	// TerminateInstances deletes every instance of the deployment and the
	// security resources created for it.
	TerminateInstances(ctx context.Context, p Params) error
}

// Instance is a single machine as reported by a provider.
type Instance struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	PublicIP  string `json:"public_ip"`
	PrivateIP string `json:"private_ip"`
	Status    string `json:"status"`
}

// Instances is the set of machines belonging to a deployment.
type Instances struct {
	Items []Instance `json:"instances"`
}

// IDs returns the instance IDs in order.
func (in *Instances) IDs() []string {
	out := make([]string, 0, len(in.Items))
	for _, i := range in.Items {
		out = append(out, i.ID)
	}
	return out
}

// PublicIPs returns the public addresses in order.
func (in *Instances) PublicIPs() []string {
	out := make([]string, 0, len(in.Items))
	for _, i := range in.Items {
		out = append(out, i.PublicIP)
	}
	return out
}

// PrivateIPs returns the private addresses in order. Instances without a
// private address report their public one.
func (in *Instances) PrivateIPs() []string {
	out := make([]string, 0, len(in.Items))
	for _, i := range in.Items {
		if i.PrivateIP == "" {
			out = append(out, i.PublicIP)
			continue
		}
		out = append(out, i.PrivateIP)
	}
	return out
}

// CloudProviderError wraps a failure reported by a provider API.
type CloudProviderError struct {
	Provider string
	Op       string
	Err      error
}

func (e *CloudProviderError) Error() string {
	return fmt.Sprintf("%s: %s failed: %v", e.Provider, e.Op, e.Err)
}

func (e *CloudProviderError) Unwrap() error {
	return e.Err
}

// ProviderError wraps err as a *CloudProviderError, or returns nil.
func ProviderError(provider, op string, err error) error {
	if err == nil {
		return nil
	}
	return &CloudProviderError{Provider: provider, Op: op, Err: err}
}
