package hcloud

import (
	"context"
	"fmt"
	"reflect"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"

	"github.com/imamik/deployctl/internal/util/retry"
)

// CreateResult is a created resource plus the actions to await.
type CreateResult[T any] struct {
	Resource T
	Action   *hcloud.Action
	Actions  []*hcloud.Action
}

// DeleteOperation deletes a resource by name. It succeeds when the
// resource does not exist and retries while the resource is locked.
type DeleteOperation[T any] struct {
	Name         string
	ResourceType string

	Get    func(ctx context.Context, name string) (T, *hcloud.Response, error)
	Delete func(ctx context.Context, resource T) (*hcloud.Response, error)
}

// Execute runs the delete with the agent's retry settings.
func (op *DeleteOperation[T]) Execute(ctx context.Context, a *Agent) error {
	return a.retry(ctx, func() error {
		resource, _, err := op.Get(ctx, op.Name)
		if err != nil {
			return retry.Fatal(fmt.Errorf("failed to get %s %s: %w", op.ResourceType, op.Name, err))
		}
		if reflect.ValueOf(resource).IsNil() {
			return nil
		}

		a.log.Info("deleting "+op.ResourceType, "name", op.Name)
		if _, err := op.Delete(ctx, resource); err != nil {
			if IsNotFound(err) {
				return nil
			}
			return classify(fmt.Errorf("failed to delete %s %s: %w", op.ResourceType, op.Name, err))
		}
		return nil
	})
}

// EnsureOperation gets a resource by name, validating or updating it when
// it exists and creating it otherwise.
type EnsureOperation[T any, CreateOpts any, UpdateOpts any] struct {
	Name         string
	ResourceType string

	Get    func(ctx context.Context, name string) (T, *hcloud.Response, error)
	Create func(ctx context.Context, opts CreateOpts) (*CreateResult[T], *hcloud.Response, error)

	// Update and UpdateOptsMapper are optional and used together.
	Update           func(ctx context.Context, resource T, opts UpdateOpts) ([]*hcloud.Action, *hcloud.Response, error)
	UpdateOptsMapper func(resource T) UpdateOpts

	// Validate rejects an existing resource that does not match (optional).
	Validate func(resource T) error

	CreateOptsMapper func() CreateOpts
}

// Execute returns the resource and whether it was created.
func (op *EnsureOperation[T, CreateOpts, UpdateOpts]) Execute(ctx context.Context, a *Agent) (T, bool, error) {
	var zero T

	resource, _, err := op.Get(ctx, op.Name)
	if err != nil {
		return zero, false, fmt.Errorf("failed to get %s %s: %w", op.ResourceType, op.Name, err)
	}

	if !reflect.ValueOf(resource).IsNil() {
		if op.Validate != nil {
			if err := op.Validate(resource); err != nil {
				return zero, false, err
			}
		}
		if op.Update != nil && op.UpdateOptsMapper != nil {
			actions, _, err := op.Update(ctx, resource, op.UpdateOptsMapper(resource))
			if err != nil {
				return zero, false, fmt.Errorf("failed to update %s %s: %w", op.ResourceType, op.Name, err)
			}
			if err := waitForActions(ctx, a.client, actions...); err != nil {
				return zero, false, fmt.Errorf("failed to wait for %s update: %w", op.ResourceType, err)
			}
		}
		a.log.V(1).Info(op.ResourceType+" already exists", "name", op.Name)
		return resource, false, nil
	}

	var result *CreateResult[T]
	err = a.retry(ctx, func() error {
		var createErr error
		result, _, createErr = op.Create(ctx, op.CreateOptsMapper())
		return classify(createErr)
	})
	if err != nil {
		return zero, false, fmt.Errorf("failed to create %s %s: %w", op.ResourceType, op.Name, err)
	}
	if err := waitForActionResult(ctx, a.client, result); err != nil {
		return zero, false, fmt.Errorf("failed to wait for %s creation: %w", op.ResourceType, err)
	}

	a.log.Info("created "+op.ResourceType, "name", op.Name)
	return result.Resource, true, nil
}

// waitForActions waits for every non-nil action.
func waitForActions(ctx context.Context, client *hcloud.Client, actions ...*hcloud.Action) error {
	pending := make([]*hcloud.Action, 0, len(actions))
	for _, action := range actions {
		if action != nil {
			pending = append(pending, action)
		}
	}
	if len(pending) == 0 {
		return nil
	}
	return client.Action.WaitFor(ctx, pending...)
}

func waitForActionResult[T any](ctx context.Context, client *hcloud.Client, result *CreateResult[T]) error {
	actions := result.Actions
	if result.Action != nil {
		actions = append([]*hcloud.Action{result.Action}, actions...)
	}
	return waitForActions(ctx, client, actions...)
}

// simpleCreate adapts create calls that return the resource directly.
func simpleCreate[T any, Opts any](
	createFn func(context.Context, Opts) (T, *hcloud.Response, error),
) func(context.Context, Opts) (*CreateResult[T], *hcloud.Response, error) {
	return func(ctx context.Context, opts Opts) (*CreateResult[T], *hcloud.Response, error) {
		resource, resp, err := createFn(ctx, opts)
		if err != nil {
			return nil, resp, err
		}
		return &CreateResult[T]{Resource: resource}, resp, nil
	}
}
