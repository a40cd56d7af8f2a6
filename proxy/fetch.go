package proxy

import (
	"context"
	"errors"
	"fmt"
	"strings"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/rest"
	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/opendatahub-io/dashboard-proxy/model"
)

// DynamicFetcher reads gating resources straight from the Kubernetes API.
// There is no cache in front of it: a stale snapshot could route to an unready backend.
type DynamicFetcher struct {
	Client dynamic.Interface
}

var _ = Fetcher(new(DynamicFetcher))

// NewFetcher creates a fetcher sharing the process wide rest config
func NewFetcher(cfg *rest.Config) (*DynamicFetcher, error) {
	c, err := dynamic.NewForConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("dynamic client: %w", err)
	}
	return &DynamicFetcher{Client: c}, nil
}

// Fetch performs a single GET for the named resource.
// Any failure is reported as a not found error carrying the kind, name and cause.
func (f *DynamicFetcher) Fetch(ctx context.Context, m model.ResourceModel, name types.NamespacedName) (*model.GatingResource, error) {
	obj, err := f.Client.Resource(m.GroupVersionResource()).
		Namespace(name.Namespace).
		Get(ctx, name.Name, metav1.GetOptions{})
	if err != nil {
		log.FromContext(ctx).V(1).Info("fetch gating resource", "kind", m.Kind, "name", name, "err", err)
		return nil, NotFoundError(m.Kind, name.Name, err)
	}
	if strings.EqualFold(obj.GetKind(), "Status") {
		return nil, NotFoundError(m.Kind, name.Name, errors.New("received status instead of resource"))
	}
	return model.NewGatingResource(obj), nil
}
