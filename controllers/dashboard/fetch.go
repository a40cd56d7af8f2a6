// Package dashboard implements controller for the dashboard configuration, keeping the plugin table current
package dashboard

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/apimachinery/pkg/types"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/opendatahub-io/dashboard-proxy/model"
)

// ConfigGVK is the dashboard configuration resource holding spec.plugins
var ConfigGVK = schema.GroupVersionKind{
	Group:   "opendatahub.io",
	Version: "v1alpha",
	Kind:    "OdhDashboardConfig",
}

func newConfigObject() *unstructured.Unstructured {
	obj := new(unstructured.Unstructured)
	obj.SetGroupVersionKind(ConfigGVK)
	return obj
}

// FetchPlugins reads the plugin list of the dashboard configuration.
// A missing configuration yields no plugins; invalid entries are skipped and reported in the error.
func FetchPlugins(ctx context.Context, c client.Reader, name types.NamespacedName) ([]model.Plugin, error) {
	obj := newConfigObject()
	if err := c.Get(ctx, name, obj); err != nil {
		if apierrors.IsNotFound(err) {
			log.FromContext(ctx).Info("dashboard config not found, no plugins are served", "name", name)
			return nil, nil
		}
		return nil, fmt.Errorf("get %s: %w", name, err)
	}
	return ParsePlugins(obj)
}

// ParsePlugins extracts spec.plugins
func ParsePlugins(obj *unstructured.Unstructured) ([]model.Plugin, error) {
	items, found, err := unstructured.NestedSlice(obj.Object, "spec", "plugins")
	if err != nil {
		return nil, fmt.Errorf("spec.plugins: %w", err)
	}
	if !found {
		return nil, nil
	}

	var errs *multierror.Error
	seen := make(map[string]bool, len(items))
	plugins := make([]model.Plugin, 0, len(items))
	for i, item := range items {
		src, ok := item.(map[string]interface{})
		if !ok {
			errs = multierror.Append(errs, fmt.Errorf("plugins[%d]: expected an object, got %T", i, item))
			continue
		}
		var p model.Plugin
		if err := runtime.DefaultUnstructuredConverter.FromUnstructured(src, &p); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("plugins[%d]: %w", i, err))
			continue
		}
		if err := validatePlugin(p); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("plugins[%d]: %w", i, err))
			continue
		}
		if seen[p.Alias] {
			errs = multierror.Append(errs, fmt.Errorf("plugins[%d]: duplicate alias %s", i, p.Alias))
			continue
		}
		seen[p.Alias] = true
		plugins = append(plugins, p)
	}
	return plugins, errs.ErrorOrNil()
}

func validatePlugin(p model.Plugin) error {
	if p.Alias == "" {
		return errors.New("alias is required")
	}
	if _, err := model.ParseUpstream(p.ServiceURL); err != nil {
		return fmt.Errorf("%s: serviceUrl %w", p.Alias, err)
	}
	return nil
}
