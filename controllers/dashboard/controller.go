package dashboard

import (
	"context"
	"fmt"

	"k8s.io/apimachinery/pkg/types"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/builder"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/event"
	"sigs.k8s.io/controller-runtime/pkg/handler"
	"sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/controller-runtime/pkg/predicate"
	"sigs.k8s.io/controller-runtime/pkg/source"

	"github.com/opendatahub-io/dashboard-proxy/model"
)

// Controller watches a single dashboard configuration and publishes its plugins
type Controller struct {
	// Reader is the cached manager client
	client.Reader
	// Name of the dashboard configuration, all others are ignored
	Name  types.NamespacedName
	Store *model.PluginStore
}

// NewController creates and registers a new controller for a given dashboard config object
func NewController(
	mgr ctrl.Manager,
	store *model.PluginStore,
	name types.NamespacedName,
	controllerName string,
) error {
	if name.Namespace == "" {
		return fmt.Errorf("dashboard config must be namespaced")
	}

	c := &Controller{
		Reader: mgr.GetClient(),
		Name:   name,
		Store:  store,
	}

	err := ctrl.NewControllerManagedBy(mgr).
		Named(controllerName).
		For(newConfigObject(), builder.WithPredicates(predicate.NewPredicateFuncs(func(obj client.Object) bool {
			return obj.GetNamespace() == name.Namespace && obj.GetName() == name.Name
		}))).
		// there are no events when the config does not exist yet
		WatchesRawSource(source.Channel(initialSync(name), &handler.EnqueueRequestForObject{})).
		Complete(c)
	if err != nil {
		return fmt.Errorf("build controller: %w", err)
	}
	return nil
}

// initialSync holds a single event for the dashboard config,
// so the first sync shares the work queue with the watch events
func initialSync(name types.NamespacedName) <-chan event.GenericEvent {
	obj := newConfigObject()
	obj.SetNamespace(name.Namespace)
	obj.SetName(name.Name)

	ch := make(chan event.GenericEvent, 1)
	ch <- event.GenericEvent{Object: obj}
	return ch
}

// Reconcile replaces the plugin table with the one of the dashboard config
func (c *Controller) Reconcile(ctx context.Context, req ctrl.Request) (ctrl.Result, error) {
	logger := log.FromContext(ctx).V(1)
	if req.NamespacedName != c.Name {
		logger.Info("ignoring", "got", req.NamespacedName, "want", c.Name)
		return ctrl.Result{}, nil
	}

	plugins, err := FetchPlugins(ctx, c.Reader, c.Name)
	if err != nil && plugins == nil {
		return ctrl.Result{}, fmt.Errorf("fetch plugins: %w", err)
	}
	if err != nil {
		log.FromContext(ctx).Error(err, "some plugins were skipped")
	}

	if c.Store.SetPlugins(plugins) {
		aliases := make([]string, 0, len(plugins))
		for _, p := range plugins {
			aliases = append(aliases, p.Alias)
		}
		log.FromContext(ctx).Info("plugins updated", "plugins", aliases)
	}
	return ctrl.Result{}, nil
}
