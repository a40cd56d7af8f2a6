package proxy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/client-go/dynamic/fake"

	"github.com/opendatahub-io/dashboard-proxy/model"
)

func newDSPA(name, namespace string, conditions ...map[string]interface{}) *unstructured.Unstructured {
	conds := make([]interface{}, 0, len(conditions))
	for _, c := range conditions {
		conds = append(conds, c)
	}
	return &unstructured.Unstructured{Object: map[string]interface{}{
		"apiVersion": dspaModel.Group + "/" + dspaModel.Version,
		"kind":       dspaModel.Kind,
		"metadata": map[string]interface{}{
			"name":      name,
			"namespace": namespace,
		},
		"spec": map[string]interface{}{
			"dspVersion": "v2",
		},
		"status": map[string]interface{}{
			"conditions": conds,
		},
	}}
}

func newFakeFetcher(objects ...runtime.Object) *DynamicFetcher {
	client := fake.NewSimpleDynamicClientWithCustomListKinds(runtime.NewScheme(),
		map[schema.GroupVersionResource]string{
			dspaModel.GroupVersionResource(): dspaModel.Kind + "List",
		}, objects...)
	return &DynamicFetcher{Client: client}
}

func TestFetch(t *testing.T) {
	f := newFakeFetcher(newDSPA("dspa", "proj1",
		map[string]interface{}{"type": "APIServerReady", "status": "True"},
		map[string]interface{}{"type": "Ready", "status": "False"},
	))

	res, err := f.Fetch(context.Background(), dspaModel, types.NamespacedName{Namespace: "proj1", Name: "dspa"})
	require.NoError(t, err)
	assert.Equal(t, "dspa", res.Name)
	assert.Equal(t, "proj1", res.Namespace)
	assert.Equal(t, []model.Condition{
		{Type: "APIServerReady", Status: "True"},
		{Type: "Ready", Status: "False"},
	}, res.Conditions)
	assert.True(t, model.FieldEquals("v2", "spec", "dspVersion")(res))
}

func TestFetchNotFound(t *testing.T) {
	f := newFakeFetcher(newDSPA("dspa", "proj1"))

	for _, name := range []types.NamespacedName{
		{Namespace: "proj1", Name: "other"},
		{Namespace: "proj2", Name: "dspa"},
	} {
		_, err := f.Fetch(context.Background(), dspaModel, name)
		require.Error(t, err)

		var e *Error
		require.ErrorAs(t, err, &e)
		assert.Equal(t, 404, e.StatusCode)
		assert.Equal(t, outcomeNotFound, e.Outcome)
		assert.Contains(t, e.Message, "DataSciencePipelinesApplication '"+name.Name+"' not found. 404: ")
	}
}
