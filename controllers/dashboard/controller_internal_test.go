package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/apimachinery/pkg/types"
)

func TestInitialSync(t *testing.T) {
	name := types.NamespacedName{Namespace: "opendatahub", Name: "odh-dashboard-config"}
	ch := initialSync(name)

	require.Len(t, ch, 1)
	ev := <-ch
	assert.Equal(t, name.Namespace, ev.Object.GetNamespace())
	assert.Equal(t, name.Name, ev.Object.GetName())
	assert.Equal(t, ConfigGVK, ev.Object.GetObjectKind().GroupVersionKind())
	assert.Empty(t, ch, "only the first sync is queued")
}
