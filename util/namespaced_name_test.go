package util_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/apimachinery/pkg/types"

	"github.com/opendatahub-io/dashboard-proxy/util"
)

func TestParseNamespacedName(t *testing.T) {
	for _, tc := range []struct {
		in   string
		opts []util.NamespacedNameOption
		want *types.NamespacedName
	}{
		{"odh-dashboard-config", nil, nil},
		{"", nil, nil},
		{"odh-dashboard-config", []util.NamespacedNameOption{util.WithDefaultNamespace("")}, nil},
		{
			"odh-dashboard-config",
			[]util.NamespacedNameOption{util.WithDefaultNamespace("opendatahub")},
			&types.NamespacedName{Namespace: "opendatahub", Name: "odh-dashboard-config"},
		},
		{
			"redhat-ods-applications/odh-dashboard-config",
			[]util.NamespacedNameOption{util.WithDefaultNamespace("opendatahub")},
			&types.NamespacedName{Namespace: "redhat-ods-applications", Name: "odh-dashboard-config"},
		},
		{
			"proj1/dspa",
			nil,
			&types.NamespacedName{Namespace: "proj1", Name: "dspa"},
		},
		{"proj1/", nil, nil},
		{"wrong/format/here", nil, nil},
		{"Upper/dspa", nil, nil},
		{"proj1/not_a_name", nil, nil},
	} {
		t.Run(tc.in, func(t *testing.T) {
			got, err := util.ParseNamespacedName(tc.in, tc.opts...)
			if tc.want == nil {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}
