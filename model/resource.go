package model

import (
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

// Condition is a single entry of a resource status conditions list
type Condition struct {
	Type   string
	Status string
}

// GatingResource is a snapshot of a custom resource that gates traffic to a service.
// It is fetched for every request and never cached.
type GatingResource struct {
	Name       string
	Namespace  string
	Conditions []Condition
	// Object holds the full resource for predicates that inspect the spec
	Object *unstructured.Unstructured
}

// NewGatingResource extracts the fields relevant for routing from an unstructured object
func NewGatingResource(obj *unstructured.Unstructured) *GatingResource {
	res := &GatingResource{
		Name:      obj.GetName(),
		Namespace: obj.GetNamespace(),
		Object:    obj,
	}

	conditions, _, _ := unstructured.NestedSlice(obj.Object, "status", "conditions")
	for _, c := range conditions {
		m, ok := c.(map[string]interface{})
		if !ok {
			continue
		}
		t, _, _ := unstructured.NestedString(m, "type")
		s, _, _ := unstructured.NestedString(m, "status")
		res.Conditions = append(res.Conditions, Condition{Type: t, Status: s})
	}
	return res
}

// Predicate evaluates whether a gating resource allows traffic to its service
type Predicate func(*GatingResource) bool

// ConditionTrue is satisfied when the resource has condType=True in its status
func ConditionTrue(condType string) Predicate {
	return func(res *GatingResource) bool {
		for _, c := range res.Conditions {
			if c.Type == condType && c.Status == "True" {
				return true
			}
		}
		return false
	}
}

// FieldEquals is satisfied when the string field at path equals value
func FieldEquals(value string, path ...string) Predicate {
	return func(res *GatingResource) bool {
		if res.Object == nil {
			return false
		}
		v, found, err := unstructured.NestedString(res.Object.Object, path...)
		return err == nil && found && v == value
	}
}

// AllOf is satisfied when every predicate is
func AllOf(preds ...Predicate) Predicate {
	return func(res *GatingResource) bool {
		for _, p := range preds {
			if !p(res) {
				return false
			}
		}
		return true
	}
}
