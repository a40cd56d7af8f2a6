// Package util contains misc utils
package util

import (
	"errors"
	"fmt"
	"strings"

	"k8s.io/apimachinery/pkg/types"
	"k8s.io/apimachinery/pkg/util/validation"
)

var (
	// ErrInvalidNamespacedNameFormat namespaced name format error
	ErrInvalidNamespacedNameFormat = errors.New("invalid format, expect name or namespace/name")
	// ErrNamespaceExpected indicates that namespace must be provided
	ErrNamespaceExpected = errors.New("missing namespace for resource")
	// ErrEmptyName indicates the resource must be non-empty
	ErrEmptyName = errors.New("resource name cannot be blank")
)

// NamespacedNameOption customizes namespaced name parsing
type NamespacedNameOption func(name *types.NamespacedName) error

// WithNamespaceExpected fails if the namespace is missing
func WithNamespaceExpected() NamespacedNameOption {
	return func(name *types.NamespacedName) error {
		if name.Namespace == "" {
			return ErrNamespaceExpected
		}
		return nil
	}
}

// WithDefaultNamespace will set namespace to provided default, if missing
func WithDefaultNamespace(namespace string) NamespacedNameOption {
	return func(name *types.NamespacedName) error {
		if name.Namespace == "" {
			name.Namespace = namespace
		}
		if name.Namespace == "" {
			return ErrNamespaceExpected
		}
		return nil
	}
}

// ParseNamespacedName parses "namespace/name" or "name" format.
// Without options the namespace is required.
func ParseNamespacedName(name string, options ...NamespacedNameOption) (*types.NamespacedName, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	if len(options) == 0 {
		options = []NamespacedNameOption{WithNamespaceExpected()}
	}

	var dst types.NamespacedName
	switch parts := strings.Split(name, "/"); len(parts) {
	case 1:
		dst.Name = parts[0]
	case 2:
		dst.Namespace, dst.Name = parts[0], parts[1]
	default:
		return nil, ErrInvalidNamespacedNameFormat
	}
	if dst.Name == "" {
		return nil, ErrInvalidNamespacedNameFormat
	}

	for _, opt := range options {
		if err := opt(&dst); err != nil {
			return nil, err
		}
	}

	if errs := validation.IsDNS1123Label(dst.Namespace); len(errs) > 0 {
		return nil, fmt.Errorf("namespace %q: %s", dst.Namespace, strings.Join(errs, "; "))
	}
	if errs := validation.IsDNS1123Subdomain(dst.Name); len(errs) > 0 {
		return nil, fmt.Errorf("name %q: %s", dst.Name, strings.Join(errs, "; "))
	}
	return &dst, nil
}
