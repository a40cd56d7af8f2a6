package mock_test

//go:generate go run github.com/golang/mock/mockgen -package mock_test -destination reader.go sigs.k8s.io/controller-runtime/pkg/client Reader
