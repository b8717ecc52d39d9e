// Package pstypes defines core architectural interfaces for psbrowse.
package pstypes

// Service defines the interface for psbrowse services that provide specific functionality.
// Services are registered at startup and initialized before any command runs.
type Service interface {
	Name() string
	Initialize() error
}

// ServiceRegistry manages the registration and retrieval of services.
type ServiceRegistry interface {
	GetService(name string) (Service, error)
	RegisterService(service Service) error
}
