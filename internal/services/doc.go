// Package services provides centralized service registry for tutord.
//
// Registry pattern for accessing all core services (retriever,
// performance, reward, trajectories, engine, vectorstore). Use
// NewRegistry() to create a registry with service instances, then
// accessor methods to retrieve individual services.
package services
