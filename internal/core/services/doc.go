// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// Provider calls made by the pipeline run on a bounded WorkerPool; the
// pipeline never talks to a provider, a cache backend or the filesystem
// except through a port, a pool or the Ingestor.
package services
