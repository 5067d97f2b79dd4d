// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - CollectionStore: Registry of collections, safe for concurrent use
//   - ImageLoader: Decodes, downscales and encodes page images
//   - Rasterizer: Renders PDF pages to PNG files
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - EmbeddingService: Multimodal embeddings. Without it, indexing and retrieval run in demo mode.
//   - GenerationService: Multimodal answers. Without it, answers are templated placeholders.
//   - CacheStore: Key-value store for query answers. Without it, every query runs the pipeline.
//   - MetricsRecorder: Metrics export. Without it, nothing is exported.
//   - PromptStore: Customisable prompt templates. Without it, built-in prompts are used.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
