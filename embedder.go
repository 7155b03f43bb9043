package redisvec

import "github.com/kailas-cloud/redisvec/internal/domain"

// Embedder converts text into a vector.
type Embedder = domain.Embedder

// BatchEmbedder embeds many texts in one call. Embedders that also implement it are
// batched; others fall back to one Embed call per text.
type BatchEmbedder = domain.BatchEmbedder

// EmbeddingResult is the output of a single Embed call.
type EmbeddingResult = domain.EmbeddingResult

// BatchEmbeddingResult is the output of a BatchEmbed call.
type BatchEmbeddingResult = domain.BatchEmbeddingResult

// EmbedFunc adapts a plain function to Embedder.
type EmbedFunc = domain.EmbedFunc
