// Package embedder provides text embedding clients for vector representations.
//
// The Client interface is implemented by:
//   - OpenAIEmbedder: OpenAI and OpenAI-compatible embedding endpoints
//   - EmbedEverythingClient: local models through go-embedeverything
//   - HashEmbedder: a deterministic bag-of-words hash embedding that needs
//     no model and is the default
//
// CircuitBreakerClient wraps any Client and raises an alert when the
// wrapped provider keeps failing.
//
// # Usage
//
//	client := embedder.NewOpenAIEmbedder(apiKey, embedder.Config{
//	    Model:     "text-embedding-3-small",
//	    BatchSize: 100,
//	})
//	embeddings, err := client.Embed(ctx, []string{"hello world"})
package embedder
