// Package redisvec is a vector store on top of Redis with the search module.
//
// A Store owns one index: a vector field, an optional set of typed metadata fields and a
// content field, all stored as hashes under "doc:<index>". Texts are embedded with a
// pluggable Embedder, written in pipelined batches and searched with KNN or range queries.
//
// Quick start:
//
//	store, keys, err := redisvec.FromTexts(ctx,
//		[]string{"redis is fast", "vectors are lists of floats"},
//		[]map[string]any{{"source": "wiki"}, {"source": "blog"}},
//		redisvec.WithRedisURL("redis://localhost:6379"),
//		redisvec.WithIndexName("notes"),
//		redisvec.WithEmbedder(emb),
//		redisvec.WithMetadata(redisvec.TagField("source")),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer store.Close()
//
//	docs, err := store.SimilaritySearch(ctx, "fast databases",
//		redisvec.WithK(2),
//		redisvec.WithFilter(redisvec.Tag("source").Eq("wiki")),
//	)
//
// Errors wrap the sentinels re-exported by this package; test them with errors.Is.
package redisvec
