// Package rag implements the retrieval side of the engine: projecting
// catalog operations into embeddable documents, storing them in a vector
// store (Qdrant or in-memory), and resolving natural-language queries back
// to operations via similarity search.
package rag
