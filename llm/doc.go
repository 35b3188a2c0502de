// Package llm defines the provider-neutral chat types, the structured error
// model used across external boundaries, and the Provider interface the
// answer chain talks to.
package llm
