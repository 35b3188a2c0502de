// Package browse implements the question-answering chain: retrieval of
// candidate operations, prompt construction, the chat completion call, and
// the Redis answer cache in front of it.
package browse
