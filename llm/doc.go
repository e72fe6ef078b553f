// Package llm provides the resilience layer shared by every outbound call
// to the model provider.
//
// This package defines common types and utilities that keep the rest of the
// codebase decoupled from the provider SDK's error surface.
//
// # Core Concepts
//
//  1. Errors: the Error type carries a provider-neutral classification
//     (network, timeout, request, provider, unknown), the HTTP status to
//     surface to API callers, and the original provider error for unwrapping.
//
//  2. Retry: RetryPolicy describes an exponential backoff schedule
//     (delay(n) = min(BaseDelay * 2^n, MaxDelay), capped at MaxAttempts).
//     Do executes a call thunk under a policy: transient classifications are
//     retried, everything else fails fast, and every invocation is logged
//     with its duration and outcome before the caller sees the result.
//
//  3. Streams: TextStream is the minimal iterator for incremental text
//     produced by streaming provider calls.
//
// Do is the single chokepoint for resilience and error-shape consistency:
// every provider operation in llm/openai runs through it, so callers only
// ever observe *Error values on failure.
package llm
