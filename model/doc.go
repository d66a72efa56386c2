// Package model defines the provider-agnostic abstractions for the
// generation services that drive a dialogue run.
//
// Core goals:
//   - Split generation into the two calls the orchestrator makes: one
//     structured decision (Decide) and one streamed answer (Stream)
//   - Keep request shapes minimal and transport independent; prompt
//     assembly lives in the prompt package
//   - Pin down the fragment-feed contract shared by all providers
//   - Facilitate lightweight mocking for tests (MockService)
//
// Providers (e.g. OpenAI, Anthropic) implement the Service interface from
// this package so the orchestrator remains decoupled from vendor SDKs.
package model
