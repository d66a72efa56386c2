// Package prompt holds the system prompts and user-content builders for the
// three generation roles: the controller (decision), the visible-thinking
// stream and the reasoning (answer) stream. The controller prompt embeds the
// decision payload schema derived from core.Decision, so the instructed shape
// and the parsed shape cannot drift apart.
package prompt
