// Package config resolves the explicit runtime configuration for the
// dialogue system. Settings are a plain value constructed once and handed to
// the services that need them; there is no process-global state.
//
// Resolution order, later sources overriding earlier ones:
//  1. Built-in defaults
//  2. An optional JSON config file (config.json)
//  3. An optional api_key.txt file (API key only)
//  4. An optional .env file (loaded into the process environment)
//  5. Process environment variables (SOCIALROBOT_* / OPENAI_API_KEY /
//     ANTHROPIC_API_KEY)
package config
