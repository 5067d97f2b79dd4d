// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data under the user's ~/.pagelens directory.
//
// Adapters:
//   - ConfigStore: TOML-based configuration storage
//   - PromptStore: user-editable generation prompts with built-in defaults
package file
