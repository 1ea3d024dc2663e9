// Package app contains the core application logic. It defines the main App
// struct, the merge of flag/file/default configuration, and the primary
// execution lifecycle, decoupled from any specific entrypoint like a CLI.
package app
