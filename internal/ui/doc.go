// Package ui implements an interactive terminal browser for a user's favorite songs using
// bubbletea's Elm architecture.
//
// The browser has two views:
//  1. [ListView] : Browse favorites, newest first
//  2. [ConfirmView] : Confirm removal of the selected favorite
//
// The [Model] implements bubbletea's standard Init/Update/View pattern. Loading and removal
// run as commands against a [Source] and report back through messages.
//
// Keyboard navigation uses vim-style bindings (j/k, d, y/n, r, q) with contextual help displayed
// via charmbracelet/bubbles/help.
package ui
