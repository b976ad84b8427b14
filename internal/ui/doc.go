// Package ui implements an interactive terminal dashboard for YouTube links using bubbletea's Elm architecture.
//
// Views:
//  1. [LoginView] : sign in (or register) by email
//  2. [LinksView] : filter cards (all, processed, failed) above the link list
//  3. [DetailView] : one link with its status, video id and thumbnail URL
//  4. [FormView] : create or edit a link through a [LinkForm]
//  5. [ConfirmView] : confirm a delete
//
// The (view) [Model] implements the standard Init/Update/View pattern, receiving results of
// API calls via the Msg union type. All state lives in a [client.LinkStore]; the model only
// re-renders it. Outcomes surface as toasts that expire after a few seconds.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, y/n, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
