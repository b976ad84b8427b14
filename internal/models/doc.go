// Package models defines the domain entities of the YouTube link service.
//
//   - [User] : an account identified by a unique email address
//   - [Link] : a saved YouTube video owned by one user, carrying a [LinkStatus]
//
// A link starts as [StatusPending], becomes [StatusSent] when it is handed to the
// n8n webhook and ends as [StatusProcessed] or [StatusFailed]. [OutcomeStatus] is the
// single place where a webhook response is turned into a status. Nothing stops a
// caller from moving a link back to an earlier status.
//
// [ExtractVideoID] and [ThumbnailURL] derive display data from a link URL.
package models
