// Package client is the terminal side of ytlinks.
//
// [APIClient] wraps every HTTP route. [LinkStore] holds one user's links in memory and keeps
// them in step with the server, including the client driven webhook sends
// ([LinkStore.SendWebhook], [LinkStore.SendWebhookForChat]). [Session] persists the
// signed in user at ~/.ytlinks/session.json.
package client
