// Package google supplies authorized HTTP clients for the Google APIs used by
// aura's Gmail and Calendar tools.
//
// aura does not run an OAuth flow. Tokens are issued elsewhere and stored as
// oauth2.Token JSON documents, one per account, under
// $XDG_CONFIG_HOME/aura/tokens/<account>.json. The client ID and secret come
// from GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET and are only needed to refresh
// expired access tokens.
//
// The TokenProvider interface lets other token sources be plugged in.
package google
