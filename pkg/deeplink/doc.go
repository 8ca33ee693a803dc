// Package deeplink unwraps click-tracked links.
//
// Links in Parcelvoy messages point at the Parcelvoy instance, with the real
// destination URL-encoded in the r query parameter and a path ending in /c or
// containing /c/. Resolve returns the destination at once and reports the
// click by requesting the wrapper URL in the background; the outcome of that
// request never affects the caller.
package deeplink
