// Package push recognizes Parcelvoy push payloads.
//
// Parcelvoy marks its pushes with a "parcelvoy" data key. A push that also
// carries "in_app_check_message" is a silent nudge telling the app to look
// for new in-app notifications; the host should hand it to the SDK and not
// display it. Values may be booleans rendered as strings in any of the forms
// strconv.ParseBool accepts.
//
// Helpers work on the plain data map every push library exposes, and on
// firebase messaging messages directly.
package push
