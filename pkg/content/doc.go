// Package content decodes in-app notification payloads.
//
// A notification carries a declared content_type ("banner", "alert" or
// "html", matched case-insensitively) and a content object. The declared type
// selects the variant; the content object is then checked against that
// variant's shape: an HTML notification must carry "html", an alert must not,
// and a banner carries neither "html" nor "image". A mismatch is a decode
// failure rather than a silent re-interpretation.
//
// Before decoding, a context object nested under custom is moved out to a
// sibling context field, and nested objects or arrays inside custom and
// context are flattened to their JSON text. Payloads with context nested in
// custom and payloads with a top-level context both decode.
//
//	n, err := content.DecodeNotification(raw)
//	if err != nil {
//		// errors.Is(err, content.ErrDecode) is always true here
//	}
//	switch c := n.Content.(type) {
//	case content.HTML:
//		render(c.HTML)
//	case content.Alert:
//		showImage(c.Image)
//	}
package content
