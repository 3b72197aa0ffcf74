package campaign

import (
	"html"
	"strings"
)

const (
	// ImageContentID links the inline picture to the HTML body.
	ImageContentID = "daily-image"

	imageNote       = "P.S. I've attached a little picture to brighten your day."
	unsubscribeNote = "P.S. If you'd like to unsubscribe from these emails, please reply with 'UNSUBSCRIBE'."
)

// Subject of the email sent to name.
func Subject(name string) string {
	return "Your Daily Encouragement, " + name
}

// Body renders the plain-text email around the generated message.
func Body(name, message, signature string, withImage bool) string {
	var b strings.Builder
	b.WriteString("Dear " + name + ",\n\n")
	b.WriteString(message + "\n\n")
	b.WriteString("Wishing you a wonderful day ahead,\n")
	b.WriteString(signature + "\n")
	if withImage {
		b.WriteString(imageNote + "\n")
	}
	b.WriteString("\n" + unsubscribeNote + "\n")
	return b.String()
}

// HTML renders body as escaped HTML with line breaks kept, followed by the
// inline image when there is one.
func HTML(body string, withImage bool) string {
	out := strings.ReplaceAll(html.EscapeString(body), "\n", "<br>")
	if withImage {
		out += `<br><img src="cid:` + ImageContentID + `" alt="A little picture for your day">`
	}
	return "<html><body>" + out + "</body></html>"
}
