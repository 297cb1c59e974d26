package templates

import (
	"bytes"
	"fmt"
	htmpl "html/template"
	texttpl "text/template"
)

// Inline message definitions for the notification emails the marketplace
// sends. Each entry renders a subject line, a plain-text body, and an HTML
// body from the same job data.
type message struct {
	subject string
	text    string
	html    string
}

var messages = map[string]message{
	"verify_email": {
		subject: "Verify your email address",
		text: `Welcome to the marketplace!

Please confirm your email address by opening the link below:

{{.link}}

The link expires in 24 hours. If you did not create an account, you can ignore this message.
`,
		html: `<p>Welcome to the marketplace!</p>
<p>Please confirm your email address by clicking the button below.</p>
<p><a href="{{.link}}">Verify email</a></p>
<p>The link expires in 24 hours. If you did not create an account, you can ignore this message.</p>
`,
	},
	"password_reset": {
		subject: "Reset your password",
		text: `We received a request to reset your password.

Open the link below to choose a new one:

{{.link}}

The link expires in 1 hour. If you did not request a reset, no action is needed.
`,
		html: `<p>We received a request to reset your password.</p>
<p><a href="{{.link}}">Reset password</a></p>
<p>The link expires in 1 hour. If you did not request a reset, no action is needed.</p>
`,
	},
	"welcome": {
		subject: "Welcome aboard!",
		text: `Hi {{.name}},

Your {{.role}} account is now fully set up. You can start trading right away.

Welcome to the marketplace!
`,
		html: `<p>Hi {{.name}},</p>
<p>Your {{.role}} account is now fully set up. You can start trading right away.</p>
<p>Welcome to the marketplace!</p>
`,
	},
}

// Render produces the subject, text body, and HTML body for the named
// template. Unknown template names are an error so bad jobs are rejected
// instead of sending empty mail.
func Render(name string, data map[string]any) (subject, text, html string, err error) {
	m, ok := messages[name]
	if !ok {
		return "", "", "", fmt.Errorf("unknown email template %q", name)
	}

	text, err = renderText(name+".text", m.text, data)
	if err != nil {
		return "", "", "", err
	}
	html, err = renderHTML(name+".html", m.html, data)
	if err != nil {
		return "", "", "", err
	}
	return m.subject, text, html, nil
}

func renderText(name, src string, data map[string]any) (string, error) {
	tpl, err := texttpl.New(name).Parse(src)
	if err != nil {
		return "", fmt.Errorf("parse %q: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("exec %q: %w", name, err)
	}
	return buf.String(), nil
}

func renderHTML(name, src string, data map[string]any) (string, error) {
	tpl, err := htmpl.New(name).Parse(src)
	if err != nil {
		return "", fmt.Errorf("parse %q: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("exec %q: %w", name, err)
	}
	return buf.String(), nil
}
