package email

import (
	"fmt"

	"github.com/osteele/liquid"
)

const confirmationHTML = `<html>
<body>
<p>Welcome {{ name }},</p>
<p>Thanks for subscribing to our newsletter!</p>
<p>Click <a href="{{ confirmation_link }}">here</a> to confirm your subscription.</p>
</body>
</html>`

const confirmationText = `Welcome {{ name }},

Thanks for subscribing to our newsletter!
Visit {{ confirmation_link }} to confirm your subscription.`

// TemplateEngine renders the confirmation email bodies. Templates are
// parsed once at construction.
type TemplateEngine struct {
	html *liquid.Template
	text *liquid.Template
}

// NewTemplateEngine parses the built-in confirmation templates.
func NewTemplateEngine() (*TemplateEngine, error) {
	engine := liquid.NewEngine()

	html, err := engine.ParseString(confirmationHTML)
	if err != nil {
		return nil, fmt.Errorf("parsing html template: %w", err)
	}
	text, err := engine.ParseString(confirmationText)
	if err != nil {
		return nil, fmt.Errorf("parsing text template: %w", err)
	}
	return &TemplateEngine{html: html, text: text}, nil
}

// RenderConfirmation produces the HTML and plain-text bodies for a
// confirmation email pointing at the given link.
func (e *TemplateEngine) RenderConfirmation(name, confirmationLink string) (htmlBody, textBody string, err error) {
	bindings := liquid.Bindings{
		"name":              name,
		"confirmation_link": confirmationLink,
	}

	htmlBody, err = e.html.RenderString(bindings)
	if err != nil {
		return "", "", fmt.Errorf("rendering html body: %w", err)
	}
	textBody, err = e.text.RenderString(bindings)
	if err != nil {
		return "", "", fmt.Errorf("rendering text body: %w", err)
	}
	return htmlBody, textBody, nil
}
