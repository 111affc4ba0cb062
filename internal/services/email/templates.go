// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package email

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/a-h/templ"

	"codeberg.org/oliverandrich/langeng/internal/i18n"
	"codeberg.org/oliverandrich/langeng/internal/models"
)

// VerifyPath is where emailed verification links point to.
const VerifyPath = "/api/v1/auth/verify"

// Composer renders verification emails.
type Composer struct {
	baseURL string
	ttl     time.Duration
}

// NewComposer creates a composer building links against baseURL.
func NewComposer(baseURL string, ttl time.Duration) *Composer {
	return &Composer{baseURL: strings.TrimSuffix(baseURL, "/"), ttl: ttl}
}

// LinkURL builds the anonymous verification link. u carries the session
// token of the account, t the link secret and s the numeric type.
func (c *Composer) LinkURL(sessionToken, secret string, typ models.VerificationType) string {
	q := url.Values{}
	q.Set("u", sessionToken)
	q.Set("t", secret)
	q.Set("s", strconv.Itoa(int(typ)))
	return c.baseURL + VerifyPath + "?" + q.Encode()
}

// LinkMessage renders an email carrying a verification link.
func (c *Composer) LinkMessage(ctx context.Context, to, name string, typ models.VerificationType, link string) (Message, error) {
	subject := subjectFor(ctx, typ)
	data := map[string]any{"Name": name, "Minutes": c.minutes()}
	intro := i18n.TData(ctx, "email_link_intro", data)

	html, err := render(ctx, layout(subject, i18n.TData(ctx, "email_greeting", data), intro,
		linkButton(link, i18n.T(ctx, "email_link_action")), i18n.T(ctx, "email_ignore")))
	if err != nil {
		return Message{}, err
	}

	text := fmt.Sprintf("%s\n\n%s\n\n%s\n\n%s\n",
		i18n.TData(ctx, "email_greeting", data), intro, link, i18n.T(ctx, "email_ignore"))
	return Message{To: to, Subject: subject, HTML: html, Text: text}, nil
}

// CodeMessage renders an email carrying a numeric verification code.
func (c *Composer) CodeMessage(ctx context.Context, to, name string, typ models.VerificationType, code string) (Message, error) {
	subject := subjectFor(ctx, typ)
	data := map[string]any{"Name": name, "Minutes": c.minutes()}
	intro := i18n.TData(ctx, "email_code_intro", data)

	html, err := render(ctx, layout(subject, i18n.TData(ctx, "email_greeting", data), intro,
		codeBlock(code), i18n.T(ctx, "email_ignore")))
	if err != nil {
		return Message{}, err
	}

	text := fmt.Sprintf("%s\n\n%s\n\n%s\n\n%s\n",
		i18n.TData(ctx, "email_greeting", data), intro, code, i18n.T(ctx, "email_ignore"))
	return Message{To: to, Subject: subject, HTML: html, Text: text}, nil
}

func (c *Composer) minutes() int {
	return int(c.ttl / time.Minute)
}

func subjectFor(ctx context.Context, typ models.VerificationType) string {
	switch typ {
	case models.VerificationRegister:
		return i18n.T(ctx, "email_register_subject")
	case models.VerificationAccountDeactivation:
		return i18n.T(ctx, "email_deactivation_subject")
	case models.VerificationAccountDeletion:
		return i18n.T(ctx, "email_deletion_subject")
	default:
		return i18n.T(ctx, "email_generic_subject")
	}
}

func render(ctx context.Context, c templ.Component) (string, error) {
	var buf bytes.Buffer
	if err := c.Render(ctx, &buf); err != nil {
		return "", fmt.Errorf("rendering email: %w", err)
	}
	return buf.String(), nil
}

func layout(title, greeting, intro string, action templ.Component, footer string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<!DOCTYPE html><html><head><meta charset="utf-8"><title>`+
			templ.EscapeString(title)+`</title></head><body style="font-family:sans-serif">`+
			`<p>`+templ.EscapeString(greeting)+`</p><p>`+templ.EscapeString(intro)+`</p>`); err != nil {
			return err
		}
		if err := action.Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `<p style="color:#666">`+templ.EscapeString(footer)+`</p></body></html>`)
		return err
	})
}

func linkButton(href, label string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<p><a href="`+templ.EscapeString(href)+`">`+templ.EscapeString(label)+`</a></p>`)
		return err
	})
}

func codeBlock(code string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<p style="font-size:24px;letter-spacing:4px"><strong>`+
			templ.EscapeString(code)+`</strong></p>`)
		return err
	})
}
