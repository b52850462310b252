package ports

import (
	"context"

	"IntelDigest/internal/domain"
)

// Source fetches one category's upstream data. Fetch never raises past its
// boundary: any network, parse, or schema error becomes a failed FetchResult
// with a human-readable reason. The caller bounds the call with the context.
type Source interface {
	Category() domain.Category
	Fetch(ctx context.Context) domain.FetchResult
}

// Provider is one summarization attempt in the fallback chain. A non-nil
// error advances the chain; it must never carry partial output.
type Provider interface {
	Name() string
	Attempt(ctx context.Context, text string) (string, error)
}

// Renderer turns a finalized run result into deliverable report content.
type Renderer interface {
	Render(res domain.RunResult, overview string) (html string, text string, err error)
}

// Mailer delivers a rendered digest to every configured recipient.
type Mailer interface {
	Send(ctx context.Context, subject, htmlBody, textBody string) error
}

// Notifier pushes a short digest to a secondary channel (webhook group chats).
type Notifier interface {
	PublishDigest(ctx context.Context, title, body string) error
}
