package robotorder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"robotorder/lib/browser"
	"time"

	"go.opentelemetry.io/otel/codes"
)

var ErrLoginFailed = errors.New("failed to log in to the storefront")

// Session is the single browser tab every stage of a run works on, together
// with the settings of the run.
type Session struct {
	Page     browser.Page
	Renderer browser.PDFRenderer
	Config   Config
	// defaults to time.Now
	Clock func() time.Time
}

func (s Session) now() time.Time {
	if s.Clock == nil {
		return time.Now()
	}
	return s.Clock()
}

// Bootstrap logs in and leaves the page on the order form.
func Bootstrap(ctx context.Context, s Session) error {
	ctx, span := tracer.Start(ctx, "Bootstrap")
	defer span.End()

	cfg := s.Config
	sel := cfg.Selectors

	slog.InfoContext(ctx, "logging in to order website", "url", cfg.StoreUrl, "username", cfg.Username)
	err := s.Page.Navigate(ctx, cfg.StoreUrl)
	if err != nil {
		span.SetStatus(codes.Error, "failed to open storefront")
		return fmt.Errorf("open storefront: %w", err)
	}
	err = s.Page.Fill(ctx, sel.Username, cfg.Username)
	if err != nil {
		span.SetStatus(codes.Error, "failed to fill username")
		return fmt.Errorf("fill username: %w", err)
	}
	err = s.Page.Fill(ctx, sel.Password, cfg.Password)
	if err != nil {
		span.SetStatus(codes.Error, "failed to fill password")
		return fmt.Errorf("fill password: %w", err)
	}
	err = s.Page.Click(ctx, sel.LoginButton)
	if err != nil {
		span.SetStatus(codes.Error, "failed to click login")
		return fmt.Errorf("click login: %w", err)
	}

	// a rejected login leaves the form in place, the logged in marker
	// never shows up
	err = s.Page.WaitVisible(ctx, sel.LoggedIn)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, ErrLoginFailed.Error())
		return fmt.Errorf("%w: %w", ErrLoginFailed, err)
	}

	slog.InfoContext(ctx, "opening order page", "url", cfg.OrderPageUrl)
	err = s.Page.Navigate(ctx, cfg.OrderPageUrl)
	if err != nil {
		span.SetStatus(codes.Error, "failed to open order page")
		return fmt.Errorf("open order page: %w", err)
	}
	return nil
}
