package robotorder

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"robotorder/lib/orders"
	"robotorder/lib/receipt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Result is what processing one order left behind.
type Result struct {
	Order       orders.Order
	PreviewPath string
	ReceiptPath string
	// the storefront's own order code, empty if the receipt had none
	ReceiptCode string
	Attempts    int
}

// DismissInterstitial closes the modal the order page opens with. The modal
// is expected, a page without it fails.
func DismissInterstitial(ctx context.Context, s Session) error {
	slog.InfoContext(ctx, "closing pop up")
	err := s.Page.Click(ctx, s.Config.Selectors.ModalOK)
	if err != nil {
		return fmt.Errorf("close pop up: %w", err)
	}
	return nil
}

// FillForm enters the order into the form as is, the storefront validates
// the values.
func FillForm(ctx context.Context, s Session, order orders.Order) error {
	slog.InfoContext(ctx, "filling in order data")
	sel := s.Config.Selectors

	err := s.Page.SelectOption(ctx, sel.Head, order.Head)
	if err != nil {
		return fmt.Errorf("select head %q: %w", order.Head, err)
	}
	err = s.Page.Click(ctx, sel.BodyOption(order.Body))
	if err != nil {
		return fmt.Errorf("select body %q: %w", order.Body, err)
	}
	err = s.Page.Fill(ctx, sel.Legs, order.Legs)
	if err != nil {
		return fmt.Errorf("fill legs: %w", err)
	}
	err = s.Page.Fill(ctx, sel.Address, order.Address)
	if err != nil {
		return fmt.Errorf("fill address: %w", err)
	}
	return nil
}

// CapturePreview shows the robot preview and screenshots it. Only works
// before the order is submitted.
func CapturePreview(ctx context.Context, s Session, orderNumber string) (string, error) {
	slog.InfoContext(ctx, "getting robot preview image")
	sel := s.Config.Selectors

	err := s.Page.Click(ctx, sel.Preview)
	if err != nil {
		return "", fmt.Errorf("show preview: %w", err)
	}
	path := s.Config.PreviewPath(orderNumber)
	err = s.Page.Screenshot(ctx, sel.PreviewImage, path)
	if err != nil {
		return "", fmt.Errorf("screenshot preview: %w", err)
	}
	return path, nil
}

// RenderReceipt prints the receipt shown after a successful submission to a
// pdf and resets the form for the next order.
func RenderReceipt(ctx context.Context, s Session, orderNumber string) (path string, code string, err error) {
	slog.InfoContext(ctx, "saving order receipt into pdf")
	sel := s.Config.Selectors

	inner, err := s.Page.InnerHTML(ctx, sel.Receipt)
	if err != nil {
		return "", "", fmt.Errorf("read receipt: %w", err)
	}
	path = s.Config.ReceiptPath(orderNumber)
	err = s.Renderer.RenderPDF(ctx, receipt.Document(inner), path)
	if err != nil {
		return "", "", fmt.Errorf("render receipt: %w", err)
	}
	slog.InfoContext(ctx, "receipt saved", "path", path)

	err = s.Page.Click(ctx, sel.OrderAnother)
	if err != nil {
		return "", "", fmt.Errorf("order another: %w", err)
	}
	return path, receipt.Code(inner), nil
}

// EmbedPreview appends the preview image to the receipt pdf.
func EmbedPreview(ctx context.Context, receiptPath, previewPath string) error {
	slog.InfoContext(ctx, "embedding robot preview into pdf", "receipt", receiptPath, "preview", previewPath)
	return receipt.Embed(receiptPath, previewPath)
}

// ProcessOrder runs the whole pipeline for one order. The steps only work
// in this order: the preview control disappears once the order is
// submitted, the receipt only exists after it.
func ProcessOrder(ctx context.Context, s Session, order orders.Order) (Result, error) {
	ctx, span := tracer.Start(ctx, "ProcessOrder", trace.WithAttributes(
		attribute.String("order_number", order.Number),
	))
	defer span.End()

	result, err := processOrder(ctx, s, order)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to process order")
		return result, err
	}
	ordersProcessed.Add(ctx, 1)
	return result, nil
}

func processOrder(ctx context.Context, s Session, order orders.Order) (Result, error) {
	result := Result{Order: order}

	err := DismissInterstitial(ctx, s)
	if err != nil {
		return result, err
	}
	err = FillForm(ctx, s, order)
	if err != nil {
		return result, err
	}
	result.PreviewPath, err = CapturePreview(ctx, s, order.Number)
	if err != nil {
		return result, err
	}

	submission := NewSubmission(s.Config.MaxAttempts)
	err = submission.Run(ctx, s.Page, s.Config.Selectors)
	result.Attempts = submission.Attempts
	if err != nil {
		return result, err
	}

	result.ReceiptPath, result.ReceiptCode, err = RenderReceipt(ctx, s, order.Number)
	if err != nil {
		return result, err
	}
	err = EmbedPreview(ctx, result.ReceiptPath, result.PreviewPath)
	if err != nil {
		return result, err
	}
	return result, nil
}

// ProcessOrders processes every order in sequence order. The first failure
// stops the loop, the orders after it are left untouched.
func ProcessOrders(ctx context.Context, s Session, list []orders.Order) ([]Result, error) {
	ctx, span := tracer.Start(ctx, "ProcessOrders")
	defer span.End()
	span.SetAttributes(attribute.Int("orders", len(list)))

	err := os.MkdirAll(s.Config.ReceiptDir, 0777)
	if err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(list))
	for i, order := range list {
		slog.InfoContext(ctx, "processing order",
			"order_number", order.Number,
			"position", i+1,
			"total", len(list),
		)
		result, err := ProcessOrder(ctx, s, order)
		if err != nil {
			span.SetStatus(codes.Error, "order failed")
			return results, fmt.Errorf("order %s: %w", order.Number, err)
		}
		results = append(results, result)
	}
	return results, nil
}
