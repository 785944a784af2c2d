package orders

import (
	"context"
	"fmt"
	"robotorder/lib/restyutil"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("robotorder/lib/orders")

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

type ClientOptions struct {
	// if nil, raw http messages are not written anywhere
	Output  restyutil.InstrumentOutput
	Timeout time.Duration
	// wraps the transport with cloudflare-friendly TLS settings and headers
	CloudflareBypass bool
}

func NewClient(opts ClientOptions) *resty.Client {
	client := resty.New()
	if opts.CloudflareBypass {
		client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	}
	client.SetHeader("user-agent", userAgent)

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = time.Second * 30
	}
	client.SetTimeout(timeout)

	restyutil.InstrumentClient(client, tracer, opts.Output)
	return client
}

// Download fetches `url` into `path`, replacing any existing file.
func Download(ctx context.Context, client *resty.Client, url, path string) error {
	ctx, span := tracer.Start(ctx, "Download")
	defer span.End()
	span.SetAttributes(
		attribute.String("url", url),
		attribute.String("path", path),
	)

	res, err := client.R().
		SetContext(ctx).
		SetOutput(path).
		Get(url)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch order file")
		return fmt.Errorf("fetch order file: %w", err)
	}
	if res.IsError() {
		err := fmt.Errorf("fetch order file: unexpected status %s", res.Status())
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

// Fetch downloads the order file and reads it.
func Fetch(ctx context.Context, client *resty.Client, url, path string) ([]Order, error) {
	err := Download(ctx, client, url, path)
	if err != nil {
		return nil, err
	}
	return ReadCSV(path)
}
