package delivery

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shandysiswandi/gomarket/internal/identity/entity"
	"github.com/shandysiswandi/gomarket/internal/identity/usecase"
	"github.com/shandysiswandi/gomarket/internal/pkg/instrument"
	"github.com/shandysiswandi/gomarket/internal/pkg/mail"
	"github.com/shandysiswandi/gomarket/internal/pkg/sms"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// ErrUnknownChannel is returned for a channel no sender is wired for.
var ErrUnknownChannel = errors.New("delivery: unknown channel")

// Delivery sends one-time codes over email or SMS.
type Delivery struct {
	mail mail.Mail
	sms  sms.Sender
	ins  instrument.Instrumentation
}

func New(mailer mail.Mail, texter sms.Sender, ins instrument.Instrumentation) *Delivery {
	return &Delivery{mail: mailer, sms: texter, ins: ins}
}

func (d *Delivery) SendCode(ctx context.Context, in usecase.CodeDelivery) (err error) {
	ctx, span := d.ins.Tracer("identity.outbound.delivery").Start(ctx, "SendCode")
	span.SetAttributes(attribute.String("channel", in.Channel.String()))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	switch in.Channel {
	case entity.ChannelEmail:
		return d.mail.Send(ctx, mail.Message{
			To:       []string{in.To},
			Subject:  "Your GoMarket verification code",
			TextBody: codeText(in.Code, in.TTL),
			HTMLBody: codeHTML(in.Code, in.TTL),
		})

	case entity.ChannelSMS:
		return d.sms.Send(ctx, sms.Message{
			To:   in.To,
			Body: codeText(in.Code, in.TTL),
		})

	default:
		return fmt.Errorf("%w: %q", ErrUnknownChannel, in.Channel)
	}
}

func codeText(code string, ttl time.Duration) string {
	return fmt.Sprintf("%s is your GoMarket verification code. It expires in %s. Do not share it with anyone.",
		code, humanTTL(ttl))
}

func codeHTML(code string, ttl time.Duration) string {
	return fmt.Sprintf(`<p>Your GoMarket verification code is</p><p style="font-size:24px;letter-spacing:4px"><strong>%s</strong></p>`+
		`<p>It expires in %s. Do not share it with anyone.</p>`, code, humanTTL(ttl))
}

func humanTTL(ttl time.Duration) string {
	if ttl >= time.Minute && ttl%time.Minute == 0 {
		if m := int(ttl / time.Minute); m != 1 {
			return fmt.Sprintf("%d minutes", m)
		}
		return "1 minute"
	}
	return fmt.Sprintf("%d seconds", int(ttl/time.Second))
}
