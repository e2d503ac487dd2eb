package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	mailtpl "github.com/oksasatya/fraudwatch/pkg/mailer/templates"
)

// Sender delivers one rendered email.
type Sender interface {
	Send(ctx context.Context, to, subject, text, html string) error
}

// Outcome tells the consumer what to do with a delivery.
type Outcome int

const (
	Ack Outcome = iota
	Drop
	Requeue
)

// Worker turns queued EmailJobs into sent mail.
type Worker struct {
	Sender      Sender
	Logger      logrus.FieldLogger
	SendTimeout time.Duration
}

func NewWorker(sender Sender, logger logrus.FieldLogger) *Worker {
	return &Worker{Sender: sender, Logger: logger, SendTimeout: 15 * time.Second}
}

var errNoRecipient = errors.New("email job has no recipient")

// Handle processes one message body. Malformed or unrenderable jobs are dropped;
// send failures are requeued.
func (w *Worker) Handle(ctx context.Context, body []byte) Outcome {
	var job EmailJob
	if err := json.Unmarshal(body, &job); err != nil {
		w.Logger.WithError(err).Warn("bad email job")
		return Drop
	}
	if job.To == "" {
		w.Logger.WithError(errNoRecipient).Warn("bad email job")
		return Drop
	}

	subject, text, html := job.Subject, job.Text, job.HTML
	if job.Template != "" {
		s, t, h, err := mailtpl.Render(job.Template, job.Data)
		if err != nil {
			w.Logger.WithError(err).WithField("template", job.Template).Warn("render email failed")
			return Drop
		}
		subject, text, html = s, t, h
	}
	if subject == "" || (text == "" && html == "") {
		w.Logger.WithField("to", job.To).Warn("email job has no content")
		return Drop
	}

	c, cancel := context.WithTimeout(ctx, w.SendTimeout)
	defer cancel()
	if err := w.Sender.Send(c, job.To, subject, text, html); err != nil {
		w.Logger.WithError(err).WithField("to", job.To).Error("send email failed")
		return Requeue
	}
	w.Logger.WithFields(logrus.Fields{"to": job.To, "template": job.Template}).Info("email sent")
	return Ack
}
