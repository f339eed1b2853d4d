package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/optaimi/pulse/internal/domain/alert"
)

// AlertSubject builds the notification subject line. Digest alerts summarize
// every model, so they carry no model suffix.
func AlertSubject(rule *alert.Rule) string {
	subject := fmt.Sprintf("Alert: %s", rule.Kind.Label())
	if rule.Kind != alert.KindDigest {
		subject += fmt.Sprintf(" for %s", rule.ModelLabel())
	}
	return subject
}

var alertBodyTmpl = template.Must(template.New("alert_email").Parse(`<!DOCTYPE html>
<html>
  <head>
    <meta charset="utf-8">
    <style>
      body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; }
      .container { max-width: 600px; margin: 0 auto; padding: 20px; }
      .alert { background-color: #fef2f2; border-left: 4px solid #ef4444; padding: 16px; margin: 20px 0; }
      .digest { background-color: #f0fdf4; border-left: 4px solid #10b981; padding: 16px; margin: 20px 0; }
      .metric { background-color: #f9fafb; padding: 12px; border-radius: 6px; margin: 10px 0; }
      .button { display: inline-block; padding: 12px 24px; background-color: #10b981; color: white; text-decoration: none; border-radius: 6px; font-weight: 500; }
    </style>
  </head>
  <body>
    <div class="container">
      <h1>{{.Heading}}</h1>
      <div class="{{.BoxClass}}">
        <strong>{{.Label}}</strong> for <strong>{{.Model}}</strong>
      </div>
      <div class="metric">
        <p><strong>Metric:</strong> {{.Metric}}</p>
        <p><strong>Current Value:</strong> {{.Value}}</p>
        <p><strong>Threshold:</strong> {{.Threshold}}</p>
        <p><strong>Time:</strong> {{.Time}}</p>
      </div>
      <p style="margin: 30px 0;">
        <a href="{{.DashboardURL}}" class="button">View Dashboard</a>
      </p>
    </div>
  </body>
</html>
`))

type alertBodyData struct {
	Heading      string
	BoxClass     string
	Label        string
	Model        string
	Metric       string
	Value        string
	Threshold    string
	Time         string
	DashboardURL string
}

// AlertBody renders the notification email body for a triggered rule
func AlertBody(rule *alert.Rule, result *alert.TriggerResult, now time.Time, dashboardBaseURL string) (string, error) {
	data := alertBodyData{
		Heading:      "Alert Triggered",
		BoxClass:     "alert",
		Label:        rule.Kind.Label(),
		Model:        rule.ModelLabel(),
		Metric:       result.Metric,
		Value:        result.Value,
		Threshold:    result.Threshold,
		Time:         now.UTC().Format("2006-01-02 15:04:05 UTC"),
		DashboardURL: dashboardBaseURL + "/dashboard",
	}
	if rule.Kind == alert.KindDigest {
		data.Heading = "Performance Digest"
		data.BoxClass = "digest"
	}

	var buf bytes.Buffer
	if err := alertBodyTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render alert email: %w", err)
	}
	return buf.String(), nil
}
