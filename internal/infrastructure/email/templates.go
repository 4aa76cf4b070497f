package email

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/yuin/goldmark"
)

// Message templates are written in Markdown and rendered to HTML for the
// alternative body; the raw rendering doubles as the plain-text body.
const (
	tierChangedTemplate = `# Your plan has changed

Hi {{.Name}},

Your subscription plan changed from **{{.PreviousPlan}}** to **{{.NewPlan}}**.

{{if .Downgraded}}Your premium access has ended. Your data is untouched, but features above the free limits are now read-only until you upgrade again.{{else}}Thanks for being with us! Your new entitlements are active immediately.{{end}}

[Manage your subscription]({{.BaseURL}}/account/subscription)
`

	expirationWarningTemplate = `# Your subscription expires soon

Hi {{.Name}},

Your premium subscription expires in **{{.DaysLeft}} {{if eq .DaysLeft 1}}day{{else}}days{{end}}**.

Renew now to keep unlimited products, analytics, and data export without interruption.

[Renew subscription]({{.BaseURL}}/account/subscription/renew)
`

	gracePeriodTemplate = `# Your subscription has expired

Hi {{.Name}},

Your premium subscription has expired. Your premium access continues until **{{.GraceDeadline}}**, after which your account moves to the free plan automatically.

Renew before then and nothing changes.

[Renew subscription]({{.BaseURL}}/account/subscription/renew)
`

	upgradePromptTemplate = `# You're approaching a limit

Hi {{.Name}},

You're getting close to your **{{.Feature}}** limit on the free plan.

Upgrade to premium for unlimited {{.Feature}} plus full access to analytics and export.

[Upgrade to premium]({{.BaseURL}}/account/upgrade)
`
)

var messageTemplates = template.Must(template.New("tier_changed").Parse(tierChangedTemplate))

func init() {
	template.Must(messageTemplates.New("expiration_warning").Parse(expirationWarningTemplate))
	template.Must(messageTemplates.New("grace_period").Parse(gracePeriodTemplate))
	template.Must(messageTemplates.New("upgrade_prompt").Parse(upgradePromptTemplate))
}

// renderBodies executes the named Markdown template and returns the
// plain-text and HTML bodies.
func renderBodies(name string, data any) (plain string, html string, err error) {
	var md bytes.Buffer
	if err := messageTemplates.ExecuteTemplate(&md, name, data); err != nil {
		return "", "", fmt.Errorf("failed to render template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := goldmark.Convert(md.Bytes(), &buf); err != nil {
		return "", "", fmt.Errorf("failed to convert template %s to HTML: %w", name, err)
	}

	return md.String(), buf.String(), nil
}
