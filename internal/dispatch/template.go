package dispatch

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/sentinelops/sentinel/internal/domain/alert"
	"github.com/sentinelops/sentinel/internal/domain/notification"
)

// placeholderPattern matches {{a.b.c}} path substitutions
var placeholderPattern = regexp.MustCompile(`\{\{\s*([a-zA-Z0-9_.]+)\s*\}\}`)

// Render substitutes {{path.to.value}} placeholders from a variable map.
// Unknown paths render as-is; rendering never errors.
func Render(tmpl string, vars map[string]interface{}) string {
	return placeholderPattern.ReplaceAllStringFunc(tmpl, func(token string) string {
		path := placeholderPattern.FindStringSubmatch(token)[1]
		if val, ok := lookupPath(vars, strings.Split(path, ".")); ok {
			return fmt.Sprintf("%v", val)
		}
		return token
	})
}

// lookupPath walks nested maps following the dotted path
func lookupPath(vars map[string]interface{}, path []string) (interface{}, bool) {
	var current interface{} = vars
	for _, part := range path {
		switch m := current.(type) {
		case map[string]interface{}:
			v, ok := m[part]
			if !ok {
				return nil, false
			}
			current = v
		case map[string]string:
			v, ok := m[part]
			if !ok {
				return nil, false
			}
			current = v
		default:
			return nil, false
		}
	}
	return current, true
}

// defaultTemplates holds the per-channel subject and body templates used
// when a channel configuration does not override them.
var defaultTemplates = map[notification.ChannelType]struct {
	subject string
	body    string
}{
	notification.ChannelEmail: {
		subject: "[{{alert.severity}}] {{alert.title}}",
		body:    "Alert: {{alert.title}}\nSeverity: {{alert.severity}}\nSource: {{alert.source}}\n\n{{alert.description}}",
	},
	notification.ChannelSMS: {
		subject: "{{alert.title}}",
		body:    "[{{alert.severity}}] {{alert.title}} ({{alert.source}})",
	},
	notification.ChannelPush: {
		subject: "{{alert.title}}",
		body:    "[{{alert.severity}}] {{alert.title}}: {{alert.description}}",
	},
	notification.ChannelWebhook: {
		subject: "{{alert.title}}",
		body:    `{"alert_id":"{{alert.id}}","title":"{{alert.title}}","severity":"{{alert.severity}}","source":"{{alert.source}}","status":"{{alert.status}}"}`,
	},
	notification.ChannelSlack: {
		subject: "{{alert.title}}",
		body:    ":rotating_light: *{{alert.title}}*\nSeverity: {{alert.severity}} | Source: {{alert.source}}\n{{alert.description}}",
	},
	notification.ChannelDiscord: {
		subject: "{{alert.title}}",
		body:    "**{{alert.title}}**\nSeverity: {{alert.severity}} | Source: {{alert.source}}\n{{alert.description}}",
	},
	notification.ChannelPhone: {
		subject: "{{alert.title}}",
		body:    "Critical alert {{alert.title}} from {{alert.source}} requires acknowledgment",
	},
}

// templateVars builds the variable map for rendering an alert's templates
func templateVars(a *alert.Alert, extra map[string]interface{}) map[string]interface{} {
	vars := map[string]interface{}{
		"alert": map[string]interface{}{
			"id":          a.ID,
			"title":       a.Title,
			"description": a.Description,
			"severity":    a.Severity,
			"status":      a.Status,
			"source":      a.Source,
			"starts_at":   a.StartsAt.Format("2006-01-02 15:04:05 MST"),
			"labels":      a.Labels,
			"annotations": a.Annotations,
		},
	}
	for k, v := range extra {
		vars[k] = v
	}
	return vars
}

// channelTemplates resolves the subject and body templates for a channel,
// preferring overrides from the channel configuration.
func channelTemplates(ch *notification.Channel) (subject, body string) {
	defaults := defaultTemplates[ch.Type]
	subject, body = defaults.subject, defaults.body

	if s, ok := ch.Configuration["subject_template"].(string); ok && s != "" {
		subject = s
	}
	if b, ok := ch.Configuration["body_template"].(string); ok && b != "" {
		body = b
	}
	return subject, body
}
