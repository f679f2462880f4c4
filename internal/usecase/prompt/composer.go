// Package prompt builds the per-request system and user directives.
package prompt

import (
	"fmt"
	"strings"
	"text/template"

	"go.uber.org/zap"

	"github.com/kailas-cloud/storeassist/internal/domain/profile"
	domprompt "github.com/kailas-cloud/storeassist/internal/domain/prompt"
)

// Templates is the configured pair for one mode. Empty strings mean "not configured".
type Templates struct {
	System string
	User   string
}

// templateData is what configured templates render against.
// Vendor and tag lists are pre-joined with ", ".
type templateData struct {
	ID               string
	Email            string
	PreferredVendors string
	BlockedVendors   string
	FavoriteTags     string
	Query            string
}

var (
	defaultSystem = template.Must(template.New("default.system").Parse(
		"You are an expert technical purchasing assistant.\n" +
			"The requester is registered with the email {{.Email}}.\n" +
			"Prioritize the preferred vendors ({{.PreferredVendors}}) " +
			"and avoid the blocked vendors ({{.BlockedVendors}}).\n" +
			"Respond in a professional, concise tone.",
	))
	defaultUser = template.Must(template.New("default.user").Parse(
		"The user is looking for information about \"{{.Query}}\".\n" +
			"Their main interests are {{.FavoriteTags}}.\n" +
			"Produce a concise, useful answer.",
	))
)

type modeTemplates struct {
	system *template.Template // nil falls back to defaultSystem
	user   *template.Template // nil falls back to defaultUser
}

// Composer resolves templates by mode and renders them for a profile and query.
type Composer struct {
	modes  map[string]modeTemplates
	logger *zap.Logger
}

// NewComposer parses every configured template up front. Mode names are case-insensitive.
func NewComposer(modes map[string]Templates, logger *zap.Logger) (*Composer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Composer{modes: make(map[string]modeTemplates, len(modes)), logger: logger}
	for name, t := range modes {
		key := normalizeMode(name)
		var mt modeTemplates
		var err error
		if mt.system, err = parseOptional(key+".system", t.System); err != nil {
			return nil, err
		}
		if mt.user, err = parseOptional(key+".user", t.User); err != nil {
			return nil, err
		}
		c.modes[key] = mt
	}
	return c, nil
}

// Compose builds the directive pair. Unknown modes and missing halves fall back
// to the built-in defaults independently.
func (c *Composer) Compose(p profile.Profile, query, mode string) domprompt.Pair {
	data := templateData{
		ID:               p.ID(),
		Email:            p.Email(),
		PreferredVendors: strings.Join(p.PreferredVendors(), ", "),
		BlockedVendors:   strings.Join(p.BlockedVendors(), ", "),
		FavoriteTags:     strings.Join(p.FavoriteTags(), ", "),
		Query:            query,
	}

	mt, ok := c.modes[normalizeMode(mode)]
	if !ok {
		c.logger.Debug("Prompt mode not configured, using defaults", zap.String("mode", mode))
	}

	return domprompt.NewPair(
		c.render(mt.system, defaultSystem, data),
		c.render(mt.user, defaultUser, data),
	)
}

// render executes tpl, or def when tpl is nil or fails.
func (c *Composer) render(tpl, def *template.Template, data templateData) string {
	if tpl != nil {
		var sb strings.Builder
		err := tpl.Execute(&sb, data)
		if err == nil {
			return sb.String()
		}
		c.logger.Warn("Prompt template failed, using default",
			zap.String("template", tpl.Name()),
			zap.Error(err),
		)
	}
	var sb strings.Builder
	_ = def.Execute(&sb, data) // defaults only reference string fields
	return sb.String()
}

func parseOptional(name, text string) (*template.Template, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	tpl, err := template.New(name).Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parse prompt template %s: %w", name, err)
	}
	return tpl, nil
}

func normalizeMode(mode string) string {
	return strings.ToLower(strings.TrimSpace(mode))
}
