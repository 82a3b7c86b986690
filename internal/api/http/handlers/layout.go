package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/miniinbox/inbox/internal/api/dto"
	"github.com/miniinbox/inbox/internal/clock"
	"github.com/miniinbox/inbox/internal/locale"
)

const layoutView = "layouts/main"

// Layout renders pages inside the shared header and sidebar.
type Layout struct {
	translations *locale.Translations
	now          func() time.Time
}

// NewLayout constructs the page chrome. now feeds the header clock's first
// paint; nil means time.Now.
func NewLayout(translations *locale.Translations, now func() time.Time) *Layout {
	if now == nil {
		now = time.Now
	}
	return &Layout{translations: translations, now: now}
}

// Localizer picks the message language from Accept-Language.
func (l *Layout) Localizer(c *fiber.Ctx) *locale.Localizer {
	return l.translations.Localizer(c.Get(fiber.HeaderAcceptLanguage))
}

// Render executes view with the page chrome fields added to data.
func (l *Layout) Render(c *fiber.Ctx, loc *locale.Localizer, view, titleID string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	data["L"] = loc
	data["Title"] = loc.T(titleID)
	data["Nav"] = dto.NewNav(c.Path(), loc.T)
	data["Clock"] = clock.Format(l.now())
	return c.Render(view, data, layoutView)
}
