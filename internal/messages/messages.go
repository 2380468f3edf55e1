// Package messages turns client errors into translated, actionable text.
package messages

import (
	"embed"
	stderrors "errors"
	"fmt"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pelletier/go-toml/v2"
	"golang.org/x/text/language"

	apperrors "github.com/MAYANKpandey14/do-it-with-ease/internal/errors"
)

const (
	LanguageEn = "en"
	LanguageFr = "fr"
)

//go:embed translations/*.toml
var translations embed.FS

type Translator struct {
	bundle *i18n.Bundle
}

func New() (*Translator, error) {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	for _, lang := range []string{LanguageEn, LanguageFr} {
		path := fmt.Sprintf("translations/%s.toml", lang)
		if _, err := bundle.LoadMessageFileFS(translations, path); err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
	}
	return &Translator{bundle: bundle}, nil
}

// Describe returns the message for err in lang, falling back to English.
func (t *Translator) Describe(lang string, err error) string {
	if err == nil {
		return ""
	}
	localizer := i18n.NewLocalizer(t.bundle, lang, LanguageEn)

	id, detail := messageID(err)
	msg, locErr := localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    id,
		TemplateData: map[string]string{"Detail": detail},
	})
	if locErr == nil {
		return msg
	}

	msg, locErr = localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    fallbackID(err),
		TemplateData: map[string]string{"Detail": detail},
	})
	if locErr != nil {
		return err.Error()
	}
	return msg
}

func messageID(err error) (string, string) {
	var appErr *apperrors.Error
	if !stderrors.As(err, &appErr) {
		return "unknown", err.Error()
	}

	detail := appErr.Message
	if appErr.Err != nil {
		detail = appErr.Err.Error()
	}

	switch appErr.Kind {
	case apperrors.KindValidation:
		if appErr.Code != "" {
			return "validation_" + appErr.Code, appErr.Message
		}
		return "validation", appErr.Message
	case apperrors.KindRemoteFinalize:
		if !appErr.Critical {
			return "remote_finalize_noncritical", detail
		}
		return "remote_finalize", detail
	case apperrors.KindRemoteCreate, apperrors.KindNotAuthenticated, apperrors.KindRemote:
		return string(appErr.Kind), detail
	}
	return "unknown", err.Error()
}

func fallbackID(err error) string {
	if apperrors.KindOf(err) == apperrors.KindValidation {
		return "validation"
	}
	return "unknown"
}
