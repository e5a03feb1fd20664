package control

import (
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

const (
	msgLengthButton = "LengthMeasurementButtonTitle"
	msgAreaButton   = "AreaMeasurementButtonTitle"
	msgClearButton  = "ClearMeasurementsButtonTitle"
)

var translations = map[language.Tag][]*i18n.Message{
	language.English: {
		{ID: msgLengthButton, Other: "Measure distance"},
		{ID: msgAreaButton, Other: "Measure area"},
		{ID: msgClearButton, Other: "Clear measurements"},
	},
	language.German: {
		{ID: msgLengthButton, Other: "Strecke messen"},
		{ID: msgAreaButton, Other: "Fläche messen"},
		{ID: msgClearButton, Other: "Messungen löschen"},
	},
	language.French: {
		{ID: msgLengthButton, Other: "Mesurer une distance"},
		{ID: msgAreaButton, Other: "Mesurer une surface"},
		{ID: msgClearButton, Other: "Effacer les mesures"},
	},
}

func newBundle() *i18n.Bundle {
	bundle := i18n.NewBundle(language.English)
	for tag, messages := range translations {
		bundle.MustAddMessages(tag, messages...)
	}
	return bundle
}

// buttonTitles resolves the button titles for locale. Non-empty Lang
// fields win over the translations.
func buttonTitles(locale string, lang Lang) Lang {
	localizer := i18n.NewLocalizer(newBundle(), locale, language.English.String())

	title := func(override, id string) string {
		if override != "" {
			return override
		}
		s, err := localizer.Localize(&i18n.LocalizeConfig{MessageID: id})
		if err != nil {
			return ""
		}
		return s
	}

	return Lang{
		LengthMeasurementButtonTitle: title(lang.LengthMeasurementButtonTitle, msgLengthButton),
		AreaMeasurementButtonTitle:   title(lang.AreaMeasurementButtonTitle, msgAreaButton),
		ClearMeasurementsButtonTitle: title(lang.ClearMeasurementsButtonTitle, msgClearButton),
	}
}
