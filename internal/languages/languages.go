// Package languages holds the supported translation targets.
package languages

// Language is one supported translation target.
type Language struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Supported lists every target language, in menu order. Names are what
// the prompt receives, so they carry qualifiers the model should honor.
var Supported = []Language{
	{Code: "en", Name: "English"},
	{Code: "es-la", Name: "Spanish (Latin America)"},
	{Code: "es-es", Name: "Spanish (Spain)"},
	{Code: "pt-br", Name: "Portuguese (Brazil)"},
	{Code: "pt-pt", Name: "Portuguese (Portugal)"},
	{Code: "fr", Name: "French"},
	{Code: "de", Name: "German"},
	{Code: "it", Name: "Italian"},
	{Code: "ru", Name: "Russian"},
	{Code: "jp", Name: "Japanese (Transcription)"},
	{Code: "zh-cn", Name: "Chinese (Simplified)"},
	{Code: "zh-tw", Name: "Chinese (Traditional)"},
	{Code: "ko", Name: "Korean"},
	{Code: "id", Name: "Indonesian"},
	{Code: "vi", Name: "Vietnamese"},
	{Code: "th", Name: "Thai"},
	{Code: "ar", Name: "Arabic"},
	{Code: "hi", Name: "Hindi"},
}

// ByCode resolves a language code to its prompt name.
func ByCode(code string) (Language, bool) {
	for _, l := range Supported {
		if l.Code == code {
			return l, true
		}
	}
	return Language{}, false
}

// IsSupported reports whether name matches a supported language name.
func IsSupported(name string) bool {
	for _, l := range Supported {
		if l.Name == name {
			return true
		}
	}
	return false
}
